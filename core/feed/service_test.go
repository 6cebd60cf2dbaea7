package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/asistente/tests"
)

type clientMock struct {
	news     []News
	events   []CalendarEvent
	err      error
	newsHits int
}

func (c *clientMock) FetchNews(context.Context) ([]News, error) {
	c.newsHits++
	return c.news, c.err
}

func (c *clientMock) FetchCalendarEvents(context.Context) ([]CalendarEvent, error) {
	return c.events, c.err
}

func TestSortEvents(t *testing.T) {
	events := []CalendarEvent{
		{ID: "late", StartDate: "2024-05-10"},
		{ID: "important-late", StartDate: "2024-06-01", IsImportant: true},
		{ID: "early", StartDate: "2024-03-01"},
		{ID: "important-early", StartDate: "2024-04-01", IsImportant: true},
	}

	got := SortEvents(events)
	gotIDs := make([]string, 0, len(got))
	for _, e := range got {
		gotIDs = append(gotIDs, e.ID)
	}
	assert.Equal(t, []string{"important-early", "important-late", "early", "late"}, gotIDs)
	assert.Equal(t, "late", events[0].ID, "input must not be mutated")
}

func TestService_News(t *testing.T) {
	client := &clientMock{news: []News{{ID: "n1", Title: "Matrículas"}}}
	svc := NewService(client, testutil.NewLogger())

	news, err := svc.News(context.Background())
	require.NoError(t, err)
	assert.Equal(t, client.news, news)

	// served from cache
	_, err = svc.News(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, client.newsHits)
}

func TestService_Refresh(t *testing.T) {
	client := &clientMock{
		news:   []News{{ID: "n1"}},
		events: []CalendarEvent{{ID: "e1", StartDate: "2024-02-01"}, {ID: "e2", StartDate: "2024-01-01", IsImportant: true}},
	}
	svc := NewService(client, testutil.NewLogger())
	require.NoError(t, svc.Refresh(context.Background()))
	assert.False(t, svc.LastRefresh().IsZero())

	events, err := svc.CalendarEvents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "e2", events[0].ID)

	t.Run("failure keeps previous cache", func(t *testing.T) {
		client.err = errors.New("unreachable")
		client.news = nil

		assert.Error(t, svc.Refresh(context.Background()))

		news, err := svc.News(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []News{{ID: "n1"}}, news)
	})
}

func TestService_NewsError(t *testing.T) {
	svc := NewService(&clientMock{err: errors.New("unreachable")}, testutil.NewLogger())
	if _, err := svc.News(context.Background()); err == nil {
		t.Errorf("News() error = nil, want error")
	}
}
