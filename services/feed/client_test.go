package feedsvc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/asistente/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	conf := core.NewTestConfig()
	conf.Feed.BaseURL = srv.URL + "/"
	conf.Feed.Timeout = time.Second
	return NewClient(conf)
}

func TestClient_FetchNews(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/news", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"1","title":"Matrículas","content":"abiertas","author":"UNI","publishedAt":"2024-03-01","imageUrl":null,"category":"academico","link":"https://u.test/1"}]`))
	})

	news, err := c.FetchNews(context.Background())
	require.NoError(t, err)
	require.Len(t, news, 1)
	assert.Equal(t, "Matrículas", news[0].Title)
	assert.Nil(t, news[0].ImageURL)
	require.NotNil(t, news[0].Link)
	assert.Equal(t, "https://u.test/1", *news[0].Link)
}

func TestClient_FetchCalendarEvents(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantLen int
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK, body: `[{"id":"e1","title":"Exámenes","startDate":"2024-06-01","isImportant":true}]`, wantLen: 1},
		{name: "empty", status: http.StatusOK, body: `[]`},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, wantErr: true},
		{name: "bad json", status: http.StatusOK, body: `{`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/calendar/events", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			events, err := c.FetchCalendarEvents(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, events, tt.wantLen)
		})
	}
}

func TestClient_FetchNews_canceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	news, err := c.FetchNews(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "err = %v", err)
	assert.Nil(t, news)
}
