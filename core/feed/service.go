package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/asistente/core"
)

type (
	// Client fetches the news and calendar published by the university.
	Client interface {
		FetchNews(ctx context.Context) ([]News, error)
		FetchCalendarEvents(ctx context.Context) ([]CalendarEvent, error)
	}

	Service interface {
		// News returns the cached news, fetching them first when the cache is empty.
		News(ctx context.Context) ([]News, error)
		// CalendarEvents returns the cached events sorted by SortEvents, fetching them first when the cache is empty.
		CalendarEvents(ctx context.Context) ([]CalendarEvent, error)
		// Refresh fetches both feeds. A failed fetch keeps the previous cache.
		Refresh(ctx context.Context) error
		LastRefresh() time.Time
	}

	service struct {
		client Client
		logger core.Logger

		mu          sync.RWMutex
		news        []News
		events      []CalendarEvent
		newsOK      bool
		eventsOK    bool
		lastRefresh time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(client Client, logger core.Logger) Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(client, "client"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	return &service{client: client, logger: logger}
}

func (svc *service) refreshNews(ctx context.Context) error {
	news, err := svc.client.FetchNews(ctx)
	if err != nil {
		return errors.Wrap(err, "fetching news")
	}
	if news == nil {
		news = []News{}
	}
	svc.mu.Lock()
	svc.news, svc.newsOK = news, true
	svc.lastRefresh = core.NowFunc()
	svc.mu.Unlock()
	return nil
}

func (svc *service) refreshEvents(ctx context.Context) error {
	events, err := svc.client.FetchCalendarEvents(ctx)
	if err != nil {
		return errors.Wrap(err, "fetching calendar events")
	}
	events = SortEvents(events)
	svc.mu.Lock()
	svc.events, svc.eventsOK = events, true
	svc.lastRefresh = core.NowFunc()
	svc.mu.Unlock()
	return nil
}

func (svc *service) News(ctx context.Context) ([]News, error) {
	svc.mu.RLock()
	news, ok := svc.news, svc.newsOK
	svc.mu.RUnlock()
	if ok {
		return news, nil
	}

	if err := svc.refreshNews(ctx); err != nil {
		return nil, err
	}
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.news, nil
}

func (svc *service) CalendarEvents(ctx context.Context) ([]CalendarEvent, error) {
	svc.mu.RLock()
	events, ok := svc.events, svc.eventsOK
	svc.mu.RUnlock()
	if ok {
		return events, nil
	}

	if err := svc.refreshEvents(ctx); err != nil {
		return nil, err
	}
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.events, nil
}

func (svc *service) Refresh(ctx context.Context) error {
	newsErr := svc.refreshNews(ctx)
	if newsErr != nil {
		svc.logger.Warn(fmt.Sprintf("refreshing feed: %v", newsErr), newsErr)
	}
	eventsErr := svc.refreshEvents(ctx)
	if eventsErr != nil {
		svc.logger.Warn(fmt.Sprintf("refreshing feed: %v", eventsErr), eventsErr)
	}
	if newsErr != nil {
		return newsErr
	}
	return eventsErr
}

func (svc *service) LastRefresh() time.Time {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.lastRefresh
}
