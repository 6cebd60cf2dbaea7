package feedsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/trezcool/asistente/core"
	"github.com/trezcool/asistente/core/feed"
)

// Refresher refreshes the feed cache on a cron schedule.
type Refresher struct {
	cron    *cron.Cron
	svc     feed.Service
	timeout time.Duration
	logger  core.Logger
}

func NewRefresher(conf *core.Config, svc feed.Service, logger core.Logger) (*Refresher, error) {
	r := &Refresher{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		svc:     svc,
		timeout: conf.Feed.Timeout * 2,
		logger:  logger,
	}
	if _, err := r.cron.AddFunc(conf.Feed.RefreshSpec, r.refresh); err != nil {
		return nil, errors.Wrapf(err, "scheduling feed refresh %q", conf.Feed.RefreshSpec)
	}
	return r, nil
}

func (r *Refresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.svc.Refresh(ctx); err != nil {
		// already logged by the feed service
		return
	}
	r.logger.Info(fmt.Sprintf("feed refreshed at %s", r.svc.LastRefresh().Format(time.RFC3339)))
}

// Start warms the cache in the background, then runs the schedule.
func (r *Refresher) Start() {
	go r.refresh()
	r.cron.Start()
}

// Stop stops the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}
