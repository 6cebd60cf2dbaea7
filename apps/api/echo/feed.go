package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/asistente/core"
	"github.com/trezcool/asistente/core/dashboard"
	"github.com/trezcool/asistente/core/feed"
)

type feedApi struct {
	svc feed.Service
}

func registerFeedAPI(g *echo.Group, svc feed.Service, authed ...echo.MiddlewareFunc) {
	api := feedApi{svc: svc}

	g.GET("/news", api.news, authed...)
	g.GET("/calendar/events", api.calendarEvents, authed...)
}

func (api *feedApi) news(ctx echo.Context) error {
	news, err := api.svc.News(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "fetching news")
	}
	if news == nil {
		news = []feed.News{}
	}
	return ctx.JSON(http.StatusOK, news)
}

func (api *feedApi) calendarEvents(ctx echo.Context) error {
	events, err := api.svc.CalendarEvents(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "fetching calendar events")
	}
	if events == nil {
		events = []feed.CalendarEvent{}
	}
	return ctx.JSON(http.StatusOK, events)
}

type dashboardApi struct {
	svc dashboard.Service
}

func registerDashboardAPI(g *echo.Group, svc dashboard.Service, authed ...echo.MiddlewareFunc) {
	api := dashboardApi{svc: svc}

	g.GET("/dashboard", api.summary, authed...)
}

func (api *dashboardApi) summary(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	sum, err := api.svc.Summary(ctx.Request().Context(), userID, core.NowFunc())
	if err != nil {
		return errors.Wrap(err, "building dashboard")
	}
	return ctx.JSON(http.StatusOK, sum)
}
