package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/asistente/core/activity"
)

type activityApi struct {
	svc activity.Service
}

func registerActivityAPI(g *echo.Group, svc activity.Service, authed ...echo.MiddlewareFunc) {
	api := activityApi{svc: svc}

	ag := g.Group("/activities", authed...)
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

// Handlers

// query filters with ?course_id=&subject_id=&status= and sorts with ?by_status=&by_priority=&by_due_date=.
func (api *activityApi) query(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	filter := new(activity.QueryFilter)
	criteria := new(activity.SortCriteria)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to activity.QueryFilter")
	}
	if err := ctx.Bind(criteria); err != nil {
		return errors.Wrap(err, "binding to activity.SortCriteria")
	}
	filter.Clean()

	acts, err := api.svc.Query(ctx.Request().Context(), userID, *filter, *criteria)
	if err != nil {
		return errors.Wrap(err, "querying activities")
	}
	if acts == nil {
		acts = []activity.Activity{}
	}
	return ctx.JSON(http.StatusOK, acts)
}

func (api *activityApi) create(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	var data activity.Input
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to activity.Input")
	}

	act, err := api.svc.Create(ctx.Request().Context(), userID, data)
	if err != nil {
		return errors.Wrap(err, "creating activity")
	}
	return ctx.JSON(http.StatusCreated, act)
}

func (api *activityApi) retrieve(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	act, err := api.svc.Get(ctx.Request().Context(), userID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding activity by ID")
	}
	return ctx.JSON(http.StatusOK, act)
}

func (api *activityApi) update(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	var data activity.Input
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to activity.Input")
	}

	act, err := api.svc.Update(ctx.Request().Context(), userID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating activity")
	}
	return ctx.JSON(http.StatusOK, act)
}

func (api *activityApi) destroy(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), userID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting activity")
	}
	return ctx.NoContent(http.StatusNoContent)
}
