package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/asistente/core/activity"
	"github.com/trezcool/asistente/core/course"
)

type courseApi struct {
	svc        course.Service
	activities activity.Service
}

func registerCourseAPI(g *echo.Group, svc course.Service, activities activity.Service, authed ...echo.MiddlewareFunc) {
	api := courseApi{svc: svc, activities: activities}

	cg := g.Group("/courses", authed...)
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
	cg.POST("/:id/recalculate", api.recalculate)
}

func registerSubjectAPI(g *echo.Group, svc course.Service, activities activity.Service, authed ...echo.MiddlewareFunc) {
	api := courseApi{svc: svc, activities: activities}

	sg := g.Group("/subjects", authed...)
	sg.GET("", api.querySubjects)
	sg.POST("", api.createSubject)
	sg.GET("/:id", api.retrieveSubject)
	sg.DELETE("/:id", api.destroySubject)
	sg.POST("/:id/recalculate", api.recalculateSubject)
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	courses, err := api.svc.Query(ctx.Request().Context(), userID, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) create(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	var data course.Input
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to course.Input")
	}

	crs, err := api.svc.Create(ctx.Request().Context(), userID, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	crs, err := api.svc.Get(ctx.Request().Context(), userID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	var data course.Input
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to course.Input")
	}

	crs, err := api.svc.Update(ctx.Request().Context(), userID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), userID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) recalculate(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	reqCtx := ctx.Request().Context()

	id := ctx.Param("id")
	if _, err := api.svc.Get(reqCtx, userID, id); err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	if _, err := api.activities.Recalculate(reqCtx, userID, activity.CourseContainer(id)); err != nil {
		return errors.Wrap(err, "recalculating course")
	}
	crs, err := api.svc.Get(reqCtx, userID, id)
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) querySubjects(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	subjects, err := api.svc.QuerySubjects(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []course.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *courseApi) createSubject(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	var data course.SubjectInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to course.SubjectInput")
	}

	sub, err := api.svc.CreateSubject(ctx.Request().Context(), userID, data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *courseApi) retrieveSubject(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	sub, err := api.svc.GetSubject(ctx.Request().Context(), userID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding subject by ID")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *courseApi) destroySubject(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteSubject(ctx.Request().Context(), userID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) recalculateSubject(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	reqCtx := ctx.Request().Context()

	id := ctx.Param("id")
	if _, err := api.svc.GetSubject(reqCtx, userID, id); err != nil {
		return errors.Wrap(err, "finding subject by ID")
	}
	if _, err := api.activities.Recalculate(reqCtx, userID, activity.SubjectContainer(id)); err != nil {
		return errors.Wrap(err, "recalculating subject")
	}
	sub, err := api.svc.GetSubject(reqCtx, userID, id)
	if err != nil {
		return errors.Wrap(err, "finding subject by ID")
	}
	return ctx.JSON(http.StatusOK, sub)
}
