package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/asistente/core"
	"github.com/trezcool/asistente/core/note"
)

var errFileRequired = "a file is required"

type noteApi struct {
	svc note.Service
}

func registerNoteAPI(g *echo.Group, svc note.Service, authed ...echo.MiddlewareFunc) {
	api := noteApi{svc: svc}

	ng := g.Group("/notes", authed...)
	ng.GET("", api.query)
	ng.POST("", api.upload)
	ng.GET("/:id", api.retrieve)
	ng.GET("/:id/content", api.download)
	ng.DELETE("/:id", api.destroy)
}

// Handlers

func (api *noteApi) query(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	notes, err := api.svc.Query(ctx.Request().Context(), userID, ctx.QueryParam("course_id"))
	if err != nil {
		return errors.Wrap(err, "querying notes")
	}
	if notes == nil {
		notes = []note.Note{}
	}
	return ctx.JSON(http.StatusOK, notes)
}

// upload expects a multipart form with the `file` part and a `courseId` field.
func (api *noteApi) upload(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: errFileRequired})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	in := note.UploadInput{
		CourseID:  ctx.FormValue("courseId"),
		Name:      fh.Filename,
		MimeType:  fh.Header.Get(echo.HeaderContentType),
		SizeBytes: fh.Size,
	}
	n, err := api.svc.Upload(ctx.Request().Context(), userID, in, f)
	if err != nil {
		return errors.Wrap(err, "uploading note")
	}
	return ctx.JSON(http.StatusCreated, n)
}

func (api *noteApi) retrieve(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	n, err := api.svc.Get(ctx.Request().Context(), userID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding note by ID")
	}
	return ctx.JSON(http.StatusOK, n)
}

func (api *noteApi) download(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	n, rc, err := api.svc.Open(ctx.Request().Context(), userID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "opening note")
	}
	defer rc.Close()

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", n.Name))
	return ctx.Stream(http.StatusOK, n.MimeType, rc)
}

func (api *noteApi) destroy(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), userID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting note")
	}
	return ctx.NoContent(http.StatusNoContent)
}
