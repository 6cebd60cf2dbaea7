package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/asistente/core"
	"github.com/trezcool/asistente/core/course"
	"github.com/trezcool/asistente/core/schedule"
	blobsvc "github.com/trezcool/asistente/services/blob"
	"github.com/trezcool/asistente/tests"
)

func Test_errorResponse(t *testing.T) {
	_, translator := testutil.NewValidator()

	tests := []struct {
		name           string
		err            error
		wantCode       int
		wantBody       interface{}
		wantReportable bool
	}{
		{name: "missing token", err: middleware.ErrJWTMissing, wantCode: http.StatusUnauthorized, wantBody: middleware.ErrJWTMissing.Message},
		{
			name:     "wrapped http error",
			err:      echo.NewHTTPError(http.StatusBadRequest).SetInternal(errAccountDeactivated),
			wantCode: http.StatusForbidden, wantBody: "account deactivated",
		},
		{
			name:     "field errors",
			err:      errors.Wrap(core.NewValidationError(schedule.ErrDayOutOfWeek, core.FieldError{Field: "day", Error: "bad day"}), "creating course"),
			wantCode: http.StatusBadRequest, wantBody: map[string]string{"day": "bad day"},
		},
		{name: "plain validation error", err: core.NewValidationError(fmt.Errorf("nope")), wantCode: http.StatusBadRequest, wantBody: "nope"},
		{name: "course not found", err: errors.Wrap(course.ErrNotFound, "finding course by ID"), wantCode: http.StatusNotFound, wantBody: "course not found"},
		{name: "note content gone", err: errors.Wrap(blobsvc.ErrNotFound, "opening note"), wantCode: http.StatusNotFound, wantBody: "note content not found"},
		{name: "client went away", err: errors.Wrap(context.Canceled, "uploading note"), wantCode: http.StatusRequestTimeout, wantBody: "request canceled"},
		{
			name:     "server error",
			err:      errors.New("db down"),
			wantCode: http.StatusInternalServerError, wantBody: "Internal Server Error", wantReportable: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body, reportable := errorResponse(tt.err, translator)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantBody, body)
			assert.Equal(t, tt.wantReportable, reportable)
		})
	}
}
