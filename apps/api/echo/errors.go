package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/asistente/core"
	"github.com/trezcool/asistente/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errRequestCanceled      = echo.NewHTTPError(http.StatusRequestTimeout, "request canceled")
)

// errorResponse maps err to a status code and a JSON-ready body.
// reportable is true for server errors, which must be logged.
func errorResponse(err error, translator ut.Translator) (code int, body interface{}, reportable bool) {
	switch cause := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if cause == middleware.ErrJWTMissing {
			return http.StatusUnauthorized, cause.Message, false
		}
		if inner, ok := cause.Internal.(*echo.HTTPError); ok {
			cause = inner
		}
		return cause.Code, cause.Message, false

	case validator.ValidationErrors:
		fields := make(map[string]string, len(cause))
		for _, fe := range cause {
			fields[fe.Field()] = fe.Translate(translator)
		}
		return http.StatusBadRequest, fields, false

	case *core.ValidationError:
		if len(cause.Fields) == 0 {
			return http.StatusBadRequest, cause.Error(), false
		}
		fields := make(map[string]string, len(cause.Fields))
		for _, fe := range cause.Fields {
			fields[fe.Field] = fe.Error
		}
		return http.StatusBadRequest, fields, false

	case *core.NotFoundError:
		// a note whose stored file vanished is reported as missing content, not as a storage detail
		if cause.Resource == "blob" {
			return http.StatusNotFound, "note content not found", false
		}
		return http.StatusNotFound, cause.Error(), false
	}

	// an aborted upload or download is the client's doing
	if errors.Cause(err) == context.Canceled {
		return errRequestCanceled.Code, errRequestCanceled.Message, false
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), true
}

// requestUser identifies who hit a server error, for the error report.
func requestUser(ctx echo.Context) user.User {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr
	}
	var usr user.User
	if claims, err := getContextClaims(ctx); err == nil {
		usr.ID, usr.Name, usr.Email = claims.Subject, claims.Name, claims.Email
	}
	return usr
}

// newAppHTTPErrorHandler returns the echo.HTTPErrorHandler of the API.
// signalShutdown is called whenever a core shutdown error reaches it.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code, body, reportable := errorResponse(err, translator)

		if reportable {
			msg := http.StatusText(code)
			logger.Error(msg, errors.Wrap(err, msg), requestUser(ctx))
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			body = err.Error()
		} else if m, ok := body.(string); ok {
			body = echo.Map{"error": m}
		}

		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, body)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}
