package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/student"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, core.ErrUnauthenticated.Error())
	errInvalidCredentials   = echo.NewHTTPError(http.StatusBadRequest, "invalid login credentials")
	errAccountDisabled      = echo.NewHTTPError(http.StatusForbidden, student.ErrAccountDisabled.Error())
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, core.ErrForbidden.Error())
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
	errTooManyLoginAttempts = echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts, try again later")
)

const validationFailed = "validation failed"

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		body := echo.Map{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			body["error"] = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			body["error"] = validationFailed
			body["fields"] = fldErrs
		case *core.ValidationError:
			code = http.StatusBadRequest
			if origErr.Err != nil {
				body["error"] = origErr.Err.Error()
			} else {
				body["error"] = validationFailed
			}
			if len(origErr.Fields) > 0 {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				body["fields"] = fldErrs
			}
		case *core.NotFoundError:
			code = http.StatusNotFound
			body["error"] = origErr.Error()
		case *core.ConflictError:
			code = http.StatusConflict
			body["error"] = origErr.Error()
		default:
			switch origErr {
			case core.ErrForbidden:
				code = http.StatusForbidden
				body["error"] = origErr.Error()
			case core.ErrUnauthenticated:
				code = http.StatusUnauthorized
				body["error"] = origErr.Error()
			case student.ErrAccountDisabled:
				code = http.StatusForbidden
				body["error"] = origErr.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				body["error"] = msg
				logger.Error(msg, errors.Wrap(err, msg), identity(ctx))
				if ctx.Echo().Debug {
					body["error"] = err.Error()
				}

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, body)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
