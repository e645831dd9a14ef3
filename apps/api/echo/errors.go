package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

// httpStatus maps an error to its status code; ok is false for unexpected errors.
func httpStatus(err error) (code int, ok bool) {
	switch origErr := errors.Cause(err).(type) {
	case *echo.HTTPError:
		return origErr.Code, true
	case validator.ValidationErrors, *core.ValidationError, *core.InvalidOperationError:
		return http.StatusBadRequest, true
	case *core.NotFoundError:
		return http.StatusNotFound, true
	case *core.ConflictError:
		return http.StatusConflict, true
	default:
		return http.StatusInternalServerError, false
	}
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code, known := httpStatus(err)
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
				origErr = herr
				code = herr.Code
			}
			message = origErr.Message
		case validator.ValidationErrors:
			message = core.TranslateValidationErrors(origErr, translator)
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
		case *core.InvalidOperationError:
			body := echo.Map{"error": origErr.Error()}
			if len(origErr.IDs) > 0 {
				body["ids"] = origErr.IDs
			}
			message = body
		case *core.NotFoundError, *core.ConflictError, *core.InternalError:
			message = origErr.Error()
		}

		if !known {
			if _, ok := errors.Cause(err).(*core.InternalError); !ok {
				// services already logged their internal errors
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg, errors.Wrap(err, msg), map[string]interface{}{
					"method":     ctx.Request().Method,
					"path":       ctx.Request().URL.Path,
					"request_id": ctx.Response().Header().Get(echo.HeaderXRequestID),
				})
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if !known && ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
