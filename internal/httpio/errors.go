package httpio

import (
	"errors"
	"fmt"
	"net/http"

	"PlacementHub/internal/apperr"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorHandler renders every handler error as {"msg": ...}. Errors outside
// the apperr taxonomy are logged and answered with a generic 500.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status int
			msg    string
		)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			msg = fmt.Sprint(he.Message)
		} else {
			var known bool
			status, msg, known = apperr.Status(err)
			if !known || status >= http.StatusInternalServerError {
				log.Error("request failed",
					zap.String("method", c.Request().Method),
					zap.String("path", c.Path()),
					zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
					zap.Error(err),
				)
			}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, echo.Map{"msg": msg})
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}
