package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"taskManager/internal/access"
	"taskManager/internal/service"
)

const serverErrorMessage = "Server Error"

// errorStatus maps an error to the HTTP status and the message shown to clients.
func errorStatus(err error) (int, string) {
	var he *echo.HTTPError
	switch {
	case access.IsForbidden(err):
		return http.StatusForbidden, err.Error()
	case access.IsInvalid(err):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, capitalize(err.Error())
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrUserReferenced):
		return http.StatusConflict, capitalize(err.Error())
	case errors.Is(err, service.ErrDuplicateEmail):
		return http.StatusBadRequest, "User already exists"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.As(err, &he):
		if he.Code >= http.StatusInternalServerError {
			return he.Code, serverErrorMessage
		}
		return he.Code, fmt.Sprint(he.Message)
	default:
		return http.StatusInternalServerError, serverErrorMessage
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// errorHandler renders every handler error as {success: false, message}.
func errorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := errorStatus(err)
		if code >= http.StatusInternalServerError {
			log.Error("request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"err", err,
			)
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, response{Success: false, Message: msg})
		}
		if err != nil {
			log.Error("write error response", "err", err)
		}
	}
}
