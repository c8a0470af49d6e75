package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/Skotchmaster/diamond_shop/internal/apiclient"
	"github.com/Skotchmaster/diamond_shop/internal/logging"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/remote"
	"github.com/Skotchmaster/diamond_shop/internal/service"
	"github.com/Skotchmaster/diamond_shop/internal/session"
	"github.com/Skotchmaster/diamond_shop/internal/storefront"
	"github.com/Skotchmaster/diamond_shop/internal/upload"
	"github.com/labstack/echo/v4"
)

// statusFor maps an operation failure to the HTTP status the storefront answers with.
func statusFor(err error) int {
	var apiErr *apiclient.APIError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, apiclient.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrForbidden), errors.Is(err, session.ErrPendingApproval):
		return http.StatusForbidden
	case errors.Is(err, service.ErrAlreadyPresent), errors.Is(err, remote.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, storefront.ErrUnknownResource), errors.Is(err, remote.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, remote.ErrValidation),
		errors.Is(err, upload.ErrMissingRequired),
		errors.Is(err, upload.ErrNoSource),
		errors.Is(err, upload.ErrNoHeaders),
		errors.Is(err, upload.ErrUnknownField),
		errors.Is(err, upload.ErrUnknownHeader),
		errors.Is(err, service.ErrPaymentCancelled):
		return http.StatusBadRequest
	case errors.As(err, &apiErr):
		if apiErr.Status >= 400 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func collection[T remote.Keyed](c echo.Context, col *remote.Collection[T], err error) error {
	return c.JSON(statusFor(err), col.View())
}

// mutated answers with the collection after a create/update/delete; ok is the
// status used on success.
func mutated[T remote.Keyed](c echo.Context, col *remote.Collection[T], err error, ok int) error {
	if err != nil {
		return c.JSON(statusFor(err), col.View())
	}
	return c.JSON(ok, col.View())
}

func entity[T any](c echo.Context, e *remote.Entity[T], err error) error {
	return c.JSON(statusFor(err), e.View())
}

func failure(c echo.Context, err error) error {
	return c.JSON(statusFor(err), remote.State{Status: remote.StatusFailed, Error: remote.ErrorMessage(err)})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, remote.State{Status: remote.StatusFailed, Error: msg})
}

// ErrorHandler renders echo errors in the same {status, error} shape as failed operations.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	} else {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "error", err)
	}

	body := remote.State{Status: remote.StatusFailed, Error: msg}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("error_response_failed", "error", err)
	}
}

type sessionView struct {
	LoggedIn bool            `json:"loggedIn"`
	User     *models.Session `json:"user,omitempty"`
}

// publicSession strips the bearer token: it never leaves the server.
func publicSession(s *models.Session) sessionView {
	if s == nil {
		return sessionView{}
	}
	cp := *s
	cp.Token = ""
	return sessionView{LoggedIn: s.LoggedIn(), User: &cp}
}
