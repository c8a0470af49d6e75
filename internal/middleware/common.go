package middleware

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
)

// uploads are capped at 32MB by the handler; this leaves room for the form envelope.
const bodyLimit = "40M"

func Common(base *slog.Logger) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		ecM.Recover(),
		ecM.RequestIDWithConfig(ecM.RequestIDConfig{Generator: uuid.NewString}),
		RequestLogger(base),
		ecM.SecureWithConfig(ecM.SecureConfig{
			XSSProtection:      "0",
			ContentTypeNosniff: "nosniff",
			XFrameOptions:      "DENY",
			ReferrerPolicy:     "same-origin",
		}),
		ecM.BodyLimit(bodyLimit),
	}
}
