// Package csrf guards the storefront's cookie-authenticated routes with a
// double-submit token: the browser echoes the readable token cookie in a
// request header on every state-changing call.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	ctxToken = "csrf_token"
	ctxGuard = "csrf_guard"

	tokenBytes = 32
)

type Config struct {
	CookieName string
	HeaderName string

	CookiePath string
	Secure     bool
	SameSite   http.SameSite
	MaxAge     time.Duration

	EnforceSameOrigin bool

	// SkipPaths are exact request paths, or prefixes when they end in "*".
	SkipPaths []string
}

func DefaultConfig() Config {
	return Config{
		CookieName:        "XSRF-TOKEN",
		HeaderName:        "X-CSRF-Token",
		CookiePath:        "/",
		SameSite:          http.SameSiteLaxMode,
		MaxAge:            24 * time.Hour,
		EnforceSameOrigin: true,
	}
}

type guard struct {
	cfg      Config
	exact    map[string]struct{}
	prefixes []string
}

func newGuard(cfg Config) *guard {
	def := DefaultConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = def.HeaderName
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = def.CookiePath
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = def.SameSite
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}

	g := &guard{cfg: cfg, exact: map[string]struct{}{}}
	for _, p := range cfg.SkipPaths {
		if prefix, ok := strings.CutSuffix(p, "*"); ok {
			g.prefixes = append(g.prefixes, prefix)
			continue
		}
		g.exact[p] = struct{}{}
	}
	return g
}

func (g *guard) skipped(path string) bool {
	if _, ok := g.exact[path]; ok {
		return true
	}
	for _, p := range g.prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (g *guard) issue(c echo.Context) (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(b)
	c.SetCookie(&http.Cookie{
		Name:     g.cfg.CookieName,
		Value:    token,
		Path:     g.cfg.CookiePath,
		Secure:   g.cfg.Secure,
		HttpOnly: false,
		MaxAge:   int(g.cfg.MaxAge.Seconds()),
		SameSite: g.cfg.SameSite,
	})
	c.Response().Header().Set(g.cfg.HeaderName, token)
	c.Set(ctxToken, token)
	return token, nil
}

func (g *guard) check(c echo.Context, token string) error {
	req := c.Request()
	if g.cfg.EnforceSameOrigin && !sameOrigin(req) {
		return echo.NewHTTPError(http.StatusForbidden, "invalid origin")
	}
	provided := req.Header.Get(g.cfg.HeaderName)
	if provided == "" || subtle.ConstantTimeCompare([]byte(token), []byte(provided)) != 1 {
		return echo.NewHTTPError(http.StatusForbidden, "invalid CSRF token")
	}
	return nil
}

func Middleware(cfg Config) echo.MiddlewareFunc {
	g := newGuard(cfg)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.Set(ctxGuard, g)
			if g.skipped(req.URL.Path) {
				return next(c)
			}

			var token string
			if ck, err := req.Cookie(g.cfg.CookieName); err == nil {
				token = ck.Value
			}
			if token == "" {
				var err error
				if token, err = g.issue(c); err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "failed to create CSRF token")
				}
			}
			c.Set(ctxToken, token)

			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				c.Response().Header().Set(g.cfg.HeaderName, token)
				return next(c)
			}
			if err := g.check(c, token); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// Token returns the token of the current request, empty when the route skipped the check.
func Token(c echo.Context) string {
	t, _ := c.Get(ctxToken).(string)
	return t
}

// Rotate replaces the token after the identity behind the browser session
// changes. It does nothing when the middleware is not installed.
func Rotate(c echo.Context) error {
	g, ok := c.Get(ctxGuard).(*guard)
	if !ok {
		return nil
	}
	_, err := g.issue(c)
	return err
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = r.Header.Get("Referer")
	}
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, schemeOf(r)) && strings.EqualFold(u.Host, r.Host)
}

func schemeOf(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-Proto"); xf != "" {
		return xf
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
