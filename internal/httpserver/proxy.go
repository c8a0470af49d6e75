package httpserver

import (
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/Skotchmaster/diamond_shop/internal/apiclient"
	"github.com/Skotchmaster/diamond_shop/internal/middleware"
	echo "github.com/labstack/echo/v4"
)

// newAssistProxy forwards stripPrefix/* to the backend's addPrefix/* with the
// workspace's bearer token and the storefront request id. Browser cookies and
// the CSRF header stay on this side.
func newAssistProxy(target, stripPrefix, addPrefix string) (echo.HandlerFunc, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}

	baseTransport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	p := httputil.NewSingleHostReverseProxy(u)
	p.Transport = baseTransport

	origDirector := p.Director
	p.Director = func(req *http.Request) {
		originalHost := req.Host
		originalProto := "http"
		if req.TLS != nil {
			originalProto = "https"
		} else if xf := req.Header.Get("X-Forwarded-Proto"); xf != "" {
			originalProto = xf
		}

		if strings.HasPrefix(req.URL.Path, stripPrefix) {
			req.URL.Path = addPrefix + strings.TrimPrefix(req.URL.Path, stripPrefix)
			req.URL.RawPath = ""
		}
		origDirector(req)

		req.Header.Del("Cookie")
		req.Header.Del("X-CSRF-Token")
		req.Header.Set("X-Forwarded-Proto", originalProto)
		if originalHost != "" {
			req.Header.Set("X-Forwarded-Host", originalHost)
		}
	}
	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"status":"failed","error":"assistant unavailable"}`))
	}
	p.FlushInterval = 100 * time.Millisecond

	return func(c echo.Context) error {
		ws := middleware.WorkspaceFrom(c)
		token, ok := ws.Session.Token()
		if !ok {
			return failure(c, apiclient.ErrUnauthorized)
		}
		req := c.Request()
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		if rid := c.Response().Header().Get(echo.HeaderXRequestID); rid != "" {
			req.Header.Set(echo.HeaderXRequestID, rid)
		}
		p.ServeHTTP(c.Response(), req)
		return nil
	}, nil
}
