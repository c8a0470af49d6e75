// Package fakeapi is an in-memory implementation of the marketplace backend
// contract. It records every request so tests can assert on call counts and
// forwarded credentials.
package fakeapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/util"
	"github.com/Skotchmaster/diamond_shop/pkg/tokens"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const ctxUserKey = "fakeapi.user"

type account struct {
	user     models.User
	password string
}

type failure struct {
	status  int
	message string
}

type Server struct {
	Echo   *echo.Echo
	secret []byte
	ttl    time.Duration

	mu            sync.Mutex
	accounts      map[string]*account
	diamonds      []models.Diamond
	carts         map[string][]models.CartEntry
	wishlists     map[string][]models.WishlistEntry
	orders        []models.Order
	addresses     map[string][]models.Address
	notifications map[string][]models.Notification
	feedHeaders   []string
	feedRows      [][]string
	gatewayOrders map[string]string

	hits     map[string]int
	authSeen map[string][]string
	failures map[string]failure
}

func New() *Server {
	s := &Server{
		Echo:          echo.New(),
		secret:        []byte("fakeapi-" + uuid.NewString()),
		ttl:           time.Hour,
		accounts:      map[string]*account{},
		carts:         map[string][]models.CartEntry{},
		wishlists:     map[string][]models.WishlistEntry{},
		addresses:     map[string][]models.Address{},
		notifications: map[string][]models.Notification{},
		gatewayOrders: map[string]string{},
		hits:          map[string]int{},
		authSeen:      map[string][]string{},
		failures:      map[string]failure{},
	}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.Use(s.record)
	s.routes()
	return s
}

// Start serves the fake on a loopback listener.
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s.Echo)
}

func (s *Server) routes() {
	e := s.Echo

	e.POST("/auth/register", s.register)
	e.POST("/auth/login", s.login)
	e.PUT("/auth/profile", s.updateProfile, s.requireUser)
	e.GET("/auth/users", s.listUsers, s.requireUser, s.requireRole(models.RoleAdmin))
	e.PUT("/auth/users/:id", s.setApproval, s.requireUser, s.requireRole(models.RoleAdmin))
	e.DELETE("/auth/users/:id", s.deleteUser, s.requireUser)

	e.GET("/inventory", s.listDiamonds, s.optionalUser)
	e.GET("/inventory/mine", s.listOwnInventory, s.requireUser, s.requireSupplier)
	e.GET("/inventory/:stockId", s.getDiamond, s.optionalUser)
	e.POST("/inventory", s.addDiamond, s.requireUser, s.requireSupplier)
	e.PUT("/inventory/:stockId", s.updateDiamond, s.requireUser, s.requireSupplier)
	e.DELETE("/inventory/:stockId", s.deleteDiamond, s.requireUser, s.requireSupplier)
	e.POST("/inventory/upload/csv", s.uploadCSV, s.requireUser, s.requireSupplier)
	e.POST("/inventory/upload/http", s.uploadFeed, s.requireUser, s.requireSupplier)
	e.POST("/inventory/upload/ftp", s.uploadFeed, s.requireUser, s.requireSupplier)
	e.POST("/inventory/preview/http", s.previewFeed, s.requireUser, s.requireSupplier)
	e.POST("/inventory/preview/ftp", s.previewFeed, s.requireUser, s.requireSupplier)

	cart := e.Group("/cart", s.requireUser)
	cart.GET("", s.getCart)
	cart.POST("", s.addToCart)
	cart.DELETE("/:diamondId", s.removeFromCart)
	cart.POST("/:diamondId/move", s.moveCartToWishlist)

	wishlist := e.Group("/wishlist", s.requireUser)
	wishlist.GET("", s.getWishlist)
	wishlist.POST("", s.addToWishlist)
	wishlist.DELETE("/:diamondId", s.removeFromWishlist)
	wishlist.POST("/:diamondId/move", s.moveWishlistToCart)

	orders := e.Group("/orders", s.requireUser)
	orders.POST("", s.createOrder)
	orders.POST("/verify-payment", s.verifyPayment)
	orders.GET("/mine", s.myOrders)
	orders.GET("/seller", s.sellerOrders, s.requireSupplier)
	orders.GET("/:id", s.getOrder)

	addresses := e.Group("/addresses", s.requireUser)
	addresses.GET("", s.listAddresses)
	addresses.POST("", s.createAddress)
	addresses.PUT("/:id", s.updateAddress)
	addresses.DELETE("/:id", s.deleteAddress)

	notifications := e.Group("/notifications", s.requireUser)
	notifications.GET("", s.listNotifications)
	notifications.PATCH("/read-all", s.markAllRead)
	notifications.PATCH("/:id/read", s.markRead)

	e.GET("/dashboard/supplier", s.dashboard, s.requireUser, s.requireSupplier)

	e.POST("/ai/*", s.assist, s.requireUser)
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Method + " " + c.Path()

		s.mu.Lock()
		s.hits[key]++
		s.authSeen[key] = append(s.authSeen[key], c.Request().Header.Get("Authorization"))
		f, fail := s.failures[key]
		s.mu.Unlock()

		if fail {
			return c.JSON(f.status, echo.Map{"message": f.message})
		}
		return next(c)
	}
}

// Hits returns how many requests reached route, e.g. "GET /cart".
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.hits {
		n += v
	}
	return n
}

// AuthHeaders returns the Authorization header of every request to route.
func (s *Server) AuthHeaders(route string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.authSeen[route]...)
}

// Fail makes route answer with status and message until Recover is called.
// An empty message sends an empty body.
func (s *Server) Fail(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, message: message}
}

func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// AddUser seeds an account and returns it.
func (s *Server) AddUser(name, email, password string, role models.Role, approval models.ApprovalStatus) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := models.User{ID: uuid.NewString(), Name: name, Email: email, Role: role, Approval: approval, CreatedAt: time.Now().UTC()}
	s.accounts[strings.ToLower(email)] = &account{user: u, password: password}
	return u
}

// AddDiamond seeds a catalog entry.
func (s *Server) AddDiamond(d models.Diamond) models.Diamond {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Availability == "" {
		d.Availability = models.AvailabilityAvailable
	}
	s.diamonds = append(s.diamonds, d)
	return d
}

func (s *Server) AddNotification(userID string, n models.Notification) models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	s.notifications[userID] = append(s.notifications[userID], n)
	return n
}

// SetFeed defines what the remote HTTP and FTP sources return.
func (s *Server) SetFeed(headers []string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedHeaders = append([]string(nil), headers...)
	s.feedRows = rows
}

// IssueToken signs a session token for a seeded user.
func (s *Server) IssueToken(u models.User) (string, error) {
	return tokens.Sign(tokens.SessionClaims{
		UserID: u.ID,
		Role:   string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
		},
	}, s.secret)
}

func (s *Server) Diamonds() []models.Diamond {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Diamond(nil), s.diamonds...)
}

func (s *Server) userByID(id string) (*account, bool) {
	for _, a := range s.accounts {
		if a.user.ID == id {
			return a, true
		}
	}
	return nil, false
}

func (s *Server) optionalUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if u, ok := s.authenticate(c); ok {
			c.Set(ctxUserKey, u)
		}
		return next(c)
	}
}

func (s *Server) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, ok := s.authenticate(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized, no token"})
		}
		c.Set(ctxUserKey, u)
		return next(c)
	}
}

func (s *Server) requireRole(role models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if current(c).Role != role {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "Access denied"})
			}
			return next(c)
		}
	}
}

func (s *Server) requireSupplier(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		u := current(c)
		switch {
		case u.Role == models.RoleAdmin:
		case u.Role == models.RoleSupplier && u.Approval == models.ApprovalApproved:
		case u.Role == models.RoleSupplier:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "Supplier account pending approval"})
		default:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "Access denied"})
		}
		return next(c)
	}
}

func (s *Server) authenticate(c echo.Context) (models.User, bool) {
	h := c.Request().Header.Get("Authorization")
	raw, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || raw == "" {
		return models.User{}, false
	}
	claims, err := tokens.Verify(raw, s.secret)
	if err != nil {
		return models.User{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.userByID(claims.UserID)
	if !ok {
		return models.User{}, false
	}
	return a.user, true
}

func current(c echo.Context) models.User {
	u, _ := c.Get(ctxUserKey).(models.User)
	return u
}

func pageWindow(c echo.Context, total int) (page, limit, from, to int) {
	page, limit = util.NormalizePage(
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("limit"), 0),
	)
	from = min((page-1)*limit, total)
	to = min(from+limit, total)
	return page, limit, from, to
}
