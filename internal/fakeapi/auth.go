package fakeapi

import (
	"net/http"
	"slices"
	"strings"

	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
	"github.com/Skotchmaster/diamond_shop/internal/util"
	"github.com/labstack/echo/v4"
)

func (s *Server) sessionFor(u models.User) (models.Session, error) {
	tok, err := s.IssueToken(u)
	if err != nil {
		return models.Session{}, err
	}
	return models.Session{
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Approval:  u.Approval,
		Token:     tok,
		CreatedAt: u.CreatedAt,
	}, nil
}

func (s *Server) register(c echo.Context) error {
	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Please add all fields"})
	}
	if req.Role == "" {
		req.Role = models.RoleBuyer
	}
	if req.Role == models.RoleAdmin || !req.Role.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid role"})
	}

	s.mu.Lock()
	if _, exists := s.accounts[strings.ToLower(req.Email)]; exists {
		s.mu.Unlock()
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "User already exists"})
	}
	s.mu.Unlock()

	approval := models.ApprovalStatus("")
	if req.Role == models.RoleSupplier {
		approval = models.ApprovalPending
	}
	u := s.AddUser(req.Name, req.Email, req.Password, req.Role, approval)
	if req.Company != "" {
		s.mu.Lock()
		s.accounts[strings.ToLower(req.Email)].user.Company = req.Company
		u.Company = req.Company
		s.mu.Unlock()
	}

	sess, err := s.sessionFor(u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": err.Error()})
	}
	return c.JSON(http.StatusCreated, sess)
}

func (s *Server) login(c echo.Context) error {
	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	s.mu.Lock()
	a, ok := s.accounts[strings.ToLower(req.Email)]
	var u models.User
	if ok {
		u = a.user
	}
	s.mu.Unlock()

	if !ok || a.password != req.Password {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid email or password"})
	}
	sess, err := s.sessionFor(u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": err.Error()})
	}
	return c.JSON(http.StatusOK, sess)
}

func (s *Server) updateProfile(c echo.Context) error {
	var req transport.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.userByID(current(c).ID)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
	}
	if req.Name != "" {
		a.user.Name = req.Name
	}
	if req.Email != "" && !strings.EqualFold(req.Email, a.user.Email) {
		if _, taken := s.accounts[strings.ToLower(req.Email)]; taken {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email already in use"})
		}
		delete(s.accounts, strings.ToLower(a.user.Email))
		a.user.Email = req.Email
		s.accounts[strings.ToLower(req.Email)] = a
	}
	return c.JSON(http.StatusOK, a.user)
}

func (s *Server) listUsers(c echo.Context) error {
	role := models.Role(c.QueryParam("role"))
	search := strings.ToLower(c.QueryParam("search"))

	s.mu.Lock()
	var users []models.User
	for _, a := range s.accounts {
		if role != "" && a.user.Role != role {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(a.user.Name+" "+a.user.Email), search) {
			continue
		}
		users = append(users, a.user)
	}
	s.mu.Unlock()

	sortUsers(users)
	page, limit, from, to := pageWindow(c, len(users))
	return c.JSON(http.StatusOK, echo.Map{
		"items": users[from:to],
		"page":  page,
		"pages": util.TotalPages(len(users), limit),
		"total": len(users),
	})
}

func (s *Server) setApproval(c echo.Context) error {
	var req transport.ApprovalRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.userByID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
	}
	if a.user.Role != models.RoleSupplier {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Only suppliers require approval"})
	}
	a.user.Approval = req.Approval
	return c.JSON(http.StatusOK, a.user)
}

func (s *Server) deleteUser(c echo.Context) error {
	me := current(c)
	id := c.Param("id")
	if me.Role != models.RoleAdmin && me.ID != id {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Access denied"})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.userByID(id)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
	}
	delete(s.accounts, strings.ToLower(a.user.Email))
	delete(s.carts, id)
	delete(s.wishlists, id)
	delete(s.addresses, id)
	delete(s.notifications, id)
	return c.NoContent(http.StatusNoContent)
}

func sortUsers(users []models.User) {
	slices.SortFunc(users, func(a, b models.User) int { return strings.Compare(a.Email, b.Email) })
}
