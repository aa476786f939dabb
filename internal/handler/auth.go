package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-api/internal/middleware"
	"github.com/iliyamo/todo-api/internal/service"
)

// AuthHandler serves signup, login, logout and the current user.
type AuthHandler struct {
	svc          *service.AuthService
	secureCookie bool
	cookieMaxAge int
}

// NewAuthHandler binds the auth endpoints. secure marks the session cookie
// Secure (production only); ttl becomes the cookie's Max-Age.
func NewAuthHandler(svc *service.AuthService, secure bool, ttl time.Duration) *AuthHandler {
	return &AuthHandler{svc: svc, secureCookie: secure, cookieMaxAge: int(ttl / time.Second)}
}

// ----- DTOs -----

type signupReq struct {
	Name     string `json:"name" validate:"required,min=6"`
	Email    string `json:"email" validate:"required,email,min=6"`
	Password string `json:"password" validate:"required,min=6"`
	// Accepted for compatibility and ignored: signup always creates USER.
	Role string `json:"role"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signupResp struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type sessionResp struct {
	UserID  uint64 `json:"userId"`
	Message string `json:"message"`
}

// Signup: create a USER account.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := bindAndValidate(c, &req, func() {
		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.TrimSpace(req.Email)
		req.Password = strings.TrimSpace(req.Password)
	}); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.svc.Signup(ctx, service.SignupInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, signupResp{Email: u.Email, Role: string(u.Role)})
}

// Login: verify credentials and hand out the session cookie. The token is
// never part of the body.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindAndValidate(c, &req, func() {
		req.Email = strings.TrimSpace(req.Email)
		req.Password = strings.TrimSpace(req.Password)
	}); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	res, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	c.SetCookie(h.cookie(res.Session.Token, h.cookieMaxAge))
	return c.JSON(http.StatusOK, sessionResp{UserID: res.User.ID, Message: service.MsgLoginSuccessful})
}

// Logout: delete the session this request authenticated with and clear the
// cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	row, err := h.svc.Logout(ctx, id)
	if err != nil {
		return err
	}
	c.SetCookie(h.cookie("", -1))
	return c.JSON(http.StatusCreated, sessionResp{UserID: row.UserID, Message: service.MsgLogoutSuccessful})
}

// Me: the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.svc.Me(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// cookie builds the session cookie. A negative maxAge deletes it.
func (h *AuthHandler) cookie(value string, maxAge int) *http.Cookie {
	ck := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		ck.Expires = time.Unix(0, 0)
	}
	return ck
}
