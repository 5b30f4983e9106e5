package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"papertrade/internal/delivery/http/dto"
	"papertrade/internal/domain"
	"papertrade/internal/middleware"
)

// AuthHandler handles login, logout and registration pages
type AuthHandler struct {
	authService domain.AuthService
	cookies     *middleware.SessionCookie
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService domain.AuthService, cookies *middleware.SessionCookie, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
		logger:      logger.Named("auth_handler"),
	}
}

// HandleLogin renders the login form. Any current session is ended first.
// GET /login
func (h *AuthHandler) HandleLogin(c echo.Context) error {
	h.endSession(c)
	return RenderPage(c, http.StatusOK, "login", &dto.Page{})
}

// HandleLoginPost authenticates the user
// POST /login
func (h *AuthHandler) HandleLoginPost(c echo.Context) error {
	var form dto.LoginForm
	if err := c.Bind(&form); err != nil {
		return Apology(c, http.StatusBadRequest, "Invalid form submission")
	}

	h.endSession(c)

	session, err := h.authService.Login(c.Request().Context(), form.Username, form.Password)
	if err != nil {
		return renderFormError(c, h.logger, "login", &dto.Page{Username: form.Username}, err)
	}

	if err := h.cookies.Set(c, session); err != nil {
		return internalError(c, h.logger, err)
	}
	return c.Redirect(http.StatusFound, "/")
}

// HandleLogout ends the session
// GET /logout
func (h *AuthHandler) HandleLogout(c echo.Context) error {
	h.endSession(c)
	return c.Redirect(http.StatusFound, "/")
}

// HandleRegister renders the registration form
// GET /register
func (h *AuthHandler) HandleRegister(c echo.Context) error {
	return RenderPage(c, http.StatusOK, "register", &dto.Page{})
}

// HandleRegisterPost creates the account and logs the new user in
// POST /register
func (h *AuthHandler) HandleRegisterPost(c echo.Context) error {
	var form dto.RegisterForm
	if err := c.Bind(&form); err != nil {
		return Apology(c, http.StatusBadRequest, "Invalid form submission")
	}

	session, err := h.authService.Register(c.Request().Context(), form.Username, form.Password, form.Confirmation)
	if err != nil {
		return renderFormError(c, h.logger, "register", &dto.Page{Username: form.Username}, err)
	}

	if err := h.cookies.Set(c, session); err != nil {
		return internalError(c, h.logger, err)
	}
	middleware.SetFlash(c, "Registered!")
	return c.Redirect(http.StatusFound, "/")
}

// endSession deletes the session referenced by the request cookie, if any,
// and expires the cookie. The cookie is cleared even when the backend delete
// fails; the orphaned session then lapses with its TTL.
func (h *AuthHandler) endSession(c echo.Context) {
	if _, err := c.Cookie(h.cookies.Name()); err != nil {
		return
	}

	if sessionID, err := h.cookies.SessionID(c); err == nil {
		if err := h.authService.Logout(c.Request().Context(), sessionID); err != nil {
			h.logger.Error("failed to delete session",
				zap.String("session_id", sessionID.String()),
				zap.Error(err),
			)
		}
	}
	h.cookies.Clear(c)
}
