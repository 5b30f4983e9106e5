package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"papertrade/configs"
	"papertrade/internal/domain"
)

const requestContextKey = "request_context"

// ErrInvalidSessionToken is returned for a missing, tampered or expired cookie
var ErrInvalidSessionToken = errors.New("invalid session token")

// SessionClaims represents the session cookie claims
type SessionClaims struct {
	SessionID uuid.UUID `json:"sid"`
	jwt.RegisteredClaims
}

// RequestContext carries the authenticated caller through a request
type RequestContext struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
	Username  string
}

// UserResolver maps a session to the user it belongs to
type UserResolver interface {
	CurrentUser(ctx context.Context, sessionID uuid.UUID) (*domain.User, error)
}

// SessionCookie signs and reads the session cookie
type SessionCookie struct {
	name   string
	secret []byte
	secure bool
	now    func() time.Time
}

// NewSessionCookie creates a SessionCookie from configuration
func NewSessionCookie(cfg configs.SessionConfig) *SessionCookie {
	return &SessionCookie{
		name:   cfg.CookieName,
		secret: []byte(cfg.Secret),
		secure: cfg.Secure,
		now:    time.Now,
	}
}

// Name returns the cookie name
func (sc *SessionCookie) Name() string {
	return sc.name
}

// GenerateToken signs a token referencing the session
func (sc *SessionCookie) GenerateToken(session *domain.Session) (string, error) {
	claims := &SessionClaims{
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(sc.secret)
}

// ParseToken validates a token and returns the session id it references
func (sc *SessionCookie) ParseToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return sc.secret, nil
	}, jwt.WithTimeFunc(sc.now))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidSessionToken, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SessionID == uuid.Nil {
		return uuid.Nil, ErrInvalidSessionToken
	}
	return claims.SessionID, nil
}

// Set writes the session cookie
func (sc *SessionCookie) Set(c echo.Context, session *domain.Session) error {
	token, err := sc.GenerateToken(session)
	if err != nil {
		return fmt.Errorf("failed to sign session token: %w", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     sc.name,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   sc.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie
func (sc *SessionCookie) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sc.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   sc.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionID returns the session id carried by the request cookie, if any
func (sc *SessionCookie) SessionID(c echo.Context) (uuid.UUID, error) {
	cookie, err := c.Cookie(sc.name)
	if err != nil || cookie.Value == "" {
		return uuid.Nil, ErrInvalidSessionToken
	}
	return sc.ParseToken(cookie.Value)
}

// AuthMiddleware resolves the session cookie and redirects anonymous callers to /login
func AuthMiddleware(cookies *SessionCookie, users UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sessionID, err := cookies.SessionID(c)
			if err != nil {
				return c.Redirect(http.StatusFound, "/login")
			}

			user, err := users.CurrentUser(c.Request().Context(), sessionID)
			if errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrUserNotFound) {
				cookies.Clear(c)
				return c.Redirect(http.StatusFound, "/login")
			}
			if err != nil {
				return fmt.Errorf("failed to load session: %w", err)
			}

			c.Set(requestContextKey, &RequestContext{
				UserID:    user.ID,
				SessionID: sessionID,
				Username:  user.Username,
			})

			return next(c)
		}
	}
}

// GetRequestContext extracts the caller set by AuthMiddleware
func GetRequestContext(c echo.Context) (*RequestContext, error) {
	rc, ok := c.Get(requestContextKey).(*RequestContext)
	if !ok {
		return nil, fmt.Errorf("request context not found")
	}
	return rc, nil
}

// GetUserID extracts user ID from echo context
func GetUserID(c echo.Context) (uuid.UUID, error) {
	rc, err := GetRequestContext(c)
	if err != nil {
		return uuid.Nil, err
	}
	return rc.UserID, nil
}
