package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"papertrade/internal/delivery/http/dto"
	"papertrade/internal/domain"
	"papertrade/internal/middleware"
)

const genericApology = "Something went wrong"

// RenderPage renders a full page, filling the layout fields
func RenderPage(c echo.Context, status int, name string, page *dto.Page) error {
	if rc, err := middleware.GetRequestContext(c); err == nil {
		page.LoggedIn = true
		page.CurrentUser = rc.Username
	}
	return c.Render(status, name, page)
}

// Apology renders the apology page
func Apology(c echo.Context, status int, message string) error {
	return RenderPage(c, status, "apology", &dto.Page{Status: status, Message: message})
}

// StatusFor maps an error kind to the response status
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidCredentials:
		return http.StatusForbidden
	case domain.KindUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// renderFormError re-renders a form with the message of a domain error.
// Anything else is logged and answered with a generic apology.
func renderFormError(c echo.Context, logger *zap.Logger, name string, page *dto.Page, err error) error {
	var de *domain.Error
	if !errors.As(err, &de) {
		return internalError(c, logger, err)
	}
	page.Error = de.Message
	return RenderPage(c, StatusFor(de.Kind), name, page)
}

func internalError(c echo.Context, logger *zap.Logger, err error) error {
	logger.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("uri", c.Request().RequestURI),
		zap.Error(err),
	)
	return Apology(c, http.StatusInternalServerError, genericApology)
}

// NewErrorHandler renders errors that escape handlers as apology pages
func NewErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := genericApology

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			message = http.StatusText(status)
			if m, ok := he.Message.(string); ok && m != "" {
				message = m
			}
		} else {
			logger.Error("unhandled error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		}

		if err := Apology(c, status, message); err != nil {
			logger.Error("failed to render apology", zap.Error(err))
		}
	}
}
