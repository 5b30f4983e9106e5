package middleware

import "github.com/labstack/echo/v4"

// NoCache marks every response as non-cacheable
func NoCache() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(echo.HeaderCacheControl, "no-cache, no-store, must-revalidate")
			h.Set("Expires", "0")
			h.Set("Pragma", "no-cache")
			return next(c)
		}
	}
}
