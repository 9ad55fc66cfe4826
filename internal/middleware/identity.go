package middleware

// identity.go holds helpers shared across middleware files.

import "github.com/labstack/echo/v4"

// userID returns the authenticated user id stored by JWTAuth, or "anon"
// when the request carries no verified token.
func userID(c echo.Context) string {
	if s, ok := c.Get(CtxUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}
