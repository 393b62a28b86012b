package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/existflow/dayboard/internal/logger"
)

// Principal is the authenticated caller
type Principal struct {
	UserID string
	Name   string
	Admin  bool
	viaJWT bool
}

const principalKey = "principal"

func principalOf(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}

// requestLogger logs every request and its outcome
func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		res := c.Response()
		fields := []logger.Field{
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("status", res.Status),
			logger.F("size", res.Size),
			logger.F("duration", time.Since(start).String()),
			logger.F("request_id", res.Header().Get(echo.HeaderXRequestID)),
		}
		if res.Status >= http.StatusInternalServerError {
			logger.Error("HTTP Request", fields...)
		} else {
			logger.Info("HTTP Request", fields...)
		}
		return nil
	}
}

// identify resolves the bearer token, if any, into a Principal. Invalid
// tokens are rejected; a missing token leaves the request anonymous.
func (s *Server) identify(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		if auth == "" {
			return next(c)
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
		}

		var (
			p   Principal
			err error
		)
		if s.jwt != nil && strings.Count(token, ".") == 2 {
			p, err = s.jwt.Verify(token)
			if err == nil {
				p.Admin = p.Admin || s.admins[p.UserID]
			}
		} else {
			p, err = s.lookupSession(c.Request().Context(), token)
		}
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
		}

		c.Set(principalKey, p)
		return next(c)
	}
}

// requireUser rejects anonymous requests
func requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := principalOf(c); !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authorization required"})
		}
		return next(c)
	}
}

// requireAdmin rejects callers that may not change data
func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if p, ok := principalOf(c); !ok || !p.Admin {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "admin privileges required"})
		}
		return next(c)
	}
}
