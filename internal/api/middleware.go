package api

import (
	"context"
	"strings"
	"time"

	"absence-tracker/internal/access"
	"absence-tracker/internal/redisstore"
	"absence-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	localRequestID = "request_id"
	localPrincipal = "principal"
	localToken     = "token"
	localGrant     = "admin_grant"
)

// requestLogger пишет строку лога на каждый запрос и проставляет X-Request-ID
func requestLogger(log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals(localRequestID, requestID)
		c.Set(fiber.HeaderXRequestID, requestID)

		err := c.Next()
		if err != nil {
			// Ответ формирует ErrorHandler, статус берем после него
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		fields := logrus.Fields{
			"request_id": requestID,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"duration":   time.Since(start).String(),
			"ip":         c.IP(),
		}
		if p, ok := c.Locals(localPrincipal).(access.Principal); ok {
			fields["user_id"] = p.UserID
		}

		entry := log.WithFields(fields)
		switch status := c.Response().StatusCode(); {
		case status >= fiber.StatusInternalServerError:
			entry.Error("HTTP request")
		case status >= fiber.StatusBadRequest:
			entry.Warn("HTTP request")
		default:
			entry.Info("HTTP request")
		}
		return nil
	}
}

// withTimeout ограничивает время обработки запроса через UserContext
func withTimeout(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if timeout <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// requireAuth проверяет bearer-токен и кладет Principal в Locals
func requireAuth(auth *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			return service.ErrUnauthorized
		}
		token = strings.TrimSpace(token)

		principal, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(localPrincipal, principal)
		c.Locals(localToken, token)
		return c.Next()
	}
}

// requireAdmin пропускает только администраторов и выдает AdminGrant обработчикам
func requireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		grant, err := principal(c).Admin()
		if err != nil {
			return service.ErrForbidden
		}
		c.Locals(localGrant, grant)
		return c.Next()
	}
}

func loginRateLimiter(max int, shared *redisstore.Limiter) fiber.Handler {
	limitReached := func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Too many login attempts. Please try again later.",
		})
	}

	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	if shared != nil {
		return func(c *fiber.Ctx) error {
			if !shared.Allow(c.UserContext(), c.IP()) {
				return limitReached(c)
			}
			return c.Next()
		}
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: limitReached,
	})
}

func principal(c *fiber.Ctx) access.Principal {
	p, _ := c.Locals(localPrincipal).(access.Principal)
	return p
}

func adminGrant(c *fiber.Ctx) access.AdminGrant {
	g, _ := c.Locals(localGrant).(access.AdminGrant)
	return g
}
