// Package api - REST транспорт на fiber.
package api

import (
	"time"

	"absence-tracker/internal/redisstore"
	"absence-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

type Services struct {
	Auth     *service.AuthService
	Users    *service.UserService
	Absences *service.AbsenceService
	Export   *service.ExportService
}

type Options struct {
	RequestTimeout time.Duration
	// Попыток входа в минуту с одного IP
	LoginRateLimit int
	// Общий лимитер в Redis; если nil, используется лимитер fiber в памяти
	LoginLimiter *redisstore.Limiter
	CORSOrigins  string
	Logger       *logrus.Logger
}

// NewApp собирает fiber-приложение со всеми маршрутами
func NewApp(svc Services, opts Options) *fiber.App {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.CORSOrigins == "" {
		opts.CORSOrigins = "*"
	}

	app := fiber.New(fiber.Config{
		AppName:               "absence-tracker",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(opts.Logger),
	})

	app.Use(requestLogger(opts.Logger))
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	h := &handlers{svc: svc}

	api := app.Group("/api", withTimeout(opts.RequestTimeout))
	api.Post("/register", h.register)
	api.Post("/login", loginRateLimiter(opts.LoginRateLimit, opts.LoginLimiter), h.login)

	auth := api.Group("", requireAuth(svc.Auth))
	auth.Get("/me", h.me)
	auth.Post("/logout", h.logout)
	auth.Put("/update", h.updateSelf)
	auth.Delete("/delete", h.deleteSelf)
	auth.Get("/statuses", h.statuses)
	auth.Post("/absences", h.submitAbsence)
	auth.Get("/absences", h.listOwnAbsences)

	admin := auth.Group("/admin", requireAdmin())
	admin.Get("/absences", h.listAllAbsences)
	admin.Get("/absences/export", h.exportAbsences)
	admin.Put("/absences/:id/status", h.setAbsenceStatus)
	admin.Get("/users", h.listUsers)
	admin.Put("/users/:id", h.updateUser)
	admin.Delete("/users/:id", h.deleteUser)

	return app
}
