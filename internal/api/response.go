package api

import (
	"errors"
	"time"

	"absence-tracker/internal/models"
	"absence-tracker/internal/service"
	"absence-tracker/pkg/period"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// errorHandler переводит ошибки сервисов в HTTP-ответы
func errorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			verr  *service.ValidationError
			cerr  *service.ConflictError
			nferr *service.NotFoundError
			ferr  *fiber.Error
		)

		switch {
		case errors.As(err, &verr):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  verr.Error(),
				"errors": verr.Fields,
			})
		case errors.As(err, &cerr):
			return errorJSON(c, fiber.StatusUnprocessableEntity, cerr.Message)
		case errors.As(err, &nferr):
			return errorJSON(c, fiber.StatusNotFound, nferr.Error())
		case errors.Is(err, service.ErrInvalidCredentials):
			return errorJSON(c, fiber.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, service.ErrUnauthorized):
			return errorJSON(c, fiber.StatusUnauthorized, "Unauthenticated.")
		case errors.Is(err, service.ErrForbidden):
			return errorJSON(c, fiber.StatusForbidden, "Forbidden")
		case errors.As(err, &ferr):
			return errorJSON(c, ferr.Code, ferr.Message)
		}

		log.WithFields(logrus.Fields{
			"request_id": c.Locals(localRequestID),
			"path":       c.Path(),
		}).WithError(err).Error("Unhandled error")
		return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
	}
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

type absenceResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Reason    string    `json:"reason"`
	StatusID  uint      `json:"status_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newAbsenceResponse(a *models.Absence) absenceResponse {
	p := a.Period()
	return absenceResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		StartDate: p.Start.Format(period.ISOLayout),
		EndDate:   p.End.Format(period.ISOLayout),
		Reason:    a.Reason,
		StatusID:  a.StatusID,
		Status:    a.StatusLabel(),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func newAbsenceList(absences []models.Absence) []absenceResponse {
	out := make([]absenceResponse, 0, len(absences))
	for i := range absences {
		out = append(out, newAbsenceResponse(&absences[i]))
	}
	return out
}

type userResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	FirstName  string    `json:"firstname"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Admin      bool      `json:"admin"`
	ChatLinked bool      `json:"telegram_linked"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Name:       u.Name,
		FirstName:  u.FirstName,
		Email:      u.Email,
		Role:       string(u.Role),
		Admin:      u.IsAdmin(),
		ChatLinked: u.ChatID != nil,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func newUserList(users []models.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, newUserResponse(&users[i]))
	}
	return out
}

type userSummary struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"firstname"`
	Email     string `json:"email"`
}

type userAbsencesResponse struct {
	User     userSummary       `json:"user"`
	Absences []absenceResponse `json:"absences"`
}

func newUserAbsencesList(groups []service.UserAbsences) []userAbsencesResponse {
	out := make([]userAbsencesResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, userAbsencesResponse{
			User: userSummary{
				ID:        g.User.ID,
				Name:      g.User.Name,
				FirstName: g.User.FirstName,
				Email:     g.User.Email,
			},
			Absences: newAbsenceList(g.Absences),
		})
	}
	return out
}
