package api

import (
	"fmt"
	"strconv"

	"absence-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type handlers struct {
	svc Services
}

func bodyParser(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}

// pathID возвращает ID из пути; некорректный ID дает 404 для ресурса
func pathID(c *fiber.Ctx, resource string) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, &service.NotFoundError{Resource: resource, ID: c.Params("id")}
	}
	return uint(id), nil
}

func (h *handlers) register(c *fiber.Ctx) error {
	var in service.RegisterInput
	if err := bodyParser(c, &in); err != nil {
		return err
	}

	user, err := h.svc.Users.Register(c.UserContext(), in)
	if err != nil {
		return err
	}

	token, err := h.svc.Auth.Issue(user)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":         newUserResponse(user),
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int(h.svc.Auth.TTL().Seconds()),
		"message":      "User registered successfully",
	})
}

func (h *handlers) login(c *fiber.Ctx) error {
	var in service.LoginInput
	if err := bodyParser(c, &in); err != nil {
		return err
	}

	token, user, err := h.svc.Auth.Login(c.UserContext(), in)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int(h.svc.Auth.TTL().Seconds()),
		"user":         newUserResponse(user),
	})
}

func (h *handlers) me(c *fiber.Ctx) error {
	user, err := h.svc.Users.GetUser(c.UserContext(), principal(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(newUserResponse(user))
}

func (h *handlers) logout(c *fiber.Ctx) error {
	token, _ := c.Locals(localToken).(string)
	if err := h.svc.Auth.Logout(c.UserContext(), token); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Successfully logged out"})
}

func (h *handlers) updateSelf(c *fiber.Ctx) error {
	var in service.UpdateUserInput
	if err := bodyParser(c, &in); err != nil {
		return err
	}

	user, err := h.svc.Users.UpdateSelf(c.UserContext(), principal(c).UserID, in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": newUserResponse(user), "message": "User updated successfully"})
}

func (h *handlers) deleteSelf(c *fiber.Ctx) error {
	if err := h.svc.Users.DeleteSelf(c.UserContext(), principal(c).UserID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Utilisateur supprimé avec succès"})
}

func (h *handlers) statuses(c *fiber.Ctx) error {
	statuses, err := h.svc.Absences.Statuses(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"statuses": statuses})
}

func (h *handlers) submitAbsence(c *fiber.Ctx) error {
	var in service.SubmitAbsenceInput
	if err := bodyParser(c, &in); err != nil {
		return err
	}

	absence, err := h.svc.Absences.Submit(c.UserContext(), principal(c).UserID, in)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"absence": newAbsenceResponse(absence),
		"message": "Absence request submitted successfully",
	})
}

func (h *handlers) listOwnAbsences(c *fiber.Ctx) error {
	var filter service.AbsenceFilter
	if raw := c.Query("status_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return service.NewValidationError("status_id", "The selected status id is invalid.")
		}
		statusID := uint(id)
		filter.StatusID = &statusID
	}

	absences, err := h.svc.Absences.ListOwn(c.UserContext(), principal(c).UserID, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"absences": newAbsenceList(absences)})
}

func (h *handlers) listAllAbsences(c *fiber.Ctx) error {
	groups, err := h.svc.Absences.ListAll(c.UserContext(), adminGrant(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": newUserAbsencesList(groups)})
}

type setStatusRequest struct {
	StatusID *uint `json:"status_id"`
}

func (h *handlers) setAbsenceStatus(c *fiber.Ctx) error {
	id, err := pathID(c, "Absence")
	if err != nil {
		return err
	}

	var in setStatusRequest
	if err := bodyParser(c, &in); err != nil {
		return err
	}
	if in.StatusID == nil {
		return service.NewValidationError("status_id", "The status id field is required.")
	}

	absence, err := h.svc.Absences.SetStatus(c.UserContext(), adminGrant(c), id, *in.StatusID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"absence": newAbsenceResponse(absence),
		"message": "Absence status updated successfully",
	})
}

func (h *handlers) exportAbsences(c *fiber.Ctx) error {
	data, err := h.svc.Export.AbsencesXLSX(c.UserContext(), adminGrant(c))
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, "absences.xlsx"))
	return c.Send(data)
}

func (h *handlers) listUsers(c *fiber.Ctx) error {
	users, err := h.svc.Users.ListUsers(c.UserContext(), adminGrant(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": newUserList(users)})
}

func (h *handlers) updateUser(c *fiber.Ctx) error {
	id, err := pathID(c, "User")
	if err != nil {
		return err
	}

	var in service.UpdateUserInput
	if err := bodyParser(c, &in); err != nil {
		return err
	}

	user, err := h.svc.Users.UpdateUser(c.UserContext(), adminGrant(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": newUserResponse(user), "message": "User updated successfully"})
}

func (h *handlers) deleteUser(c *fiber.Ctx) error {
	id, err := pathID(c, "User")
	if err != nil {
		return err
	}

	if err := h.svc.Users.DeleteUser(c.UserContext(), adminGrant(c), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
