package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"absence-tracker/internal/access"
	"absence-tracker/internal/models"
	"absence-tracker/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Name                 string `json:"name" validate:"required,max=255"`
	FirstName            string `json:"firstname" validate:"max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// UpdateUserInput - пустые поля не меняются. Admin учитывается только в UpdateUser.
type UpdateUserInput struct {
	Name                 string `json:"name" validate:"max=255"`
	FirstName            string `json:"firstname" validate:"max=255"`
	Email                string `json:"email" validate:"omitempty,email,max=255"`
	Password             string `json:"password" validate:"omitempty,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required_with=Password,eqfield=Password"`
	Admin                *bool  `json:"admin"`
}

type UserService struct {
	repo   repository.UserRepository
	logger *logrus.Logger
}

func NewUserService(repo repository.UserRepository, logger *logrus.Logger) *UserService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &UserService{repo: repo, logger: logger}
}

// Register создает сотрудника с ролью employee
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:      in.Name,
		FirstName: strings.TrimSpace(in.FirstName),
		Email:     in.Email,
		Password:  hash,
		Role:      models.RoleEmployee,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, NewValidationError("email", "The email has already been taken.")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

// Authenticate проверяет email и пароль
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser возвращает пользователя по ID
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "User", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetByChatID возвращает пользователя, привязанного к чату Telegram
func (s *UserService) GetByChatID(ctx context.Context, chatID int64) (*models.User, error) {
	user, err := s.repo.GetByChatID(ctx, chatID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "User", ID: chatID}
	}
	if err != nil {
		return nil, fmt.Errorf("get user by chat: %w", err)
	}
	return user, nil
}

// UpdateSelf обновляет собственный профиль; роль не меняется
func (s *UserService) UpdateSelf(ctx context.Context, userID uint, in UpdateUserInput) (*models.User, error) {
	in.Admin = nil
	return s.update(ctx, userID, in)
}

// UpdateUser обновляет любого пользователя (только для админов)
func (s *UserService) UpdateUser(ctx context.Context, grant access.AdminGrant, userID uint, in UpdateUserInput) (*models.User, error) {
	if !grant.Valid() {
		return nil, ErrForbidden
	}
	return s.update(ctx, userID, in)
}

func (s *UserService) update(ctx context.Context, userID uint, in UpdateUserInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Обновляем только заполненные поля
	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}
	if firstName := strings.TrimSpace(in.FirstName); firstName != "" {
		user.FirstName = firstName
	}
	if in.Email != "" {
		user.Email = in.Email
	}
	if in.Password != "" {
		hash, err := hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}
	if in.Admin != nil {
		if *in.Admin {
			user.SetRole(models.RoleAdmin)
		} else {
			user.SetRole(models.RoleEmployee)
		}
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, NewValidationError("email", "The email has already been taken.")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// DeleteSelf удаляет собственный аккаунт вместе с заявками
func (s *UserService) DeleteSelf(ctx context.Context, userID uint) error {
	return s.delete(ctx, userID)
}

// DeleteUser удаляет любого пользователя (только для админов)
func (s *UserService) DeleteUser(ctx context.Context, grant access.AdminGrant, userID uint) error {
	if !grant.Valid() {
		return ErrForbidden
	}
	return s.delete(ctx, userID)
}

func (s *UserService) delete(ctx context.Context, userID uint) error {
	err := s.repo.Delete(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Resource: "User", ID: userID}
	}
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.WithField("user_id", userID).Info("User deleted")
	return nil
}

// ListUsers возвращает всех пользователей (только для админов)
func (s *UserService) ListUsers(ctx context.Context, grant access.AdminGrant) ([]models.User, error) {
	if !grant.Valid() {
		return nil, ErrForbidden
	}
	return s.repo.GetAll(ctx)
}

// LinkChat привязывает чат Telegram к аккаунту после проверки пароля.
// Чат может быть привязан только к одному аккаунту.
func (s *UserService) LinkChat(ctx context.Context, email, password string, chatID int64) (*models.User, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	previous, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("get user by chat: %w", err)
	}
	if previous != nil && previous.ID != user.ID {
		previous.ChatID = nil
		if err := s.repo.Update(ctx, previous); err != nil {
			return nil, fmt.Errorf("unlink previous chat owner: %w", err)
		}
	}

	user.ChatID = &chatID
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("link chat: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "chat_id": chatID}).Info("Telegram chat linked")
	return user, nil
}

// EnsureAdmin инициализирует администратора из конфига
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil // Админ не задан в конфиге
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("get admin: %w", err)
	}

	if existing != nil {
		// Если пользователь существует, обновляем его роль на админа
		if existing.IsAdmin() {
			return nil
		}
		existing.SetRole(models.RoleAdmin)
		return s.repo.Update(ctx, existing)
	}

	if len(password) < 8 {
		return errors.New("base admin password must be at least 8 characters")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	return s.repo.Create(ctx, &models.User{
		Name:     "Administrateur",
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
	})
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
