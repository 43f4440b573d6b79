package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"absence-tracker/internal/access"
	"absence-tracker/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Claims struct {
	UserID uint        `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// AuthService выпускает и проверяет bearer-токены
type AuthService struct {
	users   *UserService
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
	now     func() time.Time
}

// NewAuthService создает сервис; nil store заменяется хранилищем в памяти
func NewAuthService(users *UserService, secret string, ttl time.Duration, revoked RevocationStore) *AuthService {
	if revoked == nil {
		revoked = NewMemoryRevocationStore()
	}
	return &AuthService{
		users:   users,
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
	}
}

// TTL возвращает срок жизни выпускаемых токенов
func (s *AuthService) TTL() time.Duration {
	return s.ttl
}

// Login проверяет учетные данные и возвращает токен
func (s *AuthService) Login(ctx context.Context, in LoginInput) (string, *models.User, error) {
	if err := validateStruct(in); err != nil {
		return "", nil, err
	}

	user, err := s.users.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.Issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Issue подписывает токен для пользователя (HS256)
func (s *AuthService) Issue(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Authenticate разбирает токен и перечитывает пользователя из базы.
// Роль берется из базы, а не из токена.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (access.Principal, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return access.Principal{}, err
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return access.Principal{}, fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return access.Principal{}, ErrUnauthorized
	}

	user, err := s.users.GetUser(ctx, claims.UserID)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return access.Principal{}, ErrUnauthorized
		}
		return access.Principal{}, err
	}

	return access.Principal{UserID: user.ID, Role: user.Role}, nil
}

// Logout отзывает токен до истечения его срока
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	claims, err := s.parse(raw)
	if err != nil {
		return err
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *AuthService) parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid || claims.UserID == 0 || claims.ID == "" {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
