// Package access описывает, кто выполняет запрос и какие у него полномочия.
//
// Principal приходит с транспорта (JWT или Telegram chat), AdminGrant можно получить
// только из Principal с ролью администратора.
package access

import (
	"errors"

	"absence-tracker/internal/models"
)

var ErrNotAdmin = errors.New("administrator role required")

// Principal - аутентифицированный пользователь текущего запроса
type Principal struct {
	UserID uint
	Role   models.Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// AdminGrant - подтверждение, что вызывающий прошел проверку администратора.
// Нулевое значение недействительно.
type AdminGrant struct {
	adminID uint
}

// Admin выдает AdminGrant, если Principal является администратором
func (p Principal) Admin() (AdminGrant, error) {
	if p.UserID == 0 || !p.IsAdmin() {
		return AdminGrant{}, ErrNotAdmin
	}
	return AdminGrant{adminID: p.UserID}, nil
}

func (g AdminGrant) Valid() bool {
	return g.adminID != 0
}

// AdminID возвращает ID администратора, получившего grant
func (g AdminGrant) AdminID() uint {
	return g.adminID
}
