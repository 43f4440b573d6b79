package models

import "time"

type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	FirstName string    `gorm:"type:varchar(255)" json:"firstname"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'employee'" json:"role"`
	ChatID    *int64    `gorm:"uniqueIndex" json:"chat_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Absences []Absence `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsAdmin проверяет, является ли пользователь администратором
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SetRole устанавливает роль
func (u *User) SetRole(role Role) {
	u.Role = role
}

func (User) TableName() string {
	return "users"
}

// ValidRole проверяет, что роль известна
func ValidRole(r Role) bool {
	return r == RoleEmployee || r == RoleAdmin
}
