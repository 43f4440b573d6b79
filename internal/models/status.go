package models

import "time"

// Status - статус заявки на отсутствие
type Status struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Label     string    `gorm:"type:varchar(50);not null" json:"status"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Status) TableName() string {
	return "statuses"
}

const (
	StatusPending  uint = 1
	StatusApproved uint = 2
	StatusRejected uint = 3
)

// DefaultStatuses - фиксированный набор статусов. ID являются частью API.
func DefaultStatuses() []Status {
	return []Status{
		{ID: StatusPending, Label: "En attente"},
		{ID: StatusApproved, Label: "Validé"},
		{ID: StatusRejected, Label: "Refusé"},
	}
}

// StatusLabel возвращает название статуса по ID или "" для неизвестного ID
func StatusLabel(id uint) string {
	for _, s := range DefaultStatuses() {
		if s.ID == id {
			return s.Label
		}
	}
	return ""
}
