package models

import (
	"time"

	"absence-tracker/pkg/period"

	"gorm.io/datatypes"
)

type Absence struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index:idx_absences_user_dates" json:"user_id"`
	StartDate datatypes.Date `gorm:"not null;index:idx_absences_user_dates" json:"start_date"`
	EndDate   datatypes.Date `gorm:"not null;index:idx_absences_user_dates" json:"end_date"`
	Reason    string         `gorm:"type:varchar(255);not null" json:"reason"`
	StatusID  uint           `gorm:"not null;default:1;index" json:"status_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	Status Status `gorm:"foreignKey:StatusID;constraint:OnDelete:RESTRICT" json:"status"`
	User   *User  `gorm:"foreignKey:UserID" json:"-"`
}

func (Absence) TableName() string {
	return "absences"
}

// Period возвращает диапазон дат заявки
func (a *Absence) Period() period.Range {
	return period.New(time.Time(a.StartDate), time.Time(a.EndDate))
}

// StatusLabel возвращает название статуса (из связи или из справочника)
func (a *Absence) StatusLabel() string {
	if a.Status.Label != "" {
		return a.Status.Label
	}
	return StatusLabel(a.StatusID)
}
