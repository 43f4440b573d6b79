package models

import (
	"time"

	"gorm.io/datatypes"
)

// NonWorkingDay - праздничный или выходной день из производственного календаря
type NonWorkingDay struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Date      datatypes.Date `gorm:"uniqueIndex;not null" json:"date"`
	Year      int            `gorm:"index;not null" json:"year"`
	CreatedAt time.Time      `json:"created_at"`
}

func (NonWorkingDay) TableName() string {
	return "non_working_days"
}
