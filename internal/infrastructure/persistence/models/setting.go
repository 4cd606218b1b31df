package models

import (
	"time"
)

// SettingModel is the persistence model for a single system setting.
// Values are stored as strings and parsed by the settings provider.
type SettingModel struct {
	Key         string    `gorm:"type:varchar(100);primaryKey"`
	Value       string    `gorm:"type:varchar(500);not null"`
	Description string    `gorm:"type:varchar(500)"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SettingModel) TableName() string {
	return "settings"
}
