package model

import (
	"time"
)

// Setting 站点配置项（键值对）
type Setting struct {
	Key       string    `json:"key" db:"key" gorm:"primaryKey"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
