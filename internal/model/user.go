package model

import (
	"time"
)

// 用户角色
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User 用户模型
type User struct {
	ID           int       `json:"id" db:"id"`
	Username     string    `json:"username" db:"username" gorm:"uniqueIndex"`
	Email        string    `json:"email" db:"email" gorm:"uniqueIndex"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsStaff 是否为后台角色（admin 或 moderator）
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleModerator
}

// AdminSession 后台登录会话
// 一个用户同时只保留一行，重新登录时覆盖（Upsert）
type AdminSession struct {
	Token     string    `json:"token" db:"token" gorm:"primaryKey"`
	UserID    int       `json:"user_id" db:"user_id" gorm:"uniqueIndex"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Expired 会话是否已过期（读取时检查，过期行由清理任务删除）
func (s *AdminSession) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
