package service

import (
	"errors"
)

// 业务错误，Handler 层统一映射为 HTTP 状态码
var (
	// ErrInvalidCredentials 认证失败统一返回同一错误，避免用户枚举
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrTooManyAttempts    = errors.New("登录失败次数过多，请稍后重试")
	ErrUsernameTaken      = errors.New("用户名已被注册")
	ErrEmailTaken         = errors.New("邮箱已被注册")
	ErrConflict           = errors.New("资源已存在")
	ErrNotFound           = errors.New("资源不存在")
	ErrUnauthorized       = errors.New("会话无效或已过期")
)

// IsConflict 是否为冲突类错误
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrUsernameTaken) ||
		errors.Is(err, ErrEmailTaken)
}
