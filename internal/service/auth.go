package service

import (
	"strings"
	"time"

	"github.com/user/cinemax/internal/config"
	"github.com/user/cinemax/internal/middleware"
	"github.com/user/cinemax/internal/model"
	"github.com/user/cinemax/internal/repository"
	"github.com/user/cinemax/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

const (
	// 后台会话有效期固定 7 天
	adminSessionTTL = 7 * 24 * time.Hour

	// 登录失败限制：同一标识 30 分钟内最多 5 次
	maxLoginAttempts = 5
	lockoutDuration  = 30 * time.Minute
)

// AuthService 认证服务
type AuthService struct {
	repos *repository.Repositories
	cfg   *config.Config
}

// NewAuthService 创建认证服务
func NewAuthService(repos *repository.Repositories, cfg *config.Config) *AuthService {
	return &AuthService{repos: repos, cfg: cfg}
}

// Signup 用户注册，用户名或邮箱已占用时返回冲突错误
func (s *AuthService) Signup(username, email, password, name string) (*model.User, string, error) {
	if existing, err := s.repos.User.FindByUsername(username); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", ErrUsernameTaken
	}
	if existing, err := s.repos.User.FindByEmail(email); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, "", err
	}

	firstName, lastName := splitName(name)
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		Role:         model.RoleUser,
	}
	if err := s.repos.User.Create(user); err != nil {
		return nil, "", err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Signin 用户登录，标识可以是邮箱或用户名
// 用户不存在、已停用、密码不匹配统一返回 ErrInvalidCredentials
func (s *AuthService) Signin(identifier, password string) (*model.User, string, error) {
	if err := s.checkLoginAttempts(identifier); err != nil {
		return nil, "", err
	}

	user, err := s.repos.User.FindByIdentifier(identifier)
	if err != nil {
		return nil, "", err
	}
	if user == nil || !user.IsActive || !s.repos.User.CheckPassword(user, password) {
		s.recordFailedLogin(identifier)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", err
	}

	s.clearLoginAttempts(identifier)
	return user, token, nil
}

// AdminLogin 后台登录，仅限 admin/moderator，成功后写入 AdminSession
func (s *AuthService) AdminLogin(username, password string) (*model.User, string, error) {
	if err := s.checkLoginAttempts(username); err != nil {
		return nil, "", err
	}

	user, err := s.repos.User.FindByUsername(username)
	if err != nil {
		return nil, "", err
	}
	if user == nil || !user.IsActive || !user.IsStaff() || !s.repos.User.CheckPassword(user, password) {
		s.recordFailedLogin(username)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", err
	}

	session := &model.AdminSession{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(adminSessionTTL),
	}
	if err := s.repos.Session.Upsert(session); err != nil {
		return nil, "", err
	}

	s.clearLoginAttempts(username)
	return user, token, nil
}

// VerifyAdminToken 校验后台会话：签名、会话行、过期时间三者都要通过
func (s *AuthService) VerifyAdminToken(token string) (*model.User, error) {
	if _, err := middleware.ParseToken(token, s.cfg.AppSecret); err != nil {
		return nil, ErrUnauthorized
	}

	session, err := s.repos.Session.FindByToken(token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrUnauthorized
	}
	if session.Expired() {
		// 过期行顺手删掉，常规清理由定时任务负责
		s.repos.Session.DeleteByToken(token)
		return nil, ErrUnauthorized
	}

	user, err := s.repos.User.FindByID(session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive || !user.IsStaff() {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// Signout 删除后台会话（幂等）
func (s *AuthService) Signout(token string) error {
	if token == "" {
		return nil
	}
	return s.repos.Session.DeleteByToken(token)
}

func (s *AuthService) generateToken(user *model.User) (string, error) {
	return middleware.GenerateToken(user, s.cfg.AppSecret, s.cfg.JWTExpiry)
}

// checkLoginAttempts 检查登录失败次数是否超限
func (s *AuthService) checkLoginAttempts(identifier string) error {
	if utils.CacheGetInt("login:attempts:"+identifier) >= maxLoginAttempts {
		return ErrTooManyAttempts
	}
	return nil
}

func (s *AuthService) recordFailedLogin(identifier string) {
	utils.CacheIncr("login:attempts:"+identifier, lockoutDuration)
}

func (s *AuthService) clearLoginAttempts(identifier string) {
	utils.CacheDelete("login:attempts:" + identifier)
}

// splitName 将姓名拆为 first/last
func splitName(name string) (string, string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	if len(fields) == 1 {
		return fields[0], ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
