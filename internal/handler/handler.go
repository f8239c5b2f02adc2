package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/user/cinemax/internal/config"
	"github.com/user/cinemax/internal/middleware"
	"github.com/user/cinemax/internal/repository"
	"github.com/user/cinemax/internal/service"
	"github.com/user/cinemax/internal/utils"
)

// Handler HTTP 处理器
type Handler struct {
	Repos   *repository.Repositories
	Config  *config.Config
	Auth    *service.AuthService
	Catalog *service.CatalogService
}

// NewHandler 创建处理器
func NewHandler(repos *repository.Repositories, cfg *config.Config) *Handler {
	tmdb := service.NewTMDBClient(cfg.TMDBToken, cfg.TMDBBaseURL)

	return &Handler{
		Repos:   repos,
		Config:  cfg,
		Auth:    service.NewAuthService(repos, cfg),
		Catalog: service.NewCatalogService(repos.Movie, tmdb),
	}
}

// bindMessage 将绑定校验错误转成可读提示
func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("字段 %s 校验失败 (%s)", fe.Field(), fe.Tag())
	}
	return "无效的请求数据"
}

// respondAuthError 统一映射认证类业务错误
func respondAuthError(c *gin.Context, err error) {
	switch {
	case service.IsConflict(err):
		utils.Conflict(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrTooManyAttempts):
		utils.Error(c, 429, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		utils.Unauthorized(c, err.Error())
	default:
		utils.InternalServerError(c, "")
	}
}

// ==================== 认证接口 ====================

// SignupReq 注册请求
type SignupReq struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Name     string `json:"name" binding:"required,max=100"`
}

// Signup 用户注册
func (h *Handler) Signup(c *gin.Context) {
	var req SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}

	user, token, err := h.Auth.Signup(req.Username, req.Email, req.Password, req.Name)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	utils.Created(c, gin.H{"user": user, "token": token})
}

// SigninReq 登录请求，identifier 为邮箱或用户名
type SigninReq struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// Signin 用户登录
func (h *Handler) Signin(c *gin.Context) {
	var req SigninReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}

	user, token, err := h.Auth.Signin(req.Identifier, req.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	utils.Success(c, gin.H{"user": user, "token": token})
}

// AdminLoginReq 后台登录请求
type AdminLoginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin 后台登录（仅 admin/moderator）
func (h *Handler) AdminLogin(c *gin.Context) {
	var req AdminLoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}

	user, token, err := h.Auth.AdminLogin(req.Username, req.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	utils.Success(c, gin.H{"user": user, "token": token})
}

// AdminVerify 校验后台会话
func (h *Handler) AdminVerify(c *gin.Context) {
	token := middleware.ExtractToken(c)
	if token == "" {
		utils.Unauthorized(c, "")
		return
	}

	user, err := h.Auth.VerifyAdminToken(token)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	utils.Success(c, gin.H{"user": user})
}

// Signout 登出，删除后台会话（幂等）
func (h *Handler) Signout(c *gin.Context) {
	token := middleware.ExtractToken(c)
	if err := h.Auth.Signout(token); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, nil)
}

// Me 获取当前登录用户
func (h *Handler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)
	user, err := h.Repos.User.FindByID(userID)
	if err != nil || user == nil {
		utils.NotFound(c, "用户不存在")
		return
	}
	utils.Success(c, user)
}
