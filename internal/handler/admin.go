package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/cinemax/internal/model"
	"github.com/user/cinemax/internal/repository"
	"github.com/user/cinemax/internal/utils"
	"golang.org/x/sync/errgroup"
)

// ==================== 用户管理 ====================

// AdminListUsers 分页获取用户列表
func (h *Handler) AdminListUsers(c *gin.Context) {
	page, limit := parsePaging(c)

	users, err := h.Repos.User.List(limit, (page-1)*limit)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	total, err := h.Repos.User.Count()
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	utils.Success(c, gin.H{"users": users, "page": page, "limit": limit, "total": total})
}

// RoleReq 角色变更请求
type RoleReq struct {
	Role string `json:"role" binding:"required,oneof=user moderator admin"`
}

// AdminUpdateUserRole 修改用户角色
func (h *Handler) AdminUpdateUserRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}

	user, err := h.Repos.User.FindByID(id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if user == nil {
		utils.NotFound(c, "用户不存在")
		return
	}

	if err := h.Repos.User.UpdateRole(id, req.Role); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, gin.H{"id": id, "role": req.Role})
}

// StatusReq 启用/停用请求
type StatusReq struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// AdminUpdateUserStatus 启用/停用用户
func (h *Handler) AdminUpdateUserStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req StatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}

	user, err := h.Repos.User.FindByID(id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if user == nil {
		utils.NotFound(c, "用户不存在")
		return
	}

	if err := h.Repos.User.SetActive(id, *req.IsActive); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, gin.H{"id": id, "is_active": *req.IsActive})
}

// AdminDeleteUser 删除用户，事务内级联清理互动数据和后台会话
func (h *Handler) AdminDeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.Repos.User.FindByID(id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if user == nil {
		utils.NotFound(c, "用户不存在")
		return
	}

	err = h.Repos.WithTransaction(func(tx *repository.Repositories) error {
		if err := tx.Favorite.DeleteByUser(id); err != nil {
			return err
		}
		if err := tx.Review.DeleteByUser(id); err != nil {
			return err
		}
		if err := tx.Watchlist.DeleteByUser(id); err != nil {
			return err
		}
		if err := tx.History.DeleteByUser(id); err != nil {
			return err
		}
		if err := tx.Session.DeleteByUser(id); err != nil {
			return err
		}
		return tx.User.Delete(id)
	})
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, nil)
}

// ==================== 电影管理 ====================

// AdminListMovies 分页获取全部电影（含草稿/下架）
func (h *Handler) AdminListMovies(c *gin.Context) {
	page, limit := parsePaging(c)

	movies, err := h.Repos.Movie.ListAll(limit, (page-1)*limit)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	total, err := h.Repos.Movie.Count()
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	utils.Success(c, gin.H{"movies": movies, "page": page, "limit": limit, "total": total})
}

// MovieReq 电影创建/更新请求
type MovieReq struct {
	Title        string  `json:"title" binding:"required,max=255"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	Runtime      int     `json:"runtime" binding:"min=0"`
	VoteAverage  float64 `json:"vote_average" binding:"min=0,max=10"`
	VoteCount    int     `json:"vote_count" binding:"min=0"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	Genres       string  `json:"genres"`
	Director     string  `json:"director"`
	Cast         string  `json:"cast"`
	Status       string  `json:"status" binding:"omitempty,oneof=draft published archived"`
}

func (req *MovieReq) apply(movie *model.Movie) {
	movie.Title = req.Title
	movie.Overview = req.Overview
	movie.ReleaseDate = req.ReleaseDate
	movie.Runtime = req.Runtime
	movie.VoteAverage = req.VoteAverage
	movie.VoteCount = req.VoteCount
	movie.PosterPath = req.PosterPath
	movie.BackdropPath = req.BackdropPath
	movie.Genres = req.Genres
	movie.Director = req.Director
	movie.Cast = req.Cast
	if req.Status != "" {
		movie.Status = req.Status
	}
}

// AdminCreateMovie 手工创建电影（无 TMDB 关联）
func (h *Handler) AdminCreateMovie(c *gin.Context) {
	var req MovieReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}

	movie := &model.Movie{}
	req.apply(movie)
	if err := h.Repos.Movie.Create(movie); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Created(c, movie)
}

// AdminUpdateMovie 更新电影
func (h *Handler) AdminUpdateMovie(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req MovieReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}

	movie, err := h.Repos.Movie.FindByID(id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if movie == nil {
		utils.NotFound(c, "电影不存在")
		return
	}

	req.apply(movie)
	if err := h.Repos.Movie.Update(movie); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, movie)
}

// AdminDeleteMovie 删除电影，事务内级联清理收藏/影评/想看/观影记录
func (h *Handler) AdminDeleteMovie(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	movie, err := h.Repos.Movie.FindByID(id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if movie == nil {
		utils.NotFound(c, "电影不存在")
		return
	}

	err = h.Repos.WithTransaction(func(tx *repository.Repositories) error {
		if err := tx.Favorite.DeleteByMovie(id); err != nil {
			return err
		}
		if err := tx.Review.DeleteByMovie(id); err != nil {
			return err
		}
		if err := tx.Watchlist.DeleteByMovie(id); err != nil {
			return err
		}
		if err := tx.History.DeleteByMovie(id); err != nil {
			return err
		}
		return tx.Movie.Delete(id)
	})
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, nil)
}

// AdminImportMovie 按 TMDB ID 导入电影，导入失败的原因原样返回给管理端
func (h *Handler) AdminImportMovie(c *gin.Context) {
	tmdbID, ok := parseIDParam(c, "tmdbId")
	if !ok {
		return
	}

	movie, err := h.Catalog.ImportMovie(tmdbID)
	if err != nil {
		utils.Error(c, 502, "导入失败: "+err.Error())
		return
	}
	utils.Created(c, movie)
}

// ==================== 统计 ====================

// AdminAnalytics 后台概览统计，各项计数并发查询
func (h *Handler) AdminAnalytics(c *gin.Context) {
	var (
		userCount     int64
		movieCount    int64
		favoriteCount int64
		reviewCount   int64
		topFavorited  []model.MovieStats
	)

	var g errgroup.Group
	g.Go(func() (err error) {
		userCount, err = h.Repos.User.Count()
		return
	})
	g.Go(func() (err error) {
		movieCount, err = h.Repos.Movie.Count()
		return
	})
	g.Go(func() (err error) {
		favoriteCount, err = h.Repos.Favorite.Count()
		return
	})
	g.Go(func() (err error) {
		reviewCount, err = h.Repos.Review.Count()
		return
	})
	g.Go(func() (err error) {
		topFavorited, err = h.Repos.Movie.TopFavorited(10)
		return
	})
	if err := g.Wait(); err != nil {
		utils.InternalServerError(c, "")
		return
	}

	utils.Success(c, gin.H{
		"users":         userCount,
		"movies":        movieCount,
		"favorites":     favoriteCount,
		"reviews":       reviewCount,
		"top_favorited": topFavorited,
	})
}

// ==================== 系统配置 ====================

// AdminListSettings 获取全部配置项
func (h *Handler) AdminListSettings(c *gin.Context) {
	settings, err := h.Repos.Setting.List()
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, gin.H{"settings": settings})
}

// SettingReq 配置项写入请求
type SettingReq struct {
	Key   string `json:"key" binding:"required,max=100"`
	Value string `json:"value" binding:"max=4000"`
}

// AdminUpdateSetting 写入配置项（存在时覆盖）
func (h *Handler) AdminUpdateSetting(c *gin.Context) {
	var req SettingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}

	if err := h.Repos.Setting.Set(req.Key, req.Value); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, gin.H{"key": req.Key, "value": req.Value})
}

// AdminDeleteSetting 删除配置项（幂等）
func (h *Handler) AdminDeleteSetting(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		utils.BadRequest(c, "无效的配置键")
		return
	}

	if err := h.Repos.Setting.Delete(key); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, nil)
}
