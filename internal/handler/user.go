package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/cinemax/internal/middleware"
	"github.com/user/cinemax/internal/model"
	"github.com/user/cinemax/internal/utils"
)

// splitProfileName 将姓名拆为 first/last
func splitProfileName(name string) (string, string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}

// requireMovie 加载电影，不存在时写 404 并返回 nil
func (h *Handler) requireMovie(c *gin.Context, movieID int) *model.Movie {
	movie, err := h.Repos.Movie.FindByID(movieID)
	if err != nil {
		utils.InternalServerError(c, "")
		return nil
	}
	if movie == nil {
		utils.NotFound(c, "电影不存在")
		return nil
	}
	return movie
}

// ==================== 收藏 ====================

// ListFavorites 获取当前用户收藏列表
func (h *Handler) ListFavorites(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := parsePaging(c)

	favorites, err := h.Repos.Favorite.ListByUser(userID, limit, (page-1)*limit)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	total, err := h.Repos.Favorite.CountByUser(userID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	utils.Success(c, gin.H{
		"favorites": favorites,
		"page":      page,
		"limit":     limit,
		"total":     total,
	})
}

// AddFavorite 收藏电影，重复收藏返回 409
func (h *Handler) AddFavorite(c *gin.Context) {
	userID := middleware.GetUserID(c)
	movieID, ok := parseIDParam(c, "movieId")
	if !ok {
		return
	}
	if h.requireMovie(c, movieID) == nil {
		return
	}

	favorited, err := h.Repos.Favorite.IsFavorited(userID, movieID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if favorited {
		utils.Conflict(c, "已收藏该电影")
		return
	}

	if err := h.Repos.Favorite.Add(userID, movieID); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Created(c, gin.H{"movie_id": movieID})
}

// RemoveFavorite 取消收藏（幂等，未收藏也返回成功）
func (h *Handler) RemoveFavorite(c *gin.Context) {
	userID := middleware.GetUserID(c)
	movieID, ok := parseIDParam(c, "movieId")
	if !ok {
		return
	}

	if err := h.Repos.Favorite.Remove(userID, movieID); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, nil)
}

// ==================== 影评 ====================

// ReviewReq 影评请求，评分 1-10
type ReviewReq struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=10"`
	Comment string `json:"comment" binding:"max=2000"`
}

// AddReview 发表影评，同一用户同一电影只能发一条
func (h *Handler) AddReview(c *gin.Context) {
	userID := middleware.GetUserID(c)
	movieID, ok := parseIDParam(c, "movieId")
	if !ok {
		return
	}

	var req ReviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}

	if h.requireMovie(c, movieID) == nil {
		return
	}

	existing, err := h.Repos.Review.GetByUserAndMovie(userID, movieID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if existing != nil {
		utils.Conflict(c, "已评论过该电影")
		return
	}

	review := &model.Review{
		UserID:  userID,
		MovieID: movieID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := h.Repos.Review.Create(review); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Created(c, review)
}

// UpdateReview 修改自己的影评
func (h *Handler) UpdateReview(c *gin.Context) {
	userID := middleware.GetUserID(c)
	movieID, ok := parseIDParam(c, "movieId")
	if !ok {
		return
	}

	var req ReviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}

	affected, err := h.Repos.Review.Update(userID, movieID, req.Rating, req.Comment)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if affected == 0 {
		utils.NotFound(c, "影评不存在")
		return
	}

	review, err := h.Repos.Review.GetByUserAndMovie(userID, movieID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, review)
}

// DeleteReview 删除自己的影评
func (h *Handler) DeleteReview(c *gin.Context) {
	userID := middleware.GetUserID(c)
	movieID, ok := parseIDParam(c, "movieId")
	if !ok {
		return
	}

	affected, err := h.Repos.Review.Delete(userID, movieID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if affected == 0 {
		utils.NotFound(c, "影评不存在")
		return
	}
	utils.Success(c, nil)
}

// ListMyReviews 获取当前用户的影评列表
func (h *Handler) ListMyReviews(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := parsePaging(c)

	reviews, err := h.Repos.Review.ListByUser(userID, limit, (page-1)*limit)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, gin.H{"reviews": reviews, "page": page, "limit": limit})
}

// ==================== 想看清单 ====================

// ListWatchlist 获取想看清单
func (h *Handler) ListWatchlist(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := parsePaging(c)

	items, err := h.Repos.Watchlist.ListByUser(userID, limit, (page-1)*limit)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, gin.H{"watchlist": items, "page": page, "limit": limit})
}

// AddWatchlist 加入想看清单
func (h *Handler) AddWatchlist(c *gin.Context) {
	userID := middleware.GetUserID(c)
	movieID, ok := parseIDParam(c, "movieId")
	if !ok {
		return
	}
	if h.requireMovie(c, movieID) == nil {
		return
	}

	listed, err := h.Repos.Watchlist.IsListed(userID, movieID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if listed {
		utils.Conflict(c, "已在想看清单中")
		return
	}

	if err := h.Repos.Watchlist.Add(userID, movieID); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Created(c, gin.H{"movie_id": movieID})
}

// RemoveWatchlist 移出想看清单（幂等）
func (h *Handler) RemoveWatchlist(c *gin.Context) {
	userID := middleware.GetUserID(c)
	movieID, ok := parseIDParam(c, "movieId")
	if !ok {
		return
	}

	if err := h.Repos.Watchlist.Remove(userID, movieID); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, nil)
}

// ==================== 观影历史 ====================

// HistoryReq 观影进度上报
type HistoryReq struct {
	Progress int `json:"progress" binding:"min=0,max=100"`
}

// RecordHistory 记录观影进度，同一部电影只保留最新一条
func (h *Handler) RecordHistory(c *gin.Context) {
	userID := middleware.GetUserID(c)
	movieID, ok := parseIDParam(c, "movieId")
	if !ok {
		return
	}

	var req HistoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}

	if h.requireMovie(c, movieID) == nil {
		return
	}

	record := &model.WatchHistory{
		UserID:   userID,
		MovieID:  movieID,
		Progress: req.Progress,
	}
	if err := h.Repos.History.Upsert(record); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, record)
}

// ListHistory 获取观影历史
func (h *Handler) ListHistory(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := parsePaging(c)

	records, err := h.Repos.History.ListByUser(userID, limit, (page-1)*limit)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, gin.H{"history": records, "page": page, "limit": limit})
}

// ==================== 个人资料 ====================

// ProfileReq 更新个人资料请求
type ProfileReq struct {
	Name  string `json:"name" binding:"omitempty,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
}

// UpdateProfile 更新姓名和邮箱
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req ProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}

	if req.Email != "" {
		existing, err := h.Repos.User.FindByEmail(req.Email)
		if err != nil {
			utils.InternalServerError(c, "")
			return
		}
		if existing != nil && existing.ID != userID {
			utils.Conflict(c, "邮箱已被占用")
			return
		}
		if err := h.Repos.User.UpdateEmail(userID, req.Email); err != nil {
			utils.InternalServerError(c, "")
			return
		}
	}

	if req.Name != "" {
		firstName, lastName := splitProfileName(req.Name)
		if err := h.Repos.User.UpdateProfile(userID, firstName, lastName); err != nil {
			utils.InternalServerError(c, "")
			return
		}
	}

	user, err := h.Repos.User.FindByID(userID)
	if err != nil || user == nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, user)
}
