package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/cinemax/internal/service"
	"github.com/user/cinemax/internal/utils"
)

// parsePaging 解析分页参数，page 从 1 开始，limit 上限 100
func parsePaging(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// parseIDParam 解析路径中的整数 ID
func parseIDParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		utils.BadRequest(c, "无效的 ID")
		return 0, false
	}
	return id, true
}

// ListMovies 分页获取已发布电影
func (h *Handler) ListMovies(c *gin.Context) {
	page, limit := parsePaging(c)

	movies, total, err := h.Catalog.GetMovies(page, limit)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	utils.Success(c, gin.H{
		"movies": movies,
		"page":   page,
		"limit":  limit,
		"total":  total,
	})
}

// GetMovie 获取电影详情，本地未命中时回退 TMDB
func (h *Handler) GetMovie(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	movie, err := h.Catalog.GetMovie(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			utils.NotFound(c, "电影不存在")
			return
		}
		utils.InternalServerError(c, "")
		return
	}

	utils.Success(c, movie)
}

// SearchMovies 搜索电影
func (h *Handler) SearchMovies(c *gin.Context) {
	// 路径参数和查询参数两种形式都支持
	keyword := c.Param("query")
	if keyword == "" {
		keyword = c.Query("query")
	}
	if keyword == "" {
		keyword = c.Query("q")
	}

	movies, err := h.Catalog.Search(keyword)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	utils.Success(c, gin.H{"movies": movies, "query": keyword})
}

// PopularMovies 热门电影
func (h *Handler) PopularMovies(c *gin.Context) {
	movies, err := h.Catalog.Popular()
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, gin.H{"movies": movies})
}

// TrendingMovies 趋势电影
func (h *Handler) TrendingMovies(c *gin.Context) {
	movies, err := h.Catalog.Trending()
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, gin.H{"movies": movies})
}

// MoviesByGenre 按类型获取电影
func (h *Handler) MoviesByGenre(c *gin.Context) {
	genreID, ok := parseIDParam(c, "genreId")
	if !ok {
		return
	}

	movies, err := h.Catalog.ByGenre(genreID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, gin.H{"movies": movies})
}

// MovieReviews 获取电影的评论列表
func (h *Handler) MovieReviews(c *gin.Context) {
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

	page, limit := parsePaging(c)
	reviews, err := h.Repos.Review.ListByMovie(id, limit, (page-1)*limit)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	utils.Success(c, gin.H{"reviews": reviews, "page": page, "limit": limit})
}
