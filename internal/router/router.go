package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/cinemax/internal/config"
	"github.com/user/cinemax/internal/handler"
	"github.com/user/cinemax/internal/middleware"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler, cfg *config.Config) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 认证
	auth := r.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/signin", h.Signin)
		auth.POST("/signout", h.Signout)
		auth.POST("/admin/login", h.AdminLogin)
		auth.GET("/admin/verify", h.AdminVerify)
		auth.GET("/me", middleware.RequireAuth(cfg.AppSecret), h.Me)
	}

	// 影库（公开，登录可选）
	movies := r.Group("/movies", middleware.OptionalAuth(cfg.AppSecret))
	{
		movies.GET("", h.ListMovies)
		movies.GET("/popular", h.PopularMovies)
		movies.GET("/trending", h.TrendingMovies)
		movies.GET("/search", h.SearchMovies)
		movies.GET("/search/:query", h.SearchMovies)
		movies.GET("/genre/:genreId", h.MoviesByGenre)
		movies.GET("/:id", h.GetMovie)
		movies.GET("/:id/reviews", h.MovieReviews)
	}

	// 用户内容（必须登录）
	users := r.Group("/users", middleware.RequireAuth(cfg.AppSecret))
	{
		users.PUT("/profile", h.UpdateProfile)

		users.GET("/favorites", h.ListFavorites)
		users.POST("/favorites/:movieId", h.AddFavorite)
		users.DELETE("/favorites/:movieId", h.RemoveFavorite)

		users.GET("/reviews", h.ListMyReviews)
		users.POST("/reviews/:movieId", h.AddReview)
		users.PUT("/reviews/:movieId", h.UpdateReview)
		users.DELETE("/reviews/:movieId", h.DeleteReview)

		users.GET("/watchlist", h.ListWatchlist)
		users.POST("/watchlist/:movieId", h.AddWatchlist)
		users.DELETE("/watchlist/:movieId", h.RemoveWatchlist)

		users.GET("/history", h.ListHistory)
		users.POST("/history/:movieId", h.RecordHistory)
	}

	// 管理后台（静态管理密钥）
	admin := r.Group("/admin", middleware.RequireAdminKey(cfg.AdminKey))
	{
		admin.GET("/users", h.AdminListUsers)
		admin.PUT("/users/:id/role", h.AdminUpdateUserRole)
		admin.PUT("/users/:id/status", h.AdminUpdateUserStatus)
		admin.DELETE("/users/:id", h.AdminDeleteUser)

		admin.GET("/movies", h.AdminListMovies)
		admin.POST("/movies", h.AdminCreateMovie)
		admin.PUT("/movies/:id", h.AdminUpdateMovie)
		admin.DELETE("/movies/:id", h.AdminDeleteMovie)
		admin.POST("/movies/import/:tmdbId", h.AdminImportMovie)

		admin.GET("/analytics", h.AdminAnalytics)

		admin.GET("/settings", h.AdminListSettings)
		admin.PUT("/settings", h.AdminUpdateSetting)
		admin.DELETE("/settings/:key", h.AdminDeleteSetting)
	}
}
