package model

import (
	"time"
)

// Favorite 收藏，(user_id, movie_id) 唯一
type Favorite struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id" gorm:"uniqueIndex:idx_fav_user_movie"`
	MovieID   int       `json:"movie_id" db:"movie_id" gorm:"uniqueIndex:idx_fav_user_movie"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"index"`
	Movie     *Movie    `json:"movie,omitempty" gorm:"foreignKey:MovieID"` // 关联查询时填充
}

// Review 影评，(user_id, movie_id) 唯一，评分 1-10
type Review struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id" gorm:"uniqueIndex:idx_review_user_movie"`
	MovieID   int       `json:"movie_id" db:"movie_id" gorm:"uniqueIndex:idx_review_user_movie"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Movie     *Movie    `json:"movie,omitempty" gorm:"foreignKey:MovieID"`
}

// WatchlistItem 想看清单，(user_id, movie_id) 唯一
type WatchlistItem struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id" gorm:"uniqueIndex:idx_watchlist_user_movie"`
	MovieID   int       `json:"movie_id" db:"movie_id" gorm:"uniqueIndex:idx_watchlist_user_movie"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Movie     *Movie    `json:"movie,omitempty" gorm:"foreignKey:MovieID"`
}

// WatchHistory 观影历史，同一部电影只保留最新一条
type WatchHistory struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id" gorm:"uniqueIndex:idx_history_user_movie"`
	MovieID   int       `json:"movie_id" db:"movie_id" gorm:"uniqueIndex:idx_history_user_movie"`
	Progress  int       `json:"progress" db:"progress"` // 观看进度（百分比）
	WatchedAt time.Time `json:"watched_at" db:"watched_at"`
	Movie     *Movie    `json:"movie,omitempty" gorm:"foreignKey:MovieID"`
}
