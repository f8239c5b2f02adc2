package model

import (
	"time"
)

// 电影状态
const (
	MovieStatusPublished = "published"
	MovieStatusDraft     = "draft"
	MovieStatusArchived  = "archived"
)

// Movie 电影模型
// 由管理员创建或从 TMDB 导入；TMDBID 为空表示纯本地条目
type Movie struct {
	ID           int       `json:"id" db:"id"`
	TMDBID       *int      `json:"tmdb_id" db:"tmdb_id" gorm:"column:tmdb_id;uniqueIndex"`
	Title        string    `json:"title" db:"title"`
	Overview     string    `json:"overview" db:"overview"`
	ReleaseDate  string    `json:"release_date" db:"release_date"`
	Runtime      int       `json:"runtime" db:"runtime"`
	VoteAverage  float64   `json:"vote_average" db:"vote_average" gorm:"index"`
	VoteCount    int       `json:"vote_count" db:"vote_count"`
	PosterPath   string    `json:"poster_path" db:"poster_path"`
	BackdropPath string    `json:"backdrop_path" db:"backdrop_path"`
	Genres       string    `json:"genres" db:"genres"` // 自由文本，"/" 分隔
	Director     string    `json:"director" db:"director"`
	Cast         string    `json:"cast" db:"cast_list" gorm:"column:cast_list"` // 自由文本，", " 分隔
	Status       string    `json:"status" db:"status" gorm:"index;default:published"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// MovieStats 电影 + 查询时聚合的互动统计
type MovieStats struct {
	Movie         `gorm:"embedded"`
	FavoriteCount int64   `json:"favorite_count" db:"favorite_count"`
	ReviewCount   int64   `json:"review_count" db:"review_count"`
	AverageRating float64 `json:"average_rating" db:"average_rating"`
}
