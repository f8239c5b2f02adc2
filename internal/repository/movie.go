package repository

import (
	"errors"
	"time"

	"github.com/user/cinemax/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// statsSelect 查询时聚合收藏数/影评数/平均分，不做物化
const statsSelect = `movies.*,
	(SELECT COUNT(*) FROM favorites WHERE favorites.movie_id = movies.id) AS favorite_count,
	(SELECT COUNT(*) FROM reviews WHERE reviews.movie_id = movies.id) AS review_count,
	COALESCE((SELECT AVG(rating) FROM reviews WHERE reviews.movie_id = movies.id), 0) AS average_rating`

type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// FindByID 根据本地 ID 查找电影
func (r *MovieRepository) FindByID(id int) (*model.Movie, error) {
	return r.findOne("id = ?", id)
}

// FindByTMDBID 根据 TMDB ID 查找电影
func (r *MovieRepository) FindByTMDBID(tmdbID int) (*model.Movie, error) {
	return r.findOne("tmdb_id = ?", tmdbID)
}

func (r *MovieRepository) findOne(query string, args ...interface{}) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.Where(query, args...).First(&movie).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// FindStatsByID 查找电影并带互动统计
func (r *MovieRepository) FindStatsByID(id int) (*model.MovieStats, error) {
	var stats model.MovieStats
	err := r.db.Model(&model.Movie{}).
		Select(statsSelect).
		Where("movies.id = ?", id).
		Take(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Create 创建电影
func (r *MovieRepository) Create(movie *model.Movie) error {
	if movie.Status == "" {
		movie.Status = model.MovieStatusPublished
	}
	movie.CreatedAt = time.Now()
	movie.UpdatedAt = movie.CreatedAt
	return r.db.Create(movie).Error
}

// Upsert 按 TMDB ID 创建或更新电影（导入路径）
func (r *MovieRepository) Upsert(movie *model.Movie) error {
	if movie.Status == "" {
		movie.Status = model.MovieStatusPublished
	}
	if movie.CreatedAt.IsZero() {
		movie.CreatedAt = time.Now()
	}
	movie.UpdatedAt = time.Now()
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tmdb_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "overview", "release_date", "runtime",
			"vote_average", "vote_count", "poster_path", "backdrop_path",
			"genres", "director", "cast_list", "updated_at",
		}),
	}).Create(movie).Error
}

// Update 更新电影
func (r *MovieRepository) Update(movie *model.Movie) error {
	movie.UpdatedAt = time.Now()
	return r.db.Save(movie).Error
}

// Delete 删除电影（级联清理由调用方在事务中完成）
func (r *MovieRepository) Delete(id int) error {
	return r.db.Delete(&model.Movie{}, id).Error
}

// ListPublished 分页获取已发布电影（带互动统计）
func (r *MovieRepository) ListPublished(limit, offset int) ([]model.MovieStats, error) {
	var movies []model.MovieStats
	err := r.db.Model(&model.Movie{}).
		Select(statsSelect).
		Where("status = ?", model.MovieStatusPublished).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&movies).Error
	return movies, err
}

// CountPublished 已发布电影总数
func (r *MovieRepository) CountPublished() (int64, error) {
	var count int64
	err := r.db.Model(&model.Movie{}).Where("status = ?", model.MovieStatusPublished).Count(&count).Error
	return count, err
}

// ListAll 分页获取全部电影（含草稿/下架，管理后台用）
func (r *MovieRepository) ListAll(limit, offset int) ([]*model.Movie, error) {
	var movies []*model.Movie
	err := r.db.Order("id DESC").Limit(limit).Offset(offset).Find(&movies).Error
	return movies, err
}

// Count 全部电影总数
func (r *MovieRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Movie{}).Count(&count).Error
	return count, err
}

// Search 本地搜索：标题/简介/类型子串匹配
func (r *MovieRepository) Search(keyword string, limit int) ([]model.Movie, error) {
	var movies []model.Movie
	pattern := "%" + keyword + "%"
	err := r.db.Where("status = ?", model.MovieStatusPublished).
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(overview) LIKE LOWER(?) OR LOWER(genres) LIKE LOWER(?)",
			pattern, pattern, pattern).
		Order("vote_count DESC").
		Limit(limit).
		Find(&movies).Error
	return movies, err
}

// ListPopular 热门电影：按投票数/均分启发式排序
func (r *MovieRepository) ListPopular(limit int) ([]model.Movie, error) {
	var movies []model.Movie
	err := r.db.Where("status = ?", model.MovieStatusPublished).
		Order("vote_count DESC, vote_average DESC").
		Limit(limit).
		Find(&movies).Error
	return movies, err
}

// ListTrending 趋势电影：按时间窗口内的收藏数排序，其次按均分
func (r *MovieRepository) ListTrending(since time.Time, limit int) ([]model.Movie, error) {
	var movies []model.Movie
	err := r.db.Model(&model.Movie{}).
		Select(`movies.*,
			(SELECT COUNT(*) FROM favorites
			 WHERE favorites.movie_id = movies.id AND favorites.created_at > ?) AS recent_favorites`, since).
		Where("status = ?", model.MovieStatusPublished).
		Order("recent_favorites DESC, vote_average DESC").
		Limit(limit).
		Scan(&movies).Error
	return movies, err
}

// ListByGenre 按类型名子串匹配
func (r *MovieRepository) ListByGenre(genre string, limit int) ([]model.Movie, error) {
	var movies []model.Movie
	err := r.db.Where("status = ?", model.MovieStatusPublished).
		Where("LOWER(genres) LIKE LOWER(?)", "%"+genre+"%").
		Order("vote_count DESC").
		Limit(limit).
		Find(&movies).Error
	return movies, err
}

// TopFavorited 收藏数最多的电影（后台统计用）
func (r *MovieRepository) TopFavorited(limit int) ([]model.MovieStats, error) {
	var movies []model.MovieStats
	err := r.db.Model(&model.Movie{}).
		Select(statsSelect).
		Where("status = ?", model.MovieStatusPublished).
		Order("favorite_count DESC, vote_count DESC").
		Limit(limit).
		Scan(&movies).Error
	return movies, err
}
