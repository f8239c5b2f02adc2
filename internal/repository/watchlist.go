package repository

import (
	"time"

	"github.com/user/cinemax/internal/model"
	"gorm.io/gorm"
)

type WatchlistRepository struct {
	db *gorm.DB
}

func NewWatchlistRepository(db *gorm.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Add 加入想看清单，重复时返回唯一约束错误
func (r *WatchlistRepository) Add(userID, movieID int) error {
	item := &model.WatchlistItem{
		UserID:    userID,
		MovieID:   movieID,
		CreatedAt: time.Now(),
	}
	return r.db.Create(item).Error
}

// Remove 移出想看清单（幂等）
func (r *WatchlistRepository) Remove(userID, movieID int) error {
	return r.db.Where("user_id = ? AND movie_id = ?", userID, movieID).Delete(&model.WatchlistItem{}).Error
}

// IsListed 检查是否已在想看清单
func (r *WatchlistRepository) IsListed(userID, movieID int) (bool, error) {
	var count int64
	err := r.db.Model(&model.WatchlistItem{}).Where("user_id = ? AND movie_id = ?", userID, movieID).Count(&count).Error
	return count > 0, err
}

// ListByUser 获取用户想看清单
func (r *WatchlistRepository) ListByUser(userID, limit, offset int) ([]*model.WatchlistItem, error) {
	var items []*model.WatchlistItem
	err := r.db.Preload("Movie").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	return items, err
}

// DeleteByUser 删除用户的想看清单（级联清理用）
func (r *WatchlistRepository) DeleteByUser(userID int) error {
	return r.db.Where("user_id = ?", userID).Delete(&model.WatchlistItem{}).Error
}

// DeleteByMovie 删除电影相关的想看记录（级联清理用）
func (r *WatchlistRepository) DeleteByMovie(movieID int) error {
	return r.db.Where("movie_id = ?", movieID).Delete(&model.WatchlistItem{}).Error
}
