package repository

import (
	"time"

	"github.com/user/cinemax/internal/model"
	"gorm.io/gorm"
)

type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Add 添加收藏，重复时返回唯一约束错误
func (r *FavoriteRepository) Add(userID, movieID int) error {
	favorite := &model.Favorite{
		UserID:    userID,
		MovieID:   movieID,
		CreatedAt: time.Now(),
	}
	return r.db.Create(favorite).Error
}

// Remove 取消收藏（幂等）
func (r *FavoriteRepository) Remove(userID, movieID int) error {
	return r.db.Where("user_id = ? AND movie_id = ?", userID, movieID).Delete(&model.Favorite{}).Error
}

// IsFavorited 检查是否已收藏
func (r *FavoriteRepository) IsFavorited(userID, movieID int) (bool, error) {
	var count int64
	err := r.db.Model(&model.Favorite{}).Where("user_id = ? AND movie_id = ?", userID, movieID).Count(&count).Error
	return count > 0, err
}

// ListByUser 获取用户收藏列表
func (r *FavoriteRepository) ListByUser(userID, limit, offset int) ([]*model.Favorite, error) {
	var favorites []*model.Favorite
	err := r.db.Preload("Movie").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&favorites).Error
	return favorites, err
}

// CountByUser 统计用户收藏数量
func (r *FavoriteRepository) CountByUser(userID int) (int64, error) {
	var count int64
	err := r.db.Model(&model.Favorite{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Count 收藏总数
func (r *FavoriteRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Favorite{}).Count(&count).Error
	return count, err
}

// DeleteByUser 删除用户的所有收藏（级联清理用）
func (r *FavoriteRepository) DeleteByUser(userID int) error {
	return r.db.Where("user_id = ?", userID).Delete(&model.Favorite{}).Error
}

// DeleteByMovie 删除电影的所有收藏（级联清理用）
func (r *FavoriteRepository) DeleteByMovie(movieID int) error {
	return r.db.Where("movie_id = ?", movieID).Delete(&model.Favorite{}).Error
}
