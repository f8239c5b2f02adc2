package repository

import (
	"errors"
	"time"

	"github.com/user/cinemax/internal/model"
	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create 创建影评，重复时返回唯一约束错误
func (r *ReviewRepository) Create(review *model.Review) error {
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt
	return r.db.Create(review).Error
}

// GetByUserAndMovie 获取用户对某电影的影评
func (r *ReviewRepository) GetByUserAndMovie(userID, movieID int) (*model.Review, error) {
	var review model.Review
	err := r.db.Where("user_id = ? AND movie_id = ?", userID, movieID).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Update 更新评分和短评，返回影响行数（0 表示影评不存在）
func (r *ReviewRepository) Update(userID, movieID, rating int, comment string) (int64, error) {
	result := r.db.Model(&model.Review{}).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Updates(map[string]interface{}{
			"rating":     rating,
			"comment":    comment,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// Delete 删除影评，返回影响行数
func (r *ReviewRepository) Delete(userID, movieID int) (int64, error) {
	result := r.db.Where("user_id = ? AND movie_id = ?", userID, movieID).Delete(&model.Review{})
	return result.RowsAffected, result.Error
}

// ListByMovie 获取电影的影评列表
func (r *ReviewRepository) ListByMovie(movieID, limit, offset int) ([]*model.Review, error) {
	var reviews []*model.Review
	err := r.db.Preload("User").
		Where("movie_id = ?", movieID).
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error
	return reviews, err
}

// ListByUser 获取用户的影评列表
func (r *ReviewRepository) ListByUser(userID, limit, offset int) ([]*model.Review, error) {
	var reviews []*model.Review
	err := r.db.Preload("Movie").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error
	return reviews, err
}

// Count 影评总数
func (r *ReviewRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Review{}).Count(&count).Error
	return count, err
}

// DeleteByUser 删除用户的所有影评（级联清理用）
func (r *ReviewRepository) DeleteByUser(userID int) error {
	return r.db.Where("user_id = ?", userID).Delete(&model.Review{}).Error
}

// DeleteByMovie 删除电影的所有影评（级联清理用）
func (r *ReviewRepository) DeleteByMovie(movieID int) error {
	return r.db.Where("movie_id = ?", movieID).Delete(&model.Review{}).Error
}
