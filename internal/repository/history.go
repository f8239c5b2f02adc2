package repository

import (
	"time"

	"github.com/user/cinemax/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Upsert 写入观影记录，同一部电影只保留最新一条
func (r *HistoryRepository) Upsert(record *model.WatchHistory) error {
	if record.WatchedAt.IsZero() {
		record.WatchedAt = time.Now()
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"progress", "watched_at"}),
	}).Create(record).Error
}

// ListByUser 获取用户观影历史
func (r *HistoryRepository) ListByUser(userID, limit, offset int) ([]*model.WatchHistory, error) {
	var records []*model.WatchHistory
	err := r.db.Preload("Movie").
		Where("user_id = ?", userID).
		Order("watched_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}

// CountByUser 统计用户观影记录数量
func (r *HistoryRepository) CountByUser(userID int) (int64, error) {
	var count int64
	err := r.db.Model(&model.WatchHistory{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// DeleteByUser 删除用户的观影历史（级联清理用）
func (r *HistoryRepository) DeleteByUser(userID int) error {
	return r.db.Where("user_id = ?", userID).Delete(&model.WatchHistory{}).Error
}

// DeleteByMovie 删除电影相关的观影记录（级联清理用）
func (r *HistoryRepository) DeleteByMovie(movieID int) error {
	return r.db.Where("movie_id = ?", movieID).Delete(&model.WatchHistory{}).Error
}
