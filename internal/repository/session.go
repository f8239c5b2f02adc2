package repository

import (
	"errors"
	"time"

	"github.com/user/cinemax/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Upsert 写入会话，同一用户重新登录时覆盖旧行
func (r *SessionRepository) Upsert(session *model.AdminSession) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "expires_at", "created_at"}),
	}).Create(session).Error
}

// FindByToken 根据 Token 查找会话
func (r *SessionRepository) FindByToken(token string) (*model.AdminSession, error) {
	var session model.AdminSession
	err := r.db.Where("token = ?", token).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteByToken 删除会话（幂等，行不存在时不报错）
func (r *SessionRepository) DeleteByToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&model.AdminSession{}).Error
}

// DeleteByUser 删除用户的所有会话
func (r *SessionRepository) DeleteByUser(userID int) error {
	return r.db.Where("user_id = ?", userID).Delete(&model.AdminSession{}).Error
}

// DeleteExpired 清理过期会话，返回删除行数
func (r *SessionRepository) DeleteExpired() (int64, error) {
	result := r.db.Where("expires_at < ?", time.Now()).Delete(&model.AdminSession{})
	return result.RowsAffected, result.Error
}
