package repository

import (
	"errors"
	"time"

	"github.com/user/cinemax/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get 读取配置项
func (r *SettingRepository) Get(key string) (*model.Setting, error) {
	var setting model.Setting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// Set 写入配置项（存在时覆盖）
func (r *SettingRepository) Set(key, value string) error {
	setting := &model.Setting{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(setting).Error
}

// List 获取全部配置项
func (r *SettingRepository) List() ([]*model.Setting, error) {
	var settings []*model.Setting
	err := r.db.Order("key ASC").Find(&settings).Error
	return settings, err
}

// Delete 删除配置项（幂等）
func (r *SettingRepository) Delete(key string) error {
	return r.db.Where("key = ?", key).Delete(&model.Setting{}).Error
}
