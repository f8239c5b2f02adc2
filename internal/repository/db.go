package repository

import (
	"fmt"

	"github.com/user/cinemax/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 初始化数据库连接
func InitDB(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	// 设置连接池
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// Migrate 执行表结构迁移
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.AdminSession{},
		&model.Movie{},
		&model.Favorite{},
		&model.Review{},
		&model.WatchlistItem{},
		&model.WatchHistory{},
		&model.Setting{},
	)
}

// Repositories 仓库集合
type Repositories struct {
	DB        *gorm.DB
	User      *UserRepository
	Session   *SessionRepository
	Movie     *MovieRepository
	Favorite  *FavoriteRepository
	Review    *ReviewRepository
	Watchlist *WatchlistRepository
	History   *HistoryRepository
	Setting   *SettingRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:        db,
		User:      NewUserRepository(db),
		Session:   NewSessionRepository(db),
		Movie:     NewMovieRepository(db),
		Favorite:  NewFavoriteRepository(db),
		Review:    NewReviewRepository(db),
		Watchlist: NewWatchlistRepository(db),
		History:   NewHistoryRepository(db),
		Setting:   NewSettingRepository(db),
	}
}

// WithTransaction 在事务中执行 fn，fn 返回错误时整体回滚
// 多表级联删除必须走这里，避免中途失败留下孤儿行
func (r *Repositories) WithTransaction(fn func(tx *Repositories) error) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
