package service

import (
	"log"
	"time"

	"github.com/user/cinemax/internal/repository"
)

// CleanupService 清理服务
// 过期的后台会话在读取时才被拒绝，行本身由这里定期删除
type CleanupService struct {
	repos *repository.Repositories
}

// NewCleanupService 创建清理服务
func NewCleanupService(repos *repository.Repositories) *CleanupService {
	return &CleanupService{repos: repos}
}

// Start 启动定时清理任务
func (s *CleanupService) Start() {
	ticker := time.NewTicker(1 * time.Hour)

	// 启动时先运行一次
	go s.runCleanup()

	go func() {
		for range ticker.C {
			s.runCleanup()
		}
	}()
}

func (s *CleanupService) runCleanup() {
	affected, err := s.repos.Session.DeleteExpired()
	if err != nil {
		log.Printf("[CleanupService] 清理过期会话失败: %v", err)
		return
	}
	if affected > 0 {
		log.Printf("[CleanupService] 已清理 %d 条过期后台会话", affected)
	}
}
