package scheduler

import (
	"fmt"
	"sync"
	"time"

	"ReuniaSync/internal/interfaces"
	"ReuniaSync/internal/model"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler 每来源一条循环日程，按来源slug做稳定键：
// 重复注册只替换旧日程，绝不累积重复日程
type Scheduler struct {
	cron    *cron.Cron
	worker  *Worker
	logger  *logrus.Logger
	mu      sync.Mutex
	entries map[model.SourceType]cron.EntryID
}

func NewScheduler(worker *Worker, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		worker:  worker,
		logger:  logger,
		entries: make(map[model.SourceType]cron.EntryID),
	}
}

// Register 注册/替换来源的循环日程（幂等）
func (s *Scheduler) Register(source model.SourceType, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("来源%s的轮询间隔非法: %s", source, interval)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if oldID, ok := s.entries[source]; ok {
		s.cron.Remove(oldID)
	}
	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		s.worker.EnqueueScheduled(source, interfaces.FetchOptions{})
	})
	if err != nil {
		return fmt.Errorf("注册%s日程失败: %w", source, err)
	}
	s.entries[source] = id
	s.logger.WithFields(logrus.Fields{
		"source":   source,
		"interval": interval.String(),
	}).Info("来源日程已注册")
	return nil
}

// EntryCount 已注册日程数量（测试用）
func (s *Scheduler) EntryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Start 启动日程引擎
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("调度器已启动")
}

// Stop 停止触发新日程（在途任务交由worker的退出流程处理）
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("调度器已停止")
}
