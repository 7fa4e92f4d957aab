package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ReuniaSync/internal/interfaces"
	"ReuniaSync/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StatusService 面向仪表盘的来源状态查询
type StatusService struct {
	provider interfaces.AdapterProvider
	ingRepo  interfaces.IngestionRepository
	logger   *logrus.Logger
}

func NewStatusService(provider interfaces.AdapterProvider, ingRepo interfaces.IngestionRepository, logger *logrus.Logger) *StatusService {
	return &StatusService{provider: provider, ingRepo: ingRepo, logger: logger}
}

// RunSummary 单次运行摘要
type RunSummary struct {
	Status          string `json:"status"`
	StartedAt       int64  `json:"started_at"` // 毫秒时间戳
	FinishedAt      int64  `json:"finished_at,omitempty"`
	RecordsFetched  int    `json:"records_fetched"`
	RecordsInserted int    `json:"records_inserted"`
	RecordsUpdated  int    `json:"records_updated"`
	RecordsFailed   int    `json:"records_failed"`
}

// SourceStatus 单来源状态（适配器健康+最近运行）
type SourceStatus struct {
	Source        string       `json:"source"`
	Name          string       `json:"name"`
	AdapterHealth string       `json:"adapter_health"` // healthy/degraded/unknown
	IsActive      bool         `json:"is_active"`
	TotalFetched  int64        `json:"total_fetched"`
	TotalInserted int64        `json:"total_inserted"`
	TotalUpdated  int64        `json:"total_updated"`
	LastSuccessAt *time.Time   `json:"last_success_at,omitempty"`
	LastError     string       `json:"last_error,omitempty"`
	LastRun       *RunSummary  `json:"last_run,omitempty"`
	RecentRuns    []RunSummary `json:"recent_runs"`
}

// GetStatus 单来源状态查询
func (s *StatusService) GetStatus(ctx context.Context, source model.SourceType) (*SourceStatus, error) {
	sourceAdapter, err := s.provider.Get(source)
	if err != nil {
		return nil, err
	}

	status := &SourceStatus{
		Source:        string(source),
		Name:          sourceAdapter.Name(),
		AdapterHealth: "unknown",
		RecentRuns:    []RunSummary{},
	}

	ds, err := s.ingRepo.GetDataSource(ctx, string(source))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 从未运行过的来源：只有适配器信息可给
			return status, nil
		}
		return nil, fmt.Errorf("查询来源状态失败: %w", err)
	}
	status.IsActive = ds.IsActive
	status.TotalFetched = ds.TotalFetched
	status.TotalInserted = ds.TotalInserted
	status.TotalUpdated = ds.TotalUpdated
	status.LastSuccessAt = ds.LastSuccessAt
	status.LastError = ds.LastError
	status.AdapterHealth = deriveHealth(ds)

	runs, err := s.ingRepo.ListRecentRuns(ctx, string(source), 10)
	if err != nil {
		return nil, fmt.Errorf("查询最近运行失败: %w", err)
	}
	for _, r := range runs {
		status.RecentRuns = append(status.RecentRuns, toRunSummary(r))
	}
	if len(status.RecentRuns) > 0 {
		status.LastRun = &status.RecentRuns[0]
	}
	return status, nil
}

// ListSources 全部来源行（仪表盘列表页用）
func (s *StatusService) ListSources(ctx context.Context) ([]*model.DataSource, error) {
	return s.ingRepo.ListDataSources(ctx)
}

// deriveHealth 最近一次成败推导健康度：成功晚于失败→healthy，反之degraded
func deriveHealth(ds *model.DataSource) string {
	switch {
	case ds.LastSuccessAt == nil && ds.LastErrorAt == nil:
		return "unknown"
	case ds.LastErrorAt == nil:
		return "healthy"
	case ds.LastSuccessAt == nil:
		return "degraded"
	case ds.LastSuccessAt.After(*ds.LastErrorAt):
		return "healthy"
	default:
		return "degraded"
	}
}

func toRunSummary(r *model.IngestionLog) RunSummary {
	sum := RunSummary{
		Status:          r.Status,
		StartedAt:       r.StartedAt.UnixMilli(),
		RecordsFetched:  r.RecordsFetched,
		RecordsInserted: r.RecordsInserted,
		RecordsUpdated:  r.RecordsUpdated,
		RecordsFailed:   r.RecordsFailed,
	}
	if r.FinishedAt != nil {
		sum.FinishedAt = r.FinishedAt.UnixMilli()
	}
	return sum
}
