package repository

import (
	"context"
	"fmt"
	"time"

	"ReuniaSync/internal/interfaces"
	"ReuniaSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ingestionRepository struct {
	db *gorm.DB
}

func NewIngestionRepository(db *gorm.DB) interfaces.IngestionRepository {
	return &ingestionRepository{db: db}
}

// EnsureDataSource 按slug幂等upsert：重复调用不产生新行，仅刷新元信息
func (r *ingestionRepository) EnsureDataSource(ctx context.Context, ds *model.DataSource) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "poll_interval_minutes", "updated_at"}),
	}).Create(ds).Error; err != nil {
		return fmt.Errorf("upsert数据来源失败: %w", err)
	}
	if ds.ID == 0 {
		if err := r.db.WithContext(ctx).Model(ds).Where("slug = ?", ds.Slug).Select("id").First(ds).Error; err != nil {
			return fmt.Errorf("回查数据来源失败: %w", err)
		}
	}
	return nil
}

func (r *ingestionRepository) GetDataSource(ctx context.Context, slug string) (*model.DataSource, error) {
	var ds model.DataSource
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&ds).Error; err != nil {
		return nil, err
	}
	return &ds, nil
}

func (r *ingestionRepository) ListDataSources(ctx context.Context) ([]*model.DataSource, error) {
	var list []*model.DataSource
	if err := r.db.WithContext(ctx).Order("slug ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ingestionRepository) CreateRunLog(ctx context.Context, log *model.IngestionLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FinalizeRunLog 仅允许 running→终态 一次；终态行的再次finalize是空操作
func (r *ingestionRepository) FinalizeRunLog(ctx context.Context, log *model.IngestionLog) error {
	now := time.Now()
	log.FinishedAt = &now
	return r.db.WithContext(ctx).Model(&model.IngestionLog{}).
		Where("id = ? AND status = ?", log.ID, model.RunStatusRunning).
		Updates(map[string]interface{}{
			"status":           log.Status,
			"finished_at":      now,
			"records_fetched":  log.RecordsFetched,
			"records_inserted": log.RecordsInserted,
			"records_updated":  log.RecordsUpdated,
			"records_skipped":  log.RecordsSkipped,
			"records_failed":   log.RecordsFailed,
			"errors":           log.Errors,
		}).Error
}

// BumpSourceCounters 原子自增累计计数器：不同来源并发运行互不覆盖
func (r *ingestionRepository) BumpSourceCounters(ctx context.Context, slug string, res *model.IngestionResult, runErr error) error {
	now := time.Now()
	updates := map[string]interface{}{
		"total_fetched":  gorm.Expr("total_fetched + ?", res.RecordsFetched),
		"total_inserted": gorm.Expr("total_inserted + ?", res.RecordsInserted),
		"total_updated":  gorm.Expr("total_updated + ?", res.RecordsUpdated),
		"total_failed":   gorm.Expr("total_failed + ?", res.RecordsFailed),
		"updated_at":     now,
	}
	if runErr != nil {
		updates["last_error_at"] = now
		updates["last_error"] = runErr.Error()
	} else {
		updates["last_success_at"] = now
	}
	return r.db.WithContext(ctx).Model(&model.DataSource{}).
		Where("slug = ?", slug).Updates(updates).Error
}

func (r *ingestionRepository) ListRecentRuns(ctx context.Context, slug string, limit int) ([]*model.IngestionLog, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	var runs []*model.IngestionLog
	if err := r.db.WithContext(ctx).
		Where("source = ?", slug).
		Order("started_at DESC").Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
