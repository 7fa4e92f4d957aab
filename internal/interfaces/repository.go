package interfaces

import (
	"context"
	"time"

	"ReuniaSync/internal/model"
)

// CandidateFilter 模糊匹配候选人筛选条件
type CandidateFilter struct {
	ExcludeSource model.SourceType // 排除的来源（只在其他来源中找候选）
	Role          string           // 人员角色（固定missing-child）
	DateOfBirth   *time.Time       // 已知出生日期时，用±窗口过滤
	DOBWindowDays int              // 出生日期窗口（天）
	Limit         int              // 候选数量上限
}

// CandidatePerson 模糊匹配候选（带所属案件信息）
type CandidatePerson struct {
	Person *model.Person
	Case   *model.Case
}

// CaseBundle 首次建案时的一揽子实体（单事务写入）
type CaseBundle struct {
	Case       *model.Case
	Person     *model.Person
	Images     []*model.Image
	Provenance *model.CaseSourceRecord
}

// CaseRepository 案件/人员/照片/溯源的数据库操作接口
type CaseRepository interface {
	// FindBySourceExternalID 精确匹配：按(来源,外部ID)查溯源行及所属案件
	FindBySourceExternalID(ctx context.Context, source model.SourceType, externalID string) (*model.CaseSourceRecord, *model.Case, error)
	// ListFuzzyCandidates 模糊匹配候选：其他来源、指定角色、排除已归档案件
	ListFuzzyCandidates(ctx context.Context, filter CandidateFilter) ([]*CandidatePerson, error)
	// CreateCaseBundle 建案：案件+人员+照片+溯源单事务创建
	CreateCaseBundle(ctx context.Context, bundle *CaseBundle) error
	// UpdateCaseBundle 精确匹配后的回写：案件+人员字段更新、溯源行刷新，单事务
	UpdateCaseBundle(ctx context.Context, caseID uint64, nc *model.NormalizedCase, qualityScore int) error
	// UpsertProvenance 模糊命中后仅新增/刷新既有案件的溯源行
	UpsertProvenance(ctx context.Context, rec *model.CaseSourceRecord) error
	// CountCases 案件总数（测试与状态查询用）
	CountCases(ctx context.Context) (int64, error)
}

// IngestionRepository 运行日志与来源状态的数据库操作接口
type IngestionRepository interface {
	// EnsureDataSource 按slug幂等upsert来源行
	EnsureDataSource(ctx context.Context, ds *model.DataSource) error
	// GetDataSource 按slug查来源行
	GetDataSource(ctx context.Context, slug string) (*model.DataSource, error)
	// ListDataSources 全部来源行（状态接口用）
	ListDataSources(ctx context.Context) ([]*model.DataSource, error)
	// CreateRunLog 新建running状态的运行日志
	CreateRunLog(ctx context.Context, log *model.IngestionLog) error
	// FinalizeRunLog 将运行日志置为终态并落计数器（终态后不再变更）
	FinalizeRunLog(ctx context.Context, log *model.IngestionLog) error
	// BumpSourceCounters 原子自增来源累计计数并更新成功/失败时间
	BumpSourceCounters(ctx context.Context, slug string, res *model.IngestionResult, runErr error) error
	// ListRecentRuns 最近N次运行（状态接口用）
	ListRecentRuns(ctx context.Context, slug string, limit int) ([]*model.IngestionLog, error)
}
