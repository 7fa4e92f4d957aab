package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ReuniaSync/internal/audit"
	"ReuniaSync/internal/interfaces"
	"ReuniaSync/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// maxErrListLen 运行日志中保留的单条错误上限（超出只计数不留文本）
const maxErrListLen = 20

// IngestService 摄取编排器：单来源单次运行的完整流程
// 抓取→规范化→去重→评分→持久化→记账；单条失败只计数，整体失败才上抛
type IngestService struct {
	provider  interfaces.AdapterProvider
	caseRepo  interfaces.CaseRepository
	ingRepo   interfaces.IngestionRepository
	dedup     *Deduplicator
	scorer    *QualityScorer
	auditSink *audit.Sink
	logger    *logrus.Logger
}

func NewIngestService(
	provider interfaces.AdapterProvider,
	caseRepo interfaces.CaseRepository,
	ingRepo interfaces.IngestionRepository,
	dedup *Deduplicator,
	scorer *QualityScorer,
	auditSink *audit.Sink,
	logger *logrus.Logger,
) *IngestService {
	return &IngestService{
		provider:  provider,
		caseRepo:  caseRepo,
		ingRepo:   ingRepo,
		dedup:     dedup,
		scorer:    scorer,
		auditSink: auditSink,
		logger:    logger,
	}
}

// Run 执行一次摄取运行。状态机：running→success 或 running→error（终态不再变更）。
// 同一来源同一批数据重复运行保证幂等：第二次运行 inserted=0，全部走更新
func (s *IngestService) Run(ctx context.Context, source model.SourceType, opts interfaces.FetchOptions) (*model.IngestionResult, error) {
	startedAt := time.Now()
	slug := string(source)

	sourceAdapter, err := s.provider.Get(source)
	if err != nil {
		return nil, fmt.Errorf("获取%s适配器失败: %w", slug, err)
	}

	// 来源行幂等upsert（slug冲突只刷新元信息）
	if err := s.ingRepo.EnsureDataSource(ctx, &model.DataSource{
		Slug:                slug,
		Name:                sourceAdapter.Name(),
		IsActive:            true,
		PollIntervalMinutes: int(sourceAdapter.PollInterval() / time.Minute),
	}); err != nil {
		return nil, err
	}

	runLog := &model.IngestionLog{
		Source:    slug,
		Status:    model.RunStatusRunning,
		StartedAt: startedAt,
	}
	if err := s.ingRepo.CreateRunLog(ctx, runLog); err != nil {
		return nil, fmt.Errorf("创建运行日志失败: %w", err)
	}

	result := &model.IngestionResult{Source: slug}

	// 抓取整体失败属于编排级错误：标记运行error并上抛给调度方重试
	rawRecords, err := sourceAdapter.Fetch(ctx, opts)
	if err != nil {
		return result, s.failRun(ctx, runLog, result, startedAt, fmt.Errorf("抓取失败: %w", err))
	}
	result.RecordsFetched = len(rawRecords)

	// 记录必须顺序处理：模糊匹配候选查询需要看到本批次中先前记录已提交的写入，
	// 否则同批内互为重复的两条会各建一案
	for _, raw := range rawRecords {
		if err := s.processRecord(ctx, sourceAdapter, raw, result); err != nil {
			result.RecordsFailed++
			if len(result.Errors) < maxErrListLen {
				result.Errors = append(result.Errors, fmt.Sprintf("%s/%s: %v", slug, raw.ExternalID, err))
			}
		}
	}

	result.DurationMs = time.Since(startedAt).Milliseconds()

	runLog.Status = model.RunStatusSuccess
	s.fillRunLog(runLog, result)
	if err := s.ingRepo.FinalizeRunLog(ctx, runLog); err != nil {
		s.logger.WithError(err).WithField("source", slug).Error("运行日志落盘失败")
	}
	if err := s.ingRepo.BumpSourceCounters(ctx, slug, result, nil); err != nil {
		s.logger.WithError(err).WithField("source", slug).Error("来源计数更新失败")
	}

	// 审计为尽力而为的旁路，不等待、不回查
	s.auditSink.Emit("ingestion.completed", slug, map[string]interface{}{
		"fetched":  result.RecordsFetched,
		"inserted": result.RecordsInserted,
		"updated":  result.RecordsUpdated,
		"failed":   result.RecordsFailed,
	})

	s.logger.WithFields(logrus.Fields{
		"source":   slug,
		"fetched":  result.RecordsFetched,
		"inserted": result.RecordsInserted,
		"updated":  result.RecordsUpdated,
		"skipped":  result.RecordsSkipped,
		"failed":   result.RecordsFailed,
		"ms":       result.DurationMs,
	}).Info("摄取运行完成")
	return result, nil
}

// processRecord 单条记录的规范化→去重→持久化，错误由调用方计数
func (s *IngestService) processRecord(ctx context.Context, sourceAdapter interfaces.SourceAdapter, raw *model.SourceRawRecord, result *model.IngestionResult) error {
	nc, err := sourceAdapter.Normalize(raw)
	if err != nil {
		return fmt.Errorf("规范化失败: %w", err)
	}
	if nc.SearchName == "" {
		// 无名记录无法参与匹配也无法检索，跳过而非失败
		result.RecordsSkipped++
		return nil
	}

	decision, err := s.dedup.Decide(ctx, nc)
	if err != nil {
		return fmt.Errorf("去重决策失败: %w", err)
	}

	score := s.scorer.Score(nc)
	now := time.Now()

	switch decision.Outcome {
	case OutcomeExact:
		if err := s.caseRepo.UpdateCaseBundle(ctx, decision.Case.ID, nc, score); err != nil {
			return fmt.Errorf("更新案件失败: %w", err)
		}
		result.RecordsUpdated++

	case OutcomeFuzzy:
		// 同一人已有案件：不建新案，只挂该来源的溯源行
		if err := s.caseRepo.UpsertProvenance(ctx, &model.CaseSourceRecord{
			CaseID:        decision.Case.ID,
			Source:        string(nc.Source),
			ExternalID:    nc.ExternalID,
			SourceURL:     nc.SourceURL,
			RawPayload:    datatypes.JSON(nc.RawPayload),
			LastFetchedAt: now,
		}); err != nil {
			return fmt.Errorf("挂载溯源失败: %w", err)
		}
		result.RecordsUpdated++
		s.auditSink.Emit("case.merged", string(nc.Source), map[string]interface{}{
			"case_id":     decision.Case.ID,
			"external_id": nc.ExternalID,
			"similarity":  decision.Similarity,
			"tier":        string(decision.Tier),
		})

	case OutcomeNew:
		bundle := s.buildBundle(nc, score, now)
		if err := s.caseRepo.CreateCaseBundle(ctx, bundle); err != nil {
			return fmt.Errorf("建案失败: %w", err)
		}
		result.RecordsInserted++
	}
	return nil
}

// buildBundle 规范化记录→首次建案的一揽子实体
func (s *IngestService) buildBundle(nc *model.NormalizedCase, score int, now time.Time) *interfaces.CaseBundle {
	c := &model.Case{
		CaseNumber:       buildCaseNumber(),
		Status:           model.CaseStatusActive,
		Urgency:          deriveUrgency(nc, now),
		QualityScore:     score,
		DateLastSeen:     nc.DateLastSeen,
		LastSeenLocation: nc.LastSeenLocation,
		LastSeenLat:      nc.Latitude,
		LastSeenLon:      nc.Longitude,
		Country:          nc.Country,
		OriginSource:     string(nc.Source),
		OriginExternalID: nc.ExternalID,
	}
	p := &model.Person{
		Role:        "missing-child",
		FirstName:   nc.FirstName,
		LastName:    nc.LastName,
		FullName:    nc.FullName,
		SearchName:  nc.SearchName,
		DateOfBirth: nc.DateOfBirth,
		Gender:      nc.Gender,
		Ethnicity:   nc.Ethnicity,
		AgeMin:      nc.AgeMin,
		AgeMax:      nc.AgeMax,
		HeightCm:    nc.HeightCm,
		WeightKg:    nc.WeightKg,
		Description: nc.Description,
	}
	images := make([]*model.Image, 0, len(nc.PhotoURLs))
	for _, u := range nc.PhotoURLs {
		images = append(images, &model.Image{URL: u})
	}
	return &interfaces.CaseBundle{
		Case:   c,
		Person: p,
		Images: images,
		Provenance: &model.CaseSourceRecord{
			Source:        string(nc.Source),
			ExternalID:    nc.ExternalID,
			SourceURL:     nc.SourceURL,
			RawPayload:    datatypes.JSON(nc.RawPayload),
			LastFetchedAt: now,
		},
	}
}

// failRun 编排级失败：运行置error终态、来源计数记失败、错误上抛
func (s *IngestService) failRun(ctx context.Context, runLog *model.IngestionLog, result *model.IngestionResult, startedAt time.Time, runErr error) error {
	result.DurationMs = time.Since(startedAt).Milliseconds()
	runLog.Status = model.RunStatusError
	if len(result.Errors) < maxErrListLen {
		result.Errors = append(result.Errors, runErr.Error())
	}
	s.fillRunLog(runLog, result)
	if err := s.ingRepo.FinalizeRunLog(ctx, runLog); err != nil {
		s.logger.WithError(err).WithField("source", runLog.Source).Error("失败运行日志落盘失败")
	}
	if err := s.ingRepo.BumpSourceCounters(ctx, runLog.Source, result, runErr); err != nil {
		s.logger.WithError(err).WithField("source", runLog.Source).Error("来源计数更新失败")
	}
	s.auditSink.Emit("ingestion.failed", runLog.Source, map[string]interface{}{
		"error": runErr.Error(),
	})
	return runErr
}

func (s *IngestService) fillRunLog(runLog *model.IngestionLog, result *model.IngestionResult) {
	runLog.RecordsFetched = result.RecordsFetched
	runLog.RecordsInserted = result.RecordsInserted
	runLog.RecordsUpdated = result.RecordsUpdated
	runLog.RecordsSkipped = result.RecordsSkipped
	runLog.RecordsFailed = result.RecordsFailed
	if len(result.Errors) > 0 {
		if b, err := json.Marshal(result.Errors); err == nil {
			runLog.Errors = b
		}
	}
}

// buildCaseNumber 对外案件编号（如"MP-3F2A91BC"）
func buildCaseNumber() string {
	return "MP-" + strings.ToUpper(uuid.NewString()[:8])
}

// deriveUrgency 低龄或失踪不满72小时判高紧急
func deriveUrgency(nc *model.NormalizedCase, now time.Time) string {
	if nc.AgeMin != nil && *nc.AgeMin < 13 {
		return "high"
	}
	if nc.DateLastSeen != nil && now.Sub(*nc.DateLastSeen) < 72*time.Hour {
		return "high"
	}
	return "normal"
}
