package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ReuniaSync/internal/interfaces"
	"ReuniaSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type caseRepository struct {
	db *gorm.DB
}

func NewCaseRepository(db *gorm.DB) interfaces.CaseRepository {
	return &caseRepository{db: db}
}

// FindBySourceExternalID 精确匹配：(来源,外部ID)唯一定位溯源行与所属案件
// 未命中返回(nil,nil,nil)，不视为错误
func (r *caseRepository) FindBySourceExternalID(ctx context.Context, source model.SourceType, externalID string) (*model.CaseSourceRecord, *model.Case, error) {
	var rec model.CaseSourceRecord
	err := r.db.WithContext(ctx).
		Where("source = ? AND external_id = ?", string(source), externalID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("查询溯源行失败: %w", err)
	}

	var c model.Case
	if err := r.db.WithContext(ctx).Where("id = ?", rec.CaseID).First(&c).Error; err != nil {
		return nil, nil, fmt.Errorf("查询案件失败: %w", err)
	}
	return &rec, &c, nil
}

// ListFuzzyCandidates 模糊匹配候选：只取尚无该来源溯源行的案件（即"其他来源"），
// 指定角色、排除归档案件；已知出生日期时按±窗口过滤；候选数量封顶
func (r *caseRepository) ListFuzzyCandidates(ctx context.Context, filter interfaces.CandidateFilter) ([]*interfaces.CandidatePerson, error) {
	q := r.db.WithContext(ctx).Model(&model.Person{}).
		Joins("JOIN cases ON cases.id = persons.case_id").
		Where("persons.role = ?", filter.Role).
		Where("cases.status <> ?", model.CaseStatusArchived).
		Where("NOT EXISTS (SELECT 1 FROM case_source_records csr WHERE csr.case_id = cases.id AND csr.source = ?)", string(filter.ExcludeSource))

	if filter.DateOfBirth != nil && filter.DOBWindowDays > 0 {
		window := time.Duration(filter.DOBWindowDays) * 24 * time.Hour
		q = q.Where("persons.date_of_birth BETWEEN ? AND ?",
			filter.DateOfBirth.Add(-window), filter.DateOfBirth.Add(window))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var persons []*model.Person
	if err := q.Order("persons.id ASC").Limit(limit).Find(&persons).Error; err != nil {
		return nil, fmt.Errorf("查询候选人员失败: %w", err)
	}
	if len(persons) == 0 {
		return nil, nil
	}

	caseIDs := make([]uint64, 0, len(persons))
	for _, p := range persons {
		caseIDs = append(caseIDs, p.CaseID)
	}
	var cases []*model.Case
	if err := r.db.WithContext(ctx).Where("id IN ?", caseIDs).Find(&cases).Error; err != nil {
		return nil, fmt.Errorf("查询候选案件失败: %w", err)
	}
	caseByID := make(map[uint64]*model.Case, len(cases))
	for _, c := range cases {
		caseByID[c.ID] = c
	}

	candidates := make([]*interfaces.CandidatePerson, 0, len(persons))
	for _, p := range persons {
		c, ok := caseByID[p.CaseID]
		if !ok {
			continue
		}
		candidates = append(candidates, &interfaces.CandidatePerson{Person: p, Case: c})
	}
	return candidates, nil
}

// CreateCaseBundle 建案：案件+人员+照片+溯源单事务创建，中途失败整体回滚
func (r *caseRepository) CreateCaseBundle(ctx context.Context, bundle *interfaces.CaseBundle) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(bundle.Case).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("创建案件失败: %w", err)
	}
	bundle.Person.CaseID = bundle.Case.ID
	if err := tx.Create(bundle.Person).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("创建人员失败: %w", err)
	}
	for i, img := range bundle.Images {
		img.PersonID = bundle.Person.ID
		img.IsPrimary = i == 0 // 首张为主照片
		if err := tx.Create(img).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("创建照片失败: %w", err)
		}
	}
	bundle.Provenance.CaseID = bundle.Case.ID
	if err := tx.Create(bundle.Provenance).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("创建溯源行失败: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// UpdateCaseBundle 精确命中后的回写：案件/人员字段更新+溯源行刷新，单事务
func (r *caseRepository) UpdateCaseBundle(ctx context.Context, caseID uint64, nc *model.NormalizedCase, qualityScore int) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
		}
	}()

	now := time.Now()
	caseUpdates := map[string]interface{}{
		"quality_score":      qualityScore,
		"last_seen_location": nc.LastSeenLocation,
		"updated_at":         now,
	}
	if nc.DateLastSeen != nil {
		caseUpdates["date_last_seen"] = *nc.DateLastSeen
	}
	if nc.Latitude != nil {
		caseUpdates["last_seen_lat"] = *nc.Latitude
	}
	if nc.Longitude != nil {
		caseUpdates["last_seen_lon"] = *nc.Longitude
	}
	if nc.Country != "" {
		caseUpdates["country"] = nc.Country
	}
	if err := tx.Model(&model.Case{}).Where("id = ?", caseID).Updates(caseUpdates).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("更新案件失败: %w", err)
	}

	personUpdates := map[string]interface{}{
		"first_name":  nc.FirstName,
		"last_name":   nc.LastName,
		"full_name":   nc.FullName,
		"search_name": nc.SearchName,
		"gender":      nc.Gender,
		"ethnicity":   nc.Ethnicity,
		"description": nc.Description,
		"updated_at":  now,
	}
	if nc.DateOfBirth != nil {
		personUpdates["date_of_birth"] = *nc.DateOfBirth
	}
	if nc.AgeMin != nil {
		personUpdates["age_min"] = *nc.AgeMin
	}
	if nc.AgeMax != nil {
		personUpdates["age_max"] = *nc.AgeMax
	}
	if nc.HeightCm != nil {
		personUpdates["height_cm"] = *nc.HeightCm
	}
	if nc.WeightKg != nil {
		personUpdates["weight_kg"] = *nc.WeightKg
	}
	if err := tx.Model(&model.Person{}).Where("case_id = ?", caseID).Updates(personUpdates).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("更新人员失败: %w", err)
	}

	if err := tx.Model(&model.CaseSourceRecord{}).
		Where("source = ? AND external_id = ?", string(nc.Source), nc.ExternalID).
		Updates(map[string]interface{}{
			"last_fetched_at": now,
			"raw_payload":     nc.RawPayload,
			"source_url":      nc.SourceURL,
		}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("刷新溯源行失败: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// UpsertProvenance 模糊命中后仅新增/刷新溯源行（幂等，冲突键=来源+外部ID）
func (r *caseRepository) UpsertProvenance(ctx context.Context, rec *model.CaseSourceRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_fetched_at", "raw_payload", "source_url"}),
	}).Create(rec).Error
}

func (r *caseRepository) CountCases(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Case{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
