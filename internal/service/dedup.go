package service

import (
	"context"
	"math"
	"unicode/utf8"

	"ReuniaSync/internal/interfaces"
	"ReuniaSync/internal/model"

	"github.com/agext/levenshtein"
	"github.com/sirupsen/logrus"
)

// 模糊匹配固定参数（候选上限与出生日期窗口为已知的规模瓶颈，量级上来需换相似度索引）
const (
	DedupThreshold   = 0.85 // 判定同一人的相似度阈值
	candidateCap     = 50   // 候选人员数量上限
	dobWindowDays    = 30   // 候选筛选的出生日期±窗口（天）
	boostDOBExact    = 0.10 // 出生日期完全一致加分
	boostDOBNear     = 0.05 // 出生日期相差7天内加分
	boostGenderMatch = 0.05 // 性别一致加分
	dobNearDays      = 7
)

// MatchOutcome 去重决策结果枚举
type MatchOutcome string

const (
	OutcomeExact MatchOutcome = "exact" // 同来源同外部ID的重复抓取→原地更新
	OutcomeFuzzy MatchOutcome = "fuzzy" // 其他来源的同一人→仅挂溯源
	OutcomeNew   MatchOutcome = "new"   // 全新案件→建案
)

// MatchDecision 单条规范化记录的去重决策
type MatchDecision struct {
	Outcome    MatchOutcome
	Case       *model.Case    // exact/fuzzy 时为命中的既有案件
	Similarity float64        // fuzzy 时的最终相似度
	Tier       ConfidenceTier // fuzzy 时的置信度档位
}

// Deduplicator 跨来源去重引擎：先精确后模糊的两段式决策
type Deduplicator struct {
	caseRepo interfaces.CaseRepository
	logger   *logrus.Logger
}

func NewDeduplicator(caseRepo interfaces.CaseRepository, logger *logrus.Logger) *Deduplicator {
	return &Deduplicator{caseRepo: caseRepo, logger: logger}
}

// Decide 两段式决策：
// 1. (来源,外部ID)精确命中→exact；
// 2. 否则在其他来源的未归档missing-child中做姓名模糊匹配，最高分≥阈值→fuzzy；
// 3. 其余情况→new。模糊阶段出现内部错误时按new处理（宁可重复不可漏案，策略例外记日志）
func (d *Deduplicator) Decide(ctx context.Context, nc *model.NormalizedCase) (*MatchDecision, error) {
	_, existing, err := d.caseRepo.FindBySourceExternalID(ctx, nc.Source, nc.ExternalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &MatchDecision{Outcome: OutcomeExact, Case: existing}, nil
	}

	decision, err := d.fuzzyMatch(ctx, nc)
	if err != nil {
		d.logger.WithError(err).WithFields(logrus.Fields{
			"source":      nc.Source,
			"external_id": nc.ExternalID,
		}).Warn("模糊匹配内部错误，按新建案件处理")
		return &MatchDecision{Outcome: OutcomeNew}, nil
	}
	return decision, nil
}

func (d *Deduplicator) fuzzyMatch(ctx context.Context, nc *model.NormalizedCase) (*MatchDecision, error) {
	candidates, err := d.caseRepo.ListFuzzyCandidates(ctx, interfaces.CandidateFilter{
		ExcludeSource: nc.Source,
		Role:          "missing-child",
		DateOfBirth:   nc.DateOfBirth,
		DOBWindowDays: dobWindowDays,
		Limit:         candidateCap,
	})
	if err != nil {
		return nil, err
	}

	var best *interfaces.CandidatePerson
	bestScore := 0.0
	for _, cand := range candidates {
		score := NameSimilarity(nc.SearchName, cand.Person.SearchName)
		score += d.boosts(nc, cand.Person)
		if score > 1.0 {
			score = 1.0
		}
		if score > bestScore {
			bestScore = score
			best = cand
		}
	}

	if best != nil && bestScore >= DedupThreshold {
		d.logger.WithFields(logrus.Fields{
			"source":      nc.Source,
			"external_id": nc.ExternalID,
			"case_id":     best.Case.ID,
			"similarity":  bestScore,
			"tier":        TierForSimilarity(bestScore),
		}).Info("跨来源模糊命中既有案件")
		return &MatchDecision{
			Outcome:    OutcomeFuzzy,
			Case:       best.Case,
			Similarity: bestScore,
			Tier:       TierForSimilarity(bestScore),
		}, nil
	}
	return &MatchDecision{Outcome: OutcomeNew, Similarity: bestScore}, nil
}

// boosts 辅助字段加分：出生日期与性别
func (d *Deduplicator) boosts(nc *model.NormalizedCase, p *model.Person) float64 {
	boost := 0.0
	if nc.DateOfBirth != nil && p.DateOfBirth != nil {
		diff := math.Abs(nc.DateOfBirth.Sub(*p.DateOfBirth).Hours() / 24)
		if diff == 0 {
			boost += boostDOBExact
		} else if diff <= dobNearDays {
			boost += boostDOBNear
		}
	}
	if nc.Gender != "" && nc.Gender == p.Gender {
		boost += boostGenderMatch
	}
	return boost
}

// NameSimilarity 规范化编辑距离相似度：1 - levenshtein/maxLen，对称且落在[0,1]
// 入参应为规范化检索名（小写去音标去符号）
func NameSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	dist := levenshtein.Distance(a, b, nil)
	return 1 - float64(dist)/float64(maxLen)
}
