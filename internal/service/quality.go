package service

import (
	"ReuniaSync/internal/model"
)

// defaultBaseScores 来源基准分兜底（配置未给出 base_quality_score 时使用）
// 反映来源本身的可信度：官方库 > 实时警报聚合源
var defaultBaseScores = map[model.SourceType]int{
	model.SourceFBI:      70,
	model.SourceNamUs:    75,
	model.SourceInterpol: 75,
	model.SourceAmber:    60,
}

// QualityScorer 数据质量评分器：来源基准分+字段完整性加分，纯函数
type QualityScorer struct {
	baseScores map[model.SourceType]int
}

// NewQualityScorer baseScores 为来源slug→基准分；缺失来源用内置兜底
func NewQualityScorer(baseScores map[model.SourceType]int) *QualityScorer {
	merged := make(map[model.SourceType]int, len(defaultBaseScores))
	for k, v := range defaultBaseScores {
		merged[k] = v
	}
	for k, v := range baseScores {
		if v > 0 {
			merged[k] = v
		}
	}
	return &QualityScorer{baseScores: merged}
}

// Score 计算0-100完整性/可信度评分
func (s *QualityScorer) Score(nc *model.NormalizedCase) int {
	score := s.baseScores[nc.Source]

	// 姓名：全名+10，仅有一部分+5
	switch {
	case nc.FirstName != "" && nc.LastName != "":
		score += 10
	case nc.FirstName != "" || nc.LastName != "":
		score += 5
	}
	if nc.DateOfBirth != nil {
		score += 5
	}
	if nc.DateLastSeen != nil {
		score += 3
	}
	if len(nc.PhotoURLs) > 0 {
		score += 8
	}
	// 地点：坐标优于文本，不叠加
	if nc.Latitude != nil && nc.Longitude != nil {
		score += 5
	} else if nc.LastSeenLocation != "" {
		score += 3
	}
	if len(nc.Description) > 50 {
		score += 3
	}
	if nc.Gender != "" {
		score += 2
	}
	if nc.HeightCm != nil || nc.WeightKg != nil || nc.AgeMin != nil || nc.AgeMax != nil {
		score += 2
	}
	if nc.Country != "" {
		score += 2
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ConfidenceTier 匹配置信度档位（与人脸比对服务的档位口径一致，用于审计标注）
type ConfidenceTier string

const (
	TierHigh     ConfidenceTier = "HIGH"
	TierMedium   ConfidenceTier = "MEDIUM"
	TierLow      ConfidenceTier = "LOW"
	TierRejected ConfidenceTier = "REJECTED"
)

// TierForSimilarity 相似度→置信度档位
func TierForSimilarity(similarity float64) ConfidenceTier {
	switch {
	case similarity >= 0.85:
		return TierHigh
	case similarity >= 0.70:
		return TierMedium
	case similarity >= 0.55:
		return TierLow
	default:
		return TierRejected
	}
}
