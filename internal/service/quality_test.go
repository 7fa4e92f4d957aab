package service

import (
	"strings"
	"testing"
	"time"

	"ReuniaSync/internal/model"

	"github.com/stretchr/testify/assert"
)

func ptrTime(t time.Time) *time.Time { return &t }
func ptrF64(v float64) *float64      { return &v }
func ptrInt(v int) *int              { return &v }

func TestScoreBaseOnly(t *testing.T) {
	scorer := NewQualityScorer(nil)
	// 空记录只得来源基准分
	assert.Equal(t, 70, scorer.Score(&model.NormalizedCase{Source: model.SourceFBI}))
	assert.Equal(t, 75, scorer.Score(&model.NormalizedCase{Source: model.SourceNamUs}))
	assert.Equal(t, 60, scorer.Score(&model.NormalizedCase{Source: model.SourceAmber}))
}

func TestScoreConfigOverridesBase(t *testing.T) {
	scorer := NewQualityScorer(map[model.SourceType]int{model.SourceFBI: 80})
	assert.Equal(t, 80, scorer.Score(&model.NormalizedCase{Source: model.SourceFBI}))
	// 未覆盖来源仍用兜底
	assert.Equal(t, 75, scorer.Score(&model.NormalizedCase{Source: model.SourceNamUs}))
}

func TestScoreAdditiveBonuses(t *testing.T) {
	scorer := NewQualityScorer(nil)
	base := scorer.Score(&model.NormalizedCase{Source: model.SourceAmber})

	tests := []struct {
		msg   string
		nc    model.NormalizedCase
		bonus int
	}{
		{"全名+10", model.NormalizedCase{FirstName: "Maria", LastName: "Silva"}, 10},
		{"仅名+5", model.NormalizedCase{FirstName: "Maria"}, 5},
		{"出生日期+5", model.NormalizedCase{DateOfBirth: ptrTime(time.Now())}, 5},
		{"最后目击+3", model.NormalizedCase{DateLastSeen: ptrTime(time.Now())}, 3},
		{"照片+8", model.NormalizedCase{PhotoURLs: []string{"https://x/p.jpg"}}, 8},
		{"坐标+5", model.NormalizedCase{Latitude: ptrF64(1), Longitude: ptrF64(2)}, 5},
		{"仅地点文本+3", model.NormalizedCase{LastSeenLocation: "Springfield"}, 3},
		{"坐标与文本不叠加", model.NormalizedCase{
			Latitude: ptrF64(1), Longitude: ptrF64(2), LastSeenLocation: "Springfield"}, 5},
		{"长描述+3", model.NormalizedCase{Description: strings.Repeat("a", 51)}, 3},
		{"短描述不加分", model.NormalizedCase{Description: "short"}, 0},
		{"性别+2", model.NormalizedCase{Gender: "female"}, 2},
		{"体貌字段+2", model.NormalizedCase{HeightCm: ptrF64(120)}, 2},
		{"国家+2", model.NormalizedCase{Country: "US"}, 2},
	}
	for _, v := range tests {
		nc := v.nc
		nc.Source = model.SourceAmber
		assert.Equal(t, base+v.bonus, scorer.Score(&nc), v.msg)
	}
}

func TestScoreClampedTo100(t *testing.T) {
	scorer := NewQualityScorer(map[model.SourceType]int{model.SourceNamUs: 95})
	nc := &model.NormalizedCase{
		Source:           model.SourceNamUs,
		FirstName:        "Maria",
		LastName:         "Silva",
		DateOfBirth:      ptrTime(time.Now()),
		DateLastSeen:     ptrTime(time.Now()),
		PhotoURLs:        []string{"https://x/p.jpg"},
		Latitude:         ptrF64(1),
		Longitude:        ptrF64(2),
		LastSeenLocation: "Springfield",
		Description:      strings.Repeat("a", 80),
		Gender:           "female",
		AgeMin:           ptrInt(8),
		Country:          "US",
	}
	assert.Equal(t, 100, scorer.Score(nc))
}

func TestTierForSimilarity(t *testing.T) {
	assert.Equal(t, TierHigh, TierForSimilarity(0.85))
	assert.Equal(t, TierMedium, TierForSimilarity(0.84))
	assert.Equal(t, TierMedium, TierForSimilarity(0.70))
	assert.Equal(t, TierLow, TierForSimilarity(0.55))
	assert.Equal(t, TierRejected, TierForSimilarity(0.54))
}
