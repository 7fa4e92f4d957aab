package fbi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ReuniaSync/internal/config"
	"ReuniaSync/internal/interfaces"
	"ReuniaSync/internal/model"
	"ReuniaSync/internal/normalizer"
	"ReuniaSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

type Adapter struct {
	cfg        *config.SourceConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewFBIAdapter(cfg *config.SourceConfig, logger *logrus.Logger) interfaces.SourceAdapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

// Slug ========== 实现SourceAdapter接口 ==========
func (a *Adapter) Slug() model.SourceType {
	return model.SourceFBI
}

func (a *Adapter) Name() string {
	return "FBI Wanted"
}

func (a *Adapter) PollInterval() time.Duration {
	return time.Duration(a.cfg.PollIntervalMinutes) * time.Minute
}

// Fetch 顺序翻页抓取，页间延迟匹配来源限速；后续页失败时返回已收集部分
func (a *Adapter) Fetch(ctx context.Context, opts interfaces.FetchOptions) ([]*model.SourceRawRecord, error) {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = a.cfg.MaxPages
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}

	var items []*model.FBIItem
	for i := 0; i < maxPages; i++ {
		reqURL := fmt.Sprintf("%s/list?page=%d&pageSize=%d", a.cfg.BaseURL, page, a.cfg.PageSize)
		var resp model.FBIListResponse
		if err := httpclient.GetJSONWithRetry(ctx, a.httpClient, reqURL, a.cfg.AuthToken, a.cfg.RetryCount, a.logger, &resp); err != nil {
			if len(items) > 0 {
				// 部分结果优于全无：后续页失败只截断本次批量
				a.logger.WithError(err).WithField("page", page).Warn("翻页失败，返回已抓取部分")
				break
			}
			return nil, fmt.Errorf("抓取第%d页失败: %w", page, err)
		}
		if len(resp.Items) == 0 {
			break
		}
		items = append(items, resp.Items...)
		page++
		if len(items) >= resp.Total {
			break
		}
		select {
		case <-ctx.Done():
			return a.wrap(a.filterMissingPersons(items)), ctx.Err()
		case <-time.After(time.Duration(a.cfg.PageDelayMs) * time.Millisecond):
		}
	}

	return a.wrap(a.filterMissingPersons(items)), nil
}

// filterMissingPersons 该源混合通缉犯与失踪人口，按分类与主题筛出失踪人口
// 兜底：筛选结果为空时回退为全部记录，避免分类规则回归导致整源静默丢失
func (a *Adapter) filterMissingPersons(items []*model.FBIItem) []*model.FBIItem {
	var matched []*model.FBIItem
	for _, it := range items {
		if isMissingPerson(it) {
			matched = append(matched, it)
		}
	}
	if len(matched) == 0 && len(items) > 0 {
		a.logger.WithField("fetched", len(items)).Warn("失踪人口分类无命中，回退为全部记录")
		return items
	}
	return matched
}

func isMissingPerson(it *model.FBIItem) bool {
	if strings.EqualFold(it.PersonClassification, "Victim") {
		return true
	}
	for _, s := range it.Subjects {
		ls := strings.ToLower(s)
		if strings.Contains(ls, "missing") || strings.Contains(ls, "kidnapping") {
			return true
		}
	}
	return strings.Contains(strings.ToLower(it.Title), "missing")
}

func (a *Adapter) wrap(items []*model.FBIItem) []*model.SourceRawRecord {
	records := make([]*model.SourceRawRecord, 0, len(items))
	for _, it := range items {
		records = append(records, &model.SourceRawRecord{
			Source:     model.SourceFBI,
			ExternalID: it.UID,
			Data:       it,
		})
	}
	return records
}

// Normalize 纯函数转换，单字段不可解析时降级为nil而非整条失败
func (a *Adapter) Normalize(raw *model.SourceRawRecord) (*model.NormalizedCase, error) {
	it, ok := raw.Data.(*model.FBIItem)
	if !ok {
		return nil, fmt.Errorf("原始记录类型错误: %T", raw.Data)
	}
	if it.UID == "" {
		return nil, fmt.Errorf("记录缺少uid")
	}

	// 标题形如 "MARIA SILVA - PHOENIX" 或纯人名，取首段作全名
	fullName := strings.TrimSpace(strings.Split(it.Title, " - ")[0])
	first, last := normalizer.SplitName(fullName)

	var dob *time.Time
	if len(it.DatesOfBirthUsed) > 0 {
		dob = normalizer.ParseDate(it.DatesOfBirthUsed[0])
	}

	var heightCm *float64
	if it.HeightMin != nil {
		h := normalizer.InchesToCm(float64(*it.HeightMin))
		heightCm = &h
	}
	var weightKg *float64
	if lbs := normalizer.ParseLeadingNumber(it.Weight); lbs != nil {
		w := normalizer.PoundsToKg(*lbs)
		weightKg = &w
	}

	var photos []string
	for _, img := range it.Images {
		if img.Original != "" {
			photos = append(photos, img.Original)
		}
	}

	location := ""
	if len(it.FieldOffices) > 0 {
		location = it.FieldOffices[0]
	}

	payload, _ := json.Marshal(it)
	return &model.NormalizedCase{
		ExternalID:       it.UID,
		Source:           model.SourceFBI,
		FirstName:        first,
		LastName:         last,
		FullName:         fullName,
		SearchName:       normalizer.BuildSearchName(fullName),
		DateOfBirth:      dob,
		DateLastSeen:     normalizer.ParseDate(it.Publication),
		LastSeenLocation: location,
		Country:          "US",
		Description:      normalizer.StripHTML(it.Description + " " + it.Details),
		Gender:           normalizer.NormalizeGender(it.Sex),
		Ethnicity:        it.Race,
		AgeMin:           it.AgeMin,
		AgeMax:           it.AgeMax,
		HeightCm:         heightCm,
		WeightKg:         weightKg,
		PhotoURLs:        photos,
		Status:           it.Status,
		SourceURL:        it.URL,
		RawPayload:       payload,
	}, nil
}
