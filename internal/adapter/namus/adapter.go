package namus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
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

func NewNamUsAdapter(cfg *config.SourceConfig, logger *logrus.Logger) interfaces.SourceAdapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

// Slug ========== 实现SourceAdapter接口 ==========
func (a *Adapter) Slug() model.SourceType {
	return model.SourceNamUs
}

func (a *Adapter) Name() string {
	return "NamUs Missing Persons"
}

func (a *Adapter) PollInterval() time.Duration {
	return time.Duration(a.cfg.PollIntervalMinutes) * time.Minute
}

// Fetch 顺序翻页抓取；支持 since 增量（按最后联系日期过滤）
func (a *Adapter) Fetch(ctx context.Context, opts interfaces.FetchOptions) ([]*model.SourceRawRecord, error) {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = a.cfg.MaxPages
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}

	var records []*model.SourceRawRecord
	for i := 0; i < maxPages; i++ {
		q := url.Values{}
		q.Set("take", fmt.Sprintf("%d", a.cfg.PageSize))
		q.Set("skip", fmt.Sprintf("%d", (page-1)*a.cfg.PageSize))
		if opts.Since != nil {
			q.Set("lastContactAfter", opts.Since.Format("2006-01-02"))
		}
		reqURL := fmt.Sprintf("%s/CaseSets/NamUs/MissingPersons/Search?%s", a.cfg.BaseURL, q.Encode())

		var resp model.NamUsSearchResponse
		if err := httpclient.GetJSONWithRetry(ctx, a.httpClient, reqURL, a.cfg.AuthToken, a.cfg.RetryCount, a.logger, &resp); err != nil {
			if len(records) > 0 {
				a.logger.WithError(err).WithField("page", page).Warn("翻页失败，返回已抓取部分")
				break
			}
			return nil, fmt.Errorf("抓取第%d页失败: %w", page, err)
		}
		if len(resp.Results) == 0 {
			break
		}
		for _, c := range resp.Results {
			records = append(records, &model.SourceRawRecord{
				Source:     model.SourceNamUs,
				ExternalID: c.IDFormatted,
				Data:       c,
			})
		}
		page++
		if len(records) >= resp.Count {
			break
		}
		select {
		case <-ctx.Done():
			return records, ctx.Err()
		case <-time.After(time.Duration(a.cfg.PageDelayMs) * time.Millisecond):
		}
	}

	return records, nil
}

// Normalize 纯函数转换
func (a *Adapter) Normalize(raw *model.SourceRawRecord) (*model.NormalizedCase, error) {
	c, ok := raw.Data.(*model.NamUsCase)
	if !ok {
		return nil, fmt.Errorf("原始记录类型错误: %T", raw.Data)
	}
	if c.IDFormatted == "" {
		return nil, fmt.Errorf("记录缺少idFormatted")
	}

	fullName := normalizer.JoinName(c.FirstName, normalizer.JoinName(c.MiddleName, c.LastName))

	var heightCm *float64
	if c.HeightInches != nil {
		h := normalizer.InchesToCm(*c.HeightInches)
		heightCm = &h
	}
	var weightKg *float64
	if c.WeightLbs != nil {
		w := normalizer.PoundsToKg(*c.WeightLbs)
		weightKg = &w
	}

	// 默认照片置于首位（持久化时首张视为主照片）
	var photos []string
	for _, img := range c.Images {
		if img.Original.Href == "" {
			continue
		}
		if img.IsDefault {
			photos = append([]string{img.Original.Href}, photos...)
		} else {
			photos = append(photos, img.Original.Href)
		}
	}

	location := c.CityOfLastContact
	if c.StateOfLastContact != "" {
		location = normalizer.JoinName(location+",", c.StateOfLastContact)
	}

	payload, _ := json.Marshal(c)
	return &model.NormalizedCase{
		ExternalID:       c.IDFormatted,
		Source:           model.SourceNamUs,
		FirstName:        c.FirstName,
		LastName:         c.LastName,
		FullName:         fullName,
		SearchName:       normalizer.BuildSearchName(fullName),
		DateOfBirth:      normalizer.ParseDate(c.DateOfBirth),
		DateLastSeen:     normalizer.ParseDate(c.DateOfLastContact),
		LastSeenLocation: location,
		Latitude:         c.Latitude,
		Longitude:        c.Longitude,
		Country:          "US",
		Description:      c.Circumstances,
		Gender:           normalizer.NormalizeGender(c.Gender),
		Ethnicity:        c.RaceEthnicity,
		AgeMin:           c.CurrentMinAge,
		AgeMax:           c.CurrentMaxAge,
		HeightCm:         heightCm,
		WeightKg:         weightKg,
		PhotoURLs:        photos,
		Status:           c.CaseStatus,
		SourceURL:        fmt.Sprintf("https://www.namus.gov/MissingPersons/Case#/%s", c.Namus2Number),
		RawPayload:       payload,
	}, nil
}
