package amber

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

func NewAmberAdapter(cfg *config.SourceConfig, logger *logrus.Logger) interfaces.SourceAdapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

// Slug ========== 实现SourceAdapter接口 ==========
func (a *Adapter) Slug() model.SourceType {
	return model.SourceAmber
}

func (a *Adapter) Name() string {
	return "AMBER Alert Feed"
}

func (a *Adapter) PollInterval() time.Duration {
	return time.Duration(a.cfg.PollIntervalMinutes) * time.Minute
}

// Fetch 实时警报源数据量小，翻页深度浅；支持 since 增量
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
		q.Set("page", fmt.Sprintf("%d", page))
		q.Set("limit", fmt.Sprintf("%d", a.cfg.PageSize))
		if opts.Since != nil {
			q.Set("since", opts.Since.Format(time.RFC3339))
		}
		reqURL := fmt.Sprintf("%s/feed?%s", a.cfg.BaseURL, q.Encode())

		var resp model.AmberFeedResponse
		if err := httpclient.GetJSONWithRetry(ctx, a.httpClient, reqURL, a.cfg.AuthToken, a.cfg.RetryCount, a.logger, &resp); err != nil {
			if len(records) > 0 {
				a.logger.WithError(err).WithField("page", page).Warn("翻页失败，返回已抓取部分")
				break
			}
			return nil, fmt.Errorf("抓取第%d页失败: %w", page, err)
		}
		if len(resp.Alerts) == 0 {
			break
		}
		for _, al := range resp.Alerts {
			records = append(records, &model.SourceRawRecord{
				Source:     model.SourceAmber,
				ExternalID: al.AlertID,
				Data:       al,
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
	al, ok := raw.Data.(*model.AmberAlert)
	if !ok {
		return nil, fmt.Errorf("原始记录类型错误: %T", raw.Data)
	}
	if al.AlertID == "" {
		return nil, fmt.Errorf("记录缺少alertId")
	}

	first, last := normalizer.SplitName(al.ChildName)

	location := al.City
	if al.State != "" {
		location = normalizer.JoinName(location+",", al.State)
	}

	var photos []string
	if al.PhotoURL != "" {
		photos = append(photos, al.PhotoURL)
	}

	country := al.Country
	if country == "" {
		country = "US"
	}

	payload, _ := json.Marshal(al)
	return &model.NormalizedCase{
		ExternalID:       al.AlertID,
		Source:           model.SourceAmber,
		FirstName:        first,
		LastName:         last,
		FullName:         al.ChildName,
		SearchName:       normalizer.BuildSearchName(al.ChildName),
		DateOfBirth:      normalizer.ParseDate(al.DateOfBirth),
		DateLastSeen:     normalizer.ParseDate(al.AbductionDate),
		LastSeenLocation: location,
		Latitude:         al.Latitude,
		Longitude:        al.Longitude,
		Country:          country,
		Description:      al.Description,
		Gender:           normalizer.NormalizeGender(al.Gender),
		Ethnicity:        al.Race,
		PhotoURLs:        photos,
		Status:           al.Status,
		SourceURL:        al.DetailsURL,
		RawPayload:       payload,
	}, nil
}
