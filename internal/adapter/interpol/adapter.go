package interpol

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
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Adapter struct {
	cfg        *config.SourceConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewInterpolAdapter(cfg *config.SourceConfig, logger *logrus.Logger) interfaces.SourceAdapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

// Slug ========== 实现SourceAdapter接口 ==========
func (a *Adapter) Slug() model.SourceType {
	return model.SourceInterpol
}

func (a *Adapter) Name() string {
	return "Interpol Yellow Notices"
}

func (a *Adapter) PollInterval() time.Duration {
	return time.Duration(a.cfg.PollIntervalMinutes) * time.Minute
}

// Fetch HAL风格分页：优先跟随 _links.next，页间延迟匹配来源限速
func (a *Adapter) Fetch(ctx context.Context, opts interfaces.FetchOptions) ([]*model.SourceRawRecord, error) {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = a.cfg.MaxPages
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}

	reqURL := fmt.Sprintf("%s/yellow?resultPerPage=%d&page=%d", a.cfg.BaseURL, a.cfg.PageSize, page)
	var records []*model.SourceRawRecord
	for i := 0; i < maxPages; i++ {
		var resp model.InterpolNoticesResponse
		if err := httpclient.GetJSONWithRetry(ctx, a.httpClient, reqURL, a.cfg.AuthToken, a.cfg.RetryCount, a.logger, &resp); err != nil {
			if len(records) > 0 {
				a.logger.WithError(err).WithField("url", reqURL).Warn("翻页失败，返回已抓取部分")
				break
			}
			return nil, fmt.Errorf("抓取通报列表失败: %w", err)
		}
		if len(resp.Embedded.Notices) == 0 {
			break
		}
		for _, n := range resp.Embedded.Notices {
			records = append(records, &model.SourceRawRecord{
				Source:     model.SourceInterpol,
				ExternalID: n.EntityID,
				Data:       n,
			})
		}
		if resp.Links.Next.Href == "" || len(records) >= resp.Total {
			break
		}
		reqURL = resp.Links.Next.Href
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
	n, ok := raw.Data.(*model.InterpolNotice)
	if !ok {
		return nil, fmt.Errorf("原始记录类型错误: %T", raw.Data)
	}
	if n.EntityID == "" {
		return nil, fmt.Errorf("记录缺少entity_id")
	}

	// Interpol 姓名为全大写，入库前转常规大小写
	titleCaser := cases.Title(language.Und)
	first := titleCaser.String(strings.ToLower(strings.TrimSpace(n.Forename)))
	last := titleCaser.String(strings.ToLower(strings.TrimSpace(n.Name)))
	fullName := normalizer.JoinName(first, last)

	country := n.Country
	if country == "" && len(n.Nationalities) > 0 {
		country = n.Nationalities[0]
	}

	var photos []string
	if n.Links.Thumbnail.Href != "" {
		photos = append(photos, n.Links.Thumbnail.Href)
	}

	payload, _ := json.Marshal(n)
	return &model.NormalizedCase{
		ExternalID:       n.EntityID,
		Source:           model.SourceInterpol,
		FirstName:        first,
		LastName:         last,
		FullName:         fullName,
		SearchName:       normalizer.BuildSearchName(fullName),
		DateOfBirth:      normalizer.ParseDate(n.DateOfBirth),
		DateLastSeen:     normalizer.ParseDate(n.DateOfEvent),
		LastSeenLocation: n.Place,
		Country:          country,
		Gender:           normalizer.NormalizeGender(n.SexID),
		Status:           model.CaseStatusActive,
		SourceURL:        n.Links.Self.Href,
		RawPayload:       payload,
	}, nil
}
