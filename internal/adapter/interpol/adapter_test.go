package interpol

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ReuniaSync/internal/config"
	"ReuniaSync/internal/interfaces"
	"ReuniaSync/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestFetchFollowsHALNextLinks(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		resp := model.InterpolNoticesResponse{Total: 3}
		switch page {
		case "", "1":
			resp.Embedded.Notices = []*model.InterpolNotice{
				{EntityID: "2026/1001", Forename: "MARIA", Name: "SILVA"},
				{EntityID: "2026/1002", Forename: "JOHN", Name: "SMITH"},
			}
			resp.Links.Next.Href = fmt.Sprintf("%s/yellow?resultPerPage=2&page=2", srv.URL)
		case "2":
			resp.Embedded.Notices = []*model.InterpolNotice{
				{EntityID: "2026/1003", Forename: "ANNA", Name: "LEE"},
			}
			// 末页无next
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	a := NewInterpolAdapter(&config.SourceConfig{
		BaseURL: srv.URL, Timeout: 5, RetryCount: 1, PageDelayMs: 1, MaxPages: 10, PageSize: 2,
	}, quietLogger())

	records, err := a.Fetch(context.Background(), interfaces.FetchOptions{})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2026/1001", records[0].ExternalID)
	assert.Equal(t, "2026/1003", records[2].ExternalID)
}

func TestNormalize(t *testing.T) {
	n := &model.InterpolNotice{
		EntityID:      "2026/1001",
		Forename:      "MARIA",
		Name:          "SILVA",
		DateOfBirth:   "2015/05/01",
		SexID:         "F",
		Nationalities: []string{"BR"},
		Place:         "Sao Paulo",
		DateOfEvent:   "2026/08/01",
	}
	n.Links.Self.Href = "https://interpol/notice/2026-1001"
	n.Links.Thumbnail.Href = "https://interpol/thumb/2026-1001.jpg"

	a := NewInterpolAdapter(&config.SourceConfig{}, quietLogger())
	nc, err := a.Normalize(&model.SourceRawRecord{Source: model.SourceInterpol, ExternalID: n.EntityID, Data: n})
	require.NoError(t, err)

	// 全大写姓名转常规大小写
	assert.Equal(t, "Maria", nc.FirstName)
	assert.Equal(t, "Silva", nc.LastName)
	assert.Equal(t, "mariasilva", nc.SearchName)
	require.NotNil(t, nc.DateOfBirth)
	assert.Equal(t, 2015, nc.DateOfBirth.Year())
	assert.Equal(t, "female", nc.Gender)
	// 无country时用第一国籍兜底
	assert.Equal(t, "BR", nc.Country)
	require.Len(t, nc.PhotoURLs, 1)
	assert.Equal(t, "https://interpol/thumb/2026-1001.jpg", nc.PhotoURLs[0])
}

func TestNormalizeRejectsMissingEntityID(t *testing.T) {
	a := NewInterpolAdapter(&config.SourceConfig{}, quietLogger())
	_, err := a.Normalize(&model.SourceRawRecord{Data: &model.InterpolNotice{Forename: "MARIA"}})
	assert.Error(t, err)
}
