package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ReuniaSync/internal/audit"
	"ReuniaSync/internal/interfaces"
	"ReuniaSync/internal/model"
	"ReuniaSync/internal/repository"
	"ReuniaSync/internal/scheduler"
	"ReuniaSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubAdapter struct {
	slug     model.SourceType
	records  []*model.SourceRawRecord
	lastOpts interfaces.FetchOptions
}

func (s *stubAdapter) Slug() model.SourceType      { return s.slug }
func (s *stubAdapter) Name() string                { return strings.ToUpper(string(s.slug)) }
func (s *stubAdapter) PollInterval() time.Duration { return time.Hour }

func (s *stubAdapter) Fetch(ctx context.Context, opts interfaces.FetchOptions) ([]*model.SourceRawRecord, error) {
	s.lastOpts = opts
	return s.records, nil
}

func (s *stubAdapter) Normalize(raw *model.SourceRawRecord) (*model.NormalizedCase, error) {
	return raw.Data.(*model.NormalizedCase), nil
}

type stubProvider struct {
	adapters map[model.SourceType]interfaces.SourceAdapter
}

func (s *stubProvider) Get(source model.SourceType) (interfaces.SourceAdapter, error) {
	a, ok := s.adapters[source]
	if !ok {
		return nil, fmt.Errorf("来源未注册: %s", source)
	}
	return a, nil
}

func (s *stubProvider) List() []model.SourceType {
	out := make([]model.SourceType, 0, len(s.adapters))
	for k := range s.adapters {
		out = append(out, k)
	}
	return out
}

type handlerFixture struct {
	router  *gin.Engine
	adapter *stubAdapter
	worker  *scheduler.Worker
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.DataSource{},
		&model.Case{},
		&model.Person{},
		&model.Image{},
		&model.CaseSourceRecord{},
		&model.IngestionLog{},
	))

	log := logrus.New()
	log.SetOutput(io.Discard)

	dob := time.Date(2015, 5, 1, 0, 0, 0, 0, time.UTC)
	a := &stubAdapter{
		slug: model.SourceFBI,
		records: []*model.SourceRawRecord{{
			Source:     model.SourceFBI,
			ExternalID: "x-1",
			Data: &model.NormalizedCase{
				Source:      model.SourceFBI,
				ExternalID:  "x-1",
				FullName:    "Maria Silva",
				SearchName:  "mariasilva",
				DateOfBirth: &dob,
			},
		}},
	}
	provider := &stubProvider{adapters: map[model.SourceType]interfaces.SourceAdapter{model.SourceFBI: a}}

	caseRepo := repository.NewCaseRepository(db)
	ingRepo := repository.NewIngestionRepository(db)
	sink := audit.NewSink(log, 64)
	t.Cleanup(sink.Close)

	ingestService := service.NewIngestService(
		provider, caseRepo, ingRepo,
		service.NewDeduplicator(caseRepo, log),
		service.NewQualityScorer(nil),
		sink, log,
	)
	statusService := service.NewStatusService(provider, ingRepo, log)

	w := scheduler.NewWorker(ingestService, 4, 3, time.Millisecond, log)
	w.RegisterSource(model.SourceFBI)

	h := NewIngestHandler(ingestService, statusService, w, log)
	router := gin.New()
	router.POST("/ingest/source/:source", h.TriggerHandler)
	router.POST("/ingest/source/:source/enqueue", h.EnqueueHandler)
	router.GET("/ingest/source/:source/status", h.StatusHandler)
	router.GET("/ingest/sources", h.ListSourcesHandler)
	return &handlerFixture{router: router, adapter: a, worker: w}
}

func doRequest(fx *handlerFixture, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	fx.router.ServeHTTP(rec, req)
	return rec
}

func TestTriggerHandler(t *testing.T) {
	fx := newHandlerFixture(t)

	rec := doRequest(fx, http.MethodPost, "/ingest/source/fbi?max_pages=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var res model.IngestionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "fbi", res.Source)
	assert.Equal(t, 1, res.RecordsFetched)
	assert.Equal(t, 1, res.RecordsInserted)
	assert.Equal(t, 2, fx.adapter.lastOpts.MaxPages) // query参数透传到抓取
}

func TestTriggerHandlerUnknownSource(t *testing.T) {
	fx := newHandlerFixture(t)

	rec := doRequest(fx, http.MethodPost, "/ingest/source/nope")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestEnqueueHandler(t *testing.T) {
	fx := newHandlerFixture(t)

	rec := doRequest(fx, http.MethodPost, "/ingest/source/fbi/enqueue")
	require.Equal(t, http.StatusAccepted, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["job_id"])
}

func TestEnqueueHandlerUnknownSource(t *testing.T) {
	fx := newHandlerFixture(t)

	rec := doRequest(fx, http.MethodPost, "/ingest/source/nope/enqueue")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatusAndListHandlers(t *testing.T) {
	fx := newHandlerFixture(t)

	// 先跑一次，让状态有数据
	require.Equal(t, http.StatusOK, doRequest(fx, http.MethodPost, "/ingest/source/fbi").Code)

	rec := doRequest(fx, http.MethodGet, "/ingest/source/fbi/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var status service.SourceStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "fbi", status.Source)
	assert.Equal(t, "healthy", status.AdapterHealth)
	require.NotNil(t, status.LastRun)

	rec = doRequest(fx, http.MethodGet, "/ingest/sources")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Sources []model.DataSource `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Sources, 1)
	assert.Equal(t, "fbi", list.Sources[0].Slug)
}
