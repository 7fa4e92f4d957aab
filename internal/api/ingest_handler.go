package api

import (
	"net/http"
	"strconv"

	"ReuniaSync/internal/interfaces"
	"ReuniaSync/internal/model"
	"ReuniaSync/internal/scheduler"
	"ReuniaSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type IngestHandler struct {
	ingestService *service.IngestService
	statusService *service.StatusService
	worker        *scheduler.Worker
	logger        *logrus.Logger
}

func NewIngestHandler(ingestService *service.IngestService, statusService *service.StatusService, worker *scheduler.Worker, logger *logrus.Logger) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
		statusService: statusService,
		worker:        worker,
		logger:        logger,
	}
}

// TriggerHandler 同步触发单来源摄取运行
// @Summary 触发来源摄取
// @Param source path string true "来源slug（fbi/namus/interpol/amber）"
// @Param max_pages query int false "最大翻页数（默认来源配置）"
// @Success 200 {object} model.IngestionResult
// @Failure 500 {object} map[string]string
// @Router /ingest/source/{source} [post]
func (h *IngestHandler) TriggerHandler(c *gin.Context) {
	source := model.SourceType(c.Param("source"))
	opts := parseFetchOptions(c)

	result, err := h.ingestService.Run(c.Request.Context(), source, opts)
	if err != nil {
		h.logger.WithError(err).WithField("source", source).Error("同步触发摄取失败")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  err.Error(),
			"result": result,
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// EnqueueHandler 异步触发：入队高优先级一次性任务
// @Router /ingest/source/{source}/enqueue [post]
func (h *IngestHandler) EnqueueHandler(c *gin.Context) {
	source := model.SourceType(c.Param("source"))
	opts := parseFetchOptions(c)

	jobID, err := h.worker.EnqueueManual(source, opts)
	if err != nil {
		h.logger.WithError(err).WithField("source", source).Error("任务入队失败")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
}

// StatusHandler 单来源状态查询（仪表盘用）
// @Router /ingest/source/{source}/status [get]
func (h *IngestHandler) StatusHandler(c *gin.Context) {
	source := model.SourceType(c.Param("source"))
	status, err := h.statusService.GetStatus(c.Request.Context(), source)
	if err != nil {
		h.logger.WithError(err).WithField("source", source).Error("查询来源状态失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

// ListSourcesHandler 全部来源列表
// @Router /ingest/sources [get]
func (h *IngestHandler) ListSourcesHandler(c *gin.Context) {
	sources, err := h.statusService.ListSources(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("查询来源列表失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": sources})
}

func parseFetchOptions(c *gin.Context) interfaces.FetchOptions {
	opts := interfaces.FetchOptions{}
	if v := c.Query("max_pages"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.MaxPages = n
		}
	}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Page = n
		}
	}
	return opts
}
