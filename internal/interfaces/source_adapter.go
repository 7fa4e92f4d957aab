package interfaces

import (
	"context"
	"time"

	"ReuniaSync/internal/config"
	"ReuniaSync/internal/model"

	"github.com/sirupsen/logrus"
)

// FetchOptions 单次抓取参数
type FetchOptions struct {
	MaxPages int        // 最大翻页数（<=0 时用来源配置默认值）
	Page     int        // 起始页（<=0 时从第1页开始）
	Since    *time.Time // 仅抓取该时间之后更新的记录（来源支持时生效）
}

// SourceAdapter 所有来源适配器必须实现的核心接口
// Fetch 负责网络抓取（分页顺序进行，带限速与重试）；Normalize 为纯函数，不做任何I/O
type SourceAdapter interface {
	Slug() model.SourceType                                                          // 来源唯一slug
	Name() string                                                                    // 来源展示名
	PollInterval() time.Duration                                                     // 推荐轮询间隔
	Fetch(ctx context.Context, opts FetchOptions) ([]*model.SourceRawRecord, error)  // 抓取原始记录
	Normalize(raw *model.SourceRawRecord) (*model.NormalizedCase, error)             // 转换为规范化案件
}

// Factory 来源适配器工厂函数签名
// 入参：来源配置、日志实例
// 出参：实现SourceAdapter接口的适配器实例
type Factory func(cfg *config.SourceConfig, logger *logrus.Logger) SourceAdapter
