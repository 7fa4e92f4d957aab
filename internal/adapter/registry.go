package adapter

import (
	"fmt"

	"ReuniaSync/internal/adapter/amber"
	"ReuniaSync/internal/adapter/fbi"
	"ReuniaSync/internal/adapter/interpol"
	"ReuniaSync/internal/adapter/namus"
	"ReuniaSync/internal/config"
	"ReuniaSync/internal/interfaces"
	"ReuniaSync/internal/model"

	"github.com/sirupsen/logrus"
)

// factories 来源slug→工厂函数映射：新增来源仅需添加此处
var factories = map[model.SourceType]interfaces.Factory{
	model.SourceFBI:      fbi.NewFBIAdapter,
	model.SourceNamUs:    namus.NewNamUsAdapter,
	model.SourceInterpol: interpol.NewInterpolAdapter,
	model.SourceAmber:    amber.NewAmberAdapter,
}

// SourceRegistry 来源适配器实例注册表
type SourceRegistry struct {
	cfg      *config.Config
	logger   *logrus.Logger
	adapters map[model.SourceType]interfaces.SourceAdapter
}

func NewSourceRegistry(cfg *config.Config, logger *logrus.Logger) *SourceRegistry {
	r := &SourceRegistry{
		cfg:      cfg,
		logger:   logger,
		adapters: make(map[model.SourceType]interfaces.SourceAdapter),
	}
	r.initAdapters()
	return r
}

// initAdapters 遍历配置中的来源，匹配工厂函数创建实例
func (r *SourceRegistry) initAdapters() {
	for slug, srcCfg := range r.cfg.Sources {
		sourceType := model.SourceType(slug)
		factory, ok := factories[sourceType]
		if !ok {
			r.logger.WithField("source", slug).Error("未找到对应的工厂函数，跳过该来源")
			continue
		}
		cfgCopy := srcCfg
		adapterIns := factory(&cfgCopy, r.logger)
		if adapterIns == nil {
			r.logger.WithField("source", slug).Error("工厂函数返回nil适配器实例")
			continue
		}
		if adapterIns.Slug() != sourceType {
			r.logger.WithFields(logrus.Fields{
				"config_source":  sourceType,
				"adapter_source": adapterIns.Slug(),
			}).Error("适配器来源类型与配置不匹配")
			continue
		}
		r.adapters[sourceType] = adapterIns
		r.logger.WithField("source", slug).Info("适配器实例初始化成功")
	}
	r.logger.WithField("count", len(r.adapters)).Info("来源适配器初始化完成")
}

// Get 获取适配器实例
func (r *SourceRegistry) Get(source model.SourceType) (interfaces.SourceAdapter, error) {
	adapterIns, ok := r.adapters[source]
	if !ok {
		return nil, fmt.Errorf("来源%s未初始化适配器实例", source)
	}
	return adapterIns, nil
}

// List 已初始化的来源列表
func (r *SourceRegistry) List() []model.SourceType {
	var sources []model.SourceType
	for s := range r.adapters {
		sources = append(sources, s)
	}
	return sources
}
