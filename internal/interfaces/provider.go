package interfaces

import (
	"ReuniaSync/internal/model"
)

// AdapterProvider 适配器提供方（生产实现为adapter.SourceRegistry，测试注入假实现）
type AdapterProvider interface {
	Get(source model.SourceType) (SourceAdapter, error)
	List() []model.SourceType
}
