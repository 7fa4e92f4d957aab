package model

import (
	"time"
)

// SourceType 来源类型枚举
type SourceType string

const (
	SourceFBI      SourceType = "fbi"      // FBI Wanted API（失踪人口分类需启发式过滤）
	SourceNamUs    SourceType = "namus"    // 美国联邦失踪人口库 NamUs
	SourceInterpol SourceType = "interpol" // 国际刑警黄色通报
	SourceAmber    SourceType = "amber"    // AMBER 实时警报源
)

// SourceRawRecord 所有来源的原始记录通用结构
type SourceRawRecord struct {
	Source     SourceType  // 来源slug
	ExternalID string      // 来源原生ID（仅来源内唯一）
	Data       interface{} // 来源原生数据（FBIItem/NamUsCase/InterpolNotice/AmberAlert）
}

// NormalizedCase 统一的规范化案件模型（抹平各来源差异，仅存在于内存中）
// ExternalID 仅在 Source 内唯一，不是全局唯一
type NormalizedCase struct {
	ExternalID       string     // 来源原生ID
	Source           SourceType // 来源slug
	FirstName        string     // 名
	LastName         string     // 姓
	FullName         string     // 全名
	SearchName       string     // 规范化检索名（小写去音标去符号）
	DateOfBirth      *time.Time // 出生日期
	DateLastSeen     *time.Time // 最后目击时间
	LastSeenLocation string     // 最后目击地点（文本）
	Latitude         *float64   // 纬度
	Longitude        *float64   // 经度
	Country          string     // 国家
	Description      string     // 体貌/经过描述
	Gender           string     // 性别
	Ethnicity        string     // 族裔
	AgeMin           *int       // 年龄下限
	AgeMax           *int       // 年龄上限
	HeightCm         *float64   // 身高（厘米）
	WeightKg         *float64   // 体重（千克）
	PhotoURLs        []string   // 照片URL列表（首张为主照片）
	Status           string     // 状态
	SourceURL        string     // 来源详情页URL
	RawPayload       []byte     // 原始报文JSON（审计用）
}

// IngestionResult 单次摄取运行的聚合结果（对外接口返回）
type IngestionResult struct {
	Source          string   `json:"source"`
	RecordsFetched  int      `json:"records_fetched"`
	RecordsInserted int      `json:"records_inserted"`
	RecordsUpdated  int      `json:"records_updated"`
	RecordsSkipped  int      `json:"records_skipped"`
	RecordsFailed   int      `json:"records_failed"`
	DurationMs      int64    `json:"duration_ms"`
	Errors          []string `json:"errors,omitempty"` // 截断后的单条错误列表
}
