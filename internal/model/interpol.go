package model

// ========== Interpol Notices API 响应结构（GET /notices/v1/yellow） ==========
// 黄色通报即国际失踪人口通报，HAL 风格分页

// InterpolNoticesResponse GET /yellow 的根响应
type InterpolNoticesResponse struct {
	Total    int                     `json:"total"`
	Embedded InterpolNoticesEmbedded `json:"_embedded"`
	Links    InterpolLinks           `json:"_links"`
}

// InterpolNoticesEmbedded HAL _embedded 包装
type InterpolNoticesEmbedded struct {
	Notices []*InterpolNotice `json:"notices"`
}

// InterpolNotice 单条黄色通报
type InterpolNotice struct {
	EntityID      string        `json:"entity_id"`     // 通报ID（如"2023/12345"）
	Forename      string        `json:"forename"`      // 名
	Name          string        `json:"name"`          // 姓
	DateOfBirth   string        `json:"date_of_birth"` // 出生日期（"2015/05/01"）
	SexID         string        `json:"sex_id"`        // 性别（M/F/U）
	Nationalities []string      `json:"nationalities"` // 国籍（ISO两位码）
	Country       string        `json:"country"`       // 失踪地国家
	Place         string        `json:"place"`         // 失踪地点
	DateOfEvent   string        `json:"date_of_event"` // 失踪日期
	Links         InterpolLinks `json:"_links"`
}

// InterpolLinks HAL 链接集合
type InterpolLinks struct {
	Self      InterpolLink `json:"self"`
	Images    InterpolLink `json:"images"`
	Thumbnail InterpolLink `json:"thumbnail"`
	Next      InterpolLink `json:"next"`
}

// InterpolLink 单个 HAL 链接
type InterpolLink struct {
	Href string `json:"href"`
}
