package model

// ========== AMBER 警报源响应结构（GET /alerts/feed） ==========

// AmberFeedResponse GET /feed 的根响应
type AmberFeedResponse struct {
	Count  int           `json:"count"`
	Alerts []*AmberAlert `json:"alerts"`
}

// AmberAlert 单条实时警报
type AmberAlert struct {
	AlertID       string   `json:"alertId"`       // 警报ID
	ChildName     string   `json:"childName"`     // 儿童姓名
	DateOfBirth   string   `json:"dateOfBirth"`   // 出生日期
	Gender        string   `json:"gender"`        // 性别
	Race          string   `json:"race"`          // 族裔
	AbductionDate string   `json:"abductionDate"` // 失踪/被拐时间（RFC3339）
	City          string   `json:"city"`          // 城市
	State         string   `json:"state"`         // 州
	Country       string   `json:"country"`       // 国家
	Latitude      *float64 `json:"latitude"`      // 纬度
	Longitude     *float64 `json:"longitude"`     // 经度
	Description   string   `json:"description"`   // 经过描述
	PhotoURL      string   `json:"photoUrl"`      // 照片URL
	Status        string   `json:"status"`        // 状态（active/canceled/resolved）
	DetailsURL    string   `json:"detailsUrl"`    // 详情页URL
}
