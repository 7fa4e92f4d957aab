package model

// ========== FBI Wanted API 响应结构（GET /wanted/v1/list） ==========
// 该源混合通缉犯与失踪人口，需按 person_classification / subjects 过滤

// FBIListResponse GET /list 的根响应
type FBIListResponse struct {
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Items []*FBIItem `json:"items"`
}

// FBIItem 单条 wanted 记录
type FBIItem struct {
	UID                  string     `json:"uid"`                   // 记录UID
	Title                string     `json:"title"`                 // 标题（通常为人名）
	Description          string     `json:"description"`           // 简述
	Details              string     `json:"details"`               // 详细经过（HTML）
	Caution              string     `json:"caution"`               // 警示信息
	Sex                  string     `json:"sex"`                   // 性别（Male/Female）
	Race                 string     `json:"race"`                  // 族裔
	DatesOfBirthUsed     []string   `json:"dates_of_birth_used"`   // 使用过的出生日期
	PlaceOfBirth         string     `json:"place_of_birth"`        // 出生地
	AgeMin               *int       `json:"age_min"`               // 年龄下限
	AgeMax               *int       `json:"age_max"`               // 年龄上限
	HeightMin            *int       `json:"height_min"`            // 身高下限（英寸）
	HeightMax            *int       `json:"height_max"`            // 身高上限（英寸）
	Weight               string     `json:"weight"`                // 体重描述（如"140 pounds"）
	PersonClassification string     `json:"person_classification"` // Main/Victim 等分类
	Subjects             []string   `json:"subjects"`              // 主题（如"Kidnappings and Missing Persons"）
	FieldOffices         []string   `json:"field_offices"`         // 负责办事处（用作地点兜底）
	Status               string     `json:"status"`                // 状态（na/captured/located）
	URL                  string     `json:"url"`                   // 详情页URL
	Publication          string     `json:"publication"`           // 发布时间
	Images               []FBIImage `json:"images"`                // 照片列表
}

// FBIImage 单张照片
type FBIImage struct {
	Original string `json:"original"`
	Thumb    string `json:"thumb"`
	Caption  string `json:"caption"`
}
