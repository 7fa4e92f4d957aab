package model

// ========== NamUs API 响应结构（POST /api/CaseSets/NamUs/MissingPersons/Search） ==========

// NamUsSearchResponse 搜索接口的根响应
type NamUsSearchResponse struct {
	Count   int          `json:"count"`
	Results []*NamUsCase `json:"results"`
}

// NamUsCase 单条失踪人口记录
type NamUsCase struct {
	IDFormatted        string       `json:"idFormatted"`                  // 对外编号（如"MP12345"）
	Namus2Number       string       `json:"namus2Number"`                 // 系统内编号
	FirstName          string       `json:"firstName"`                    // 名
	MiddleName         string       `json:"middleName"`                   // 中间名
	LastName           string       `json:"lastName"`                     // 姓
	ComputedMissingAge *int         `json:"computedMissingMinAge"`        // 失踪时年龄
	CurrentMinAge      *int         `json:"currentMinAge"`                // 当前年龄下限
	CurrentMaxAge      *int         `json:"currentMaxAge"`                // 当前年龄上限
	DateOfBirth        string       `json:"dateOfBirth"`                  // 出生日期（"2015-05-01"）
	DateOfLastContact  string       `json:"dateOfLastContact"`            // 最后联系日期
	CityOfLastContact  string       `json:"cityOfLastContact"`            // 最后联系城市
	StateOfLastContact string       `json:"stateOfLastContact"`           // 最后联系州
	CountyDisplayName  string       `json:"countyDisplayName"`            // 县
	Latitude           *float64     `json:"latitude"`                     // 纬度
	Longitude          *float64     `json:"longitude"`                    // 经度
	Gender             string       `json:"gender"`                       // 性别
	RaceEthnicity      string       `json:"raceEthnicity"`                // 族裔
	HeightInches       *float64     `json:"heightFrom"`                   // 身高（英寸）
	WeightLbs          *float64     `json:"weightFrom"`                   // 体重（磅）
	Circumstances      string       `json:"circumstancesOfDisappearance"` // 失踪经过
	CaseStatus         string       `json:"status"`                       // 案件状态
	Images             []NamUsImage `json:"images"`                       // 照片列表
}

// NamUsImage 单张照片
type NamUsImage struct {
	Original  NamUsImageFile `json:"original"`
	IsDefault bool           `json:"isDefault"` // 是否默认照片
}

// NamUsImageFile 照片文件信息
type NamUsImageFile struct {
	Href string `json:"href"`
}
