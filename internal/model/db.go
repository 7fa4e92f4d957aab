package model

import (
	"time"

	"gorm.io/datatypes"
)

// CaseStatus 案件状态枚举
const (
	CaseStatusActive   = "active"   // 进行中
	CaseStatusResolved = "resolved" // 已找到
	CaseStatusArchived = "archived" // 已归档（不再参与模糊匹配）
)

// RunStatus 摄取运行状态枚举（running为非终态，success/error为终态）
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusError   = "error"
)

// Case 逻辑失踪案件主表（同一人多来源去重后一条）
type Case struct {
	ID               uint64     `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	CaseNumber       string     `gorm:"column:case_number;type:varchar(64);uniqueIndex;not null;comment:对外案件编号"`
	Status           string     `gorm:"column:status;type:varchar(16);default:active;comment:状态：active/resolved/archived"`
	Urgency          string     `gorm:"column:urgency;type:varchar(16);default:normal;comment:紧急程度：normal/high"`
	QualityScore     int        `gorm:"column:quality_score;type:int;default:0;comment:数据质量评分0-100"`
	DateLastSeen     *time.Time `gorm:"column:date_last_seen;type:timestamp;comment:最后目击时间"`
	LastSeenLocation string     `gorm:"column:last_seen_location;type:varchar(256);comment:最后目击地点（文本）"`
	LastSeenLat      *float64   `gorm:"column:last_seen_lat;type:numeric(10,6);comment:最后目击纬度"`
	LastSeenLon      *float64   `gorm:"column:last_seen_lon;type:numeric(10,6);comment:最后目击经度"`
	Country          string     `gorm:"column:country;type:varchar(64);comment:国家"`
	OriginSource     string     `gorm:"column:origin_source;type:varchar(32);not null;comment:首次录入来源slug"`
	OriginExternalID string     `gorm:"column:origin_external_id;type:varchar(128);not null;comment:首次录入来源的外部ID"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime;comment:创建时间"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime;comment:更新时间"`
}

// Person 案件对应的失踪人员（role固定为missing-child）
type Person struct {
	ID          uint64     `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	CaseID      uint64     `gorm:"column:case_id;type:bigint;uniqueIndex;not null;comment:关联案件ID"`
	Role        string     `gorm:"column:role;type:varchar(32);default:missing-child;index;comment:角色"`
	FirstName   string     `gorm:"column:first_name;type:varchar(128);comment:名"`
	LastName    string     `gorm:"column:last_name;type:varchar(128);comment:姓"`
	FullName    string     `gorm:"column:full_name;type:varchar(256);not null;comment:全名"`
	SearchName  string     `gorm:"column:search_name;type:varchar(256);index;not null;comment:规范化检索名（小写去音标去符号）"`
	DateOfBirth *time.Time `gorm:"column:date_of_birth;type:date;index;comment:出生日期"`
	Gender      string     `gorm:"column:gender;type:varchar(16);comment:性别"`
	Ethnicity   string     `gorm:"column:ethnicity;type:varchar(64);comment:族裔"`
	AgeMin      *int       `gorm:"column:age_min;type:int;comment:年龄下限"`
	AgeMax      *int       `gorm:"column:age_max;type:int;comment:年龄上限"`
	HeightCm    *float64   `gorm:"column:height_cm;type:numeric(6,2);comment:身高（厘米）"`
	WeightKg    *float64   `gorm:"column:weight_kg;type:numeric(6,2);comment:体重（千克）"`
	Description string     `gorm:"column:description;type:text;comment:体貌/经过描述"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime;comment:创建时间"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime;comment:更新时间"`
}

// Image 人员照片（首张为主照片）
type Image struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	PersonID  uint64    `gorm:"column:person_id;type:bigint;index;not null;comment:关联人员ID"`
	URL       string    `gorm:"column:url;type:varchar(512);not null;comment:照片URL"`
	IsPrimary bool      `gorm:"column:is_primary;type:boolean;default:false;comment:是否主照片"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;comment:创建时间"`
}

// CaseSourceRecord 案件来源溯源表：每个(案件,来源,外部ID)一行
// 同一案件随时间累积多来源的溯源行；外部ID仅在来源内唯一
type CaseSourceRecord struct {
	ID            uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	CaseID        uint64         `gorm:"column:case_id;type:bigint;index;not null;comment:关联案件ID"`
	Source        string         `gorm:"column:source;type:varchar(32);not null;uniqueIndex:uq_source_external;comment:来源slug"`
	ExternalID    string         `gorm:"column:external_id;type:varchar(128);not null;uniqueIndex:uq_source_external;comment:来源内外部ID"`
	SourceURL     string         `gorm:"column:source_url;type:varchar(512);comment:来源详情页URL"`
	RawPayload    datatypes.JSON `gorm:"column:raw_payload;type:jsonb;comment:原始报文（审计用）"`
	LastFetchedAt time.Time      `gorm:"column:last_fetched_at;type:timestamp;not null;comment:该来源最近一次抓取时间"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime;comment:创建时间"`
}

// IngestionLog 摄取运行日志：每次编排运行一行，进入终态后不再变更
type IngestionLog struct {
	ID              uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	Source          string         `gorm:"column:source;type:varchar(32);index;not null;comment:来源slug"`
	Status          string         `gorm:"column:status;type:varchar(16);not null;comment:状态：running/success/error"`
	StartedAt       time.Time      `gorm:"column:started_at;type:timestamp;not null;comment:开始时间"`
	FinishedAt      *time.Time     `gorm:"column:finished_at;type:timestamp;comment:结束时间"`
	RecordsFetched  int            `gorm:"column:records_fetched;type:int;default:0;comment:抓取条数"`
	RecordsInserted int            `gorm:"column:records_inserted;type:int;default:0;comment:新建条数"`
	RecordsUpdated  int            `gorm:"column:records_updated;type:int;default:0;comment:更新条数"`
	RecordsSkipped  int            `gorm:"column:records_skipped;type:int;default:0;comment:跳过条数"`
	RecordsFailed   int            `gorm:"column:records_failed;type:int;default:0;comment:失败条数"`
	Errors          datatypes.JSON `gorm:"column:errors;type:jsonb;comment:单条错误信息列表（截断）"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime;comment:创建时间"`
}

// DataSource 数据来源表：每个适配器一行，计数器用原子自增更新
type DataSource struct {
	ID                  uint64     `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	Slug                string     `gorm:"column:slug;type:varchar(32);uniqueIndex;not null;comment:来源唯一slug"`
	Name                string     `gorm:"column:name;type:varchar(64);not null;comment:来源名称"`
	IsActive            bool       `gorm:"column:is_active;type:boolean;default:true;comment:是否启用"`
	PollIntervalMinutes int        `gorm:"column:poll_interval_minutes;type:int;default:60;comment:轮询间隔（分钟）"`
	TotalFetched        int64      `gorm:"column:total_fetched;type:bigint;default:0;comment:累计抓取"`
	TotalInserted       int64      `gorm:"column:total_inserted;type:bigint;default:0;comment:累计新建"`
	TotalUpdated        int64      `gorm:"column:total_updated;type:bigint;default:0;comment:累计更新"`
	TotalFailed         int64      `gorm:"column:total_failed;type:bigint;default:0;comment:累计失败"`
	LastSuccessAt       *time.Time `gorm:"column:last_success_at;type:timestamp;comment:最近成功时间"`
	LastErrorAt         *time.Time `gorm:"column:last_error_at;type:timestamp;comment:最近失败时间"`
	LastError           string     `gorm:"column:last_error;type:text;comment:最近失败原因"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime;comment:创建时间"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime;comment:更新时间"`
}

func (Case) TableName() string             { return "cases" }
func (Person) TableName() string           { return "persons" }
func (Image) TableName() string            { return "images" }
func (CaseSourceRecord) TableName() string { return "case_source_records" }
func (IngestionLog) TableName() string     { return "ingestion_logs" }
func (DataSource) TableName() string       { return "data_sources" }
