package model

import "time"

type StageItemType string

const (
	ItemContent    StageItemType = "content"
	ItemAssessment StageItemType = "assessment"
	ItemInfo       StageItemType = "info"
)

// Flow 入职/培训流程，由若干有序阶段组成
// swagger:model Flow
type Flow struct {
	BaseModel
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	IsPublished bool       `gorm:"default:false" json:"isPublished"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Stages      []Stage    `gorm:"foreignKey:FlowID" json:"stages,omitempty"`
}

func (Flow) TableName() string {
	return "flows"
}

// Stage 流程中的一个有序阶段
// swagger:model Stage
type Stage struct {
	BaseModel
	FlowID   uint        `gorm:"index;type:bigint unsigned;not null" json:"flowId"`
	Title    string      `gorm:"size:255;not null" json:"title"`
	Position int         `gorm:"default:0;index:idx_flow_position" json:"position"`
	Items    []StageItem `gorm:"foreignKey:StageID" json:"items,omitempty"`
}

func (Stage) TableName() string {
	return "stages"
}

// StageItem 阶段内的学习条目：内容、测验或说明块
// swagger:model StageItem
type StageItem struct {
	BaseModel
	StageID      uint          `gorm:"index;type:bigint unsigned;not null" json:"stageId"`
	Type         StageItemType `gorm:"size:20;not null" json:"type"`
	Title        string        `gorm:"size:255" json:"title"`
	Position     int           `gorm:"default:0" json:"position"`
	ResourceURL  string        `gorm:"size:1024" json:"resourceUrl,omitempty"`          // content 类型
	AssessmentID *uint         `gorm:"index;type:bigint unsigned" json:"assessmentId,omitempty"` // assessment 类型
	Body         string        `gorm:"type:text" json:"body,omitempty"`                 // info 类型
}

func (StageItem) TableName() string {
	return "stage_items"
}

// ValidatePayload 检查条目载荷与类型是否一致：三者有且仅有一个被填充
func (i *StageItem) ValidatePayload() bool {
	switch i.Type {
	case ItemContent:
		return i.ResourceURL != "" && i.AssessmentID == nil && i.Body == ""
	case ItemAssessment:
		return i.AssessmentID != nil && i.ResourceURL == "" && i.Body == ""
	case ItemInfo:
		return i.Body != "" && i.ResourceURL == "" && i.AssessmentID == nil
	default:
		return false
	}
}
