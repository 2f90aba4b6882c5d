package model

import "time"

// StageProgress 记录用户在某次报名中对某阶段的进度
// CompletedAt 一经写入不再回退
// swagger:model StageProgress
type StageProgress struct {
	BaseModel
	UserID       uint       `gorm:"index:idx_user_stage_enrollment,unique;type:bigint unsigned;not null" json:"userId"`
	StageID      uint       `gorm:"index:idx_user_stage_enrollment,unique;type:bigint unsigned;not null" json:"stageId"`
	EnrollmentID uint       `gorm:"index:idx_user_stage_enrollment,unique;type:bigint unsigned;not null" json:"enrollmentId"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

func (StageProgress) TableName() string {
	return "stage_progress"
}

// StageItemProgress 记录用户对单个条目的完成状态
// swagger:model StageItemProgress
type StageItemProgress struct {
	BaseModel
	UserID       uint       `gorm:"index:idx_user_item_enrollment,unique;type:bigint unsigned;not null" json:"userId"`
	StageItemID  uint       `gorm:"index:idx_user_item_enrollment,unique;type:bigint unsigned;not null" json:"stageItemId"`
	EnrollmentID uint       `gorm:"index:idx_user_item_enrollment,unique;type:bigint unsigned;not null" json:"enrollmentId"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	Score        *float64   `json:"score,omitempty"` // 仅测验类条目填充，百分比
}

func (StageItemProgress) TableName() string {
	return "stage_item_progress"
}
