package model

import "time"

// Enrollment 用户与流程的绑定关系，每个 (用户, 流程) 仅创建一次
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID      uint       `gorm:"index:idx_user_flow,unique;type:bigint unsigned;not null" json:"userId"`
	FlowID      uint       `gorm:"index:idx_user_flow,unique;type:bigint unsigned;not null" json:"flowId"`
	Flow        *Flow      `gorm:"foreignKey:FlowID" json:"flow,omitempty"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
