package model

import "time"

// Certificate 流程完成后签发的结业证书
// swagger:model Certificate
type Certificate struct {
	BaseModel
	UserID       uint      `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	EnrollmentID uint      `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"enrollmentId"`
	SerialNo     string    `gorm:"size:36;uniqueIndex;not null" json:"serialNo"`
	FilePath     string    `gorm:"size:1024" json:"filePath"`
	IssuedAt     time.Time `json:"issuedAt"`
}

func (Certificate) TableName() string {
	return "certificates"
}
