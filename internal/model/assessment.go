package model

import (
	"encoding/json"
	"time"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	MultiSelect    QuestionType = "multi_select"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
	Essay          QuestionType = "essay"
	FileUpload     QuestionType = "file_upload"
)

func (t QuestionType) Valid() bool {
	switch t {
	case MultipleChoice, MultiSelect, TrueFalse, ShortAnswer, Essay, FileUpload:
		return true
	}
	return false
}

// swagger:model Assessment
type Assessment struct {
	BaseModel
	Title        string     `gorm:"size:255;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	PassingScore int        `gorm:"default:0" json:"passingScore"` // 0-100 百分比阈值
	RetryLimit   int        `gorm:"default:0" json:"retryLimit"`   // 0 表示不限
	TimeLimit    int        `gorm:"default:0" json:"timeLimit"`    // Minutes
	Questions    []Question `gorm:"foreignKey:AssessmentID" json:"questions,omitempty"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// Question 测验题目，CorrectAnswer 的 JSON 形态随 QuestionType 变化：
// multiple_choice/short_answer 为字符串，true_false 为布尔，multi_select 为字符串数组
// swagger:model Question
type Question struct {
	BaseModel
	AssessmentID  uint            `gorm:"index;type:bigint unsigned;not null" json:"assessmentId"`
	QuestionType  QuestionType    `gorm:"size:50;not null" json:"questionType"`
	Content       string          `gorm:"type:text;not null" json:"content"`
	Options       json.RawMessage `gorm:"type:json" json:"options,omitempty"`
	CorrectAnswer json.RawMessage `gorm:"type:json" json:"-"`
	Points        float64         `gorm:"default:0" json:"points"`
	Position      int             `gorm:"default:0" json:"position"`
}

func (Question) TableName() string {
	return "questions"
}

// AssessmentAttempt 用户对测验的一次作答
// swagger:model AssessmentAttempt
type AssessmentAttempt struct {
	BaseModel
	UserID           uint            `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	AssessmentID     uint            `gorm:"index;type:bigint unsigned;not null" json:"assessmentId"`
	EnrollmentID     *uint           `gorm:"index;type:bigint unsigned" json:"enrollmentId,omitempty"`
	Answers          json.RawMessage `gorm:"type:json" json:"answers,omitempty"`
	TimeSpentSeconds int             `gorm:"default:0" json:"timeSpentSeconds"`
	Score            float64         `gorm:"default:0" json:"score"`
	MaxScore         float64         `gorm:"default:0" json:"maxScore"`
	IsPassed         bool            `gorm:"default:false" json:"isPassed"`
	StartedAt        time.Time       `json:"startedAt"`
	CompletedAt      *time.Time      `json:"completedAt,omitempty"`
}

func (AssessmentAttempt) TableName() string {
	return "assessment_attempts"
}
