package service

import (
	"encoding/json"
	"time"

	"onboardflow_backend/internal/model"
	"onboardflow_backend/pkg/monitoring"
)

// AttemptStore 测验与作答记录访问
type AttemptStore interface {
	FindAssessmentByID(id uint) (*model.Assessment, error)
	ListQuestions(assessmentID uint) ([]model.Question, error)
	CreateAttempt(attempt *model.AssessmentAttempt) error
	SaveAttempt(attempt *model.AssessmentAttempt) error
	FindAttemptByID(id uint) (*model.AssessmentAttempt, error)
	CountAttempts(userID, assessmentID uint) (int64, error)
}

// AttemptService 作答生命周期：创建、提交、判分、落库。
// retry_limit 不在此层强制，由展示层结合 AttemptCount 自行限制。
type AttemptService struct {
	Store AttemptStore
}

func NewAttemptService(store AttemptStore) *AttemptService {
	return &AttemptService{Store: store}
}

// StartAttempt 创建一条空白作答记录。同一测验允许多个未完成的并发作答。
func (s *AttemptService) StartAttempt(userID, assessmentID uint, enrollmentID *uint) (*model.AssessmentAttempt, error) {
	if _, err := s.Store.FindAssessmentByID(assessmentID); err != nil {
		return nil, err
	}

	attempt := &model.AssessmentAttempt{
		UserID:       userID,
		AssessmentID: assessmentID,
		EnrollmentID: enrollmentID,
		StartedAt:    time.Now(),
	}
	if err := s.Store.CreateAttempt(attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// SubmitAttempt 判分并写入终态。重复提交会重新判分并覆盖旧结果，
// 调用方不应暴露对已完成作答的再次提交入口。
func (s *AttemptService) SubmitAttempt(attemptID uint, answers map[uint]json.RawMessage, timeSpentSeconds int) (*model.AssessmentAttempt, error) {
	attempt, err := s.Store.FindAttemptByID(attemptID)
	if err != nil {
		return nil, err
	}

	assessment, err := s.Store.FindAssessmentByID(attempt.AssessmentID)
	if err != nil {
		return nil, err
	}

	questions, err := s.Store.ListQuestions(assessment.ID)
	if err != nil {
		return nil, err
	}

	result, err := Grade(questions, answers, assessment.PassingScore)
	if err != nil {
		return nil, err
	}

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	attempt.Answers = answersJSON
	attempt.TimeSpentSeconds = timeSpentSeconds
	attempt.Score = result.Score
	attempt.MaxScore = result.MaxScore
	attempt.IsPassed = result.IsPassed
	attempt.CompletedAt = &now

	if err := s.Store.SaveAttempt(attempt); err != nil {
		return nil, err
	}

	outcome := "failed"
	if result.IsPassed {
		outcome = "passed"
	}
	monitoring.AttemptCounter.WithLabelValues(outcome).Inc()

	return attempt, nil
}

func (s *AttemptService) GetAttempt(id uint) (*model.AssessmentAttempt, error) {
	return s.Store.FindAttemptByID(id)
}

// AttemptCount 已有作答次数，供展示层做 retry_limit 判断
func (s *AttemptService) AttemptCount(userID, assessmentID uint) (int64, error) {
	return s.Store.CountAttempts(userID, assessmentID)
}

// PercentScore 作答得分换算为百分比，用于写入条目进度
func PercentScore(attempt *model.AssessmentAttempt) float64 {
	if attempt.MaxScore <= 0 {
		return 0
	}
	return attempt.Score / attempt.MaxScore * 100
}
