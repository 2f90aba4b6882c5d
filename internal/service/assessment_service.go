package service

import (
	"encoding/json"

	"onboardflow_backend/internal/model"
	"onboardflow_backend/internal/repository"
	"onboardflow_backend/internal/util"
)

// AssessmentService 测验与题目的管理端维护
type AssessmentService struct {
	Repo *repository.AssessmentRepository
}

func NewAssessmentService(repo *repository.AssessmentRepository) *AssessmentService {
	return &AssessmentService{Repo: repo}
}

type AssessmentRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	PassingScore int    `json:"passingScore"`
	RetryLimit   int    `json:"retryLimit"`
	TimeLimit    int    `json:"timeLimit"`
}

func (s *AssessmentService) CreateAssessment(req AssessmentRequest) (*model.Assessment, error) {
	if req.PassingScore < 0 || req.PassingScore > 100 {
		return nil, util.ErrInvalidPassingScore
	}

	a := &model.Assessment{
		Title:        req.Title,
		Description:  req.Description,
		PassingScore: req.PassingScore,
		RetryLimit:   req.RetryLimit,
		TimeLimit:    req.TimeLimit,
	}
	if err := s.Repo.CreateAssessment(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) UpdateAssessment(id uint, req AssessmentRequest) (*model.Assessment, error) {
	if req.PassingScore < 0 || req.PassingScore > 100 {
		return nil, util.ErrInvalidPassingScore
	}

	a, err := s.Repo.FindAssessmentByID(id)
	if err != nil {
		return nil, err
	}
	a.Title = req.Title
	a.Description = req.Description
	a.PassingScore = req.PassingScore
	a.RetryLimit = req.RetryLimit
	a.TimeLimit = req.TimeLimit
	if err := s.Repo.UpdateAssessment(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) GetAssessment(id uint) (*model.Assessment, error) {
	return s.Repo.FindAssessmentByID(id)
}

func (s *AssessmentService) ListAssessments(page, limit int) ([]model.Assessment, int64, error) {
	return s.Repo.ListAssessments(page, limit)
}

func (s *AssessmentService) DeleteAssessment(id uint) error {
	return s.Repo.DeleteAssessment(id)
}

type QuestionRequest struct {
	AssessmentID  uint               `json:"assessmentId" binding:"required"`
	QuestionType  model.QuestionType `json:"questionType" binding:"required"`
	Content       string             `json:"content" binding:"required"`
	Options       json.RawMessage    `json:"options"`
	CorrectAnswer json.RawMessage    `json:"correctAnswer"`
	Points        float64            `json:"points"`
	Position      int                `json:"position"`
}

// validateAnswerShape 建题时校验答案 JSON 形态与题型一致，
// 主观题（essay/file_upload）不携带标准答案
func validateAnswerShape(qType model.QuestionType, answer json.RawMessage) error {
	switch qType {
	case model.MultipleChoice, model.ShortAnswer:
		var s string
		if err := json.Unmarshal(answer, &s); err != nil {
			return util.ErrInvalidAnswerShape
		}
	case model.TrueFalse:
		var b bool
		if err := json.Unmarshal(answer, &b); err != nil {
			return util.ErrInvalidAnswerShape
		}
	case model.MultiSelect:
		var set []string
		if err := json.Unmarshal(answer, &set); err != nil {
			return util.ErrInvalidAnswerShape
		}
	case model.Essay, model.FileUpload:
		return nil
	default:
		return util.ErrInvalidQuestionType
	}
	return nil
}

func (s *AssessmentService) CreateQuestion(req QuestionRequest) (*model.Question, error) {
	if !req.QuestionType.Valid() {
		return nil, util.ErrInvalidQuestionType
	}
	if req.CorrectAnswer != nil {
		if err := validateAnswerShape(req.QuestionType, req.CorrectAnswer); err != nil {
			return nil, err
		}
	}
	if _, err := s.Repo.FindAssessmentByID(req.AssessmentID); err != nil {
		return nil, err
	}

	q := &model.Question{
		AssessmentID:  req.AssessmentID,
		QuestionType:  req.QuestionType,
		Content:       req.Content,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Points:        req.Points,
		Position:      req.Position,
	}
	if err := s.Repo.CreateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *AssessmentService) UpdateQuestion(id uint, req QuestionRequest) (*model.Question, error) {
	if !req.QuestionType.Valid() {
		return nil, util.ErrInvalidQuestionType
	}
	if req.CorrectAnswer != nil {
		if err := validateAnswerShape(req.QuestionType, req.CorrectAnswer); err != nil {
			return nil, err
		}
	}

	q, err := s.Repo.FindQuestionByID(id)
	if err != nil {
		return nil, err
	}
	q.QuestionType = req.QuestionType
	q.Content = req.Content
	q.Options = req.Options
	q.CorrectAnswer = req.CorrectAnswer
	q.Points = req.Points
	q.Position = req.Position
	if err := s.Repo.UpdateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *AssessmentService) DeleteQuestion(id uint) error {
	return s.Repo.DeleteQuestion(id)
}

// ParticipantQuestion 学员侧题目视图，不含标准答案
type ParticipantQuestion struct {
	ID           uint               `json:"id"`
	QuestionType model.QuestionType `json:"questionType"`
	Content      string             `json:"content"`
	Options      json.RawMessage    `json:"options,omitempty"`
	Points       float64            `json:"points"`
	Position     int                `json:"position"`
}

func (s *AssessmentService) ListParticipantQuestions(assessmentID uint) ([]ParticipantQuestion, error) {
	qs, err := s.Repo.ListQuestions(assessmentID)
	if err != nil {
		return nil, err
	}

	res := make([]ParticipantQuestion, len(qs))
	for i, q := range qs {
		res[i] = ParticipantQuestion{
			ID:           q.ID,
			QuestionType: q.QuestionType,
			Content:      q.Content,
			Options:      q.Options,
			Points:       q.Points,
			Position:     q.Position,
		}
	}
	return res, nil
}
