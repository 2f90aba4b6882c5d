package service

import (
	"onboardflow_backend/internal/model"
	"onboardflow_backend/internal/repository"
	"onboardflow_backend/internal/util"
)

type FlowService struct {
	Repo *repository.FlowRepository
}

func NewFlowService(repo *repository.FlowRepository) *FlowService {
	return &FlowService{Repo: repo}
}

type FlowRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

func (s *FlowService) CreateFlow(req FlowRequest) (*model.Flow, error) {
	flow := &model.Flow{
		Title:       req.Title,
		Description: req.Description,
	}
	if err := s.Repo.CreateFlow(flow); err != nil {
		return nil, err
	}
	return flow, nil
}

func (s *FlowService) UpdateFlow(id uint, req FlowRequest) (*model.Flow, error) {
	flow, err := s.Repo.FindFlowByID(id)
	if err != nil {
		return nil, err
	}
	flow.Title = req.Title
	flow.Description = req.Description
	if err := s.Repo.UpdateFlow(flow); err != nil {
		return nil, err
	}
	return flow, nil
}

func (s *FlowService) PublishFlow(id uint) error {
	return s.Repo.PublishFlow(id)
}

func (s *FlowService) DeleteFlow(id uint) error {
	return s.Repo.DeleteFlow(id)
}

func (s *FlowService) GetFlow(id uint) (*model.Flow, error) {
	return s.Repo.FindFlowByID(id)
}

func (s *FlowService) ListFlows(page, limit int, publishedOnly bool) ([]model.Flow, int64, error) {
	return s.Repo.ListFlows(page, limit, publishedOnly)
}

type StageRequest struct {
	FlowID   uint   `json:"flowId" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Position int    `json:"position"`
}

func (s *FlowService) CreateStage(req StageRequest) (*model.Stage, error) {
	if _, err := s.Repo.FindFlowByID(req.FlowID); err != nil {
		return nil, err
	}
	stage := &model.Stage{
		FlowID:   req.FlowID,
		Title:    req.Title,
		Position: req.Position,
	}
	if err := s.Repo.CreateStage(stage); err != nil {
		return nil, err
	}
	return stage, nil
}

func (s *FlowService) UpdateStage(id uint, req StageRequest) (*model.Stage, error) {
	stage, err := s.Repo.FindStageByID(id)
	if err != nil {
		return nil, err
	}
	stage.Title = req.Title
	stage.Position = req.Position
	if err := s.Repo.UpdateStage(stage); err != nil {
		return nil, err
	}
	return stage, nil
}

func (s *FlowService) DeleteStage(id uint) error {
	return s.Repo.DeleteStage(id)
}

type StageItemRequest struct {
	StageID      uint                `json:"stageId" binding:"required"`
	Type         model.StageItemType `json:"type" binding:"required"`
	Title        string              `json:"title"`
	Position     int                 `json:"position"`
	ResourceURL  string              `json:"resourceUrl"`
	AssessmentID *uint               `json:"assessmentId"`
	Body         string              `json:"body"`
}

func (s *FlowService) CreateItem(req StageItemRequest) (*model.StageItem, error) {
	if _, err := s.Repo.FindStageByID(req.StageID); err != nil {
		return nil, err
	}

	item := &model.StageItem{
		StageID:      req.StageID,
		Type:         req.Type,
		Title:        req.Title,
		Position:     req.Position,
		ResourceURL:  req.ResourceURL,
		AssessmentID: req.AssessmentID,
		Body:         req.Body,
	}
	if !item.ValidatePayload() {
		return nil, util.ErrInvalidItemPayload
	}
	if err := s.Repo.CreateItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *FlowService) UpdateItem(id uint, req StageItemRequest) (*model.StageItem, error) {
	item, err := s.Repo.FindItemByID(id)
	if err != nil {
		return nil, err
	}

	item.Type = req.Type
	item.Title = req.Title
	item.Position = req.Position
	item.ResourceURL = req.ResourceURL
	item.AssessmentID = req.AssessmentID
	item.Body = req.Body
	if !item.ValidatePayload() {
		return nil, util.ErrInvalidItemPayload
	}
	if err := s.Repo.UpdateItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *FlowService) DeleteItem(id uint) error {
	return s.Repo.DeleteItem(id)
}
