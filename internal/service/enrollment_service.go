package service

import (
	"errors"
	"time"

	"onboardflow_backend/internal/model"
	"onboardflow_backend/internal/util"
)

// EnrollmentFlowStore 报名时需要的流程访问
type EnrollmentFlowStore interface {
	FindFlowByID(id uint) (*model.Flow, error)
}

// EnrollmentWriteStore 报名记录的读写
type EnrollmentWriteStore interface {
	Create(enrollment *model.Enrollment) error
	FindByID(id uint) (*model.Enrollment, error)
	FindByUserAndFlow(userID, flowID uint) (*model.Enrollment, error)
	ListByUser(userID uint) ([]model.Enrollment, error)
}

type EnrollmentService struct {
	Enrollments EnrollmentWriteStore
	Flows       EnrollmentFlowStore
}

func NewEnrollmentService(enrollments EnrollmentWriteStore, flows EnrollmentFlowStore) *EnrollmentService {
	return &EnrollmentService{Enrollments: enrollments, Flows: flows}
}

// Enroll 每个 (用户, 流程) 只允许报名一次，且流程必须已发布
func (s *EnrollmentService) Enroll(userID, flowID uint) (*model.Enrollment, error) {
	flow, err := s.Flows.FindFlowByID(flowID)
	if err != nil {
		return nil, err
	}
	if !flow.IsPublished {
		return nil, util.ErrFlowNotPublished
	}

	existing, err := s.Enrollments.FindByUserAndFlow(userID, flowID)
	if err != nil && !errors.Is(err, util.ErrEnrollmentNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, util.ErrAlreadyEnrolled
	}

	enrollment := &model.Enrollment{
		UserID:    userID,
		FlowID:    flowID,
		StartedAt: time.Now(),
	}
	if err := s.Enrollments.Create(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *EnrollmentService) GetEnrollment(id uint) (*model.Enrollment, error) {
	return s.Enrollments.FindByID(id)
}

func (s *EnrollmentService) ListByUser(userID uint) ([]model.Enrollment, error) {
	return s.Enrollments.ListByUser(userID)
}
