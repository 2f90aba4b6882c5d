package service

import (
	"time"

	"onboardflow_backend/internal/model"
	"onboardflow_backend/pkg/logger"
	"onboardflow_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// ProgressStore 进度记录的读写原语
type ProgressStore interface {
	UpsertStageStarted(userID, stageID, enrollmentID uint, now time.Time) (*model.StageProgress, error)
	MarkStageCompleted(userID, stageID, enrollmentID uint, now time.Time) (*model.StageProgress, error)
	FindStageProgress(userID, stageID, enrollmentID uint) (*model.StageProgress, error)
	ListStageProgress(userID, enrollmentID uint) ([]model.StageProgress, error)
	UpsertItemCompleted(userID, itemID, enrollmentID uint, now time.Time, score *float64) (*model.StageItemProgress, error)
	ListItemProgress(userID, enrollmentID uint) ([]model.StageItemProgress, error)
}

// FlowStructureStore 流程结构的只读访问
type FlowStructureStore interface {
	FindStageByID(id uint) (*model.Stage, error)
	FindItemByID(id uint) (*model.StageItem, error)
	ListItemsByStage(stageID uint) ([]model.StageItem, error)
	ListStagesByFlow(flowID uint) ([]model.Stage, error)
}

// EnrollmentStore 报名记录访问
type EnrollmentStore interface {
	FindByID(id uint) (*model.Enrollment, error)
	MarkEnrollmentCompleted(id uint, now time.Time) (*model.Enrollment, error)
}

// CertificateIssuer 报名完成后签发证书，失败不阻断级联
type CertificateIssuer interface {
	IssueForEnrollment(userID, enrollmentID uint) (*model.Certificate, error)
}

// ProjectionInvalidator 完成事件后使进度投影缓存失效
type ProjectionInvalidator interface {
	Invalidate(userID, enrollmentID uint)
}

// ProgressService 完成状态级联引擎：条目 → 阶段 → 流程。
// 每次完成事件都整段重扫（不维护计数器），漏掉的级联会在下一次事件中自愈。
type ProgressService struct {
	Progress    ProgressStore
	Flows       FlowStructureStore
	Enrollments EnrollmentStore
	Certs       CertificateIssuer
	Projection  ProjectionInvalidator
}

func NewProgressService(
	progress ProgressStore,
	flows FlowStructureStore,
	enrollments EnrollmentStore,
	certs CertificateIssuer,
	projection ProjectionInvalidator,
) *ProgressService {
	return &ProgressService{
		Progress:    progress,
		Flows:       flows,
		Enrollments: enrollments,
		Certs:       certs,
		Projection:  projection,
	}
}

// CompletionState complete-item 调用后三个层级的最新状态
type CompletionState struct {
	Item       *model.StageItemProgress `json:"item"`
	Stage      *model.StageProgress     `json:"stage,omitempty"`
	Enrollment *model.Enrollment        `json:"enrollment,omitempty"`
}

// StartStage 首次进入阶段时记录 started_at，重复调用不刷新
func (s *ProgressService) StartStage(userID, enrollmentID, stageID uint) (*model.StageProgress, error) {
	if _, err := s.Flows.FindStageByID(stageID); err != nil {
		return nil, err
	}
	if _, err := s.Enrollments.FindByID(enrollmentID); err != nil {
		return nil, err
	}
	return s.Progress.UpsertStageStarted(userID, stageID, enrollmentID, time.Now())
}

// CompleteItem 完成单个条目并向上级联。
// 顺序固定：条目 upsert → 阶段整段复查 → 流程整段复查。
// 条目写入成功后，级联任一步失败仅记录日志，不回滚条目完成。
func (s *ProgressService) CompleteItem(userID, enrollmentID, itemID uint, score *float64) (*CompletionState, error) {
	item, err := s.Flows.FindItemByID(itemID)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.Enrollments.FindByID(enrollmentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	itemProgress, err := s.Progress.UpsertItemCompleted(userID, itemID, enrollmentID, now, score)
	if err != nil {
		return nil, err
	}
	monitoring.CompletionCounter.WithLabelValues("item").Inc()

	state := &CompletionState{Item: itemProgress}
	defer s.invalidate(userID, enrollmentID)

	stageProgress, err := s.recheckStage(userID, enrollmentID, item.StageID)
	if err != nil {
		logger.Log.Warn("stage completion recheck aborted, will self-heal on next event",
			zap.Uint("stageId", item.StageID),
			zap.Uint("enrollmentId", enrollmentID),
			zap.Error(err))
		return state, nil
	}
	state.Stage = stageProgress

	if stageProgress == nil || stageProgress.CompletedAt == nil {
		return state, nil
	}

	completed, err := s.recheckFlow(userID, enrollment)
	if err != nil {
		logger.Log.Warn("flow completion recheck aborted, will self-heal on next event",
			zap.Uint("flowId", enrollment.FlowID),
			zap.Uint("enrollmentId", enrollmentID),
			zap.Error(err))
		return state, nil
	}
	state.Enrollment = completed

	return state, nil
}

// recheckStage 重新拉取阶段内全部条目及其进度；全部完成才落完成标记
func (s *ProgressService) recheckStage(userID, enrollmentID, stageID uint) (*model.StageProgress, error) {
	items, err := s.Flows.ListItemsByStage(stageID)
	if err != nil {
		return nil, err
	}

	progressList, err := s.Progress.ListItemProgress(userID, enrollmentID)
	if err != nil {
		return nil, err
	}

	completedItems := make(map[uint]bool, len(progressList))
	for _, p := range progressList {
		if p.CompletedAt != nil {
			completedItems[p.StageItemID] = true
		}
	}

	for _, item := range items {
		if !completedItems[item.ID] {
			return s.Progress.FindStageProgress(userID, stageID, enrollmentID)
		}
	}

	progress, err := s.Progress.MarkStageCompleted(userID, stageID, enrollmentID, time.Now())
	if err != nil {
		return nil, err
	}
	monitoring.CompletionCounter.WithLabelValues("stage").Inc()
	return progress, nil
}

// recheckFlow 全部阶段完成后才落报名完成标记
func (s *ProgressService) recheckFlow(userID uint, enrollment *model.Enrollment) (*model.Enrollment, error) {
	if enrollment.CompletedAt != nil {
		return enrollment, nil
	}

	stages, err := s.Flows.ListStagesByFlow(enrollment.FlowID)
	if err != nil {
		return nil, err
	}

	progressList, err := s.Progress.ListStageProgress(userID, enrollment.ID)
	if err != nil {
		return nil, err
	}

	completedStages := make(map[uint]bool, len(progressList))
	for _, p := range progressList {
		if p.CompletedAt != nil {
			completedStages[p.StageID] = true
		}
	}

	for _, stage := range stages {
		if !completedStages[stage.ID] {
			return nil, nil
		}
	}

	completed, err := s.Enrollments.MarkEnrollmentCompleted(enrollment.ID, time.Now())
	if err != nil {
		return nil, err
	}
	monitoring.CompletionCounter.WithLabelValues("enrollment").Inc()

	s.issueCertificate(userID, enrollment.ID)

	return completed, nil
}

// issueCertificate 尽力而为，失败只记日志
func (s *ProgressService) issueCertificate(userID, enrollmentID uint) {
	if s.Certs == nil {
		return
	}
	if _, err := s.Certs.IssueForEnrollment(userID, enrollmentID); err != nil {
		logger.Log.Warn("certificate issuance failed",
			zap.Uint("enrollmentId", enrollmentID),
			zap.Error(err))
	}
}

func (s *ProgressService) invalidate(userID, enrollmentID uint) {
	if s.Projection != nil {
		s.Projection.Invalidate(userID, enrollmentID)
	}
}
