package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"onboardflow_backend/internal/model"
	"onboardflow_backend/internal/util"
	"onboardflow_backend/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	m.Run()
}

type progressKey struct {
	userID       uint
	id           uint
	enrollmentID uint
}

type mockProgressStore struct {
	stageProgress map[progressKey]*model.StageProgress
	itemProgress  map[progressKey]*model.StageItemProgress
	listItemErr   error
	listStageErr  error
	markStageErr  error
}

func newMockProgressStore() *mockProgressStore {
	return &mockProgressStore{
		stageProgress: make(map[progressKey]*model.StageProgress),
		itemProgress:  make(map[progressKey]*model.StageItemProgress),
	}
}

func (m *mockProgressStore) UpsertStageStarted(userID, stageID, enrollmentID uint, now time.Time) (*model.StageProgress, error) {
	key := progressKey{userID, stageID, enrollmentID}
	if existing, ok := m.stageProgress[key]; ok {
		return existing, nil
	}
	started := now
	p := &model.StageProgress{UserID: userID, StageID: stageID, EnrollmentID: enrollmentID, StartedAt: &started}
	m.stageProgress[key] = p
	return p, nil
}

func (m *mockProgressStore) MarkStageCompleted(userID, stageID, enrollmentID uint, now time.Time) (*model.StageProgress, error) {
	if m.markStageErr != nil {
		return nil, m.markStageErr
	}
	key := progressKey{userID, stageID, enrollmentID}
	p, ok := m.stageProgress[key]
	if !ok {
		p = &model.StageProgress{UserID: userID, StageID: stageID, EnrollmentID: enrollmentID}
		m.stageProgress[key] = p
	}
	if p.CompletedAt == nil {
		completed := now
		p.CompletedAt = &completed
	}
	return p, nil
}

func (m *mockProgressStore) FindStageProgress(userID, stageID, enrollmentID uint) (*model.StageProgress, error) {
	return m.stageProgress[progressKey{userID, stageID, enrollmentID}], nil
}

func (m *mockProgressStore) ListStageProgress(userID, enrollmentID uint) ([]model.StageProgress, error) {
	if m.listStageErr != nil {
		return nil, m.listStageErr
	}
	var res []model.StageProgress
	for key, p := range m.stageProgress {
		if key.userID == userID && key.enrollmentID == enrollmentID {
			res = append(res, *p)
		}
	}
	return res, nil
}

func (m *mockProgressStore) UpsertItemCompleted(userID, itemID, enrollmentID uint, now time.Time, score *float64) (*model.StageItemProgress, error) {
	key := progressKey{userID, itemID, enrollmentID}
	if existing, ok := m.itemProgress[key]; ok && existing.CompletedAt != nil {
		return existing, nil
	}
	completed := now
	p := &model.StageItemProgress{UserID: userID, StageItemID: itemID, EnrollmentID: enrollmentID, CompletedAt: &completed, Score: score}
	m.itemProgress[key] = p
	return p, nil
}

func (m *mockProgressStore) ListItemProgress(userID, enrollmentID uint) ([]model.StageItemProgress, error) {
	if m.listItemErr != nil {
		return nil, m.listItemErr
	}
	var res []model.StageItemProgress
	for key, p := range m.itemProgress {
		if key.userID == userID && key.enrollmentID == enrollmentID {
			res = append(res, *p)
		}
	}
	return res, nil
}

type mockFlowStructure struct {
	stages map[uint]*model.Stage
	items  map[uint]*model.StageItem
}

func newMockFlowStructure() *mockFlowStructure {
	return &mockFlowStructure{
		stages: make(map[uint]*model.Stage),
		items:  make(map[uint]*model.StageItem),
	}
}

func (m *mockFlowStructure) addStage(id, flowID uint) {
	m.stages[id] = &model.Stage{BaseModel: model.BaseModel{ID: id}, FlowID: flowID}
}

func (m *mockFlowStructure) addItem(id, stageID uint) {
	m.items[id] = &model.StageItem{BaseModel: model.BaseModel{ID: id}, StageID: stageID, Type: model.ItemContent}
}

func (m *mockFlowStructure) FindStageByID(id uint) (*model.Stage, error) {
	if s, ok := m.stages[id]; ok {
		return s, nil
	}
	return nil, util.ErrStageNotFound
}

func (m *mockFlowStructure) FindItemByID(id uint) (*model.StageItem, error) {
	if i, ok := m.items[id]; ok {
		return i, nil
	}
	return nil, util.ErrItemNotFound
}

func (m *mockFlowStructure) ListItemsByStage(stageID uint) ([]model.StageItem, error) {
	var res []model.StageItem
	for _, i := range m.items {
		if i.StageID == stageID {
			res = append(res, *i)
		}
	}
	return res, nil
}

func (m *mockFlowStructure) ListStagesByFlow(flowID uint) ([]model.Stage, error) {
	var res []model.Stage
	for _, s := range m.stages {
		if s.FlowID == flowID {
			res = append(res, *s)
		}
	}
	return res, nil
}

type mockEnrollmentStore struct {
	enrollments map[uint]*model.Enrollment
}

func newMockEnrollmentStore() *mockEnrollmentStore {
	return &mockEnrollmentStore{enrollments: make(map[uint]*model.Enrollment)}
}

func (m *mockEnrollmentStore) add(id, userID, flowID uint) {
	m.enrollments[id] = &model.Enrollment{
		BaseModel: model.BaseModel{ID: id},
		UserID:    userID,
		FlowID:    flowID,
		StartedAt: time.Now(),
	}
}

func (m *mockEnrollmentStore) FindByID(id uint) (*model.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return e, nil
	}
	return nil, util.ErrEnrollmentNotFound
}

func (m *mockEnrollmentStore) MarkEnrollmentCompleted(id uint, now time.Time) (*model.Enrollment, error) {
	e, ok := m.enrollments[id]
	if !ok {
		return nil, util.ErrEnrollmentNotFound
	}
	if e.CompletedAt == nil {
		completed := now
		e.CompletedAt = &completed
	}
	return e, nil
}

type mockCertIssuer struct {
	issued []uint
	err    error
}

func (m *mockCertIssuer) IssueForEnrollment(userID, enrollmentID uint) (*model.Certificate, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.issued = append(m.issued, enrollmentID)
	return &model.Certificate{UserID: userID, EnrollmentID: enrollmentID}, nil
}

type mockInvalidator struct {
	calls int
}

func (m *mockInvalidator) Invalidate(userID, enrollmentID uint) {
	m.calls++
}

// 单阶段两条目的最小流程
func newProgressFixture() (*ProgressService, *mockProgressStore, *mockFlowStructure, *mockEnrollmentStore, *mockCertIssuer, *mockInvalidator) {
	progress := newMockProgressStore()
	flows := newMockFlowStructure()
	enrollments := newMockEnrollmentStore()
	certs := &mockCertIssuer{}
	invalidator := &mockInvalidator{}

	flows.addStage(10, 1)
	flows.addItem(100, 10)
	flows.addItem(101, 10)
	enrollments.add(1, 7, 1)

	svc := NewProgressService(progress, flows, enrollments, certs, invalidator)
	return svc, progress, flows, enrollments, certs, invalidator
}

func TestStartStageFirstVisitOnly(t *testing.T) {
	svc, _, _, _, _, _ := newProgressFixture()

	first, err := svc.StartStage(7, 1, 10)
	require.NoError(t, err)
	require.NotNil(t, first.StartedAt)

	time.Sleep(time.Millisecond)

	second, err := svc.StartStage(7, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, first.StartedAt, second.StartedAt)
}

func TestStartStageUnknownStage(t *testing.T) {
	svc, _, _, _, _, _ := newProgressFixture()

	_, err := svc.StartStage(7, 1, 99)
	assert.ErrorIs(t, err, util.ErrStageNotFound)
}

func TestCompleteItemPartialStage(t *testing.T) {
	svc, _, _, _, certs, invalidator := newProgressFixture()

	state, err := svc.CompleteItem(7, 1, 100, nil)
	require.NoError(t, err)

	require.NotNil(t, state.Item)
	assert.NotNil(t, state.Item.CompletedAt)
	// 阶段还有未完成条目，不应落完成标记
	if state.Stage != nil {
		assert.Nil(t, state.Stage.CompletedAt)
	}
	assert.Nil(t, state.Enrollment)
	assert.Empty(t, certs.issued)
	assert.Equal(t, 1, invalidator.calls)
}

func TestCompleteItemCascadesToEnrollment(t *testing.T) {
	svc, _, _, enrollments, certs, _ := newProgressFixture()

	_, err := svc.CompleteItem(7, 1, 100, nil)
	require.NoError(t, err)

	state, err := svc.CompleteItem(7, 1, 101, nil)
	require.NoError(t, err)

	require.NotNil(t, state.Stage)
	assert.NotNil(t, state.Stage.CompletedAt)
	require.NotNil(t, state.Enrollment)
	assert.NotNil(t, state.Enrollment.CompletedAt)

	stored, _ := enrollments.FindByID(1)
	assert.NotNil(t, stored.CompletedAt)
	assert.Equal(t, []uint{1}, certs.issued)
}

func TestCompleteItemMultiStageFlow(t *testing.T) {
	svc, _, flows, enrollments, _, _ := newProgressFixture()
	flows.addStage(11, 1)
	flows.addItem(110, 11)

	_, err := svc.CompleteItem(7, 1, 100, nil)
	require.NoError(t, err)
	state, err := svc.CompleteItem(7, 1, 101, nil)
	require.NoError(t, err)

	// 第一阶段完成，但流程还有第二阶段
	require.NotNil(t, state.Stage)
	assert.NotNil(t, state.Stage.CompletedAt)
	assert.Nil(t, state.Enrollment)

	stored, _ := enrollments.FindByID(1)
	assert.Nil(t, stored.CompletedAt)

	state, err = svc.CompleteItem(7, 1, 110, nil)
	require.NoError(t, err)
	require.NotNil(t, state.Enrollment)
	assert.NotNil(t, state.Enrollment.CompletedAt)
}

func TestCompleteItemIdempotentKeepsEarliestTimestamp(t *testing.T) {
	svc, _, _, _, _, _ := newProgressFixture()

	first, err := svc.CompleteItem(7, 1, 100, nil)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	second, err := svc.CompleteItem(7, 1, 100, nil)
	require.NoError(t, err)
	assert.Equal(t, first.Item.CompletedAt, second.Item.CompletedAt)
}

func TestCompleteItemStoresScore(t *testing.T) {
	svc, progress, _, _, _, _ := newProgressFixture()

	score := 85.5
	_, err := svc.CompleteItem(7, 1, 100, &score)
	require.NoError(t, err)

	stored := progress.itemProgress[progressKey{7, 100, 1}]
	require.NotNil(t, stored.Score)
	assert.Equal(t, 85.5, *stored.Score)
}

func TestCompleteItemUnknownItem(t *testing.T) {
	svc, _, _, _, _, _ := newProgressFixture()

	_, err := svc.CompleteItem(7, 1, 999, nil)
	assert.ErrorIs(t, err, util.ErrItemNotFound)
}

func TestCompleteItemPropagationFailureKeepsItem(t *testing.T) {
	svc, progress, _, _, _, _ := newProgressFixture()
	progress.listItemErr = errors.New("db gone")

	state, err := svc.CompleteItem(7, 1, 100, nil)

	// 级联失败不向上冒泡，条目完成保持有效
	require.NoError(t, err)
	require.NotNil(t, state.Item)
	assert.NotNil(t, state.Item.CompletedAt)
	assert.Nil(t, state.Stage)
	assert.Nil(t, state.Enrollment)
}

func TestCompleteItemSelfHealsAfterFailure(t *testing.T) {
	svc, progress, _, enrollments, _, _ := newProgressFixture()

	_, err := svc.CompleteItem(7, 1, 100, nil)
	require.NoError(t, err)

	// 第二个条目完成时级联失败
	progress.listItemErr = errors.New("db gone")
	_, err = svc.CompleteItem(7, 1, 101, nil)
	require.NoError(t, err)

	stored, _ := enrollments.FindByID(1)
	assert.Nil(t, stored.CompletedAt)

	// 故障恢复后重放任一条目的完成事件，级联补齐
	progress.listItemErr = nil
	state, err := svc.CompleteItem(7, 1, 101, nil)
	require.NoError(t, err)
	require.NotNil(t, state.Enrollment)
	assert.NotNil(t, state.Enrollment.CompletedAt)
}

func TestCompleteItemEnrollmentCompletionMonotonic(t *testing.T) {
	svc, _, _, enrollments, certs, _ := newProgressFixture()

	_, err := svc.CompleteItem(7, 1, 100, nil)
	require.NoError(t, err)
	_, err = svc.CompleteItem(7, 1, 101, nil)
	require.NoError(t, err)

	stored, _ := enrollments.FindByID(1)
	completedAt := stored.CompletedAt
	require.NotNil(t, completedAt)

	time.Sleep(time.Millisecond)

	// 已完成的报名重放完成事件，时间戳与证书不变
	_, err = svc.CompleteItem(7, 1, 101, nil)
	require.NoError(t, err)

	stored, _ = enrollments.FindByID(1)
	assert.Equal(t, completedAt, stored.CompletedAt)
	assert.Equal(t, []uint{1}, certs.issued)
}

func TestCompleteItemCertificateFailureNotFatal(t *testing.T) {
	svc, _, _, _, certs, _ := newProgressFixture()
	certs.err = errors.New("minio unreachable")

	_, err := svc.CompleteItem(7, 1, 100, nil)
	require.NoError(t, err)
	state, err := svc.CompleteItem(7, 1, 101, nil)
	require.NoError(t, err)

	// 证书失败仅记日志，完成状态照常落库
	require.NotNil(t, state.Enrollment)
	assert.NotNil(t, state.Enrollment.CompletedAt)
}

func TestCompleteItemNilCertIssuer(t *testing.T) {
	progress := newMockProgressStore()
	flows := newMockFlowStructure()
	enrollments := newMockEnrollmentStore()
	flows.addStage(10, 1)
	flows.addItem(100, 10)
	enrollments.add(1, 7, 1)

	svc := NewProgressService(progress, flows, enrollments, nil, nil)

	state, err := svc.CompleteItem(7, 1, 100, nil)
	require.NoError(t, err)
	require.NotNil(t, state.Enrollment)
	assert.NotNil(t, state.Enrollment.CompletedAt)
}
