package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboardflow_backend/internal/model"
	"onboardflow_backend/internal/util"
)

type mockEnrollmentWriteStore struct {
	enrollments []*model.Enrollment
	nextID      uint
}

func (m *mockEnrollmentWriteStore) Create(enrollment *model.Enrollment) error {
	m.nextID++
	enrollment.ID = m.nextID
	m.enrollments = append(m.enrollments, enrollment)
	return nil
}

func (m *mockEnrollmentWriteStore) FindByID(id uint) (*model.Enrollment, error) {
	for _, e := range m.enrollments {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, util.ErrEnrollmentNotFound
}

func (m *mockEnrollmentWriteStore) FindByUserAndFlow(userID, flowID uint) (*model.Enrollment, error) {
	for _, e := range m.enrollments {
		if e.UserID == userID && e.FlowID == flowID {
			return e, nil
		}
	}
	return nil, util.ErrEnrollmentNotFound
}

func (m *mockEnrollmentWriteStore) ListByUser(userID uint) ([]model.Enrollment, error) {
	var res []model.Enrollment
	for _, e := range m.enrollments {
		if e.UserID == userID {
			res = append(res, *e)
		}
	}
	return res, nil
}

type mockEnrollmentFlowStore struct {
	flows map[uint]*model.Flow
}

func (m *mockEnrollmentFlowStore) FindFlowByID(id uint) (*model.Flow, error) {
	if f, ok := m.flows[id]; ok {
		return f, nil
	}
	return nil, util.ErrFlowNotFound
}

func newEnrollmentFixture() (*EnrollmentService, *mockEnrollmentWriteStore, *mockEnrollmentFlowStore) {
	published := time.Now()
	flows := &mockEnrollmentFlowStore{flows: map[uint]*model.Flow{
		1: {BaseModel: model.BaseModel{ID: 1}, Title: "新人入职", IsPublished: true, PublishedAt: &published},
		2: {BaseModel: model.BaseModel{ID: 2}, Title: "草稿流程"},
	}}
	store := &mockEnrollmentWriteStore{}
	return NewEnrollmentService(store, flows), store, flows
}

func TestEnrollPublishedFlow(t *testing.T) {
	svc, _, _ := newEnrollmentFixture()

	enrollment, err := svc.Enroll(7, 1)
	require.NoError(t, err)

	assert.NotZero(t, enrollment.ID)
	assert.Equal(t, uint(7), enrollment.UserID)
	assert.Equal(t, uint(1), enrollment.FlowID)
	assert.False(t, enrollment.StartedAt.IsZero())
	assert.Nil(t, enrollment.CompletedAt)
}

func TestEnrollUnpublishedFlow(t *testing.T) {
	svc, _, _ := newEnrollmentFixture()

	_, err := svc.Enroll(7, 2)
	assert.ErrorIs(t, err, util.ErrFlowNotPublished)
}

func TestEnrollUnknownFlow(t *testing.T) {
	svc, _, _ := newEnrollmentFixture()

	_, err := svc.Enroll(7, 99)
	assert.ErrorIs(t, err, util.ErrFlowNotFound)
}

func TestEnrollOncePerUserAndFlow(t *testing.T) {
	svc, store, _ := newEnrollmentFixture()

	_, err := svc.Enroll(7, 1)
	require.NoError(t, err)

	_, err = svc.Enroll(7, 1)
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)
	assert.Len(t, store.enrollments, 1)

	// 不同用户不受影响
	_, err = svc.Enroll(8, 1)
	require.NoError(t, err)
}

func TestListByUser(t *testing.T) {
	svc, _, _ := newEnrollmentFixture()

	_, err := svc.Enroll(7, 1)
	require.NoError(t, err)
	_, err = svc.Enroll(8, 1)
	require.NoError(t, err)

	mine, err := svc.ListByUser(7)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
