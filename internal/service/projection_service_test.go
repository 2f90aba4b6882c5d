package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboardflow_backend/internal/util"
)

func newProjectionFixture() (*ProjectionService, *mockProgressStore, *mockFlowStructure, *mockEnrollmentStore) {
	progress := newMockProgressStore()
	flows := newMockFlowStructure()
	enrollments := newMockEnrollmentStore()

	flows.addStage(10, 1)
	flows.addItem(100, 10)
	flows.addItem(101, 10)
	flows.addStage(11, 1)
	flows.addItem(110, 11)
	enrollments.add(1, 7, 1)

	svc := NewProjectionService(flows, enrollments, progress, nil, 0)
	return svc, progress, flows, enrollments
}

func TestFlowProgressEmpty(t *testing.T) {
	svc, _, _, _ := newProjectionFixture()

	view, err := svc.FlowProgress(context.Background(), 7, 1)
	require.NoError(t, err)

	assert.Equal(t, uint(1), view.Enrollment.ID)
	assert.Len(t, view.Stages, 2)
	assert.Equal(t, 0, view.CompletedItems)
	assert.Equal(t, 3, view.TotalItems)
	assert.Equal(t, 0.0, view.Percentage)

	// 无进度记录的阶段与条目以空 progress 渲染
	for _, stage := range view.Stages {
		assert.Nil(t, stage.Progress)
		for _, item := range stage.Items {
			assert.Nil(t, item.Progress)
		}
	}
}

func TestFlowProgressPartial(t *testing.T) {
	svc, progress, _, _ := newProjectionFixture()

	prog := NewProgressService(progress, svc.Flows, svc.Enrollments, nil, nil)
	_, err := prog.StartStage(7, 1, 10)
	require.NoError(t, err)
	_, err = prog.CompleteItem(7, 1, 100, nil)
	require.NoError(t, err)

	view, err := svc.FlowProgress(context.Background(), 7, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, view.CompletedItems)
	assert.Equal(t, 3, view.TotalItems)
	assert.InDelta(t, 33.33, view.Percentage, 0.01)

	var found bool
	for _, stage := range view.Stages {
		for _, item := range stage.Items {
			if item.Item.ID == 100 {
				found = true
				require.NotNil(t, item.Progress)
				assert.NotNil(t, item.Progress.CompletedAt)
			}
		}
	}
	assert.True(t, found)
}

func TestFlowProgressComplete(t *testing.T) {
	svc, progress, _, _ := newProjectionFixture()

	prog := NewProgressService(progress, svc.Flows, svc.Enrollments, nil, nil)
	for _, itemID := range []uint{100, 101, 110} {
		_, err := prog.CompleteItem(7, 1, itemID, nil)
		require.NoError(t, err)
	}

	view, err := svc.FlowProgress(context.Background(), 7, 1)
	require.NoError(t, err)

	assert.Equal(t, 3, view.CompletedItems)
	assert.Equal(t, 100.0, view.Percentage)
	assert.NotNil(t, view.Enrollment.CompletedAt)
}

func TestFlowProgressUnknownEnrollment(t *testing.T) {
	svc, _, _, _ := newProjectionFixture()

	_, err := svc.FlowProgress(context.Background(), 7, 99)
	assert.ErrorIs(t, err, util.ErrEnrollmentNotFound)
}

func TestInvalidateNilRedisNoop(t *testing.T) {
	svc, _, _, _ := newProjectionFixture()

	// Redis 未配置时静默跳过
	svc.Invalidate(7, 1)
}
