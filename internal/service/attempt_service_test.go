package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboardflow_backend/internal/model"
	"onboardflow_backend/internal/util"
)

type mockAttemptStore struct {
	assessments map[uint]*model.Assessment
	questions   map[uint][]model.Question
	attempts    map[uint]*model.AssessmentAttempt
	nextID      uint
	saveCalls   int
}

func newMockAttemptStore() *mockAttemptStore {
	return &mockAttemptStore{
		assessments: make(map[uint]*model.Assessment),
		questions:   make(map[uint][]model.Question),
		attempts:    make(map[uint]*model.AssessmentAttempt),
	}
}

func (m *mockAttemptStore) FindAssessmentByID(id uint) (*model.Assessment, error) {
	if a, ok := m.assessments[id]; ok {
		return a, nil
	}
	return nil, util.ErrAssessmentNotFound
}

func (m *mockAttemptStore) ListQuestions(assessmentID uint) ([]model.Question, error) {
	return m.questions[assessmentID], nil
}

func (m *mockAttemptStore) CreateAttempt(attempt *model.AssessmentAttempt) error {
	m.nextID++
	attempt.ID = m.nextID
	m.attempts[attempt.ID] = attempt
	return nil
}

func (m *mockAttemptStore) SaveAttempt(attempt *model.AssessmentAttempt) error {
	m.saveCalls++
	m.attempts[attempt.ID] = attempt
	return nil
}

func (m *mockAttemptStore) FindAttemptByID(id uint) (*model.AssessmentAttempt, error) {
	if a, ok := m.attempts[id]; ok {
		return a, nil
	}
	return nil, util.ErrAttemptNotFound
}

func (m *mockAttemptStore) CountAttempts(userID, assessmentID uint) (int64, error) {
	var count int64
	for _, a := range m.attempts {
		if a.UserID == userID && a.AssessmentID == assessmentID {
			count++
		}
	}
	return count, nil
}

func newAttemptFixture(passingScore int) (*AttemptService, *mockAttemptStore) {
	store := newMockAttemptStore()
	store.assessments[1] = &model.Assessment{
		BaseModel:    model.BaseModel{ID: 1},
		Title:        "安全合规测验",
		PassingScore: passingScore,
	}
	store.questions[1] = []model.Question{
		question(1, model.MultipleChoice, `"b"`, 10),
		question(2, model.TrueFalse, `false`, 10),
	}
	return NewAttemptService(store), store
}

func TestStartAttemptCreatesBlankRecord(t *testing.T) {
	svc, _ := newAttemptFixture(70)

	enrollmentID := uint(5)
	attempt, err := svc.StartAttempt(7, 1, &enrollmentID)
	require.NoError(t, err)

	assert.NotZero(t, attempt.ID)
	assert.Equal(t, uint(7), attempt.UserID)
	require.NotNil(t, attempt.EnrollmentID)
	assert.Equal(t, uint(5), *attempt.EnrollmentID)
	assert.Nil(t, attempt.CompletedAt)
	assert.False(t, attempt.StartedAt.IsZero())
}

func TestStartAttemptUnknownAssessment(t *testing.T) {
	svc, _ := newAttemptFixture(70)

	_, err := svc.StartAttempt(7, 99, nil)
	assert.ErrorIs(t, err, util.ErrAssessmentNotFound)
}

func TestStartAttemptAllowsMultipleInFlight(t *testing.T) {
	svc, _ := newAttemptFixture(70)

	first, err := svc.StartAttempt(7, 1, nil)
	require.NoError(t, err)
	second, err := svc.StartAttempt(7, 1, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	count, err := svc.AttemptCount(7, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestSubmitAttemptPassed(t *testing.T) {
	svc, _ := newAttemptFixture(70)

	attempt, err := svc.StartAttempt(7, 1, nil)
	require.NoError(t, err)

	submitted, err := svc.SubmitAttempt(attempt.ID, map[uint]json.RawMessage{
		1: raw(`"b"`),
		2: raw(`false`),
	}, 120)
	require.NoError(t, err)

	assert.Equal(t, 20.0, submitted.Score)
	assert.Equal(t, 20.0, submitted.MaxScore)
	assert.True(t, submitted.IsPassed)
	assert.Equal(t, 120, submitted.TimeSpentSeconds)
	require.NotNil(t, submitted.CompletedAt)
	assert.NotNil(t, submitted.Answers)
}

func TestSubmitAttemptFailed(t *testing.T) {
	svc, _ := newAttemptFixture(70)

	attempt, err := svc.StartAttempt(7, 1, nil)
	require.NoError(t, err)

	submitted, err := svc.SubmitAttempt(attempt.ID, map[uint]json.RawMessage{
		1: raw(`"b"`),
	}, 60)
	require.NoError(t, err)

	assert.Equal(t, 10.0, submitted.Score)
	assert.False(t, submitted.IsPassed)
	assert.NotNil(t, submitted.CompletedAt)
}

func TestSubmitAttemptEmptyAnswers(t *testing.T) {
	svc, _ := newAttemptFixture(70)

	attempt, err := svc.StartAttempt(7, 1, nil)
	require.NoError(t, err)

	submitted, err := svc.SubmitAttempt(attempt.ID, map[uint]json.RawMessage{}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, submitted.Score)
	assert.Equal(t, 20.0, submitted.MaxScore)
	assert.False(t, submitted.IsPassed)
	assert.NotNil(t, submitted.CompletedAt)

	// 及格线为 0 时即使空答卷也通过
	zeroSvc, _ := newAttemptFixture(0)
	attempt, err = zeroSvc.StartAttempt(7, 1, nil)
	require.NoError(t, err)
	submitted, err = zeroSvc.SubmitAttempt(attempt.ID, map[uint]json.RawMessage{}, 0)
	require.NoError(t, err)
	assert.True(t, submitted.IsPassed)
}

func TestSubmitAttemptUnknownAttempt(t *testing.T) {
	svc, _ := newAttemptFixture(70)

	_, err := svc.SubmitAttempt(42, nil, 0)
	assert.ErrorIs(t, err, util.ErrAttemptNotFound)
}

func TestResubmitRegradesAndOverwrites(t *testing.T) {
	svc, store := newAttemptFixture(70)

	attempt, err := svc.StartAttempt(7, 1, nil)
	require.NoError(t, err)

	failed, err := svc.SubmitAttempt(attempt.ID, map[uint]json.RawMessage{1: raw(`"x"`)}, 30)
	require.NoError(t, err)
	assert.False(t, failed.IsPassed)

	passed, err := svc.SubmitAttempt(attempt.ID, map[uint]json.RawMessage{
		1: raw(`"b"`),
		2: raw(`false`),
	}, 45)
	require.NoError(t, err)
	assert.True(t, passed.IsPassed)
	assert.Equal(t, 20.0, passed.Score)
	assert.Equal(t, 2, store.saveCalls)
}

func TestPercentScore(t *testing.T) {
	assert.Equal(t, 75.0, PercentScore(&model.AssessmentAttempt{Score: 15, MaxScore: 20}))
	assert.Equal(t, 0.0, PercentScore(&model.AssessmentAttempt{Score: 0, MaxScore: 0}))
}
