package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboardflow_backend/internal/model"
	"onboardflow_backend/internal/util"
)

func question(id uint, qType model.QuestionType, correct string, points float64) model.Question {
	return model.Question{
		BaseModel:     model.BaseModel{ID: id},
		QuestionType:  qType,
		CorrectAnswer: json.RawMessage(correct),
		Points:        points,
	}
}

func raw(s string) json.RawMessage {
	return json.RawMessage(s)
}

func TestGradeAllCorrect(t *testing.T) {
	questions := []model.Question{
		question(1, model.MultipleChoice, `"b"`, 10),
		question(2, model.TrueFalse, `true`, 5),
		question(3, model.ShortAnswer, `"gin"`, 5),
	}
	answers := map[uint]json.RawMessage{
		1: raw(`"b"`),
		2: raw(`true`),
		3: raw(`"gin"`),
	}

	result, err := Grade(questions, answers, 70)
	require.NoError(t, err)
	assert.Equal(t, 20.0, result.Score)
	assert.Equal(t, 20.0, result.MaxScore)
	assert.True(t, result.IsPassed)
}

func TestGradePartialFail(t *testing.T) {
	questions := []model.Question{
		question(1, model.MultipleChoice, `"b"`, 10),
		question(2, model.TrueFalse, `true`, 10),
	}
	answers := map[uint]json.RawMessage{
		1: raw(`"b"`),
		2: raw(`false`),
	}

	result, err := Grade(questions, answers, 70)
	require.NoError(t, err)
	assert.Equal(t, 10.0, result.Score)
	assert.Equal(t, 20.0, result.MaxScore)
	assert.False(t, result.IsPassed)
}

func TestGradeIdempotent(t *testing.T) {
	questions := []model.Question{
		question(1, model.MultipleChoice, `"a"`, 7.5),
		question(2, model.MultiSelect, `["x","y"]`, 2.5),
	}
	answers := map[uint]json.RawMessage{
		1: raw(`"a"`),
		2: raw(`["y","x"]`),
	}

	first, err := Grade(questions, answers, 50)
	require.NoError(t, err)
	second, err := Grade(questions, answers, 50)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGradeMultiSelectOrderInsensitive(t *testing.T) {
	questions := []model.Question{
		question(1, model.MultiSelect, `["a","b","c"]`, 10),
	}
	answers := map[uint]json.RawMessage{
		1: raw(`["c","a","b"]`),
	}

	result, err := Grade(questions, answers, 100)
	require.NoError(t, err)
	assert.Equal(t, 10.0, result.Score)
	assert.True(t, result.IsPassed)
}

func TestGradeMultiSelectSubsetAndSuperset(t *testing.T) {
	questions := []model.Question{
		question(1, model.MultiSelect, `["a","b"]`, 10),
	}

	// 少选
	result, err := Grade(questions, map[uint]json.RawMessage{1: raw(`["a"]`)}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Score)

	// 多选（超集），数量不符直接判错
	result, err = Grade(questions, map[uint]json.RawMessage{1: raw(`["a","b","c"]`)}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Score)

	// 数量相同但内容不同
	result, err = Grade(questions, map[uint]json.RawMessage{1: raw(`["a","c"]`)}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Score)
}

func TestGradeSubjectiveNeverAutoScored(t *testing.T) {
	questions := []model.Question{
		question(1, model.Essay, `null`, 10),
		question(2, model.FileUpload, `null`, 10),
	}
	answers := map[uint]json.RawMessage{
		1: raw(`"my long essay"`),
		2: raw(`"https://files.example.com/report.pdf"`),
	}

	result, err := Grade(questions, answers, 50)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, 20.0, result.MaxScore)
	assert.False(t, result.IsPassed)
}

func TestGradeUnansweredCountsAsZero(t *testing.T) {
	questions := []model.Question{
		question(1, model.MultipleChoice, `"a"`, 10),
		question(2, model.MultipleChoice, `"b"`, 10),
	}
	answers := map[uint]json.RawMessage{
		1: raw(`"a"`),
	}

	result, err := Grade(questions, answers, 50)
	require.NoError(t, err)
	assert.Equal(t, 10.0, result.Score)
	assert.True(t, result.IsPassed)
}

func TestGradeShapeMismatchIsIncorrect(t *testing.T) {
	questions := []model.Question{
		question(1, model.TrueFalse, `true`, 10),
		question(2, model.MultiSelect, `["a"]`, 10),
		question(3, model.ShortAnswer, `"ok"`, 10),
	}
	answers := map[uint]json.RawMessage{
		1: raw(`"true"`),  // 字符串不是布尔
		2: raw(`"a"`),     // 标量不是数组
		3: raw(`["ok"]`),  // 数组不是标量
	}

	result, err := Grade(questions, answers, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Score)
}

func TestGradeCaseSensitive(t *testing.T) {
	questions := []model.Question{
		question(1, model.ShortAnswer, `"Paris"`, 10),
	}
	answers := map[uint]json.RawMessage{
		1: raw(`"paris"`),
	}

	result, err := Grade(questions, answers, 100)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Score)
	assert.False(t, result.IsPassed)
}

func TestGradeZeroQuestions(t *testing.T) {
	// 无题目时总分为零，按 0% 处理
	result, err := Grade(nil, nil, 70)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, 0.0, result.MaxScore)
	assert.False(t, result.IsPassed)

	// 及格线为 0 时 0% 也算通过
	result, err = Grade(nil, nil, 0)
	require.NoError(t, err)
	assert.True(t, result.IsPassed)
}

func TestGradeRounding(t *testing.T) {
	questions := []model.Question{
		question(1, model.MultipleChoice, `"a"`, 3.333),
		question(2, model.MultipleChoice, `"b"`, 3.333),
		question(3, model.MultipleChoice, `"c"`, 3.333),
	}
	answers := map[uint]json.RawMessage{
		1: raw(`"a"`),
		2: raw(`"b"`),
		3: raw(`"c"`),
	}

	result, err := Grade(questions, answers, 99)
	require.NoError(t, err)
	assert.Equal(t, 10.0, result.Score)
	assert.True(t, result.IsPassed)
}

func TestGradeExactThreshold(t *testing.T) {
	questions := []model.Question{
		question(1, model.MultipleChoice, `"a"`, 7),
		question(2, model.MultipleChoice, `"b"`, 3),
	}
	answers := map[uint]json.RawMessage{
		1: raw(`"a"`),
	}

	// 70% 恰好等于及格线
	result, err := Grade(questions, answers, 70)
	require.NoError(t, err)
	assert.Equal(t, 7.0, result.Score)
	assert.True(t, result.IsPassed)

	result, err = Grade(questions, answers, 71)
	require.NoError(t, err)
	assert.False(t, result.IsPassed)
}

func TestGradeUnknownQuestionType(t *testing.T) {
	questions := []model.Question{
		question(1, model.QuestionType("matching"), `"a"`, 10),
	}

	_, err := Grade(questions, map[uint]json.RawMessage{1: raw(`"a"`)}, 50)
	assert.ErrorIs(t, err, util.ErrInvalidQuestionType)
}
