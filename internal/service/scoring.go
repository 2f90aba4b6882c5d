package service

import (
	"encoding/json"
	"math"

	"onboardflow_backend/internal/model"
	"onboardflow_backend/internal/util"
)

// GradeResult 一次判分的聚合结果
type GradeResult struct {
	Score    float64 `json:"score"`
	MaxScore float64 `json:"maxScore"`
	IsPassed bool    `json:"isPassed"`
}

// Grade 对一组答案判分。纯函数，不做任何 I/O。
// 未作答的题目不计分；答案 JSON 形态与题型不符时一律判错。
// passingScore 为 0-100 的百分比阈值；总分为零时按 0% 处理。
func Grade(questions []model.Question, answers map[uint]json.RawMessage, passingScore int) (GradeResult, error) {
	var score, maxScore float64

	for _, q := range questions {
		maxScore += q.Points

		correct, err := isCorrect(&q, answers[q.ID])
		if err != nil {
			return GradeResult{}, err
		}
		if correct {
			score += q.Points
		}
	}

	score = math.Round(score*100) / 100

	percentage := 0.0
	if maxScore > 0 {
		percentage = score / maxScore * 100
	}

	return GradeResult{
		Score:    score,
		MaxScore: maxScore,
		IsPassed: percentage >= float64(passingScore),
	}, nil
}

func isCorrect(q *model.Question, submitted json.RawMessage) (bool, error) {
	if !q.QuestionType.Valid() {
		return false, util.ErrInvalidQuestionType
	}
	if submitted == nil {
		return false, nil
	}

	switch q.QuestionType {
	case model.MultipleChoice, model.TrueFalse, model.ShortAnswer:
		return equalScalar(q.QuestionType, q.CorrectAnswer, submitted), nil

	case model.MultiSelect:
		return equalSelection(q.CorrectAnswer, submitted), nil

	case model.Essay, model.FileUpload:
		// 主观题不自动判分，得分由人工复核后修正
		return false, nil

	default:
		return false, util.ErrInvalidQuestionType
	}
}

// equalScalar 精确匹配，不做任何大小写或空白归一化
func equalScalar(qType model.QuestionType, correct, submitted json.RawMessage) bool {
	if qType == model.TrueFalse {
		var want, got bool
		if err := json.Unmarshal(correct, &want); err != nil {
			return false
		}
		if err := json.Unmarshal(submitted, &got); err != nil {
			return false
		}
		return want == got
	}

	var want, got string
	if err := json.Unmarshal(correct, &want); err != nil {
		return false
	}
	if err := json.Unmarshal(submitted, &got); err != nil {
		return false
	}
	return want == got
}

// equalSelection 多选题：数量一致且提交的每一项都在正确集合内。
// 两个条件缺一不可，超集提交因数量不符直接判错。
func equalSelection(correct, submitted json.RawMessage) bool {
	var want, got []string
	if err := json.Unmarshal(correct, &want); err != nil {
		return false
	}
	if err := json.Unmarshal(submitted, &got); err != nil {
		return false
	}

	if len(got) != len(want) {
		return false
	}

	wantSet := make(map[string]bool, len(want))
	for _, w := range want {
		wantSet[w] = true
	}
	for _, g := range got {
		if !wantSet[g] {
			return false
		}
	}
	return true
}
