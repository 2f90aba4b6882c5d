package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageItemValidatePayload(t *testing.T) {
	assessmentID := uint(3)

	cases := []struct {
		name string
		item StageItem
		want bool
	}{
		{"content with url", StageItem{Type: ItemContent, ResourceURL: "https://videos.example.com/intro.mp4"}, true},
		{"content missing url", StageItem{Type: ItemContent}, false},
		{"content with extra payload", StageItem{Type: ItemContent, ResourceURL: "x", Body: "y"}, false},
		{"assessment with id", StageItem{Type: ItemAssessment, AssessmentID: &assessmentID}, true},
		{"assessment missing id", StageItem{Type: ItemAssessment}, false},
		{"info with body", StageItem{Type: ItemInfo, Body: "欢迎加入"}, true},
		{"info missing body", StageItem{Type: ItemInfo}, false},
		{"unknown type", StageItem{Type: StageItemType("video")}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.item.ValidatePayload())
		})
	}
}

func TestQuestionTypeValid(t *testing.T) {
	for _, qt := range []QuestionType{MultipleChoice, MultiSelect, TrueFalse, ShortAnswer, Essay, FileUpload} {
		assert.True(t, qt.Valid())
	}
	assert.False(t, QuestionType("matching").Valid())
	assert.False(t, QuestionType("").Valid())
}
