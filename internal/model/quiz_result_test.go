package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatScore(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		total   int
		want    string
	}{
		{name: "zero questions scores full", correct: 0, total: 0, want: "100%"},
		{name: "all correct", correct: 2, total: 2, want: "100%"},
		{name: "none correct", correct: 0, total: 2, want: "0%"},
		{name: "half", correct: 1, total: 2, want: "50%"},
		{name: "rounds up", correct: 2, total: 3, want: "67%"},
		{name: "rounds down", correct: 1, total: 3, want: "33%"},
		{name: "exact five of eight", correct: 5, total: 8, want: "63%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatScore(tt.correct, tt.total))
		})
	}
}

func TestNormalizeClassCode(t *testing.T) {
	assert.Equal(t, "A83K9B1P", NormalizeClassCode("A83K-9B1P"))
	assert.Equal(t, "A83K9B1P", NormalizeClassCode("  A83K9B1P "))
	assert.Equal(t, "A83K9B1P", NormalizeClassCode("A-8-3-K-9-B-1-P"))
	assert.Equal(t, "", NormalizeClassCode("  -  "))
}

func TestHasQuizResult(t *testing.T) {
	s := Student{QuizResults: []QuizResult{{QuizID: "quiz-1", Score: "50%"}}}
	assert.True(t, s.HasQuizResult("quiz-1"))
	assert.False(t, s.HasQuizResult("quiz-2"))
}
