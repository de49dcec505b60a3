package session

import (
	"testing"

	"virtual_classroom_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quizItem() model.TimelineItem {
	return model.TimelineItem{
		ID:   "quiz-1",
		Type: model.ItemQuiz,
		Questions: []model.Question{
			{
				ID:              "q1",
				Options:         []model.Option{{ID: "q1a"}, {ID: "q1b"}},
				CorrectOptionID: "q1b",
			},
			{
				ID:              "q2",
				Options:         []model.Option{{ID: "q2a"}, {ID: "q2b"}},
				CorrectOptionID: "q2a",
			},
		},
	}
}

func TestScoreQuizOneCorrectOneUnanswered(t *testing.T) {
	result := ScoreQuiz(quizItem(), map[string]string{"q1": "q1b"})

	assert.Equal(t, "quiz-1", result.QuizID)
	assert.Equal(t, "50%", result.Score)
	require.Len(t, result.StudentAnswers, 2)

	assert.Equal(t, "q1", result.StudentAnswers[0].QuestionID)
	assert.Equal(t, "q1b", result.StudentAnswers[0].SelectedOptionID)
	assert.True(t, result.StudentAnswers[0].IsCorrect)

	assert.Equal(t, "q2", result.StudentAnswers[1].QuestionID)
	assert.Equal(t, model.UnansweredOptionID, result.StudentAnswers[1].SelectedOptionID)
	assert.False(t, result.StudentAnswers[1].IsCorrect)
}

func TestScoreQuizAnswerOrderFollowsQuestions(t *testing.T) {
	result := ScoreQuiz(quizItem(), map[string]string{"q2": "q2a", "q1": "q1a"})

	require.Len(t, result.StudentAnswers, 2)
	assert.Equal(t, "q1", result.StudentAnswers[0].QuestionID)
	assert.Equal(t, "q2", result.StudentAnswers[1].QuestionID)
	assert.Equal(t, "50%", result.Score)
}

func TestScoreQuizEmptySelectionIsUnanswered(t *testing.T) {
	result := ScoreQuiz(quizItem(), map[string]string{"q1": "", "q2": "q2a"})

	assert.Equal(t, model.UnansweredOptionID, result.StudentAnswers[0].SelectedOptionID)
	assert.False(t, result.StudentAnswers[0].IsCorrect)
	assert.Equal(t, "50%", result.Score)
}

func TestScoreQuizNoQuestions(t *testing.T) {
	result := ScoreQuiz(model.TimelineItem{ID: "quiz-empty", Type: model.ItemQuiz}, nil)

	assert.Equal(t, "100%", result.Score)
	assert.Empty(t, result.StudentAnswers)
}
