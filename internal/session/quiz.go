package session

import (
	"time"

	"virtual_classroom_backend/internal/model"
)

// ScoreQuiz grades an attempt. selected maps question id to the chosen option
// id; questions the map misses are recorded as "unanswered" and incorrect.
// Answer order follows the item's question order.
func ScoreQuiz(item model.TimelineItem, selected map[string]string) model.QuizResult {
	answers := make([]model.StudentAnswer, 0, len(item.Questions))
	correct := 0
	for _, q := range item.Questions {
		optionID, ok := selected[q.ID]
		if !ok || optionID == "" {
			optionID = model.UnansweredOptionID
		}
		isCorrect := optionID == q.CorrectOptionID
		if isCorrect {
			correct++
		}
		answers = append(answers, model.StudentAnswer{
			QuestionID:       q.ID,
			SelectedOptionID: optionID,
			IsCorrect:        isCorrect,
		})
	}
	return model.QuizResult{
		QuizID:         item.ID,
		Score:          model.FormatScore(correct, len(item.Questions)),
		StudentAnswers: answers,
		CompletedAt:    time.Now(),
	}
}
