package model

import (
	"fmt"
	"math"
	"time"
)

// UnansweredOptionID marks a question the student never selected an option
// for; such answers always count as incorrect.
const UnansweredOptionID = "unanswered"

// StudentAnswer records one question of a quiz attempt.
type StudentAnswer struct {
	QuestionID       string `json:"questionId"`
	SelectedOptionID string `json:"selectedOptionId"`
	IsCorrect        bool   `json:"isCorrect"`
}

// QuizResult is produced once per quiz attempt. Score carries the "NN%"
// string form that downstream comparisons parse back to an integer.
type QuizResult struct {
	QuizID         string          `json:"quizId"`
	Score          string          `json:"score"`
	StudentAnswers []StudentAnswer `json:"studentAnswers"`
	CompletedAt    time.Time       `json:"completedAt"`
}

// FormatScore renders round(100*correct/total) as "NN%". A quiz with zero
// questions scores 100%.
func FormatScore(correct, total int) string {
	if total == 0 {
		return "100%"
	}
	pct := math.Round(float64(correct) / float64(total) * 100)
	return fmt.Sprintf("%d%%", int(pct))
}
