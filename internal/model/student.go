package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// StudentStatus drives onboarding branching and cohort grouping.
type StudentStatus string

const (
	StatusInProgress         StudentStatus = "In Progress"
	StatusOnWatch            StudentStatus = "On Watch"
	StatusWithdrawn          StudentStatus = "Withdrawn"
	StatusCompleted          StudentStatus = "Completed"
	StatusRescheduleRequired StudentStatus = "Reschedule Required"
	StatusInactive           StudentStatus = "Inactive"
	StatusMakeupRequired     StudentStatus = "Makeup Required"
)

// MakeupSession describes the single-module replay owed after a missed
// live session.
type MakeupSession struct {
	ModuleID   string    `json:"moduleId"`
	ModuleName string    `json:"moduleName"`
	Date       time.Time `json:"date"`
	FeeCents   int       `json:"feeCents"`
}

type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Student is owned by the host application; the session core reads it and
// proposes mutations through outbound events only.
type Student struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	ClassCode     string         `json:"classCode"`
	Cohort        string         `json:"cohort"`
	CourseID      string         `json:"courseId"`
	Status        StudentStatus  `json:"status"`
	QuizResults   []QuizResult   `json:"quizResults"`
	MakeupSession *MakeupSession `json:"makeupSession,omitempty"`
	Notifications []Notification `json:"notifications"`
	Paperwork     *Paperwork     `json:"paperwork,omitempty"`
}

// HasQuizResult reports whether the student already holds a result for the
// given quiz timeline item. A completed quiz is never re-opened.
func (s *Student) HasQuizResult(quizID string) bool {
	for _, r := range s.QuizResults {
		if r.QuizID == quizID {
			return true
		}
	}
	return false
}

// NormalizeClassCode strips hyphens and surrounding whitespace. Class codes
// are compared in normalized form on both sides.
func NormalizeClassCode(code string) string {
	return strings.ReplaceAll(strings.TrimSpace(code), "-", "")
}

func NewNotification(message string) Notification {
	return Notification{
		ID:        uuid.New().String(),
		Message:   message,
		CreatedAt: time.Now(),
	}
}
