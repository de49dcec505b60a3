package repository

import (
	"testing"

	"virtual_classroom_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededRoster() *RosterRepository {
	r := NewRosterRepository()
	SeedDemo(r)
	return r
}

func TestFindByClassCodeNormalized(t *testing.T) {
	r := seededRoster()

	student, course, ok := r.FindByClassCode(model.NormalizeClassCode("A83K-9B1P"))
	require.True(t, ok)
	assert.Equal(t, "Jordan Michaels", student.Name)
	assert.Equal(t, "course-dwi", course.ID)

	// Stored codes carry hyphens; lookup works on the normalized form.
	_, _, ok = r.FindByClassCode("A83K9B1P")
	assert.True(t, ok)

	_, _, ok = r.FindByClassCode("NOPE0000")
	assert.False(t, ok)
}

func TestCohortGrouping(t *testing.T) {
	r := seededRoster()

	cohort := r.Cohort("cohort-tue-am")
	names := make(map[string]bool, len(cohort))
	for _, s := range cohort {
		names[s.Name] = true
	}
	assert.True(t, names["Jordan Michaels"])
	assert.True(t, names["Casey Nguyen"])
	assert.False(t, names["Riley Okafor"]) // AEPM cohort

	assert.Empty(t, r.Cohort("cohort-none"))
}

func TestAppendQuizResultIdempotentPerQuiz(t *testing.T) {
	r := seededRoster()

	r.AppendQuizResult("stu-001", model.QuizResult{QuizID: "dwi-m1-i3", Score: "50%"})
	r.AppendQuizResult("stu-001", model.QuizResult{QuizID: "dwi-m1-i3", Score: "100%"})

	s, err := r.GetStudent("stu-001")
	require.NoError(t, err)
	require.Len(t, s.QuizResults, 1)
	assert.Equal(t, "50%", s.QuizResults[0].Score) // first submission wins

	r.AppendQuizResult("stu-missing", model.QuizResult{QuizID: "x"})
}

func TestMarkAttendance(t *testing.T) {
	r := seededRoster()

	assert.False(t, r.AttendanceMarked("stu-001"))
	r.MarkAttendance("stu-001")
	assert.True(t, r.AttendanceMarked("stu-001"))

	r.MarkAttendance("stu-missing")
	assert.False(t, r.AttendanceMarked("stu-missing"))
}

func TestSetStatusAndNotifications(t *testing.T) {
	r := seededRoster()

	r.SetStatus("stu-005", model.StatusInProgress)
	s, err := r.GetStudent("stu-005")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, s.Status)

	r.AddNotification("stu-005", "Makeup fee received")
	require.Len(t, s.Notifications, 1)
	assert.Equal(t, "Makeup fee received", s.Notifications[0].Message)
	assert.False(t, s.Notifications[0].Read)
}

func TestSetPaperworkCopies(t *testing.T) {
	r := seededRoster()

	p := model.Paperwork{DOB: "1990-04-12"}
	r.SetPaperwork("stu-001", p)
	p.DOB = "mutated"

	s, err := r.GetStudent("stu-001")
	require.NoError(t, err)
	require.NotNil(t, s.Paperwork)
	assert.Equal(t, "1990-04-12", s.Paperwork.DOB)
}
