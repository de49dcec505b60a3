package session

import (
	"testing"
	"time"

	"virtual_classroom_backend/internal/model"
	"virtual_classroom_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testPolicy shrinks every delay to milliseconds so state machine tests run
// on real timers without slowing the suite down.
func testPolicy() Policy {
	p := DefaultPolicy()
	p.WelcomeDelay = 0
	p.FallbackAdvance = 15 * time.Millisecond
	p.BreakSeconds = 2
	p.BreakoutSeconds = 1
	p.CameraGrace = 25 * time.Millisecond
	p.BeepInterval = 5 * time.Millisecond
	p.SelfieVerifyDelay = 10 * time.Millisecond
	p.VoiceAnalysisDelay = 10 * time.Millisecond
	p.TickInterval = 5 * time.Millisecond
	return p
}

func testCourse(items ...model.TimelineItem) *model.Course {
	return &model.Course{
		ID:   "course-dwi",
		Name: "DWI Education Program",
		Modules: []model.CourseModule{
			{ID: "m1", Name: "Module 1", Items: items},
		},
	}
}

func testStudent() *model.Student {
	return &model.Student{
		ID:     "stu-1",
		Name:   "Jordan Michaels",
		Status: model.StatusInProgress,
	}
}

func newTestClassroom(t *testing.T, course *model.Course, student *model.Student, cohort []model.Student, role Role, policy Policy) (*Classroom, *Queue) {
	t.Helper()
	events := NewQueue(128, zap.NewNop())
	c := NewClassroom("sess-1", student, course, cohort, role, policy, events, NullPlayer{}, zap.NewNop())
	t.Cleanup(c.Leave)
	return c, events
}

func collectEvents(q *Queue) []Event {
	var out []Event
	for {
		select {
		case e := <-q.Events():
			out = append(out, e)
		default:
			return out
		}
	}
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}

func TestWelcomeDelayThenFirstItem(t *testing.T) {
	policy := testPolicy()
	policy.WelcomeDelay = 50 * time.Millisecond
	c, _ := newTestClassroom(t, testCourse(
		model.TimelineItem{ID: "i1", Type: model.ItemAIScript},
	), testStudent(), nil, RoleStudent, policy)

	c.Start()
	snap := c.Snapshot()
	assert.Equal(t, PhaseWelcome, snap.Phase)
	assert.Equal(t, -1, snap.Index)

	assert.Eventually(t, func() bool {
		s := c.Snapshot()
		return s.Phase == PhasePlaying && s.Index == 0
	}, time.Second, 5*time.Millisecond)
}

func TestTimelineWrapsPastLastItem(t *testing.T) {
	c, _ := newTestClassroom(t, testCourse(
		model.TimelineItem{ID: "i1", Type: model.ItemAIScript},
		model.TimelineItem{ID: "i2", Type: model.ItemContent},
	), testStudent(), nil, RoleStudent, testPolicy())

	c.Start()
	assert.Equal(t, 0, c.Snapshot().Index)

	assert.Eventually(t, func() bool { return c.Snapshot().Index == 1 }, time.Second, 5*time.Millisecond)
	// (i+1) mod len: past the last item the index wraps to 0.
	assert.Eventually(t, func() bool { return c.Snapshot().Index == 0 }, time.Second, 5*time.Millisecond)
}

func TestEmptyTimelineSchedulesNothing(t *testing.T) {
	c, _ := newTestClassroom(t, testCourse(), testStudent(), nil, RoleStudent, testPolicy())

	c.Start()
	snap := c.Snapshot()
	assert.Equal(t, PhasePlaying, snap.Phase)
	assert.Equal(t, -1, snap.Index)
	assert.Nil(t, snap.Item)
	assert.False(t, c.sched.Active(taskWelcome))
	assert.False(t, c.sched.Active(taskAdvance))
}

func TestEndPolicyHaltCompletesCourse(t *testing.T) {
	policy := testPolicy()
	policy.EndPolicy = EndPolicyHalt
	c, events := newTestClassroom(t, testCourse(
		model.TimelineItem{ID: "i1", Type: model.ItemAIScript},
	), testStudent(), nil, RoleStudent, policy)

	c.Start()
	assert.Eventually(t, func() bool {
		return c.Snapshot().Phase == PhaseCourseComplete
	}, time.Second, 5*time.Millisecond)

	assert.Contains(t, eventTypes(collectEvents(events)), EventCourseComplete)
	// Terminal: further advances are ignored.
	c.Advance()
	assert.Equal(t, PhaseCourseComplete, c.Snapshot().Phase)
}

func TestObserverSkipsWelcomeAndTimers(t *testing.T) {
	c, _ := newTestClassroom(t, testCourse(
		model.TimelineItem{ID: "i1", Type: model.ItemAIScript},
	), testStudent(), nil, RoleInstructor, testPolicy())

	c.Start()
	snap := c.Snapshot()
	assert.Equal(t, PhasePlaying, snap.Phase)
	assert.Equal(t, 0, snap.Index)
	assert.False(t, c.sched.Active(taskWelcome))
	assert.False(t, c.sched.Active(taskAdvance))
}

func TestObserverAdvanceSkipsItemEntryEffects(t *testing.T) {
	policy := testPolicy()
	c, events := newTestClassroom(t, testCourse(
		model.TimelineItem{ID: "i1", Type: model.ItemAIScript},
		model.TimelineItem{ID: "i2", Type: model.ItemQuiz, Questions: []model.Question{
			{ID: "q1", Options: []model.Option{{ID: "q1a"}}, CorrectOptionID: "q1a"},
		}},
		model.TimelineItem{ID: "i3", Type: model.ItemBreakout},
	), testStudent(), []model.Student{*testStudent()}, RoleInstructor, policy)

	c.Start()

	// Stepping onto the quiz item never suspends an observer.
	c.Advance()
	snap := c.Snapshot()
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, PhasePlaying, snap.Phase)
	_, err := c.SubmitQuiz(map[string]string{"q1": "q1a"}, false)
	assert.ErrorIs(t, err, util.ErrNoQuizOutstanding)

	// Stepping onto the breakout item never generates or broadcasts a round.
	c.Advance()
	snap = c.Snapshot()
	assert.Equal(t, 2, snap.Index)
	assert.Equal(t, PhasePlaying, snap.Phase)
	assert.False(t, snap.InBreakout)
	assert.NotContains(t, eventTypes(collectEvents(events)), EventBreakoutsStarted)

	// No auto-advance timer ever runs for an observer.
	assert.False(t, c.sched.Active(taskAdvance))
	time.Sleep(3 * policy.FallbackAdvance)
	assert.Equal(t, 2, c.Snapshot().Index)
}

func TestQuizSuspendsAndSubmissionResumes(t *testing.T) {
	c, events := newTestClassroom(t, testCourse(
		quizItem(),
		model.TimelineItem{ID: "i2", Type: model.ItemContent},
	), testStudent(), nil, RoleStudent, testPolicy())

	c.Start()
	require.Equal(t, PhaseQuiz, c.Snapshot().Phase)

	// Suspended: no advance timer runs while the quiz is open.
	time.Sleep(3 * testPolicy().FallbackAdvance)
	assert.Equal(t, PhaseQuiz, c.Snapshot().Phase)

	result, err := c.SubmitQuiz(map[string]string{"q1": "q1b"}, false)
	require.NoError(t, err)
	assert.Equal(t, "50%", result.Score)
	assert.Equal(t, PhaseResults, c.Snapshot().Phase)

	var submitted *QuizSubmittedPayload
	for _, e := range collectEvents(events) {
		if e.Type == EventQuizSubmitted {
			p := e.Payload.(QuizSubmittedPayload)
			submitted = &p
		}
	}
	require.NotNil(t, submitted)
	assert.False(t, submitted.Forced)
	assert.Equal(t, "50%", submitted.Result.Score)

	require.NoError(t, c.CloseResults())
	snap := c.Snapshot()
	assert.Equal(t, PhasePlaying, snap.Phase)
	assert.Equal(t, 1, snap.Index)
}

func TestSubmitQuizOutsideQuizPhase(t *testing.T) {
	c, _ := newTestClassroom(t, testCourse(
		model.TimelineItem{ID: "i1", Type: model.ItemAIScript},
	), testStudent(), nil, RoleStudent, testPolicy())

	c.Start()
	_, err := c.SubmitQuiz(nil, false)
	assert.ErrorIs(t, err, util.ErrNoQuizOutstanding)
}

func TestForcedSubmissionMarked(t *testing.T) {
	c, events := newTestClassroom(t, testCourse(quizItem()), testStudent(), nil, RoleStudent, testPolicy())

	c.Start()
	_, err := c.SubmitQuiz(nil, true)
	require.NoError(t, err)

	found := false
	for _, e := range collectEvents(events) {
		if e.Type == EventQuizSubmitted {
			found = true
			assert.True(t, e.Payload.(QuizSubmittedPayload).Forced)
		}
	}
	assert.True(t, found)
}

func TestCompletedQuizIsSkipped(t *testing.T) {
	student := testStudent()
	student.QuizResults = []model.QuizResult{{QuizID: "quiz-1", Score: "100%"}}
	c, _ := newTestClassroom(t, testCourse(
		quizItem(),
		model.TimelineItem{ID: "i2", Type: model.ItemContent},
	), student, nil, RoleStudent, testPolicy())

	c.Start()
	snap := c.Snapshot()
	assert.Equal(t, PhasePlaying, snap.Phase)
	assert.Equal(t, 1, snap.Index)
}

func TestAllCompletedTimelineEndsInsteadOfSpinning(t *testing.T) {
	student := testStudent()
	student.QuizResults = []model.QuizResult{{QuizID: "quiz-1", Score: "100%"}}
	c, _ := newTestClassroom(t, testCourse(quizItem()), student, nil, RoleStudent, testPolicy())

	c.Start()
	assert.Equal(t, PhaseCourseComplete, c.Snapshot().Phase)
}

func TestBreakCountsDownAndResumes(t *testing.T) {
	c, _ := newTestClassroom(t, testCourse(
		model.TimelineItem{ID: "b1", Type: model.ItemBreak},
		model.TimelineItem{ID: "i2", Type: model.ItemContent},
	), testStudent(), nil, RoleStudent, testPolicy())

	c.Start()
	snap := c.Snapshot()
	require.Equal(t, PhaseBreak, snap.Phase)
	assert.Equal(t, testPolicy().BreakSeconds, snap.BreakRemaining)
	require.NotNil(t, snap.BreakResumesAt)

	assert.Eventually(t, func() bool {
		s := c.Snapshot()
		return s.Phase == PhasePlaying && s.Index == 1
	}, time.Second, 5*time.Millisecond)
}

func TestAEPMBreakoutLoopsExactlyConfiguredRounds(t *testing.T) {
	course := &model.Course{
		ID:   model.CourseAEPM,
		Name: "AEPM Intervention Program",
		Modules: []model.CourseModule{
			{ID: "m1", Items: []model.TimelineItem{{ID: "br1", Type: model.ItemBreakout}}},
		},
	}
	student := testStudent()
	cohort := []model.Student{*student, {ID: "stu-2", Name: "Casey Nguyen", Status: model.StatusInProgress}}
	c, events := newTestClassroom(t, course, student, cohort, RoleStudent, testPolicy())

	c.Start()
	assert.Eventually(t, func() bool {
		return c.Snapshot().Phase == PhaseSimulationComplete
	}, 2*time.Second, 5*time.Millisecond)

	snap := c.Snapshot()
	assert.Equal(t, 2, snap.BreakoutRounds)
	assert.False(t, snap.InBreakout)

	types := eventTypes(collectEvents(events))
	started := 0
	for _, typ := range types {
		if typ == EventBreakoutsStarted {
			started++
		}
	}
	assert.Equal(t, 2, started)
	assert.Contains(t, types, EventSimulationComplete)
}

func TestBreakoutReturnForcesMute(t *testing.T) {
	policy := testPolicy()
	policy.BreakoutSeconds = 3 // widen the in-breakout window for the assertion
	c, _ := newTestClassroom(t, testCourse(
		model.TimelineItem{ID: "br1", Type: model.ItemBreakout},
		model.TimelineItem{ID: "i2", Type: model.ItemContent},
	), testStudent(), []model.Student{*testStudent()}, RoleStudent, policy)

	c.SetMuted(true)
	c.Start()

	// Entering the breakout auto-unmutes.
	assert.Eventually(t, func() bool {
		s := c.Snapshot()
		return s.InBreakout && !s.Muted
	}, time.Second, time.Millisecond)

	// Returning to the main room forces mute and resumes the timeline.
	assert.Eventually(t, func() bool {
		s := c.Snapshot()
		return !s.InBreakout && s.Muted && s.Index == 1
	}, time.Second, 5*time.Millisecond)
}

func TestBreakoutAbsentNameNeverJoins(t *testing.T) {
	c, _ := newTestClassroom(t, testCourse(
		model.TimelineItem{ID: "br1", Type: model.ItemBreakout},
	), testStudent(), nil, RoleStudent, testPolicy())

	// A broadcast round that does not include this student.
	c.ReceiveBreakoutAssignment(Assignment{"Room 1": {"Casey Nguyen"}}, 1)
	c.Start()

	time.Sleep(50 * time.Millisecond)
	snap := c.Snapshot()
	assert.Equal(t, PhaseBreakout, snap.Phase)
	assert.False(t, snap.InBreakout)
	assert.Empty(t, snap.BreakoutRoom)
}

func TestReceiveAssignmentNeverReplacesActiveRound(t *testing.T) {
	c, _ := newTestClassroom(t, testCourse(
		model.TimelineItem{ID: "br1", Type: model.ItemBreakout},
	), testStudent(), nil, RoleStudent, testPolicy())

	c.ReceiveBreakoutAssignment(Assignment{"Room 1": {"Jordan Michaels"}}, 600)
	c.ReceiveBreakoutAssignment(Assignment{"Room 9": {"Jordan Michaels"}}, 1)

	c.Start()
	snap := c.Snapshot()
	assert.Equal(t, "Room 1", snap.BreakoutRoom)
}

func TestCameraLockBlocksClosingResults(t *testing.T) {
	c, _ := newTestClassroom(t, testCourse(
		quizItem(),
		model.TimelineItem{ID: "i2", Type: model.ItemContent},
	), testStudent(), nil, RoleStudent, testPolicy())

	c.Start()
	_, err := c.SubmitQuiz(map[string]string{"q1": "q1b", "q2": "q2a"}, false)
	require.NoError(t, err)

	c.SetCameraEnabled(false)
	assert.Eventually(t, func() bool { return c.CameraState() == CameraLocked }, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, c.CloseResults(), util.ErrCameraLocked)
	assert.Equal(t, PhaseResults, c.Snapshot().Phase)

	c.SetCameraEnabled(true)
	require.NoError(t, c.CloseResults())
	assert.Equal(t, 1, c.Snapshot().Index)
}

func TestObserverControls(t *testing.T) {
	cohort := []model.Student{
		{ID: "stu-1", Name: "Jordan Michaels", Status: model.StatusInProgress},
		{ID: "stu-2", Name: "Casey Nguyen", Status: model.StatusInProgress},
	}
	observer := &model.Student{ID: "obs-1", Name: "Observer", Status: model.StatusInProgress}
	c, events := newTestClassroom(t, testCourse(
		model.TimelineItem{ID: "i1", Type: model.ItemAIScript},
	), observer, cohort, RoleInstructor, testPolicy())
	c.Start()

	on, err := c.ToggleScreenShare()
	require.NoError(t, err)
	assert.True(t, on)

	require.NoError(t, c.SetParticipantMuted("stu-2", true))
	require.NoError(t, c.SetParticipantCameraForcedOff("stu-2", true))
	assert.ErrorIs(t, c.SetParticipantMuted("stu-9", true), util.ErrUnknownParticipant)

	snap := c.Snapshot()
	assert.True(t, snap.Participants["stu-2"].Muted)
	assert.True(t, snap.Participants["stu-2"].CameraForcedOff)

	require.NoError(t, c.RemoveStudent("stu-2", "policy_violation", "camera refused"))
	assert.ErrorIs(t, c.RemoveStudent("stu-2", "x", ""), util.ErrUnknownParticipant)

	removed := false
	for _, e := range collectEvents(events) {
		if e.Type == EventStudentRemoved {
			removed = true
			assert.Equal(t, "stu-2", e.StudentID)
			assert.Equal(t, "policy_violation", e.Payload.(StudentRemovedPayload).Reason)
		}
	}
	assert.True(t, removed)
}

func TestStudentCannotUseObserverControls(t *testing.T) {
	c, _ := newTestClassroom(t, testCourse(
		model.TimelineItem{ID: "i1", Type: model.ItemAIScript},
	), testStudent(), nil, RoleStudent, testPolicy())
	c.Start()

	_, err := c.ToggleScreenShare()
	assert.ErrorIs(t, err, util.ErrObserverOnly)
	assert.ErrorIs(t, c.SetParticipantMuted("stu-2", true), util.ErrObserverOnly)
	assert.ErrorIs(t, c.RemoveStudent("stu-2", "x", ""), util.ErrObserverOnly)
	assert.ErrorIs(t, c.StartBreakouts(nil, 0), util.ErrObserverOnly)
}

func TestLeaveTearsDownSynchronously(t *testing.T) {
	c, events := newTestClassroom(t, testCourse(
		model.TimelineItem{ID: "i1", Type: model.ItemAIScript},
	), testStudent(), nil, RoleStudent, testPolicy())

	c.Start()
	c.SetCameraEnabled(false) // alert loop running
	c.Leave()

	snap := c.Snapshot()
	assert.Equal(t, PhaseEnded, snap.Phase)
	assert.False(t, c.sched.Active(taskAdvance))
	assert.False(t, c.sched.Active(taskCameraBeep))
	assert.False(t, c.sched.Active(taskCameraGrace))

	types := eventTypes(collectEvents(events))
	assert.Contains(t, types, EventSessionEnded)

	// Leave is idempotent.
	c.Leave()
	assert.NotContains(t, eventTypes(collectEvents(events)), EventSessionEnded)
}
