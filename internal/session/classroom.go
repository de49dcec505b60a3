package session

import (
	"sync"
	"time"

	"virtual_classroom_backend/internal/model"
	"virtual_classroom_backend/internal/util"

	"go.uber.org/zap"
)

// Role decides whether a session participates (student) or observes
// (instructor/admin). Observers never run timeline, camera-compliance, or
// breakout effects.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// Phase is the classroom engine's tagged session state. Exactly one phase is
// active; each suspending phase owns the timers it started and cancels them
// on exit.
type Phase string

const (
	PhaseWelcome            Phase = "welcome"
	PhasePlaying            Phase = "playing"
	PhaseQuiz               Phase = "quiz"
	PhaseResults            Phase = "results"
	PhaseBreak              Phase = "break"
	PhaseBreakout           Phase = "breakout"
	PhaseSimulationComplete Phase = "simulation-complete"
	PhaseCourseComplete     Phase = "course-complete"
	PhaseEnded              Phase = "ended"
)

const (
	taskWelcome      = "classroom.welcome"
	taskAdvance      = "classroom.advance"
	taskBreakTick    = "classroom.break"
	taskBreakoutTick = "classroom.breakout"
)

// ParticipantControls is the instructor-local per-student status map. It is
// distinct from the camera compliance monitor, which only runs per student.
type ParticipantControls struct {
	Muted           bool `json:"muted"`
	CameraForcedOff bool `json:"cameraForcedOff"`
}

// Classroom drives one participant through the cohort's flattened timeline:
// type-dependent advancement, break/breakout orchestration, quiz gating and
// the camera compliance monitor, with every side effect leaving through the
// event queue.
type Classroom struct {
	mu     sync.Mutex
	id     string
	role   Role
	policy Policy
	sched  *Scheduler
	events *Queue
	player TonePlayer
	log    *zap.Logger

	student *model.Student
	course  *model.Course
	cohort  []model.Student
	camera  *CameraMonitor // nil for observers

	timeline []model.TimelineItem
	index    int
	phase    Phase
	muted    bool
	skips    int // consecutive auto-skips, guards an all-completed timeline

	quizResults map[string]model.QuizResult
	lastResult  *model.QuizResult

	breakRemaining int
	breakResumesAt time.Time

	assignment        Assignment
	inBreakout        bool
	breakoutRoom      string
	breakoutPeers     []string
	breakoutRemaining int
	breakoutRounds    int

	screenShare  bool
	participants map[string]*ParticipantControls
}

func NewClassroom(id string, student *model.Student, course *model.Course, cohort []model.Student, role Role, policy Policy, events *Queue, player TonePlayer, log *zap.Logger) *Classroom {
	sched := NewScheduler()
	c := &Classroom{
		id:           id,
		role:         role,
		policy:       policy,
		sched:        sched,
		events:       events,
		player:       player,
		log:          log,
		student:      student,
		course:       course,
		cohort:       cohort,
		timeline:     course.Timeline(),
		index:        -1,
		phase:        PhaseWelcome,
		quizResults:  make(map[string]model.QuizResult),
		participants: make(map[string]*ParticipantControls),
	}
	if role == RoleStudent {
		c.camera = NewCameraMonitor(sched, player, policy, events, id, student.ID, log)
		for _, r := range student.QuizResults {
			c.quizResults[r.QuizID] = r
		}
	}
	for _, s := range cohort {
		c.participants[s.ID] = &ParticipantControls{}
	}
	return c
}

func (c *Classroom) ID() string { return c.id }
func (c *Classroom) Role() Role { return c.role }

// OwnerID is the participant the session belongs to.
func (c *Classroom) OwnerID() string {
	if c.student == nil {
		return ""
	}
	return c.student.ID
}

// Start enters the classroom. Students sit through the fixed welcome delay
// before the engine advances from -1 to index 0; observers skip straight to
// watching and never get timers scheduled.
func (c *Classroom) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.role != RoleStudent {
		c.phase = PhasePlaying
		if len(c.timeline) > 0 {
			c.index = 0
		}
		return
	}
	if len(c.timeline) == 0 {
		// Empty timeline: nothing to play, no timer scheduled.
		c.phase = PhasePlaying
		return
	}
	if c.policy.WelcomeDelay > 0 {
		c.sched.After(taskWelcome, c.policy.WelcomeDelay, func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.phase == PhaseWelcome {
				c.advanceLocked()
			}
		})
		return
	}
	c.advanceLocked()
}

// Advance moves the timeline forward one item. Public callers use it for the
// explicit resume after a results view is closed.
func (c *Classroom) Advance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advanceLocked()
}

func (c *Classroom) advanceLocked() {
	switch c.phase {
	case PhaseSimulationComplete, PhaseCourseComplete, PhaseEnded:
		return
	}
	if len(c.timeline) == 0 {
		return
	}
	next := c.index + 1
	if next >= len(c.timeline) {
		if c.policy.EndPolicy == EndPolicyHalt {
			c.phase = PhaseCourseComplete
			c.sched.Cancel(taskAdvance)
			c.events.Emit(Event{Type: EventCourseComplete, SessionID: c.id, StudentID: c.studentID()})
			return
		}
		next = 0
	}
	c.index = next
	c.enterItemLocked()
}

func (c *Classroom) enterItemLocked() {
	item := c.timeline[c.index]
	c.events.Emit(Event{
		Type:      EventTimelineAdvanced,
		SessionID: c.id,
		StudentID: c.studentID(),
		Payload:   TimelineAdvancedPayload{Index: c.index, Item: item, Type: item.Type},
	})

	if c.role != RoleStudent {
		// Observers step the timeline manually. Item-entry effects are
		// student-only: no auto-advance timers, no quiz suspension, no
		// breakout generation.
		c.phase = PhasePlaying
		return
	}

	switch item.Type {
	case model.ItemQuiz:
		if _, done := c.quizResults[item.ID]; done {
			// Already attempted: never re-open, advance immediately. The
			// streak counter stops a timeline made solely of completed
			// quizzes from spinning.
			c.skips++
			if c.skips >= len(c.timeline) {
				c.phase = PhaseCourseComplete
				c.events.Emit(Event{Type: EventCourseComplete, SessionID: c.id, StudentID: c.studentID()})
				return
			}
			c.advanceLocked()
			return
		}
		c.skips = 0
		c.phase = PhaseQuiz

	case model.ItemBreak:
		c.skips = 0
		c.phase = PhaseBreak
		c.breakRemaining = c.policy.BreakSeconds
		c.breakResumesAt = time.Now().Add(time.Duration(c.policy.BreakSeconds) * time.Second)
		c.sched.Every(taskBreakTick, c.policy.TickInterval, c.breakTick)

	case model.ItemBreakout:
		c.skips = 0
		c.phase = PhaseBreakout
		if c.assignment == nil {
			c.assignment = AutoAssign(c.cohort)
			if c.assignment != nil {
				c.events.Emit(Event{
					Type:      EventBreakoutsStarted,
					SessionID: c.id,
					StudentID: c.studentID(),
					Payload: BreakoutsStartedPayload{
						Assignments:     c.assignment,
						DurationSeconds: c.policy.BreakoutSeconds,
					},
				})
			}
		}
		c.joinBreakoutLocked()

	default:
		// ai-script, content, google-form, poll and anything unknown play
		// for their duration, or the demo fallback when none is set.
		c.skips = 0
		c.phase = PhasePlaying
		c.sched.After(taskAdvance, c.policy.advanceDelay(item.DurationMinutes), func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.phase == PhasePlaying {
				c.advanceLocked()
			}
		})
	}
}

func (c *Classroom) breakTick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseBreak {
		return
	}
	c.breakRemaining--
	if c.breakRemaining > 0 {
		return
	}
	c.sched.Cancel(taskBreakTick)
	c.player.Play(BreakChime())
	c.advanceLocked()
}

// ReceiveBreakoutAssignment delivers an instructor-initiated broadcast to
// this session. An already-broadcast round is never replaced, so duplicate
// room generation cannot happen.
func (c *Classroom) ReceiveBreakoutAssignment(a Assignment, durationSeconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.assignment != nil {
		return
	}
	c.assignment = a
	if durationSeconds > 0 {
		c.policy.BreakoutSeconds = durationSeconds
	}
	if c.phase == PhaseBreakout {
		c.joinBreakoutLocked()
	}
}

func (c *Classroom) joinBreakoutLocked() {
	if c.role != RoleStudent || c.inBreakout || c.assignment == nil {
		return
	}
	room, peers, ok := c.assignment.RoomFor(c.student.Name)
	if !ok {
		// Name absent from every room: the breakout overlay never triggers;
		// the timeline stays suspended until the round is resolved outside.
		return
	}
	c.inBreakout = true
	c.breakoutRoom = room
	c.breakoutPeers = peers
	c.muted = false // entering a breakout auto-unmutes
	c.breakoutRemaining = c.policy.BreakoutSeconds
	c.sched.Every(taskBreakoutTick, c.policy.TickInterval, c.breakoutTick)
}

func (c *Classroom) breakoutTick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.inBreakout {
		return
	}
	c.breakoutRemaining--
	if c.breakoutRemaining > 0 {
		return
	}
	c.sched.Cancel(taskBreakoutTick)
	c.player.Play(BreakChime())
	c.endBreakoutLocked()
}

func (c *Classroom) endBreakoutLocked() {
	c.inBreakout = false
	c.breakoutRoom = ""
	c.breakoutPeers = nil
	c.assignment = nil
	c.muted = true // re-entering the main room forces mute
	c.breakoutRounds++

	if c.course.ID == model.CourseAEPM {
		if c.breakoutRounds < c.policy.AEPMBreakoutRounds {
			// The AEPM simulation loops the breakout for another round.
			c.assignment = AutoAssign(c.cohort)
			if c.assignment != nil {
				c.events.Emit(Event{
					Type:      EventBreakoutsStarted,
					SessionID: c.id,
					StudentID: c.studentID(),
					Payload: BreakoutsStartedPayload{
						Assignments:     c.assignment,
						DurationSeconds: c.policy.BreakoutSeconds,
					},
				})
			}
			c.joinBreakoutLocked()
			return
		}
		c.phase = PhaseSimulationComplete
		c.events.Emit(Event{Type: EventSimulationComplete, SessionID: c.id, StudentID: c.studentID()})
		return
	}
	c.advanceLocked()
}

// CurrentItem returns the timeline item in play, if any.
func (c *Classroom) CurrentItem() (model.TimelineItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index < 0 || c.index >= len(c.timeline) {
		return model.TimelineItem{}, false
	}
	return c.timeline[c.index], true
}

// SubmitQuiz grades the outstanding quiz and suspends on the results view.
// forced marks timer-expiry submissions so the host can distinguish policy
// enforcement from a user action. Submission strictly precedes resumption.
func (c *Classroom) SubmitQuiz(selected map[string]string, forced bool) (model.QuizResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseQuiz {
		return model.QuizResult{}, util.ErrNoQuizOutstanding
	}
	item := c.timeline[c.index]
	result := ScoreQuiz(item, selected)
	c.quizResults[item.ID] = result
	c.lastResult = &result
	c.events.Emit(Event{
		Type:      EventQuizSubmitted,
		SessionID: c.id,
		StudentID: c.studentID(),
		Payload:   QuizSubmittedPayload{Result: result, Forced: forced},
	})
	c.phase = PhaseResults
	return result, nil
}

// CloseResults dismisses the results view and explicitly resumes the
// timeline. Blocked while the camera lock is in force.
func (c *Classroom) CloseResults() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseResults {
		return util.ErrInvalidStep
	}
	if c.camera != nil && c.camera.Locked() {
		return util.ErrCameraLocked
	}
	c.advanceLocked()
	return nil
}

// SetCameraEnabled feeds camera on/off edges to the compliance monitor.
// Observer sessions carry no monitor and ignore the call.
func (c *Classroom) SetCameraEnabled(on bool) {
	if c.camera == nil {
		return
	}
	c.camera.SetCameraEnabled(on)
}

func (c *Classroom) CameraState() CameraState {
	if c.camera == nil {
		return CameraOK
	}
	return c.camera.State()
}

func (c *Classroom) SetMuted(muted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = muted
}

// ToggleScreenShare flips the observer's screen share and reports the new
// state. The share is the one media resource the core itself acquires, so
// Leave must release it.
func (c *Classroom) ToggleScreenShare() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.role == RoleStudent {
		return false, util.ErrObserverOnly
	}
	c.screenShare = !c.screenShare
	return c.screenShare, nil
}

// SetParticipantMuted mutates the instructor-local status map, not the
// student's own compliance monitor.
func (c *Classroom) SetParticipantMuted(studentID string, muted bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.role == RoleStudent {
		return util.ErrObserverOnly
	}
	p, ok := c.participants[studentID]
	if !ok {
		return util.ErrUnknownParticipant
	}
	p.Muted = muted
	return nil
}

func (c *Classroom) SetParticipantCameraForcedOff(studentID string, off bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.role == RoleStudent {
		return util.ErrObserverOnly
	}
	p, ok := c.participants[studentID]
	if !ok {
		return util.ErrUnknownParticipant
	}
	p.CameraForcedOff = off
	return nil
}

// RemoveStudent emits the terminal removal event for the given participant.
// The host must end that student's session on receipt.
func (c *Classroom) RemoveStudent(studentID, reason, details string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.role == RoleStudent {
		return util.ErrObserverOnly
	}
	if _, ok := c.participants[studentID]; !ok {
		return util.ErrUnknownParticipant
	}
	delete(c.participants, studentID)
	c.events.Emit(Event{
		Type:      EventStudentRemoved,
		SessionID: c.id,
		StudentID: studentID,
		Payload:   StudentRemovedPayload{Reason: reason, Details: details},
	})
	return nil
}

// StartBreakouts lets an observer broadcast a round explicitly. The caller
// (service layer) fans the assignment out to every cohort session.
func (c *Classroom) StartBreakouts(a Assignment, durationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.role == RoleStudent {
		return util.ErrObserverOnly
	}
	if durationSeconds <= 0 {
		durationSeconds = c.policy.BreakoutSeconds
	}
	c.events.Emit(Event{
		Type:      EventBreakoutsStarted,
		SessionID: c.id,
		Payload:   BreakoutsStartedPayload{Assignments: a, DurationSeconds: durationSeconds},
	})
	return nil
}

// Leave tears the session down: every timer cancelled, the audible alert
// loop stopped, and the screen share released, synchronously, before the
// ended event goes out. Student camera/mic streams are caller-owned and are
// not touched here.
func (c *Classroom) Leave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseEnded {
		return
	}
	c.phase = PhaseEnded
	if c.camera != nil {
		c.camera.Stop()
	}
	c.screenShare = false
	c.sched.Stop()
	c.events.Emit(Event{Type: EventSessionEnded, SessionID: c.id, StudentID: c.studentID()})
}

func (c *Classroom) studentID() string {
	if c.student == nil {
		return ""
	}
	return c.student.ID
}

// Snapshot is the render-ready view of the session returned to clients.
type Snapshot struct {
	SessionID         string                         `json:"sessionId"`
	Role              Role                           `json:"role"`
	Phase             Phase                          `json:"phase"`
	Index             int                            `json:"index"`
	Item              *model.TimelineItem            `json:"item,omitempty"`
	Muted             bool                           `json:"muted"`
	CameraState       CameraState                    `json:"cameraState"`
	BreakRemaining    int                            `json:"breakRemaining,omitempty"`
	BreakResumesAt    *time.Time                     `json:"breakResumesAt,omitempty"`
	InBreakout        bool                           `json:"inBreakout"`
	BreakoutRoom      string                         `json:"breakoutRoom,omitempty"`
	BreakoutPeers     []string                       `json:"breakoutPeers,omitempty"`
	BreakoutRemaining int                            `json:"breakoutRemaining,omitempty"`
	BreakoutRounds    int                            `json:"breakoutRounds"`
	ScreenShare       bool                           `json:"screenShare"`
	LastResult        *model.QuizResult              `json:"lastResult,omitempty"`
	Participants      map[string]ParticipantControls `json:"participants,omitempty"`
}

func (c *Classroom) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		SessionID:         c.id,
		Role:              c.role,
		Phase:             c.phase,
		Index:             c.index,
		Muted:             c.muted,
		CameraState:       CameraOK,
		InBreakout:        c.inBreakout,
		BreakoutRoom:      c.breakoutRoom,
		BreakoutPeers:     append([]string(nil), c.breakoutPeers...),
		BreakoutRemaining: c.breakoutRemaining,
		BreakoutRounds:    c.breakoutRounds,
		ScreenShare:       c.screenShare,
		LastResult:        c.lastResult,
	}
	if c.camera != nil {
		snap.CameraState = c.camera.State()
	}
	if c.index >= 0 && c.index < len(c.timeline) {
		item := c.timeline[c.index]
		snap.Item = &item
	}
	if c.phase == PhaseBreak {
		snap.BreakRemaining = c.breakRemaining
		t := c.breakResumesAt
		snap.BreakResumesAt = &t
	}
	if c.role != RoleStudent {
		snap.Participants = make(map[string]ParticipantControls, len(c.participants))
		for id, p := range c.participants {
			snap.Participants[id] = *p
		}
	}
	return snap
}
