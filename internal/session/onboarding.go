package session

import (
	"strings"
	"sync"
	"time"

	"virtual_classroom_backend/internal/model"
	"virtual_classroom_backend/internal/util"

	"go.uber.org/zap"
)

// OnboardingStep enumerates the identity/compliance flow states, roughly in
// traversal order plus the terminal/redirect branches.
type OnboardingStep string

const (
	StepCode             OnboardingStep = "code"
	StepVerify           OnboardingStep = "verify"
	StepCountdown        OnboardingStep = "countdown"
	StepPaperwork        OnboardingStep = "paperwork"
	StepSelfie           OnboardingStep = "selfie"
	StepVoice            OnboardingStep = "voice"
	StepTerms            OnboardingStep = "terms"
	StepEntered          OnboardingStep = "entered"
	StepCompleted        OnboardingStep = "completed"
	StepReschedule       OnboardingStep = "reschedule"
	StepInactive         OnboardingStep = "inactive"
	StepWithdrawn        OnboardingStep = "withdrawn"
	StepMakeupRequired   OnboardingStep = "makeup-required"
	StepIdentityMismatch OnboardingStep = "identity-mismatch"
)

// VoicePhase is the two-phase hardware check inside the voice step.
type VoicePhase string

const (
	VoicePhaseSound VoicePhase = "sound" // self-attested test tone
	VoicePhaseMic   VoicePhase = "mic"   // recorded clip + simulated analysis
	VoicePhaseDone  VoicePhase = "done"
)

const (
	taskCountdownTick = "onboarding.countdown"
	taskSelfieVerify  = "onboarding.selfie"
	taskVoiceAnalysis = "onboarding.voice"
)

// Directory resolves a normalized class code to its student and course. The
// roster is host-owned; the machine only reads it.
type Directory interface {
	FindByClassCode(code string) (*model.Student, *model.Course, bool)
}

// Agreements are the three required checkboxes on the terms screen.
type Agreements struct {
	Camera     bool `json:"camera"`
	MutePolicy bool `json:"mutePolicy"`
	Recording  bool `json:"recording"`
}

func (a Agreements) All() bool {
	return a.Camera && a.MutePolicy && a.Recording
}

// Onboarding is the linear-with-branches identity flow: code verification →
// human confirmation → class countdown → paperwork → selfie → voice
// verification → terms → entry, with status-driven terminal branches.
type Onboarding struct {
	mu     sync.Mutex
	id     string
	dir    Directory
	policy Policy
	sched  *Scheduler
	events *Queue
	log    *zap.Logger
	now    func() time.Time

	step       OnboardingStep
	student    *model.Student
	course     *model.Course
	lastError  string
	remaining  time.Duration

	selfieVerifying bool
	selfieDataURL   string
	voicePhase      VoicePhase
	voiceAnalyzing  bool
	voiceAudioURL   string
	videoWatched    bool
	agreements      Agreements
}

func NewOnboarding(id string, dir Directory, policy Policy, sched *Scheduler, events *Queue, log *zap.Logger) *Onboarding {
	return &Onboarding{
		id:         id,
		dir:        dir,
		policy:     policy,
		sched:      sched,
		events:     events,
		log:        log,
		now:        time.Now,
		step:       StepCode,
		voicePhase: VoicePhaseSound,
	}
}

func (o *Onboarding) Step() OnboardingStep {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.step
}

func (o *Onboarding) Student() *model.Student {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.student
}

func (o *Onboarding) Course() *model.Course {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.course
}

func (o *Onboarding) LastError() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastError
}

// SubmitCode looks the entered class code up (hyphens stripped on both sides)
// and branches purely on the matched student's status. A miss stays on the
// code step with a retryable inline error.
func (o *Onboarding) SubmitCode(code string) OnboardingStep {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.step != StepCode {
		return o.step
	}
	student, course, ok := o.dir.FindByClassCode(model.NormalizeClassCode(code))
	if !ok {
		o.lastError = "Invalid class code. Please check your welcome email and try again."
		return o.step
	}
	o.lastError = ""
	o.student = student
	o.course = course
	switch student.Status {
	case model.StatusCompleted:
		o.step = StepCompleted
	case model.StatusRescheduleRequired:
		o.step = StepReschedule
	case model.StatusInactive:
		o.step = StepInactive
	case model.StatusWithdrawn:
		o.step = StepWithdrawn
	case model.StatusMakeupRequired:
		o.step = StepMakeupRequired
	default:
		o.step = StepVerify
	}
	return o.step
}

// ConfirmIdentity is the "is this you?" gate. "No" returns to the code step
// and clears the found student; no identity check happens here.
func (o *Onboarding) ConfirmIdentity(confirmed bool) OnboardingStep {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.step != StepVerify {
		return o.step
	}
	if !confirmed {
		o.student = nil
		o.course = nil
		o.step = StepCode
		return o.step
	}
	o.step = StepCountdown
	o.startCountdownLocked()
	return o.step
}

// NextClassStart computes the next class boundary: today at startHour if not
// yet past, else the same time tomorrow.
func NextClassStart(now time.Time, startHour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), startHour, 0, 0, 0, now.Location())
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (o *Onboarding) startCountdownLocked() {
	recompute := func() {
		o.mu.Lock()
		o.remaining = time.Until(NextClassStart(o.now(), o.policy.ClassStartHour))
		o.mu.Unlock()
	}
	o.remaining = time.Until(NextClassStart(o.now(), o.policy.ClassStartHour))
	o.sched.Every(taskCountdownTick, o.policy.TickInterval, recompute)
}

// CountdownRemaining is the live time to the next class start, recomputed at
// tick resolution while the countdown step is active.
func (o *Onboarding) CountdownRemaining() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.remaining
}

// PaperworkComplete evaluates the program-specific completeness rule for the
// found student. It gates the countdown-screen button label and decides
// whether the paperwork step is skipped.
func (o *Onboarding) PaperworkComplete() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.paperworkCompleteLocked()
}

func (o *Onboarding) paperworkCompleteLocked() bool {
	if o.student == nil || o.course == nil {
		return false
	}
	return o.student.Paperwork.Complete(o.course.Name)
}

// Proceed leaves the countdown screen: straight to the selfie step when the
// paperwork is already complete, otherwise through paperwork first.
func (o *Onboarding) Proceed() OnboardingStep {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.step != StepCountdown {
		return o.step
	}
	o.sched.Cancel(taskCountdownTick)
	if o.paperworkCompleteLocked() {
		o.step = StepSelfie
	} else {
		o.step = StepPaperwork
	}
	return o.step
}

// SubmitPaperwork hands the form to the host and advances unconditionally.
func (o *Onboarding) SubmitPaperwork(p model.Paperwork) OnboardingStep {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.step != StepPaperwork {
		return o.step
	}
	pw := p
	o.student.Paperwork = &pw
	o.events.Emit(Event{
		Type:      EventPaperworkSubmitted,
		SessionID: o.id,
		StudentID: o.student.ID,
		Payload:   pw,
	})
	o.step = StepSelfie
	return o.step
}

// SubmitSelfie takes the captured frame (a data URL) and runs the simulated
// identity check after a fixed delay: a stored name containing "Fail" routes
// to the mismatch state, anything else marks attendance and proceeds.
func (o *Onboarding) SubmitSelfie(dataURL string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.step != StepSelfie {
		return util.ErrInvalidStep
	}
	if o.selfieVerifying {
		return util.ErrVerificationPending
	}
	if dataURL == "" {
		return util.ErrNoFrameCaptured
	}
	o.selfieVerifying = true
	o.selfieDataURL = dataURL
	o.sched.After(taskSelfieVerify, o.policy.SelfieVerifyDelay, o.finishSelfieVerify)
	return nil
}

func (o *Onboarding) finishSelfieVerify() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.step != StepSelfie || !o.selfieVerifying {
		return
	}
	o.selfieVerifying = false
	if strings.Contains(o.student.Name, "Fail") {
		o.step = StepIdentityMismatch
		o.log.Warn("identity verification mismatch",
			zap.String("onboarding", o.id),
			zap.String("student", o.student.ID))
		return
	}
	o.events.Emit(Event{
		Type:      EventAttendanceMarked,
		SessionID: o.id,
		StudentID: o.student.ID,
	})
	o.step = StepVoice
	o.voicePhase = VoicePhaseSound
}

// RetakePhoto returns from the mismatch state to the selfie step.
func (o *Onboarding) RetakePhoto() OnboardingStep {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.step != StepIdentityMismatch {
		return o.step
	}
	o.step = StepSelfie
	return o.step
}

func (o *Onboarding) VoiceState() (VoicePhase, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.voicePhase, o.voiceAnalyzing
}

// ConfirmSoundHeard is the self-attested speaker check, first of the two
// voice sub-phases.
func (o *Onboarding) ConfirmSoundHeard() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.step != StepVoice || o.voicePhase != VoicePhaseSound {
		return util.ErrInvalidStep
	}
	o.voicePhase = VoicePhaseMic
	return nil
}

// SubmitVoiceRecording takes the recorded clip's blob URL and runs the
// simulated voice print analysis. On success both hardware-check events fire.
func (o *Onboarding) SubmitVoiceRecording(audioURL string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.step != StepVoice || o.voicePhase != VoicePhaseMic {
		return util.ErrInvalidStep
	}
	if o.voiceAnalyzing {
		return util.ErrVerificationPending
	}
	if audioURL == "" {
		return util.ErrNoRecording
	}
	o.voiceAnalyzing = true
	o.voiceAudioURL = audioURL
	o.sched.After(taskVoiceAnalysis, o.policy.VoiceAnalysisDelay, o.finishVoiceAnalysis)
	return nil
}

func (o *Onboarding) finishVoiceAnalysis() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.step != StepVoice || !o.voiceAnalyzing {
		return
	}
	o.voiceAnalyzing = false
	o.voicePhase = VoicePhaseDone
	o.events.Emit(Event{
		Type:      EventVoiceRecordingComplete,
		SessionID: o.id,
		StudentID: o.student.ID,
		Payload:   VoiceRecordingPayload{AudioURL: o.voiceAudioURL},
	})
	o.events.Emit(Event{
		Type:      EventHardwareCheckComplete,
		SessionID: o.id,
		StudentID: o.student.ID,
		Payload:   HardwareCheckPayload{Timestamp: o.now().Format(time.RFC3339)},
	})
}

// ContinueToTerms is enabled once the voice analysis reported success.
func (o *Onboarding) ContinueToTerms() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.step != StepVoice || o.voicePhase != VoicePhaseDone {
		return util.ErrInvalidStep
	}
	o.step = StepTerms
	return nil
}

// VideoEnded unlocks the terms checkboxes; they stay inert until the
// mandatory instructional video played to completion.
func (o *Onboarding) VideoEnded() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.step == StepTerms {
		o.videoWatched = true
	}
}

func (o *Onboarding) SetAgreements(a Agreements) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.step != StepTerms {
		return util.ErrInvalidStep
	}
	if !o.videoWatched {
		return util.ErrVideoNotWatched
	}
	o.agreements = a
	return nil
}

// EnterClassroom finishes onboarding and returns the fully onboarded student
// for the classroom engine.
func (o *Onboarding) EnterClassroom() (*model.Student, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.step != StepTerms {
		return nil, util.ErrInvalidStep
	}
	if !o.videoWatched {
		return nil, util.ErrVideoNotWatched
	}
	if !o.agreements.All() {
		return nil, util.ErrTermsNotAccepted
	}
	o.step = StepEntered
	o.sched.Stop()
	return o.student, nil
}

// MakeupFeeCents is the course-configured makeup fee, falling back to the
// policy default.
func (o *Onboarding) MakeupFeeCents() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.course != nil && o.course.MakeupFeeCents > 0 {
		return o.course.MakeupFeeCents
	}
	return o.policy.MakeupFeeCents
}

// PayMakeupFee settles the makeup fee and re-enters the normal flow at the
// verify step.
func (o *Onboarding) PayMakeupFee() (OnboardingStep, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.step != StepMakeupRequired {
		return o.step, util.ErrInvalidStep
	}
	o.events.Emit(Event{
		Type:      EventMakeupFeePaid,
		SessionID: o.id,
		StudentID: o.student.ID,
		Payload:   map[string]any{"feeCents": o.makeupFeeCentsLocked()},
	})
	o.step = StepVerify
	return o.step, nil
}

func (o *Onboarding) makeupFeeCentsLocked() int {
	if o.student != nil && o.student.MakeupSession != nil && o.student.MakeupSession.FeeCents > 0 {
		return o.student.MakeupSession.FeeCents
	}
	if o.course != nil && o.course.MakeupFeeCents > 0 {
		return o.course.MakeupFeeCents
	}
	return o.policy.MakeupFeeCents
}

// MakeupDetails describes the specific missed module owed and the fee to
// settle it, shown on the makeup-required screen.
type MakeupDetails struct {
	ModuleID   string    `json:"moduleId,omitempty"`
	ModuleName string    `json:"moduleName,omitempty"`
	Date       time.Time `json:"date"`
	FeeCents   int       `json:"feeCents"`
}

// MakeupDetails resolves the missed module from the student's makeup session,
// falling back to the course catalog for the module name.
func (o *Onboarding) MakeupDetails() MakeupDetails {
	o.mu.Lock()
	defer o.mu.Unlock()
	d := MakeupDetails{FeeCents: o.makeupFeeCentsLocked()}
	if o.student == nil || o.student.MakeupSession == nil {
		return d
	}
	ms := o.student.MakeupSession
	d.ModuleID = ms.ModuleID
	d.ModuleName = ms.ModuleName
	d.Date = ms.Date
	if d.ModuleName == "" && o.course != nil {
		if m := o.course.FindModule(ms.ModuleID); m != nil {
			d.ModuleName = m.Name
		}
	}
	return d
}

// Reset navigates back to the code step from any non-terminal point. Device
// or permission failures are recoverable by going back and retrying.
func (o *Onboarding) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sched.Cancel(taskCountdownTick)
	o.sched.Cancel(taskSelfieVerify)
	o.sched.Cancel(taskVoiceAnalysis)
	o.step = StepCode
	o.student = nil
	o.course = nil
	o.lastError = ""
	o.selfieVerifying = false
	o.voicePhase = VoicePhaseSound
	o.voiceAnalyzing = false
	o.videoWatched = false
	o.agreements = Agreements{}
}
