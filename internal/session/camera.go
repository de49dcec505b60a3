package session

import (
	"sync"

	"go.uber.org/zap"
)

// CameraState is the three-state camera-presence compliance variant. It is
// ephemeral to the session and never persisted.
type CameraState string

const (
	CameraOK      CameraState = "none"
	CameraWarning CameraState = "warning"
	CameraLocked  CameraState = "locked"
)

const (
	taskCameraGrace = "camera.grace"
	taskCameraBeep  = "camera.beep"
)

// CameraMonitor is the edge-triggered compliance state machine, keyed only on
// the boolean camera-enabled flag. It runs for students, never for
// instructor/admin observers.
//
//	none --off--> warning (alert loop + grace timer)
//	warning --grace expiry, still off--> locked
//	warning|locked --on--> none (timers cancelled, alert stopped)
type CameraMonitor struct {
	mu        sync.Mutex
	state     CameraState
	enabled   bool
	sched     *Scheduler
	alarm     *alarm
	policy    Policy
	events    *Queue
	sessionID string
	studentID string
	log       *zap.Logger
}

func NewCameraMonitor(sched *Scheduler, player TonePlayer, policy Policy, events *Queue, sessionID, studentID string, log *zap.Logger) *CameraMonitor {
	return &CameraMonitor{
		state:     CameraOK,
		enabled:   true,
		sched:     sched,
		alarm:     newAlarm(sched, player, taskCameraBeep),
		policy:    policy,
		events:    events,
		sessionID: sessionID,
		studentID: studentID,
		log:       log,
	}
}

func (m *CameraMonitor) State() CameraState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetCameraEnabled feeds the camera on/off edge into the monitor. Repeated
// calls with the same value are no-ops.
func (m *CameraMonitor) SetCameraEnabled(on bool) {
	m.mu.Lock()
	if on == m.enabled {
		m.mu.Unlock()
		return
	}
	m.enabled = on

	if !on {
		m.state = CameraWarning
		m.alarm.start(m.policy.BeepInterval)
		m.sched.After(taskCameraGrace, m.policy.CameraGrace, m.graceExpired)
		m.emitLocked()
		m.mu.Unlock()
		return
	}

	// Restored from warning or locked: cancel both timers, stop the alert.
	m.sched.Cancel(taskCameraGrace)
	m.alarm.stop()
	m.state = CameraOK
	m.emitLocked()
	m.mu.Unlock()
}

func (m *CameraMonitor) graceExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enabled || m.state != CameraWarning {
		return
	}
	m.state = CameraLocked
	m.log.Warn("camera compliance lockout",
		zap.String("session", m.sessionID),
		zap.String("student", m.studentID))
	m.emitLocked()
}

// Locked blocks voluntary navigation; the only affordance is restoring the
// camera.
func (m *CameraMonitor) Locked() bool {
	return m.State() == CameraLocked
}

// Stop silences the alert loop and cancels the grace timer, for session
// teardown.
func (m *CameraMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sched.Cancel(taskCameraGrace)
	m.alarm.stop()
}

func (m *CameraMonitor) emitLocked() {
	m.events.Emit(Event{
		Type:      EventCameraCompliance,
		SessionID: m.sessionID,
		StudentID: m.studentID,
		Payload:   CameraCompliancePayload{State: m.state},
	})
}
