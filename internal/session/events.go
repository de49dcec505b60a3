package session

import (
	"sync"
	"time"

	"virtual_classroom_backend/internal/model"

	"go.uber.org/zap"
)

// EventType enumerates everything the session core reports outward. The host
// application subscribes to the queue and owns persistence; the core never
// mutates Student/Course data directly.
type EventType string

const (
	EventQuizSubmitted          EventType = "quiz_submitted"
	EventAttendanceMarked       EventType = "attendance_marked"
	EventPaperworkSubmitted     EventType = "paperwork_submitted"
	EventVoiceRecordingComplete EventType = "voice_recording_complete"
	EventHardwareCheckComplete  EventType = "hardware_check_complete"
	EventBreakoutsStarted       EventType = "breakouts_started"
	EventStudentRemoved         EventType = "student_removed"
	EventMakeupFeePaid          EventType = "makeup_fee_paid"
	EventTimelineAdvanced       EventType = "timeline_advanced"
	EventCameraCompliance       EventType = "camera_compliance"
	EventChatExchange           EventType = "chat_exchange"
	EventSessionEnded           EventType = "session_ended"
	EventCourseComplete         EventType = "course_complete"
	EventSimulationComplete     EventType = "simulation_complete"
)

type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"sessionId,omitempty"`
	StudentID string    `json:"studentId,omitempty"`
	At        time.Time `json:"at"`
	Payload   any       `json:"payload,omitempty"`
}

// Payloads for the side-effecting events. Informational events carry their
// snapshot types directly.

type QuizSubmittedPayload struct {
	Result model.QuizResult `json:"result"`
	Forced bool             `json:"forced"`
}

type VoiceRecordingPayload struct {
	AudioURL string `json:"audioUrl"`
}

type HardwareCheckPayload struct {
	Timestamp string `json:"timestamp"` // ISO-8601
}

type BreakoutsStartedPayload struct {
	Assignments     Assignment `json:"assignments"`
	DurationSeconds int        `json:"durationSeconds"`
}

type StudentRemovedPayload struct {
	Reason  string `json:"reason,omitempty"`
	Details string `json:"details,omitempty"`
}

type TimelineAdvancedPayload struct {
	Index int                    `json:"index"`
	Item  model.TimelineItem     `json:"item"`
	Type  model.TimelineItemType `json:"itemType"`
}

type CameraCompliancePayload struct {
	State CameraState `json:"state"`
}

type ChatExchangePayload struct {
	Question model.ChatMessage `json:"question"`
	Answer   model.ChatMessage `json:"answer"`
}

// Queue is the non-blocking outbound event channel. Emission must never stall
// a state machine, so a full queue drops the oldest event and logs it.
type Queue struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
	log    *zap.Logger
}

func NewQueue(size int, log *zap.Logger) *Queue {
	if size <= 0 {
		size = 256
	}
	return &Queue{ch: make(chan Event, size), log: log}
}

// Emit enqueues without blocking, evicting the oldest event on overflow.
func (q *Queue) Emit(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	for {
		select {
		case q.ch <- e:
			return
		default:
		}
		select {
		case dropped := <-q.ch:
			if q.log != nil {
				q.log.Warn("event queue full, dropping oldest event",
					zap.String("dropped", string(dropped.Type)),
					zap.String("session", dropped.SessionID))
			}
		default:
		}
	}
}

// Events returns the receive side for the host's consumer pump.
func (q *Queue) Events() <-chan Event {
	return q.ch
}

func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}
