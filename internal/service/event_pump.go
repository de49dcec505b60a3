package service

import (
	"context"
	"encoding/json"
	"strconv"

	"virtual_classroom_backend/internal/model"
	"virtual_classroom_backend/internal/repository"
	"virtual_classroom_backend/internal/session"
	"virtual_classroom_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// EventPump is the host-side subscriber of the core's outbound queue. It
// applies the mutations the session core proposed (attendance, quiz results,
// paperwork), fans breakout broadcasts across cohorts, feeds the metrics, and
// relays everything to the websocket hub.
type EventPump struct {
	events     *session.Queue
	roster     *repository.RosterRepository
	classrooms *ClassroomService
	chat       *ChatService
	chatLog    *repository.ChatLogRepository
	hub        *SessionHub
	log        *zap.Logger
}

func NewEventPump(events *session.Queue, roster *repository.RosterRepository, classrooms *ClassroomService, chat *ChatService, chatLog *repository.ChatLogRepository, hub *SessionHub, log *zap.Logger) *EventPump {
	return &EventPump{
		events:     events,
		roster:     roster,
		classrooms: classrooms,
		chat:       chat,
		chatLog:    chatLog,
		hub:        hub,
		log:        log,
	}
}

// Run consumes until the queue closes. Start it once, as a goroutine.
func (p *EventPump) Run() {
	for e := range p.events.Events() {
		p.handle(e)
		p.relay(e)
	}
}

func (p *EventPump) handle(e session.Event) {
	switch e.Type {
	case session.EventQuizSubmitted:
		payload, ok := e.Payload.(session.QuizSubmittedPayload)
		if !ok {
			return
		}
		p.roster.AppendQuizResult(e.StudentID, payload.Result)
		monitoring.QuizSubmissions.WithLabelValues(strconv.FormatBool(payload.Forced)).Inc()

	case session.EventAttendanceMarked:
		p.roster.MarkAttendance(e.StudentID)

	case session.EventPaperworkSubmitted:
		if pw, ok := e.Payload.(model.Paperwork); ok {
			p.roster.SetPaperwork(e.StudentID, pw)
		}

	case session.EventBreakoutsStarted:
		payload, ok := e.Payload.(session.BreakoutsStartedPayload)
		if !ok {
			return
		}
		p.classrooms.FanOutBreakouts(e.SessionID, payload.Assignments, payload.DurationSeconds)

	case session.EventStudentRemoved:
		p.classrooms.EndSessionsForStudent(e.StudentID)
		p.roster.AddNotification(e.StudentID, "You were removed from the live session. Contact support to reschedule.")

	case session.EventTimelineAdvanced:
		if payload, ok := e.Payload.(session.TimelineAdvancedPayload); ok {
			monitoring.TimelineAdvances.WithLabelValues(string(payload.Type)).Inc()
		}

	case session.EventCameraCompliance:
		if payload, ok := e.Payload.(session.CameraCompliancePayload); ok && payload.State == session.CameraLocked {
			monitoring.CameraLockouts.Inc()
		}

	case session.EventMakeupFeePaid:
		// Fee settled: the student re-enters the normal flow.
		p.roster.SetStatus(e.StudentID, model.StatusInProgress)

	case session.EventSessionEnded:
		// Release everything keyed by the session: chat history, rate
		// limiter, and the mirrored transcript.
		p.chat.EndSession(e.SessionID)
		p.chatLog.Drop(context.Background(), e.SessionID)
	}
}

func (p *EventPump) relay(e session.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		p.log.Error("event relay marshal failed", zap.Error(err), zap.String("type", string(e.Type)))
		return
	}
	p.hub.Broadcast(data)
}
