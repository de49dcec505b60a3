package service

import (
	"sync"
	"time"

	"virtual_classroom_backend/internal/config"
	"virtual_classroom_backend/internal/model"
	"virtual_classroom_backend/internal/repository"
	"virtual_classroom_backend/internal/session"
	"virtual_classroom_backend/internal/util"
	"virtual_classroom_backend/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PolicyFromConfig maps the configured session block onto the engine policy,
// keeping the engine package free of viper.
func PolicyFromConfig(cfg *config.SessionConfig) session.Policy {
	p := session.DefaultPolicy()
	if cfg == nil {
		return p
	}
	if cfg.WelcomeDelaySeconds > 0 {
		p.WelcomeDelay = time.Duration(cfg.WelcomeDelaySeconds) * time.Second
	}
	if cfg.FallbackAdvanceSeconds > 0 {
		p.FallbackAdvance = time.Duration(cfg.FallbackAdvanceSeconds) * time.Second
	}
	if cfg.BreakSeconds > 0 {
		p.BreakSeconds = cfg.BreakSeconds
	}
	if cfg.BreakoutSeconds > 0 {
		p.BreakoutSeconds = cfg.BreakoutSeconds
	}
	if cfg.CameraGraceSeconds > 0 {
		p.CameraGrace = time.Duration(cfg.CameraGraceSeconds) * time.Second
	}
	if cfg.SelfieVerifyMillis > 0 {
		p.SelfieVerifyDelay = time.Duration(cfg.SelfieVerifyMillis) * time.Millisecond
	}
	if cfg.VoiceAnalysisMillis > 0 {
		p.VoiceAnalysisDelay = time.Duration(cfg.VoiceAnalysisMillis) * time.Millisecond
	}
	if cfg.ClassStartHour > 0 {
		p.ClassStartHour = cfg.ClassStartHour
	}
	if cfg.EndPolicy == string(session.EndPolicyHalt) {
		p.EndPolicy = session.EndPolicyHalt
	}
	if cfg.AEPMBreakoutRounds > 0 {
		p.AEPMBreakoutRounds = cfg.AEPMBreakoutRounds
	}
	if cfg.DefaultMakeupFeeCents > 0 {
		p.MakeupFeeCents = cfg.DefaultMakeupFeeCents
	}
	return p
}

// ClassroomService is the registry of running sessions: it creates engines,
// fans breakout broadcasts across a cohort, and tears sessions down when a
// student leaves or is removed.
type ClassroomService struct {
	mu      sync.Mutex
	roster  *repository.RosterRepository
	events  *session.Queue
	player  session.TonePlayer
	policy  session.Policy
	log     *zap.Logger
	rooms   map[string]*session.Classroom // session id -> engine
	cohorts map[string]string             // session id -> cohort name
}

func NewClassroomService(roster *repository.RosterRepository, events *session.Queue, player session.TonePlayer, policy session.Policy, log *zap.Logger) *ClassroomService {
	return &ClassroomService{
		roster:  roster,
		events:  events,
		player:  player,
		policy:  policy,
		log:     log,
		rooms:   make(map[string]*session.Classroom),
		cohorts: make(map[string]string),
	}
}

// Start creates and starts a session for the given participant. The cohort
// snapshot is taken at entry; the flattened timeline is fixed from here on.
func (s *ClassroomService) Start(student *model.Student, course *model.Course, role session.Role) *session.Classroom {
	id := uuid.New().String()
	cohort := s.roster.Cohort(student.Cohort)
	room := session.NewClassroom(id, student, course, cohort, role, s.policy, s.events, s.player, s.log)

	s.mu.Lock()
	s.rooms[id] = room
	s.cohorts[id] = student.Cohort
	s.mu.Unlock()

	monitoring.ActiveSessions.Inc()
	room.Start()
	return room
}

func (s *ClassroomService) Get(sessionID string) (*session.Classroom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[sessionID]
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	return room, nil
}

// Leave ends a session and drops it from the registry.
func (s *ClassroomService) Leave(sessionID string) error {
	s.mu.Lock()
	room, ok := s.rooms[sessionID]
	if ok {
		delete(s.rooms, sessionID)
		delete(s.cohorts, sessionID)
	}
	s.mu.Unlock()
	if !ok {
		return util.ErrSessionNotFound
	}
	room.Leave()
	monitoring.ActiveSessions.Dec()
	return nil
}

// FanOutBreakouts delivers a broadcast assignment to every session of the
// originating cohort. Engines that already hold an assignment ignore it, so
// duplicate room generation cannot happen.
func (s *ClassroomService) FanOutBreakouts(originSessionID string, a session.Assignment, durationSeconds int) {
	s.mu.Lock()
	cohort := s.cohorts[originSessionID]
	var targets []*session.Classroom
	for id, room := range s.rooms {
		if id != originSessionID && s.cohorts[id] == cohort {
			targets = append(targets, room)
		}
	}
	s.mu.Unlock()
	for _, room := range targets {
		room.ReceiveBreakoutAssignment(a, durationSeconds)
	}
	monitoring.BreakoutRounds.Inc()
}

// EndSessionsForStudent terminates every session the removed student holds.
// Removal is terminal: the student cannot rejoin the running cohort session.
func (s *ClassroomService) EndSessionsForStudent(studentID string) {
	s.mu.Lock()
	var ids []string
	for id, room := range s.rooms {
		if room.Role() == session.RoleStudent && room.OwnerID() == studentID {
			ids = append(ids, id)
		}
	}
	s.mu.Unlock()
	for _, id := range ids {
		s.Leave(id)
	}
}
