package repository

import (
	"sync"
	"time"

	"virtual_classroom_backend/internal/model"
	"virtual_classroom_backend/internal/util"
)

// RosterRepository is the host-owned student/course store. All state lives in
// memory; the session core reads through it and the event pump writes back
// the mutations the core proposed.
type RosterRepository struct {
	mu       sync.RWMutex
	students map[string]*model.Student
	courses  map[string]*model.Course
	// attendance keyed by student id, value is the marking time
	attendance map[string]time.Time
}

func NewRosterRepository() *RosterRepository {
	return &RosterRepository{
		students:   make(map[string]*model.Student),
		courses:    make(map[string]*model.Course),
		attendance: make(map[string]time.Time),
	}
}

func (r *RosterRepository) PutStudent(s *model.Student) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students[s.ID] = s
}

func (r *RosterRepository) PutCourse(c *model.Course) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses[c.ID] = c
}

func (r *RosterRepository) GetStudent(id string) (*model.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.students[id]
	if !ok {
		return nil, util.ErrStudentNotFound
	}
	return s, nil
}

func (r *RosterRepository) GetCourse(id string) (*model.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, util.ErrCourseNotFound
	}
	return c, nil
}

// FindByClassCode matches a normalized code against every student's stored
// code, also normalized. Implements session.Directory.
func (r *RosterRepository) FindByClassCode(code string) (*model.Student, *model.Course, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.students {
		if model.NormalizeClassCode(s.ClassCode) == code {
			course := r.courses[s.CourseID]
			return s, course, course != nil
		}
	}
	return nil, nil, false
}

// Cohort returns all students sharing the named cohort, the group the
// breakout auto-assignment draws from.
func (r *RosterRepository) Cohort(name string) []model.Student {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Student
	for _, s := range r.students {
		if s.Cohort == name {
			out = append(out, *s)
		}
	}
	return out
}

func (r *RosterRepository) MarkAttendance(studentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[studentID]; ok {
		r.attendance[studentID] = time.Now()
	}
}

func (r *RosterRepository) AttendanceMarked(studentID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.attendance[studentID]
	return ok
}

// AppendQuizResult records a submitted attempt on the student. Idempotent per
// quiz id: a second submission for the same quiz is dropped.
func (r *RosterRepository) AppendQuizResult(studentID string, result model.QuizResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[studentID]
	if !ok {
		return
	}
	for _, existing := range s.QuizResults {
		if existing.QuizID == result.QuizID {
			return
		}
	}
	s.QuizResults = append(s.QuizResults, result)
}

func (r *RosterRepository) SetPaperwork(studentID string, p model.Paperwork) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.students[studentID]; ok {
		pw := p
		s.Paperwork = &pw
	}
}

func (r *RosterRepository) SetStatus(studentID string, status model.StudentStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.students[studentID]; ok {
		s.Status = status
	}
}

func (r *RosterRepository) AddNotification(studentID, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.students[studentID]; ok {
		s.Notifications = append(s.Notifications, model.NewNotification(message))
	}
}
