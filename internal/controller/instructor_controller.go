package controller

import (
	"virtual_classroom_backend/internal/service"
	"virtual_classroom_backend/internal/session"
	"virtual_classroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type InstructorController struct {
	Onboarding *service.OnboardingService
	Classrooms *service.ClassroomService
	rooms      *ClassroomController
}

func NewInstructorController(onboarding *service.OnboardingService, classrooms *service.ClassroomService) *InstructorController {
	return &InstructorController{
		Onboarding: onboarding,
		Classrooms: classrooms,
		rooms:      NewClassroomController(classrooms),
	}
}

type ObserverEnterRequest struct {
	CourseID string `json:"courseId" binding:"required"`
	Cohort   string `json:"cohort" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=instructor admin"`
}

// Enter godoc
// @Summary Start an observer session for the back office monitoring view
// @Tags instructor
// @Accept json
// @Produce json
// @Param body body ObserverEnterRequest true "Course and cohort"
// @Success 200 {object} util.Response{data=service.EntryResult}
// @Router /api/observer/enter [post]
func (c *InstructorController) Enter(ctx *gin.Context) {
	var req ObserverEnterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	result, err := c.Onboarding.EnterAsObserver(req.CourseID, req.Cohort, session.Role(req.Role))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, result)
}

// Advance godoc
// @Summary Manually advance the observer timeline to the next item
// @Tags instructor
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} util.Response{data=session.Snapshot}
// @Security BearerAuth
// @Router /api/session/{id}/advance [post]
func (c *InstructorController) Advance(ctx *gin.Context) {
	room, ok := c.rooms.room(ctx)
	if !ok {
		return
	}
	room.Advance()
	util.Success(ctx, room.Snapshot())
}

type StartBreakoutsRequest struct {
	Assignments     session.Assignment `json:"assignments"`
	DurationSeconds int                `json:"durationSeconds"`
}

// StartBreakouts godoc
// @Summary Start breakout rooms across the cohort
// @Description Omit assignments to auto-assign every in-progress student to Room 1.
// @Tags instructor
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body StartBreakoutsRequest true "Room assignments"
// @Success 200 {object} util.Response{data=session.Snapshot}
// @Security BearerAuth
// @Router /api/session/{id}/breakouts [post]
func (c *InstructorController) StartBreakouts(ctx *gin.Context) {
	var req StartBreakoutsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	room, ok := c.rooms.room(ctx)
	if !ok {
		return
	}
	if err := room.StartBreakouts(req.Assignments, req.DurationSeconds); err != nil {
		c.rooms.sessionError(ctx, err)
		return
	}
	util.Success(ctx, room.Snapshot())
}

type ParticipantMuteRequest struct {
	Muted *bool `json:"muted" binding:"required"`
}

// MuteParticipant godoc
// @Summary Mute or unmute a participant
// @Tags instructor
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param studentId path string true "Student ID"
// @Param body body ParticipantMuteRequest true "Mute state"
// @Success 200 {object} util.Response{data=session.Snapshot}
// @Security BearerAuth
// @Router /api/session/{id}/participants/{studentId}/mute [post]
func (c *InstructorController) MuteParticipant(ctx *gin.Context) {
	var req ParticipantMuteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	room, ok := c.rooms.room(ctx)
	if !ok {
		return
	}
	if err := room.SetParticipantMuted(ctx.Param("studentId"), *req.Muted); err != nil {
		c.rooms.sessionError(ctx, err)
		return
	}
	util.Success(ctx, room.Snapshot())
}

type ParticipantCameraRequest struct {
	Off *bool `json:"off" binding:"required"`
}

// ForceParticipantCamera godoc
// @Summary Force a participant's camera off or release it
// @Tags instructor
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param studentId path string true "Student ID"
// @Param body body ParticipantCameraRequest true "Forced-off state"
// @Success 200 {object} util.Response{data=session.Snapshot}
// @Security BearerAuth
// @Router /api/session/{id}/participants/{studentId}/camera [post]
func (c *InstructorController) ForceParticipantCamera(ctx *gin.Context) {
	var req ParticipantCameraRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	room, ok := c.rooms.room(ctx)
	if !ok {
		return
	}
	if err := room.SetParticipantCameraForcedOff(ctx.Param("studentId"), *req.Off); err != nil {
		c.rooms.sessionError(ctx, err)
		return
	}
	util.Success(ctx, room.Snapshot())
}

type RemoveStudentRequest struct {
	Reason  string `json:"reason" binding:"required"`
	Details string `json:"details"`
}

// RemoveStudent godoc
// @Summary Remove a student from the class
// @Tags instructor
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param studentId path string true "Student ID"
// @Param body body RemoveStudentRequest true "Removal reason"
// @Success 200 {object} util.Response
// @Security BearerAuth
// @Router /api/session/{id}/participants/{studentId}/remove [post]
func (c *InstructorController) RemoveStudent(ctx *gin.Context) {
	var req RemoveStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	room, ok := c.rooms.room(ctx)
	if !ok {
		return
	}
	if err := room.RemoveStudent(ctx.Param("studentId"), req.Reason, req.Details); err != nil {
		c.rooms.sessionError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
