package controller

import (
	"errors"
	"io"
	"net/http"

	"virtual_classroom_backend/internal/model"
	"virtual_classroom_backend/internal/service"
	"virtual_classroom_backend/internal/session"
	"virtual_classroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type OnboardingController struct {
	Onboarding *service.OnboardingService
}

func NewOnboardingController(onboarding *service.OnboardingService) *OnboardingController {
	return &OnboardingController{Onboarding: onboarding}
}

// FlowState is the render-ready view of an identity flow.
type FlowState struct {
	FlowID             string                 `json:"flowId"`
	Step               session.OnboardingStep `json:"step"`
	StudentName        string                 `json:"studentName,omitempty"`
	CourseName         string                 `json:"courseName,omitempty"`
	LastError          string                 `json:"lastError,omitempty"`
	CountdownRemaining int                    `json:"countdownRemaining,omitempty"`
	VoicePhase         session.VoicePhase     `json:"voicePhase,omitempty"`
	VoiceBusy          bool                   `json:"voiceBusy,omitempty"`
	MakeupFeeCents     int                    `json:"makeupFeeCents,omitempty"`
	Makeup             *session.MakeupDetails `json:"makeup,omitempty"`
}

func (c *OnboardingController) state(flowID string, flow *session.Onboarding) FlowState {
	state := FlowState{
		FlowID:    flowID,
		Step:      flow.Step(),
		LastError: flow.LastError(),
	}
	if s := flow.Student(); s != nil {
		state.StudentName = s.Name
	}
	if course := flow.Course(); course != nil {
		state.CourseName = course.Name
	}
	switch state.Step {
	case session.StepCountdown:
		state.CountdownRemaining = int(flow.CountdownRemaining().Seconds())
	case session.StepVoice:
		state.VoicePhase, state.VoiceBusy = flow.VoiceState()
	case session.StepMakeupRequired:
		details := flow.MakeupDetails()
		state.Makeup = &details
		state.MakeupFeeCents = details.FeeCents
	}
	return state
}

// Begin godoc
// @Summary Open a new identity flow
// @Tags onboarding
// @Produce json
// @Success 201 {object} util.Response{data=FlowState}
// @Router /api/onboarding [post]
func (c *OnboardingController) Begin(ctx *gin.Context) {
	id := c.Onboarding.Begin()
	flow, err := c.Onboarding.Flow(id)
	if err != nil {
		util.Error(ctx, http.StatusInternalServerError, err.Error())
		return
	}
	util.Created(ctx, c.state(id, flow))
}

// Get godoc
// @Summary Fetch the current flow state
// @Tags onboarding
// @Produce json
// @Param id path string true "Flow ID"
// @Success 200 {object} util.Response{data=FlowState}
// @Failure 404 {object} util.Response
// @Router /api/onboarding/{id} [get]
func (c *OnboardingController) Get(ctx *gin.Context) {
	flow, err := c.Onboarding.Flow(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, c.state(ctx.Param("id"), flow))
}

type SubmitCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// SubmitCode godoc
// @Summary Submit a class code
// @Tags onboarding
// @Accept json
// @Produce json
// @Param id path string true "Flow ID"
// @Param body body SubmitCodeRequest true "Class code"
// @Success 200 {object} util.Response{data=FlowState}
// @Router /api/onboarding/{id}/code [post]
func (c *OnboardingController) SubmitCode(ctx *gin.Context) {
	var req SubmitCodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	flow, err := c.Onboarding.Flow(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	flow.SubmitCode(req.Code)
	util.Success(ctx, c.state(ctx.Param("id"), flow))
}

type ConfirmIdentityRequest struct {
	Confirmed *bool `json:"confirmed" binding:"required"`
}

// ConfirmIdentity godoc
// @Summary Answer the "is this you" prompt
// @Tags onboarding
// @Accept json
// @Produce json
// @Param id path string true "Flow ID"
// @Param body body ConfirmIdentityRequest true "Confirmation"
// @Success 200 {object} util.Response{data=FlowState}
// @Router /api/onboarding/{id}/confirm [post]
func (c *OnboardingController) ConfirmIdentity(ctx *gin.Context) {
	var req ConfirmIdentityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	flow, err := c.Onboarding.Flow(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	flow.ConfirmIdentity(*req.Confirmed)
	util.Success(ctx, c.state(ctx.Param("id"), flow))
}

// Proceed godoc
// @Summary Advance past the countdown once it reaches zero
// @Tags onboarding
// @Produce json
// @Param id path string true "Flow ID"
// @Success 200 {object} util.Response{data=FlowState}
// @Router /api/onboarding/{id}/proceed [post]
func (c *OnboardingController) Proceed(ctx *gin.Context) {
	flow, err := c.Onboarding.Flow(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	flow.Proceed()
	util.Success(ctx, c.state(ctx.Param("id"), flow))
}

// SubmitPaperwork godoc
// @Summary Submit the intake paperwork
// @Tags onboarding
// @Accept json
// @Produce json
// @Param id path string true "Flow ID"
// @Param body body model.Paperwork true "Paperwork fields"
// @Success 200 {object} util.Response{data=FlowState}
// @Router /api/onboarding/{id}/paperwork [post]
func (c *OnboardingController) SubmitPaperwork(ctx *gin.Context) {
	var req model.Paperwork
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	flow, err := c.Onboarding.Flow(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	flow.SubmitPaperwork(req)
	util.Success(ctx, c.state(ctx.Param("id"), flow))
}

type SubmitSelfieRequest struct {
	Image string `json:"image" binding:"required"`
}

// SubmitSelfie godoc
// @Summary Submit the captured selfie frame
// @Tags onboarding
// @Accept json
// @Produce json
// @Param id path string true "Flow ID"
// @Param body body SubmitSelfieRequest true "Data-URL encoded frame"
// @Success 200 {object} util.Response{data=FlowState}
// @Router /api/onboarding/{id}/selfie [post]
func (c *OnboardingController) SubmitSelfie(ctx *gin.Context) {
	var req SubmitSelfieRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.Onboarding.SubmitSelfie(ctx.Request.Context(), ctx.Param("id"), req.Image); err != nil {
		c.flowError(ctx, err)
		return
	}
	flow, err := c.Onboarding.Flow(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, c.state(ctx.Param("id"), flow))
}

// RetakePhoto godoc
// @Summary Discard the selfie and recapture
// @Tags onboarding
// @Produce json
// @Param id path string true "Flow ID"
// @Success 200 {object} util.Response{data=FlowState}
// @Router /api/onboarding/{id}/selfie/retake [post]
func (c *OnboardingController) RetakePhoto(ctx *gin.Context) {
	flow, err := c.Onboarding.Flow(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	flow.RetakePhoto()
	util.Success(ctx, c.state(ctx.Param("id"), flow))
}

// ConfirmSound godoc
// @Summary Confirm the test tone was heard
// @Tags onboarding
// @Produce json
// @Param id path string true "Flow ID"
// @Success 200 {object} util.Response{data=FlowState}
// @Router /api/onboarding/{id}/sound-check [post]
func (c *OnboardingController) ConfirmSound(ctx *gin.Context) {
	flow, err := c.Onboarding.Flow(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	if err := flow.ConfirmSoundHeard(); err != nil {
		c.flowError(ctx, err)
		return
	}
	util.Success(ctx, c.state(ctx.Param("id"), flow))
}

// SubmitVoice godoc
// @Summary Upload the microphone check recording
// @Tags onboarding
// @Accept mpfd
// @Produce json
// @Param id path string true "Flow ID"
// @Param audio formData file true "Recorded clip"
// @Success 200 {object} util.Response{data=FlowState}
// @Router /api/onboarding/{id}/voice [post]
func (c *OnboardingController) SubmitVoice(ctx *gin.Context) {
	file, _, err := ctx.Request.FormFile("audio")
	if err != nil {
		util.BadRequest(ctx, "audio file required")
		return
	}
	defer file.Close()
	clip, err := io.ReadAll(file)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.Onboarding.SubmitVoiceClip(ctx.Request.Context(), ctx.Param("id"), clip); err != nil {
		c.flowError(ctx, err)
		return
	}
	flow, err := c.Onboarding.Flow(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, c.state(ctx.Param("id"), flow))
}

// ContinueToTerms godoc
// @Summary Move from the hardware check to the terms screen
// @Tags onboarding
// @Produce json
// @Param id path string true "Flow ID"
// @Success 200 {object} util.Response{data=FlowState}
// @Router /api/onboarding/{id}/terms [post]
func (c *OnboardingController) ContinueToTerms(ctx *gin.Context) {
	flow, err := c.Onboarding.Flow(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	if err := flow.ContinueToTerms(); err != nil {
		c.flowError(ctx, err)
		return
	}
	util.Success(ctx, c.state(ctx.Param("id"), flow))
}

// VideoEnded godoc
// @Summary Record that the instructional video played to completion
// @Tags onboarding
// @Produce json
// @Param id path string true "Flow ID"
// @Success 200 {object} util.Response{data=FlowState}
// @Router /api/onboarding/{id}/terms/video-ended [post]
func (c *OnboardingController) VideoEnded(ctx *gin.Context) {
	flow, err := c.Onboarding.Flow(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	flow.VideoEnded()
	util.Success(ctx, c.state(ctx.Param("id"), flow))
}

// SetAgreements godoc
// @Summary Update the three terms checkboxes
// @Tags onboarding
// @Accept json
// @Produce json
// @Param id path string true "Flow ID"
// @Param body body session.Agreements true "Checkbox state"
// @Success 200 {object} util.Response{data=FlowState}
// @Router /api/onboarding/{id}/terms/agreements [post]
func (c *OnboardingController) SetAgreements(ctx *gin.Context) {
	var req session.Agreements
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	flow, err := c.Onboarding.Flow(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	if err := flow.SetAgreements(req); err != nil {
		c.flowError(ctx, err)
		return
	}
	util.Success(ctx, c.state(ctx.Param("id"), flow))
}

// Enter godoc
// @Summary Finish onboarding and enter the classroom
// @Tags onboarding
// @Produce json
// @Param id path string true "Flow ID"
// @Success 200 {object} util.Response{data=service.EntryResult}
// @Failure 403 {object} util.Response
// @Router /api/onboarding/{id}/enter [post]
func (c *OnboardingController) Enter(ctx *gin.Context) {
	result, err := c.Onboarding.Enter(ctx.Param("id"))
	if err != nil {
		c.flowError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// PayMakeupFee godoc
// @Summary Pay the makeup fee and rejoin the flow
// @Tags onboarding
// @Produce json
// @Param id path string true "Flow ID"
// @Success 200 {object} util.Response{data=FlowState}
// @Router /api/onboarding/{id}/makeup-fee [post]
func (c *OnboardingController) PayMakeupFee(ctx *gin.Context) {
	flow, err := c.Onboarding.Flow(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	if _, err := flow.PayMakeupFee(); err != nil {
		c.flowError(ctx, err)
		return
	}
	util.Success(ctx, c.state(ctx.Param("id"), flow))
}

// Abandon godoc
// @Summary Discard a flow that will not be completed
// @Tags onboarding
// @Produce json
// @Param id path string true "Flow ID"
// @Success 200 {object} util.Response
// @Router /api/onboarding/{id} [delete]
func (c *OnboardingController) Abandon(ctx *gin.Context) {
	c.Onboarding.Abandon(ctx.Param("id"))
	util.Success(ctx, nil)
}

func (c *OnboardingController) flowError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSessionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrVideoNotWatched), errors.Is(err, util.ErrTermsNotAccepted):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, util.ErrInvalidStep), errors.Is(err, util.ErrVerificationPending),
		errors.Is(err, util.ErrNoFrameCaptured), errors.Is(err, util.ErrNoRecording):
		util.BadRequest(ctx, err.Error())
	default:
		util.Error(ctx, http.StatusInternalServerError, err.Error())
	}
}
