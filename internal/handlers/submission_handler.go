package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/exam-service/internal/services"
	"github.com/SAP-F-2025/exam-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
}

func NewSubmissionHandler(submissionService services.SubmissionService, logger utils.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
	}
}

// GetSubmission retrieves a submission
// @Summary Get submission
// @Tags submissions
// @Produce json
// @Param id path uint true "Submission ID"
// @Success 200 {object} services.SubmissionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	resp, err := h.submissionService.Get(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SaveAnswers autosaves answers of an in-progress submission
// @Summary Save answers
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path uint true "Submission ID"
// @Param answers body services.SaveAnswersRequest true "Answers"
// @Success 200 {object} services.SubmissionResponse
// @Router /submissions/{id}/answers [put]
func (h *SubmissionHandler) SaveAnswers(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req services.SaveAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	resp, err := h.submissionService.SaveAnswers(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SubmitSubmission finalizes a submission on the student's request
// @Summary Submit exam
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path uint true "Submission ID"
// @Param answers body services.SubmitRequest false "Final answers"
// @Success 200 {object} services.SubmissionResponse
// @Router /submissions/{id}/submit [post]
func (h *SubmissionHandler) SubmitSubmission(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req services.SubmitRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.submissionService.Submit(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// AutoSubmitSubmission finalizes a submission on the client's behalf
// @Summary Auto-submit exam
// @Description Used by the exam client when time runs out or proctoring ends the attempt
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path uint true "Submission ID"
// @Param request body services.AutoSubmitRequest false "Final answers and reason"
// @Success 200 {object} services.SubmissionResponse
// @Router /submissions/{id}/auto-submit [post]
func (h *SubmissionHandler) AutoSubmitSubmission(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req services.AutoSubmitRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.submissionService.AutoSubmit(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// LogViolation records an integrity violation
// @Summary Log violation
// @Description Reaching the violation threshold auto-submits and reports should_auto_submit
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path uint true "Submission ID"
// @Param violation body services.LogViolationRequest true "Violation"
// @Success 200 {object} services.ViolationResponse
// @Router /submissions/{id}/violations [post]
func (h *SubmissionHandler) LogViolation(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req services.LogViolationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	resp, err := h.submissionService.LogViolation(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if resp.ShouldAutoSubmit {
		h.LogRequest(c, "Submission auto-submitted on violations", "submission_id", id, "violations", resp.Violations)
	}
	c.JSON(http.StatusOK, resp)
}

// GradeSubmission grades open questions of a finalized submission
// @Summary Grade submission
// @Tags grading
// @Accept json
// @Produce json
// @Param id path uint true "Submission ID"
// @Param grades body services.GradeRequest true "Grades"
// @Success 200 {object} services.SubmissionResponse
// @Failure 404 {object} ErrorResponse "Unknown question"
// @Router /submissions/{id}/grade [post]
func (h *SubmissionHandler) GradeSubmission(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req services.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	resp, err := h.submissionService.GradeOpenQuestions(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
