package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/exam-service/internal/services"
	"github.com/SAP-F-2025/exam-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ExamHandler struct {
	BaseHandler
	examService       services.ExamService
	submissionService services.SubmissionService
}

func NewExamHandler(
	examService services.ExamService,
	submissionService services.SubmissionService,
	logger utils.Logger,
) *ExamHandler {
	return &ExamHandler{
		BaseHandler:       NewBaseHandler(logger),
		examService:       examService,
		submissionService: submissionService,
	}
}

// CreateExam creates a new draft exam
// @Summary Create exam
// @Description Creates a draft exam owned by the calling teacher
// @Tags exams
// @Accept json
// @Produce json
// @Param exam body services.CreateExamRequest true "Exam data"
// @Success 201 {object} models.Exam
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /exams [post]
func (h *ExamHandler) CreateExam(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req services.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, exam)
}

// ListExams lists the exams visible to the caller
// @Summary List exams
// @Tags exams
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param status query string false "Exam status"
// @Param subject_id query int false "Subject ID"
// @Param class_id query int false "Class ID"
// @Success 200 {object} ListResponse
// @Router /exams [get]
func (h *ExamHandler) ListExams(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	filters := parseExamFilters(c)
	h.LogRequest(c, "Listing exams", "filters", filters)

	exams, total, err := h.examService.List(c.Request.Context(), filters, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: exams, Total: total, Limit: filters.Limit, Offset: filters.Offset})
}

// GetExam retrieves an exam by ID
// @Summary Get exam
// @Tags exams
// @Produce json
// @Param id path uint true "Exam ID"
// @Success 200 {object} models.Exam
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id} [get]
func (h *ExamHandler) GetExam(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	exam, err := h.examService.Get(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// UpdateExam patches a draft or scheduled exam
// @Summary Update exam
// @Tags exams
// @Accept json
// @Produce json
// @Param id path uint true "Exam ID"
// @Param exam body services.UpdateExamRequest true "Fields to change"
// @Success 200 {object} models.Exam
// @Failure 400 {object} ErrorResponse
// @Router /exams/{id} [put]
func (h *ExamHandler) UpdateExam(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req services.UpdateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// DeleteExam soft-deletes a draft exam
// @Summary Delete exam
// @Tags exams
// @Param id path uint true "Exam ID"
// @Success 200 {object} SuccessResponse
// @Router /exams/{id} [delete]
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	if err := h.examService.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Exam deleted successfully"})
}

// ScheduleExam schedules a draft exam
// @Summary Schedule exam
// @Description Runs conflict detection and moves the exam from draft to scheduled
// @Tags exams
// @Accept json
// @Produce json
// @Param id path uint true "Exam ID"
// @Param schedule body services.ScheduleExamRequest true "Start time and duration"
// @Success 200 {object} models.Exam
// @Failure 400 {object} ErrorResponse "Validation failure or schedule conflicts"
// @Router /exams/{id}/schedule [post]
func (h *ExamHandler) ScheduleExam(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req services.ScheduleExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	exam, err := h.examService.Schedule(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// ActivateExam opens a scheduled exam early
// @Summary Activate exam
// @Tags exams
// @Param id path uint true "Exam ID"
// @Success 200 {object} models.Exam
// @Router /exams/{id}/activate [post]
func (h *ExamHandler) ActivateExam(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	exam, err := h.examService.Activate(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// CompleteExam closes an active exam
// @Summary Complete exam
// @Tags exams
// @Param id path uint true "Exam ID"
// @Success 200 {object} models.Exam
// @Router /exams/{id}/complete [post]
func (h *ExamHandler) CompleteExam(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	exam, err := h.examService.Complete(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// CheckConflicts reports the exams a proposed slot would collide with
// @Summary Check schedule conflicts
// @Tags exams
// @Accept json
// @Produce json
// @Param slot body services.ConflictCheckRequest true "Proposed slot"
// @Success 200 {object} map[string]interface{}
// @Router /exams/conflicts [post]
func (h *ExamHandler) CheckConflicts(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req services.ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	conflicts, err := h.examService.CheckConflicts(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conflicts": conflicts, "has_conflicts": len(conflicts) > 0})
}

// StartExam starts or resumes the caller's submission
// @Summary Start exam
// @Description Creates the student's submission, or returns the one in progress
// @Tags submissions
// @Produce json
// @Param id path uint true "Exam ID"
// @Success 201 {object} services.StartExamResponse "New submission"
// @Success 200 {object} services.StartExamResponse "Resumed submission"
// @Failure 400 {object} ErrorResponse "Exam not active or already submitted"
// @Router /exams/{id}/start [post]
func (h *ExamHandler) StartExam(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	resp, err := h.submissionService.Start(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

// ListExamSubmissions lists the submissions of an exam
// @Summary List exam submissions
// @Tags submissions
// @Produce json
// @Param id path uint true "Exam ID"
// @Param status query string false "Submission status"
// @Success 200 {object} ListResponse
// @Router /exams/{id}/submissions [get]
func (h *ExamHandler) ListExamSubmissions(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	filters := parseSubmissionFilters(c)
	submissions, total, err := h.submissionService.ListByExam(c.Request.Context(), id, filters, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: submissions, Total: total, Limit: filters.Limit, Offset: filters.Offset})
}
