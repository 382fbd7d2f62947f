package handlers

import (
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/SAP-F-2025/exam-service/internal/errors"
	"github.com/SAP-F-2025/exam-service/internal/identity"
	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/repositories"
	"github.com/gin-gonic/gin"
)

const defaultPageSize = 20

func parseIDParam(c *gin.Context, param string) uint {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Code:    string(apperrors.KindValidation),
			Details: "must be a positive integer",
		})
		return 0
	}
	return uint(id)
}

// requireActor returns the authenticated caller or answers 401.
func requireActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := identity.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
			Code:    "unauthenticated",
		})
	}
	return actor, ok
}

// bindJSON decodes the body, treating an empty body as an empty request.
func bindJSON(c *gin.Context, req interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Code:    string(apperrors.KindValidation),
			Details: err.Error(),
		})
		return false
	}
	return true
}

func parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseUintQueryPtr(c *gin.Context, param string) *uint {
	value, err := strconv.ParseUint(c.Query(param), 10, 32)
	if err != nil {
		return nil
	}
	id := uint(value)
	return &id
}

func parseTimeQueryPtr(c *gin.Context, param string) *time.Time {
	value, err := time.Parse(time.RFC3339, c.Query(param))
	if err != nil {
		return nil
	}
	value = value.UTC()
	return &value
}

func parsePage(c *gin.Context) (limit, offset int) {
	page := parseIntQuery(c, "page", 1)
	size := parseIntQuery(c, "size", defaultPageSize)
	if page < 1 {
		page = 1
	}
	return size, (page - 1) * size
}

func parseExamFilters(c *gin.Context) repositories.ExamFilters {
	limit, offset := parsePage(c)
	filters := repositories.ExamFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		SubjectID: parseUintQueryPtr(c, "subject_id"),
		ClassID:   parseUintQueryPtr(c, "class_id"),
		DateFrom:  parseTimeQueryPtr(c, "from"),
		DateTo:    parseTimeQueryPtr(c, "to"),
	}

	if status := c.Query("status"); status != "" {
		examStatus := models.ExamStatus(status)
		filters.Status = &examStatus
	}
	return filters
}

func parseSubmissionFilters(c *gin.Context) repositories.SubmissionFilters {
	limit, offset := parsePage(c)
	filters := repositories.SubmissionFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if status := c.Query("status"); status != "" {
		submissionStatus := models.SubmissionStatus(status)
		filters.Status = &submissionStatus
	}
	if studentID := c.Query("student_id"); studentID != "" {
		filters.StudentID = &studentID
	}
	return filters
}
