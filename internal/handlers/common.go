package handlers

import (
	"errors"
	"net/http"

	apperrors "github.com/SAP-F-2025/exam-service/internal/errors"
	"github.com/SAP-F-2025/exam-service/internal/services"
	"github.com/SAP-F-2025/exam-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse wraps one page of a collection
type ListResponse struct {
	Data   interface{} `json:"data"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and error mapping for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.GetHeader("X-Request-ID"),
		"user_id", h.extractUserID(c),
	}
	fields = append(fields, additionalFields...)

	utils.GetLoggerFromContext(c, h.logger).Debug(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.GetHeader("X-Request-ID"),
		"user_id", h.extractUserID(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)

	utils.GetLoggerFromContext(c, h.logger).LogError(err, message, fields...)
}

// Helper method to extract user ID from context
func (h *BaseHandler) extractUserID(c *gin.Context) interface{} {
	if userID, exists := c.Get("user_id"); exists {
		return userID
	}
	return nil
}

// RespondWithError sends a consistent error response
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
	}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}
	c.JSON(statusCode, errorResp)
}

// handleServiceError maps the error kind to a status code and a stable body
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	resp := ErrorResponse{Message: err.Error(), Code: string(kind)}

	var (
		scheduleConflict *services.ScheduleConflictError
		validationErrors services.ValidationErrors
		stateConflict    *services.StateConflictError
		permissionError  *services.AuthorizationError
	)

	switch {
	case errors.As(err, &scheduleConflict):
		resp.Message = "Schedule conflicts with existing exams"
		resp.Details = gin.H{"conflicts": scheduleConflict.Conflicts}
	case errors.As(err, &validationErrors):
		resp.Message = "Validation failed"
		resp.Details = validationErrors
	case errors.As(err, &stateConflict):
		resp.Message = stateConflict.Message
		resp.Details = gin.H{
			"resource":  stateConflict.Resource,
			"current":   stateConflict.Current,
			"attempted": stateConflict.Attempted,
		}
	case errors.As(err, &permissionError):
		resp.Message = "Access denied"
		resp.Details = gin.H{
			"resource": permissionError.Resource,
			"action":   permissionError.Action,
			"reason":   permissionError.Reason,
		}
	case kind == apperrors.KindPersistence:
		h.LogError(c, err, "Service operation failed")
		resp.Message = "Internal server error"
	}

	c.JSON(statusForKind(kind), resp)
}

func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation, apperrors.KindStateConflict:
		return http.StatusBadRequest
	case apperrors.KindAuthorization:
		return http.StatusForbidden
	case apperrors.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
