package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/exam-service/internal/identity"
	"github.com/SAP-F-2025/exam-service/internal/metrics"
	"github.com/SAP-F-2025/exam-service/internal/services"
	"github.com/SAP-F-2025/exam-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HandlerManager struct {
	examHandler       *ExamHandler
	submissionHandler *SubmissionHandler
	resolver          identity.Resolver
	logger            utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	resolver identity.Resolver,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		examHandler:       NewExamHandler(serviceManager.Exam(), serviceManager.Submission(), logger),
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), logger),
		resolver:          resolver,
		logger:            logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(metrics.GinMiddleware())
	router.Use(utils.LoggerMiddleware(hm.logger))
	router.Use(utils.ContextLogger(hm.logger))

	router.GET("/health", HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(identity.Middleware(hm.resolver))
	{
		// Exam routes
		exams := v1.Group("/exams")
		{
			exams.POST("", hm.examHandler.CreateExam)
			exams.GET("", hm.examHandler.ListExams)
			exams.POST("/conflicts", hm.examHandler.CheckConflicts)
			exams.GET("/:id", hm.examHandler.GetExam)
			exams.PUT("/:id", hm.examHandler.UpdateExam)
			exams.DELETE("/:id", hm.examHandler.DeleteExam)

			// Lifecycle
			exams.POST("/:id/schedule", hm.examHandler.ScheduleExam)
			exams.POST("/:id/activate", hm.examHandler.ActivateExam)
			exams.POST("/:id/complete", hm.examHandler.CompleteExam)

			// Taking the exam
			exams.POST("/:id/start", hm.examHandler.StartExam)
			exams.GET("/:id/submissions", hm.examHandler.ListExamSubmissions)
		}

		// Submission routes
		submissions := v1.Group("/submissions")
		{
			submissions.GET("/:id", hm.submissionHandler.GetSubmission)
			submissions.PUT("/:id/answers", hm.submissionHandler.SaveAnswers)
			submissions.POST("/:id/submit", hm.submissionHandler.SubmitSubmission)
			submissions.POST("/:id/auto-submit", hm.submissionHandler.AutoSubmitSubmission)
			submissions.POST("/:id/violations", hm.submissionHandler.LogViolation)
			submissions.POST("/:id/grade", hm.submissionHandler.GradeSubmission)
		}
	}
}

// HealthCheck reports liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "exam-service",
	})
}
