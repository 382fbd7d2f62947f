package services

import (
	"log/slog"

	"github.com/SAP-F-2025/exam-service/internal/cache"
	"github.com/SAP-F-2025/exam-service/internal/events"
	"github.com/SAP-F-2025/exam-service/internal/repositories"
	"github.com/SAP-F-2025/exam-service/internal/validator"
)

type serviceManager struct {
	examService       ExamService
	submissionService SubmissionService
	notifier          NotificationEventService
	publisher         events.EventPublisher
}

// ManagerOptions carries the knobs shared by both lifecycle services.
type ManagerOptions struct {
	Policy SubmissionPolicy
	// Clock defaults to UTC wall time.
	Clock Clock
}

func NewServiceManager(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	opts ManagerOptions,
) ServiceManager {
	if opts.Clock == nil {
		opts.Clock = systemClock
	}

	examCache := cache.NewExamCache(cacheService, opts.Policy.ExamCacheTTL, logger)
	notifier := NewNotificationEventService(publisher, logger)

	return &serviceManager{
		examService: NewExamService(repo, examCache, notifier, logger, validator,
			WithExamClock(opts.Clock)),
		submissionService: NewSubmissionService(repo, examCache, notifier, logger, validator,
			WithSubmissionClock(opts.Clock), WithSubmissionPolicy(opts.Policy)),
		notifier:  notifier,
		publisher: publisher,
	}
}

func (sm *serviceManager) Exam() ExamService {
	return sm.examService
}

func (sm *serviceManager) Submission() SubmissionService {
	return sm.submissionService
}

func (sm *serviceManager) Close() error {
	sm.notifier.Wait()
	if sm.publisher == nil {
		return nil
	}
	return sm.publisher.Close()
}
