package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/exam-service/internal/events"
	"github.com/SAP-F-2025/exam-service/internal/metrics"
	"github.com/SAP-F-2025/exam-service/internal/models"
)

const notificationTimeout = 10 * time.Second

// NotificationEventService emits lifecycle events to the notification sink.
// Publishing happens in the background after the state change is stored and
// never fails the operation that triggered it.
type NotificationEventService interface {
	NotifyExam(ctx context.Context, eventType events.EventType, exam *models.Exam, actorID string)
	NotifySubmission(ctx context.Context, eventType events.EventType, exam *models.Exam, submission *models.Submission)
	NotifyViolation(ctx context.Context, exam *models.Exam, submission *models.Submission, entry models.ViolationEntry, shouldAutoSubmit bool)

	// Wait blocks until every pending publish has finished.
	Wait()
}

type notificationEventService struct {
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	clock          Clock
	pending        sync.WaitGroup
}

func NewNotificationEventService(eventPublisher events.EventPublisher, logger *slog.Logger) NotificationEventService {
	return &notificationEventService{
		eventPublisher: eventPublisher,
		logger:         logger,
		clock:          systemClock,
	}
}

func (s *notificationEventService) NotifyExam(ctx context.Context, eventType events.EventType, exam *models.Exam, actorID string) {
	s.publish(ctx, events.NewExamEvent(eventType, exam, actorID))
}

func (s *notificationEventService) NotifySubmission(ctx context.Context, eventType events.EventType, exam *models.Exam, submission *models.Submission) {
	s.publish(ctx, events.NewSubmissionEvent(eventType, exam, submission, s.clock()))
}

func (s *notificationEventService) NotifyViolation(ctx context.Context, exam *models.Exam, submission *models.Submission, entry models.ViolationEntry, shouldAutoSubmit bool) {
	s.publish(ctx, events.NewViolationEvent(exam, submission, entry, shouldAutoSubmit))
}

func (s *notificationEventService) Wait() {
	s.pending.Wait()
}

func (s *notificationEventService) publish(ctx context.Context, event *events.NotificationEvent) {
	if s.eventPublisher == nil {
		return
	}

	// the request context ends with the response; keep its values but not its deadline
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer cancel()

		if err := s.eventPublisher.PublishNotificationEvent(publishCtx, event); err != nil {
			metrics.NotificationFailuresTotal.WithLabelValues(string(event.Type)).Inc()
			s.logger.Warn("Failed to publish notification event",
				"event_id", event.ID,
				"event_type", event.Type,
				"error", err)
		}
	}()
}
