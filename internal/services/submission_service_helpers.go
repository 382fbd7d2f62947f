package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/exam-service/internal/events"
	"github.com/SAP-F-2025/exam-service/internal/metrics"
	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/repositories"
	"github.com/SAP-F-2025/exam-service/internal/scoring"
)

// Finalization causes, used as metric labels and transition triggers.
const (
	causeStudent    = "student"
	causeClient     = "client"
	causeViolations = "violations"
	causeTimeout    = "timeout"
)

const defaultAutoSubmitDetails = "Auto-submitted"

func (s *submissionService) load(ctx context.Context, id uint) (*models.Submission, error) {
	submission, err := s.repo.Submission().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, newNotFound(ErrSubmissionNotFound, "submission", id)
		}
		return nil, newPersistenceError("get submission", err)
	}
	return submission, nil
}

// loadOwned loads a submission the actor is taking, together with its exam.
func (s *submissionService) loadOwned(ctx context.Context, id uint, actor models.Actor) (*models.Submission, *models.Exam, error) {
	submission, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if submission.StudentID != actor.UserID {
		return nil, nil, newPermissionError(actor.UserID, id, "submission", "modify", "not the owner of the submission")
	}

	exam, err := s.exams.load(ctx, submission.ExamID)
	if err != nil {
		return nil, nil, err
	}
	return submission, exam, nil
}

// resume hands back an existing submission to its student on a repeated start.
func (s *submissionService) resume(ctx context.Context, exam *models.Exam, submission *models.Submission) (*StartExamResponse, error) {
	if submission.Status.Finalized() {
		return nil, newStateConflict(ErrSubmissionAlreadySubmitted, "submission", string(submission.Status), string(models.SubmissionInProgress))
	}

	now := s.clock()
	if s.policy.expired(submission.DeadlineAt, now) {
		if err := s.finalizeExpired(ctx, exam, submission); err != nil {
			return nil, err
		}
		return nil, newStateConflict(ErrSubmissionAlreadySubmitted, "submission", string(submission.Status), string(models.SubmissionInProgress))
	}

	return &StartExamResponse{
		Submission:      submission,
		Exam:            redactForStudent(exam),
		TimeRemainingMs: submission.TimeRemaining(now).Milliseconds(),
		Created:         false,
	}, nil
}

// finalize autogrades the objective answers and ends the submission with status.
func (s *submissionService) finalize(ctx context.Context, exam *models.Exam, submission *models.Submission, status models.SubmissionStatus, cause string) error {
	from := submission.Status
	now := s.clock()

	submission.Answers = scoring.Autograde(exam.Questions, submission.Answers)
	result := scoring.Summarize(exam.TotalPoints, submission.Answers)
	submission.Score = result.Score
	submission.TotalPoints = result.TotalPoints
	submission.Percentage = result.Percentage
	submission.Status = status
	submission.SubmittedAt = &now

	if err := s.repo.Submission().Update(ctx, submission); err != nil {
		return newPersistenceError("finalize submission", err)
	}

	metrics.SubmissionsFinalizedTotal.WithLabelValues(string(status), cause).Inc()
	metrics.SubmissionPercentageHistogram.WithLabelValues("submitted").Observe(float64(result.Percentage))
	s.ops.LogTransition(ctx, "submission", submission.ID, string(from), string(status), cause)

	eventType := events.EventSubmissionReceived
	if status == models.SubmissionAutoSubmitted {
		eventType = events.EventSubmissionAutoSubmitted
	}
	s.notifier.NotifySubmission(ctx, eventType, exam, submission)
	return nil
}

// finalizeExpired ends a submission whose deadline passed with the answers saved so far.
func (s *submissionService) finalizeExpired(ctx context.Context, exam *models.Exam, submission *models.Submission) error {
	submission.ViolationLog = append(submission.ViolationLog, models.ViolationEntry{
		Type:      models.ViolationTimeout,
		Timestamp: s.clock(),
		Details:   "deadline passed at " + submission.DeadlineAt.UTC().Format(time.RFC3339),
	})
	return s.finalize(ctx, exam, submission, models.SubmissionAutoSubmitted, causeTimeout)
}

func (s *submissionService) respond(submission *models.Submission) *SubmissionResponse {
	return &SubmissionResponse{
		Submission:      submission,
		TimeRemainingMs: submission.TimeRemaining(s.clock()).Milliseconds(),
	}
}

func autoSubmitEntry(reason *AutoSubmitReason, at time.Time) models.ViolationEntry {
	entry := models.ViolationEntry{Type: reason.Type, Timestamp: at, Details: reason.Details}
	if entry.Type == "" {
		entry.Type = models.ViolationOther
	}
	if entry.Details == "" {
		entry.Details = defaultAutoSubmitDetails
	}
	return entry
}
