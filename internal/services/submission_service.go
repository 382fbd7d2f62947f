package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/exam-service/internal/cache"
	"github.com/SAP-F-2025/exam-service/internal/events"
	"github.com/SAP-F-2025/exam-service/internal/metrics"
	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/repositories"
	"github.com/SAP-F-2025/exam-service/internal/scoring"
	"github.com/SAP-F-2025/exam-service/internal/validator"
)

type submissionService struct {
	repo      repositories.Repository
	exams     *examReader
	notifier  NotificationEventService
	logger    *slog.Logger
	ops       *ServiceLogger
	validator *validator.Validator
	policy    SubmissionPolicy
	clock     Clock
}

type SubmissionServiceOption func(*submissionService)

func WithSubmissionClock(clock Clock) SubmissionServiceOption {
	return func(s *submissionService) { s.clock = clock }
}

func WithSubmissionPolicy(policy SubmissionPolicy) SubmissionServiceOption {
	return func(s *submissionService) { s.policy = policy }
}

func NewSubmissionService(
	repo repositories.Repository,
	examCache *cache.ExamCache,
	notifier NotificationEventService,
	logger *slog.Logger,
	validator *validator.Validator,
	opts ...SubmissionServiceOption,
) SubmissionService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &submissionService{
		repo:      repo,
		notifier:  notifier,
		logger:    logger,
		ops:       NewServiceLogger(logger, "submission"),
		validator: validator,
		policy:    DefaultSubmissionPolicy(),
		clock:     systemClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	if examCache == nil {
		examCache = cache.NewExamCache(nil, 0, logger)
	}
	s.exams = &examReader{
		repo:     repo.Exam(),
		cache:    examCache,
		notifier: notifier,
		ops:      s.ops,
		clock:    s.clock,
	}
	return s
}

// ===== STUDENT OPERATIONS =====

func (s *submissionService) Start(ctx context.Context, examID uint, actor models.Actor) (resp *StartExamResponse, err error) {
	defer func(start time.Time) {
		var id uint
		if resp != nil {
			id = resp.Submission.ID
		}
		s.ops.LogOperation(ctx, "submission.start", actor, "submission", id, time.Since(start), err)
	}(time.Now())

	if !actor.IsStudent() {
		return nil, newPermissionError(actor.UserID, examID, "exam", "start", "only students take exams")
	}

	exam, err := s.exams.load(ctx, examID)
	if err != nil {
		return nil, err
	}
	if actor.ClassID == nil || !exam.HasClass(*actor.ClassID) {
		return nil, newPermissionError(actor.UserID, examID, "exam", "start", "exam does not target the student's class")
	}
	if exam.Status != models.ExamStatusActive {
		return nil, newStateConflict(ErrExamNotActive, "exam", string(exam.Status), string(models.ExamStatusActive))
	}

	existing, err := s.repo.Submission().GetByExamAndStudent(ctx, examID, actor.UserID)
	switch {
	case err == nil:
		return s.resume(ctx, exam, existing)
	case !repositories.IsNotFoundError(err):
		return nil, newPersistenceError("find submission", err)
	}

	now := s.clock()
	submission := models.NewSubmission(exam, actor.UserID, now)
	if err := s.repo.Submission().Create(ctx, submission); err != nil {
		if !repositories.IsDuplicateError(err) {
			return nil, newPersistenceError("create submission", err)
		}
		// a concurrent start won the unique index; continue with its row
		existing, err := s.repo.Submission().GetByExamAndStudent(ctx, examID, actor.UserID)
		if err != nil {
			return nil, newPersistenceError("find submission", err)
		}
		return s.resume(ctx, exam, existing)
	}

	metrics.SubmissionsStartedTotal.Inc()
	s.notifier.NotifySubmission(ctx, events.EventSubmissionStarted, exam, submission)

	return &StartExamResponse{
		Submission:      submission,
		Exam:            redactForStudent(exam),
		TimeRemainingMs: submission.TimeRemaining(now).Milliseconds(),
		Created:         true,
	}, nil
}

func (s *submissionService) SaveAnswers(ctx context.Context, id uint, req *SaveAnswersRequest, actor models.Actor) (resp *SubmissionResponse, err error) {
	defer func(start time.Time) {
		s.ops.LogOperation(ctx, "submission.save_answers", actor, "submission", id, time.Since(start), err)
	}(time.Now())

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	submission, exam, err := s.loadOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if submission.Status.Finalized() {
		return nil, newStateConflict(ErrSubmissionNotInProgress, "submission", string(submission.Status), "")
	}
	if s.policy.expired(submission.DeadlineAt, s.clock()) {
		if err := s.finalizeExpired(ctx, exam, submission); err != nil {
			return nil, err
		}
		return nil, newStateConflict(ErrSubmissionTimeExpired, "submission", string(submission.Status), "")
	}

	now := s.clock()
	submission.MergeAnswers(req.Answers)
	snapshot, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, err
	}
	submission.AutosaveLog = append(submission.AutosaveLog, models.AutosaveEntry{Timestamp: now, Snapshot: snapshot})

	if err := s.repo.Submission().Update(ctx, submission); err != nil {
		return nil, newPersistenceError("save answers", err)
	}
	return s.respond(submission), nil
}

func (s *submissionService) Submit(ctx context.Context, id uint, req *SubmitRequest, actor models.Actor) (resp *SubmissionResponse, err error) {
	defer func(start time.Time) {
		s.ops.LogOperation(ctx, "submission.submit", actor, "submission", id, time.Since(start), err)
	}(time.Now())

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	submission, exam, err := s.loadOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if submission.Status.Finalized() {
		return nil, newStateConflict(ErrSubmissionAlreadySubmitted, "submission", string(submission.Status), string(models.SubmissionSubmitted))
	}
	if s.policy.expired(submission.DeadlineAt, s.clock()) {
		// late payloads are dropped; the stored answers are what counts
		if err := s.finalizeExpired(ctx, exam, submission); err != nil {
			return nil, err
		}
		return s.respond(submission), nil
	}

	submission.MergeAnswers(req.Answers)
	if err := s.finalize(ctx, exam, submission, models.SubmissionSubmitted, causeStudent); err != nil {
		return nil, err
	}
	return s.respond(submission), nil
}

func (s *submissionService) AutoSubmit(ctx context.Context, id uint, req *AutoSubmitRequest, actor models.Actor) (resp *SubmissionResponse, err error) {
	defer func(start time.Time) {
		s.ops.LogOperation(ctx, "submission.auto_submit", actor, "submission", id, time.Since(start), err)
	}(time.Now())

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	submission, exam, err := s.loadOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if submission.Status.Finalized() {
		return nil, newStateConflict(ErrSubmissionAlreadySubmitted, "submission", string(submission.Status), string(models.SubmissionAutoSubmitted))
	}
	if s.policy.expired(submission.DeadlineAt, s.clock()) {
		if err := s.finalizeExpired(ctx, exam, submission); err != nil {
			return nil, err
		}
		return s.respond(submission), nil
	}

	submission.MergeAnswers(req.Answers)
	if req.Reason != nil {
		submission.ViolationLog = append(submission.ViolationLog, autoSubmitEntry(req.Reason, s.clock()))
	}
	if err := s.finalize(ctx, exam, submission, models.SubmissionAutoSubmitted, causeClient); err != nil {
		return nil, err
	}
	return s.respond(submission), nil
}

func (s *submissionService) LogViolation(ctx context.Context, id uint, req *LogViolationRequest, actor models.Actor) (resp *ViolationResponse, err error) {
	defer func(start time.Time) {
		s.ops.LogOperation(ctx, "submission.log_violation", actor, "submission", id, time.Since(start), err)
	}(time.Now())

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	submission, exam, err := s.loadOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if submission.Status.Finalized() {
		return nil, newStateConflict(ErrSubmissionNotInProgress, "submission", string(submission.Status), "")
	}
	if s.policy.expired(submission.DeadlineAt, s.clock()) {
		if err := s.finalizeExpired(ctx, exam, submission); err != nil {
			return nil, err
		}
		return nil, newStateConflict(ErrSubmissionTimeExpired, "submission", string(submission.Status), "")
	}

	entry := models.ViolationEntry{Type: req.Type, Timestamp: s.clock(), Details: req.Details}
	submission.Violations++
	submission.ViolationLog = append(submission.ViolationLog, entry)
	metrics.ViolationsTotal.WithLabelValues(string(req.Type)).Inc()

	shouldAutoSubmit := submission.Violations >= s.policy.ViolationThreshold
	if shouldAutoSubmit {
		err = s.finalize(ctx, exam, submission, models.SubmissionAutoSubmitted, causeViolations)
	} else if err = s.repo.Submission().Update(ctx, submission); err != nil {
		err = newPersistenceError("log violation", err)
	}
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyViolation(ctx, exam, submission, entry, shouldAutoSubmit)
	return &ViolationResponse{
		Violations:       submission.Violations,
		ShouldAutoSubmit: shouldAutoSubmit,
		Submission:       submission,
	}, nil
}

// ===== READ OPERATIONS =====

func (s *submissionService) Get(ctx context.Context, id uint, actor models.Actor) (*SubmissionResponse, error) {
	submission, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission.StudentID != actor.UserID {
		exam, err := s.exams.load(ctx, submission.ExamID)
		if err != nil {
			return nil, err
		}
		if err := authorizeOwner(exam, actor, "view submission"); err != nil {
			return nil, err
		}
	}
	return s.respond(submission), nil
}

func (s *submissionService) ListByExam(ctx context.Context, examID uint, filters repositories.SubmissionFilters, actor models.Actor) ([]*models.Submission, int64, error) {
	exam, err := s.exams.load(ctx, examID)
	if err != nil {
		return nil, 0, err
	}
	if err := authorizeOwner(exam, actor, "list submissions"); err != nil {
		return nil, 0, err
	}

	submissions, total, err := s.repo.Submission().ListByExam(ctx, examID, filters)
	if err != nil {
		return nil, 0, newPersistenceError("list submissions", err)
	}
	return submissions, total, nil
}

// ===== GRADING =====

func (s *submissionService) GradeOpenQuestions(ctx context.Context, id uint, req *GradeRequest, actor models.Actor) (resp *SubmissionResponse, err error) {
	defer func(start time.Time) {
		s.ops.LogOperation(ctx, "submission.grade", actor, "submission", id, time.Since(start), err)
	}(time.Now())

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	submission, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	exam, err := s.exams.load(ctx, submission.ExamID)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(exam, actor, "grade"); err != nil {
		return nil, err
	}
	if !submission.Status.Gradable() {
		return nil, newStateConflict(ErrSubmissionNotGradable, "submission", string(submission.Status), string(models.SubmissionGraded))
	}

	// resolve every grade before touching the submission so a bad id changes nothing
	slots := make([]int, len(req.Grades))
	maxScores := make([]float64, len(req.Grades))
	for i, grade := range req.Grades {
		question, ok := exam.Question(grade.QuestionID)
		idx := submission.AnswerIndex(grade.QuestionID)
		if !ok || idx < 0 {
			return nil, newNotFound(ErrAnswerNotFound, "question", grade.QuestionID)
		}
		slots[i] = idx
		maxScores[i] = question.MaxScore
	}

	for i, grade := range req.Grades {
		answer := &submission.Answers[slots[i]]
		answer.Score = scoring.Clamp(grade.Score, maxScores[i])
		answer.Graded = true
		if grade.Feedback != nil {
			answer.Feedback = grade.Feedback
		}
	}

	from := submission.Status
	now := s.clock()
	result := scoring.Summarize(exam.TotalPoints, submission.Answers)
	submission.Score = result.Score
	submission.TotalPoints = result.TotalPoints
	submission.Percentage = result.Percentage
	submission.Status = models.SubmissionGraded
	submission.GradedAt = &now
	submission.GradedBy = &actor.UserID

	if err := s.repo.Submission().Update(ctx, submission); err != nil {
		return nil, newPersistenceError("grade submission", err)
	}

	metrics.SubmissionPercentageHistogram.WithLabelValues("graded").Observe(float64(result.Percentage))
	if from != models.SubmissionGraded {
		s.ops.LogTransition(ctx, "submission", submission.ID, string(from), string(models.SubmissionGraded), "grader")
	}
	s.notifier.NotifySubmission(ctx, events.EventSubmissionGraded, exam, submission)
	return s.respond(submission), nil
}

// ===== DEADLINE SWEEP =====

func (s *submissionService) SweepExpired(ctx context.Context) (int, error) {
	if !s.policy.EnforceDeadline {
		return 0, nil
	}

	batch := s.policy.SweepBatchSize
	if batch <= 0 {
		batch = DefaultSubmissionPolicy().SweepBatchSize
	}

	swept := 0
	for {
		cutoff := s.clock().Add(-s.policy.DeadlineGrace)
		expired, err := s.repo.Submission().ListExpired(ctx, cutoff, batch)
		if err != nil {
			return swept, newPersistenceError("list expired submissions", err)
		}

		finalized := 0
		for _, submission := range expired {
			if err := ctx.Err(); err != nil {
				return swept, err
			}
			exam, err := s.exams.load(ctx, submission.ExamID)
			if err != nil {
				s.logger.Warn("Skipping expired submission", "submission_id", submission.ID, "exam_id", submission.ExamID, "error", err)
				continue
			}
			if err := s.finalizeExpired(ctx, exam, submission); err != nil {
				return swept, err
			}
			finalized++
		}
		swept += finalized

		// a short page is the last one; a page of skips would loop forever
		if len(expired) < batch || finalized == 0 {
			return swept, nil
		}
	}
}
