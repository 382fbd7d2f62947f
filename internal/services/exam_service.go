package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/exam-service/internal/cache"
	"github.com/SAP-F-2025/exam-service/internal/events"
	"github.com/SAP-F-2025/exam-service/internal/metrics"
	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/repositories"
	"github.com/SAP-F-2025/exam-service/internal/scheduling"
	"github.com/SAP-F-2025/exam-service/internal/scoring"
	"github.com/SAP-F-2025/exam-service/internal/validator"
)

type examService struct {
	repo      repositories.Repository
	exams     *examReader
	detector  *ConflictDetector
	notifier  NotificationEventService
	logger    *slog.Logger
	ops       *ServiceLogger
	validator *validator.Validator
	clock     Clock
}

type ExamServiceOption func(*examService)

func WithExamClock(clock Clock) ExamServiceOption {
	return func(s *examService) { s.clock = clock }
}

func NewExamService(
	repo repositories.Repository,
	examCache *cache.ExamCache,
	notifier NotificationEventService,
	logger *slog.Logger,
	validator *validator.Validator,
	opts ...ExamServiceOption,
) ExamService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &examService{
		repo:      repo,
		detector:  NewConflictDetector(repo.Exam()),
		notifier:  notifier,
		logger:    logger,
		ops:       NewServiceLogger(logger, "exam"),
		validator: validator,
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

// ===== CORE EXAM OPERATIONS =====

func (s *examService) Create(ctx context.Context, req *CreateExamRequest, actor models.Actor) (exam *models.Exam, err error) {
	defer func(start time.Time) {
		var id uint
		if exam != nil {
			id = exam.ID
		}
		s.ops.LogOperation(ctx, "exam.create", actor, "exam", id, time.Since(start), err)
	}(time.Now())

	if !actor.IsTeacher() {
		return nil, newPermissionError(actor.UserID, 0, "exam", "create", "only teachers create exams")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	questions := assignQuestionIDs(req.Questions)
	if errs := s.validator.Question().ValidateQuestions(questions); len(errs) > 0 {
		return nil, errs
	}

	exam = &models.Exam{
		Title:       req.Title,
		Description: req.Description,
		TeacherID:   actor.UserID,
		SubjectID:   req.SubjectID,
		ClassIDs:    req.ClassIDs,
		Type:        req.Type,
		Status:      models.ExamStatusDraft,
		Questions:   questions,
		TotalPoints: scoring.TotalPoints(questions),
	}
	if req.DurationMinutes != nil {
		exam.DurationMinutes = *req.DurationMinutes
	}

	if err := s.repo.Exam().Create(ctx, exam); err != nil {
		return nil, newPersistenceError("create exam", err)
	}

	s.notifier.NotifyExam(ctx, events.EventExamCreated, exam, actor.UserID)
	return exam, nil
}

func (s *examService) Get(ctx context.Context, id uint, actor models.Actor) (*models.Exam, error) {
	exam, err := s.exams.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(exam, actor) {
		return nil, newPermissionError(actor.UserID, id, "exam", "view", "exam is not visible to this user")
	}
	if actor.IsStudent() {
		return redactForStudent(exam), nil
	}
	return exam, nil
}

func (s *examService) List(ctx context.Context, filters repositories.ExamFilters, actor models.Actor) ([]*models.Exam, int64, error) {
	if err := s.validator.Validate(filters); err != nil {
		return nil, 0, err
	}

	switch {
	case actor.Elevated():
	case actor.IsTeacher():
		filters.TeacherID = &actor.UserID
	case actor.IsStudent():
		if actor.ClassID == nil {
			return []*models.Exam{}, 0, nil
		}
		filters.ClassID = actor.ClassID
		filters.ExcludeDrafts = true
	default:
		return nil, 0, newPermissionError(actor.UserID, 0, "exam", "list", "unknown role")
	}

	exams, total, err := s.repo.Exam().List(ctx, filters)
	if err != nil {
		return nil, 0, newPersistenceError("list exams", err)
	}

	for i, exam := range exams {
		if err := s.exams.refresh(ctx, exam); err != nil {
			return nil, 0, err
		}
		if actor.IsStudent() {
			exams[i] = redactForStudent(exam)
		}
	}
	return exams, total, nil
}

func (s *examService) Update(ctx context.Context, id uint, req *UpdateExamRequest, actor models.Actor) (exam *models.Exam, err error) {
	defer func(start time.Time) {
		s.ops.LogOperation(ctx, "exam.update", actor, "exam", id, time.Since(start), err)
	}(time.Now())

	exam, err = s.exams.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(exam, actor, "update"); err != nil {
		return nil, err
	}
	if exam.Status != models.ExamStatusDraft && exam.Status != models.ExamStatusScheduled {
		return nil, newStateConflict(ErrExamNotEditable, "exam", string(exam.Status), "")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	scheduleChanged, err := s.applyPatch(exam, req)
	if err != nil {
		return nil, err
	}

	if scheduleChanged && exam.Status == models.ExamStatusScheduled {
		conflicts, err := s.detector.Detect(ctx, scheduling.Candidate{
			ExamID:          &exam.ID,
			ClassIDs:        exam.ClassIDs,
			Start:           *exam.StartTime,
			DurationMinutes: exam.DurationMinutes,
		})
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			return nil, &ScheduleConflictError{Conflicts: conflicts}
		}
	}

	if err := s.exams.save(ctx, exam); err != nil {
		return nil, err
	}

	s.notifier.NotifyExam(ctx, events.EventExamUpdated, exam, actor.UserID)
	return exam, nil
}

func (s *examService) Delete(ctx context.Context, id uint, actor models.Actor) (err error) {
	defer func(start time.Time) {
		s.ops.LogOperation(ctx, "exam.delete", actor, "exam", id, time.Since(start), err)
	}(time.Now())

	exam, err := s.exams.load(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeOwner(exam, actor, "delete"); err != nil {
		return err
	}
	if exam.Status != models.ExamStatusDraft {
		return newStateConflict(ErrExamNotDeletable, "exam", string(exam.Status), "")
	}

	if err := s.repo.Exam().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return newNotFound(ErrExamNotFound, "exam", id)
		}
		return newPersistenceError("delete exam", err)
	}
	s.exams.cache.Invalidate(ctx, id)

	s.notifier.NotifyExam(ctx, events.EventExamDeleted, exam, actor.UserID)
	return nil
}

// ===== LIFECYCLE OPERATIONS =====

func (s *examService) Schedule(ctx context.Context, id uint, req *ScheduleExamRequest, actor models.Actor) (exam *models.Exam, err error) {
	defer func(start time.Time) {
		s.ops.LogOperation(ctx, "exam.schedule", actor, "exam", id, time.Since(start), err)
	}(time.Now())

	exam, err = s.exams.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(exam, actor, "schedule"); err != nil {
		return nil, err
	}
	if exam.Status != models.ExamStatusDraft {
		return nil, newStateConflict(ErrExamInvalidTransition, "exam", string(exam.Status), string(models.ExamStatusScheduled))
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if errs := s.validator.Business().ValidateSchedule(req.StartTime, req.DurationMinutes, s.clock()); len(errs) > 0 {
		return nil, errs
	}

	conflicts, err := s.detector.Detect(ctx, scheduling.Candidate{
		ExamID:          &exam.ID,
		ClassIDs:        exam.ClassIDs,
		Start:           req.StartTime,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &ScheduleConflictError{Conflicts: conflicts}
	}

	exam.SetSchedule(req.StartTime, req.DurationMinutes)
	if err := s.transition(ctx, exam, models.ExamStatusScheduled, "teacher"); err != nil {
		return nil, err
	}

	s.notifier.NotifyExam(ctx, events.EventExamScheduled, exam, actor.UserID)
	return exam, nil
}

func (s *examService) Activate(ctx context.Context, id uint, actor models.Actor) (exam *models.Exam, err error) {
	defer func(start time.Time) {
		s.ops.LogOperation(ctx, "exam.activate", actor, "exam", id, time.Since(start), err)
	}(time.Now())

	exam, err = s.exams.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(exam, actor, "activate"); err != nil {
		return nil, err
	}
	if exam.Status != models.ExamStatusScheduled {
		return nil, newStateConflict(ErrExamInvalidTransition, "exam", string(exam.Status), string(models.ExamStatusActive))
	}

	now := s.clock()
	exam.ActivatedAt = &now
	if err := s.transition(ctx, exam, models.ExamStatusActive, "teacher"); err != nil {
		return nil, err
	}

	s.notifier.NotifyExam(ctx, events.EventExamActivated, exam, actor.UserID)
	return exam, nil
}

func (s *examService) Complete(ctx context.Context, id uint, actor models.Actor) (exam *models.Exam, err error) {
	defer func(start time.Time) {
		s.ops.LogOperation(ctx, "exam.complete", actor, "exam", id, time.Since(start), err)
	}(time.Now())

	exam, err = s.exams.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(exam, actor, "complete"); err != nil {
		return nil, err
	}
	if exam.Status != models.ExamStatusActive {
		return nil, newStateConflict(ErrExamInvalidTransition, "exam", string(exam.Status), string(models.ExamStatusCompleted))
	}

	now := s.clock()
	exam.CompletedAt = &now
	if err := s.transition(ctx, exam, models.ExamStatusCompleted, "teacher"); err != nil {
		return nil, err
	}

	s.notifier.NotifyExam(ctx, events.EventExamCompleted, exam, actor.UserID)
	return exam, nil
}

func (s *examService) CheckConflicts(ctx context.Context, req *ConflictCheckRequest, actor models.Actor) ([]scheduling.Conflict, error) {
	if !actor.IsTeacher() && !actor.Elevated() {
		return nil, newPermissionError(actor.UserID, 0, "exam", "check conflicts", "only staff check schedules")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	return s.detector.Detect(ctx, scheduling.Candidate{
		ExamID:          req.ExamID,
		ClassIDs:        req.ClassIDs,
		Start:           req.StartTime,
		DurationMinutes: req.DurationMinutes,
	})
}

// ===== HELPERS =====

// transition moves exam forward to the given status and records it.
func (s *examService) transition(ctx context.Context, exam *models.Exam, to models.ExamStatus, trigger string) error {
	from := exam.Status
	if !from.Precedes(to) {
		return newStateConflict(ErrExamInvalidTransition, "exam", string(from), string(to))
	}

	exam.Status = to
	if err := s.exams.save(ctx, exam); err != nil {
		exam.Status = from
		return err
	}

	metrics.ExamTransitionsTotal.WithLabelValues(string(from), string(to), trigger).Inc()
	s.ops.LogTransition(ctx, "exam", exam.ID, string(from), string(to), trigger)
	return nil
}

// applyPatch copies the set fields of req onto exam. It reports whether the
// occupied slot (start, duration or classes) changed.
func (s *examService) applyPatch(exam *models.Exam, req *UpdateExamRequest) (bool, error) {
	slotChanged := false

	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.Description != nil {
		exam.Description = req.Description
	}
	if req.SubjectID != nil {
		exam.SubjectID = *req.SubjectID
	}
	if req.Type != nil {
		exam.Type = *req.Type
	}
	if req.ClassIDs != nil {
		if errs := s.validator.Business().ValidateClassIDs(*req.ClassIDs); len(errs) > 0 {
			return false, errs
		}
		exam.ClassIDs = *req.ClassIDs
		slotChanged = true
	}
	if req.Questions != nil {
		questions := assignQuestionIDs(*req.Questions)
		if errs := s.validator.Question().ValidateQuestions(questions); len(errs) > 0 {
			return false, errs
		}
		exam.Questions = questions
		exam.TotalPoints = scoring.TotalPoints(questions)
	}

	if req.StartTime == nil && req.DurationMinutes == nil {
		return slotChanged, nil
	}

	duration := exam.DurationMinutes
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}

	start := exam.StartTime
	startChanged := req.StartTime != nil && (start == nil || !req.StartTime.Equal(*start))
	if req.StartTime != nil {
		start = req.StartTime
	}

	if startChanged {
		if errs := s.validator.Business().ValidateSchedule(*start, duration, s.clock()); len(errs) > 0 {
			return false, errs
		}
	} else if errs := s.validator.Business().ValidateDuration(duration); len(errs) > 0 {
		return false, errs
	}

	if start == nil {
		exam.DurationMinutes = duration
		return slotChanged, nil
	}

	if startChanged || duration != exam.DurationMinutes {
		slotChanged = true
	}
	exam.SetSchedule(*start, duration)
	return slotChanged, nil
}
