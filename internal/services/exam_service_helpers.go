package services

import (
	"context"

	"github.com/SAP-F-2025/exam-service/internal/cache"
	"github.com/SAP-F-2025/exam-service/internal/events"
	"github.com/SAP-F-2025/exam-service/internal/metrics"
	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/repositories"
	"github.com/SAP-F-2025/exam-service/internal/scoring"
	"github.com/google/uuid"
)

// examReader loads exams through the cache and brings their status up to date.
// Both lifecycle services read exams through it.
type examReader struct {
	repo     repositories.ExamRepository
	cache    *cache.ExamCache
	notifier NotificationEventService
	ops      *ServiceLogger
	clock    Clock
}

// load returns the exam with lazy activation applied and total points backfilled.
func (r *examReader) load(ctx context.Context, id uint) (*models.Exam, error) {
	exam := r.cache.Get(ctx, id)
	if exam == nil {
		var err error
		exam, err = r.fetch(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	if err := r.refresh(ctx, exam); err != nil {
		return nil, err
	}
	return exam, nil
}

// fetch reads the exam from the store and caches it. A writer that committed
// between the read and the Put leaves a different UpdatedAt behind, in which
// case the cached copy is dropped and the newer row returned.
func (r *examReader) fetch(ctx context.Context, id uint) (*models.Exam, error) {
	exam, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.Put(ctx, exam)

	current, err := r.get(ctx, id)
	if err != nil {
		r.cache.Invalidate(ctx, id)
		return nil, err
	}
	if !current.UpdatedAt.Equal(exam.UpdatedAt) {
		r.cache.Invalidate(ctx, id)
	}
	return current, nil
}

func (r *examReader) get(ctx context.Context, id uint) (*models.Exam, error) {
	exam, err := r.repo.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, newNotFound(ErrExamNotFound, "exam", id)
		}
		return nil, newPersistenceError("get exam", err)
	}
	return exam, nil
}

// refresh backfills total points and applies lazy activation, persisting the
// exam and recording the transition when anything changed.
func (r *examReader) refresh(ctx context.Context, exam *models.Exam) error {
	dirty := false
	if exam.TotalPoints == 0 && len(exam.Questions) > 0 {
		exam.TotalPoints = scoring.TotalPoints(exam.Questions)
		dirty = true
	}

	activated := r.activateIfDue(exam)
	if dirty || activated {
		if err := r.save(ctx, exam); err != nil {
			return err
		}
	}
	if activated {
		metrics.ExamTransitionsTotal.WithLabelValues(string(models.ExamStatusScheduled), string(models.ExamStatusActive), "lazy").Inc()
		r.ops.LogTransition(ctx, "exam", exam.ID, string(models.ExamStatusScheduled), string(models.ExamStatusActive), "lazy")
		r.notifier.NotifyExam(ctx, events.EventExamActivated, exam, "")
	}
	return nil
}

// activateIfDue flips a scheduled exam to active once its start time has been reached.
func (r *examReader) activateIfDue(exam *models.Exam) bool {
	if exam.Status != models.ExamStatusScheduled || exam.StartTime == nil {
		return false
	}
	now := r.clock()
	if now.Before(*exam.StartTime) {
		return false
	}
	exam.Status = models.ExamStatusActive
	exam.ActivatedAt = &now
	return true
}

func (r *examReader) save(ctx context.Context, exam *models.Exam) error {
	if err := r.repo.Update(ctx, exam); err != nil {
		return newPersistenceError("update exam", err)
	}
	r.cache.Invalidate(ctx, exam.ID)
	return nil
}

// ===== AUTHORIZATION =====

// authorizeOwner allows the owning teacher plus deans and admins.
func authorizeOwner(exam *models.Exam, actor models.Actor, action string) error {
	if actor.Elevated() || (actor.IsTeacher() && exam.OwnedBy(actor.UserID)) {
		return nil
	}
	return newPermissionError(actor.UserID, exam.ID, "exam", action, "not the owner of the exam")
}

// canView decides read access: owners and elevated roles see everything,
// students see non-draft exams that target their class.
func canView(exam *models.Exam, actor models.Actor) bool {
	switch {
	case actor.Elevated():
		return true
	case actor.IsTeacher():
		return exam.OwnedBy(actor.UserID)
	case actor.IsStudent():
		return exam.Status != models.ExamStatusDraft && actor.ClassID != nil && exam.HasClass(*actor.ClassID)
	default:
		return false
	}
}

// ===== QUESTIONS =====

// assignQuestionIDs gives every question without an id a fresh one.
func assignQuestionIDs(questions []models.Question) []models.Question {
	out := make([]models.Question, len(questions))
	copy(out, questions)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
	}
	return out
}

// redactForStudent returns a copy of exam with MCQ answers removed.
func redactForStudent(exam *models.Exam) *models.Exam {
	redacted := *exam
	redacted.Questions = make([]models.Question, len(exam.Questions))
	for i, q := range exam.Questions {
		if mcq, ok := q.Body.(models.MultipleChoice); ok {
			mcq.CorrectAnswer = ""
			q.Body = mcq
		}
		redacted.Questions[i] = q
	}
	return &redacted
}
