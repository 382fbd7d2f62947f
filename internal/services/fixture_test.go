package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/exam-service/internal/events"
	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/repositories"
	"github.com/SAP-F-2025/exam-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/exam-service/internal/testutil"
	"github.com/SAP-F-2025/exam-service/internal/validator"
	"github.com/stretchr/testify/require"
)

var (
	classA = uint(10)
	classB = uint(20)

	teacher      = models.Actor{UserID: "teacher-1", Role: models.RoleTeacher}
	otherTeacher = models.Actor{UserID: "teacher-2", Role: models.RoleTeacher}
	dean         = models.Actor{UserID: "dean-1", Role: models.RoleDean}
	student      = models.Actor{UserID: "student-1", Role: models.RoleStudent, ClassID: &classA}
	classmate    = models.Actor{UserID: "student-2", Role: models.RoleStudent, ClassID: &classA}
	outsider     = models.Actor{UserID: "student-3", Role: models.RoleStudent, ClassID: &classB}
)

type fixture struct {
	ctx         context.Context
	now         time.Time
	repo        repositories.Repository
	publisher   *events.MockEventPublisher
	notifier    NotificationEventService
	exams       ExamService
	submissions SubmissionService
}

func newFixture(t *testing.T, policy ...SubmissionPolicy) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		ctx:       context.Background(),
		now:       time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		repo:      postgres.NewRepository(testutil.NewTestDB(t)),
		publisher: events.NewMockEventPublisher(logger),
	}
	f.notifier = NewNotificationEventService(f.publisher, logger)

	p := DefaultSubmissionPolicy()
	if len(policy) > 0 {
		p = policy[0]
	}

	v := validator.New()
	f.exams = NewExamService(f.repo, nil, f.notifier, logger, v, WithExamClock(f.clock))
	f.submissions = NewSubmissionService(f.repo, nil, f.notifier, logger, v,
		WithSubmissionClock(f.clock), WithSubmissionPolicy(p))
	return f
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func mcq(id string, maxScore float64, correct string) models.Question {
	return models.Question{
		ID:       id,
		Text:     "Question " + id,
		MaxScore: maxScore,
		Body:     models.MultipleChoice{Options: []string{"A", "B", "C"}, CorrectAnswer: correct},
	}
}

func open(id string, maxScore float64) models.Question {
	return models.Question{ID: id, Text: "Explain " + id, MaxScore: maxScore, Body: models.OpenEnded{}}
}

func (f *fixture) createExam(t *testing.T, questions ...models.Question) *models.Exam {
	t.Helper()
	if len(questions) == 0 {
		questions = []models.Question{mcq("q1", 10, "A"), mcq("q2", 10, "B")}
	}
	exam, err := f.exams.Create(f.ctx, &CreateExamRequest{
		Title:     "Midterm",
		SubjectID: 1,
		ClassIDs:  []uint{classA},
		Type:      models.ExamTypeMidterm,
		Questions: questions,
	}, teacher)
	require.NoError(t, err)
	return exam
}

func (f *fixture) scheduleExam(t *testing.T, exam *models.Exam, in time.Duration, minutes int) *models.Exam {
	t.Helper()
	scheduled, err := f.exams.Schedule(f.ctx, exam.ID, &ScheduleExamRequest{
		StartTime:       f.now.Add(in),
		DurationMinutes: minutes,
	}, teacher)
	require.NoError(t, err)
	return scheduled
}

// activeExam returns an active exam with a 60 minute window, activated lazily.
func (f *fixture) activeExam(t *testing.T, questions ...models.Question) *models.Exam {
	t.Helper()
	exam := f.createExam(t, questions...)
	f.scheduleExam(t, exam, time.Hour, 60)
	f.advance(time.Hour)
	return exam
}

func (f *fixture) start(t *testing.T, exam *models.Exam, actor models.Actor) *StartExamResponse {
	t.Helper()
	resp, err := f.submissions.Start(f.ctx, exam.ID, actor)
	require.NoError(t, err)
	return resp
}

func (f *fixture) publishedTypes() []events.EventType {
	f.notifier.Wait()
	return f.publisher.EventTypes()
}
