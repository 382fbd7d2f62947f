package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/repositories"
	"github.com/SAP-F-2025/exam-service/internal/repositories/postgres"
)

// setupPostgres starts a throwaway postgres container. Set EXAM_INTEGRATION=1
// to run these tests; they need a docker daemon.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("EXAM_INTEGRATION") == "" {
		t.Skip("EXAM_INTEGRATION not set")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(
		ctx,
		"postgres:16-alpine",
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       "exams",
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(db))
	return db
}

func TestPostgres_SubmissionUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewRepository(setupPostgres(t))

	exam := newExam("t1", models.ExamStatusActive, 10)
	exam.SetSchedule(start, 30)
	require.NoError(t, repo.Exam().Create(ctx, exam))

	require.NoError(t, repo.Submission().Create(ctx, models.NewSubmission(exam, "s1", start)))
	err := repo.Submission().Create(ctx, models.NewSubmission(exam, "s1", start))
	assert.True(t, repositories.IsDuplicateError(err), "got %v", err)
}

func TestPostgres_ClassFilterAndOverlapWindow(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewRepository(setupPostgres(t))

	first := newExam("t1", models.ExamStatusScheduled, 10, 11)
	first.SetSchedule(start, 60)
	require.NoError(t, repo.Exam().Create(ctx, first))

	second := newExam("t1", models.ExamStatusScheduled, 20)
	second.SetSchedule(start.Add(2*time.Hour), 60)
	require.NoError(t, repo.Exam().Create(ctx, second))

	class := uint(11)
	exams, total, err := repo.Exam().List(ctx, repositories.ExamFilters{ClassID: &class})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, exams, 1)
	assert.Equal(t, first.ID, exams[0].ID)

	occupying, err := repo.Exam().ListOccupyingBetween(ctx, start.Add(30*time.Minute), start.Add(90*time.Minute))
	require.NoError(t, err)
	require.Len(t, occupying, 1)
	assert.Equal(t, first.ID, occupying[0].ID)
}

func TestExamRepository_ClassFilterUsesJSONContainment(t *testing.T) {
	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		DSN: "host=localhost user=test password=test dbname=exams sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	var queries []string
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:capture", func(tx *gorm.DB) {
		queries = append(queries, tx.Dialector.Explain(tx.Statement.SQL.String(), tx.Statement.Vars...))
	}))

	class := uint(11)
	_, _, err = postgres.NewExamPostgreSQL(db).List(context.Background(), repositories.ExamFilters{
		ClassID:       &class,
		ExcludeDrafts: true,
		Limit:         5,
	})
	require.NoError(t, err)

	require.NotEmpty(t, queries)
	sql := queries[len(queries)-1]
	assert.Contains(t, sql, "class_ids @> CAST('[11]' AS jsonb)")
	assert.Contains(t, sql, "status <>")
}
