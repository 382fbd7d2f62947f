package scheduling

import (
	"testing"
	"time"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func scheduledExam(id uint, status models.ExamStatus, start time.Time, minutes int, classes ...uint) *models.Exam {
	exam := &models.Exam{ID: id, Title: "exam", Status: status, ClassIDs: classes}
	exam.SetSchedule(start, minutes)
	return exam
}

func TestIntervalOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"identical", NewInterval(base, 60), NewInterval(base, 60), true},
		{"partial", NewInterval(base, 60), NewInterval(base.Add(30*time.Minute), 60), true},
		{"contained", NewInterval(base, 120), NewInterval(base.Add(30*time.Minute), 10), true},
		{"touching endpoints", NewInterval(base, 60), NewInterval(base.Add(60*time.Minute), 60), false},
		{"disjoint", NewInterval(base, 30), NewInterval(base.Add(2*time.Hour), 30), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestFindConflicts(t *testing.T) {
	existing := []*models.Exam{
		scheduledExam(1, models.ExamStatusScheduled, base, 60, 10),
		scheduledExam(2, models.ExamStatusActive, base.Add(30*time.Minute), 60, 20, 30),
		scheduledExam(3, models.ExamStatusCompleted, base, 60, 10),
		scheduledExam(4, models.ExamStatusScheduled, base.Add(60*time.Minute), 30, 10),
		{ID: 5, Status: models.ExamStatusDraft, ClassIDs: []uint{10}},
	}

	t.Run("shared class and overlap", func(t *testing.T) {
		conflicts := FindConflicts(Candidate{ClassIDs: []uint{10}, Start: base.Add(15 * time.Minute), DurationMinutes: 30}, existing)

		require.Len(t, conflicts, 1)
		assert.Equal(t, uint(1), conflicts[0].ExamID)
		assert.Equal(t, []uint{10}, conflicts[0].SharedClassIDs)
	})

	t.Run("active exams block slots", func(t *testing.T) {
		conflicts := FindConflicts(Candidate{ClassIDs: []uint{30, 40}, Start: base.Add(45 * time.Minute), DurationMinutes: 10}, existing)

		require.Len(t, conflicts, 1)
		assert.Equal(t, uint(2), conflicts[0].ExamID)
		assert.Equal(t, []uint{30}, conflicts[0].SharedClassIDs)
	})

	t.Run("no shared class", func(t *testing.T) {
		assert.Empty(t, FindConflicts(Candidate{ClassIDs: []uint{99}, Start: base, DurationMinutes: 120}, existing))
	})

	t.Run("candidate excludes itself", func(t *testing.T) {
		id := uint(1)
		conflicts := FindConflicts(Candidate{ExamID: &id, ClassIDs: []uint{10}, Start: base, DurationMinutes: 30}, existing)
		assert.Empty(t, conflicts)
	})

	t.Run("back to back is not a conflict", func(t *testing.T) {
		conflicts := FindConflicts(Candidate{ClassIDs: []uint{10}, Start: base.Add(90 * time.Minute), DurationMinutes: 30}, existing)
		assert.Empty(t, conflicts)
	})
}

func TestFindConflictsSymmetric(t *testing.T) {
	a := scheduledExam(1, models.ExamStatusScheduled, base, 90, 10, 11)
	b := scheduledExam(2, models.ExamStatusScheduled, base.Add(time.Hour), 45, 11)

	aAgainstB := FindConflicts(Candidate{ExamID: &a.ID, ClassIDs: a.ClassIDs, Start: *a.StartTime, DurationMinutes: a.DurationMinutes}, []*models.Exam{b})
	bAgainstA := FindConflicts(Candidate{ExamID: &b.ID, ClassIDs: b.ClassIDs, Start: *b.StartTime, DurationMinutes: b.DurationMinutes}, []*models.Exam{a})

	assert.Len(t, aAgainstB, 1)
	assert.Len(t, bAgainstA, 1)
}
