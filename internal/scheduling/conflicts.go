// Package scheduling decides whether exam time slots collide for shared classes.
package scheduling

import (
	"slices"
	"time"

	"github.com/SAP-F-2025/exam-service/internal/models"
)

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start time.Time, durationMinutes int) Interval {
	return Interval{Start: start, End: start.Add(time.Duration(durationMinutes) * time.Minute)}
}

// Overlaps is the single overlap test used everywhere: s1 < e2 && s2 < e1.
// Intervals that only touch at an endpoint do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Candidate describes a proposed slot. ExamID is set when the candidate is an
// existing exam being rescheduled so it never conflicts with itself.
type Candidate struct {
	ExamID          *uint
	ClassIDs        []uint
	Start           time.Time
	DurationMinutes int
}

func (c Candidate) Interval() Interval {
	return NewInterval(c.Start, c.DurationMinutes)
}

// Conflict describes an existing exam that collides with a candidate.
type Conflict struct {
	ExamID          uint              `json:"exam_id"`
	Title           string            `json:"title"`
	Status          models.ExamStatus `json:"status"`
	Start           time.Time         `json:"start_time"`
	End             time.Time         `json:"end_time"`
	DurationMinutes int               `json:"duration_minutes"`
	SharedClassIDs  []uint            `json:"shared_class_ids"`
}

// FindConflicts returns every existing exam that is scheduled or active, shares
// at least one class with the candidate and overlaps its interval.
func FindConflicts(candidate Candidate, existing []*models.Exam) []Conflict {
	window := candidate.Interval()
	conflicts := make([]Conflict, 0)

	for _, exam := range existing {
		if exam == nil || !exam.Status.Occupying() || !exam.Scheduled() {
			continue
		}
		if candidate.ExamID != nil && exam.ID == *candidate.ExamID {
			continue
		}

		shared := sharedClasses(candidate.ClassIDs, exam.ClassIDs)
		if len(shared) == 0 {
			continue
		}

		slot := NewInterval(*exam.StartTime, exam.DurationMinutes)
		if !window.Overlaps(slot) {
			continue
		}

		conflicts = append(conflicts, Conflict{
			ExamID:          exam.ID,
			Title:           exam.Title,
			Status:          exam.Status,
			Start:           slot.Start,
			End:             slot.End,
			DurationMinutes: exam.DurationMinutes,
			SharedClassIDs:  shared,
		})
	}

	return conflicts
}

func sharedClasses(a, b []uint) []uint {
	shared := make([]uint, 0)
	for _, id := range a {
		if slices.Contains(b, id) && !slices.Contains(shared, id) {
			shared = append(shared, id)
		}
	}
	return shared
}
