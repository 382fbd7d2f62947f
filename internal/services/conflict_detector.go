package services

import (
	"context"

	"github.com/SAP-F-2025/exam-service/internal/repositories"
	"github.com/SAP-F-2025/exam-service/internal/scheduling"
)

// ConflictDetector loads the exams that could collide with a candidate slot and
// applies the pure conflict rules to them.
type ConflictDetector struct {
	exams repositories.ExamRepository
}

func NewConflictDetector(exams repositories.ExamRepository) *ConflictDetector {
	return &ConflictDetector{exams: exams}
}

func (d *ConflictDetector) Detect(ctx context.Context, candidate scheduling.Candidate) ([]scheduling.Conflict, error) {
	window := candidate.Interval()

	existing, err := d.exams.ListOccupyingBetween(ctx, window.Start, window.End)
	if err != nil {
		return nil, newPersistenceError("load exams for conflict detection", err)
	}

	return scheduling.FindConflicts(candidate, existing), nil
}
