package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/repositories"
	"gorm.io/gorm"
)

var examSortColumns = []string{"created_at", "updated_at", "title", "start_time"}

type ExamPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewExamPostgreSQL(db *gorm.DB) repositories.ExamRepository {
	return &ExamPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (e *ExamPostgreSQL) Create(ctx context.Context, exam *models.Exam) error {
	return e.db.WithContext(ctx).Create(exam).Error
}

func (e *ExamPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	var exam models.Exam
	if err := e.db.WithContext(ctx).First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (e *ExamPostgreSQL) Update(ctx context.Context, exam *models.Exam) error {
	return e.db.WithContext(ctx).Save(exam).Error
}

func (e *ExamPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := e.db.WithContext(ctx).Delete(&models.Exam{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (e *ExamPostgreSQL) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	var exams []*models.Exam

	query := e.db.WithContext(ctx).Model(&models.Exam{})
	query = e.applyFilters(query, filters)

	// without jsonb containment (sqlite) class membership is filtered in Go
	if filters.ClassID != nil && !e.jsonContainment() {
		if err := e.applySort(query, filters).Find(&exams).Error; err != nil {
			return nil, 0, err
		}
		matching := make([]*models.Exam, 0, len(exams))
		for _, exam := range exams {
			if exam.HasClass(*filters.ClassID) {
				matching = append(matching, exam)
			}
		}
		start, end := e.helpers.Window(len(matching), filters.Limit, filters.Offset)
		return matching[start:end], int64(len(matching)), nil
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = e.helpers.ApplyPagination(e.applySort(query, filters), filters.Limit, filters.Offset)
	if err := query.Find(&exams).Error; err != nil {
		return nil, 0, err
	}

	return exams, total, nil
}

func (e *ExamPostgreSQL) ListOccupyingBetween(ctx context.Context, from, to time.Time) ([]*models.Exam, error) {
	var exams []*models.Exam
	err := e.db.WithContext(ctx).
		Where("status IN ?", []models.ExamStatus{models.ExamStatusScheduled, models.ExamStatusActive}).
		Where("start_time < ? AND end_time > ?", to, from).
		Find(&exams).Error
	if err != nil {
		return nil, err
	}
	return exams, nil
}

// Helper methods

func (e *ExamPostgreSQL) applyFilters(query *gorm.DB, filters repositories.ExamFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ExcludeDrafts {
		query = query.Where("status <> ?", models.ExamStatusDraft)
	}
	if filters.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filters.TeacherID)
	}
	if filters.SubjectID != nil {
		query = query.Where("subject_id = ?", *filters.SubjectID)
	}
	if filters.ClassID != nil && e.jsonContainment() {
		query = query.Where("class_ids @> CAST(? AS jsonb)", fmt.Sprintf("[%d]", *filters.ClassID))
	}
	if filters.DateFrom != nil {
		query = query.Where("start_time >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("start_time <= ?", *filters.DateTo)
	}
	return query
}

// jsonContainment reports whether class_ids is a jsonb column that supports @>.
func (e *ExamPostgreSQL) jsonContainment() bool {
	return e.db.Dialector.Name() == "postgres"
}

func (e *ExamPostgreSQL) applySort(query *gorm.DB, filters repositories.ExamFilters) *gorm.DB {
	return e.helpers.ApplySort(query, filters.SortBy, filters.SortOrder, examSortColumns, "created_at")
}
