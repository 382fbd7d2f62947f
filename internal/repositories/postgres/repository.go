package postgres

import (
	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	exam       repositories.ExamRepository
	submission repositories.SubmissionRepository
}

// NewRepository wires the gorm-backed stores behind a single manager.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		exam:       NewExamPostgreSQL(db),
		submission: NewSubmissionPostgreSQL(db),
	}
}

func (r *repository) Exam() repositories.ExamRepository {
	return r.exam
}

func (r *repository) Submission() repositories.SubmissionRepository {
	return r.submission
}

// Migrate creates or updates the exam and submission tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Exam{}, &models.Submission{})
}
