package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/SAP-F-2025/exam-service/internal/events"
	"github.com/SAP-F-2025/exam-service/internal/models"
)

func TestNotificationEventService_PublishEvents(t *testing.T) {
	// Setup
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockPublisher := events.NewMockEventPublisher(logger)
	service := NewNotificationEventService(mockPublisher, logger)

	ctx := context.Background()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	exam := &models.Exam{ID: 7, Title: "Physics", TeacherID: "teacher-1", ClassIDs: []uint{3}, Status: models.ExamStatusScheduled}
	exam.SetSchedule(start, 45)

	t.Run("ExamEvent", func(t *testing.T) {
		service.NotifyExam(ctx, events.EventExamScheduled, exam, "teacher-1")
		service.Wait()

		published := mockPublisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}

		event := published[0]
		if event.Type != events.EventExamScheduled {
			t.Errorf("Expected event type %s, got %s", events.EventExamScheduled, event.Type)
		}

		// Check event data
		if eventData, ok := event.Data.(events.ExamEvent); ok {
			if eventData.ExamID != 7 {
				t.Errorf("Expected exam id 7, got %d", eventData.ExamID)
			}
			if eventData.DurationMinutes != 45 {
				t.Errorf("Expected duration 45, got %d", eventData.DurationMinutes)
			}
			if eventData.ActorID != "teacher-1" {
				t.Errorf("Expected actor 'teacher-1', got '%s'", eventData.ActorID)
			}
		} else {
			t.Error("Event data is not ExamEvent type")
		}
	})

	t.Run("Event_Structure_Validation", func(t *testing.T) {
		mockPublisher.ClearEvents()

		submission := models.NewSubmission(exam, "student-1", start)
		entry := models.ViolationEntry{Type: models.ViolationTabSwitch, Timestamp: start}
		service.NotifyViolation(ctx, exam, submission, entry, true)
		service.Wait()

		published := mockPublisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}

		event := published[0]
		if event.ID == "" {
			t.Error("Event ID should not be empty")
		}
		if event.Source != "exam-service" {
			t.Errorf("Expected source 'exam-service', got '%s'", event.Source)
		}
		if event.Version != "1.0" {
			t.Errorf("Expected version '1.0', got '%s'", event.Version)
		}
		if event.Timestamp.IsZero() {
			t.Error("Event timestamp should not be zero")
		}
		if eventData, ok := event.Data.(events.ViolationEvent); !ok || !eventData.ShouldAutoSubmit {
			t.Error("Expected a ViolationEvent that requests auto-submission")
		}
	})

	t.Run("Failures_Are_Swallowed", func(t *testing.T) {
		mockPublisher.ClearEvents()
		mockPublisher.Err = errors.New("broker unavailable")
		defer func() { mockPublisher.Err = nil }()

		// must not panic or block
		service.NotifyExam(ctx, events.EventExamActivated, exam, "")
		service.Wait()

		if len(mockPublisher.GetPublishedEvents()) != 0 {
			t.Error("Expected no stored events when publishing fails")
		}
	})
}

func TestNotificationEventService_NilPublisher(t *testing.T) {
	service := NewNotificationEventService(nil, slog.Default())

	service.NotifyExam(context.Background(), events.EventExamCreated, &models.Exam{ID: 1}, "teacher-1")
	service.Wait()
}
