package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/SAP-F-2025/exam-service/internal/errors"
	"github.com/SAP-F-2025/exam-service/internal/models"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
}

func NewServiceLogger(logger *slog.Logger, component string) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", "exam-service", "component", component),
	}
}

// ===== OPERATION LOGGING =====

// LogOperation records the outcome of one service call. Caller mistakes log at
// warn or info; anything else is an error.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation string, actor models.Actor, resourceType string, resourceID uint, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	if err != nil {
		kind := apperrors.KindOf(err)
		status = string(kind)
		switch kind {
		case apperrors.KindValidation, apperrors.KindStateConflict, apperrors.KindAuthorization:
			level = slog.LevelWarn
		case apperrors.KindNotFound:
			level = slog.LevelInfo
		default:
			level = slog.LevelError
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", actor.UserID),
		slog.String("role", string(actor.Role)),
		slog.Uint64("resource_id", uint64(resourceID)),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		switch e := err.(type) {
		case ValidationErrors:
			attrs = append(attrs, slog.Int("validation_errors_count", len(e)))
		case *AuthorizationError:
			attrs = append(attrs, slog.String("permission_action", e.Action))
		}
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

// LogTransition records a status change of an exam or submission.
func (l *ServiceLogger) LogTransition(ctx context.Context, resourceType string, resourceID uint, from, to, trigger string) {
	l.logger.LogAttrs(ctx, slog.LevelInfo, fmt.Sprintf("%s status changed", resourceType),
		slog.String("resource_type", resourceType),
		slog.Uint64("resource_id", uint64(resourceID)),
		slog.String("from", from),
		slog.String("to", to),
		slog.String("trigger", trigger),
	)
}
