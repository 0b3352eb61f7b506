package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/garyjia/ledger-auditor/internal/application/port"
	"github.com/garyjia/ledger-auditor/internal/domain/entity"
	"github.com/garyjia/ledger-auditor/internal/infrastructure/persistence/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationRepository implements port.NotificationRepository
type NotificationRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sqlite.DB, logger *zap.Logger) port.NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new notification record and assigns its ID
func (r *NotificationRepository) Create(ctx context.Context, record *entity.NotificationRecord) error {
	query := `
		INSERT INTO notifications (
			id, client_id, entry_id, title, description, severity,
			status, sent_at, error_message, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	if record.Status == "" {
		record.Status = entity.NotificationStatusPending
	}
	id := uuid.NewString()

	n := record.Notification
	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		id,
		n.ClientID,
		n.EntryID,
		n.Title,
		n.Description,
		string(n.Severity),
		record.Status,
		record.SentAt,
		record.ErrorMessage,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create notification",
			zap.String("entry_id", n.EntryID),
			zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	record.ID = id
	return nil
}

// GetByID retrieves a notification record. It returns nil when none exists.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*entity.NotificationRecord, error) {
	query := `
		SELECT id, client_id, entry_id, title, description, severity,
			status, sent_at, error_message, created_at, updated_at
		FROM notifications
		WHERE id = ?
	`

	var record entity.NotificationRecord
	var severity string
	var sentAt sql.NullTime
	var errorMsg sql.NullString

	err := r.db.Executor(ctx).QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.Notification.ClientID,
		&record.Notification.EntryID,
		&record.Notification.Title,
		&record.Notification.Description,
		&severity,
		&record.Status,
		&sentAt,
		&errorMsg,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get notification",
			zap.String("id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	record.Notification.Severity = entity.Severity(severity)
	if sentAt.Valid {
		record.SentAt = &sentAt.Time
	}
	if errorMsg.Valid {
		record.ErrorMessage = errorMsg.String
	}

	return &record, nil
}

// UpdateStatus updates the notification status and optionally sets error message
func (r *NotificationRepository) UpdateStatus(ctx context.Context, id string, status string, errorMsg string) error {
	query := `
		UPDATE notifications
		SET status = ?, error_message = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, status, errorMsg, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update notification status",
			zap.String("id", id),
			zap.String("status", status),
			zap.Error(err))
		return fmt.Errorf("failed to update status: %w", err)
	}

	return requireAffected(result, "notification", id)
}

// MarkSent marks notification as sent
func (r *NotificationRepository) MarkSent(ctx context.Context, id string) error {
	query := `
		UPDATE notifications
		SET status = ?, sent_at = ?, updated_at = ?
		WHERE id = ?
	`

	now := time.Now()
	result, err := r.db.Executor(ctx).ExecContext(ctx, query, entity.NotificationStatusSent, now, now, id)
	if err != nil {
		r.logger.Error("Failed to mark notification as sent",
			zap.String("id", id),
			zap.Error(err))
		return fmt.Errorf("failed to mark sent: %w", err)
	}

	return requireAffected(result, "notification", id)
}

// Verify interface compliance
var _ port.NotificationRepository = (*NotificationRepository)(nil)
