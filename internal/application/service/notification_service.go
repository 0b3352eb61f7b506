package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/ledger-auditor/internal/application/port"
	"github.com/garyjia/ledger-auditor/internal/domain/entity"
)

// NotificationService delivers audit notifications and keeps a delivery log
type NotificationService interface {
	port.Notifier
}

type notificationServiceImpl struct {
	notificationRepo port.NotificationRepository
	messageSender    port.MessageSender
	txManager        port.TransactionManager
	now              func() time.Time
	logger           Logger
}

var _ port.Notifier = (*notificationServiceImpl)(nil)

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notificationRepo port.NotificationRepository,
	messageSender port.MessageSender,
	txManager port.TransactionManager,
	logger Logger,
) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		messageSender:    messageSender,
		txManager:        txManager,
		now:              time.Now,
		logger:           logger,
	}
}

// Notify records the notification, sends it and marks the outcome
func (s *notificationServiceImpl) Notify(ctx context.Context, notification entity.Notification) error {
	s.logger.Info("Sending audit notification",
		"title", notification.Title,
		"severity", notification.Severity,
		"entry_id", notification.EntryID,
	)

	now := s.now()
	record := &entity.NotificationRecord{
		Notification: notification,
		Status:       entity.NotificationStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The pending record commits on its own so a failed delivery stays in the log
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.notificationRepo.Create(txCtx, record)
	})
	if err != nil {
		s.logger.Error("Failed to record audit notification", "error", err, "entry_id", notification.EntryID)
		return fmt.Errorf("create notification: %w", err)
	}

	if err := s.messageSender.SendText(ctx, buildMessage(notification)); err != nil {
		s.logger.Error("Failed to send audit notification", "error", err, "notification_id", record.ID)
		if uerr := s.notificationRepo.UpdateStatus(ctx, record.ID, entity.NotificationStatusFailed, err.Error()); uerr != nil {
			s.logger.Error("Failed to mark notification failed", "error", uerr, "notification_id", record.ID)
		}
		return fmt.Errorf("send message: %w", err)
	}

	if err := s.notificationRepo.MarkSent(ctx, record.ID); err != nil {
		s.logger.Error("Failed to mark notification sent", "error", err, "notification_id", record.ID)
		return fmt.Errorf("mark notification sent: %w", err)
	}

	s.logger.Info("Audit notification sent", "notification_id", record.ID, "entry_id", notification.EntryID)
	return nil
}

// buildMessage renders a notification as operator chat text
func buildMessage(n entity.Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n\n%s", strings.ToUpper(string(n.Severity)), n.Title, n.Description)
	if n.ClientID != "" {
		fmt.Fprintf(&b, "\nClient: %s", n.ClientID)
	}
	if n.EntryID != "" {
		fmt.Fprintf(&b, "\nEntry: %s", n.EntryID)
	}
	return b.String()
}
