package port

import (
	"context"

	"github.com/garyjia/ledger-auditor/internal/domain/entity"
)

// EntryRepository defines persistence operations for Entry
type EntryRepository interface {
	EntrySource
	CorrectionWriter
	DuplicateDetector
	CategoryStats
	ClientDirectory

	Save(ctx context.Context, entry entity.Entry) error
	GetByID(ctx context.Context, id string) (*entity.Entry, error)
	UpdateClassification(ctx context.Context, entryID, category string, confidence float64) error
}

// ResultRepository defines persistence operations for the verification history
type ResultRepository interface {
	HistoryRecorder

	GetByEntryID(ctx context.Context, entryID string) ([]*entity.ResultRecord, error)
}

// NotificationRepository defines persistence operations for NotificationRecord
type NotificationRepository interface {
	Create(ctx context.Context, record *entity.NotificationRecord) error
	GetByID(ctx context.Context, id string) (*entity.NotificationRecord, error)
	UpdateStatus(ctx context.Context, id string, status string, errorMsg string) error
	MarkSent(ctx context.Context, id string) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
