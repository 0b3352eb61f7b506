package port

import (
	"context"

	"github.com/garyjia/ledger-auditor/internal/domain/entity"
)

// EntrySource retrieves the accounting entries of a client.
// A nil period means every entry on record.
type EntrySource interface {
	FetchEntries(ctx context.Context, clientID string, period *entity.Period) ([]entity.Entry, error)
}

// DuplicateDetector searches the stored history for an entry similar to the given one
type DuplicateDetector interface {
	IsLikelyDuplicate(ctx context.Context, entry entity.Entry) (bool, error)
}

// CorrectionWriter writes an accepted automatic correction back to the system of record
type CorrectionWriter interface {
	ApplyCorrection(ctx context.Context, entryID string, suggestion entity.CorrectionSuggestion) error
}

// Notifier surfaces audit findings to an operator-facing channel
type Notifier interface {
	Notify(ctx context.Context, notification entity.Notification) error
}

// HistoryRecorder appends verification results to the audit history
type HistoryRecorder interface {
	RecordResult(ctx context.Context, clientID string, result entity.VerificationResult) error
}

// CategoryStats supplies the reference average value of each category
type CategoryStats interface {
	ReferenceAverages(ctx context.Context) (entity.CategoryAverages, error)
}

// ClientDirectory lists the clients whose entries are audited on a schedule
type ClientDirectory interface {
	ListClientIDs(ctx context.Context) ([]string, error)
}

// Classification is the output of an EntryClassifier
type Classification struct {
	Category   string
	Confidence float64
	Reasoning  string
}

// EntryClassifier assigns a category to an entry from its description
type EntryClassifier interface {
	Classify(ctx context.Context, entry entity.Entry) (*Classification, error)
}

// MessageSender delivers a plain text message to the operator channel
type MessageSender interface {
	SendText(ctx context.Context, content string) error
}
