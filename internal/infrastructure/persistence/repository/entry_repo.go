package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/garyjia/ledger-auditor/internal/application/port"
	"github.com/garyjia/ledger-auditor/internal/domain/entity"
	"github.com/garyjia/ledger-auditor/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/ledger-auditor/pkg/utils"
	"go.uber.org/zap"
)

// minAverageSamples is the number of entries a category needs before its
// observed average replaces the configured one
const minAverageSamples = 3

// duplicateValueTolerance absorbs float noise when comparing stored values
const duplicateValueTolerance = 0.005

// EntryRepository implements port.EntryRepository
type EntryRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(db *sqlite.DB, logger *zap.Logger) port.EntryRepository {
	return &EntryRepository{
		db:     db,
		logger: logger,
	}
}

const entryColumns = `id, client_id, entry_date, value, description, kind, category, confidence`

// Save inserts an entry or replaces the stored copy with the same ID
func (r *EntryRepository) Save(ctx context.Context, e entity.Entry) error {
	query := `
		INSERT INTO entries (
			id, client_id, entry_date, value, description, description_key,
			kind, category, confidence
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			client_id = excluded.client_id,
			entry_date = excluded.entry_date,
			value = excluded.value,
			description = excluded.description,
			description_key = excluded.description_key,
			kind = excluded.kind,
			category = excluded.category,
			confidence = excluded.confidence,
			removed = 0,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		e.ID,
		e.ClientID,
		formatDate(e.Date),
		nullFloat(e.Value),
		e.Description,
		descriptionKey(e.Description),
		string(e.Kind),
		e.Category,
		e.Confidence,
	)
	if err != nil {
		r.logger.Error("Failed to save entry", zap.String("entry_id", e.ID), zap.Error(err))
		return fmt.Errorf("failed to save entry: %w", err)
	}

	return nil
}

// GetByID retrieves an entry by ID. It returns nil when no entry exists.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*entity.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = ?`

	e, err := scanEntry(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get entry", zap.String("entry_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	return e, nil
}

// FetchEntries implements port.EntrySource. Removed entries are skipped.
// Entries without a date are kept in every period so they still get audited.
func (r *EntryRepository) FetchEntries(ctx context.Context, clientID string, period *entity.Period) ([]entity.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE client_id = ? AND removed = 0`
	args := []interface{}{clientID}

	if period != nil {
		query += ` AND (entry_date IS NULL OR entry_date BETWEEN ? AND ?)`
		args = append(args, period.From.Format(dateLayout), period.To.Format(dateLayout))
	}
	query += ` ORDER BY entry_date IS NULL, entry_date, created_at, id`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to fetch entries", zap.String("client_id", clientID), zap.Error(err))
		return nil, fmt.Errorf("failed to fetch entries: %w", err)
	}
	defer rows.Close()

	var entries []entity.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, *e)
	}

	return entries, rows.Err()
}

// ApplyCorrection implements port.CorrectionWriter
func (r *EntryRepository) ApplyCorrection(ctx context.Context, entryID string, s entity.CorrectionSuggestion) error {
	query := `
		UPDATE entries
		SET category = COALESCE(?, category),
			value = COALESCE(?, value),
			entry_date = COALESCE(?, entry_date),
			removed = CASE WHEN ? THEN 1 ELSE removed END,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	var category sql.NullString
	if s.Category != nil {
		category = sql.NullString{String: *s.Category, Valid: true}
	}

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		category,
		nullFloat(s.Value),
		formatDate(s.Date),
		s.RemoveDuplicate,
		entryID,
	)
	if err != nil {
		r.logger.Error("Failed to apply correction", zap.String("entry_id", entryID), zap.Error(err))
		return fmt.Errorf("failed to apply correction: %w", err)
	}

	return requireAffected(result, "entry", entryID)
}

// UpdateClassification stores the category and confidence assigned by a classifier
func (r *EntryRepository) UpdateClassification(ctx context.Context, entryID, category string, confidence float64) error {
	query := `
		UPDATE entries
		SET category = ?, confidence = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, category, confidence, entryID)
	if err != nil {
		r.logger.Error("Failed to update classification", zap.String("entry_id", entryID), zap.Error(err))
		return fmt.Errorf("failed to update classification: %w", err)
	}

	return requireAffected(result, "entry", entryID)
}

// IsLikelyDuplicate implements port.DuplicateDetector. Another live entry of the
// same client with the same date, value and description counts as a duplicate.
func (r *EntryRepository) IsLikelyDuplicate(ctx context.Context, e entity.Entry) (bool, error) {
	if e.Date == nil || e.Value == nil {
		return false, nil
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM entries
			WHERE client_id = ?
				AND id <> ?
				AND removed = 0
				AND entry_date = ?
				AND ABS(value - ?) < ?
				AND description_key = ?
		)
	`

	var exists bool
	err := r.db.Executor(ctx).QueryRowContext(ctx, query,
		e.ClientID,
		e.ID,
		e.Date.Format(dateLayout),
		*e.Value,
		duplicateValueTolerance,
		descriptionKey(e.Description),
	).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to look up duplicates", zap.String("entry_id", e.ID), zap.Error(err))
		return false, fmt.Errorf("failed to look up duplicates: %w", err)
	}

	return exists, nil
}

// ReferenceAverages implements port.CategoryStats
func (r *EntryRepository) ReferenceAverages(ctx context.Context) (entity.CategoryAverages, error) {
	query := `
		SELECT category, AVG(value)
		FROM entries
		WHERE removed = 0 AND category <> '' AND value > 0
		GROUP BY category
		HAVING COUNT(*) >= ?
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, minAverageSamples)
	if err != nil {
		r.logger.Error("Failed to compute category averages", zap.Error(err))
		return nil, fmt.Errorf("failed to compute category averages: %w", err)
	}
	defer rows.Close()

	averages := make(entity.CategoryAverages)
	for rows.Next() {
		var category string
		var avg float64
		if err := rows.Scan(&category, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan category average: %w", err)
		}
		averages[category] = avg
	}

	return averages, rows.Err()
}

// ListClientIDs implements port.ClientDirectory
func (r *EntryRepository) ListClientIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx,
		`SELECT DISTINCT client_id FROM entries WHERE removed = 0 ORDER BY client_id`)
	if err != nil {
		r.logger.Error("Failed to list clients", zap.Error(err))
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan client id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*entity.Entry, error) {
	var e entity.Entry
	var date sql.NullString
	var value sql.NullFloat64
	var kind string

	if err := row.Scan(&e.ID, &e.ClientID, &date, &value, &e.Description, &kind, &e.Category, &e.Confidence); err != nil {
		return nil, err
	}

	e.Kind = entity.EntryKind(kind)
	if value.Valid {
		v := value.Float64
		e.Value = &v
	}
	if date.Valid {
		t, err := time.Parse(dateLayout, date.String)
		if err != nil {
			return nil, fmt.Errorf("entry %s has malformed date %q: %w", e.ID, date.String, err)
		}
		e.Date = &t
	}

	return &e, nil
}

func requireAffected(result sql.Result, what, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}

func formatDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(dateLayout), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func descriptionKey(description string) string {
	return utils.NormalizeKey(description)
}

// Verify interface compliance
var _ port.EntryRepository = (*EntryRepository)(nil)
