package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/garyjia/ledger-auditor/internal/application/port"
	"github.com/garyjia/ledger-auditor/internal/domain/entity"
	"github.com/garyjia/ledger-auditor/internal/infrastructure/persistence/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResultRepository implements port.ResultRepository
type ResultRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewResultRepository creates a new verification history repository
func NewResultRepository(db *sqlite.DB, logger *zap.Logger) port.ResultRepository {
	return &ResultRepository{
		db:     db,
		logger: logger,
	}
}

// RecordResult appends a verification result to the history
func (r *ResultRepository) RecordResult(ctx context.Context, clientID string, result entity.VerificationResult) error {
	problems, err := json.Marshal(nonNilProblems(result.Problems))
	if err != nil {
		return fmt.Errorf("failed to encode problems: %w", err)
	}

	var suggestion sql.NullString
	if result.SuggestedCorrection != nil {
		data, err := json.Marshal(result.SuggestedCorrection)
		if err != nil {
			return fmt.Errorf("failed to encode suggestion: %w", err)
		}
		suggestion = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO verification_results (
			id, entry_id, client_id, status, confidence,
			problems, suggested_correction, audited_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Executor(ctx).ExecContext(ctx, query,
		uuid.NewString(),
		result.EntryID,
		clientID,
		string(result.Status),
		result.Confidence,
		string(problems),
		suggestion,
		result.Timestamp.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to record verification result",
			zap.String("entry_id", result.EntryID),
			zap.Error(err))
		return fmt.Errorf("failed to record result: %w", err)
	}

	return nil
}

// GetByEntryID returns the audit history of an entry, oldest first
func (r *ResultRepository) GetByEntryID(ctx context.Context, entryID string) ([]*entity.ResultRecord, error) {
	query := `
		SELECT id, client_id, entry_id, status, confidence,
			problems, suggested_correction, audited_at, created_at
		FROM verification_results
		WHERE entry_id = ?
		ORDER BY audited_at, rowid
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, entryID)
	if err != nil {
		r.logger.Error("Failed to get verification history",
			zap.String("entry_id", entryID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var records []*entity.ResultRecord
	for rows.Next() {
		var rec entity.ResultRecord
		var status, problems string
		var suggestion sql.NullString

		if err := rows.Scan(
			&rec.ID,
			&rec.ClientID,
			&rec.Result.EntryID,
			&status,
			&rec.Result.Confidence,
			&problems,
			&suggestion,
			&rec.Result.Timestamp,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}

		rec.Result.Status = entity.VerificationStatus(status)
		if err := json.Unmarshal([]byte(problems), &rec.Result.Problems); err != nil {
			return nil, fmt.Errorf("failed to decode problems of result %s: %w", rec.ID, err)
		}
		if suggestion.Valid {
			rec.Result.SuggestedCorrection = &entity.CorrectionSuggestion{}
			if err := json.Unmarshal([]byte(suggestion.String), rec.Result.SuggestedCorrection); err != nil {
				return nil, fmt.Errorf("failed to decode suggestion of result %s: %w", rec.ID, err)
			}
		}

		records = append(records, &rec)
	}

	return records, rows.Err()
}

func nonNilProblems(problems []entity.Problem) []entity.Problem {
	if problems == nil {
		return []entity.Problem{}
	}
	return problems
}

// Verify interface compliance
var _ port.ResultRepository = (*ResultRepository)(nil)
