package store

import (
	"context"
	"fmt"
	"time"
)

// Analysis is one persisted prediction outcome. History is best effort; a
// failed insert never fails the prediction itself.
type Analysis struct {
	ID                string    `json:"analysis_id"`
	UserID            int64     `json:"-"`
	Filename          string    `json:"filename"`
	FileSizeBytes     int64     `json:"file_size_bytes"`
	PredictedClass    string    `json:"predicted_class"`
	PrimaryConfidence float64   `json:"primary_confidence"`
	ModelVersion      string    `json:"model_version"`
	CreatedAt         time.Time `json:"created_at"`
}

func (s *Store) SaveAnalysis(ctx context.Context, a *Analysis) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analyses (id, user_id, filename, file_size_bytes,
		                      predicted_class, primary_confidence, model_version)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.UserID, a.Filename, a.FileSizeBytes,
		a.PredictedClass, a.PrimaryConfidence, a.ModelVersion)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// AnalysesByUser returns the caller's most recent analyses, newest first.
func (s *Store) AnalysesByUser(ctx context.Context, userID int64, limit int) ([]Analysis, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, filename, file_size_bytes,
		       predicted_class, primary_confidence, model_version, created_at
		FROM analyses
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		var a Analysis
		if err := rows.Scan(&a.ID, &a.UserID, &a.Filename, &a.FileSizeBytes,
			&a.PredictedClass, &a.PrimaryConfidence, &a.ModelVersion, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
