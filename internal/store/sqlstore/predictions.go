package sqlstore

import (
	"context"
	"fmt"

	"vendorhub/backend/internal/domain"
)

func (s *Store) ReplacePredictions(ctx context.Context, vendorID string, productID string, from domain.Date, predictions []domain.Prediction) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`
		DELETE FROM predictions WHERE vendor_id = ? AND product_id = ? AND forecast_date >= ?
	`), vendorID, productID, from); err != nil {
		return fmt.Errorf("clear predictions: %w", err)
	}

	for _, p := range predictions {
		p.CreatedAt = p.CreatedAt.UTC()
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO predictions (id, product_id, vendor_id, forecast_date, predicted_quantity,
				confidence_level, model_used, recommendations, created_at)
			VALUES (:id, :product_id, :vendor_id, :forecast_date, :predicted_quantity,
				:confidence_level, :model_used, :recommendations, :created_at)
		`, p); err != nil {
			return fmt.Errorf("insert prediction: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) ListPredictions(ctx context.Context, vendorID string, productID string, limit int) ([]domain.Prediction, error) {
	query := `SELECT id, product_id, vendor_id, forecast_date, predicted_quantity, confidence_level,
		model_used, recommendations, created_at
		FROM predictions WHERE vendor_id = ?`
	args := []any{vendorID}
	if productID != "" {
		query += ` AND product_id = ?`
		args = append(args, productID)
	}
	query += ` ORDER BY forecast_date ASC, product_id ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	out := make([]domain.Prediction, 0)
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	return out, nil
}
