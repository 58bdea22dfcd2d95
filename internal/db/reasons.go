package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sssohn/pointsd/internal/models"
)

// ListReasons returns the catalog (includeInactive=true returns hidden entries too).
func ListReasons(ctx context.Context, database *sql.DB, includeInactive bool) ([]models.Reason, error) {
	query := `SELECT id, text, type, label, is_active FROM reasons`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY type, id`

	rows, err := database.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Reason
	for rows.Next() {
		var r models.Reason
		if err := rows.Scan(&r.ID, &r.Text, &r.Type, &r.Label, &r.IsActive); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func CreateReason(ctx context.Context, database *sql.DB, text string, typ models.PointType, label string) (int64, error) {
	var id int64
	err := database.QueryRowContext(ctx,
		`INSERT INTO reasons (text, type, label, is_active) VALUES ($1, $2, $3, TRUE) RETURNING id`,
		text, typ, label).Scan(&id)
	return id, err
}

func SetReasonActive(ctx context.Context, database *sql.DB, id int64, active bool) error {
	res, err := database.ExecContext(ctx,
		`UPDATE reasons SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return errors.New("reason not found")
	}
	return nil
}
