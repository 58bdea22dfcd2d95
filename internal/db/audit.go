package db

import (
	"context"
	"database/sql"

	"github.com/sssohn/pointsd/internal/models"
)

func InsertAuditEntry(ctx context.Context, database *sql.DB, e models.AuditEntry) error {
	_, err := database.ExecContext(ctx, `
		INSERT INTO audit_log (actor_id, actor_name, actor_role, action, detail)
		VALUES ($1, $2, $3, $4, $5)`,
		e.ActorID, e.ActorName, e.ActorRole, e.Action, e.Detail)
	return err
}

func ListAuditEntries(ctx context.Context, database *sql.DB, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := database.QueryContext(ctx, `
		SELECT id, actor_id, actor_name, actor_role, action, detail, created_at
		FROM audit_log
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorName, &e.ActorRole, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
