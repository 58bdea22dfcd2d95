package db

import (
	"context"
	"database/sql"
)

// GetPasswordHash returns the stored hash for an email, or sql.ErrNoRows when
// the identity store has never seen it.
func GetPasswordHash(ctx context.Context, database *sql.DB, email string) (string, error) {
	var hash string
	err := database.QueryRowContext(ctx,
		`SELECT password_hash FROM credentials WHERE email = $1`, email).Scan(&hash)
	return hash, err
}

func UpsertCredential(ctx context.Context, database *sql.DB, email, passwordHash string) error {
	_, err := database.ExecContext(ctx, `
		INSERT INTO credentials (email, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET password_hash = excluded.password_hash`,
		email, passwordHash)
	return err
}
