package db

import (
	"context"
	"database/sql"

	"github.com/sssohn/pointsd/internal/models"
)

const recordCols = `id, student_id, type, points, reason, description, issued_by, request_id, created_at`

// InsertPointRecord appends one ledger entry inside the caller's transaction.
// Points must already carry the canonical sign.
func InsertPointRecord(ctx context.Context, tx *sql.Tx, r models.PointRecord) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO point_records (student_id, type, points, reason, description, issued_by, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		r.StudentID, r.Type, r.Points, r.Reason, r.Description, r.IssuedBy, r.RequestID).Scan(&id)
	return id, err
}

// ListRecordsByStudent returns the full ledger for one student, newest first.
func ListRecordsByStudent(ctx context.Context, database *sql.DB, studentID int64) ([]models.PointRecord, error) {
	rows, err := database.QueryContext(ctx, `
		SELECT `+recordCols+`
		FROM point_records
		WHERE student_id = $1
		ORDER BY created_at DESC, id DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.PointRecord
	for rows.Next() {
		var r models.PointRecord
		if err := rows.Scan(&r.ID, &r.StudentID, &r.Type, &r.Points, &r.Reason,
			&r.Description, &r.IssuedBy, &r.RequestID, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SummaryForStudent folds the whole ledger on the server side. There is no
// stored counter anywhere; this is recomputed on every call.
func SummaryForStudent(ctx context.Context, database *sql.DB, studentID int64) (models.Summary, error) {
	s := models.Summary{StudentID: studentID}
	err := database.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(points) FILTER (WHERE type = 'merit'), 0),
			COALESCE(SUM(ABS(points)) FILTER (WHERE type = 'demerit'), 0),
			COUNT(*)
		FROM point_records
		WHERE student_id = $1`, studentID).Scan(&s.TotalMerit, &s.TotalDemerit, &s.RecordCount)
	if err != nil {
		return s, err
	}
	s.NetScore = s.TotalMerit - s.TotalDemerit
	return s, nil
}
