package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/sssohn/pointsd/internal/models"
)

const requestCols = `id, student_id, requesting_teacher_id, homeroom_teacher_id, type, points,
	reason, description, status, created_at, response_at, response_by`

func scanRequest(row interface{ Scan(...any) error }) (*models.PointRequest, error) {
	var r models.PointRequest
	err := row.Scan(&r.ID, &r.StudentID, &r.RequestingTeacher, &r.HomeroomTeacher,
		&r.Type, &r.Points, &r.Reason, &r.Description, &r.Status,
		&r.CreatedAt, &r.ResponseAt, &r.ResponseBy)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func InsertRequest(ctx context.Context, database *sql.DB, r models.PointRequest) (*models.PointRequest, error) {
	row := database.QueryRowContext(ctx, `
		INSERT INTO point_requests
			(student_id, requesting_teacher_id, homeroom_teacher_id, type, points, reason, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+requestCols,
		r.StudentID, r.RequestingTeacher, r.HomeroomTeacher, r.Type, r.Points, r.Reason, r.Description)
	return scanRequest(row)
}

func GetRequestByID(ctx context.Context, database *sql.DB, id int64) (*models.PointRequest, error) {
	row := database.QueryRowContext(ctx,
		`SELECT `+requestCols+` FROM point_requests WHERE id = $1`, id)
	r, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

func ListRequestsByTeacher(ctx context.Context, database *sql.DB, teacherID int64) ([]models.PointRequest, error) {
	return listRequests(ctx, database,
		`SELECT `+requestCols+`
		 FROM point_requests
		 WHERE requesting_teacher_id = $1
		 ORDER BY created_at DESC, id DESC`, teacherID)
}

func ListPendingForHomeroom(ctx context.Context, database *sql.DB, homeroomID int64) ([]models.PointRequest, error) {
	return listRequests(ctx, database,
		`SELECT `+requestCols+`
		 FROM point_requests
		 WHERE homeroom_teacher_id = $1 AND status = 'pending'
		 ORDER BY created_at, id`, homeroomID)
}

func listRequests(ctx context.Context, database *sql.DB, query string, args ...any) ([]models.PointRequest, error) {
	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.PointRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func CountPendingRequests(ctx context.Context, database *sql.DB) (int, error) {
	var n int
	err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM point_requests WHERE status = 'pending'`).Scan(&n)
	return n, err
}

// TransitionRequest moves a request out of pending inside the caller's
// transaction. The WHERE status = 'pending' guard is the mutual exclusion for
// racing dispositions: the loser sees sql.ErrNoRows.
func TransitionRequest(ctx context.Context, tx *sql.Tx, id int64, status models.RequestStatus, by int64, at time.Time) (*models.PointRequest, error) {
	row := tx.QueryRowContext(ctx, `
		UPDATE point_requests
		SET status = $2, response_at = $3, response_by = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING `+requestCols,
		id, status, at, by)
	return scanRequest(row)
}
