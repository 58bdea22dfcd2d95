package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sssohn/pointsd/internal/models"
)

const accountCols = `id, role, status, name, student_no, birth_date, grade, class_num,
	number_in_class, email, subject, telegram_chat_id, status_reason, created_at`

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Role, &a.Status, &a.Name, &a.StudentNo, &a.BirthDate,
		&a.Grade, &a.ClassNum, &a.NumberInCls, &a.Email, &a.Subject,
		&a.TelegramChatID, &a.StatusReason, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func GetAccountByID(ctx context.Context, database *sql.DB, id int64) (*models.Account, error) {
	row := database.QueryRowContext(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE id = $1`, id)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func GetTeacherByEmail(ctx context.Context, database *sql.DB, email string) (*models.Account, error) {
	row := database.QueryRowContext(ctx, `
		SELECT `+accountCols+`
		FROM accounts
		WHERE email = $1 AND role IN ('subject_teacher','homeroom_teacher','admin')`,
		email)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

// FindStudentForLogin matches the login triple exactly: student number, name
// and birth date, all as stored.
func FindStudentForLogin(ctx context.Context, database *sql.DB, name, birthDate, studentNo string) (*models.Account, error) {
	row := database.QueryRowContext(ctx, `
		SELECT `+accountCols+`
		FROM accounts
		WHERE role = 'student' AND student_no = $1 AND name = $2 AND birth_date = $3`,
		studentNo, name, birthDate)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func GetStudentByID(ctx context.Context, database *sql.DB, id int64) (*models.Account, error) {
	row := database.QueryRowContext(ctx, `
		SELECT `+accountCols+` FROM accounts WHERE id = $1 AND role = 'student'`, id)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

// ListStudentsInClasses returns active students whose (grade, class_num) pair
// matches one of the given classes, ordered for roster display.
func ListStudentsInClasses(ctx context.Context, database *sql.DB, classes []models.Class) ([]models.Account, error) {
	if len(classes) == 0 {
		return nil, nil
	}
	var (
		conds []string
		args  []any
	)
	for i, c := range classes {
		conds = append(conds, fmt.Sprintf("(grade = $%d AND class_num = $%d)", i*2+1, i*2+2))
		args = append(args, c.Grade, c.Number)
	}
	query := `
		SELECT ` + accountCols + `
		FROM accounts
		WHERE role = 'student' AND status = 'active' AND (` + strings.Join(conds, " OR ") + `)
		ORDER BY grade, class_num, number_in_class`

	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// SetAccountStatus soft-disables or soft-deletes an account. Rows are never
// physically removed.
func SetAccountStatus(ctx context.Context, database *sql.DB, id int64, status models.AccountStatus, reason string) error {
	res, err := database.ExecContext(ctx,
		`UPDATE accounts SET status = $1, status_reason = NULLIF($2, '') WHERE id = $3`,
		status, reason, id)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func SetTelegramChatID(ctx context.Context, database *sql.DB, accountID, chatID int64) error {
	_, err := database.ExecContext(ctx,
		`UPDATE accounts SET telegram_chat_id = $1 WHERE id = $2`, chatID, accountID)
	return err
}
