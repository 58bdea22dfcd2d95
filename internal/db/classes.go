package db

import (
	"context"
	"database/sql"

	"github.com/sssohn/pointsd/internal/models"
)

const classCols = `id, school_year, grade, number, homeroom_teacher_id, is_current`

// ClassesForTeacher returns every current class where the teacher either runs
// the homeroom or appears in the subject assignment set.
func ClassesForTeacher(ctx context.Context, database *sql.DB, teacherID int64) ([]models.Class, error) {
	rows, err := database.QueryContext(ctx, `
		SELECT DISTINCT c.id, c.school_year, c.grade, c.number, c.homeroom_teacher_id, c.is_current
		FROM classes c
		LEFT JOIN class_teachers ct ON ct.class_id = c.id
		WHERE c.is_current AND (c.homeroom_teacher_id = $1 OR ct.teacher_id = $1)
		ORDER BY c.grade, c.number`, teacherID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Class
	for rows.Next() {
		var c models.Class
		if err := rows.Scan(&c.ID, &c.SchoolYear, &c.Grade, &c.Number, &c.HomeroomTeacherID, &c.IsCurrent); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ClassForStudent resolves the current class a student belongs to via the
// student's own (grade, class_num) pair. Nil when no current class matches.
func ClassForStudent(ctx context.Context, database *sql.DB, student *models.Account) (*models.Class, error) {
	if student.Grade == nil || student.ClassNum == nil {
		return nil, nil
	}
	row := database.QueryRowContext(ctx, `
		SELECT `+classCols+`
		FROM classes
		WHERE is_current AND grade = $1 AND number = $2`,
		*student.Grade, *student.ClassNum)
	var c models.Class
	if err := row.Scan(&c.ID, &c.SchoolYear, &c.Grade, &c.Number, &c.HomeroomTeacherID, &c.IsCurrent); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// TeacherAssignedToClass reports whether the teacher is in the class's subject
// assignment set.
func TeacherAssignedToClass(ctx context.Context, database *sql.DB, classID, teacherID int64) (bool, error) {
	var n int
	err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM class_teachers WHERE class_id = $1 AND teacher_id = $2`,
		classID, teacherID).Scan(&n)
	return n > 0, err
}

func AssignTeacherToClass(ctx context.Context, database *sql.DB, classID, teacherID int64) error {
	_, err := database.ExecContext(ctx, `
		INSERT INTO class_teachers (class_id, teacher_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, classID, teacherID)
	return err
}

func CreateClass(ctx context.Context, database *sql.DB, c models.Class) (int64, error) {
	var id int64
	err := database.QueryRowContext(ctx, `
		INSERT INTO classes (school_year, grade, number, homeroom_teacher_id, is_current)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		c.SchoolYear, c.Grade, c.Number, c.HomeroomTeacherID, c.IsCurrent).Scan(&id)
	return id, err
}
