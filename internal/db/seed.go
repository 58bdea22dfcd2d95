package db

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/sssohn/pointsd/internal/models"
)

// SeedDemo fills an empty database with one school year of classes, teachers
// and students for local development. Safe to call twice.
func SeedDemo(ctx context.Context, database *sql.DB, schoolYear int) error {
	var count int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return fmt.Errorf("check accounts: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	type teacher struct {
		name, email, subject string
		role                 models.Role
	}
	teachers := []teacher{
		{"박선영", "park.sy@school.kr", "국어", models.RoleHomeroomTeacher},
		{"이정호", "lee.jh@school.kr", "수학", models.RoleSubjectTeacher},
		{"최은지", "choi.ej@school.kr", "영어", models.RoleSubjectTeacher},
		{"관리자", "admin@school.kr", "", models.RoleAdmin},
	}
	ids := map[string]int64{}
	for _, t := range teachers {
		var id int64
		err := database.QueryRowContext(ctx, `
			INSERT INTO accounts (role, status, name, email, subject)
			VALUES ($1, 'active', $2, $3, NULLIF($4, ''))
			RETURNING id`, t.role, t.name, t.email, t.subject).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed teacher %s: %w", t.name, err)
		}
		ids[t.email] = id
		if err := UpsertCredential(ctx, database, t.email, string(hash)); err != nil {
			return fmt.Errorf("seed credential %s: %w", t.email, err)
		}
	}

	homeroom := ids["park.sy@school.kr"]
	classID, err := CreateClass(ctx, database, models.Class{
		SchoolYear:        schoolYear,
		Grade:             1,
		Number:            2,
		HomeroomTeacherID: &homeroom,
		IsCurrent:         true,
	})
	if err != nil {
		return fmt.Errorf("seed class: %w", err)
	}
	for _, email := range []string{"lee.jh@school.kr", "choi.ej@school.kr"} {
		if err := AssignTeacherToClass(ctx, database, classID, ids[email]); err != nil {
			return fmt.Errorf("seed assignment: %w", err)
		}
	}

	students := []struct{ name, no, birth string }{
		{"김민준", "10203", "2008-05-12"},
		{"이서연", "10204", "2008-11-03"},
		{"박지호", "10205", "2008-02-27"},
	}
	for i, s := range students {
		_, err := database.ExecContext(ctx, `
			INSERT INTO accounts (role, status, name, student_no, birth_date, grade, class_num, number_in_class)
			VALUES ('student', 'active', $1, $2, $3, 1, 2, $4)`,
			s.name, s.no, s.birth, i+1)
		if err != nil {
			return fmt.Errorf("seed student %s: %w", s.name, err)
		}
	}
	return nil
}
