//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sssohn/pointsd/internal/db"
	"github.com/sssohn/pointsd/internal/models"
	"github.com/sssohn/pointsd/internal/testutil/testdb"
)

var handle *testdb.DBHandle

func TestMain(m *testing.M) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "testdb:", err)
		os.Exit(1)
	}
	handle = h
	if err := db.SeedDemo(ctx, h.DB, 2026); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		h.Close()
		os.Exit(1)
	}
	code := m.Run()
	h.Close()
	os.Exit(code)
}

func insertRecord(t *testing.T, studentID, teacherID int64, typ models.PointType, pts int) int64 {
	t.Helper()
	tx, err := handle.DB.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback()
	id, err := db.InsertPointRecord(context.Background(), tx, models.PointRecord{
		StudentID: studentID,
		Type:      typ,
		Points:    pts,
		Reason:    "지각",
		IssuedBy:  teacherID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	return id
}

func seededIDs(t *testing.T) (studentID, teacherID int64) {
	t.Helper()
	ctx := context.Background()
	s, err := db.FindStudentForLogin(ctx, handle.DB, "김민준", "2008-05-12", "10203")
	if err != nil || s == nil {
		t.Fatalf("seed student: %v", err)
	}
	tch, err := db.GetTeacherByEmail(ctx, handle.DB, "lee.jh@school.kr")
	if err != nil || tch == nil {
		t.Fatalf("seed teacher: %v", err)
	}
	return s.ID, tch.ID
}

func TestLedgerRejectsUpdateAndDelete(t *testing.T) {
	studentID, teacherID := seededIDs(t)
	id := insertRecord(t, studentID, teacherID, models.PointDemerit, -3)

	ctx := context.Background()
	if _, err := handle.DB.ExecContext(ctx, `UPDATE point_records SET points = 0 WHERE id = $1`, id); err == nil {
		t.Fatal("UPDATE on point_records succeeded")
	} else if !strings.Contains(err.Error(), "append-only") {
		t.Fatalf("unexpected UPDATE error: %v", err)
	}
	if _, err := handle.DB.ExecContext(ctx, `DELETE FROM point_records WHERE id = $1`, id); err == nil {
		t.Fatal("DELETE on point_records succeeded")
	}
}

func TestLedgerRejectsSignMismatch(t *testing.T) {
	studentID, teacherID := seededIDs(t)
	ctx := context.Background()

	cases := []struct {
		typ models.PointType
		pts int
	}{
		{models.PointMerit, -2},
		{models.PointDemerit, 2},
		{models.PointMerit, 0},
	}
	for _, c := range cases {
		tx, err := handle.DB.BeginTx(ctx, nil)
		if err != nil {
			t.Fatal(err)
		}
		_, err = db.InsertPointRecord(ctx, tx, models.PointRecord{
			StudentID: studentID,
			Type:      c.typ,
			Points:    c.pts,
			Reason:    "지각",
			IssuedBy:  teacherID,
		})
		_ = tx.Rollback()
		if err == nil {
			t.Errorf("insert %s/%d passed the sign check", c.typ, c.pts)
		}
	}
}

func TestAuditLogRejectsUpdate(t *testing.T) {
	ctx := context.Background()
	if err := db.InsertAuditEntry(ctx, handle.DB, models.AuditEntry{
		ActorName: "테스트",
		Action:    models.AuditLogin,
		Detail:    "schema test",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := handle.DB.ExecContext(ctx, `UPDATE audit_log SET detail = 'tampered'`); err == nil {
		t.Fatal("UPDATE on audit_log succeeded")
	}
}

func TestTransitionRequestOnlyFromPending(t *testing.T) {
	studentID, teacherID := seededIDs(t)
	ctx := context.Background()

	homeroom, err := db.GetTeacherByEmail(ctx, handle.DB, "park.sy@school.kr")
	if err != nil || homeroom == nil {
		t.Fatalf("seed homeroom: %v", err)
	}
	req, err := db.InsertRequest(ctx, handle.DB, models.PointRequest{
		StudentID:         studentID,
		RequestingTeacher: teacherID,
		HomeroomTeacher:   homeroom.ID,
		Type:              models.PointMerit,
		Points:            1,
		Reason:            "선행",
	})
	if err != nil {
		t.Fatal(err)
	}

	tx, err := handle.DB.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.TransitionRequest(ctx, tx, req.ID, models.RequestRejected, homeroom.ID, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	tx, err = handle.DB.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback()
	if _, err := db.TransitionRequest(ctx, tx, req.ID, models.RequestApproved, homeroom.ID, time.Now()); err == nil {
		t.Fatal("transition from a settled status succeeded")
	}
}
