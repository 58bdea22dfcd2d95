//go:build testutil
// +build testutil

package auth_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sssohn/pointsd/internal/audit"
	"github.com/sssohn/pointsd/internal/auth"
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

func newGate(t *testing.T) *auth.Gate {
	t.Helper()
	rec := audit.New(handle.DB, zap.NewNop())
	t.Cleanup(rec.Wait)
	return auth.NewGate(
		handle.DB,
		auth.NewBcryptVerifier(handle.DB),
		auth.NewTokenIssuer("test-secret", time.Hour),
		rec,
		zap.NewNop(),
		2*time.Second,
	)
}

func TestStudentLoginTripleMatch(t *testing.T) {
	ctx := context.Background()
	g := newGate(t)

	s, err := g.StudentLogin(ctx, "김민준", "2008-05-12", "10203")
	if err != nil {
		t.Fatal(err)
	}
	if s.Account.Role != models.RoleStudent {
		t.Fatalf("role = %s", s.Account.Role)
	}
	if s.Token == "" {
		t.Fatal("no token issued")
	}

	// every field of the triple must match exactly
	bad := [][3]string{
		{"김민준", "2008-05-13", "10203"},
		{"김민준", "2008-05-12", "10204"},
		{"김민전", "2008-05-12", "10203"},
		{"김민준", "2008-5-12", "10203"}, // same date, different spelling
	}
	for _, c := range bad {
		if _, err := g.StudentLogin(ctx, c[0], c[1], c[2]); !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Errorf("StudentLogin(%q, %q, %q) err = %v, want ErrInvalidCredentials", c[0], c[1], c[2], err)
		}
	}
}

func TestTeacherLogin(t *testing.T) {
	ctx := context.Background()
	g := newGate(t)

	s, err := g.TeacherLogin(ctx, "park.sy@school.kr", "changeme")
	if err != nil {
		t.Fatal(err)
	}
	if s.Account.Role != models.RoleHomeroomTeacher {
		t.Fatalf("role = %s", s.Account.Role)
	}

	if _, err := g.TeacherLogin(ctx, "park.sy@school.kr", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, err := g.TeacherLogin(ctx, "nobody@school.kr", "changeme"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v", err)
	}
}

func TestTeacherLoginVerifiedButNoDirectoryRow(t *testing.T) {
	ctx := context.Background()
	g := newGate(t)

	// a credential can exist without a directory account; the two stores are
	// not updated together
	hash, err := auth.HashPassword("changeme")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertCredential(ctx, handle.DB, "ghost@school.kr", hash); err != nil {
		t.Fatal(err)
	}

	if _, err := g.TeacherLogin(ctx, "ghost@school.kr", "changeme"); !errors.Is(err, auth.ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
}

func TestDisabledAccountBlockedEverywhere(t *testing.T) {
	ctx := context.Background()
	g := newGate(t)

	s, err := g.StudentLogin(ctx, "이서연", "2008-11-03", "10204")
	if err != nil {
		t.Fatal(err)
	}

	if err := db.SetAccountStatus(ctx, handle.DB, s.Account.ID, models.StatusDisabled, "misuse"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = db.SetAccountStatus(ctx, handle.DB, s.Account.ID, models.StatusActive, "")
	})

	// fresh login is refused, and the stored reason rides along
	_, err = g.StudentLogin(ctx, "이서연", "2008-11-03", "10204")
	if !errors.Is(err, auth.ErrAccountDisabled) {
		t.Fatalf("login err = %v, want ErrAccountDisabled", err)
	}
	if !strings.Contains(err.Error(), "misuse") {
		t.Fatalf("login err = %q, want the recorded reason in the message", err)
	}
	// a token issued before the disable no longer resolves
	if _, err := g.ResolveActor(ctx, s.Token); !errors.Is(err, auth.ErrAccountDisabled) {
		t.Fatalf("ResolveActor err = %v, want ErrAccountDisabled", err)
	}
	// and session restore reports logged out rather than an error
	sess, err := g.Restore(ctx, s.Token)
	if err != nil || sess != nil {
		t.Fatalf("Restore = (%v, %v), want logged out", sess, err)
	}
}

func TestDisabledTeacherGetsNoToken(t *testing.T) {
	ctx := context.Background()
	g := newGate(t)

	acc, err := db.GetTeacherByEmail(ctx, handle.DB, "choi.ej@school.kr")
	if err != nil || acc == nil {
		t.Fatalf("seed teacher: %v", err)
	}
	if err := db.SetAccountStatus(ctx, handle.DB, acc.ID, models.StatusDisabled, "leave of absence"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = db.SetAccountStatus(ctx, handle.DB, acc.ID, models.StatusActive, "")
	})

	s, err := g.TeacherLogin(ctx, "choi.ej@school.kr", "changeme")
	if !errors.Is(err, auth.ErrAccountDisabled) {
		t.Fatalf("err = %v, want ErrAccountDisabled", err)
	}
	if !strings.Contains(err.Error(), "leave of absence") {
		t.Fatalf("err = %q, want the recorded reason in the message", err)
	}
	if s != nil {
		t.Fatal("session issued for a disabled account")
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	g := newGate(t)

	s, err := g.StudentLogin(ctx, "박지호", "2008-02-27", "10205")
	if err != nil {
		t.Fatal(err)
	}

	restored, err := g.Restore(ctx, s.Token)
	if err != nil {
		t.Fatal(err)
	}
	if restored == nil || restored.Account.ID != s.Account.ID {
		t.Fatalf("restore resolved %+v", restored)
	}

	// garbage tokens mean logged out, not an error
	sess, err := g.Restore(ctx, "not-a-token")
	if err != nil || sess != nil {
		t.Fatalf("Restore(garbage) = (%v, %v), want (nil, nil)", sess, err)
	}
}

func TestRestoreTimesOutToLoggedOut(t *testing.T) {
	ctx := context.Background()
	g := newGate(t)

	s, err := g.StudentLogin(ctx, "박지호", "2008-02-27", "10205")
	if err != nil {
		t.Fatal(err)
	}

	// a gate whose restore window expires before any lookup can answer
	rec := audit.New(handle.DB, zap.NewNop())
	t.Cleanup(rec.Wait)
	slow := auth.NewGate(
		handle.DB,
		auth.NewBcryptVerifier(handle.DB),
		auth.NewTokenIssuer("test-secret", time.Hour),
		rec,
		zap.NewNop(),
		time.Nanosecond,
	)

	start := time.Now()
	sess, err := slow.Restore(ctx, s.Token)
	if err != nil || sess != nil {
		t.Fatalf("Restore past the bound = (%v, %v), want logged out", sess, err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("restore held the caller for %v", time.Since(start))
	}

	// the same token still restores once the bound is generous again
	restored, err := g.Restore(ctx, s.Token)
	if err != nil || restored == nil {
		t.Fatalf("Restore with normal bound = (%v, %v)", restored, err)
	}
}
