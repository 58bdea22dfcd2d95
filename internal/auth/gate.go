package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sssohn/pointsd/internal/audit"
	"github.com/sssohn/pointsd/internal/ctxutil"
	"github.com/sssohn/pointsd/internal/db"
	"github.com/sssohn/pointsd/internal/metrics"
	"github.com/sssohn/pointsd/internal/models"
)

type Session struct {
	Account   *models.Account
	Token     string
	ExpiresAt time.Time
}

// Gate resolves credentials into sessions. Two independent paths: the student
// triple match and the provider-delegated teacher/admin path. A disabled or
// deleted account never gets a session out of either.
type Gate struct {
	database       *sql.DB
	verifier       CredentialVerifier
	tokens         *TokenIssuer
	audit          *audit.Recorder
	log            *zap.Logger
	restoreTimeout time.Duration
}

func NewGate(database *sql.DB, verifier CredentialVerifier, tokens *TokenIssuer, rec *audit.Recorder, log *zap.Logger, restoreTimeout time.Duration) *Gate {
	return &Gate{
		database:       database,
		verifier:       verifier,
		tokens:         tokens,
		audit:          rec,
		log:            log,
		restoreTimeout: restoreTimeout,
	}
}

// StudentLogin matches name, birth date and student number exactly. There is
// no secret on this path; the triple is the credential.
func (g *Gate) StudentLogin(ctx context.Context, name, birthDate, studentNo string) (*Session, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	acc, err := db.FindStudentForLogin(ctx, g.database, name, birthDate, studentNo)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		metrics.Logins.WithLabelValues("student", "invalid").Inc()
		return nil, ErrInvalidCredentials
	}
	if err := statusErr(acc); err != nil {
		metrics.Logins.WithLabelValues("student", "blocked").Inc()
		return nil, err
	}
	s, err := g.issue(acc)
	if err != nil {
		return nil, err
	}
	metrics.Logins.WithLabelValues("student", "ok").Inc()
	return s, nil
}

// TeacherLogin delegates password verification to the provider, then resolves
// the directory row. Verified credentials with no directory row are a real
// state (the two stores are not kept consistent transactionally) and fail
// with ErrAccountNotFound.
func (g *Gate) TeacherLogin(ctx context.Context, email, password string) (*Session, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	if err := g.verifier.Verify(ctx, email, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			metrics.Logins.WithLabelValues("teacher", "invalid").Inc()
			g.audit.RecordAnonymous(email, models.AuditLoginFailed, "bad credentials")
		}
		return nil, err
	}

	acc, err := db.GetTeacherByEmail(ctx, g.database, email)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		metrics.Logins.WithLabelValues("teacher", "no_account").Inc()
		g.audit.RecordAnonymous(email, models.AuditLoginFailed, "verified identity without directory account")
		return nil, ErrAccountNotFound
	}
	if err := statusErr(acc); err != nil {
		// terminate the provider session before reporting the block
		if serr := g.verifier.SignOut(ctx, email); serr != nil {
			g.log.Warn("provider sign-out failed", zap.String("email", email), zap.Error(serr))
		}
		metrics.Logins.WithLabelValues("teacher", "blocked").Inc()
		g.audit.Record(acc, models.AuditLoginFailed, "account "+string(acc.Status))
		return nil, err
	}

	s, err := g.issue(acc)
	if err != nil {
		return nil, err
	}
	metrics.Logins.WithLabelValues("teacher", "ok").Inc()
	g.audit.Record(acc, models.AuditLogin, "teacher login")
	return s, nil
}

func (g *Gate) Logout(ctx context.Context, acc *models.Account) {
	if acc == nil {
		return
	}
	if acc.Email != nil {
		if err := g.verifier.SignOut(ctx, *acc.Email); err != nil {
			g.log.Warn("provider sign-out failed", zap.Int64("account", acc.ID), zap.Error(err))
		}
	}
	g.audit.Record(acc, models.AuditLogout, "")
}

// Restore re-resolves a previously issued token against the directory. The
// wait is bounded; past the deadline the caller proceeds logged out and any
// late lookup result is discarded. A nil session with nil error means
// "logged out", never an error the UI has to surface.
func (g *Gate) Restore(ctx context.Context, token string) (*Session, error) {
	id, _, err := g.tokens.Parse(token)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.restoreTimeout)
	defer cancel()

	type lookup struct {
		acc *models.Account
		err error
	}
	ch := make(chan lookup, 1)
	go func() {
		acc, err := db.GetAccountByID(ctx, g.database, id)
		ch <- lookup{acc, err}
	}()

	select {
	case <-ctx.Done():
		g.log.Warn("session restore timed out", zap.Int64("account", id))
		return nil, nil
	case r := <-ch:
		if r.err != nil || r.acc == nil || statusErr(r.acc) != nil {
			return nil, nil
		}
		return &Session{Account: r.acc, Token: token}, nil
	}
}

// ResolveActor loads and gates the account behind a parsed token; used by the
// API middleware on every authenticated call.
func (g *Gate) ResolveActor(ctx context.Context, token string) (*models.Account, error) {
	id, _, err := g.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	acc, err := db.GetAccountByID(ctx, g.database, id)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, ErrAccountNotFound
	}
	if err := statusErr(acc); err != nil {
		return nil, err
	}
	return acc, nil
}

func (g *Gate) issue(acc *models.Account) (*Session, error) {
	token, exp, err := g.tokens.Issue(acc)
	if err != nil {
		return nil, err
	}
	return &Session{Account: acc, Token: token, ExpiresAt: exp}, nil
}

// statusErr carries the stored reason along when the admin recorded one.
func statusErr(acc *models.Account) error {
	var err error
	switch acc.Status {
	case models.StatusDisabled:
		err = ErrAccountDisabled
	case models.StatusDeleted:
		err = ErrAccountDeleted
	default:
		return nil
	}
	if acc.StatusReason != nil && *acc.StatusReason != "" {
		return fmt.Errorf("%w: %s", err, *acc.StatusReason)
	}
	return err
}
