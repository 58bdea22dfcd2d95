package audit

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sssohn/pointsd/internal/db"
	"github.com/sssohn/pointsd/internal/metrics"
	"github.com/sssohn/pointsd/internal/models"
	"github.com/sssohn/pointsd/internal/observability"
)

const writeTimeout = 3 * time.Second

// Recorder appends audit entries off the caller's path. Writes are
// fire-and-forget: a failed write is counted and reported, never returned.
type Recorder struct {
	database *sql.DB
	log      *zap.Logger
	wg       sync.WaitGroup
}

func New(database *sql.DB, log *zap.Logger) *Recorder {
	return &Recorder{database: database, log: log}
}

// Record logs an action by a known account.
func (r *Recorder) Record(actor *models.Account, action models.AuditAction, detail string) {
	e := models.AuditEntry{Action: action, Detail: detail}
	if actor != nil {
		id := actor.ID
		e.ActorID = &id
		e.ActorName = actor.Name
		e.ActorRole = string(actor.Role)
	}
	r.append(e)
}

// RecordAnonymous logs an action with no resolved account, e.g. a failed
// login where only the attempted email is known.
func (r *Recorder) RecordAnonymous(name string, action models.AuditAction, detail string) {
	r.append(models.AuditEntry{ActorName: name, Action: action, Detail: detail})
}

func (r *Recorder) append(e models.AuditEntry) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := db.InsertAuditEntry(ctx, r.database, e); err != nil {
			metrics.AuditFailures.Inc()
			observability.CaptureErr(err)
			r.log.Warn("audit write failed", zap.String("action", string(e.Action)), zap.Error(err))
		}
	}()
}

// Wait drains in-flight writes; called on shutdown.
func (r *Recorder) Wait() { r.wg.Wait() }
