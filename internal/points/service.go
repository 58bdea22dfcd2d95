package points

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

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Notifier is the optional out-of-band notification hook; calls must not
// block the workflow outcome.
type Notifier interface {
	RequestSubmitted(ctx context.Context, req *models.PointRequest)
	RequestDisposed(ctx context.Context, req *models.PointRequest)
}

type SubmitInput struct {
	StudentID   int64
	Type        models.PointType
	Points      int
	Reason      string
	Description *string
}

type LedgerEntry struct {
	models.PointRecord
	Label string `json:"label"`
}

// Service implements the request workflow, roster scoping and the aggregation
// view over the ledger.
type Service struct {
	database *sql.DB
	audit    *audit.Recorder
	notify   Notifier
	log      *zap.Logger
}

func NewService(database *sql.DB, rec *audit.Recorder, notify Notifier, log *zap.Logger) *Service {
	return &Service{database: database, audit: rec, notify: notify, log: log}
}

// SubmitRequest files a pending proposal. The actor must be a subject teacher
// assigned to the student's current class; the homeroom teacher is resolved
// here, at creation time.
func (s *Service) SubmitRequest(ctx context.Context, actor *models.Account, in SubmitInput) (*models.PointRequest, error) {
	if in.Points <= 0 {
		return nil, ErrInvalidPoints
	}
	if in.Type != models.PointMerit && in.Type != models.PointDemerit {
		return nil, ErrInvalidType
	}

	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	student, err := db.GetStudentByID(ctx, s.database, in.StudentID)
	if err != nil {
		return nil, err
	}
	if student == nil || !student.Active() {
		return nil, ErrNoSuchStudent
	}

	class, err := db.ClassForStudent(ctx, s.database, student)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, ErrNotAssignedToClass
	}
	assigned, err := db.TeacherAssignedToClass(ctx, s.database, class.ID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !assigned {
		return nil, ErrNotAssignedToClass
	}
	if class.HomeroomTeacherID == nil {
		return nil, ErrNoHomeroomTeacher
	}

	req, err := db.InsertRequest(ctx, s.database, models.PointRequest{
		StudentID:         in.StudentID,
		RequestingTeacher: actor.ID,
		HomeroomTeacher:   *class.HomeroomTeacherID,
		Type:              in.Type,
		Points:            in.Points,
		Reason:            in.Reason,
		Description:       in.Description,
	})
	if err != nil {
		return nil, err
	}

	metrics.RequestsSubmitted.Inc()
	s.audit.Record(actor, models.AuditRequestSubmitted,
		fmt.Sprintf("request #%d: %s %dp for student #%d (%s)", req.ID, req.Type, req.Points, req.StudentID, req.Reason))
	if s.notify != nil {
		go s.notify.RequestSubmitted(context.WithoutCancel(ctx), req)
	}
	return req, nil
}

// DisposeRequest settles a pending request. Approval writes exactly one
// ledger record in the same transaction, with the sign normalized from the
// request's (type, magnitude) pair. Both outcomes are terminal; a losing
// racer gets ErrAlreadyDisposed, not silence.
func (s *Service) DisposeRequest(ctx context.Context, actor *models.Account, requestID int64, decision Decision) (*models.PointRequest, error) {
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, fmt.Errorf("unknown decision %q", decision)
	}

	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	req, err := db.GetRequestByID(ctx, s.database, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if actor.Role != models.RoleAdmin && actor.ID != req.HomeroomTeacher {
		return nil, ErrNotHomeroom
	}

	status := models.RequestApproved
	if decision == DecisionReject {
		status = models.RequestRejected
	}

	tx, err := s.database.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	updated, err := db.TransitionRequest(ctx, tx, requestID, status, actor.ID, time.Now())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAlreadyDisposed
	}
	if err != nil {
		return nil, err
	}

	if decision == DecisionApprove {
		pts := updated.Points
		if updated.Type == models.PointDemerit {
			pts = -pts
		}
		reqID := updated.ID
		if _, err := db.InsertPointRecord(ctx, tx, models.PointRecord{
			StudentID:   updated.StudentID,
			Type:        updated.Type,
			Points:      pts,
			Reason:      updated.Reason,
			Description: updated.Description,
			IssuedBy:    updated.RequestingTeacher,
			RequestID:   &reqID,
		}); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.RequestsDisposed.WithLabelValues(string(decision)).Inc()
	s.audit.Record(actor, models.AuditRequestDisposed,
		fmt.Sprintf("request #%d %s", updated.ID, updated.Status))
	if s.notify != nil {
		go s.notify.RequestDisposed(context.WithoutCancel(ctx), updated)
	}
	return updated, nil
}

// RosterForTeacher lists the classes the teacher is attached to, homeroom or
// subject.
func (s *Service) RosterForTeacher(ctx context.Context, teacherID int64) ([]models.Class, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return db.ClassesForTeacher(ctx, s.database, teacherID)
}

// StudentsForTeacher expands the teacher's roster into enrolled students. The
// scoping invariant lives here: only students of classes listing the teacher
// are ever returned.
func (s *Service) StudentsForTeacher(ctx context.Context, teacherID int64) ([]models.Account, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	classes, err := db.ClassesForTeacher(ctx, s.database, teacherID)
	if err != nil {
		return nil, err
	}
	return db.ListStudentsInClasses(ctx, s.database, classes)
}

// CanAccessStudent gates ledger reads: a student sees only their own ledger,
// a teacher only students on their roster, an admin everything.
func (s *Service) CanAccessStudent(ctx context.Context, actor *models.Account, studentID int64) (bool, error) {
	switch actor.Role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleStudent:
		return actor.ID == studentID, nil
	}

	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	student, err := db.GetStudentByID(ctx, s.database, studentID)
	if err != nil || student == nil {
		return false, err
	}
	class, err := db.ClassForStudent(ctx, s.database, student)
	if err != nil || class == nil {
		return false, err
	}
	if class.HomeroomTeacherID != nil && *class.HomeroomTeacherID == actor.ID {
		return true, nil
	}
	return db.TeacherAssignedToClass(ctx, s.database, class.ID, actor.ID)
}

// Summary recomputes the aggregate from the ledger; nothing is cached.
func (s *Service) Summary(ctx context.Context, studentID int64) (models.Summary, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return db.SummaryForStudent(ctx, s.database, studentID)
}

// Ledger returns the detail listing, newest first, each entry annotated with
// a catalog label. The catalog is re-read so edits show up without restarts.
func (s *Service) Ledger(ctx context.Context, studentID int64) ([]LedgerEntry, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	catalog, err := LoadCatalog(ctx, s.database)
	if err != nil {
		return nil, err
	}
	records, err := db.ListRecordsByStudent(ctx, s.database, studentID)
	if err != nil {
		return nil, err
	}
	out := make([]LedgerEntry, 0, len(records))
	for _, r := range records {
		out = append(out, LedgerEntry{PointRecord: r, Label: catalog.Label(r.Reason, r.Type)})
	}
	return out, nil
}

func (s *Service) RequestsByTeacher(ctx context.Context, teacherID int64) ([]models.PointRequest, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return db.ListRequestsByTeacher(ctx, s.database, teacherID)
}

func (s *Service) PendingForHomeroom(ctx context.Context, homeroomID int64) ([]models.PointRequest, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return db.ListPendingForHomeroom(ctx, s.database, homeroomID)
}
