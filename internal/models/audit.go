package models

import "time"

type AuditAction string

const (
	AuditLogin            AuditAction = "login"
	AuditLoginFailed      AuditAction = "login_failed"
	AuditLogout           AuditAction = "logout"
	AuditRequestSubmitted AuditAction = "request_submitted"
	AuditRequestDisposed  AuditAction = "request_disposed"
)

type AuditEntry struct {
	ID        int64       `db:"id"`
	ActorID   *int64      `db:"actor_id"`
	ActorName string      `db:"actor_name"`
	ActorRole string      `db:"actor_role"`
	Action    AuditAction `db:"action"`
	Detail    string      `db:"detail"`
	CreatedAt time.Time   `db:"created_at"`
}
