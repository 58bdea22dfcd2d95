package models

import "time"

type PointType string

const (
	PointMerit   PointType = "merit"
	PointDemerit PointType = "demerit"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// PointRecord is an immutable ledger entry. Points is the canonical signed
// value: positive for merits, negative for demerits. Rows are only ever
// inserted; the schema rejects UPDATE and DELETE.
type PointRecord struct {
	ID          int64     `db:"id"`
	StudentID   int64     `db:"student_id"`
	Type        PointType `db:"type"`
	Points      int       `db:"points"`
	Reason      string    `db:"reason"`
	Description *string   `db:"description"`
	IssuedBy    int64     `db:"issued_by"`
	RequestID   *int64    `db:"request_id"`
	CreatedAt   time.Time `db:"created_at"`
}

// PointRequest is a proposal awaiting homeroom disposition. Points here is the
// positive magnitude; the sign is applied when the ledger record is written.
type PointRequest struct {
	ID                int64         `db:"id"`
	StudentID         int64         `db:"student_id"`
	RequestingTeacher int64         `db:"requesting_teacher_id"`
	HomeroomTeacher   int64         `db:"homeroom_teacher_id"`
	Type              PointType     `db:"type"`
	Points            int           `db:"points"`
	Reason            string        `db:"reason"`
	Description       *string       `db:"description"`
	Status            RequestStatus `db:"status"`
	CreatedAt         time.Time     `db:"created_at"`
	ResponseAt        *time.Time    `db:"response_at"`
	ResponseBy        *int64        `db:"response_by"`
}

// Reason is one catalog entry mapping free-text reasons to a display label and
// a merit/demerit category.
type Reason struct {
	ID       int64     `db:"id"`
	Text     string    `db:"text"`
	Type     PointType `db:"type"`
	Label    string    `db:"label"`
	IsActive bool      `db:"is_active"`
}

// Summary is derived from the ledger on every read, never stored.
type Summary struct {
	StudentID    int64 `json:"student_id"`
	TotalMerit   int   `json:"total_merit"`
	TotalDemerit int   `json:"total_demerit"`
	NetScore     int   `json:"net_score"`
	RecordCount  int   `json:"record_count"`
}
