package models

import "time"

type Role string

const (
	RoleStudent         Role = "student"
	RoleSubjectTeacher  Role = "subject_teacher"
	RoleHomeroomTeacher Role = "homeroom_teacher"
	RoleAdmin           Role = "admin"
)

func (r Role) IsTeacher() bool {
	return r == RoleSubjectTeacher || r == RoleHomeroomTeacher || r == RoleAdmin
}

type AccountStatus string

const (
	StatusActive   AccountStatus = "active"
	StatusDisabled AccountStatus = "disabled"
	StatusDeleted  AccountStatus = "deleted"
)

// Account is one row of the directory. Student and teacher attributes are
// nullable and filled depending on Role.
type Account struct {
	ID     int64         `db:"id"`
	Role   Role          `db:"role"`
	Status AccountStatus `db:"status"`
	Name   string        `db:"name"`

	// student attributes
	StudentNo   *string `db:"student_no"` // 5-digit school number
	BirthDate   *string `db:"birth_date"` // YYYY-MM-DD, compared as a string on login
	Grade       *int    `db:"grade"`
	ClassNum    *int    `db:"class_num"`
	NumberInCls *int    `db:"number_in_class"`

	// teacher attributes
	Email   *string `db:"email"`
	Subject *string `db:"subject"`

	// optional telegram binding for notifications
	TelegramChatID *int64 `db:"telegram_chat_id"`

	StatusReason *string   `db:"status_reason"`
	CreatedAt    time.Time `db:"created_at"`
}

func (a *Account) Active() bool { return a.Status == StatusActive }
