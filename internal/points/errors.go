package points

import "errors"

var (
	ErrNoSuchStudent      = errors.New("no such student")
	ErrNotAssignedToClass = errors.New("teacher is not assigned to the student's class")
	ErrNoHomeroomTeacher  = errors.New("student's class has no homeroom teacher")
	ErrNotHomeroom        = errors.New("not the homeroom teacher for this request")
	ErrRequestNotFound    = errors.New("point request not found")
	ErrAlreadyDisposed    = errors.New("point request already disposed")
	ErrInvalidPoints      = errors.New("points must be a positive integer")
	ErrInvalidType        = errors.New("type must be merit or demerit")
)
