package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("no account for this identity")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrAccountDeleted     = errors.New("account is deleted")
)
