package auth

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/sssohn/pointsd/internal/db"
)

// CredentialVerifier stands in for the hosted identity provider on the
// teacher/admin login path. Verify checks an (email, password) pair; SignOut
// terminates whatever provider-side session state exists.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) error
	SignOut(ctx context.Context, email string) error
}

type bcryptVerifier struct {
	database *sql.DB
}

// NewBcryptVerifier verifies against the credentials table. The table is
// deliberately separate from the account directory: a verified email with no
// directory row is a real state the gate has to handle.
func NewBcryptVerifier(database *sql.DB) CredentialVerifier {
	return &bcryptVerifier{database: database}
}

func (v *bcryptVerifier) Verify(ctx context.Context, email, password string) error {
	hash, err := db.GetPasswordHash(ctx, v.database, email)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (v *bcryptVerifier) SignOut(ctx context.Context, email string) error {
	// stateless verification, nothing to revoke
	return nil
}

// HashPassword is used by provisioning and tests.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}
