package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/sssohn/pointsd/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	acc := &models.Account{ID: 42, Role: models.RoleHomeroomTeacher}

	token, exp, err := issuer.Issue(acc)
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(exp) < 55*time.Minute {
		t.Errorf("expiry %v too close", exp)
	}

	id, role, err := issuer.Parse(token)
	if err != nil {
		t.Fatal(err)
	}
	if id != 42 {
		t.Errorf("subject = %d, want 42", id)
	}
	if role != string(models.RoleHomeroomTeacher) {
		t.Errorf("role = %q", role)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, _, err := NewTokenIssuer("secret-a", time.Hour).Issue(&models.Account{ID: 1, Role: models.RoleStudent})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewTokenIssuer("secret-b", time.Hour).Parse(token); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)
	token, _, err := issuer.Issue(&models.Account{ID: 1, Role: models.RoleStudent})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := issuer.Parse(token); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	if _, _, err := NewTokenIssuer("test-secret", time.Hour).Parse("not.a.token"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}
