package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/dbtest"
	"marketplace-backend/internal/models"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(dbtest.Open(t), "test-secret", time.Hour)
}

func TestSignupAndLogin(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, err := svc.Signup(ctx, SignupInput{Username: "alice", Email: "Alice@Example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if u.IsSeller {
		t.Error("new user is a seller")
	}
	if u.PasswordHash == "s3cret-pass" {
		t.Error("password stored in clear")
	}

	for _, ident := range []string{"alice", "alice@example.com"} {
		got, err := svc.Login(ctx, ident, "s3cret-pass")
		if err != nil {
			t.Fatalf("Login(%s): %v", ident, err)
		}
		if got.ID != u.ID {
			t.Errorf("Login(%s) = user %d, want %d", ident, got.ID, u.ID)
		}
	}

	if _, err := svc.Login(ctx, "alice", "wrong"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("wrong password: err = %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "s3cret-pass"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("unknown user: err = %v", err)
	}
}

func TestSignupValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	if _, err := svc.Signup(ctx, SignupInput{Username: "taken", Email: "taken@example.com", Password: "long-enough"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tests := []struct {
		name  string
		in    SignupInput
		field string
	}{
		{"blank username", SignupInput{Username: "   ", Password: "long-enough"}, "username"},
		{"duplicate username", SignupInput{Username: "taken", Password: "long-enough"}, "username"},
		{"duplicate email", SignupInput{Username: "bob", Email: "TAKEN@example.com", Password: "long-enough"}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.in)
			e, ok := apperr.As(err)
			if !ok || e.Kind != apperr.KindValidation || e.Field != tt.field {
				t.Fatalf("err = %v, want validation on %s", err, tt.field)
			}
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newService(t)
	u := &models.User{Base: models.Base{ID: 42}}

	tok, err := svc.IssueToken(u)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	id, err := svc.ParseToken(tok)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if id != 42 {
		t.Errorf("id = %d, want 42", id)
	}
}

func TestParseTokenRejects(t *testing.T) {
	svc := newService(t)
	other := NewService(nil, "other-secret", time.Hour)
	expired := NewService(nil, "test-secret", -time.Minute)
	u := &models.User{Base: models.Base{ID: 7}}

	foreign, _ := other.IssueToken(u)
	stale, _ := expired.IssueToken(u)
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "7"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	for name, tok := range map[string]string{
		"garbage":      "not.a.token",
		"other secret": foreign,
		"expired":      stale,
		"alg none":     none,
	} {
		if _, err := svc.ParseToken(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: err = %v, want ErrInvalidToken", name, err)
		}
	}
}
