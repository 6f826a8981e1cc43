package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssuer_RoundTrip(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	iss := NewIssuer("secret", time.Hour, fixedClock(now))

	token, err := iss.Issue(Identity{AccountID: "acc-1", Email: "ada@school.edu", Role: "teacher", Name: "Ada"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	id, err := iss.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if id.AccountID != "acc-1" || id.Email != "ada@school.edu" || id.Role != "teacher" || id.Name != "Ada" {
		t.Errorf("identity = %+v", id)
	}
}

func TestIssuer_RejectsExpired(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	token, _ := NewIssuer("secret", time.Hour, fixedClock(now)).Issue(Identity{AccountID: "acc-1"})

	later := NewIssuer("secret", time.Hour, fixedClock(now.Add(2*time.Hour)))
	if _, err := later.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestIssuer_RejectsWrongSecretAndAlgorithm(t *testing.T) {
	iss := NewIssuer("secret", time.Hour, nil)
	token, _ := NewIssuer("other", time.Hour, nil).Issue(Identity{AccountID: "acc-1"})
	if _, err := iss.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret err = %v", err)
	}

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "acc-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := iss.Parse(none); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("alg none err = %v", err)
	}

	if _, err := iss.Parse("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage err = %v", err)
	}
}
