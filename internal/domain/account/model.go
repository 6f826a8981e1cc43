package account

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Field limits.
const (
	MaxEmailLength    = 254
	MaxFullNameLength = 120
	MinPasswordLength = 8
)

// Role constants
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleStudent, RoleTeacher, RoleAdmin}

// SelfServiceRoles are the roles a caller may pick when registering.
var SelfServiceRoles = []string{RoleStudent, RoleTeacher}

// Lockout policy.
const (
	maxFailedLogins = 5
	lockoutWindow   = 15 * time.Minute
)

// Domain errors
var (
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmailTooLong     = errors.New("email cannot exceed 254 characters")
	ErrFullNameTooLong  = errors.New("full name cannot exceed 120 characters")
	ErrInvalidRole      = errors.New("role must be one of: student, teacher, admin")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrNotFound         = errors.New("account not found")
	ErrEmailTaken       = errors.New("an account with this email already exists")
)

// Account is a registered user of the system.
type Account struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	FailedLogins int
	LockedUntil  time.Time
}

// NormalizeEmail trims and lower-cases an email address and checks its shape.
// Every registry keys people by the normalized form.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrEmptyEmail
	}
	if len(email) > MaxEmailLength {
		return "", ErrEmailTooLong
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if _, err := NormalizeEmail(a.Email); err != nil {
		return err
	}
	if len(a.FullName) > MaxFullNameLength {
		return ErrFullNameTooLong
	}
	if !IsValidRole(a.Role) {
		return ErrInvalidRole
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt.
// PRE: plaintext is non-empty and >= MinPasswordLength characters
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// IsLocked reports whether the account is locked out at now.
func (a *Account) IsLocked(now time.Time) bool {
	if a.LockedUntil.IsZero() {
		return false
	}
	return now.Before(a.LockedUntil)
}

// RecordFailedLogin increments the failed login counter and locks the account after 5 failures.
// POST: FailedLogins incremented; LockedUntil set if >= 5 failures
func (a *Account) RecordFailedLogin(now time.Time) {
	a.FailedLogins++
	if a.FailedLogins >= maxFailedLogins {
		a.LockedUntil = now.Add(lockoutWindow)
	}
}

// ResetFailedLogins clears the failed login counter and lock.
func (a *Account) ResetFailedLogins() {
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
}

// IsAdmin returns true if the account has admin role.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsStaff returns true for teachers and admins.
func (a *Account) IsStaff() bool {
	return IsStaffRole(a.Role)
}

// IsStaffRole reports whether role may administer activities and clubs.
func IsStaffRole(role string) bool {
	return role == RoleAdmin || role == RoleTeacher
}

// IsValidRole reports whether role is a known account role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsSelfServiceRole reports whether role may be chosen at registration.
func IsSelfServiceRole(role string) bool {
	for _, r := range SelfServiceRoles {
		if r == role {
			return true
		}
	}
	return false
}
