package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"schoolhub/internal/domain/account"
)

// ErrRoleNotSelfService is returned when a caller registers with a privileged role.
var ErrRoleNotSelfService = errors.New("admin accounts cannot be self-registered")

// AccountCreator inserts new accounts.
type AccountCreator interface {
	Create(ctx context.Context, a account.Account) error
}

// RegisterAccountInput carries input for the register account orchestrator.
type RegisterAccountInput struct {
	Email    string
	Password string
	FullName string
	Role     string // empty defaults to student
}

// RegisterAccountDeps holds dependencies for RegisterAccount.
type RegisterAccountDeps struct {
	AccountStore AccountCreator
	Tokens       TokenIssuer
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteRegisterAccount creates a student or teacher account and signs it in.
// PRE: Email is unused; Password has at least 8 characters
// POST: account persisted; a token for it is returned
func ExecuteRegisterAccount(ctx context.Context, input RegisterAccountInput, deps RegisterAccountDeps) (AuthResult, error) {
	email, err := account.NormalizeEmail(input.Email)
	if err != nil {
		return AuthResult{}, err
	}
	role := strings.ToLower(strings.TrimSpace(input.Role))
	if role == "" {
		role = account.RoleStudent
	}
	if role == account.RoleAdmin {
		return AuthResult{}, ErrRoleNotSelfService
	}
	if !account.IsSelfServiceRole(role) {
		return AuthResult{}, account.ErrInvalidRole
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     email,
		FullName:  strings.TrimSpace(input.FullName),
		Role:      role,
		CreatedAt: deps.Now(),
	}
	if err := acct.Validate(); err != nil {
		return AuthResult{}, err
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return AuthResult{}, err
	}
	if err := deps.AccountStore.Create(ctx, acct); err != nil {
		return AuthResult{}, err
	}

	token, err := deps.Tokens.Issue(identityOf(acct))
	if err != nil {
		return AuthResult{}, err
	}
	slog.Info("auth_event", "event", "account_registered", "email", email, "role", role)
	return AuthResult{Account: acct, Token: token}, nil
}
