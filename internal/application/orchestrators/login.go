package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"schoolhub/internal/auth"
	"schoolhub/internal/domain/account"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult carries the account and its freshly issued access token.
type AuthResult struct {
	Account account.Account
	Token   string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	Tokens       TokenIssuer
	Now          func() time.Time
}

var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrAccountLocked      = errors.New("account is locked due to too many failed attempts")
)

// ExecuteLogin validates credentials and issues an access token.
// PRE: Valid email and password provided
// POST: Returns a token on success, records failed login on failure
// INVARIANT: Account must not be locked
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (AuthResult, error) {
	email, err := account.NormalizeEmail(input.Email)
	if err != nil || input.Password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	acct, err := deps.AccountStore.GetByEmail(ctx, email)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "not_found")
		return AuthResult{}, ErrInvalidCredentials
	}

	now := deps.Now()
	if acct.IsLocked(now) {
		slog.Info("auth_event", "event", "login_blocked", "email", email, "reason", "locked")
		return AuthResult{}, ErrAccountLocked
	}

	if err := acct.CheckPassword(input.Password); err != nil {
		acct.RecordFailedLogin(now)
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			slog.Error("auth_event", "event", "failed_login_not_recorded", "email", email, "error", err)
		}
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "wrong_password", "failed_logins", acct.FailedLogins)
		return AuthResult{}, ErrInvalidCredentials
	}

	if acct.FailedLogins > 0 {
		acct.ResetFailedLogins()
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			return AuthResult{}, err
		}
	}

	token, err := deps.Tokens.Issue(identityOf(acct))
	if err != nil {
		return AuthResult{}, err
	}
	slog.Info("auth_event", "event", "login_success", "email", email, "role", acct.Role)
	return AuthResult{Account: acct, Token: token}, nil
}

func identityOf(a account.Account) auth.Identity {
	return auth.Identity{AccountID: a.ID, Email: a.Email, Role: a.Role, Name: a.FullName}
}
