package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"schoolhub/internal/auth"
	domainAccount "schoolhub/internal/domain/account"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Session is the authenticated caller of a request.
type Session struct {
	AccountID string
	Email     string
	Role      string
	Name      string
}

// IsStaff reports whether the caller is a teacher or an admin.
func (s Session) IsStaff() bool {
	return domainAccount.IsStaffRole(s.Role)
}

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(raw string) (auth.Identity, error)
}

// Auth resolves a bearer token from the Authorization header, or from the
// token query parameter on websocket handshakes only, into a Session.
// It does NOT block anonymous requests; use RequireAuth or RequireRole for that.
func Auth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := bearerToken(r); raw != "" {
				if id, err := tokens.Parse(raw); err == nil {
					r = r.WithContext(ContextWithSession(r.Context(), Session{
						AccountID: id.AccountID,
						Email:     id.Email,
						Role:      id.Role,
						Name:      id.Name,
					}))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	// Browsers cannot set headers on a websocket handshake.
	if websocket.IsWebSocketUpgrade(r) {
		return r.URL.Query().Get("token")
	}
	return ""
}

// RequireAuth blocks anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			deny(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole blocks anonymous callers with 401 and callers without one of roles with 403.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := GetSessionFromContext(r.Context())
			if !ok {
				deny(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			if !roleSet[session.Role] {
				deny(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireStaff is RequireRole for teachers and admins.
func RequireStaff(next http.Handler) http.Handler {
	return RequireRole(domainAccount.RoleTeacher, domainAccount.RoleAdmin)(next)
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(Session)
	return session, ok
}

// ContextWithSession returns a context carrying sess.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// deny writes the API error envelope.
func deny(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
