package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"schoolhub/internal/adapters/http/middleware"
	"schoolhub/internal/application/listutil"
)

var errBadInput = errors.New("bad input")

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// decodeJSONBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	if err := strictDecode(r, v); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// formString returns the query or form value for key, or nil when absent.
func formString(r *http.Request, key string) *string {
	if err := r.ParseForm(); err != nil {
		return nil
	}
	vals, ok := r.Form[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}

// formInt parses an integer query or form value.
func formInt(r *http.Request, key string) (*int, error) {
	raw := formString(r, key)
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*raw))
	if err != nil {
		return nil, errBadInput
	}
	return &n, nil
}

// formBool parses a boolean query or form value.
func formBool(r *http.Request, key string) (*bool, error) {
	raw := formString(r, key)
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(*raw))
	if err != nil {
		return nil, errBadInput
	}
	return &b, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// emailParam reads the email a request acts on from the path, the query or a form field.
func emailParam(r *http.Request) string {
	if v := r.PathValue("email"); v != "" {
		return v
	}
	return strings.TrimSpace(deref(formString(r, "email")))
}

func session(r *http.Request) middleware.Session {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	return sess
}

// writeList writes items as a JSON array. When the request names page or
// per_page only that page is written, with the totals in X-Total-Count and
// X-Total-Pages.
func writeList[T any](w http.ResponseWriter, r *http.Request, items []T) {
	if params, ok := listutil.ParsePageParams(r.URL.Query()); ok {
		var info listutil.PageInfo
		items, info = listutil.Paginate(items, params)
		w.Header().Set("X-Total-Count", strconv.Itoa(info.Total))
		w.Header().Set("X-Total-Pages", strconv.Itoa(info.TotalPages))
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, items)
}
