package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"schoolhub/internal/application/orchestrators"
	accountDomain "schoolhub/internal/domain/account"
	activityDomain "schoolhub/internal/domain/activity"
	clubDomain "schoolhub/internal/domain/club"
	notificationDomain "schoolhub/internal/domain/notification"
)

// messageResponse is the success envelope of mutations.
type messageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
	Version int64  `json:"version,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response_encode_failed", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, resp messageResponse) {
	writeJSON(w, status, resp)
}

// writeDetail writes the error envelope.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeDetail(w, http.StatusInternalServerError, "internal server error")
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// subject names the entity an error is about, for messages like "{email} is already a member".
type subject struct {
	Email    string
	Activity string
}

// problemMapper turns a known error into a status and detail. Status 0 means unknown.
type problemMapper func(err error, s subject) (int, string)

var problemMappers = []problemMapper{
	capacityProblem,
	emailProblem,
	activityProblem,
	clubProblem,
	eventProblem,
	notificationProblem,
	authProblem,
}

// writeError maps err through every problem table, falling back to a 500.
func writeError(w http.ResponseWriter, err error, s subject) {
	for _, m := range problemMappers {
		if status, detail := m(err, s); status != 0 {
			writeDetail(w, status, detail)
			return
		}
	}
	internalError(w, err)
}

func capacityProblem(err error, _ subject) (int, string) {
	var capErr *orchestrators.CapacityError
	if errors.As(err, &capErr) {
		return http.StatusBadRequest, fmt.Sprintf("Cannot reduce capacity below current participants. Minimum allowed: %d", capErr.Minimum)
	}
	return 0, ""
}

func emailProblem(err error, _ subject) (int, string) {
	switch {
	case errors.Is(err, accountDomain.ErrEmptyEmail):
		return http.StatusBadRequest, "Email is required"
	case errors.Is(err, accountDomain.ErrInvalidEmail):
		return http.StatusBadRequest, "Invalid email address"
	case errors.Is(err, accountDomain.ErrEmailTooLong):
		return http.StatusBadRequest, "Email cannot exceed 254 characters"
	}
	return 0, ""
}

func activityProblem(err error, s subject) (int, string) {
	switch {
	case errors.Is(err, activityDomain.ErrNotFound):
		return http.StatusNotFound, "Activity not found"
	case errors.Is(err, activityDomain.ErrAlreadySignedUp):
		return http.StatusBadRequest, "Student is already signed up"
	case errors.Is(err, activityDomain.ErrFull):
		return http.StatusBadRequest, "Activity is full"
	case errors.Is(err, activityDomain.ErrNotSignedUp):
		return http.StatusBadRequest, "Student is not signed up for this activity"
	case errors.Is(err, activityDomain.ErrRequestPending):
		return http.StatusBadRequest, "A pending request already exists"
	case errors.Is(err, activityDomain.ErrNoPendingRequest):
		return http.StatusNotFound, "No pending request for " + s.Email
	case errors.Is(err, activityDomain.ErrInvalidRole):
		return http.StatusBadRequest, "Invalid role"
	case errors.Is(err, activityDomain.ErrAlreadyExists):
		return http.StatusBadRequest, "Activity already exists"
	case errors.Is(err, activityDomain.ErrInvalidCapacity):
		return http.StatusBadRequest, "Max participants must be at least 1"
	case errors.Is(err, activityDomain.ErrEmptyName):
		return http.StatusBadRequest, "Activity name is required"
	case errors.Is(err, activityDomain.ErrConflict):
		return http.StatusConflict, "Activity was modified concurrently, retry"
	}
	return 0, ""
}

func clubProblem(err error, s subject) (int, string) {
	switch {
	case errors.Is(err, clubDomain.ErrNotFound):
		return http.StatusNotFound, "Club not found"
	case errors.Is(err, clubDomain.ErrEmptyName):
		return http.StatusBadRequest, "Club name is required"
	case errors.Is(err, clubDomain.ErrNameTooLong):
		return http.StatusBadRequest, "Club name cannot exceed 120 characters"
	case errors.Is(err, clubDomain.ErrDescTooLong):
		return http.StatusBadRequest, "Club description cannot exceed 2000 characters"
	case errors.Is(err, clubDomain.ErrAlreadyMember):
		return http.StatusBadRequest, s.Email + " is already a member"
	case errors.Is(err, clubDomain.ErrNotMember):
		return http.StatusBadRequest, s.Email + " is not a member"
	case errors.Is(err, clubDomain.ErrConflict):
		return http.StatusConflict, "Club was modified concurrently, retry"
	}
	return 0, ""
}

func eventProblem(err error, s subject) (int, string) {
	switch {
	case errors.Is(err, clubDomain.ErrEventNotFound):
		return http.StatusNotFound, "Event not found"
	case errors.Is(err, clubDomain.ErrEmptyEventName):
		return http.StatusBadRequest, "Event name is required"
	case errors.Is(err, clubDomain.ErrInvalidCapacity):
		return http.StatusBadRequest, "Max participants cannot be negative"
	case errors.Is(err, clubDomain.ErrAlreadyRegistered):
		return http.StatusBadRequest, s.Email + " is already registered for this event"
	case errors.Is(err, clubDomain.ErrNotRegistered):
		return http.StatusBadRequest, s.Email + " is not registered for this event"
	case errors.Is(err, clubDomain.ErrEventFull):
		return http.StatusBadRequest, "Event is full"
	case errors.Is(err, clubDomain.ErrEventConflict):
		return http.StatusConflict, "Event was modified concurrently, retry"
	}
	return 0, ""
}

func notificationProblem(err error, _ subject) (int, string) {
	switch {
	case errors.Is(err, notificationDomain.ErrNotFound):
		return http.StatusNotFound, "Notification not found"
	case errors.Is(err, notificationDomain.ErrEmptyMessage):
		return http.StatusBadRequest, "Message is required"
	}
	return 0, ""
}

func authProblem(err error, _ subject) (int, string) {
	switch {
	case errors.Is(err, orchestrators.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Incorrect email or password"
	case errors.Is(err, orchestrators.ErrAccountLocked):
		return http.StatusLocked, "Account is locked after too many failed attempts, try again later"
	case errors.Is(err, orchestrators.ErrRoleNotSelfService):
		return http.StatusForbidden, "Admin accounts cannot be self-registered"
	case errors.Is(err, accountDomain.ErrInvalidRole):
		return http.StatusBadRequest, "Role must be student or teacher"
	case errors.Is(err, accountDomain.ErrEmptyPassword), errors.Is(err, accountDomain.ErrPasswordTooShort):
		return http.StatusBadRequest, "Password must be at least 8 characters"
	case errors.Is(err, accountDomain.ErrEmailTaken):
		return http.StatusBadRequest, "Email already registered"
	case errors.Is(err, accountDomain.ErrFullNameTooLong):
		return http.StatusBadRequest, "Full name cannot exceed 120 characters"
	}
	return 0, ""
}
