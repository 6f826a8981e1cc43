package activity

import (
	"errors"
	"time"
)

// Request statuses
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// Request errors
var (
	ErrRequestPending   = errors.New("a pending request already exists")
	ErrNoPendingRequest = errors.New("no pending request")
	ErrEmptyRequestID   = errors.New("request ID is required")
)

// Request is a membership request awaiting an explicit decision.
// Approved and rejected are terminal; a rejected student may file a new request.
type Request struct {
	ID        string
	Email     string
	Status    string // pending, approved, rejected
	CreatedAt time.Time
	DecidedAt time.Time
	DecidedBy string // AccountID of the deciding staff member
}

// IsPending returns true if the request has not been decided.
func (r *Request) IsPending() bool {
	return r.Status == RequestPending
}

// RequestMembership files a pending request for email.
// PRE: id is non-empty, email is normalized
// POST: a pending request for email exists
// INVARIANT: at most one pending request per email
func (a *Activity) RequestMembership(id, email string, now time.Time) (Request, error) {
	if id == "" {
		return Request{}, ErrEmptyRequestID
	}
	if a.HasParticipant(email) {
		return Request{}, ErrAlreadySignedUp
	}
	if _, ok := a.pendingIndex(email); ok {
		return Request{}, ErrRequestPending
	}
	r := Request{ID: id, Email: email, Status: RequestPending, CreatedAt: now}
	a.Requests = append(a.Requests, r)
	return r, nil
}

// ApproveRequest moves a pending request's email into the participant list.
// A full activity leaves the request pending.
// PRE: a pending request for email exists
// POST: request approved, email is a participant exactly once
func (a *Activity) ApproveRequest(email, decidedBy string, now time.Time) (Request, error) {
	i, ok := a.pendingIndex(email)
	if !ok {
		return Request{}, ErrNoPendingRequest
	}
	if !a.HasParticipant(email) {
		if a.IsFull() {
			return Request{}, ErrFull
		}
		a.Participants = append(a.Participants, Participant{Email: email, JoinedAt: now})
	}
	a.Requests[i].Status = RequestApproved
	a.Requests[i].DecidedAt = now
	a.Requests[i].DecidedBy = decidedBy
	return a.Requests[i], nil
}

// RejectRequest discards a pending request without touching participants.
// PRE: a pending request for email exists
// POST: request rejected
func (a *Activity) RejectRequest(email, decidedBy string, now time.Time) (Request, error) {
	i, ok := a.pendingIndex(email)
	if !ok {
		return Request{}, ErrNoPendingRequest
	}
	a.Requests[i].Status = RequestRejected
	a.Requests[i].DecidedAt = now
	a.Requests[i].DecidedBy = decidedBy
	return a.Requests[i], nil
}

// PendingRequests returns undecided requests in filing order.
func (a *Activity) PendingRequests() []Request {
	var out []Request
	for _, r := range a.Requests {
		if r.IsPending() {
			out = append(out, r)
		}
	}
	return out
}

func (a *Activity) pendingIndex(email string) (int, bool) {
	for i, r := range a.Requests {
		if r.Email == email && r.IsPending() {
			return i, true
		}
	}
	return -1, false
}
