// Package client is a typed Go client for the schoolhub REST API.
//
// Reads of activities, clubs and events pass through a per-entity Tracker,
// so a slow response carrying an older version never replaces a newer one
// already returned. An entity deleted and recreated elsewhere is recognised
// by its creation stamp and replaces the old copy. Identical mutations in
// flight at the same time share a single request.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds every request made with the default HTTP client.
const DefaultTimeout = 15 * time.Second

// Client talks to one schoolhub server. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client

	mu    sync.RWMutex
	token string

	flight     singleflight.Group
	activities *Tracker[Activity]
	clubs      *Tracker[Club]
	events     *Tracker[Event]
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithToken starts the client with a bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q needs a scheme and host", baseURL)
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		activities: NewTracker[Activity](),
		clubs:      NewTracker[Club](),
		events:     NewTracker[Event](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetToken replaces the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// endpoint joins escaped path segments onto the base URL.
func (c *Client) endpoint(query url.Values, segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u := c.baseURL.JoinPath(escaped...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// send performs one request and decodes a 2xx JSON body into out, when out is non-nil.
func (c *Client) send(ctx context.Context, method, endpoint, contentType string, body []byte, out any) error {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, req.URL.Path, err)
	}
	return nil
}

func apiError(status int, raw []byte) error {
	var env struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &env); err != nil || env.Detail == "" {
		env.Detail = http.StatusText(status)
	}
	return &APIError{Status: status, Detail: env.Detail}
}

func (c *Client) get(ctx context.Context, out any, query url.Values, segments ...string) error {
	return c.send(ctx, http.MethodGet, c.endpoint(query, segments...), "", nil, out)
}

// mutate sends a JSON mutation. Calls with the same caller, method, URL and
// body that overlap in time share one request and its result; the first
// caller's context governs the shared request.
func (c *Client) mutate(ctx context.Context, method string, body any, query url.Values, segments ...string) (Message, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return Message{}, fmt.Errorf("encode body: %w", err)
		}
	}
	endpoint := c.endpoint(query, segments...)
	key := c.bearer() + "\x00" + method + " " + endpoint + "\x00" + string(payload)

	v, err, shared := c.flight.Do(key, func() (any, error) {
		var msg Message
		contentType := ""
		if payload != nil {
			contentType = "application/json"
		}
		err := c.send(ctx, method, endpoint, contentType, payload, &msg)
		return msg, err
	})
	if shared {
		slog.Debug("client_event", "event", "mutation_shared", "method", method, "url", endpoint)
	}
	if err != nil {
		return Message{}, err
	}
	return v.(Message), nil
}

func emailQuery(email string) url.Values {
	return url.Values{"email": {email}}
}

// --- Auth ---

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (Token, error) {
	form := url.Values{"username": {email}, "password": {password}}
	var tok Token
	err := c.send(ctx, http.MethodPost, c.endpoint(nil, "auth", "login"),
		"application/x-www-form-urlencoded", []byte(form.Encode()), &tok)
	if err != nil {
		return Token{}, err
	}
	c.SetToken(tok.AccessToken)
	return tok, nil
}

// RegisterInput creates an account.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Register creates an account and keeps its token for later calls.
func (c *Client) Register(ctx context.Context, in RegisterInput) (Token, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return Token{}, err
	}
	var tok Token
	if err := c.send(ctx, http.MethodPost, c.endpoint(nil, "auth", "register"), "application/json", body, &tok); err != nil {
		return Token{}, err
	}
	c.SetToken(tok.AccessToken)
	return tok, nil
}

// Me returns the signed-in account.
func (c *Client) Me(ctx context.Context) (Me, error) {
	var me Me
	err := c.get(ctx, &me, nil, "auth", "me")
	return me, err
}

// --- Activities ---

func activityKey(name string) string { return "activity:" + name }

// Activities returns every activity keyed by name. An activity whose
// response is older than one already returned is replaced by that newer copy.
// Activities missing from the list are forgotten.
func (c *Client) Activities(ctx context.Context) (map[string]Activity, error) {
	var list map[string]Activity
	if err := c.get(ctx, &list, nil, "activities"); err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(list))
	for name, a := range list {
		list[name] = c.observeActivity(a)
		present[activityKey(name)] = true
	}
	c.activities.Retain(func(key string) bool { return present[key] })
	return list, nil
}

// Activity returns one activity, never older than the newest one already returned.
func (c *Client) Activity(ctx context.Context, name string) (Activity, error) {
	var a Activity
	if err := c.get(ctx, &a, nil, "activities", name); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			c.activities.Forget(activityKey(name))
		}
		return Activity{}, err
	}
	return c.observeActivity(a), nil
}

func (c *Client) observeActivity(a Activity) Activity {
	latest, fresh := c.activities.Observe(activityKey(a.Name), a.CreatedAt, a.Version, a)
	if !fresh {
		slog.Debug("client_event", "event", "stale_response_discarded", "key", activityKey(a.Name), "version", a.Version, "kept", latest.Version)
	}
	return latest
}

// Signup signs email up for an activity. For activities requiring approval
// the server files a membership request instead and answers 202.
func (c *Client) Signup(ctx context.Context, activity, email string) (Message, error) {
	return c.mutate(ctx, http.MethodPost, nil, emailQuery(email), "activities", activity, "signup")
}

// Unregister removes email from an activity.
func (c *Client) Unregister(ctx context.Context, activity, email string) (Message, error) {
	return c.mutate(ctx, http.MethodDelete, nil, emailQuery(email), "activities", activity, "unregister")
}

// CreateActivity adds an activity. Staff only.
func (c *Client) CreateActivity(ctx context.Context, in ActivityInput) (Message, error) {
	return c.mutate(ctx, http.MethodPost, in, nil, "admin", "activities")
}

// UpdateActivity changes an activity. Staff only.
func (c *Client) UpdateActivity(ctx context.Context, name string, in ActivityUpdate) (Message, error) {
	return c.mutate(ctx, http.MethodPut, in, nil, "admin", "activities", name)
}

// DeleteActivity removes an activity. Staff only.
func (c *Client) DeleteActivity(ctx context.Context, name string) (Message, error) {
	msg, err := c.mutate(ctx, http.MethodDelete, nil, nil, "admin", "activities", name)
	if err == nil {
		c.activities.Forget(activityKey(name))
	}
	return msg, err
}

// Requests lists membership requests of an activity. An empty status lists all.
func (c *Client) Requests(ctx context.Context, activity, status string) ([]Request, error) {
	var query url.Values
	if status != "" {
		query = url.Values{"status": {status}}
	}
	var out []Request
	err := c.get(ctx, &out, query, "activities", activity, "requests")
	return out, err
}

// RequestMembership files a pending request for email.
func (c *Client) RequestMembership(ctx context.Context, activity, email string) (Message, error) {
	return c.mutate(ctx, http.MethodPost, nil, emailQuery(email), "activities", activity, "requests")
}

// ApproveRequest approves the pending request of email. Staff only.
func (c *Client) ApproveRequest(ctx context.Context, activity, email string) (Message, error) {
	return c.mutate(ctx, http.MethodPost, nil, nil, "activities", activity, "requests", email, "approve")
}

// RejectRequest rejects the pending request of email. Staff only.
func (c *Client) RejectRequest(ctx context.Context, activity, email string) (Message, error) {
	return c.mutate(ctx, http.MethodPost, nil, nil, "activities", activity, "requests", email, "reject")
}

// AssignRole sets the activity role of a participant. Staff only.
func (c *Client) AssignRole(ctx context.Context, activity, email, role string) (Message, error) {
	return c.mutate(ctx, http.MethodPost, nil, url.Values{"role": {role}}, "activities", activity, "members", email, "role")
}

// --- Clubs and events ---

func clubKey(id string) string           { return "club:" + id }
func eventKey(clubID, id string) string { return "event:" + clubID + "/" + id }

// Club and event IDs are never reused, so the ID itself is the incarnation.
func (c *Client) observeClub(cl Club) Club {
	latest, _ := c.clubs.Observe(clubKey(cl.ID), cl.ID, cl.Version, cl)
	return latest
}

func (c *Client) observeEvent(e Event) Event {
	latest, _ := c.events.Observe(eventKey(e.ClubID, e.ID), e.ID, e.Version, e)
	return latest
}

// Clubs returns every club keyed by ID. Clubs missing from the list are forgotten.
func (c *Client) Clubs(ctx context.Context) (map[string]Club, error) {
	var list map[string]Club
	if err := c.get(ctx, &list, nil, "clubs"); err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(list))
	for id, cl := range list {
		list[id] = c.observeClub(cl)
		present[clubKey(id)] = true
	}
	c.clubs.Retain(func(key string) bool { return present[key] })
	return list, nil
}

// Club returns one club with its events.
func (c *Client) Club(ctx context.Context, id string) (Club, error) {
	var cl Club
	if err := c.get(ctx, &cl, nil, "clubs", id); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			c.clubs.Forget(clubKey(id))
		}
		return Club{}, err
	}
	return c.observeClub(cl), nil
}

// CreateClub adds a club. Staff only.
func (c *Client) CreateClub(ctx context.Context, name, description string) (Message, error) {
	return c.mutate(ctx, http.MethodPost, ClubInput{Name: &name, Description: &description}, nil, "clubs")
}

// UpdateClub changes a club. Staff only.
func (c *Client) UpdateClub(ctx context.Context, id string, in ClubInput) (Message, error) {
	return c.mutate(ctx, http.MethodPut, in, nil, "clubs", id)
}

// DeleteClub removes a club with its events. Staff only.
func (c *Client) DeleteClub(ctx context.Context, id string) (Message, error) {
	msg, err := c.mutate(ctx, http.MethodDelete, nil, nil, "clubs", id)
	if err == nil {
		c.clubs.Forget(clubKey(id))
	}
	return msg, err
}

// ClubMembers lists member emails in join order.
func (c *Client) ClubMembers(ctx context.Context, id string) ([]string, error) {
	var out []string
	err := c.get(ctx, &out, nil, "clubs", id, "members")
	return out, err
}

// JoinClub adds email to a club.
func (c *Client) JoinClub(ctx context.Context, id, email string) (Message, error) {
	return c.mutate(ctx, http.MethodPost, nil, emailQuery(email), "clubs", id, "members")
}

// LeaveClub removes email from a club.
func (c *Client) LeaveClub(ctx context.Context, id, email string) (Message, error) {
	return c.mutate(ctx, http.MethodDelete, nil, nil, "clubs", id, "members", email)
}

// Events lists the events of a club. Events of the club missing from the
// list are forgotten.
func (c *Client) Events(ctx context.Context, clubID string) ([]Event, error) {
	var out []Event
	if err := c.get(ctx, &out, nil, "clubs", clubID, "events"); err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(out))
	for i := range out {
		out[i] = c.observeEvent(out[i])
		present[eventKey(clubID, out[i].ID)] = true
	}
	prefix := eventKey(clubID, "")
	c.events.Retain(func(key string) bool { return !strings.HasPrefix(key, prefix) || present[key] })
	return out, nil
}

// Event returns one event.
func (c *Client) Event(ctx context.Context, clubID, eventID string) (Event, error) {
	var e Event
	if err := c.get(ctx, &e, nil, "clubs", clubID, "events", eventID); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			c.events.Forget(eventKey(clubID, eventID))
		}
		return Event{}, err
	}
	return c.observeEvent(e), nil
}

// CreateEvent schedules an event under a club. Staff only.
func (c *Client) CreateEvent(ctx context.Context, clubID string, in EventInput) (Message, error) {
	return c.mutate(ctx, http.MethodPost, in, nil, "clubs", clubID, "events")
}

// UpdateEvent changes an event. Staff only.
func (c *Client) UpdateEvent(ctx context.Context, clubID, eventID string, in EventInput) (Message, error) {
	return c.mutate(ctx, http.MethodPut, in, nil, "clubs", clubID, "events", eventID)
}

// DeleteEvent removes an event. Staff only.
func (c *Client) DeleteEvent(ctx context.Context, clubID, eventID string) (Message, error) {
	msg, err := c.mutate(ctx, http.MethodDelete, nil, nil, "clubs", clubID, "events", eventID)
	if err == nil {
		c.events.Forget(eventKey(clubID, eventID))
	}
	return msg, err
}

// RegisterForEvent adds email to an event roster.
func (c *Client) RegisterForEvent(ctx context.Context, clubID, eventID, email string) (Message, error) {
	return c.mutate(ctx, http.MethodPost, nil, emailQuery(email), "clubs", clubID, "events", eventID, "register")
}

// UnregisterFromEvent removes email from an event roster.
func (c *Client) UnregisterFromEvent(ctx context.Context, clubID, eventID, email string) (Message, error) {
	return c.mutate(ctx, http.MethodDelete, nil, emailQuery(email), "clubs", clubID, "events", eventID, "unregister")
}

// NotifyEvent sends message to every participant of an event. Staff only.
func (c *Client) NotifyEvent(ctx context.Context, clubID, eventID, message string) (Message, error) {
	body := struct {
		Message string `json:"message"`
	}{message}
	return c.mutate(ctx, http.MethodPost, body, nil, "clubs", clubID, "events", eventID, "notify")
}

// --- Notifications ---

// Notifications lists the caller's notifications, newest first.
func (c *Client) Notifications(ctx context.Context, unreadOnly bool) ([]Notification, error) {
	var query url.Values
	if unreadOnly {
		query = url.Values{"unread_only": {"true"}}
	}
	var out []Notification
	err := c.get(ctx, &out, query, "notifications")
	return out, err
}

// UnreadCount returns how many of the caller's notifications are unread.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		UnreadCount int `json:"unread_count"`
	}
	err := c.get(ctx, &out, nil, "notifications", "unread-count")
	return out.UnreadCount, err
}

// MarkRead marks one notification read. Marking it again is not an error.
func (c *Client) MarkRead(ctx context.Context, id string) (Notification, error) {
	var n Notification
	err := c.send(ctx, http.MethodPut, c.endpoint(nil, "notifications", id, "read"), "", nil, &n)
	return n, err
}

// MarkAllRead marks every notification of the caller read and returns how many changed.
func (c *Client) MarkAllRead(ctx context.Context) (int, error) {
	var out struct {
		MarkedRead int `json:"marked_read"`
	}
	err := c.send(ctx, http.MethodPost, c.endpoint(nil, "notifications", "read-all"), "", nil, &out)
	return out.MarkedRead, err
}

// --- Reporting ---

// Statistics returns the public occupancy summary.
func (c *Client) Statistics(ctx context.Context) (Statistics, error) {
	var s Statistics
	err := c.get(ctx, &s, nil, "statistics")
	return s, err
}

// Dashboard returns the raw admin dashboard document. Staff only.
func (c *Client) Dashboard(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.get(ctx, &raw, nil, "admin", "dashboard")
	return raw, err
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
