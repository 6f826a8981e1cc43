package web

import (
	"net/http"
	"strconv"

	"schoolhub/internal/application/orchestrators"
	"schoolhub/internal/application/projections"
	accountDomain "schoolhub/internal/domain/account"
)

// notificationEmail resolves whose notifications a request reads.
// It defaults to the caller; only staff may name another recipient.
func notificationEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	sess := session(r)
	raw := r.URL.Query().Get("email")
	if raw == "" {
		return sess.Email, true
	}
	email, err := accountDomain.NormalizeEmail(raw)
	if err != nil {
		writeError(w, err, subject{})
		return "", false
	}
	if email != sess.Email && !sess.IsStaff() {
		writeDetail(w, http.StatusForbidden, "Cannot access notifications of another user")
		return "", false
	}
	return email, true
}

func (s *server) notificationQueries() projections.GetNotificationsDeps {
	return projections.GetNotificationsDeps{NotificationStore: s.Stores.NotificationStore}
}

func (s *server) notificationDeps() orchestrators.NotificationDeps {
	return orchestrators.NotificationDeps{NotificationStore: s.Stores.NotificationStore, Now: s.Now}
}

func (s *server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	email, ok := notificationEmail(w, r)
	if !ok {
		return
	}
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread_only"))
	views, err := projections.QueryGetNotifications(r.Context(), projections.GetNotificationsQuery{
		Email:      email,
		UnreadOnly: unreadOnly,
	}, s.notificationQueries())
	if err != nil {
		internalError(w, err)
		return
	}
	writeList(w, r, views)
}

func (s *server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	email, ok := notificationEmail(w, r)
	if !ok {
		return
	}
	n, err := projections.QueryGetUnreadCount(r.Context(), email, s.notificationQueries())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread_count": n})
}

func (s *server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	email, ok := notificationEmail(w, r)
	if !ok {
		return
	}
	n, err := orchestrators.ExecuteMarkNotificationRead(r.Context(), orchestrators.MarkNotificationReadInput{
		ID:    r.PathValue("id"),
		Email: email,
	}, s.notificationDeps())
	if err != nil {
		writeError(w, err, subject{})
		return
	}
	writeJSON(w, http.StatusOK, projections.NewNotificationView(n))
}

func (s *server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	email, ok := notificationEmail(w, r)
	if !ok {
		return
	}
	n, err := orchestrators.ExecuteMarkAllNotificationsRead(r.Context(), email, s.notificationDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"marked_read": n})
}

// handleNotificationSocket upgrades to a websocket that receives the caller's notifications.
// Browsers pass the bearer token as ?token= since they cannot set headers on the handshake.
func (s *server) handleNotificationSocket(w http.ResponseWriter, r *http.Request) {
	if s.Hub == nil {
		writeDetail(w, http.StatusServiceUnavailable, "Live notifications are disabled")
		return
	}
	s.Hub.Serve(w, r, session(r).Email)
}
