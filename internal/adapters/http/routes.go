package web

import (
	"net/http"

	"schoolhub/internal/adapters/http/middleware"
)

// registerRoutes maps every endpoint onto mux. Staff-only routes are wrapped in RequireStaff.
func (s *server) registerRoutes(mux *http.ServeMux) {
	staff := func(h http.HandlerFunc) http.Handler { return middleware.RequireStaff(h) }
	authed := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }

	mux.HandleFunc("GET /healthz", s.handleHealthz)

	// Auth
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.Handle("GET /auth/me", authed(s.handleMe))

	// Activities
	mux.HandleFunc("GET /activities", s.handleListActivities)
	mux.HandleFunc("GET /activities/{name}", s.handleGetActivity)
	mux.HandleFunc("POST /activities/{name}/signup", s.handleSignup)
	mux.HandleFunc("DELETE /activities/{name}/unregister", s.handleUnregister)
	mux.HandleFunc("GET /activities/{name}/requests", s.handleListRequests)
	mux.HandleFunc("POST /activities/{name}/requests", s.handleCreateRequest)
	mux.Handle("POST /activities/{name}/requests/{email}/approve", staff(s.handleApproveRequest))
	mux.Handle("POST /activities/{name}/requests/{email}/reject", staff(s.handleRejectRequest))
	mux.Handle("POST /activities/{name}/members/{email}/role", staff(s.handleAssignRole))

	// Reporting
	mux.HandleFunc("GET /statistics", s.handleStatistics)
	mux.HandleFunc("GET /reports", s.handleReports)

	// Admin
	mux.Handle("POST /admin/activities", staff(s.handleCreateActivity))
	mux.Handle("PUT /admin/activities/{name}", staff(s.handleUpdateActivity))
	mux.Handle("DELETE /admin/activities/{name}", staff(s.handleDeleteActivity))
	mux.Handle("GET /admin/statistics", staff(s.handleAdminStatistics))
	mux.Handle("GET /admin/reports", staff(s.handleAdminReports))
	mux.Handle("GET /admin/dashboard", staff(s.handleAdminDashboard))

	// Clubs
	mux.HandleFunc("GET /clubs", s.handleListClubs)
	mux.Handle("POST /clubs", staff(s.handleCreateClub))
	mux.HandleFunc("GET /clubs/{id}", s.handleGetClub)
	mux.Handle("PUT /clubs/{id}", staff(s.handleUpdateClub))
	mux.Handle("DELETE /clubs/{id}", staff(s.handleDeleteClub))
	mux.HandleFunc("GET /clubs/{id}/members", s.handleListClubMembers)
	mux.HandleFunc("POST /clubs/{id}/members", s.handleJoinClub)
	mux.HandleFunc("DELETE /clubs/{id}/members", s.handleLeaveClub)
	mux.HandleFunc("DELETE /clubs/{id}/members/{email}", s.handleLeaveClub)

	// Events
	mux.HandleFunc("GET /clubs/{id}/events", s.handleListEvents)
	mux.Handle("POST /clubs/{id}/events", staff(s.handleCreateEvent))
	mux.HandleFunc("GET /clubs/{id}/events/{eventId}", s.handleGetEvent)
	mux.Handle("PUT /clubs/{id}/events/{eventId}", staff(s.handleUpdateEvent))
	mux.Handle("DELETE /clubs/{id}/events/{eventId}", staff(s.handleDeleteEvent))
	mux.HandleFunc("POST /clubs/{id}/events/{eventId}/register", s.handleRegisterForEvent)
	mux.HandleFunc("POST /clubs/{id}/events/{eventId}/unregister", s.handleUnregisterFromEvent)
	mux.HandleFunc("DELETE /clubs/{id}/events/{eventId}/unregister", s.handleUnregisterFromEvent)
	mux.Handle("POST /clubs/{id}/events/{eventId}/notify", staff(s.handleNotifyEvent))

	// Notifications
	mux.Handle("GET /notifications", authed(s.handleListNotifications))
	mux.Handle("GET /notifications/unread-count", authed(s.handleUnreadCount))
	mux.Handle("PUT /notifications/{id}/read", authed(s.handleMarkRead))
	mux.Handle("POST /notifications/read-all", authed(s.handleMarkAllRead))
	mux.Handle("GET /notifications/ws", authed(s.handleNotificationSocket))
}
