package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"schoolhub/internal/application/orchestrators"
	"schoolhub/internal/application/projections"
	activityDomain "schoolhub/internal/domain/activity"
)

func (s *server) activityQueries() projections.GetActivitiesDeps {
	return projections.GetActivitiesDeps{ActivityStore: s.Stores.ActivityStore}
}

func (s *server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	views, err := projections.QueryGetActivities(r.Context(), s.activityQueries())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *server) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	view, err := projections.QueryGetActivity(r.Context(), name, s.activityQueries())
	if err != nil {
		writeError(w, err, subject{Activity: name})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleSignup signs a student up, or files a membership request (202) when
// the activity requires approval.
func (s *server) handleSignup(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	email := emailParam(r)
	res, err := orchestrators.ExecuteSignup(r.Context(), orchestrators.SignupInput{
		ActivityName: name,
		Email:        email,
	}, orchestrators.SignupDeps{
		ActivityStore: s.Stores.ActivityStore,
		GenerateID:    s.GenerateID,
		Now:           s.Now,
	})
	if err != nil {
		writeError(w, err, subject{Email: email, Activity: name})
		return
	}
	if res.Pending {
		writeMessage(w, http.StatusAccepted, messageResponse{
			Message: fmt.Sprintf("Membership request submitted for %s to join %s", email, name),
			ID:      res.Request.ID,
			Version: res.Activity.Version,
		})
		return
	}
	writeMessage(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Signed up %s for %s", email, name),
		Version: res.Activity.Version,
	})
}

func (s *server) handleUnregister(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	email := emailParam(r)
	saved, err := orchestrators.ExecuteUnregister(r.Context(), orchestrators.UnregisterInput{
		ActivityName: name,
		Email:        email,
	}, orchestrators.UnregisterDeps{ActivityStore: s.Stores.ActivityStore})
	if err != nil {
		writeError(w, err, subject{Email: email, Activity: name})
		return
	}
	writeMessage(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Unregistered %s from %s", email, name),
		Version: saved.Version,
	})
}

// --- Membership requests ---

func (s *server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	views, err := projections.QueryGetRequests(r.Context(), projections.GetRequestsQuery{
		ActivityName: name,
		Status:       strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))),
	}, s.activityQueries())
	if err != nil {
		writeError(w, err, subject{Activity: name})
		return
	}
	writeList(w, r, views)
}

func (s *server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	email := emailParam(r)
	if email == "" {
		// Signed-in students may omit the email.
		email = session(r).Email
	}
	req, err := orchestrators.ExecuteRequestMembership(r.Context(), orchestrators.RequestMembershipInput{
		ActivityName: name,
		Email:        email,
	}, orchestrators.RequestMembershipDeps{
		ActivityStore: s.Stores.ActivityStore,
		GenerateID:    s.GenerateID,
		Now:           s.Now,
	})
	if err != nil {
		writeError(w, err, subject{Email: email, Activity: name})
		return
	}
	writeMessage(w, http.StatusCreated, messageResponse{
		Message: fmt.Sprintf("Membership request submitted for %s to join %s", req.Email, name),
		ID:      req.ID,
	})
}

func (s *server) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	s.decideRequest(w, r, true)
}

func (s *server) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	s.decideRequest(w, r, false)
}

func (s *server) decideRequest(w http.ResponseWriter, r *http.Request, approve bool) {
	name := r.PathValue("name")
	email := r.PathValue("email")
	res, err := orchestrators.ExecuteDecideRequest(r.Context(), orchestrators.DecideRequestInput{
		ActivityName: name,
		Email:        email,
		Approve:      approve,
		DecidedBy:    session(r).AccountID,
	}, orchestrators.DecideRequestDeps{
		ActivityStore: s.Stores.ActivityStore,
		Notifications: s.Stores.NotificationStore,
		Publisher:     s.publisher(),
		GenerateID:    s.GenerateID,
		Now:           s.Now,
	})
	if err != nil {
		writeError(w, err, subject{Email: email, Activity: name})
		return
	}
	verb := "Rejected"
	if approve {
		verb = "Approved"
	}
	writeMessage(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("%s request of %s for %s", verb, res.Request.Email, name),
		ID:      res.Request.ID,
		Version: res.Activity.Version,
	})
}

// --- Roles ---

func (s *server) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	email := r.PathValue("email")
	var body struct {
		Role string `json:"role"`
	}
	if isJSON(r) {
		if !decodeJSONBody(w, r, &body) {
			return
		}
	} else {
		body.Role = deref(formString(r, "role"))
	}

	saved, err := orchestrators.ExecuteAssignRole(r.Context(), orchestrators.AssignRoleInput{
		ActivityName: name,
		Email:        email,
		Role:         body.Role,
	}, orchestrators.AssignRoleDeps{ActivityStore: s.Stores.ActivityStore})
	if errors.Is(err, activityDomain.ErrNotSignedUp) {
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("%s is not a participant of %s", email, name))
		return
	}
	if errors.Is(err, activityDomain.ErrInvalidRole) {
		writeDetail(w, http.StatusBadRequest, "Invalid role. Must be one of: "+strings.Join(activityDomain.ValidRoles, ", "))
		return
	}
	if err != nil {
		writeError(w, err, subject{Email: email, Activity: name})
		return
	}
	writeMessage(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Assigned role %s to %s in %s", saved.RoleOf(strings.ToLower(strings.TrimSpace(email))), email, name),
		Version: saved.Version,
	})
}

// --- Reporting ---

func (s *server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetStatistics(r.Context(), projections.GetStatisticsDeps{ActivityStore: s.Stores.ActivityStore})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) handleReports(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetReports(r.Context(), projections.GetReportsDeps{ActivityStore: s.Stores.ActivityStore})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
