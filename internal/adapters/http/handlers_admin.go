package web

import (
	"fmt"
	"net/http"
	"strings"

	"schoolhub/internal/application/orchestrators"
	"schoolhub/internal/application/projections"
)

// activityBody is the create and update payload. Nil fields are absent.
type activityBody struct {
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	Schedule         *string `json:"schedule"`
	MaxParticipants  *int    `json:"max_participants"`
	RequiresApproval *bool   `json:"requires_approval"`
}

// readActivityBody reads a JSON body, or query and form values when the body is not JSON.
func readActivityBody(w http.ResponseWriter, r *http.Request) (activityBody, bool) {
	var body activityBody
	if isJSON(r) {
		return body, decodeJSONBody(w, r, &body)
	}
	body.Name = formString(r, "name")
	body.Description = formString(r, "description")
	body.Schedule = formString(r, "schedule")
	max, err := formInt(r, "max_participants")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "max_participants must be an integer")
		return body, false
	}
	body.MaxParticipants = max
	approval, err := formBool(r, "requires_approval")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "requires_approval must be true or false")
		return body, false
	}
	body.RequiresApproval = approval
	return body, true
}

func (s *server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	body, ok := readActivityBody(w, r)
	if !ok {
		return
	}
	if body.MaxParticipants == nil {
		writeDetail(w, http.StatusBadRequest, "max_participants is required")
		return
	}
	input := orchestrators.CreateActivityInput{
		Name:            deref(body.Name),
		Description:     deref(body.Description),
		Schedule:        deref(body.Schedule),
		MaxParticipants: *body.MaxParticipants,
	}
	if body.RequiresApproval != nil {
		input.RequiresApproval = *body.RequiresApproval
	}

	saved, err := orchestrators.ExecuteCreateActivity(r.Context(), input, orchestrators.CreateActivityDeps{
		ActivityStore: s.Stores.ActivityStore,
		Now:           s.Now,
	})
	if err != nil {
		writeError(w, err, subject{Activity: input.Name})
		return
	}
	writeMessage(w, http.StatusCreated, messageResponse{
		Message: fmt.Sprintf("Activity '%s' created successfully", saved.Name),
		Version: saved.Version,
	})
}

func (s *server) handleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	body, ok := readActivityBody(w, r)
	if !ok {
		return
	}
	if body.Name != nil && strings.TrimSpace(*body.Name) != name {
		writeDetail(w, http.StatusBadRequest, "Activities cannot be renamed")
		return
	}

	saved, err := orchestrators.ExecuteUpdateActivity(r.Context(), orchestrators.UpdateActivityInput{
		Name:             name,
		Description:      body.Description,
		Schedule:         body.Schedule,
		MaxParticipants:  body.MaxParticipants,
		RequiresApproval: body.RequiresApproval,
	}, orchestrators.UpdateActivityDeps{ActivityStore: s.Stores.ActivityStore})
	if err != nil {
		writeError(w, err, subject{Activity: name})
		return
	}
	writeMessage(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Activity '%s' updated successfully", saved.Name),
		Version: saved.Version,
	})
}

func (s *server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	err := orchestrators.ExecuteDeleteActivity(r.Context(), name, orchestrators.DeleteActivityDeps{ActivityStore: s.Stores.ActivityStore})
	if err != nil {
		writeError(w, err, subject{Activity: name})
		return
	}
	writeMessage(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Activity '%s' deleted successfully", name),
	})
}

func (s *server) handleAdminStatistics(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetAdminStatistics(r.Context(), projections.GetStatisticsDeps{ActivityStore: s.Stores.ActivityStore})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) handleAdminReports(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetAdminReports(r.Context(), projections.GetReportsDeps{ActivityStore: s.Stores.ActivityStore})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	deps := projections.GetDashboardDeps{
		ActivityStore: s.Stores.ActivityStore,
		ClubStore:     s.Stores.ClubStore,
		AccountStore:  s.Stores.AccountStore,
		Now:           s.Now,
	}
	if s.Perf != nil {
		deps.Perf = perfSource{collector: s.Perf}
	}
	res, err := projections.QueryGetDashboard(r.Context(), deps)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
