package web

import (
	"fmt"
	"net/http"

	"schoolhub/internal/application/orchestrators"
	"schoolhub/internal/application/projections"
)

func (s *server) clubQueries() projections.GetClubsDeps {
	return projections.GetClubsDeps{ClubStore: s.Stores.ClubStore}
}

func (s *server) clubDeps() orchestrators.ClubDeps {
	return orchestrators.ClubDeps{ClubStore: s.Stores.ClubStore, GenerateID: s.GenerateID, Now: s.Now}
}

func (s *server) eventDeps() orchestrators.EventDeps {
	return orchestrators.EventDeps{EventStore: s.Stores.ClubStore, GenerateID: s.GenerateID, Now: s.Now}
}

// --- Clubs ---

type clubBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func readClubBody(w http.ResponseWriter, r *http.Request) (clubBody, bool) {
	var body clubBody
	if isJSON(r) {
		return body, decodeJSONBody(w, r, &body)
	}
	body.Name = formString(r, "name")
	body.Description = formString(r, "description")
	return body, true
}

func (s *server) handleListClubs(w http.ResponseWriter, r *http.Request) {
	views, err := projections.QueryGetClubs(r.Context(), s.clubQueries())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *server) handleGetClub(w http.ResponseWriter, r *http.Request) {
	view, err := projections.QueryGetClub(r.Context(), r.PathValue("id"), s.clubQueries())
	if err != nil {
		writeError(w, err, subject{})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *server) handleCreateClub(w http.ResponseWriter, r *http.Request) {
	body, ok := readClubBody(w, r)
	if !ok {
		return
	}
	saved, err := orchestrators.ExecuteCreateClub(r.Context(), orchestrators.CreateClubInput{
		Name:        deref(body.Name),
		Description: deref(body.Description),
	}, s.clubDeps())
	if err != nil {
		writeError(w, err, subject{})
		return
	}
	writeMessage(w, http.StatusCreated, messageResponse{
		Message: fmt.Sprintf("Club '%s' created successfully", saved.Name),
		ID:      saved.ID,
		Version: saved.Version,
	})
}

func (s *server) handleUpdateClub(w http.ResponseWriter, r *http.Request) {
	body, ok := readClubBody(w, r)
	if !ok {
		return
	}
	saved, err := orchestrators.ExecuteUpdateClub(r.Context(), orchestrators.UpdateClubInput{
		ID:          r.PathValue("id"),
		Name:        body.Name,
		Description: body.Description,
	}, s.clubDeps())
	if err != nil {
		writeError(w, err, subject{})
		return
	}
	writeMessage(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Club '%s' updated successfully", saved.Name),
		ID:      saved.ID,
		Version: saved.Version,
	})
}

func (s *server) handleDeleteClub(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := orchestrators.ExecuteDeleteClub(r.Context(), id, s.clubDeps()); err != nil {
		writeError(w, err, subject{})
		return
	}
	writeMessage(w, http.StatusOK, messageResponse{Message: "Club deleted successfully", ID: id})
}

func (s *server) handleListClubMembers(w http.ResponseWriter, r *http.Request) {
	members, err := projections.QueryGetClubMembers(r.Context(), r.PathValue("id"), s.clubQueries())
	if err != nil {
		writeError(w, err, subject{})
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *server) handleJoinClub(w http.ResponseWriter, r *http.Request) {
	email := emailParam(r)
	saved, err := orchestrators.ExecuteJoinClub(r.Context(), orchestrators.ClubMembershipInput{
		ClubID: r.PathValue("id"),
		Email:  email,
	}, s.clubDeps())
	if err != nil {
		writeError(w, err, subject{Email: email})
		return
	}
	writeMessage(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Added %s to %s", email, saved.Name),
		ID:      saved.ID,
		Version: saved.Version,
	})
}

// handleLeaveClub serves both DELETE /clubs/{id}/members?email= and /clubs/{id}/members/{email}.
func (s *server) handleLeaveClub(w http.ResponseWriter, r *http.Request) {
	email := emailParam(r)
	saved, err := orchestrators.ExecuteLeaveClub(r.Context(), orchestrators.ClubMembershipInput{
		ClubID: r.PathValue("id"),
		Email:  email,
	}, s.clubDeps())
	if err != nil {
		writeError(w, err, subject{Email: email})
		return
	}
	writeMessage(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Removed %s from %s", email, saved.Name),
		ID:      saved.ID,
		Version: saved.Version,
	})
}

// --- Events ---

// eventBody is the create and update payload. Title is accepted as an alias of Name.
type eventBody struct {
	Name            *string `json:"name"`
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Date            *string `json:"date"`
	Time            *string `json:"time"`
	Location        *string `json:"location"`
	MaxParticipants *int    `json:"max_participants"`
}

func readEventBody(w http.ResponseWriter, r *http.Request) (eventBody, bool) {
	var body eventBody
	if isJSON(r) {
		if !decodeJSONBody(w, r, &body) {
			return body, false
		}
	} else {
		body.Name = formString(r, "name")
		body.Title = formString(r, "title")
		body.Description = formString(r, "description")
		body.Date = formString(r, "date")
		body.Time = formString(r, "time")
		body.Location = formString(r, "location")
		max, err := formInt(r, "max_participants")
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "max_participants must be an integer")
			return body, false
		}
		body.MaxParticipants = max
	}
	if body.Name == nil {
		body.Name = body.Title
	}
	return body, true
}

// requireClub writes 404 unless the club of the request exists.
func (s *server) requireClub(w http.ResponseWriter, r *http.Request) bool {
	if _, err := s.Stores.ClubStore.Get(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err, subject{})
		return false
	}
	return true
}

func (s *server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	views, err := projections.QueryGetEvents(r.Context(), r.PathValue("id"), s.clubQueries())
	if err != nil {
		writeError(w, err, subject{})
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	view, err := projections.QueryGetEvent(r.Context(), r.PathValue("id"), r.PathValue("eventId"), s.clubQueries())
	if err != nil {
		writeError(w, err, subject{})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	body, ok := readEventBody(w, r)
	if !ok || !s.requireClub(w, r) {
		return
	}
	input := orchestrators.CreateEventInput{
		ClubID:      r.PathValue("id"),
		Name:        deref(body.Name),
		Description: deref(body.Description),
		Date:        deref(body.Date),
		Time:        deref(body.Time),
		Location:    deref(body.Location),
	}
	if body.MaxParticipants != nil {
		input.MaxParticipants = *body.MaxParticipants
	}
	saved, err := orchestrators.ExecuteCreateEvent(r.Context(), input, s.eventDeps())
	if err != nil {
		writeError(w, err, subject{})
		return
	}
	writeMessage(w, http.StatusCreated, messageResponse{
		Message: fmt.Sprintf("Event '%s' created successfully", saved.Name),
		ID:      saved.ID,
		Version: saved.Version,
	})
}

func (s *server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	body, ok := readEventBody(w, r)
	if !ok {
		return
	}
	saved, err := orchestrators.ExecuteUpdateEvent(r.Context(), orchestrators.UpdateEventInput{
		ClubID:          r.PathValue("id"),
		EventID:         r.PathValue("eventId"),
		Name:            body.Name,
		Description:     body.Description,
		Date:            body.Date,
		Time:            body.Time,
		Location:        body.Location,
		MaxParticipants: body.MaxParticipants,
	}, s.eventDeps())
	if err != nil {
		writeError(w, err, subject{})
		return
	}
	writeMessage(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Event '%s' updated successfully", saved.Name),
		ID:      saved.ID,
		Version: saved.Version,
	})
}

func (s *server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	if err := orchestrators.ExecuteDeleteEvent(r.Context(), r.PathValue("id"), eventID, s.eventDeps()); err != nil {
		writeError(w, err, subject{})
		return
	}
	writeMessage(w, http.StatusOK, messageResponse{Message: "Event deleted successfully", ID: eventID})
}

func (s *server) handleRegisterForEvent(w http.ResponseWriter, r *http.Request) {
	email := emailParam(r)
	saved, err := orchestrators.ExecuteRegisterForEvent(r.Context(), orchestrators.EventRegistrationInput{
		ClubID:  r.PathValue("id"),
		EventID: r.PathValue("eventId"),
		Email:   email,
	}, s.eventDeps())
	if err != nil {
		writeError(w, err, subject{Email: email})
		return
	}
	writeMessage(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Registered %s for %s", email, saved.Name),
		ID:      saved.ID,
		Version: saved.Version,
	})
}

func (s *server) handleUnregisterFromEvent(w http.ResponseWriter, r *http.Request) {
	email := emailParam(r)
	saved, err := orchestrators.ExecuteUnregisterFromEvent(r.Context(), orchestrators.EventRegistrationInput{
		ClubID:  r.PathValue("id"),
		EventID: r.PathValue("eventId"),
		Email:   email,
	}, s.eventDeps())
	if err != nil {
		writeError(w, err, subject{Email: email})
		return
	}
	writeMessage(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Unregistered %s from %s", email, saved.Name),
		ID:      saved.ID,
		Version: saved.Version,
	})
}

// handleNotifyEvent broadcasts a message to every participant of an event.
func (s *server) handleNotifyEvent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if isJSON(r) {
		if !decodeJSONBody(w, r, &body) {
			return
		}
	} else {
		body.Message = deref(formString(r, "message"))
	}
	res, err := orchestrators.ExecuteSendEventNotification(r.Context(), orchestrators.SendEventNotificationInput{
		ClubID:  r.PathValue("id"),
		EventID: r.PathValue("eventId"),
		Message: body.Message,
	}, orchestrators.SendEventNotificationDeps{
		EventStore:    s.Stores.ClubStore,
		Notifications: s.Stores.NotificationStore,
		Publisher:     s.publisher(),
		Mailer:        s.mailer(),
		GenerateID:    s.GenerateID,
		Now:           s.Now,
	})
	if err != nil {
		writeError(w, err, subject{})
		return
	}
	writeMessage(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Notification sent to %d participants", res.Recipients),
	})
}
