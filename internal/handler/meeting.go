package handler

import (
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/gbsb/tripmate/internal/domain"
)

// CreateMeeting handles POST /meetings.
func (s *Server) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	var body MeetingRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.meetings.Create(r.Context(), c, body.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, meetingToResponse(created))
}

// ListMeetings handles GET /meetings.
// Supports ?page=, ?limit= (defaults: page=1, limit=20, max=100) and
// ?sort=travel_start_date|created_at|title.
func (s *Server) ListMeetings(w http.ResponseWriter, r *http.Request) {
	params, ok := pagination(w, r)
	if !ok {
		return
	}
	var sort *string
	if !queryParam(w, r, "sort", &sort) {
		return
	}

	meetings, total, err := s.meetings.List(r.Context(), domain.ParseMeetingSort(deref(sort)), params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Page[MeetingSummary]{
		Data:       summariesToResponse(meetings),
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(total)},
	})
}

// SearchMeetings handles GET /meetings/search?title=.
// Only meetings the caller leads or belongs to are searched.
func (s *Server) SearchMeetings(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	params, ok := pagination(w, r)
	if !ok {
		return
	}
	var title *string
	if !queryParam(w, r, "title", &title) {
		return
	}

	meetings, total, err := s.meetings.Search(r.Context(), c, deref(title), params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Page[MeetingSummary]{
		Data:       summariesToResponse(meetings),
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(total)},
	})
}

// GetMeeting handles GET /meetings/{meetingId}.
func (s *Server) GetMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "meetingId")
	if !ok {
		return
	}

	m, err := s.meetings.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meetingToResponse(m))
}

// UpdateMeeting handles PUT /meetings/{meetingId}.
func (s *Server) UpdateMeeting(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "meetingId")
	if !ok {
		return
	}
	var body MeetingRequest
	if !decodeBody(w, r, &body) {
		return
	}

	updated, err := s.meetings.Update(r.Context(), c, id, body.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meetingToResponse(updated))
}

// DeleteMeeting handles DELETE /meetings/{meetingId}.
func (s *Server) DeleteMeeting(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "meetingId")
	if !ok {
		return
	}

	if err := s.meetings.Delete(r.Context(), c, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// JoinMeeting handles POST /meetings/{meetingId}/join.
func (s *Server) JoinMeeting(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "meetingId")
	if !ok {
		return
	}
	var body JoinRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.StartDate == nil || body.EndDate == nil {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "start_date and end_date are required")
		return
	}

	rng := domain.NewDateRange(body.StartDate.Time, body.EndDate.Time)
	if err := s.meetings.Join(r.Context(), c, id, rng); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LeaveMeeting handles POST /meetings/{meetingId}/leave.
func (s *Server) LeaveMeeting(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "meetingId")
	if !ok {
		return
	}

	if err := s.meetings.Leave(r.Context(), c, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMembers handles GET /meetings/{meetingId}/members.
func (s *Server) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "meetingId")
	if !ok {
		return
	}

	roster, err := s.meetings.Members(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]Member, len(roster))
	for i, m := range roster {
		out[i] = Member{
			UserID:   m.UserID,
			Nickname: m.Nickname,
			Email:    m.Email,
			IsLeader: m.IsLeader,
			JoinDate: openapi_types.Date{Time: m.JoinDate},
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// RemoveMember handles POST /meetings/{meetingId}/members/{userId}/remove.
// The body, carrying an optional reason, may be omitted.
func (s *Server) RemoveMember(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	meetingID, ok := pathUUID(w, r, "meetingId")
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userId")
	if !ok {
		return
	}
	var body RemoveMemberRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &body) {
		return
	}

	if err := s.meetings.RemoveMember(r.Context(), c, meetingID, userID, body.Reason); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListParticipations handles GET /me/participations.
func (s *Server) ListParticipations(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}

	dates, err := s.meetings.ParticipationDates(r.Context(), c)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := Participations{Dates: make([]openapi_types.Date, len(dates))}
	for i, d := range dates {
		out.Dates[i] = openapi_types.Date{Time: d}
	}
	writeJSON(w, http.StatusOK, out)
}
