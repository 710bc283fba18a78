package handler

import "net/http"

// CreateExpense handles POST /meetings/{meetingId}/expenses.
func (s *Server) CreateExpense(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	meetingID, ok := pathUUID(w, r, "meetingId")
	if !ok {
		return
	}
	var body ExpenseRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.expenses.Create(r.Context(), c, meetingID, body.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, expenseToResponse(created))
}

// ListExpenses handles GET /meetings/{meetingId}/expenses.
func (s *Server) ListExpenses(w http.ResponseWriter, r *http.Request) {
	meetingID, ok := pathUUID(w, r, "meetingId")
	if !ok {
		return
	}

	expenses, err := s.expenses.ListByMeeting(r.Context(), meetingID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]Expense, len(expenses))
	for i, e := range expenses {
		out[i] = expenseToResponse(e)
	}
	writeJSON(w, http.StatusOK, out)
}

// PerPersonExpense handles GET /meetings/{meetingId}/expenses/per-person.
func (s *Server) PerPersonExpense(w http.ResponseWriter, r *http.Request) {
	meetingID, ok := pathUUID(w, r, "meetingId")
	if !ok {
		return
	}

	share, err := s.expenses.PerPerson(r.Context(), meetingID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PerPerson{
		MeetingID:   share.MeetingID,
		Total:       share.Total,
		MemberCount: share.MemberCount,
		PerPerson:   share.PerPerson,
	})
}

// UpdateExpense handles PUT /expenses/{expenseId}.
func (s *Server) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "expenseId")
	if !ok {
		return
	}
	var body ExpenseRequest
	if !decodeBody(w, r, &body) {
		return
	}

	updated, err := s.expenses.Update(r.Context(), c, id, body.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expenseToResponse(updated))
}

// ToggleDeleteExpense handles POST /expenses/{expenseId}/toggle-delete.
func (s *Server) ToggleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "expenseId")
	if !ok {
		return
	}

	toggled, err := s.expenses.ToggleDelete(r.Context(), c, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expenseToResponse(toggled))
}
