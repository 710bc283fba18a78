package handler

import (
	"net/http"

	"github.com/gbsb/tripmate/internal/domain"
)

// CreatePlan handles POST /meetings/{meetingId}/plans.
func (s *Server) CreatePlan(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	meetingID, ok := pathUUID(w, r, "meetingId")
	if !ok {
		return
	}
	var body TravelPlanRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.plans.Create(r.Context(), c, meetingID, domain.TravelPlanInput{
		Title:    body.Title,
		PlanDate: body.PlanDate.Time,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, planToResponse(created))
}

// ListPlans handles GET /meetings/{meetingId}/plans.
func (s *Server) ListPlans(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	meetingID, ok := pathUUID(w, r, "meetingId")
	if !ok {
		return
	}

	plans, err := s.plans.ListByMeeting(r.Context(), c, meetingID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]TravelPlan, len(plans))
	for i, p := range plans {
		out[i] = planToResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

// ListPlanItems handles GET /plans/{planId}/items?sort=start_time|item_order.
func (s *Server) ListPlanItems(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	planID, ok := pathUUID(w, r, "planId")
	if !ok {
		return
	}
	var sort *string
	if !queryParam(w, r, "sort", &sort) {
		return
	}

	items, err := s.plans.Items(r.Context(), c, planID, domain.ParsePlanItemSort(deref(sort)))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, planItemsToResponse(items))
}

// AddPlanItem handles POST /plans/{planId}/items.
func (s *Server) AddPlanItem(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	planID, ok := pathUUID(w, r, "planId")
	if !ok {
		return
	}
	var body PlanItemRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.plans.AddItem(r.Context(), c, planID, body.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, planItemToResponse(created))
}

// ReorderPlanItems handles PUT /plans/{planId}/items/order.
func (s *Server) ReorderPlanItems(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	planID, ok := pathUUID(w, r, "planId")
	if !ok {
		return
	}
	var body ReorderRequest
	if !decodeBody(w, r, &body) {
		return
	}

	items, err := s.plans.Reorder(r.Context(), c, planID, body.ItemIDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, planItemsToResponse(items))
}

// DeletePlanItem handles DELETE /plans/{planId}/items/{itemId}.
func (s *Server) DeletePlanItem(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	planID, ok := pathUUID(w, r, "planId")
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "itemId")
	if !ok {
		return
	}

	if err := s.plans.DeleteItem(r.Context(), c, planID, itemID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
