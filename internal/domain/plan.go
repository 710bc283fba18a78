package domain

import (
	"time"

	"github.com/google/uuid"
)

// TravelPlan is a named day-by-day itinerary inside a meeting. PlanDate is
// the travel day the plan covers.
type TravelPlan struct {
	ID        uuid.UUID
	MeetingID uuid.UUID
	CreatedBy uuid.UUID
	Title     string
	PlanDate  time.Time
	CreatedAt time.Time
}

// TravelPlanInput carries the caller-editable fields of a plan.
type TravelPlanInput struct {
	Title    string
	PlanDate time.Time
}

// PlanItem is one stop of a travel plan. ItemOrder is the position the
// members arranged it in; StartTime is when the stop begins.
type PlanItem struct {
	ID        uuid.UUID
	PlanID    uuid.UUID
	Title     string
	PlaceName string
	Memo      string
	StartTime time.Time
	ItemOrder int
	CreatedAt time.Time
}

// PlanItemInput carries the caller-editable fields of a plan item.
type PlanItemInput struct {
	Title     string
	PlaceName string
	Memo      string
	StartTime time.Time
}

// PlanItemSort names the orders a plan's items can be listed in.
type PlanItemSort string

const (
	SortItemsByStartTime PlanItemSort = "start_time"
	SortItemsByOrder     PlanItemSort = "item_order"
)

// ParsePlanItemSort returns the sort for s, falling back to item order for
// empty or unknown values.
func ParsePlanItemSort(s string) PlanItemSort {
	if PlanItemSort(s) == SortItemsByStartTime {
		return SortItemsByStartTime
	}
	return SortItemsByOrder
}
