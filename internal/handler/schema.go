package handler

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/gbsb/tripmate/internal/domain"
)

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// Page is the envelope of every paged list.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type MeetingRequest struct {
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Destination     string             `json:"destination"`
	GenderCondition string             `json:"gender_condition"`
	AgeRange        string             `json:"age_range"`
	TravelStyle     string             `json:"travel_style"`
	TravelStartDate openapi_types.Date `json:"travel_start_date"`
	TravelEndDate   openapi_types.Date `json:"travel_end_date"`
	MemberMax       int                `json:"member_max"`
}

func (m MeetingRequest) toInput() domain.MeetingInput {
	return domain.MeetingInput{
		Title:           m.Title,
		Description:     m.Description,
		Destination:     m.Destination,
		GenderCondition: m.GenderCondition,
		AgeRange:        m.AgeRange,
		TravelStyle:     m.TravelStyle,
		TravelStart:     m.TravelStartDate.Time,
		TravelEnd:       m.TravelEndDate.Time,
		MemberMax:       m.MemberMax,
	}
}

type Meeting struct {
	ID              uuid.UUID          `json:"id"`
	LeaderID        uuid.UUID          `json:"leader_id"`
	ChatRoomID      uuid.UUID          `json:"chat_room_id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Destination     string             `json:"destination"`
	GenderCondition string             `json:"gender_condition"`
	AgeRange        string             `json:"age_range"`
	TravelStyle     string             `json:"travel_style"`
	TravelStartDate openapi_types.Date `json:"travel_start_date"`
	TravelEndDate   openapi_types.Date `json:"travel_end_date"`
	MemberMax       int                `json:"member_max"`
	Status          string             `json:"status"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func meetingToResponse(m domain.Meeting) Meeting {
	return Meeting{
		ID:              m.ID,
		LeaderID:        m.LeaderID,
		ChatRoomID:      m.ChatRoomID,
		Title:           m.Title,
		Description:     m.Description,
		Destination:     m.Destination,
		GenderCondition: m.GenderCondition,
		AgeRange:        m.AgeRange,
		TravelStyle:     m.TravelStyle,
		TravelStartDate: openapi_types.Date{Time: m.TravelStart},
		TravelEndDate:   openapi_types.Date{Time: m.TravelEnd},
		MemberMax:       m.MemberMax,
		Status:          string(m.Status),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

type MeetingSummary struct {
	ID              uuid.UUID          `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Destination     string             `json:"destination"`
	LeaderNickname  string             `json:"leader_nickname"`
	TravelStartDate openapi_types.Date `json:"travel_start_date"`
	TravelEndDate   openapi_types.Date `json:"travel_end_date"`
}

func summariesToResponse(in []domain.MeetingSummary) []MeetingSummary {
	out := make([]MeetingSummary, len(in))
	for i, m := range in {
		out[i] = MeetingSummary{
			ID:              m.ID,
			Title:           m.Title,
			Description:     m.Description,
			Destination:     m.Destination,
			LeaderNickname:  m.LeaderNickname,
			TravelStartDate: openapi_types.Date{Time: m.TravelStart},
			TravelEndDate:   openapi_types.Date{Time: m.TravelEnd},
		}
	}
	return out
}

type Member struct {
	UserID   uuid.UUID          `json:"user_id"`
	Nickname string             `json:"nickname"`
	Email    string             `json:"email"`
	IsLeader bool               `json:"is_leader"`
	JoinDate openapi_types.Date `json:"join_date"`
}

// JoinRequest is the body of POST /meetings/{meetingId}/join.
type JoinRequest struct {
	StartDate *openapi_types.Date `json:"start_date"`
	EndDate   *openapi_types.Date `json:"end_date"`
}

// RemoveMemberRequest is the optional body of the remove-member route.
type RemoveMemberRequest struct {
	Reason string `json:"reason"`
}

type Participations struct {
	Dates []openapi_types.Date `json:"dates"`
}

type ExpenseRequest struct {
	Amount         decimal.Decimal    `json:"amount"`
	Description    string             `json:"description"`
	ExpenseDate    openapi_types.Date `json:"expense_date"`
	IsGroupExpense bool               `json:"is_group_expense"`
}

func (e ExpenseRequest) toInput() domain.ExpenseInput {
	return domain.ExpenseInput{
		Amount:         e.Amount,
		Description:    e.Description,
		ExpenseDate:    e.ExpenseDate.Time,
		IsGroupExpense: e.IsGroupExpense,
	}
}

// Expense amounts are serialised as decimal strings, e.g. "12500.50".
type Expense struct {
	ID             uuid.UUID          `json:"id"`
	MeetingID      uuid.UUID          `json:"meeting_id"`
	CreatedBy      uuid.UUID          `json:"created_by"`
	Amount         decimal.Decimal    `json:"amount"`
	Description    string             `json:"description"`
	ExpenseDate    openapi_types.Date `json:"expense_date"`
	IsGroupExpense bool               `json:"is_group_expense"`
	Status         string             `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func expenseToResponse(e domain.Expense) Expense {
	return Expense{
		ID:             e.ID,
		MeetingID:      e.MeetingID,
		CreatedBy:      e.CreatedBy,
		Amount:         e.Amount,
		Description:    e.Description,
		ExpenseDate:    openapi_types.Date{Time: e.ExpenseDate},
		IsGroupExpense: e.IsGroupExpense,
		Status:         string(e.Status),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

type PerPerson struct {
	MeetingID   uuid.UUID       `json:"meeting_id"`
	Total       decimal.Decimal `json:"total"`
	MemberCount int             `json:"member_count"`
	PerPerson   decimal.Decimal `json:"per_person"`
}

type TravelPlanRequest struct {
	Title    string             `json:"title"`
	PlanDate openapi_types.Date `json:"plan_date"`
}

type TravelPlan struct {
	ID        uuid.UUID          `json:"id"`
	MeetingID uuid.UUID          `json:"meeting_id"`
	CreatedBy uuid.UUID          `json:"created_by"`
	Title     string             `json:"title"`
	PlanDate  openapi_types.Date `json:"plan_date"`
	CreatedAt time.Time          `json:"created_at"`
}

func planToResponse(p domain.TravelPlan) TravelPlan {
	return TravelPlan{
		ID:        p.ID,
		MeetingID: p.MeetingID,
		CreatedBy: p.CreatedBy,
		Title:     p.Title,
		PlanDate:  openapi_types.Date{Time: p.PlanDate},
		CreatedAt: p.CreatedAt,
	}
}

type PlanItemRequest struct {
	Title     string    `json:"title"`
	PlaceName string    `json:"place_name"`
	Memo      string    `json:"memo"`
	StartTime time.Time `json:"start_time"`
}

func (p PlanItemRequest) toInput() domain.PlanItemInput {
	return domain.PlanItemInput{
		Title:     p.Title,
		PlaceName: p.PlaceName,
		Memo:      p.Memo,
		StartTime: p.StartTime,
	}
}

type PlanItem struct {
	ID        uuid.UUID `json:"id"`
	PlanID    uuid.UUID `json:"plan_id"`
	Title     string    `json:"title"`
	PlaceName string    `json:"place_name"`
	Memo      string    `json:"memo"`
	StartTime time.Time `json:"start_time"`
	ItemOrder int       `json:"item_order"`
}

func planItemToResponse(it domain.PlanItem) PlanItem {
	return PlanItem{
		ID:        it.ID,
		PlanID:    it.PlanID,
		Title:     it.Title,
		PlaceName: it.PlaceName,
		Memo:      it.Memo,
		StartTime: it.StartTime,
		ItemOrder: it.ItemOrder,
	}
}

func planItemsToResponse(items []domain.PlanItem) []PlanItem {
	out := make([]PlanItem, len(items))
	for i, it := range items {
		out[i] = planItemToResponse(it)
	}
	return out
}

// ReorderRequest lists every item of a plan in its new order.
type ReorderRequest struct {
	ItemIDs []uuid.UUID `json:"item_ids"`
}
