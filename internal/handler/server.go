// Package handler implements the HTTP handlers for the TripMate API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, meeting.go, expense.go, plan.go, place.go) but all share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gbsb/tripmate/internal/domain"
)

// MeetingServicer defines the meeting and participation operations the
// handlers depend on. Defining it here, in the consumer package, lets handler
// tests inject a mock without touching the database or service layer.
type MeetingServicer interface {
	Create(ctx context.Context, caller domain.Caller, in domain.MeetingInput) (domain.Meeting, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Meeting, error)
	List(ctx context.Context, sort domain.MeetingSort, p domain.PaginationParams) ([]domain.MeetingSummary, int64, error)
	Search(ctx context.Context, caller domain.Caller, title string, p domain.PaginationParams) ([]domain.MeetingSummary, int64, error)
	Update(ctx context.Context, caller domain.Caller, meetingID uuid.UUID, in domain.MeetingInput) (domain.Meeting, error)
	Delete(ctx context.Context, caller domain.Caller, meetingID uuid.UUID) error
	Members(ctx context.Context, meetingID uuid.UUID) ([]domain.RosterEntry, error)
	Join(ctx context.Context, caller domain.Caller, meetingID uuid.UUID, rng domain.DateRange) error
	Leave(ctx context.Context, caller domain.Caller, meetingID uuid.UUID) error
	RemoveMember(ctx context.Context, caller domain.Caller, meetingID, targetUserID uuid.UUID, reason string) error
	ParticipationDates(ctx context.Context, caller domain.Caller) ([]time.Time, error)
}

// ExpenseServicer defines the expense operations the handlers depend on.
type ExpenseServicer interface {
	Create(ctx context.Context, caller domain.Caller, meetingID uuid.UUID, in domain.ExpenseInput) (domain.Expense, error)
	Update(ctx context.Context, caller domain.Caller, expenseID uuid.UUID, in domain.ExpenseInput) (domain.Expense, error)
	ToggleDelete(ctx context.Context, caller domain.Caller, expenseID uuid.UUID) (domain.Expense, error)
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]domain.Expense, error)
	PerPerson(ctx context.Context, meetingID uuid.UUID) (domain.PerPersonShare, error)
}

// PlanServicer defines the travel plan operations the handlers depend on.
type PlanServicer interface {
	Create(ctx context.Context, caller domain.Caller, meetingID uuid.UUID, in domain.TravelPlanInput) (domain.TravelPlan, error)
	ListByMeeting(ctx context.Context, caller domain.Caller, meetingID uuid.UUID) ([]domain.TravelPlan, error)
	AddItem(ctx context.Context, caller domain.Caller, planID uuid.UUID, in domain.PlanItemInput) (domain.PlanItem, error)
	Items(ctx context.Context, caller domain.Caller, planID uuid.UUID, sort domain.PlanItemSort) ([]domain.PlanItem, error)
	DeleteItem(ctx context.Context, caller domain.Caller, planID, itemID uuid.UUID) error
	Reorder(ctx context.Context, caller domain.Caller, planID uuid.UUID, itemIDs []uuid.UUID) ([]domain.PlanItem, error)
}

// PlaceSearcher is satisfied by *place.Client.
type PlaceSearcher interface {
	Search(ctx context.Context, query string, page, size int) (domain.PlacePage, error)
}

// Server holds the dependencies of every handler.
type Server struct {
	meetings MeetingServicer
	expenses ExpenseServicer
	plans    PlanServicer
	places   PlaceSearcher
}

// NewServer constructs the Server with all its dependencies.
func NewServer(meetings MeetingServicer, expenses ExpenseServicer, plans PlanServicer, places PlaceSearcher) *Server {
	return &Server{meetings: meetings, expenses: expenses, plans: plans, places: places}
}

// Routes returns the API router. Every route except /healthz runs behind
// auth, which must put a domain.Caller into the request context.
func (s *Server) Routes(auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)

	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Route("/meetings", func(r chi.Router) {
			r.Get("/", s.ListMeetings)
			r.Post("/", s.CreateMeeting)
			r.Get("/search", s.SearchMeetings)

			r.Route("/{meetingId}", func(r chi.Router) {
				r.Get("/", s.GetMeeting)
				r.Put("/", s.UpdateMeeting)
				r.Delete("/", s.DeleteMeeting)

				r.Post("/join", s.JoinMeeting)
				r.Post("/leave", s.LeaveMeeting)
				r.Get("/members", s.ListMembers)
				r.Post("/members/{userId}/remove", s.RemoveMember)

				r.Get("/expenses", s.ListExpenses)
				r.Post("/expenses", s.CreateExpense)
				r.Get("/expenses/per-person", s.PerPersonExpense)

				r.Get("/plans", s.ListPlans)
				r.Post("/plans", s.CreatePlan)
			})
		})

		r.Route("/plans/{planId}/items", func(r chi.Router) {
			r.Get("/", s.ListPlanItems)
			r.Post("/", s.AddPlanItem)
			r.Put("/order", s.ReorderPlanItems)
			r.Delete("/{itemId}", s.DeletePlanItem)
		})

		r.Put("/expenses/{expenseId}", s.UpdateExpense)
		r.Post("/expenses/{expenseId}/toggle-delete", s.ToggleDeleteExpense)

		r.Get("/me/participations", s.ListParticipations)
		r.Get("/places", s.SearchPlaces)
	})
	return r
}
