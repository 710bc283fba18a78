package handler_test

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gbsb/tripmate/internal/domain"
	"github.com/gbsb/tripmate/internal/handler"
	"github.com/gbsb/tripmate/internal/middleware"
)

// mockMeetingServicer is a test double for handler.MeetingServicer.
// Set only the method fields your test needs.
type mockMeetingServicer struct {
	create       func(ctx context.Context, c domain.Caller, in domain.MeetingInput) (domain.Meeting, error)
	get          func(ctx context.Context, id uuid.UUID) (domain.Meeting, error)
	list         func(ctx context.Context, sort domain.MeetingSort, p domain.PaginationParams) ([]domain.MeetingSummary, int64, error)
	search       func(ctx context.Context, c domain.Caller, title string, p domain.PaginationParams) ([]domain.MeetingSummary, int64, error)
	update       func(ctx context.Context, c domain.Caller, id uuid.UUID, in domain.MeetingInput) (domain.Meeting, error)
	delete       func(ctx context.Context, c domain.Caller, id uuid.UUID) error
	members      func(ctx context.Context, id uuid.UUID) ([]domain.RosterEntry, error)
	join         func(ctx context.Context, c domain.Caller, id uuid.UUID, rng domain.DateRange) error
	leave        func(ctx context.Context, c domain.Caller, id uuid.UUID) error
	removeMember func(ctx context.Context, c domain.Caller, meetingID, userID uuid.UUID, reason string) error
	dates        func(ctx context.Context, c domain.Caller) ([]time.Time, error)
}

func (m *mockMeetingServicer) Create(ctx context.Context, c domain.Caller, in domain.MeetingInput) (domain.Meeting, error) {
	return m.create(ctx, c, in)
}
func (m *mockMeetingServicer) Get(ctx context.Context, id uuid.UUID) (domain.Meeting, error) {
	return m.get(ctx, id)
}
func (m *mockMeetingServicer) List(ctx context.Context, sort domain.MeetingSort, p domain.PaginationParams) ([]domain.MeetingSummary, int64, error) {
	return m.list(ctx, sort, p)
}
func (m *mockMeetingServicer) Search(ctx context.Context, c domain.Caller, title string, p domain.PaginationParams) ([]domain.MeetingSummary, int64, error) {
	return m.search(ctx, c, title, p)
}
func (m *mockMeetingServicer) Update(ctx context.Context, c domain.Caller, id uuid.UUID, in domain.MeetingInput) (domain.Meeting, error) {
	return m.update(ctx, c, id, in)
}
func (m *mockMeetingServicer) Delete(ctx context.Context, c domain.Caller, id uuid.UUID) error {
	return m.delete(ctx, c, id)
}
func (m *mockMeetingServicer) Members(ctx context.Context, id uuid.UUID) ([]domain.RosterEntry, error) {
	return m.members(ctx, id)
}
func (m *mockMeetingServicer) Join(ctx context.Context, c domain.Caller, id uuid.UUID, rng domain.DateRange) error {
	return m.join(ctx, c, id, rng)
}
func (m *mockMeetingServicer) Leave(ctx context.Context, c domain.Caller, id uuid.UUID) error {
	return m.leave(ctx, c, id)
}
func (m *mockMeetingServicer) RemoveMember(ctx context.Context, c domain.Caller, meetingID, userID uuid.UUID, reason string) error {
	return m.removeMember(ctx, c, meetingID, userID, reason)
}
func (m *mockMeetingServicer) ParticipationDates(ctx context.Context, c domain.Caller) ([]time.Time, error) {
	return m.dates(ctx, c)
}

// mockExpenseServicer is a test double for handler.ExpenseServicer.
type mockExpenseServicer struct {
	create       func(ctx context.Context, c domain.Caller, meetingID uuid.UUID, in domain.ExpenseInput) (domain.Expense, error)
	update       func(ctx context.Context, c domain.Caller, id uuid.UUID, in domain.ExpenseInput) (domain.Expense, error)
	toggleDelete func(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Expense, error)
	list         func(ctx context.Context, meetingID uuid.UUID) ([]domain.Expense, error)
	perPerson    func(ctx context.Context, meetingID uuid.UUID) (domain.PerPersonShare, error)
}

func (m *mockExpenseServicer) Create(ctx context.Context, c domain.Caller, meetingID uuid.UUID, in domain.ExpenseInput) (domain.Expense, error) {
	return m.create(ctx, c, meetingID, in)
}
func (m *mockExpenseServicer) Update(ctx context.Context, c domain.Caller, id uuid.UUID, in domain.ExpenseInput) (domain.Expense, error) {
	return m.update(ctx, c, id, in)
}
func (m *mockExpenseServicer) ToggleDelete(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Expense, error) {
	return m.toggleDelete(ctx, c, id)
}
func (m *mockExpenseServicer) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]domain.Expense, error) {
	return m.list(ctx, meetingID)
}
func (m *mockExpenseServicer) PerPerson(ctx context.Context, meetingID uuid.UUID) (domain.PerPersonShare, error) {
	return m.perPerson(ctx, meetingID)
}

// mockPlanServicer is a test double for handler.PlanServicer.
type mockPlanServicer struct {
	create     func(ctx context.Context, c domain.Caller, meetingID uuid.UUID, in domain.TravelPlanInput) (domain.TravelPlan, error)
	list       func(ctx context.Context, c domain.Caller, meetingID uuid.UUID) ([]domain.TravelPlan, error)
	addItem    func(ctx context.Context, c domain.Caller, planID uuid.UUID, in domain.PlanItemInput) (domain.PlanItem, error)
	items      func(ctx context.Context, c domain.Caller, planID uuid.UUID, sort domain.PlanItemSort) ([]domain.PlanItem, error)
	deleteItem func(ctx context.Context, c domain.Caller, planID, itemID uuid.UUID) error
	reorder    func(ctx context.Context, c domain.Caller, planID uuid.UUID, ids []uuid.UUID) ([]domain.PlanItem, error)
}

func (m *mockPlanServicer) Create(ctx context.Context, c domain.Caller, meetingID uuid.UUID, in domain.TravelPlanInput) (domain.TravelPlan, error) {
	return m.create(ctx, c, meetingID, in)
}
func (m *mockPlanServicer) ListByMeeting(ctx context.Context, c domain.Caller, meetingID uuid.UUID) ([]domain.TravelPlan, error) {
	return m.list(ctx, c, meetingID)
}
func (m *mockPlanServicer) AddItem(ctx context.Context, c domain.Caller, planID uuid.UUID, in domain.PlanItemInput) (domain.PlanItem, error) {
	return m.addItem(ctx, c, planID, in)
}
func (m *mockPlanServicer) Items(ctx context.Context, c domain.Caller, planID uuid.UUID, sort domain.PlanItemSort) ([]domain.PlanItem, error) {
	return m.items(ctx, c, planID, sort)
}
func (m *mockPlanServicer) DeleteItem(ctx context.Context, c domain.Caller, planID, itemID uuid.UUID) error {
	return m.deleteItem(ctx, c, planID, itemID)
}
func (m *mockPlanServicer) Reorder(ctx context.Context, c domain.Caller, planID uuid.UUID, ids []uuid.UUID) ([]domain.PlanItem, error) {
	return m.reorder(ctx, c, planID, ids)
}

type mockPlaceSearcher struct {
	search func(ctx context.Context, query string, page, size int) (domain.PlacePage, error)
}

func (m *mockPlaceSearcher) Search(ctx context.Context, query string, page, size int) (domain.PlacePage, error) {
	return m.search(ctx, query, page, size)
}

// compile-time checks.
var (
	_ handler.MeetingServicer = (*mockMeetingServicer)(nil)
	_ handler.ExpenseServicer = (*mockExpenseServicer)(nil)
	_ handler.PlanServicer    = (*mockPlanServicer)(nil)
	_ handler.PlaceSearcher   = (*mockPlaceSearcher)(nil)
)

// testCaller is the identity every request in these tests is made as.
var testCaller = domain.Caller{UserID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Email: "alice@example.com"}

// fakeAuth stands in for the JWT middleware.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithCaller(r.Context(), testCaller)))
	})
}

// newHTTPHandler wires a Server with the given mocks the same way main.go does,
// with authentication stubbed out.
func newHTTPHandler(m handler.MeetingServicer, e handler.ExpenseServicer, p handler.PlaceSearcher) http.Handler {
	return handler.NewServer(m, e, nil, p).Routes(fakeAuth)
}

func newPlanHandler(p handler.PlanServicer) http.Handler {
	return handler.NewServer(nil, nil, p, nil).Routes(fakeAuth)
}
