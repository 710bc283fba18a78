package service_test

import (
	"context"
	"maps"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gbsb/tripmate/internal/domain"
	"github.com/gbsb/tripmate/internal/repo"
)

// fakeStore is an in-memory repo.Transactor for service tests. InTx snapshots
// every table and restores the snapshot when fn fails, so tests can assert
// that a rejected operation left nothing behind.
type fakeStore struct {
	users    map[uuid.UUID]domain.User
	meetings map[uuid.UUID]domain.Meeting
	members  map[uuid.UUID]domain.MeetingMember
	parts    []domain.DailyParticipation
	rooms    map[uuid.UUID]domain.ChatRoom
	expenses map[uuid.UUID]domain.Expense
	plans    map[uuid.UUID]domain.TravelPlan
	items    map[uuid.UUID]domain.PlanItem

	// insertErr, when set, is returned by Participations.Insert for that day.
	insertErr map[time.Time]error
	// phantom dates are reported by ListDatesByMeeting but have no row.
	phantom []time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     map[uuid.UUID]domain.User{},
		meetings:  map[uuid.UUID]domain.Meeting{},
		members:   map[uuid.UUID]domain.MeetingMember{},
		rooms:     map[uuid.UUID]domain.ChatRoom{},
		expenses:  map[uuid.UUID]domain.Expense{},
		plans:     map[uuid.UUID]domain.TravelPlan{},
		items:     map[uuid.UUID]domain.PlanItem{},
		insertErr: map[time.Time]error{},
	}
}

// compile-time check: fakeStore must satisfy repo.Transactor.
var _ repo.Transactor = (*fakeStore)(nil)

func (s *fakeStore) Repos() repo.Repos {
	return repo.Repos{
		Users:          fakeUsers{s},
		Meetings:       fakeMeetings{s},
		Members:        fakeMembers{s},
		Participations: fakeParticipations{s},
		ChatRooms:      fakeChatRooms{s},
		Expenses:       fakeExpenses{s},
		Plans:          fakePlans{s},
	}
}

func (s *fakeStore) InTx(_ context.Context, fn func(r repo.Repos) error) error {
	users, meetings, members := maps.Clone(s.users), maps.Clone(s.meetings), maps.Clone(s.members)
	parts, rooms, expenses := slices.Clone(s.parts), maps.Clone(s.rooms), maps.Clone(s.expenses)
	plans, items := maps.Clone(s.plans), maps.Clone(s.items)

	if err := fn(s.Repos()); err != nil {
		s.users, s.meetings, s.members = users, meetings, members
		s.parts, s.rooms, s.expenses = parts, rooms, expenses
		s.plans, s.items = plans, items
		return err
	}
	return nil
}

// ---- seed helpers ----------------------------------------------------------

func (s *fakeStore) addUser(nickname string) domain.User {
	u := domain.User{ID: uuid.New(), Email: nickname + "@example.com", Nickname: nickname}
	s.users[u.ID] = u
	return u
}

func (s *fakeStore) memberRow(meetingID, userID uuid.UUID) (domain.MeetingMember, bool) {
	for _, m := range s.members {
		if m.MeetingID == meetingID && m.UserID == userID {
			return m, true
		}
	}
	return domain.MeetingMember{}, false
}

func (s *fakeStore) datesOf(userID uuid.UUID) []time.Time {
	var out []time.Time
	for _, p := range s.parts {
		if p.UserID == userID {
			out = append(out, p.Date)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// ---- users -----------------------------------------------------------------

type fakeUsers struct{ s *fakeStore }

func (f fakeUsers) GetByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	u, ok := f.s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (f fakeUsers) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return f.GetByID(ctx, id)
}

func (f fakeUsers) Upsert(_ context.Context, u domain.User) (domain.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.s.users[u.ID] = u
	return u, nil
}

// ---- meetings --------------------------------------------------------------

type fakeMeetings struct{ s *fakeStore }

func (f fakeMeetings) Create(_ context.Context, m domain.Meeting) (domain.Meeting, error) {
	m.ID = uuid.New()
	m.Status = domain.MeetingActive
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	f.s.meetings[m.ID] = m
	return m, nil
}

func (f fakeMeetings) GetByID(_ context.Context, id uuid.UUID) (domain.Meeting, error) {
	m, ok := f.s.meetings[id]
	if !ok || m.Status != domain.MeetingActive {
		return domain.Meeting{}, domain.ErrMeetingNotFound
	}
	return m, nil
}

func (f fakeMeetings) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Meeting, error) {
	return f.GetByID(ctx, id)
}

func (f fakeMeetings) summaries(keep func(domain.Meeting) bool) []domain.MeetingSummary {
	var out []domain.MeetingSummary
	for _, m := range f.s.meetings {
		if m.Status != domain.MeetingActive || !keep(m) {
			continue
		}
		out = append(out, domain.MeetingSummary{
			ID:             m.ID,
			Title:          m.Title,
			LeaderNickname: f.s.users[m.LeaderID].Nickname,
			TravelStart:    m.TravelStart,
			TravelEnd:      m.TravelEnd,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

func (f fakeMeetings) ListPaged(_ context.Context, _ domain.MeetingSort, p domain.PaginationParams) ([]domain.MeetingSummary, int64, error) {
	all := f.summaries(func(domain.Meeting) bool { return true })
	return page(all, p), int64(len(all)), nil
}

func (f fakeMeetings) SearchByMember(_ context.Context, userID uuid.UUID, title string, p domain.PaginationParams) ([]domain.MeetingSummary, int64, error) {
	all := f.summaries(func(m domain.Meeting) bool {
		row, ok := f.s.memberRow(m.ID, userID)
		return ok && row.Active() && strings.Contains(strings.ToLower(m.Title), strings.ToLower(title))
	})
	return page(all, p), int64(len(all)), nil
}

func (f fakeMeetings) Update(_ context.Context, m domain.Meeting) (domain.Meeting, error) {
	if _, ok := f.s.meetings[m.ID]; !ok {
		return domain.Meeting{}, domain.ErrMeetingNotFound
	}
	m.UpdatedAt = time.Now()
	f.s.meetings[m.ID] = m
	return m, nil
}

func (f fakeMeetings) SetStatus(_ context.Context, id uuid.UUID, status domain.MeetingStatus) error {
	m, ok := f.s.meetings[id]
	if !ok {
		return domain.ErrMeetingNotFound
	}
	m.Status = status
	f.s.meetings[id] = m
	return nil
}

func page[T any](all []T, p domain.PaginationParams) []T {
	start := min(p.Offset(), len(all))
	end := min(start+p.Limit, len(all))
	return all[start:end]
}

// ---- members ---------------------------------------------------------------

type fakeMembers struct{ s *fakeStore }

func (f fakeMembers) Create(_ context.Context, m domain.MeetingMember) (domain.MeetingMember, error) {
	if _, ok := f.s.memberRow(m.MeetingID, m.UserID); ok {
		return domain.MeetingMember{}, domain.ErrAlreadyMember
	}
	m.ID = uuid.New()
	m.Status = domain.MemberActive
	f.s.members[m.ID] = m
	return m, nil
}

func (f fakeMembers) Get(_ context.Context, meetingID, userID uuid.UUID) (domain.MeetingMember, error) {
	m, ok := f.s.memberRow(meetingID, userID)
	if !ok {
		return domain.MeetingMember{}, domain.ErrMemberNotFound
	}
	return m, nil
}

func (f fakeMembers) ListActive(_ context.Context, meetingID uuid.UUID) ([]domain.RosterEntry, error) {
	var out []domain.RosterEntry
	for _, m := range f.s.members {
		if m.MeetingID == meetingID && m.Active() {
			u := f.s.users[m.UserID]
			out = append(out, domain.RosterEntry{UserID: u.ID, Nickname: u.Nickname, Email: u.Email, IsLeader: m.IsLeader, JoinDate: m.JoinDate})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IsLeader && !out[j].IsLeader })
	return out, nil
}

func (f fakeMembers) CountActive(_ context.Context, meetingID uuid.UUID) (int, error) {
	n := 0
	for _, m := range f.s.members {
		if m.MeetingID == meetingID && m.Active() {
			n++
		}
	}
	return n, nil
}

func (f fakeMembers) Reactivate(_ context.Context, id uuid.UUID, joinDate time.Time) (domain.MeetingMember, error) {
	m, ok := f.s.members[id]
	if !ok {
		return domain.MeetingMember{}, domain.ErrMemberNotFound
	}
	m.Status = domain.MemberActive
	m.RemoveReason = ""
	m.JoinDate = joinDate
	f.s.members[id] = m
	return m, nil
}

func (f fakeMembers) Remove(_ context.Context, id uuid.UUID, reason string) error {
	m, ok := f.s.members[id]
	if !ok {
		return domain.ErrMemberNotFound
	}
	m.Status = domain.MemberRemoved
	m.RemoveReason = reason
	f.s.members[id] = m
	return nil
}

// ---- participations --------------------------------------------------------

type fakeParticipations struct{ s *fakeStore }

func (f fakeParticipations) ListDates(_ context.Context, userID uuid.UUID) ([]time.Time, error) {
	return f.s.datesOf(userID), nil
}

func (f fakeParticipations) ListDatesByMeeting(_ context.Context, userID, meetingID uuid.UUID) ([]time.Time, error) {
	var out []time.Time
	for _, p := range f.s.parts {
		if p.UserID == userID && p.MeetingID == meetingID {
			out = append(out, p.Date)
		}
	}
	return append(out, f.s.phantom...), nil
}

// Insert enforces the same (user, date) uniqueness as the real table.
func (f fakeParticipations) Insert(_ context.Context, p domain.DailyParticipation) error {
	if err, ok := f.s.insertErr[p.Date]; ok {
		return err
	}
	for _, existing := range f.s.parts {
		if existing.UserID == p.UserID && existing.Date.Equal(p.Date) {
			return domain.ErrAlreadyJoinedDate
		}
	}
	p.ID = uuid.New()
	f.s.parts = append(f.s.parts, p)
	return nil
}

func (f fakeParticipations) Delete(_ context.Context, userID, meetingID uuid.UUID, date time.Time) error {
	for i, p := range f.s.parts {
		if p.UserID == userID && p.MeetingID == meetingID && p.Date.Equal(date) {
			f.s.parts = slices.Delete(f.s.parts, i, i+1)
			return nil
		}
	}
	return domain.ErrParticipationRecordMissing
}

// ---- chat rooms ------------------------------------------------------------

type fakeChatRooms struct{ s *fakeStore }

func (f fakeChatRooms) Create(_ context.Context, room domain.ChatRoom) (domain.ChatRoom, error) {
	room.ID = uuid.New()
	room.Status = domain.ChatRoomActive
	f.s.rooms[room.ID] = room
	return room, nil
}

func (f fakeChatRooms) GetByID(_ context.Context, id uuid.UUID) (domain.ChatRoom, error) {
	room, ok := f.s.rooms[id]
	if !ok {
		return domain.ChatRoom{}, domain.ErrNotFound
	}
	return room, nil
}

func (f fakeChatRooms) SetStatus(_ context.Context, id uuid.UUID, status domain.ChatRoomStatus) error {
	room, ok := f.s.rooms[id]
	if !ok {
		return domain.ErrNotFound
	}
	room.Status = status
	f.s.rooms[id] = room
	return nil
}

// ---- expenses --------------------------------------------------------------

type fakeExpenses struct{ s *fakeStore }

func (f fakeExpenses) Create(_ context.Context, e domain.Expense) (domain.Expense, error) {
	e.ID = uuid.New()
	e.Status = domain.ExpenseActive
	f.s.expenses[e.ID] = e
	return e, nil
}

func (f fakeExpenses) GetByID(_ context.Context, id uuid.UUID) (domain.Expense, error) {
	e, ok := f.s.expenses[id]
	if !ok {
		return domain.Expense{}, domain.ErrExpenseNotFound
	}
	return e, nil
}

func (f fakeExpenses) Update(_ context.Context, e domain.Expense) (domain.Expense, error) {
	if _, ok := f.s.expenses[e.ID]; !ok {
		return domain.Expense{}, domain.ErrExpenseNotFound
	}
	f.s.expenses[e.ID] = e
	return e, nil
}

func (f fakeExpenses) SetStatus(_ context.Context, id uuid.UUID, status domain.ExpenseStatus) (domain.Expense, error) {
	e, ok := f.s.expenses[id]
	if !ok {
		return domain.Expense{}, domain.ErrExpenseNotFound
	}
	e.Status = status
	f.s.expenses[id] = e
	return e, nil
}

func (f fakeExpenses) ListActiveByMeeting(_ context.Context, meetingID uuid.UUID) ([]domain.Expense, error) {
	var out []domain.Expense
	for _, e := range f.s.expenses {
		if e.MeetingID == meetingID && e.Status == domain.ExpenseActive {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpenseDate.Before(out[j].ExpenseDate) })
	return out, nil
}

func (f fakeExpenses) SumActiveGroup(_ context.Context, meetingID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range f.s.expenses {
		if e.MeetingID == meetingID && e.IsGroupExpense && e.Status == domain.ExpenseActive {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

// ---- plans -----------------------------------------------------------------

type fakePlans struct{ s *fakeStore }

func (f fakePlans) Create(_ context.Context, p domain.TravelPlan) (domain.TravelPlan, error) {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	f.s.plans[p.ID] = p
	return p, nil
}

func (f fakePlans) GetByID(_ context.Context, id uuid.UUID) (domain.TravelPlan, error) {
	p, ok := f.s.plans[id]
	if !ok {
		return domain.TravelPlan{}, domain.ErrPlanNotFound
	}
	return p, nil
}

func (f fakePlans) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.TravelPlan, error) {
	return f.GetByID(ctx, id)
}

func (f fakePlans) ListByMeeting(_ context.Context, meetingID uuid.UUID) ([]domain.TravelPlan, error) {
	out := []domain.TravelPlan{}
	for _, p := range f.s.plans {
		if p.MeetingID == meetingID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlanDate.Before(out[j].PlanDate) })
	return out, nil
}

func (f fakePlans) AddItem(_ context.Context, it domain.PlanItem) (domain.PlanItem, error) {
	last := 0
	for _, existing := range f.s.items {
		if existing.PlanID == it.PlanID {
			last = max(last, existing.ItemOrder)
		}
	}
	it.ID = uuid.New()
	it.ItemOrder = last + 1
	f.s.items[it.ID] = it
	return it, nil
}

func (f fakePlans) ListItems(_ context.Context, planID uuid.UUID, by domain.PlanItemSort) ([]domain.PlanItem, error) {
	out := []domain.PlanItem{}
	for _, it := range f.s.items {
		if it.PlanID == planID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if by == domain.SortItemsByStartTime && !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ItemOrder < out[j].ItemOrder
	})
	return out, nil
}

func (f fakePlans) DeleteItem(_ context.Context, planID, itemID uuid.UUID) error {
	it, ok := f.s.items[itemID]
	if !ok || it.PlanID != planID {
		return domain.ErrPlanItemNotFound
	}
	delete(f.s.items, itemID)
	return nil
}

func (f fakePlans) SetItemOrder(_ context.Context, planID, itemID uuid.UUID, order int) error {
	it, ok := f.s.items[itemID]
	if !ok || it.PlanID != planID {
		return domain.ErrPlanItemNotFound
	}
	it.ItemOrder = order
	f.s.items[itemID] = it
	return nil
}
