package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gbsb/tripmate/internal/domain"
	"github.com/gbsb/tripmate/internal/repo"
)

// MeetingService implements the meeting roster and per-day participation rules.
//
// Every mutating method runs in a single transaction. Join takes a row lock on
// the joining user before reading their participation dates, and the
// (user_id, participation_date) unique constraint backs it up, so two
// concurrent joins can never book the same day twice.
type MeetingService struct {
	store repo.Transactor
	chat  ChatNotifier
	today Clock
}

// NewMeetingService constructs a MeetingService.
func NewMeetingService(store repo.Transactor, chat ChatNotifier, today Clock) *MeetingService {
	return &MeetingService{store: store, chat: chat, today: today}
}

// Create validates the input, then persists the chat room, the meeting and
// the leader's membership row in one transaction. The leader joins the chat
// once the transaction has committed.
func (s *MeetingService) Create(ctx context.Context, caller domain.Caller, in domain.MeetingInput) (domain.Meeting, error) {
	if err := validateMeetingInput(in); err != nil {
		return domain.Meeting{}, err
	}
	today := s.today()
	if err := validateTravelWindow(domain.NewDateRange(in.TravelStart, in.TravelEnd), today); err != nil {
		return domain.Meeting{}, err
	}

	var (
		created domain.Meeting
		leader  domain.User
	)
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		var err error
		leader, err = r.Users.GetByID(ctx, caller.UserID)
		if err != nil {
			return err
		}

		room, err := r.ChatRooms.Create(ctx, domain.ChatRoom{Name: in.Title, OwnerID: leader.ID})
		if err != nil {
			return err
		}

		m := domain.Meeting{LeaderID: leader.ID, ChatRoomID: room.ID}
		in.Apply(&m)
		created, err = r.Meetings.Create(ctx, m)
		if err != nil {
			return err
		}

		_, err = r.Members.Create(ctx, domain.MeetingMember{
			MeetingID: created.ID,
			UserID:    leader.ID,
			IsLeader:  true,
			JoinDate:  today,
		})
		return err
	})
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("service.MeetingService.Create: %w", err)
	}

	slog.InfoContext(ctx, "meeting created", "meeting_id", created.ID, "leader_id", leader.ID)
	s.chat.AddUserToChat(created.ChatRoomID, leader.Email)
	return created, nil
}

// Get returns an active meeting by id.
func (s *MeetingService) Get(ctx context.Context, id uuid.UUID) (domain.Meeting, error) {
	m, err := s.store.Repos().Meetings.GetByID(ctx, id)
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("service.MeetingService.Get: %w", err)
	}
	return m, nil
}

// List returns one page of active meetings.
func (s *MeetingService) List(ctx context.Context, sort domain.MeetingSort, p domain.PaginationParams) ([]domain.MeetingSummary, int64, error) {
	page, total, err := s.store.Repos().Meetings.ListPaged(ctx, sort, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.MeetingService.List: %w", err)
	}
	if page == nil {
		page = []domain.MeetingSummary{}
	}
	return page, total, nil
}

// Search returns one page of the caller's meetings whose title contains title.
func (s *MeetingService) Search(ctx context.Context, caller domain.Caller, title string, p domain.PaginationParams) ([]domain.MeetingSummary, int64, error) {
	page, total, err := s.store.Repos().Meetings.SearchByMember(ctx, caller.UserID, strings.TrimSpace(title), p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.MeetingService.Search: %w", err)
	}
	if page == nil {
		page = []domain.MeetingSummary{}
	}
	return page, total, nil
}

// Members returns the active roster of a meeting, leader first.
func (s *MeetingService) Members(ctx context.Context, meetingID uuid.UUID) ([]domain.RosterEntry, error) {
	r := s.store.Repos()
	if _, err := r.Meetings.GetByID(ctx, meetingID); err != nil {
		return nil, fmt.Errorf("service.MeetingService.Members: %w", err)
	}
	roster, err := r.Members.ListActive(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("service.MeetingService.Members: %w", err)
	}
	if roster == nil {
		roster = []domain.RosterEntry{}
	}
	return roster, nil
}

// ParticipationDates returns every day the caller is committed to, across meetings.
func (s *MeetingService) ParticipationDates(ctx context.Context, caller domain.Caller) ([]time.Time, error) {
	dates, err := s.store.Repos().Participations.ListDates(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("service.MeetingService.ParticipationDates: %w", err)
	}
	if dates == nil {
		dates = []time.Time{}
	}
	return dates, nil
}

// Update applies a patch to a meeting. Only the leader may update, and the
// new travel window must be ordered and must not start in the past.
func (s *MeetingService) Update(ctx context.Context, caller domain.Caller, meetingID uuid.UUID, in domain.MeetingInput) (domain.Meeting, error) {
	if err := validateMeetingInput(in); err != nil {
		return domain.Meeting{}, err
	}

	var updated domain.Meeting
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		m, err := r.Meetings.GetByIDForUpdate(ctx, meetingID)
		if err != nil {
			return err
		}
		if m.LeaderID != caller.UserID {
			return domain.ErrNotMeetingLeader
		}
		if err := validateTravelWindow(domain.NewDateRange(in.TravelStart, in.TravelEnd), s.today()); err != nil {
			return err
		}

		n, err := r.Members.CountActive(ctx, m.ID)
		if err != nil {
			return err
		}
		if in.MemberMax < n {
			return fmt.Errorf("%w: member_max is below the current member count (%d)", domain.ErrValidation, n)
		}

		in.Apply(&m)
		updated, err = r.Meetings.Update(ctx, m)
		return err
	})
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("service.MeetingService.Update: %w", err)
	}
	return updated, nil
}

// Delete soft-deletes a meeting and its chat room. Only the leader may delete,
// only when nobody else is still a member and never during the travel period.
func (s *MeetingService) Delete(ctx context.Context, caller domain.Caller, meetingID uuid.UUID) error {
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		m, err := r.Meetings.GetByIDForUpdate(ctx, meetingID)
		if err != nil {
			return err
		}
		if m.LeaderID != caller.UserID {
			return domain.ErrNotMeetingLeader
		}

		n, err := r.Members.CountActive(ctx, m.ID)
		if err != nil {
			return err
		}
		if n > 1 {
			return domain.ErrMembersPresent
		}
		if m.Window().Contains(s.today()) {
			return domain.ErrActiveTravelWindow
		}

		if err := r.ChatRooms.SetStatus(ctx, m.ChatRoomID, domain.ChatRoomDeleted); err != nil {
			return err
		}
		return r.Meetings.SetStatus(ctx, m.ID, domain.MeetingDeleted)
	})
	if err != nil {
		return fmt.Errorf("service.MeetingService.Delete: %w", err)
	}

	slog.InfoContext(ctx, "meeting deleted", "meeting_id", meetingID)
	return nil
}

// Join adds the caller to a meeting for the days in rng and records one
// participation row per day. The whole join is rejected, with nothing
// written, if any day in rng is already booked by the caller.
func (s *MeetingService) Join(ctx context.Context, caller domain.Caller, meetingID uuid.UUID, rng domain.DateRange) error {
	rng = domain.NewDateRange(rng.Start, rng.End)

	var (
		user    domain.User
		meeting domain.Meeting
	)
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		var err error
		// Locking the user row serialises every join by the same user.
		user, err = r.Users.GetByIDForUpdate(ctx, caller.UserID)
		if err != nil {
			return err
		}
		meeting, err = r.Meetings.GetByIDForUpdate(ctx, meetingID)
		if err != nil {
			return err
		}
		if meeting.LeaderID == user.ID {
			return domain.ErrCreatedByUser
		}

		existing, err := r.Members.Get(ctx, meeting.ID, user.ID)
		found := err == nil
		if err != nil && !errors.Is(err, domain.ErrMemberNotFound) {
			return err
		}
		if found && existing.Active() {
			return domain.ErrAlreadyMember
		}

		if !rng.Ordered() {
			return domain.ErrInvalidTravelDate
		}
		if !rng.Within(meeting.Window()) {
			return domain.ErrInvalidMeetingTravelDate
		}

		n, err := r.Members.CountActive(ctx, meeting.ID)
		if err != nil {
			return err
		}
		if n >= meeting.MemberMax {
			return domain.ErrMeetingFull
		}

		days := rng.Days()
		if err := checkNoOverlap(ctx, r.Participations, user.ID, days); err != nil {
			return err
		}

		if found {
			_, err = r.Members.Reactivate(ctx, existing.ID, s.today())
		} else {
			_, err = r.Members.Create(ctx, domain.MeetingMember{
				MeetingID: meeting.ID,
				UserID:    user.ID,
				JoinDate:  s.today(),
			})
		}
		if err != nil {
			return err
		}

		for _, d := range days {
			p := domain.DailyParticipation{UserID: user.ID, MeetingID: meeting.ID, Date: d}
			if err := r.Participations.Insert(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("service.MeetingService.Join: %w", err)
	}

	slog.InfoContext(ctx, "member joined", "meeting_id", meeting.ID, "user_id", user.ID,
		"from", rng.Start.Format(time.DateOnly), "to", rng.End.Format(time.DateOnly))
	s.chat.AddUserToChat(meeting.ChatRoomID, user.Email)
	s.chat.SendSystemMessage(domain.SystemMessage{
		RoomID:  meeting.ChatRoomID,
		Writer:  user.Nickname,
		Message: user.Nickname + " joined the chat.",
	})
	return nil
}

// Leave removes the caller from a meeting. The leader cannot leave.
func (s *MeetingService) Leave(ctx context.Context, caller domain.Caller, meetingID uuid.UUID) error {
	var (
		user    domain.User
		meeting domain.Meeting
	)
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		var err error
		user, err = r.Users.GetByIDForUpdate(ctx, caller.UserID)
		if err != nil {
			return err
		}
		meeting, err = r.Meetings.GetByID(ctx, meetingID)
		if err != nil {
			return err
		}

		member, err := activeMember(ctx, r.Members, meeting.ID, user.ID)
		if err != nil {
			return err
		}
		if member.IsLeader {
			return domain.ErrLeaderCannotLeave
		}

		if err := cascadeRemove(ctx, r.Participations, user.ID, meeting.ID); err != nil {
			return err
		}
		return r.Members.Remove(ctx, member.ID, "")
	})
	if err != nil {
		return fmt.Errorf("service.MeetingService.Leave: %w", err)
	}

	slog.InfoContext(ctx, "member left", "meeting_id", meeting.ID, "user_id", user.ID)
	s.notifyDeparture(meeting, user)
	return nil
}

// RemoveMember lets the leader remove another member, recording why.
func (s *MeetingService) RemoveMember(ctx context.Context, caller domain.Caller, meetingID, targetUserID uuid.UUID, reason string) error {
	var (
		target  domain.User
		meeting domain.Meeting
	)
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		var err error
		meeting, err = r.Meetings.GetByID(ctx, meetingID)
		if err != nil {
			return err
		}
		if meeting.LeaderID != caller.UserID {
			return domain.ErrNotMeetingLeader
		}

		target, err = r.Users.GetByIDForUpdate(ctx, targetUserID)
		if err != nil {
			return err
		}
		member, err := activeMember(ctx, r.Members, meeting.ID, target.ID)
		if err != nil {
			return err
		}
		if member.IsLeader {
			return domain.ErrSelfRemovalForbidden
		}

		if err := cascadeRemove(ctx, r.Participations, target.ID, meeting.ID); err != nil {
			return err
		}
		return r.Members.Remove(ctx, member.ID, strings.TrimSpace(reason))
	})
	if err != nil {
		return fmt.Errorf("service.MeetingService.RemoveMember: %w", err)
	}

	slog.InfoContext(ctx, "member removed", "meeting_id", meeting.ID, "user_id", target.ID)
	s.notifyDeparture(meeting, target)
	return nil
}

func (s *MeetingService) notifyDeparture(m domain.Meeting, u domain.User) {
	s.chat.RemoveUserFromChat(m.ChatRoomID, u.Email)
	s.chat.SendSystemMessage(domain.SystemMessage{
		RoomID:  m.ChatRoomID,
		Writer:  u.Nickname,
		Message: u.Nickname + " left the chat.",
	})
}

// activeMember returns the active membership row or domain.ErrMemberNotFound.
func activeMember(ctx context.Context, members repo.MemberRepo, meetingID, userID uuid.UUID) (domain.MeetingMember, error) {
	m, err := members.Get(ctx, meetingID, userID)
	if err != nil {
		return domain.MeetingMember{}, err
	}
	if !m.Active() {
		return domain.MeetingMember{}, domain.ErrMemberNotFound
	}
	return m, nil
}

// checkNoOverlap fails with domain.ErrAlreadyJoinedDate if the user already
// participates on any of days.
func checkNoOverlap(ctx context.Context, parts repo.ParticipationRepo, userID uuid.UUID, days []time.Time) error {
	taken, err := parts.ListDates(ctx, userID)
	if err != nil {
		return err
	}
	booked := make(map[time.Time]struct{}, len(taken))
	for _, d := range taken {
		booked[domain.Day(d)] = struct{}{}
	}
	for _, d := range days {
		if _, ok := booked[d]; ok {
			return fmt.Errorf("%s: %w", d.Format(time.DateOnly), domain.ErrAlreadyJoinedDate)
		}
	}
	return nil
}

// cascadeRemove hard-deletes every participation day the user committed to
// the meeting. A row that disappears between the read and the delete is
// reported as domain.ErrParticipationRecordMissing.
func cascadeRemove(ctx context.Context, parts repo.ParticipationRepo, userID, meetingID uuid.UUID) error {
	dates, err := parts.ListDatesByMeeting(ctx, userID, meetingID)
	if err != nil {
		return err
	}
	for _, d := range dates {
		if err := parts.Delete(ctx, userID, meetingID, d); err != nil {
			return err
		}
	}
	return nil
}

// validateMeetingInput enforces the field rules shared by Create and Update.
func validateMeetingInput(in domain.MeetingInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if in.MemberMax < 1 {
		return fmt.Errorf("%w: member_max must be at least 1", domain.ErrValidation)
	}
	if in.TravelStart.IsZero() || in.TravelEnd.IsZero() {
		return fmt.Errorf("%w: travel dates are required", domain.ErrValidation)
	}
	return nil
}

// validateTravelWindow checks ordering first, then the window length, then
// that the window does not start before today. Starting today is allowed.
func validateTravelWindow(w domain.DateRange, today time.Time) error {
	if !w.Ordered() {
		return domain.ErrInvalidTravelDate
	}
	if w.Len() > domain.MaxTravelDays {
		return domain.ErrTravelWindowTooLong
	}
	if w.Start.Before(today) {
		return domain.ErrInvalidMeetingTravelStartDate
	}
	return nil
}
