package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gbsb/tripmate/internal/domain"
)

// MemberRepo defines the persistence operations for MeetingMembers.
// Rows are never deleted; removal is a status change.
type MemberRepo interface {
	// Create inserts a membership row. A second row for the same
	// (meeting, user) pair yields domain.ErrAlreadyMember.
	Create(ctx context.Context, m domain.MeetingMember) (domain.MeetingMember, error)

	// Get returns the membership row for (meetingID, userID) in any status.
	// Returns domain.ErrMemberNotFound if the pair has never been a member.
	Get(ctx context.Context, meetingID, userID uuid.UUID) (domain.MeetingMember, error)

	// ListActive returns the active roster of a meeting, leader first.
	ListActive(ctx context.Context, meetingID uuid.UUID) ([]domain.RosterEntry, error)

	// CountActive returns the number of active members, leader included.
	CountActive(ctx context.Context, meetingID uuid.UUID) (int, error)

	// Reactivate flips a removed row back to active with a new join date.
	Reactivate(ctx context.Context, id uuid.UUID, joinDate time.Time) (domain.MeetingMember, error)

	// Remove marks a row removed and stores the reason.
	Remove(ctx context.Context, id uuid.UUID, reason string) error
}

type pgMemberRepo struct {
	db db
}

// NewMemberRepo constructs a MemberRepo backed by the provided db connection.
func NewMemberRepo(db db) MemberRepo {
	return &pgMemberRepo{db: db}
}

const memberColumns = `id, meeting_id, user_id, is_leader, join_date, status, remove_reason`

func (r *pgMemberRepo) Create(ctx context.Context, m domain.MeetingMember) (domain.MeetingMember, error) {
	const q = `
		INSERT INTO meeting_members (meeting_id, user_id, is_leader, join_date)
		VALUES (@meeting_id, @user_id, @is_leader, @join_date)
		RETURNING ` + memberColumns

	args := pgx.NamedArgs{
		"meeting_id": m.MeetingID,
		"user_id":    m.UserID,
		"is_leader":  m.IsLeader,
		"join_date":  m.JoinDate,
	}

	result, err := scanMember(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if uniqueViolation(err, "meeting_members_meeting_user_key") {
			return domain.MeetingMember{}, fmt.Errorf("repo.MemberRepo.Create: %w", domain.ErrAlreadyMember)
		}
		return domain.MeetingMember{}, fmt.Errorf("repo.MemberRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgMemberRepo) Get(ctx context.Context, meetingID, userID uuid.UUID) (domain.MeetingMember, error) {
	const q = `SELECT ` + memberColumns + ` FROM meeting_members WHERE meeting_id = @meeting_id AND user_id = @user_id`

	result, err := scanMember(r.db.QueryRow(ctx, q, pgx.NamedArgs{"meeting_id": meetingID, "user_id": userID}))
	if err != nil {
		return domain.MeetingMember{}, fmt.Errorf("repo.MemberRepo.Get: %w", err)
	}
	return result, nil
}

func (r *pgMemberRepo) ListActive(ctx context.Context, meetingID uuid.UUID) ([]domain.RosterEntry, error) {
	const q = `
		SELECT u.id, u.nickname, u.email, mm.is_leader, mm.join_date
		FROM meeting_members mm
		JOIN users u ON u.id = mm.user_id
		WHERE mm.meeting_id = @meeting_id AND mm.status = 'active'
		ORDER BY mm.is_leader DESC, mm.join_date, u.nickname`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"meeting_id": meetingID})
	if err != nil {
		return nil, fmt.Errorf("repo.MemberRepo.ListActive: %w", err)
	}
	defer rows.Close()

	roster := []domain.RosterEntry{}
	for rows.Next() {
		var (
			e    domain.RosterEntry
			id   pgtype.UUID
			join pgtype.Date
		)
		if err := rows.Scan(&id, &e.Nickname, &e.Email, &e.IsLeader, &join); err != nil {
			return nil, fmt.Errorf("repo.MemberRepo.ListActive: scan: %w", err)
		}
		e.UserID = toUUID(id)
		e.JoinDate = join.Time
		roster = append(roster, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.MemberRepo.ListActive: rows: %w", err)
	}
	return roster, nil
}

func (r *pgMemberRepo) CountActive(ctx context.Context, meetingID uuid.UUID) (int, error) {
	const q = `SELECT count(*) FROM meeting_members WHERE meeting_id = @meeting_id AND status = 'active'`

	var n int
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"meeting_id": meetingID}).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.MemberRepo.CountActive: %w", err)
	}
	return n, nil
}

func (r *pgMemberRepo) Reactivate(ctx context.Context, id uuid.UUID, joinDate time.Time) (domain.MeetingMember, error) {
	const q = `
		UPDATE meeting_members
		SET status = 'active', remove_reason = '', join_date = @join_date
		WHERE id = @id
		RETURNING ` + memberColumns

	result, err := scanMember(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "join_date": joinDate}))
	if err != nil {
		return domain.MeetingMember{}, fmt.Errorf("repo.MemberRepo.Reactivate: %w", err)
	}
	return result, nil
}

func (r *pgMemberRepo) Remove(ctx context.Context, id uuid.UUID, reason string) error {
	const q = `UPDATE meeting_members SET status = 'removed', remove_reason = @reason WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "reason": reason})
	if err != nil {
		return fmt.Errorf("repo.MemberRepo.Remove: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.MemberRepo.Remove: %w", domain.ErrMemberNotFound)
	}
	return nil
}

func scanMember(s scanner) (domain.MeetingMember, error) {
	var (
		m                 domain.MeetingMember
		id, meeting, user pgtype.UUID
		join              pgtype.Date
		status            string
	)
	err := s.Scan(&id, &meeting, &user, &m.IsLeader, &join, &status, &m.RemoveReason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MeetingMember{}, domain.ErrMemberNotFound
		}
		return domain.MeetingMember{}, err
	}
	m.ID = toUUID(id)
	m.MeetingID = toUUID(meeting)
	m.UserID = toUUID(user)
	m.JoinDate = join.Time
	m.Status = domain.MemberStatus(status)
	return m, nil
}
