package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gbsb/tripmate/internal/domain"
)

// MeetingRepo defines the persistence operations for Meetings.
// Reads only see active meetings; deleted meetings behave as missing.
type MeetingRepo interface {
	// Create inserts a new meeting and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, m domain.Meeting) (domain.Meeting, error)

	// GetByID retrieves an active meeting by id.
	// Returns domain.ErrMeetingNotFound if it does not exist or was deleted.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Meeting, error)

	// GetByIDForUpdate is GetByID plus a row lock held until the enclosing
	// transaction ends. Join uses it to serialise capacity checks.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Meeting, error)

	// ListPaged returns one page of active meetings ordered by sort, plus the
	// total number of active meetings.
	ListPaged(ctx context.Context, sort domain.MeetingSort, p domain.PaginationParams) ([]domain.MeetingSummary, int64, error)

	// SearchByMember returns one page of active meetings in which userID holds
	// an active membership and whose title contains title (case-insensitive).
	SearchByMember(ctx context.Context, userID uuid.UUID, title string, p domain.PaginationParams) ([]domain.MeetingSummary, int64, error)

	// Update overwrites the mutable fields of an active meeting and bumps updated_at.
	Update(ctx context.Context, m domain.Meeting) (domain.Meeting, error)

	// SetStatus changes the lifecycle status of a meeting.
	SetStatus(ctx context.Context, id uuid.UUID, status domain.MeetingStatus) error
}

// pgMeetingRepo is the Postgres implementation of MeetingRepo.
type pgMeetingRepo struct {
	db db
}

// NewMeetingRepo constructs a MeetingRepo backed by the provided db connection.
func NewMeetingRepo(db db) MeetingRepo {
	return &pgMeetingRepo{db: db}
}

const meetingColumns = `id, leader_id, title, description, destination, gender_condition,
		age_range, travel_style, travel_start_date, travel_end_date, member_max,
		status, chat_room_id, created_at, updated_at`

// Create inserts a meeting row and returns the full persisted record.
func (r *pgMeetingRepo) Create(ctx context.Context, m domain.Meeting) (domain.Meeting, error) {
	const q = `
		INSERT INTO meetings (leader_id, title, description, destination, gender_condition,
		                      age_range, travel_style, travel_start_date, travel_end_date,
		                      member_max, chat_room_id)
		VALUES (@leader_id, @title, @description, @destination, @gender_condition,
		        @age_range, @travel_style, @travel_start_date, @travel_end_date,
		        @member_max, @chat_room_id)
		RETURNING ` + meetingColumns

	args := pgx.NamedArgs{
		"leader_id":         m.LeaderID,
		"title":             m.Title,
		"description":       m.Description,
		"destination":       m.Destination,
		"gender_condition":  m.GenderCondition,
		"age_range":         m.AgeRange,
		"travel_style":      m.TravelStyle,
		"travel_start_date": m.TravelStart,
		"travel_end_date":   m.TravelEnd,
		"member_max":        m.MemberMax,
		"chat_room_id":      m.ChatRoomID,
	}

	result, err := scanMeeting(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("repo.MeetingRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves an active meeting by primary key.
func (r *pgMeetingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Meeting, error) {
	const q = `SELECT ` + meetingColumns + ` FROM meetings WHERE id = @id AND status = 'active'`

	result, err := scanMeeting(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("repo.MeetingRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetByIDForUpdate retrieves and row-locks an active meeting.
func (r *pgMeetingRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Meeting, error) {
	const q = `SELECT ` + meetingColumns + ` FROM meetings WHERE id = @id AND status = 'active' FOR UPDATE`

	result, err := scanMeeting(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("repo.MeetingRepo.GetByIDForUpdate: %w", err)
	}
	return result, nil
}

// meetingOrderBy maps a sort to a fixed ORDER BY clause. The sort value is
// never interpolated directly.
func meetingOrderBy(sort domain.MeetingSort) string {
	switch sort {
	case domain.SortByCreatedAt:
		return "m.created_at ASC, m.id"
	case domain.SortByTitle:
		return "m.title ASC, m.id"
	default:
		return "m.travel_start_date ASC, m.id"
	}
}

// ListPaged returns one page of active meetings with the leader's nickname.
func (r *pgMeetingRepo) ListPaged(ctx context.Context, sort domain.MeetingSort, p domain.PaginationParams) ([]domain.MeetingSummary, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM meetings WHERE status = 'active'`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.MeetingRepo.ListPaged: count: %w", err)
	}

	q := `
		SELECT m.id, m.title, m.description, m.destination, u.nickname,
		       m.travel_start_date, m.travel_end_date
		FROM meetings m
		JOIN users u ON u.id = m.leader_id
		WHERE m.status = 'active'
		ORDER BY ` + meetingOrderBy(sort) + `
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.MeetingRepo.ListPaged: %w", err)
	}
	summaries, err := collectSummaries(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.MeetingRepo.ListPaged: %w", err)
	}
	return summaries, total, nil
}

// likeEscaper makes a search term match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchByMember returns one page of the user's active meetings matching title.
func (r *pgMeetingRepo) SearchByMember(ctx context.Context, userID uuid.UUID, title string, p domain.PaginationParams) ([]domain.MeetingSummary, int64, error) {
	const where = `
		FROM meetings m
		JOIN users u ON u.id = m.leader_id
		JOIN meeting_members mm ON mm.meeting_id = m.id
		WHERE m.status = 'active'
		  AND mm.user_id = @user_id
		  AND mm.status = 'active'
		  AND m.title ILIKE '%' || @title || '%' ESCAPE '\'`

	args := pgx.NamedArgs{"user_id": userID, "title": likeEscaper.Replace(title), "limit": p.Limit, "offset": p.Offset()}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) `+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.MeetingRepo.SearchByMember: count: %w", err)
	}

	q := `
		SELECT m.id, m.title, m.description, m.destination, u.nickname,
		       m.travel_start_date, m.travel_end_date` + where + `
		ORDER BY m.travel_start_date ASC, m.id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.MeetingRepo.SearchByMember: %w", err)
	}
	summaries, err := collectSummaries(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.MeetingRepo.SearchByMember: %w", err)
	}
	return summaries, total, nil
}

// Update overwrites the mutable fields of a meeting and returns the updated record.
func (r *pgMeetingRepo) Update(ctx context.Context, m domain.Meeting) (domain.Meeting, error) {
	const q = `
		UPDATE meetings
		SET title             = @title,
		    description       = @description,
		    destination       = @destination,
		    gender_condition  = @gender_condition,
		    age_range         = @age_range,
		    travel_style      = @travel_style,
		    travel_start_date = @travel_start_date,
		    travel_end_date   = @travel_end_date,
		    member_max        = @member_max,
		    updated_at        = now()
		WHERE id = @id AND status = 'active'
		RETURNING ` + meetingColumns

	args := pgx.NamedArgs{
		"id":                m.ID,
		"title":             m.Title,
		"description":       m.Description,
		"destination":       m.Destination,
		"gender_condition":  m.GenderCondition,
		"age_range":         m.AgeRange,
		"travel_style":      m.TravelStyle,
		"travel_start_date": m.TravelStart,
		"travel_end_date":   m.TravelEnd,
		"member_max":        m.MemberMax,
	}

	result, err := scanMeeting(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("repo.MeetingRepo.Update: %w", err)
	}
	return result, nil
}

// SetStatus changes a meeting's status.
func (r *pgMeetingRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.MeetingStatus) error {
	const q = `UPDATE meetings SET status = @status, updated_at = now() WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "status": string(status)})
	if err != nil {
		return fmt.Errorf("repo.MeetingRepo.SetStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.MeetingRepo.SetStatus: %w", domain.ErrMeetingNotFound)
	}
	return nil
}

// scanMeeting maps a single database row into a domain.Meeting.
func scanMeeting(s scanner) (domain.Meeting, error) {
	var (
		m                domain.Meeting
		id, leader, room pgtype.UUID
		start, end       pgtype.Date
		status           string
	)

	err := s.Scan(&id, &leader, &m.Title, &m.Description, &m.Destination, &m.GenderCondition,
		&m.AgeRange, &m.TravelStyle, &start, &end, &m.MemberMax,
		&status, &room, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Meeting{}, domain.ErrMeetingNotFound
		}
		return domain.Meeting{}, err
	}

	m.ID = toUUID(id)
	m.LeaderID = toUUID(leader)
	m.ChatRoomID = toUUID(room)
	m.TravelStart = start.Time
	m.TravelEnd = end.Time
	m.Status = domain.MeetingStatus(status)
	return m, nil
}

func collectSummaries(rows pgx.Rows) ([]domain.MeetingSummary, error) {
	defer rows.Close()

	summaries := []domain.MeetingSummary{}
	for rows.Next() {
		var (
			s          domain.MeetingSummary
			id         pgtype.UUID
			start, end pgtype.Date
		)
		if err := rows.Scan(&id, &s.Title, &s.Description, &s.Destination, &s.LeaderNickname, &start, &end); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		s.ID = toUUID(id)
		s.TravelStart = start.Time
		s.TravelEnd = end.Time
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return summaries, nil
}
