package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gbsb/tripmate/internal/domain"
)

// ParticipationRepo defines the persistence operations for DailyParticipation.
// The table carries UNIQUE (user_id, participation_date); a violation surfaces
// as domain.ErrAlreadyJoinedDate so concurrent joins cannot double-book a day.
type ParticipationRepo interface {
	// ListDates returns every date the user is committed to, across all meetings.
	ListDates(ctx context.Context, userID uuid.UUID) ([]time.Time, error)

	// ListDatesByMeeting returns the dates the user committed to one meeting.
	ListDatesByMeeting(ctx context.Context, userID, meetingID uuid.UUID) ([]time.Time, error)

	// Insert adds one participation day.
	Insert(ctx context.Context, p domain.DailyParticipation) error

	// Delete hard-deletes the row for exactly (user, meeting, date).
	// Returns domain.ErrParticipationRecordMissing if no such row exists.
	Delete(ctx context.Context, userID, meetingID uuid.UUID, date time.Time) error
}

type pgParticipationRepo struct {
	db db
}

// NewParticipationRepo constructs a ParticipationRepo backed by the provided db connection.
func NewParticipationRepo(db db) ParticipationRepo {
	return &pgParticipationRepo{db: db}
}

func (r *pgParticipationRepo) ListDates(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	const q = `
		SELECT participation_date
		FROM daily_participations
		WHERE user_id = @user_id
		ORDER BY participation_date`

	dates, err := r.queryDates(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.ParticipationRepo.ListDates: %w", err)
	}
	return dates, nil
}

func (r *pgParticipationRepo) ListDatesByMeeting(ctx context.Context, userID, meetingID uuid.UUID) ([]time.Time, error) {
	const q = `
		SELECT participation_date
		FROM daily_participations
		WHERE user_id = @user_id AND meeting_id = @meeting_id
		ORDER BY participation_date`

	dates, err := r.queryDates(ctx, q, pgx.NamedArgs{"user_id": userID, "meeting_id": meetingID})
	if err != nil {
		return nil, fmt.Errorf("repo.ParticipationRepo.ListDatesByMeeting: %w", err)
	}
	return dates, nil
}

func (r *pgParticipationRepo) Insert(ctx context.Context, p domain.DailyParticipation) error {
	const q = `
		INSERT INTO daily_participations (user_id, meeting_id, participation_date)
		VALUES (@user_id, @meeting_id, @participation_date)`

	args := pgx.NamedArgs{
		"user_id":            p.UserID,
		"meeting_id":         p.MeetingID,
		"participation_date": p.Date,
	}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		if uniqueViolation(err, "daily_participations_user_date_key") {
			return fmt.Errorf("repo.ParticipationRepo.Insert: %w", domain.ErrAlreadyJoinedDate)
		}
		return fmt.Errorf("repo.ParticipationRepo.Insert: %w", err)
	}
	return nil
}

func (r *pgParticipationRepo) Delete(ctx context.Context, userID, meetingID uuid.UUID, date time.Time) error {
	const q = `
		DELETE FROM daily_participations
		WHERE user_id = @user_id
		  AND meeting_id = @meeting_id
		  AND participation_date = @participation_date`

	args := pgx.NamedArgs{
		"user_id":            userID,
		"meeting_id":         meetingID,
		"participation_date": date,
	}
	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("repo.ParticipationRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ParticipationRepo.Delete: %s: %w", date.Format(time.DateOnly), domain.ErrParticipationRecordMissing)
	}
	return nil
}

func (r *pgParticipationRepo) queryDates(ctx context.Context, q string, args pgx.NamedArgs) ([]time.Time, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := []time.Time{}
	for rows.Next() {
		var d pgtype.Date
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		dates = append(dates, d.Time)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return dates, nil
}
