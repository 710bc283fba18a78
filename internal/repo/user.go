package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gbsb/tripmate/internal/domain"
)

// UserRepo reads the local mirror of externally owned user accounts.
type UserRepo interface {
	// GetByID returns domain.ErrUserNotFound if the user is unknown.
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)

	// GetByIDForUpdate also row-locks the user until the transaction ends.
	// Join takes this lock so one user's date checks never interleave.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.User, error)

	// Upsert inserts the user or refreshes email and nickname by id.
	Upsert(ctx context.Context, u domain.User) (domain.User, error)
}

type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

func (r *pgUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	const q = `SELECT id, email, nickname FROM users WHERE id = @id`

	u, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByID: %w", err)
	}
	return u, nil
}

func (r *pgUserRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.User, error) {
	const q = `SELECT id, email, nickname FROM users WHERE id = @id FOR UPDATE`

	u, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByIDForUpdate: %w", err)
	}
	return u, nil
}

// Upsert keys on id; an empty id lets the database generate one.
func (r *pgUserRepo) Upsert(ctx context.Context, u domain.User) (domain.User, error) {
	const q = `
		INSERT INTO users (id, email, nickname)
		VALUES (COALESCE(@id, gen_random_uuid()), @email, @nickname)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, nickname = EXCLUDED.nickname
		RETURNING id, email, nickname`

	var id any
	if u.ID != uuid.Nil {
		id = u.ID
	}

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "email": u.Email, "nickname": u.Nickname}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Upsert: %w", err)
	}
	return result, nil
}

func scanUser(s scanner) (domain.User, error) {
	var (
		u  domain.User
		id pgtype.UUID
	)
	if err := s.Scan(&id, &u.Email, &u.Nickname); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, err
	}
	u.ID = toUUID(id)
	return u, nil
}
