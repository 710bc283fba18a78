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

// ChatRoomRepo persists the chat room record attached to each meeting.
// Live roster and messages are held by the chat backend, not here.
type ChatRoomRepo interface {
	Create(ctx context.Context, room domain.ChatRoom) (domain.ChatRoom, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.ChatRoom, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.ChatRoomStatus) error
}

type pgChatRoomRepo struct {
	db db
}

// NewChatRoomRepo constructs a ChatRoomRepo backed by the provided db connection.
func NewChatRoomRepo(db db) ChatRoomRepo {
	return &pgChatRoomRepo{db: db}
}

func (r *pgChatRoomRepo) Create(ctx context.Context, room domain.ChatRoom) (domain.ChatRoom, error) {
	const q = `
		INSERT INTO chat_rooms (name, owner_id)
		VALUES (@name, @owner_id)
		RETURNING id, name, owner_id, status`

	result, err := scanChatRoom(r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": room.Name, "owner_id": room.OwnerID}))
	if err != nil {
		return domain.ChatRoom{}, fmt.Errorf("repo.ChatRoomRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgChatRoomRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ChatRoom, error) {
	const q = `SELECT id, name, owner_id, status FROM chat_rooms WHERE id = @id`

	result, err := scanChatRoom(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.ChatRoom{}, fmt.Errorf("repo.ChatRoomRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgChatRoomRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.ChatRoomStatus) error {
	const q = `UPDATE chat_rooms SET status = @status WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "status": string(status)})
	if err != nil {
		return fmt.Errorf("repo.ChatRoomRepo.SetStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ChatRoomRepo.SetStatus: %w", domain.ErrNotFound)
	}
	return nil
}

func scanChatRoom(s scanner) (domain.ChatRoom, error) {
	var (
		room      domain.ChatRoom
		id, owner pgtype.UUID
		status    string
	)
	if err := s.Scan(&id, &room.Name, &owner, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ChatRoom{}, domain.ErrNotFound
		}
		return domain.ChatRoom{}, err
	}
	room.ID = toUUID(id)
	room.OwnerID = toUUID(owner)
	room.Status = domain.ChatRoomStatus(status)
	return room, nil
}
