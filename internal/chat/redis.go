// Package chat delivers meeting chat side effects to Redis: a per-room member
// set and a per-room pub/sub channel carrying system messages as JSON.
package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gbsb/tripmate/internal/domain"
)

// MembersKey is the Redis set holding the e-mail of every member of a room.
func MembersKey(roomID uuid.UUID) string {
	return "chat:room:" + roomID.String() + ":members"
}

// Channel is the pub/sub channel a room's messages are published on.
func Channel(roomID uuid.UUID) string {
	return "chat:room:" + roomID.String()
}

// RedisSink writes chat side effects straight to Redis.
type RedisSink struct {
	rdb redis.Cmdable
}

// NewRedisSink constructs a RedisSink. Pass a *redis.Client in production.
func NewRedisSink(rdb redis.Cmdable) *RedisSink {
	return &RedisSink{rdb: rdb}
}

// AddMember adds email to the room's member set. Adding twice is a no-op.
func (s *RedisSink) AddMember(ctx context.Context, roomID uuid.UUID, email string) error {
	if err := s.rdb.SAdd(ctx, MembersKey(roomID), email).Err(); err != nil {
		return fmt.Errorf("chat.RedisSink.AddMember: %w", err)
	}
	return nil
}

// RemoveMember drops email from the room's member set.
func (s *RedisSink) RemoveMember(ctx context.Context, roomID uuid.UUID, email string) error {
	if err := s.rdb.SRem(ctx, MembersKey(roomID), email).Err(); err != nil {
		return fmt.Errorf("chat.RedisSink.RemoveMember: %w", err)
	}
	return nil
}

// Members returns the room's member set.
func (s *RedisSink) Members(ctx context.Context, roomID uuid.UUID) ([]string, error) {
	members, err := s.rdb.SMembers(ctx, MembersKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("chat.RedisSink.Members: %w", err)
	}
	return members, nil
}

// Publish sends msg to the room's channel.
func (s *RedisSink) Publish(ctx context.Context, msg domain.SystemMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("chat.RedisSink.Publish: %w", err)
	}
	if err := s.rdb.Publish(ctx, Channel(msg.RoomID), payload).Err(); err != nil {
		return fmt.Errorf("chat.RedisSink.Publish: %w", err)
	}
	return nil
}
