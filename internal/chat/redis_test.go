package chat_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbsb/tripmate/internal/chat"
	"github.com/gbsb/tripmate/internal/domain"
	"github.com/gbsb/tripmate/testutil"
)

func TestRedisSink_Membership(t *testing.T) {
	rdb := testutil.NewRedis(t)
	sink := chat.NewRedisSink(rdb)
	ctx := context.Background()
	room := uuid.New()
	t.Cleanup(func() { rdb.Del(context.Background(), chat.MembersKey(room)) })

	require.NoError(t, sink.AddMember(ctx, room, "alice@example.com"))
	require.NoError(t, sink.AddMember(ctx, room, "alice@example.com"))
	require.NoError(t, sink.AddMember(ctx, room, "bob@example.com"))
	require.NoError(t, sink.RemoveMember(ctx, room, "bob@example.com"))

	members, err := sink.Members(ctx, room)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice@example.com"}, members)
}

func TestRedisSink_Publish(t *testing.T) {
	rdb := testutil.NewRedis(t)
	sink := chat.NewRedisSink(rdb)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	room := uuid.New()

	sub := rdb.Subscribe(ctx, chat.Channel(room))
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx) // subscription confirmation
	require.NoError(t, err)

	want := domain.SystemMessage{RoomID: room, Writer: "alice", Message: "alice joined the chat."}
	require.NoError(t, sink.Publish(ctx, want))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	var got domain.SystemMessage
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, want, got)
}

func TestChannelNames(t *testing.T) {
	room := uuid.MustParse("6f1c1f8e-0d5c-4d8e-9a51-3f8f0f9b2a10")

	assert.Equal(t, "chat:room:6f1c1f8e-0d5c-4d8e-9a51-3f8f0f9b2a10", chat.Channel(room))
	assert.Equal(t, "chat:room:6f1c1f8e-0d5c-4d8e-9a51-3f8f0f9b2a10:members", chat.MembersKey(room))
}
