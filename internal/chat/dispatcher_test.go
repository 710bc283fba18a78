package chat_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbsb/tripmate/internal/chat"
	"github.com/gbsb/tripmate/internal/domain"
	"github.com/gbsb/tripmate/internal/service"
)

// compile-time checks.
var (
	_ service.ChatNotifier = (*chat.Dispatcher)(nil)
	_ chat.Sink            = (*chat.RedisSink)(nil)
	_ chat.Sink            = (*fakeSink)(nil)
)

// fakeSink records applied calls. failures makes the next N calls fail;
// failAdds makes every AddMember fail.
type fakeSink struct {
	mu       sync.Mutex
	failures int
	failAdds bool
	calls    int
	members  map[uuid.UUID][]string
	messages []domain.SystemMessage
}

func newFakeSink(failures int) *fakeSink {
	return &fakeSink{failures: failures, members: map[uuid.UUID][]string{}}
}

func (s *fakeSink) fail() error {
	s.calls++
	if s.failures > 0 {
		s.failures--
		return errors.New("redis: connection refused")
	}
	return nil
}

func (s *fakeSink) AddMember(_ context.Context, roomID uuid.UUID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return err
	}
	if s.failAdds {
		return errors.New("redis: READONLY")
	}
	s.members[roomID] = append(s.members[roomID], email)
	return nil
}

func (s *fakeSink) RemoveMember(_ context.Context, roomID uuid.UUID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return err
	}
	kept := s.members[roomID][:0]
	for _, m := range s.members[roomID] {
		if m != email {
			kept = append(kept, m)
		}
	}
	s.members[roomID] = kept
	return nil
}

func (s *fakeSink) Publish(_ context.Context, msg domain.SystemMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return err
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *fakeSink) snapshot() (calls int, members map[uuid.UUID][]string, messages []domain.SystemMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := make(map[uuid.UUID][]string, len(s.members))
	for k, v := range s.members {
		m[k] = append([]string(nil), v...)
	}
	return s.calls, m, append([]domain.SystemMessage(nil), s.messages...)
}

func fastOptions() chat.DispatcherOptions {
	return chat.DispatcherOptions{
		QueueSize:       8,
		InitialInterval: time.Millisecond,
		MaxElapsed:      200 * time.Millisecond,
		AttemptTimeout:  50 * time.Millisecond,
	}
}

// start runs d until the test ends.
func start(t *testing.T, d *chat.Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, d.Run(ctx))
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestDispatcher_DeliversInOrder(t *testing.T) {
	sink := newFakeSink(0)
	d := chat.NewDispatcher(sink, fastOptions())
	room := uuid.New()
	start(t, d)

	d.AddUserToChat(room, "alice@example.com")
	d.SendSystemMessage(domain.SystemMessage{RoomID: room, Writer: "alice", Message: "alice joined the chat."})
	d.RemoveUserFromChat(room, "alice@example.com")

	require.Eventually(t, func() bool {
		calls, _, _ := sink.snapshot()
		return calls == 3
	}, time.Second, 5*time.Millisecond)
	_, members, messages := sink.snapshot()
	assert.Empty(t, members[room])
	require.Len(t, messages, 1)
	assert.Equal(t, "alice joined the chat.", messages[0].Message)
}

func TestDispatcher_RetriesTransientFailures(t *testing.T) {
	sink := newFakeSink(2)
	d := chat.NewDispatcher(sink, fastOptions())
	room := uuid.New()
	start(t, d)

	d.AddUserToChat(room, "bob@example.com")

	require.Eventually(t, func() bool {
		_, members, _ := sink.snapshot()
		return len(members[room]) == 1
	}, time.Second, 5*time.Millisecond)
	calls, _, _ := sink.snapshot()
	assert.Equal(t, 3, calls)
}

func TestDispatcher_DropsAfterMaxElapsedAndMovesOn(t *testing.T) {
	sink := newFakeSink(0)
	sink.failAdds = true
	opts := fastOptions()
	opts.MaxElapsed = 20 * time.Millisecond
	d := chat.NewDispatcher(sink, opts)
	room := uuid.New()
	start(t, d)

	d.AddUserToChat(room, "carol@example.com")
	d.SendSystemMessage(domain.SystemMessage{RoomID: room, Message: "hello"})

	require.Eventually(t, func() bool {
		_, _, messages := sink.snapshot()
		return len(messages) == 1
	}, 2*time.Second, 5*time.Millisecond)
	calls, members, _ := sink.snapshot()
	assert.Empty(t, members[room])
	assert.Greater(t, calls, 2, "add should have been retried before being dropped")
}

func TestDispatcher_FullQueueDropsWithoutBlocking(t *testing.T) {
	sink := newFakeSink(0)
	opts := fastOptions()
	opts.QueueSize = 1
	d := chat.NewDispatcher(sink, opts)
	room := uuid.New()

	// Not running yet: the second call must return immediately.
	d.AddUserToChat(room, "first@example.com")
	d.AddUserToChat(room, "second@example.com")
	start(t, d)

	require.Eventually(t, func() bool {
		_, members, _ := sink.snapshot()
		return len(members[room]) == 1
	}, time.Second, 5*time.Millisecond)
	_, members, _ := sink.snapshot()
	assert.Equal(t, []string{"first@example.com"}, members[room])
}

func TestDispatcher_DrainsOnShutdown(t *testing.T) {
	sink := newFakeSink(0)
	d := chat.NewDispatcher(sink, fastOptions())
	room := uuid.New()
	d.AddUserToChat(room, "dave@example.com")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Run(ctx))

	_, members, _ := sink.snapshot()
	assert.Equal(t, []string{"dave@example.com"}, members[room])
}

func TestDispatcher_JobAfterShutdownIsDroppedAndLogged(t *testing.T) {
	sink := newFakeSink(0)
	var logs bytes.Buffer
	opts := fastOptions()
	opts.Logger = slog.New(slog.NewTextHandler(&logs, nil))
	d := chat.NewDispatcher(sink, opts)
	room := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, d.Run(ctx))
	}()
	d.AddUserToChat(room, "erin@example.com")
	require.Eventually(t, func() bool {
		_, members, _ := sink.snapshot()
		return len(members[room]) == 1
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	d.AddUserToChat(room, "late@example.com")

	calls, members, _ := sink.snapshot()
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"erin@example.com"}, members[room])
	assert.Contains(t, logs.String(), "chat job dropped after shutdown")
	assert.Contains(t, logs.String(), room.String())
}
