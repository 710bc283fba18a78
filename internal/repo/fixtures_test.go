package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/gbsb/tripmate/internal/domain"
	"github.com/gbsb/tripmate/internal/repo"
	"github.com/gbsb/tripmate/testutil"
)

// newTestTx opens a transaction against the test database that is rolled back
// when the test finishes, giving free per-test isolation.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})
	return tx
}

// newTestRepos returns every repository bound to a rolled-back test transaction.
func newTestRepos(t *testing.T) repo.Repos {
	t.Helper()
	return repo.NewStore(newTestTx(t)).Repos()
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustUser(t *testing.T, r repo.Repos, nickname string) domain.User {
	t.Helper()
	u, err := r.Users.Upsert(context.Background(), domain.User{
		Email:    nickname + "-" + uuid.NewString()[:8] + "@example.com",
		Nickname: nickname,
	})
	require.NoError(t, err)
	return u
}

// mustMeeting creates a chat room and a meeting in July 2030 led by leader.
func mustMeeting(t *testing.T, r repo.Repos, leader domain.User, title string) domain.Meeting {
	t.Helper()
	ctx := context.Background()

	room, err := r.ChatRooms.Create(ctx, domain.ChatRoom{Name: title, OwnerID: leader.ID})
	require.NoError(t, err)

	m, err := r.Meetings.Create(ctx, domain.Meeting{
		LeaderID:    leader.ID,
		Title:       title,
		Destination: "Jeju",
		TravelStart: date(2030, 7, 1),
		TravelEnd:   date(2030, 7, 31),
		MemberMax:   4,
		ChatRoomID:  room.ID,
	})
	require.NoError(t, err)
	return m
}
