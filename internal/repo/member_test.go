package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbsb/tripmate/internal/domain"
)

func TestMemberRepo_OneRowPerMeetingAndUser(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	leader := mustUser(t, r, "leader")
	m := mustMeeting(t, r, leader, "Roster")

	_, err := r.Members.Create(ctx, domain.MeetingMember{MeetingID: m.ID, UserID: leader.ID, IsLeader: true, JoinDate: date(2030, 1, 1)})
	require.NoError(t, err)

	_, err = r.Members.Create(ctx, domain.MeetingMember{MeetingID: m.ID, UserID: leader.ID, JoinDate: date(2030, 1, 2)})

	assert.ErrorIs(t, err, domain.ErrAlreadyMember)
}

func TestMemberRepo_RemoveAndReactivate(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	leader := mustUser(t, r, "leader")
	guest := mustUser(t, r, "guest")
	m := mustMeeting(t, r, leader, "Roster")

	created, err := r.Members.Create(ctx, domain.MeetingMember{MeetingID: m.ID, UserID: guest.ID, JoinDate: date(2030, 1, 1)})
	require.NoError(t, err)

	require.NoError(t, r.Members.Remove(ctx, created.ID, "no show"))

	removed, err := r.Members.Get(ctx, m.ID, guest.ID)
	require.NoError(t, err, "removed rows are kept")
	assert.Equal(t, domain.MemberRemoved, removed.Status)
	assert.Equal(t, "no show", removed.RemoveReason)

	n, err := r.Members.CountActive(ctx, m.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	back, err := r.Members.Reactivate(ctx, created.ID, date(2030, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, domain.MemberActive, back.Status)
	assert.Empty(t, back.RemoveReason)

	roster, err := r.Members.ListActive(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "guest", roster[0].Nickname)
}
