package domain

import (
	"time"

	"github.com/google/uuid"
)

// MemberStatus is the lifecycle state of a membership row.
// Rows are never deleted; removal flips the status and records a reason.
type MemberStatus string

const (
	MemberActive  MemberStatus = "active"
	MemberRemoved MemberStatus = "removed"
)

// MeetingMember is one user's membership in one meeting.
// Exactly one row per meeting has IsLeader set, written together with the meeting.
type MeetingMember struct {
	ID           uuid.UUID
	MeetingID    uuid.UUID
	UserID       uuid.UUID
	IsLeader     bool
	JoinDate     time.Time
	Status       MemberStatus
	RemoveReason string
}

// Active reports whether the membership has not been removed.
func (m MeetingMember) Active() bool {
	return m.Status == MemberActive
}

// RosterEntry is an active member together with the user's public profile.
type RosterEntry struct {
	UserID   uuid.UUID
	Nickname string
	Email    string
	IsLeader bool
	JoinDate time.Time
}
