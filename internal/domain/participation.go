package domain

import (
	"time"

	"github.com/google/uuid"
)

// DailyParticipation is one calendar day a user has committed to a meeting.
// A user never holds two rows for the same date, across all meetings.
type DailyParticipation struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	MeetingID uuid.UUID
	Date      time.Time
}
