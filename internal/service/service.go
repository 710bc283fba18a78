// Package service contains the business logic for the TripMate backend.
// Services validate inputs, enforce business rules, and orchestrate repo calls
// inside one transaction per operation. No SQL lives here; services depend on
// repo interfaces, not implementations.
package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/gbsb/tripmate/internal/domain"
)

// ChatNotifier receives chat side effects of membership changes. Calls are
// made after the membership transaction commits and must not block; delivery
// is best-effort and never rolls back the membership change.
type ChatNotifier interface {
	AddUserToChat(roomID uuid.UUID, email string)
	RemoveUserFromChat(roomID uuid.UUID, email string)
	SendSystemMessage(msg domain.SystemMessage)
}

// Clock returns the current calendar day. Services compare travel dates
// against it instead of calling time.Now directly.
type Clock func() time.Time

// TodayIn returns a Clock that reads the wall clock in loc.
// Travel dates are calendar days of the service's home time zone.
func TodayIn(loc *time.Location) Clock {
	return func() time.Time {
		return domain.Day(time.Now().In(loc))
	}
}
