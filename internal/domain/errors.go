package domain

import "errors"

// Category sentinels. Every *Error unwraps to exactly one of these, so
// handlers can map a whole family of failures with a single errors.Is check.
var (
	// ErrNotFound is returned when the requested resource does not exist
	// (or has been soft-deleted). Handlers should map this to HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned when input fails business rule validation
	// (e.g. missing required field, end date before start date).
	// Handlers should map this to HTTP 422 Unprocessable Entity.
	ErrValidation = errors.New("validation error")

	// ErrForbidden is returned when the caller is identified but not allowed
	// to perform the operation. Handlers should map this to HTTP 403.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned when the request is well-formed but clashes with
	// the current state (overlapping dates, members still present).
	ErrConflict = errors.New("conflict")

	// ErrIntegrity signals stored data that contradicts an invariant the
	// service maintains. It is never the caller's fault.
	ErrIntegrity = errors.New("integrity violation")

	// ErrUnavailable is returned when an external collaborator failed.
	// Unlike the other kinds it is worth retrying.
	ErrUnavailable = errors.New("unavailable")
)

// Error is a domain error with a stable machine-readable code.
type Error struct {
	Code    string
	Message string
	Kind    error
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes the category so errors.Is(err, ErrNotFound) matches.
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, code, message string) *Error {
	return &Error{Code: code, Message: message, Kind: kind}
}

var (
	ErrUserNotFound     = newError(ErrNotFound, "USER_NOT_FOUND", "user not found")
	ErrMeetingNotFound  = newError(ErrNotFound, "MEETING_NOT_FOUND", "meeting not found")
	ErrMemberNotFound   = newError(ErrNotFound, "MEMBER_NOT_FOUND", "user is not a member of this meeting")
	ErrExpenseNotFound  = newError(ErrNotFound, "EXPENSE_NOT_FOUND", "expense not found")
	ErrPlanNotFound     = newError(ErrNotFound, "PLAN_NOT_FOUND", "travel plan not found")
	ErrPlanItemNotFound = newError(ErrNotFound, "PLAN_ITEM_NOT_FOUND", "plan item not found")

	ErrInvalidTravelDate             = newError(ErrValidation, "INVALID_TRAVEL_DATE", "travel start date must not be after end date")
	ErrInvalidMeetingTravelStartDate = newError(ErrValidation, "INVALID_MEETING_TRAVEL_START_DATE", "travel start date must not be in the past")
	ErrInvalidMeetingTravelDate      = newError(ErrValidation, "INVALID_MEETING_TRAVEL_DATE", "travel dates must fall within the meeting's travel window")
	ErrSelfRemovalForbidden          = newError(ErrValidation, "SELF_REMOVAL_FORBIDDEN", "the leader cannot remove themselves")
	ErrInvalidRequest                = newError(ErrValidation, "INVALID_REQUEST", "invalid request")
	ErrInvalidAddress                = newError(ErrValidation, "INVALID_ADDRESS", "no place matches the query")
	ErrFailEncoding                  = newError(ErrValidation, "FAIL_ENCODING", "failed to encode or decode place data")
	ErrTravelWindowTooLong           = newError(ErrValidation, "TRAVEL_WINDOW_TOO_LONG", "travel window is too long")
	ErrInvalidItemOrder              = newError(ErrValidation, "INVALID_ITEM_ORDER", "item order must list every item of the plan exactly once")

	ErrNotMeetingLeader         = newError(ErrForbidden, "NOT_MEETING_LEADER", "only the meeting leader can do this")
	ErrNoModificationPermission = newError(ErrForbidden, "NO_MODIFICATION_PERMISSION", "no permission to modify this resource")
	ErrLeaderCannotLeave        = newError(ErrForbidden, "LEADER_CANNOT_LEAVE", "the leader cannot leave their own meeting")

	ErrAlreadyJoinedDate  = newError(ErrConflict, "ALREADY_JOINED_DATE", "already participating in a trip on one of these dates")
	ErrCreatedByUser      = newError(ErrConflict, "CREATED_BY_USER", "cannot join a meeting you lead")
	ErrAlreadyMember      = newError(ErrConflict, "ALREADY_MEMBER", "already a member of this meeting")
	ErrMeetingFull        = newError(ErrConflict, "MEETING_FULL", "meeting has reached its member limit")
	ErrMembersPresent     = newError(ErrConflict, "MEMBERS_PRESENT", "meeting still has members besides the leader")
	ErrActiveTravelWindow = newError(ErrConflict, "ACTIVE_TRAVEL_WINDOW", "meeting cannot be deleted during its travel period")

	ErrParticipationRecordMissing = newError(ErrIntegrity, "PARTICIPATION_RECORD_MISSING", "participation record missing for date")

	ErrPlaceSearchUnavailable = newError(ErrUnavailable, "PLACE_SEARCH_UNAVAILABLE", "place search is unavailable")
)
