// Package domain contains the core data types for the TripMate backend.
// It depends only on uuid and decimal and is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MeetingStatus is the lifecycle state of a meeting.
type MeetingStatus string

const (
	MeetingActive  MeetingStatus = "active"
	MeetingDeleted MeetingStatus = "deleted"
)

// MaxTravelDays caps the length of a meeting's travel window. Joining expands
// the window into one participation row per day.
const MaxTravelDays = 365

// Meeting is a group trip. The leader is always an implicit member and owns
// the meeting's chat room.
type Meeting struct {
	ID              uuid.UUID
	LeaderID        uuid.UUID
	Title           string
	Description     string
	Destination     string
	GenderCondition string
	AgeRange        string
	TravelStyle     string
	TravelStart     time.Time
	TravelEnd       time.Time
	MemberMax       int
	Status          MeetingStatus
	ChatRoomID      uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Window returns the meeting's travel period as a closed date range.
func (m Meeting) Window() DateRange {
	return NewDateRange(m.TravelStart, m.TravelEnd)
}

// MeetingInput carries the caller-editable fields used by create and update.
type MeetingInput struct {
	Title           string
	Description     string
	Destination     string
	GenderCondition string
	AgeRange        string
	TravelStyle     string
	TravelStart     time.Time
	TravelEnd       time.Time
	MemberMax       int
}

// Apply copies the input onto m, normalising the travel dates.
func (in MeetingInput) Apply(m *Meeting) {
	m.Title = in.Title
	m.Description = in.Description
	m.Destination = in.Destination
	m.GenderCondition = in.GenderCondition
	m.AgeRange = in.AgeRange
	m.TravelStyle = in.TravelStyle
	m.TravelStart = Day(in.TravelStart)
	m.TravelEnd = Day(in.TravelEnd)
	m.MemberMax = in.MemberMax
}

// MeetingSummary is the list projection of a meeting, with the leader's
// nickname resolved.
type MeetingSummary struct {
	ID             uuid.UUID
	Title          string
	Description    string
	Destination    string
	LeaderNickname string
	TravelStart    time.Time
	TravelEnd      time.Time
}

// MeetingSort names the columns a meeting list can be ordered by.
type MeetingSort string

const (
	SortByTravelStart MeetingSort = "travel_start_date"
	SortByCreatedAt   MeetingSort = "created_at"
	SortByTitle       MeetingSort = "title"
)

// ParseMeetingSort returns the sort for s, falling back to travel start date
// for empty or unknown values.
func ParseMeetingSort(s string) MeetingSort {
	switch MeetingSort(s) {
	case SortByCreatedAt, SortByTitle:
		return MeetingSort(s)
	default:
		return SortByTravelStart
	}
}
