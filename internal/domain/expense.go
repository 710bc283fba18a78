package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseStatus is the lifecycle state of an expense.
type ExpenseStatus string

const (
	ExpenseActive  ExpenseStatus = "active"
	ExpenseDeleted ExpenseStatus = "deleted"
)

// Expense is money spent during a meeting. Group expenses are split evenly
// between the meeting's active members.
type Expense struct {
	ID             uuid.UUID
	MeetingID      uuid.UUID
	CreatedBy      uuid.UUID
	Amount         decimal.Decimal
	Description    string
	ExpenseDate    time.Time
	IsGroupExpense bool
	Status         ExpenseStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ExpenseInput carries the caller-editable fields of an expense.
type ExpenseInput struct {
	Amount         decimal.Decimal
	Description    string
	ExpenseDate    time.Time
	IsGroupExpense bool
}

// PerPersonShare is the result of splitting a meeting's group expenses.
type PerPersonShare struct {
	MeetingID   uuid.UUID
	Total       decimal.Decimal
	MemberCount int
	PerPerson   decimal.Decimal
}
