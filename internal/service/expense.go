package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gbsb/tripmate/internal/domain"
	"github.com/gbsb/tripmate/internal/repo"
)

// ExpenseService implements business logic for meeting expenses.
type ExpenseService struct {
	store repo.Transactor
}

// NewExpenseService constructs an ExpenseService.
func NewExpenseService(store repo.Transactor) *ExpenseService {
	return &ExpenseService{store: store}
}

// Create records an expense paid by the caller. The caller must be an active
// member of the meeting.
func (s *ExpenseService) Create(ctx context.Context, caller domain.Caller, meetingID uuid.UUID, in domain.ExpenseInput) (domain.Expense, error) {
	if err := validateExpense(in); err != nil {
		return domain.Expense{}, err
	}

	var created domain.Expense
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		if _, err := r.Users.GetByID(ctx, caller.UserID); err != nil {
			return err
		}
		m, err := r.Meetings.GetByID(ctx, meetingID)
		if err != nil {
			return err
		}
		if _, err := activeMember(ctx, r.Members, m.ID, caller.UserID); err != nil {
			return err
		}

		created, err = r.Expenses.Create(ctx, domain.Expense{
			MeetingID:      m.ID,
			CreatedBy:      caller.UserID,
			Amount:         in.Amount,
			Description:    strings.TrimSpace(in.Description),
			ExpenseDate:    domain.Day(in.ExpenseDate),
			IsGroupExpense: in.IsGroupExpense,
		})
		return err
	})
	if err != nil {
		return domain.Expense{}, fmt.Errorf("service.ExpenseService.Create: %w", err)
	}
	return created, nil
}

// Update changes an expense. Only its creator may do so.
func (s *ExpenseService) Update(ctx context.Context, caller domain.Caller, expenseID uuid.UUID, in domain.ExpenseInput) (domain.Expense, error) {
	if err := validateExpense(in); err != nil {
		return domain.Expense{}, err
	}

	var updated domain.Expense
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		e, err := r.Expenses.GetByID(ctx, expenseID)
		if err != nil {
			return err
		}
		if e.CreatedBy != caller.UserID {
			return domain.ErrNoModificationPermission
		}

		e.Amount = in.Amount
		e.Description = strings.TrimSpace(in.Description)
		e.ExpenseDate = domain.Day(in.ExpenseDate)
		e.IsGroupExpense = in.IsGroupExpense
		updated, err = r.Expenses.Update(ctx, e)
		return err
	})
	if err != nil {
		return domain.Expense{}, fmt.Errorf("service.ExpenseService.Update: %w", err)
	}
	return updated, nil
}

// ToggleDelete flips an expense between active and deleted. Only the leader
// of the expense's meeting may do so.
func (s *ExpenseService) ToggleDelete(ctx context.Context, caller domain.Caller, expenseID uuid.UUID) (domain.Expense, error) {
	var toggled domain.Expense
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		e, err := r.Expenses.GetByID(ctx, expenseID)
		if err != nil {
			return err
		}
		m, err := r.Meetings.GetByID(ctx, e.MeetingID)
		if err != nil {
			return err
		}
		if m.LeaderID != caller.UserID {
			return domain.ErrNoModificationPermission
		}

		next := domain.ExpenseDeleted
		if e.Status == domain.ExpenseDeleted {
			next = domain.ExpenseActive
		}
		toggled, err = r.Expenses.SetStatus(ctx, e.ID, next)
		return err
	})
	if err != nil {
		return domain.Expense{}, fmt.Errorf("service.ExpenseService.ToggleDelete: %w", err)
	}
	return toggled, nil
}

// ListByMeeting returns the active expenses of a meeting.
func (s *ExpenseService) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]domain.Expense, error) {
	r := s.store.Repos()
	if _, err := r.Meetings.GetByID(ctx, meetingID); err != nil {
		return nil, fmt.Errorf("service.ExpenseService.ListByMeeting: %w", err)
	}
	expenses, err := r.Expenses.ListActiveByMeeting(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("service.ExpenseService.ListByMeeting: %w", err)
	}
	if expenses == nil {
		expenses = []domain.Expense{}
	}
	return expenses, nil
}

// PerPerson splits the meeting's active group expenses evenly between its
// active members, rounded half away from zero to two decimal places.
func (s *ExpenseService) PerPerson(ctx context.Context, meetingID uuid.UUID) (domain.PerPersonShare, error) {
	var share domain.PerPersonShare
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		m, err := r.Meetings.GetByID(ctx, meetingID)
		if err != nil {
			return err
		}
		total, err := r.Expenses.SumActiveGroup(ctx, m.ID)
		if err != nil {
			return err
		}
		n, err := r.Members.CountActive(ctx, m.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrInvalidRequest
		}

		share = domain.PerPersonShare{
			MeetingID:   m.ID,
			Total:       total,
			MemberCount: n,
			PerPerson:   total.DivRound(decimal.NewFromInt(int64(n)), 2),
		}
		return nil
	})
	if err != nil {
		return domain.PerPersonShare{}, fmt.Errorf("service.ExpenseService.PerPerson: %w", err)
	}
	return share, nil
}

// validateExpense enforces the field rules shared by Create and Update.
func validateExpense(in domain.ExpenseInput) error {
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: description is required", domain.ErrValidation)
	}
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", domain.ErrValidation)
	}
	if in.ExpenseDate.IsZero() {
		return fmt.Errorf("%w: expense_date is required", domain.ErrValidation)
	}
	return nil
}
