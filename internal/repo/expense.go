package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/gbsb/tripmate/internal/domain"
)

// ExpenseRepo defines the persistence operations for Expenses.
type ExpenseRepo interface {
	Create(ctx context.Context, e domain.Expense) (domain.Expense, error)

	// GetByID returns the expense in any status.
	// Returns domain.ErrExpenseNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Expense, error)

	// Update overwrites amount, description, date and group flag.
	Update(ctx context.Context, e domain.Expense) (domain.Expense, error)

	SetStatus(ctx context.Context, id uuid.UUID, status domain.ExpenseStatus) (domain.Expense, error)

	// ListActiveByMeeting returns active expenses ordered by expense_date.
	ListActiveByMeeting(ctx context.Context, meetingID uuid.UUID) ([]domain.Expense, error)

	// SumActiveGroup totals the active group expenses of a meeting.
	SumActiveGroup(ctx context.Context, meetingID uuid.UUID) (decimal.Decimal, error)
}

type pgExpenseRepo struct {
	db db
}

// NewExpenseRepo constructs an ExpenseRepo backed by the provided db connection.
func NewExpenseRepo(db db) ExpenseRepo {
	return &pgExpenseRepo{db: db}
}

const expenseColumns = `id, meeting_id, created_by, amount, description, expense_date,
		is_group_expense, status, created_at, updated_at`

func (r *pgExpenseRepo) Create(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	const q = `
		INSERT INTO expenses (meeting_id, created_by, amount, description, expense_date, is_group_expense)
		VALUES (@meeting_id, @created_by, @amount, @description, @expense_date, @is_group_expense)
		RETURNING ` + expenseColumns

	args := pgx.NamedArgs{
		"meeting_id":       e.MeetingID,
		"created_by":       e.CreatedBy,
		"amount":           e.Amount,
		"description":      e.Description,
		"expense_date":     e.ExpenseDate,
		"is_group_expense": e.IsGroupExpense,
	}

	result, err := scanExpense(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Expense{}, fmt.Errorf("repo.ExpenseRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgExpenseRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Expense, error) {
	const q = `SELECT ` + expenseColumns + ` FROM expenses WHERE id = @id`

	result, err := scanExpense(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Expense{}, fmt.Errorf("repo.ExpenseRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgExpenseRepo) Update(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	const q = `
		UPDATE expenses
		SET amount           = @amount,
		    description      = @description,
		    expense_date     = @expense_date,
		    is_group_expense = @is_group_expense,
		    updated_at       = now()
		WHERE id = @id
		RETURNING ` + expenseColumns

	args := pgx.NamedArgs{
		"id":               e.ID,
		"amount":           e.Amount,
		"description":      e.Description,
		"expense_date":     e.ExpenseDate,
		"is_group_expense": e.IsGroupExpense,
	}

	result, err := scanExpense(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Expense{}, fmt.Errorf("repo.ExpenseRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgExpenseRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.ExpenseStatus) (domain.Expense, error) {
	const q = `
		UPDATE expenses SET status = @status, updated_at = now()
		WHERE id = @id
		RETURNING ` + expenseColumns

	result, err := scanExpense(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "status": string(status)}))
	if err != nil {
		return domain.Expense{}, fmt.Errorf("repo.ExpenseRepo.SetStatus: %w", err)
	}
	return result, nil
}

func (r *pgExpenseRepo) ListActiveByMeeting(ctx context.Context, meetingID uuid.UUID) ([]domain.Expense, error) {
	const q = `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE meeting_id = @meeting_id AND status = 'active'
		ORDER BY expense_date, created_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"meeting_id": meetingID})
	if err != nil {
		return nil, fmt.Errorf("repo.ExpenseRepo.ListActiveByMeeting: %w", err)
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ExpenseRepo.ListActiveByMeeting: scan: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ExpenseRepo.ListActiveByMeeting: rows: %w", err)
	}
	return expenses, nil
}

func (r *pgExpenseRepo) SumActiveGroup(ctx context.Context, meetingID uuid.UUID) (decimal.Decimal, error) {
	const q = `
		SELECT COALESCE(sum(amount), 0)
		FROM expenses
		WHERE meeting_id = @meeting_id AND is_group_expense AND status = 'active'`

	var n pgtype.Numeric
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"meeting_id": meetingID}).Scan(&n); err != nil {
		return decimal.Zero, fmt.Errorf("repo.ExpenseRepo.SumActiveGroup: %w", err)
	}
	return numericToDecimal(n), nil
}

func scanExpense(s scanner) (domain.Expense, error) {
	var (
		e                      domain.Expense
		id, meeting, createdBy pgtype.UUID
		amount                 pgtype.Numeric
		date                   pgtype.Date
		status                 string
	)
	err := s.Scan(&id, &meeting, &createdBy, &amount, &e.Description, &date,
		&e.IsGroupExpense, &status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Expense{}, domain.ErrExpenseNotFound
		}
		return domain.Expense{}, err
	}
	e.ID = toUUID(id)
	e.MeetingID = toUUID(meeting)
	e.CreatedBy = toUUID(createdBy)
	e.Amount = numericToDecimal(amount)
	e.ExpenseDate = date.Time
	e.Status = domain.ExpenseStatus(status)
	return e, nil
}

// numericToDecimal converts a non-NaN Postgres numeric; NULL becomes zero.
func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
