package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gbsb/tripmate/internal/domain"
)

// PlanRepo defines the persistence operations for travel plans and their items.
type PlanRepo interface {
	Create(ctx context.Context, p domain.TravelPlan) (domain.TravelPlan, error)

	// GetByID returns domain.ErrPlanNotFound if the plan does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.TravelPlan, error)

	// GetByIDForUpdate row-locks the plan so item positions can be assigned
	// without racing another writer.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.TravelPlan, error)

	// ListByMeeting returns a meeting's plans ordered by plan date.
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]domain.TravelPlan, error)

	// AddItem appends an item after the plan's current last position.
	AddItem(ctx context.Context, it domain.PlanItem) (domain.PlanItem, error)

	ListItems(ctx context.Context, planID uuid.UUID, sort domain.PlanItemSort) ([]domain.PlanItem, error)

	// DeleteItem returns domain.ErrPlanItemNotFound if the plan has no such item.
	DeleteItem(ctx context.Context, planID, itemID uuid.UUID) error

	SetItemOrder(ctx context.Context, planID, itemID uuid.UUID, order int) error
}

type pgPlanRepo struct {
	db db
}

// NewPlanRepo constructs a PlanRepo backed by the provided db connection.
func NewPlanRepo(db db) PlanRepo {
	return &pgPlanRepo{db: db}
}

const planColumns = `id, meeting_id, created_by, title, plan_date, created_at`

const planItemColumns = `id, plan_id, title, place_name, memo, start_time, item_order, created_at`

func (r *pgPlanRepo) Create(ctx context.Context, p domain.TravelPlan) (domain.TravelPlan, error) {
	const q = `
		INSERT INTO travel_plans (meeting_id, created_by, title, plan_date)
		VALUES (@meeting_id, @created_by, @title, @plan_date)
		RETURNING ` + planColumns

	args := pgx.NamedArgs{
		"meeting_id": p.MeetingID,
		"created_by": p.CreatedBy,
		"title":      p.Title,
		"plan_date":  p.PlanDate,
	}

	result, err := scanPlan(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TravelPlan{}, fmt.Errorf("repo.PlanRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.TravelPlan, error) {
	const q = `SELECT ` + planColumns + ` FROM travel_plans WHERE id = @id`

	result, err := scanPlan(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.TravelPlan{}, fmt.Errorf("repo.PlanRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgPlanRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.TravelPlan, error) {
	const q = `SELECT ` + planColumns + ` FROM travel_plans WHERE id = @id FOR UPDATE`

	result, err := scanPlan(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.TravelPlan{}, fmt.Errorf("repo.PlanRepo.GetByIDForUpdate: %w", err)
	}
	return result, nil
}

func (r *pgPlanRepo) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]domain.TravelPlan, error) {
	const q = `
		SELECT ` + planColumns + `
		FROM travel_plans
		WHERE meeting_id = @meeting_id
		ORDER BY plan_date, created_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"meeting_id": meetingID})
	if err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.ListByMeeting: %w", err)
	}
	defer rows.Close()

	plans := []domain.TravelPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.PlanRepo.ListByMeeting: scan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.ListByMeeting: rows: %w", err)
	}
	return plans, nil
}

func (r *pgPlanRepo) AddItem(ctx context.Context, it domain.PlanItem) (domain.PlanItem, error) {
	const q = `
		INSERT INTO plan_items (plan_id, title, place_name, memo, start_time, item_order)
		SELECT @plan_id::uuid, @title::text, @place_name::text, @memo::text, @start_time::timestamptz,
		       COALESCE(max(item_order), 0) + 1
		FROM plan_items
		WHERE plan_id = @plan_id
		RETURNING ` + planItemColumns

	args := pgx.NamedArgs{
		"plan_id":    it.PlanID,
		"title":      it.Title,
		"place_name": it.PlaceName,
		"memo":       it.Memo,
		"start_time": it.StartTime,
	}

	result, err := scanPlanItem(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.PlanItem{}, fmt.Errorf("repo.PlanRepo.AddItem: %w", err)
	}
	return result, nil
}

// planItemOrderBy maps a sort to a fixed ORDER BY clause.
func planItemOrderBy(sort domain.PlanItemSort) string {
	if sort == domain.SortItemsByStartTime {
		return "start_time ASC, item_order ASC"
	}
	return "item_order ASC, id"
}

func (r *pgPlanRepo) ListItems(ctx context.Context, planID uuid.UUID, sort domain.PlanItemSort) ([]domain.PlanItem, error) {
	q := `
		SELECT ` + planItemColumns + `
		FROM plan_items
		WHERE plan_id = @plan_id
		ORDER BY ` + planItemOrderBy(sort)

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"plan_id": planID})
	if err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.ListItems: %w", err)
	}
	defer rows.Close()

	items := []domain.PlanItem{}
	for rows.Next() {
		it, err := scanPlanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.PlanRepo.ListItems: scan: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.ListItems: rows: %w", err)
	}
	return items, nil
}

func (r *pgPlanRepo) DeleteItem(ctx context.Context, planID, itemID uuid.UUID) error {
	const q = `DELETE FROM plan_items WHERE id = @id AND plan_id = @plan_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": itemID, "plan_id": planID})
	if err != nil {
		return fmt.Errorf("repo.PlanRepo.DeleteItem: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PlanRepo.DeleteItem: %w", domain.ErrPlanItemNotFound)
	}
	return nil
}

func (r *pgPlanRepo) SetItemOrder(ctx context.Context, planID, itemID uuid.UUID, order int) error {
	const q = `UPDATE plan_items SET item_order = @item_order WHERE id = @id AND plan_id = @plan_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": itemID, "plan_id": planID, "item_order": order})
	if err != nil {
		return fmt.Errorf("repo.PlanRepo.SetItemOrder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PlanRepo.SetItemOrder: %w", domain.ErrPlanItemNotFound)
	}
	return nil
}

func scanPlan(s scanner) (domain.TravelPlan, error) {
	var (
		p                      domain.TravelPlan
		id, meeting, createdBy pgtype.UUID
		date                   pgtype.Date
	)
	if err := s.Scan(&id, &meeting, &createdBy, &p.Title, &date, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TravelPlan{}, domain.ErrPlanNotFound
		}
		return domain.TravelPlan{}, err
	}
	p.ID = toUUID(id)
	p.MeetingID = toUUID(meeting)
	p.CreatedBy = toUUID(createdBy)
	p.PlanDate = date.Time
	return p, nil
}

func scanPlanItem(s scanner) (domain.PlanItem, error) {
	var (
		it         domain.PlanItem
		id, planID pgtype.UUID
	)
	err := s.Scan(&id, &planID, &it.Title, &it.PlaceName, &it.Memo, &it.StartTime, &it.ItemOrder, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PlanItem{}, domain.ErrPlanItemNotFound
		}
		return domain.PlanItem{}, err
	}
	it.ID = toUUID(id)
	it.PlanID = toUUID(planID)
	return it, nil
}
