package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gbsb/tripmate/internal/domain"
	"github.com/gbsb/tripmate/internal/repo"
)

// PlanService implements business logic for a meeting's travel plans.
// Every operation requires the caller to be an active member of the meeting
// the plan belongs to.
type PlanService struct {
	store repo.Transactor
}

// NewPlanService constructs a PlanService.
func NewPlanService(store repo.Transactor) *PlanService {
	return &PlanService{store: store}
}

// Create adds a plan for one day of the meeting's travel window.
func (s *PlanService) Create(ctx context.Context, caller domain.Caller, meetingID uuid.UUID, in domain.TravelPlanInput) (domain.TravelPlan, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.TravelPlan{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if in.PlanDate.IsZero() {
		return domain.TravelPlan{}, fmt.Errorf("%w: plan_date is required", domain.ErrValidation)
	}

	var created domain.TravelPlan
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		m, err := r.Meetings.GetByID(ctx, meetingID)
		if err != nil {
			return err
		}
		if _, err := activeMember(ctx, r.Members, m.ID, caller.UserID); err != nil {
			return err
		}
		if !m.Window().Contains(in.PlanDate) {
			return domain.ErrInvalidMeetingTravelDate
		}

		created, err = r.Plans.Create(ctx, domain.TravelPlan{
			MeetingID: m.ID,
			CreatedBy: caller.UserID,
			Title:     title,
			PlanDate:  domain.Day(in.PlanDate),
		})
		return err
	})
	if err != nil {
		return domain.TravelPlan{}, fmt.Errorf("service.PlanService.Create: %w", err)
	}
	return created, nil
}

// ListByMeeting returns the meeting's plans ordered by day.
func (s *PlanService) ListByMeeting(ctx context.Context, caller domain.Caller, meetingID uuid.UUID) ([]domain.TravelPlan, error) {
	r := s.store.Repos()
	m, err := r.Meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("service.PlanService.ListByMeeting: %w", err)
	}
	if _, err := activeMember(ctx, r.Members, m.ID, caller.UserID); err != nil {
		return nil, fmt.Errorf("service.PlanService.ListByMeeting: %w", err)
	}
	plans, err := r.Plans.ListByMeeting(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("service.PlanService.ListByMeeting: %w", err)
	}
	return plans, nil
}

// AddItem appends an item to the end of the plan's order.
func (s *PlanService) AddItem(ctx context.Context, caller domain.Caller, planID uuid.UUID, in domain.PlanItemInput) (domain.PlanItem, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.PlanItem{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if in.StartTime.IsZero() {
		return domain.PlanItem{}, fmt.Errorf("%w: start_time is required", domain.ErrValidation)
	}

	var created domain.PlanItem
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		// The plan lock serialises position assignment between writers.
		p, err := lockPlanForMember(ctx, r, caller, planID)
		if err != nil {
			return err
		}
		created, err = r.Plans.AddItem(ctx, domain.PlanItem{
			PlanID:    p.ID,
			Title:     title,
			PlaceName: strings.TrimSpace(in.PlaceName),
			Memo:      in.Memo,
			StartTime: in.StartTime,
		})
		return err
	})
	if err != nil {
		return domain.PlanItem{}, fmt.Errorf("service.PlanService.AddItem: %w", err)
	}
	return created, nil
}

// Items lists a plan's items by start time or by their arranged position.
func (s *PlanService) Items(ctx context.Context, caller domain.Caller, planID uuid.UUID, sort domain.PlanItemSort) ([]domain.PlanItem, error) {
	r := s.store.Repos()
	p, err := r.Plans.GetByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("service.PlanService.Items: %w", err)
	}
	if err := requirePlanMember(ctx, r, caller, p); err != nil {
		return nil, fmt.Errorf("service.PlanService.Items: %w", err)
	}
	items, err := r.Plans.ListItems(ctx, p.ID, sort)
	if err != nil {
		return nil, fmt.Errorf("service.PlanService.Items: %w", err)
	}
	return items, nil
}

// DeleteItem removes one item. Positions of the remaining items keep their
// relative order.
func (s *PlanService) DeleteItem(ctx context.Context, caller domain.Caller, planID, itemID uuid.UUID) error {
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		p, err := lockPlanForMember(ctx, r, caller, planID)
		if err != nil {
			return err
		}
		return r.Plans.DeleteItem(ctx, p.ID, itemID)
	})
	if err != nil {
		return fmt.Errorf("service.PlanService.DeleteItem: %w", err)
	}
	return nil
}

// Reorder rearranges a plan's items. itemIDs must name every item of the
// plan exactly once; the first gets position 1.
func (s *PlanService) Reorder(ctx context.Context, caller domain.Caller, planID uuid.UUID, itemIDs []uuid.UUID) ([]domain.PlanItem, error) {
	var items []domain.PlanItem
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		p, err := lockPlanForMember(ctx, r, caller, planID)
		if err != nil {
			return err
		}
		current, err := r.Plans.ListItems(ctx, p.ID, domain.SortItemsByOrder)
		if err != nil {
			return err
		}
		if !samePlanItems(current, itemIDs) {
			return domain.ErrInvalidItemOrder
		}
		for i, id := range itemIDs {
			if err := r.Plans.SetItemOrder(ctx, p.ID, id, i+1); err != nil {
				return err
			}
		}
		items, err = r.Plans.ListItems(ctx, p.ID, domain.SortItemsByOrder)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.PlanService.Reorder: %w", err)
	}
	return items, nil
}

func lockPlanForMember(ctx context.Context, r repo.Repos, caller domain.Caller, planID uuid.UUID) (domain.TravelPlan, error) {
	p, err := r.Plans.GetByIDForUpdate(ctx, planID)
	if err != nil {
		return domain.TravelPlan{}, err
	}
	if err := requirePlanMember(ctx, r, caller, p); err != nil {
		return domain.TravelPlan{}, err
	}
	return p, nil
}

// requirePlanMember checks that the plan's meeting is still active and the
// caller is one of its active members.
func requirePlanMember(ctx context.Context, r repo.Repos, caller domain.Caller, p domain.TravelPlan) error {
	if _, err := r.Meetings.GetByID(ctx, p.MeetingID); err != nil {
		return err
	}
	_, err := activeMember(ctx, r.Members, p.MeetingID, caller.UserID)
	return err
}

func samePlanItems(current []domain.PlanItem, ids []uuid.UUID) bool {
	if len(current) != len(ids) {
		return false
	}
	want := make(map[uuid.UUID]bool, len(current))
	for _, it := range current {
		want[it.ID] = true
	}
	for _, id := range ids {
		if !want[id] {
			return false
		}
		delete(want, id)
	}
	return true
}
