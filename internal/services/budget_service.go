package services

import (
	"context"
	"fmt"

	"budgetd/internal/amqp"
	"budgetd/internal/core"
	"budgetd/internal/storage"
)

// BudgetService computes the monthly envelope report and maintains budget
// allocations. All month arithmetic runs on first-of-month dates with
// half-open [start, start+1month) intervals.
type BudgetService struct {
	repo   *storage.Repository
	events *amqp.Client
}

func NewBudgetService(repo *storage.Repository, events *amqp.Client) *BudgetService {
	return &BudgetService{
		repo:   repo,
		events: events,
	}
}

// GetMonth builds the envelope report for the requested month. Every
// category in the system appears once; categories without allocations or
// transactions report zeros.
func (s *BudgetService) GetMonth(ctx context.Context, year, month int) (core.BudgetMonth, error) {
	var ve core.ValidationErrors
	if month < 1 || month > 12 {
		ve.Add("month", "month must be between 1 and 12")
	}
	if year < core.YearMin || year > core.YearMax {
		ve.Add("year", "year must be between %d and %d", core.YearMin, core.YearMax)
	}
	if err := ve.OrNil(); err != nil {
		return core.BudgetMonth{}, err
	}

	start := core.FirstOfMonth(year, month)
	prev := start.AddMonths(-1)
	end := start.AddMonths(1)
	q := s.repo.Queries()

	categories, err := q.ListCategories(ctx)
	if err != nil {
		return core.BudgetMonth{}, fmt.Errorf("category roster: %w", err)
	}
	currentAlloc, err := q.AllocationsForMonth(ctx, start)
	if err != nil {
		return core.BudgetMonth{}, fmt.Errorf("current allocations: %w", err)
	}
	previousAlloc, err := q.AllocationsBefore(ctx, start)
	if err != nil {
		return core.BudgetMonth{}, fmt.Errorf("previous allocations: %w", err)
	}
	currentOutflow, err := q.OutflowsInRange(ctx, start, end)
	if err != nil {
		return core.BudgetMonth{}, fmt.Errorf("current outflows: %w", err)
	}
	previousOutflow, err := q.OutflowsBefore(ctx, start)
	if err != nil {
		return core.BudgetMonth{}, fmt.Errorf("previous outflows: %w", err)
	}

	// Income received in the previous month but marked next_month counts
	// toward this month's pool; this month's next_month income does not.
	income, err := q.SumIncomeForMonth(ctx, prev, start, end)
	if err != nil {
		return core.BudgetMonth{}, fmt.Errorf("month income: %w", err)
	}
	incomeBefore, err := q.SumIncomeBefore(ctx, prev, start)
	if err != nil {
		return core.BudgetMonth{}, fmt.Errorf("prior income: %w", err)
	}
	allocatedBefore, err := q.SumAllocationsBefore(ctx, start)
	if err != nil {
		return core.BudgetMonth{}, fmt.Errorf("prior allocation total: %w", err)
	}

	report := core.BudgetMonth{
		Income:         core.Money{Cents: income},
		LeftoverBudget: core.Money{Cents: incomeBefore - allocatedBefore},
		Items:          make([]core.BudgetMonthItem, 0, len(categories)),
	}

	var budgetedNow int64
	for _, cat := range categories {
		item := core.BudgetMonthItem{
			CategoryID:      cat.ID,
			Category:        cat.Name,
			CurrentBudget:   core.Money{Cents: currentAlloc[cat.ID]},
			CurrentOutflow:  core.Money{Cents: currentOutflow[cat.ID]},
			PreviousBalance: core.Money{Cents: previousAlloc[cat.ID] + previousOutflow[cat.ID]},
		}
		item.RemainingBudget = item.PreviousBalance.Add(item.CurrentBudget).Add(item.CurrentOutflow)
		budgetedNow += item.CurrentBudget.Cents
		report.Items = append(report.Items, item)
	}

	report.ToBeBudgeted = core.Money{Cents: report.LeftoverBudget.Cents + report.Income.Cents - budgetedNow}
	return report, nil
}

// SetAllocation upserts the allocation row for one (category, month) pair.
// A repeated request for the same pair updates the existing row in place.
func (s *BudgetService) SetAllocation(ctx context.Context, cmd core.AllocationCommand) (core.BudgetAllocation, error) {
	q := s.repo.Queries()
	if err := validateAllocationCommand(ctx, q, cmd); err != nil {
		return core.BudgetAllocation{}, err
	}

	month := core.FirstOfMonth(cmd.Year, cmd.Month)
	if err := q.UpsertAllocation(ctx, cmd.CategoryID, month, cmd.Amount.Cents); err != nil {
		return core.BudgetAllocation{}, err
	}

	publishEvent(ctx, s.events, amqp.EntityAllocation, amqp.ActionUpdated, cmd.CategoryID)
	return core.BudgetAllocation{
		CategoryID: cmd.CategoryID,
		Month:      month,
		Amount:     cmd.Amount,
	}, nil
}
