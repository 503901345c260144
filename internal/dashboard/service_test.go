package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/devie/nexaflow-crm/internal/invoice"
	"github.com/devie/nexaflow-crm/internal/project"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedConverter converts through USD with a static rate table.
type fixedConverter struct {
	toUSD map[string]float64
}

func (c *fixedConverter) Convert(_ context.Context, amount float64, from, to string) float64 {
	if amount == 0 || from == to {
		return amount
	}
	inUSD := amount * c.toUSD[from]
	if to == "USD" {
		return inUSD
	}
	return inUSD / c.toUSD[to]
}

func testConverter() *fixedConverter {
	return &fixedConverter{toUSD: map[string]float64{"USD": 1, "EUR": 1.25, "GBP": 2}}
}

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestBuildProjectCounts(t *testing.T) {
	now := date("2026-08-15")
	projects := []project.Project{
		{Status: project.StatusActive, Currency: "USD", Value: 100},
		{Status: project.StatusActive, Currency: "USD", Value: 200},
		{Status: project.StatusCompleted, Currency: "USD", Value: 300},
		{Status: project.StatusOnHold, Currency: "USD", Value: 400},
		{Status: project.StatusCancelled, Currency: "USD", Value: 500},
	}

	stats := build(context.Background(), testConverter(), "USD", projects, nil, nil, now)

	assert.Equal(t, 2, stats.ActiveProjects)
	assert.Equal(t, 1, stats.CompletedProjects)
	// Value sums over every project regardless of status.
	assert.Equal(t, 1500.0, stats.TotalProjectValue)
}

func TestBuildConvertsProjectValue(t *testing.T) {
	now := date("2026-08-15")
	projects := []project.Project{
		{Status: project.StatusActive, Currency: "USD", Value: 100},
		{Status: project.StatusActive, Currency: "EUR", Value: 100},
	}

	stats := build(context.Background(), testConverter(), "USD", projects, nil, nil, now)
	assert.InDelta(t, 225.0, stats.TotalProjectValue, 1e-9)
}

func TestBuildProjectsOverBudget(t *testing.T) {
	now := date("2026-08-15")
	projects := []project.Project{
		{Status: project.StatusActive, Currency: "USD", Budget: 100, ActualCost: 150},
		{Status: project.StatusActive, Currency: "USD", Budget: 100, ActualCost: 90},
		// Zero budget never counts as over budget.
		{Status: project.StatusActive, Currency: "USD", Budget: 0, ActualCost: 999},
	}

	stats := build(context.Background(), testConverter(), "EUR", projects, nil, nil, now)
	assert.Equal(t, 1, stats.ProjectsOverBudget)
}

func TestBuildInvoiceTotalsAndOverdue(t *testing.T) {
	now := date("2026-08-15")
	invoices := []invoice.Invoice{
		{Status: invoice.StatusUnpaid, Currency: "USD", Amount: 100, DueDate: "2026-08-01"},
		{Status: invoice.StatusUnpaid, Currency: "USD", Amount: 50, DueDate: "2026-09-01"},
		{Status: invoice.StatusUnpaid, Currency: "USD", Amount: 25, DueDate: ""},
		{Status: invoice.StatusPaid, Currency: "EUR", Amount: 100, DueDate: "2026-01-01", CreatedAt: date("2026-07-02")},
		{Status: invoice.StatusCancelled, Currency: "USD", Amount: 9999},
	}

	stats := build(context.Background(), testConverter(), "USD", nil, invoices, nil, now)

	assert.InDelta(t, 175.0, stats.UnpaidTotal, 1e-9)
	assert.InDelta(t, 125.0, stats.PaidTotal, 1e-9)
	// Only unpaid invoices with a due date in the past count as overdue;
	// a paid invoice past its due date does not.
	assert.Equal(t, 1, stats.OverdueInvoices)
}

func TestBuildUpcomingMilestones(t *testing.T) {
	now := date("2026-08-15")
	done := date("2026-08-01")
	incomplete := []project.Milestone{
		{ID: 1, ProjectID: 1, Title: "past", DueDate: "2026-08-01"},
		{ID: 2, ProjectID: 1, Title: "today", DueDate: "2026-08-15"},
		{ID: 3, ProjectID: 1, Title: "no date", DueDate: ""},
		{ID: 4, ProjectID: 2, Title: "done", DueDate: "2026-08-20", CompletedAt: &done},
		{ID: 5, ProjectID: 2, Title: "later", DueDate: "2026-09-01"},
		{ID: 6, ProjectID: 2, Title: "soon", DueDate: "2026-08-16"},
		{ID: 7, ProjectID: 3, Title: "tie", DueDate: "2026-08-16"},
		{ID: 8, ProjectID: 3, Title: "far", DueDate: "2026-12-01"},
		{ID: 9, ProjectID: 3, Title: "farther", DueDate: "2026-12-02"},
	}

	stats := build(context.Background(), testConverter(), "USD", nil, nil, incomplete, now)

	require.Len(t, stats.UpcomingMilestones, 5)
	titles := make([]string, 0, 5)
	for _, m := range stats.UpcomingMilestones {
		titles = append(titles, m.Title)
	}
	assert.Equal(t, []string{"today", "soon", "tie", "later", "far"}, titles)
}

func TestBuildMonthlyRevenue(t *testing.T) {
	now := date("2026-03-10")
	invoices := []invoice.Invoice{
		{Status: invoice.StatusPaid, Currency: "USD", Amount: 100, CreatedAt: date("2026-03-01")},
		{Status: invoice.StatusPaid, Currency: "USD", Amount: 40, CreatedAt: date("2026-03-28")},
		{Status: invoice.StatusPaid, Currency: "EUR", Amount: 80, CreatedAt: date("2026-01-15")},
		{Status: invoice.StatusPaid, Currency: "USD", Amount: 70, CreatedAt: date("2025-11-05")},
		// Unpaid never shows up in revenue.
		{Status: invoice.StatusUnpaid, Currency: "USD", Amount: 500, CreatedAt: date("2026-03-05")},
		// Outside the trailing six months.
		{Status: invoice.StatusPaid, Currency: "USD", Amount: 999, CreatedAt: date("2025-09-01")},
	}

	stats := build(context.Background(), testConverter(), "USD", nil, invoices, nil, now)

	require.Len(t, stats.MonthlyRevenue, 6)
	months := make([]string, 0, 6)
	for _, m := range stats.MonthlyRevenue {
		months = append(months, m.Month)
	}
	// Oldest first, crossing the year boundary.
	assert.Equal(t, []string{"2025-10", "2025-11", "2025-12", "2026-01", "2026-02", "2026-03"}, months)

	assert.Equal(t, 0.0, stats.MonthlyRevenue[0].Revenue)
	assert.Equal(t, 70.0, stats.MonthlyRevenue[1].Revenue)
	assert.Equal(t, 100.0, stats.MonthlyRevenue[3].Revenue)
	assert.Equal(t, 140.0, stats.MonthlyRevenue[5].Revenue)
}

func TestBuildDefaultsBlankCurrencyToUSD(t *testing.T) {
	now := date("2026-08-15")
	projects := []project.Project{{Status: project.StatusActive, Currency: "", Value: 100}}
	invoices := []invoice.Invoice{{Status: invoice.StatusPaid, Currency: "", Amount: 100, CreatedAt: now}}

	stats := build(context.Background(), testConverter(), "EUR", projects, invoices, nil, now)

	assert.InDelta(t, 80.0, stats.TotalProjectValue, 1e-9)
	assert.InDelta(t, 80.0, stats.PaidTotal, 1e-9)
}
