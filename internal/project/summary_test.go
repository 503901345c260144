package project

import (
	"testing"
	"time"

	"github.com/devie/nexaflow-crm/internal/contact"
	"github.com/devie/nexaflow-crm/internal/invoice"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseProject() Project {
	return Project{
		ID:         7,
		Title:      "Site relaunch",
		Status:     StatusActive,
		Currency:   "EUR",
		Value:      1000,
		Budget:     800,
		ActualCost: 600,
		StartDate:  "2026-01-01",
		EndDate:    "2026-06-30",
	}
}

func TestBuildSummaryFinancials(t *testing.T) {
	s := BuildSummary(baseProject(), nil, nil, nil, nil, "2026-03-01")

	assert.Equal(t, 400.0, s.NetMargin)
	assert.Equal(t, 40.0, s.MarginPct)
	assert.Equal(t, 200.0, s.Variance)
	assert.Equal(t, "EUR", s.Currency)
	assert.Equal(t, 0.0, s.ProgressPct)
	assert.Equal(t, 0.0, s.InvoicedAmount)
	assert.Equal(t, -600.0, s.CashflowPosition)
}

func TestBuildSummaryDefaultsBlankCurrency(t *testing.T) {
	p := baseProject()
	p.Currency = ""

	s := BuildSummary(p, nil, nil, nil, nil, "2026-03-01")
	assert.Equal(t, "USD", s.Currency)
}

func TestBuildSummaryZeroValueProject(t *testing.T) {
	p := baseProject()
	p.Value = 0

	s := BuildSummary(p, nil, nil, nil, nil, "2026-03-01")
	assert.Equal(t, 0.0, s.MarginPct)
	assert.Equal(t, -600.0, s.NetMargin)
}

func TestBuildSummaryInvoiceAggregates(t *testing.T) {
	invoices := []invoice.Invoice{
		{Status: invoice.StatusPaid, Amount: 300},
		{Status: invoice.StatusUnpaid, Amount: 200},
		{Status: invoice.StatusOverdue, Amount: 100},
		// Cancelled invoices are excluded from every figure.
		{Status: invoice.StatusCancelled, Amount: 5000},
	}

	s := BuildSummary(baseProject(), invoices, nil, nil, nil, "2026-03-01")

	assert.Equal(t, 600.0, s.InvoicedAmount)
	assert.Equal(t, 300.0, s.ReceivedPayment)
	assert.Equal(t, 300.0, s.OutstandingInvoice)
	assert.Equal(t, -300.0, s.CashflowPosition)
}

func TestBuildSummaryMilestones(t *testing.T) {
	done := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	milestones := []Milestone{
		{ID: 1, Title: "kickoff", DueDate: "2026-01-15", CompletedAt: &done},
		{ID: 2, Title: "design", DueDate: "2026-02-15", CompletedAt: &done},
		{ID: 3, Title: "build", DueDate: "2026-02-20"},
		{ID: 4, Title: "launch", DueDate: "2026-06-01"},
	}

	s := BuildSummary(baseProject(), nil, milestones, nil, nil, "2026-03-01")

	assert.Equal(t, 50.0, s.ProgressPct)
	assert.Equal(t, 2, s.MilestonesCompleted)
	assert.Equal(t, 4, s.MilestonesTotal)
	// Only "build" is both incomplete and past due.
	assert.Equal(t, 1, s.OverdueMilestones)

	require.Len(t, s.Milestones, 4)
	assert.True(t, s.Milestones[0].Completed)
	assert.False(t, s.Milestones[0].Overdue)
	assert.True(t, s.Milestones[2].Overdue)
	assert.False(t, s.Milestones[3].Overdue)
}

func TestBuildSummaryTeam(t *testing.T) {
	assignments := []ProjectContact{
		{ID: 1, ContactID: 10, Role: RoleTeamMember},
		{ID: 2, ContactID: 11, Role: RolePM},
		{ID: 3, ContactID: 99, Role: RoleStakeholder},
	}
	contacts := map[uint64]contact.Contact{
		10: {ID: 10, Name: "Ada", Email: "ada@example.com"},
		11: {ID: 11, Name: "Grace", Email: "grace@example.com"},
	}

	s := BuildSummary(baseProject(), nil, nil, assignments, contacts, "2026-03-01")

	assert.Equal(t, "Grace", s.PMName)
	assert.Equal(t, 3, s.TeamCount)
	require.Len(t, s.TeamMembers, 3)
	assert.Equal(t, "Ada", s.TeamMembers[0].Name)
	assert.Equal(t, RoleTeamMember, s.TeamMembers[0].Role)
	// Assignments pointing at missing contacts keep a placeholder name.
	assert.Equal(t, "Unknown", s.TeamMembers[2].Name)
	assert.Equal(t, "", s.TeamMembers[2].Email)
}

func TestBuildSummaryNoPM(t *testing.T) {
	assignments := []ProjectContact{{ID: 1, ContactID: 10, Role: RoleBillingContact}}
	contacts := map[uint64]contact.Contact{10: {ID: 10, Name: "Ada"}}

	s := BuildSummary(baseProject(), nil, nil, assignments, contacts, "2026-03-01")
	assert.Equal(t, "", s.PMName)
}
