package project

import (
	"context"
	"errors"
	"math"

	"github.com/devie/nexaflow-crm/internal/contact"
	"github.com/devie/nexaflow-crm/internal/dates"
	"github.com/devie/nexaflow-crm/internal/invoice"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

// Summary reports a project's financial position, milestone progress and
// team roster. All monetary figures are in the project's native currency;
// no conversion happens here (unlike the dashboard).
type Summary struct {
	ID       uint64 `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Currency string `json:"currency"`

	ProgressPct float64 `json:"progress_pct"`

	ProjectValue float64 `json:"project_value"`
	Budget       float64 `json:"budget"`
	ActualCost   float64 `json:"actual_cost"`
	NetMargin    float64 `json:"net_margin"`
	MarginPct    float64 `json:"margin_pct"`
	Variance     float64 `json:"variance"`

	InvoicedAmount     float64 `json:"invoiced_amount"`
	ReceivedPayment    float64 `json:"received_payment"`
	OutstandingInvoice float64 `json:"outstanding_invoice"`
	CashflowPosition   float64 `json:"cashflow_position"`

	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	PMName    string `json:"pm_name"`
	TeamCount int    `json:"team_count"`

	MilestonesCompleted int `json:"milestones_completed"`
	MilestonesTotal     int `json:"milestones_total"`
	OverdueMilestones   int `json:"overdue_milestones"`

	TeamMembers []TeamMember    `json:"team_members"`
	Milestones  []MilestoneView `json:"milestones"`
}

type TeamMember struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type MilestoneView struct {
	ID        uint64 `json:"id"`
	Title     string `json:"title"`
	DueDate   string `json:"due_date"`
	Completed bool   `json:"completed"`
	Overdue   bool   `json:"overdue"`
}

type SummaryService struct {
	DB *gorm.DB
}

// Summarize loads one owned project and derives its summary.
func (s *SummaryService) Summarize(ctx context.Context, userID, projectID uint64) (*Summary, error) {
	db := s.DB.WithContext(ctx)

	var p Project
	if err := db.Where("id=? AND user_id=?", projectID, userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var invoices []invoice.Invoice
	if err := db.Where("project_id=?", projectID).Find(&invoices).Error; err != nil {
		return nil, err
	}

	var milestones []Milestone
	if err := db.Where("project_id=?", projectID).Order("id asc").Find(&milestones).Error; err != nil {
		return nil, err
	}

	var assignments []ProjectContact
	if err := db.Where("project_id=?", projectID).Order("id asc").Find(&assignments).Error; err != nil {
		return nil, err
	}

	contactIDs := make([]uint64, 0, len(assignments))
	for _, pc := range assignments {
		contactIDs = append(contactIDs, pc.ContactID)
	}
	byID := map[uint64]contact.Contact{}
	if len(contactIDs) > 0 {
		var contacts []contact.Contact
		if err := db.Where("user_id=? AND id IN ?", userID, contactIDs).Find(&contacts).Error; err != nil {
			return nil, err
		}
		for _, c := range contacts {
			byID[c.ID] = c
		}
	}

	return BuildSummary(p, invoices, milestones, assignments, byID, dates.Today()), nil
}

// BuildSummary computes the summary from loaded rows. today is a
// YYYY-MM-DD string; milestone due dates are compared against it
// lexicographically.
func BuildSummary(p Project, invoices []invoice.Invoice, milestones []Milestone, assignments []ProjectContact, contacts map[uint64]contact.Contact, today string) *Summary {
	var invoiced, received float64
	for _, inv := range invoices {
		if inv.Status != invoice.StatusCancelled {
			invoiced += inv.Amount
		}
		if inv.Status == invoice.StatusPaid {
			received += inv.Amount
		}
	}

	netMargin := p.Value - p.ActualCost
	marginPct := 0.0
	if p.Value > 0 {
		marginPct = round1(netMargin / p.Value * 100)
	}

	total := len(milestones)
	completed := 0
	overdue := 0
	views := make([]MilestoneView, 0, total)
	for _, m := range milestones {
		done := m.CompletedAt != nil
		late := !done && m.DueDate != "" && m.DueDate < today
		if done {
			completed++
		}
		if late {
			overdue++
		}
		views = append(views, MilestoneView{
			ID:        m.ID,
			Title:     m.Title,
			DueDate:   m.DueDate,
			Completed: done,
			Overdue:   late,
		})
	}
	progressPct := 0.0
	if total > 0 {
		progressPct = round1(float64(completed) / float64(total) * 100)
	}

	ccy := p.Currency
	if ccy == "" {
		ccy = "USD"
	}

	pmName := ""
	members := make([]TeamMember, 0, len(assignments))
	for _, pc := range assignments {
		name, email := "Unknown", ""
		if c, ok := contacts[pc.ContactID]; ok {
			name, email = c.Name, c.Email
		}
		if pc.Role == RolePM && pmName == "" {
			pmName = name
		}
		members = append(members, TeamMember{Name: name, Email: email, Role: pc.Role})
	}

	return &Summary{
		ID:       p.ID,
		Title:    p.Title,
		Status:   p.Status,
		Currency: ccy,

		ProgressPct: progressPct,

		ProjectValue: round2(p.Value),
		Budget:       round2(p.Budget),
		ActualCost:   round2(p.ActualCost),
		NetMargin:    round2(netMargin),
		MarginPct:    marginPct,
		Variance:     round2(p.Budget - p.ActualCost),

		InvoicedAmount:     round2(invoiced),
		ReceivedPayment:    round2(received),
		OutstandingInvoice: round2(invoiced - received),
		CashflowPosition:   round2(received - p.ActualCost),

		StartDate: p.StartDate,
		EndDate:   p.EndDate,

		PMName:    pmName,
		TeamCount: len(assignments),

		MilestonesCompleted: completed,
		MilestonesTotal:     total,
		OverdueMilestones:   overdue,

		TeamMembers: members,
		Milestones:  views,
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
