// Package dashboard computes per-user aggregate metrics, normalized into
// the user's preferred display currency.
package dashboard

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/devie/nexaflow-crm/internal/contact"
	"github.com/devie/nexaflow-crm/internal/invoice"
	"github.com/devie/nexaflow-crm/internal/project"

	"gorm.io/gorm"
)

// Converter is satisfied by *currency.Converter; faked in tests.
type Converter interface {
	Convert(ctx context.Context, amount float64, from, to string) float64
}

type Stats struct {
	TotalContacts      int64   `json:"total_contacts"`
	ActiveProjects     int     `json:"active_projects"`
	CompletedProjects  int     `json:"completed_projects"`
	TotalProjectValue  float64 `json:"total_project_value"`
	UnpaidTotal        float64 `json:"unpaid_total"`
	PaidTotal          float64 `json:"paid_total"`
	OverdueInvoices    int     `json:"overdue_invoices"`
	ProjectsOverBudget int     `json:"projects_over_budget"`

	UpcomingMilestones []UpcomingMilestone `json:"upcoming_milestones"`
	MonthlyRevenue     []MonthRevenue      `json:"monthly_revenue"`
}

type UpcomingMilestone struct {
	ID        uint64 `json:"id"`
	ProjectID uint64 `json:"project_id"`
	Title     string `json:"title"`
	DueDate   string `json:"due_date"`
}

type MonthRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

type Service struct {
	DB        *gorm.DB
	Converter Converter
}

// Stats aggregates over all of the user's contacts, projects, invoices
// and milestones, converting monetary figures to targetCurrency.
func (s *Service) Stats(ctx context.Context, userID uint64, targetCurrency string) (*Stats, error) {
	if targetCurrency == "" {
		targetCurrency = "USD"
	}
	db := s.DB.WithContext(ctx)

	var totalContacts int64
	if err := db.Model(&contact.Contact{}).Where("user_id = ?", userID).Count(&totalContacts).Error; err != nil {
		return nil, err
	}

	var projects []project.Project
	if err := db.Where("user_id = ?", userID).Find(&projects).Error; err != nil {
		return nil, err
	}

	var invoices []invoice.Invoice
	if err := db.
		Joins("JOIN projects ON projects.id = invoices.project_id").
		Where("projects.user_id = ?", userID).
		Find(&invoices).Error; err != nil {
		return nil, err
	}

	var milestones []project.Milestone
	if err := db.
		Joins("JOIN projects ON projects.id = milestones.project_id").
		Where("projects.user_id = ? AND milestones.completed_at IS NULL", userID).
		Find(&milestones).Error; err != nil {
		return nil, err
	}

	stats := build(ctx, s.Converter, targetCurrency, projects, invoices, milestones, time.Now().UTC())
	stats.TotalContacts = totalContacts
	return stats, nil
}

func build(ctx context.Context, conv Converter, target string, projects []project.Project, invoices []invoice.Invoice, incomplete []project.Milestone, now time.Time) *Stats {
	stats := &Stats{}
	today := now.Format("2006-01-02")

	for _, p := range projects {
		switch p.Status {
		case project.StatusActive:
			stats.ActiveProjects++
		case project.StatusCompleted:
			stats.CompletedProjects++
		}

		ccy := p.Currency
		if ccy == "" {
			ccy = "USD"
		}
		stats.TotalProjectValue += conv.Convert(ctx, p.Value, ccy, target)

		// Over-budget check is done in the target currency on both sides.
		if p.Budget > 0 {
			cost := conv.Convert(ctx, p.ActualCost, ccy, target)
			budget := conv.Convert(ctx, p.Budget, ccy, target)
			if cost > budget {
				stats.ProjectsOverBudget++
			}
		}
	}

	for _, inv := range invoices {
		ccy := inv.Currency
		if ccy == "" {
			ccy = "USD"
		}
		converted := conv.Convert(ctx, inv.Amount, ccy, target)
		switch inv.Status {
		case invoice.StatusUnpaid:
			stats.UnpaidTotal += converted
			if inv.DueDate != "" && inv.DueDate < today {
				stats.OverdueInvoices++
			}
		case invoice.StatusPaid:
			stats.PaidTotal += converted
		}
	}

	stats.UpcomingMilestones = upcoming(incomplete, today, 5)
	stats.MonthlyRevenue = monthlyRevenue(ctx, conv, target, invoices, now)

	stats.TotalProjectValue = round2(stats.TotalProjectValue)
	stats.UnpaidTotal = round2(stats.UnpaidTotal)
	stats.PaidTotal = round2(stats.PaidTotal)
	return stats
}

// upcoming picks the next `limit` incomplete milestones due today or
// later, soonest first.
func upcoming(incomplete []project.Milestone, today string, limit int) []UpcomingMilestone {
	due := make([]project.Milestone, 0, len(incomplete))
	for _, m := range incomplete {
		if m.CompletedAt == nil && m.DueDate != "" && m.DueDate >= today {
			due = append(due, m)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].DueDate != due[j].DueDate {
			return due[i].DueDate < due[j].DueDate
		}
		return due[i].ID < due[j].ID
	})
	if len(due) > limit {
		due = due[:limit]
	}

	out := make([]UpcomingMilestone, 0, len(due))
	for _, m := range due {
		out = append(out, UpcomingMilestone{
			ID:        m.ID,
			ProjectID: m.ProjectID,
			Title:     m.Title,
			DueDate:   m.DueDate,
		})
	}
	return out
}

// monthlyRevenue sums converted paid-invoice amounts per trailing calendar
// month, exactly 6 entries, oldest first, labeled YYYY-MM.
func monthlyRevenue(ctx context.Context, conv Converter, target string, invoices []invoice.Invoice, now time.Time) []MonthRevenue {
	out := make([]MonthRevenue, 0, 6)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	for i := 5; i >= 0; i-- {
		month := first.AddDate(0, -i, 0)

		var total float64
		for _, inv := range invoices {
			if inv.Status != invoice.StatusPaid {
				continue
			}
			if inv.CreatedAt.Year() != month.Year() || inv.CreatedAt.Month() != month.Month() {
				continue
			}
			ccy := inv.Currency
			if ccy == "" {
				ccy = "USD"
			}
			total += conv.Convert(ctx, inv.Amount, ccy, target)
		}

		out = append(out, MonthRevenue{
			Month:   month.Format("2006-01"),
			Revenue: round2(total),
		})
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
