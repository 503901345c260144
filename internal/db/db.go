package db

import (
	"fmt"

	"github.com/devie/nexaflow-crm/internal/auth"
	"github.com/devie/nexaflow-crm/internal/commlog"
	"github.com/devie/nexaflow-crm/internal/contact"
	"github.com/devie/nexaflow-crm/internal/currency"
	"github.com/devie/nexaflow-crm/internal/invoice"
	"github.com/devie/nexaflow-crm/internal/project"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&auth.User{},
		&contact.Contact{},
		&project.Project{},
		&project.ProjectContact{},
		&project.Milestone{},
		&invoice.Invoice{},
		&invoice.InvoiceLineItem{},
		&commlog.Entry{},
		&currency.ExchangeRateCache{},
	); err != nil {
		return err
	}

	// One assignment per (project, contact) pair
	if err := gdb.Exec(`create unique index if not exists uq_project_contacts_pair on project_contacts(project_id, contact_id);`).Error; err != nil {
		return err
	}

	// Contact tag filter (GIN for text[])
	if err := gdb.Exec(`create index if not exists idx_contacts_tags on contacts using gin (tags);`).Error; err != nil {
		return err
	}

	// Helpful indexes
	stmts := []string{
		`create index if not exists idx_projects_user_status on projects(user_id, status);`,
		`create index if not exists idx_invoices_project_status on invoices(project_id, status);`,
		`create index if not exists idx_invoices_due on invoices(status, due_date);`,
		`create index if not exists idx_milestones_project_due on milestones(project_id, due_date);`,
		`create index if not exists idx_commlog_contact_created on communication_logs(contact_id, created_at desc);`,
		`create index if not exists idx_commlog_project_created on communication_logs(project_id, created_at desc);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
