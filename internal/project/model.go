package project

import "time"

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusOnHold    = "on_hold"
	StatusCancelled = "cancelled"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusCompleted, StatusOnHold, StatusCancelled:
		return true
	}
	return false
}

const (
	RolePM             = "pm"
	RoleTeamMember     = "team_member"
	RoleStakeholder    = "stakeholder"
	RoleBillingContact = "billing_contact"
)

func ValidRole(r string) bool {
	switch r {
	case RolePM, RoleTeamMember, RoleStakeholder, RoleBillingContact:
		return true
	}
	return false
}

type Project struct {
	ID          uint64  `gorm:"primaryKey"`
	UserID      uint64  `gorm:"index;not null"`
	ContactID   *uint64 `gorm:"index"`
	Title       string  `gorm:"not null"`
	Description string  `gorm:"type:text;not null;default:''"`
	Status      string  `gorm:"not null;default:'active'"`

	Value      float64 `gorm:"not null;default:0"`
	Budget     float64 `gorm:"not null;default:0"`
	ActualCost float64 `gorm:"not null;default:0"`
	Currency   string  `gorm:"not null;default:'USD'"`

	// Calendar dates as YYYY-MM-DD strings, empty when unset. Order of
	// start vs end is not validated.
	StartDate string `gorm:"not null;default:''"`
	EndDate   string `gorm:"not null;default:''"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

// ProjectContact joins a contact to a project with a role. At most one
// assignment per (project, contact) pair; enforced by a unique index.
type ProjectContact struct {
	ID        uint64    `gorm:"primaryKey"`
	ProjectID uint64    `gorm:"index;not null"`
	ContactID uint64    `gorm:"index;not null"`
	Role      string    `gorm:"not null;default:'team_member'"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

type Milestone struct {
	ID          uint64 `gorm:"primaryKey"`
	ProjectID   uint64 `gorm:"index;not null"`
	Title       string `gorm:"not null"`
	Description string `gorm:"type:text;not null;default:''"`

	// YYYY-MM-DD or empty.
	DueDate string `gorm:"not null;default:''"`

	// Toggled, not monotonic: completing again clears it.
	CompletedAt *time.Time

	CreatedAt time.Time `gorm:"not null;default:now()"`
}
