package contact

import (
	"time"

	"github.com/lib/pq"
)

// Contact is a person or organization owned by a single user.
type Contact struct {
	ID      uint64 `gorm:"primaryKey"`
	UserID  uint64 `gorm:"index;not null"`
	Name    string `gorm:"not null"`
	Email   string `gorm:"not null;default:''"`
	Phone   string `gorm:"not null;default:''"`
	Company string `gorm:"not null;default:''"`

	Tags pq.StringArray `gorm:"type:text[];not null;default:'{}'"`

	Notes     string    `gorm:"type:text;not null;default:''"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}
