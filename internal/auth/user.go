package auth

import "time"

type User struct {
	ID                uint64    `gorm:"primaryKey"`
	Email             string    `gorm:"uniqueIndex;not null"`
	Name              string    `gorm:"not null"`
	PasswordHash      string    `gorm:"not null"`
	PreferredCurrency string    `gorm:"not null;default:'USD'"`
	CreatedAt         time.Time `gorm:"not null;default:now()"`
}
