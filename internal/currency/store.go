package currency

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists one rate map per base currency. Get returns a nil map
// and zero time when no row exists.
type Store interface {
	Get(ctx context.Context, base string) (Rates, time.Time, error)
	Put(ctx context.Context, base string, rates Rates, fetchedAt time.Time) error
}

type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) Get(ctx context.Context, base string) (Rates, time.Time, error) {
	var row ExchangeRateCache
	err := s.DB.WithContext(ctx).Where("base_currency = ?", base).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, time.Time{}, nil
		}
		return nil, time.Time{}, err
	}
	var rates Rates
	if err := json.Unmarshal([]byte(row.RatesJSON), &rates); err != nil {
		return nil, time.Time{}, err
	}
	return rates, row.FetchedAt, nil
}

// Put upserts the row; concurrent refreshes of the same base are
// last-writer-wins, which is fine since content is idempotent per TTL
// window.
func (s *GormStore) Put(ctx context.Context, base string, rates Rates, fetchedAt time.Time) error {
	b, err := json.Marshal(rates)
	if err != nil {
		return err
	}
	row := ExchangeRateCache{BaseCurrency: base, RatesJSON: string(b), FetchedAt: fetchedAt}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "base_currency"}},
		DoUpdates: clause.AssignmentColumns([]string{"rates_json", "fetched_at"}),
	}).Create(&row).Error
}
