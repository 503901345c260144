package currency

import "time"

// ExchangeRateCache is one durable row per base currency, overwritten in
// place on refresh.
type ExchangeRateCache struct {
	ID           uint64    `gorm:"primaryKey"`
	BaseCurrency string    `gorm:"uniqueIndex;not null"`
	RatesJSON    string    `gorm:"type:text;not null"`
	FetchedAt    time.Time `gorm:"not null"`
}

func (ExchangeRateCache) TableName() string { return "exchange_rate_cache" }

// Rates maps currency code to rate for some base currency.
type Rates map[string]float64

// Supported is the fixed currency list exposed to clients.
var Supported = []string{
	"USD", "EUR", "GBP", "JPY", "AUD", "CAD", "CHF", "CNY", "SEK", "NZD",
	"MXN", "SGD", "HKD", "NOK", "KRW", "TRY", "INR", "RUB", "BRL", "ZAR",
	"IDR", "MYR", "THB", "PHP", "PLN", "CZK", "HUF", "ILS", "DKK", "ISK",
	"BGN", "HRK", "RON",
}
