package currency

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// CacheTTL is how long a fetched rate map stays fresh.
const CacheTTL = 6 * time.Hour

// Converter turns amounts between currencies using cached exchange rates.
// It never fails: on total provider/cache miss, Convert is the identity.
type Converter struct {
	Store    Store
	Provider Provider
	TTL      time.Duration
	Log      *slog.Logger

	now func() time.Time
}

func NewConverter(store Store, provider Provider, log *slog.Logger) *Converter {
	return &Converter{
		Store:    store,
		Provider: provider,
		TTL:      CacheTTL,
		Log:      log,
		now:      time.Now,
	}
}

// GetRates returns the rate map for base, refreshing through the provider
// when the cached row is absent or stale. Provider failures fall back to
// the stale row, then to an empty map; callers must treat an empty map as
// "no conversion possible".
func (c *Converter) GetRates(ctx context.Context, base string) Rates {
	base = strings.ToUpper(base)

	cached, fetchedAt, err := c.Store.Get(ctx, base)
	if err != nil {
		c.Log.Warn("rate cache read failed", "base", base, "err", err)
		cached = nil
	}
	if cached != nil && c.now().Sub(fetchedAt) < c.TTL {
		return cached
	}

	fresh, err := c.Provider.Fetch(ctx, base)
	if err != nil {
		c.Log.Warn("rate provider fetch failed", "base", base, "err", err)
		if cached != nil {
			return cached
		}
		return Rates{}
	}

	if err := c.Store.Put(ctx, base, fresh, c.now()); err != nil {
		c.Log.Warn("rate cache write failed", "base", base, "err", err)
	}
	return fresh
}

// Convert converts amount from one currency to another. Zero amounts and
// same-currency conversions return unchanged without a lookup. When no
// direct rate exists it tries the reverse rate, and finally gives up and
// returns the amount as-is.
func (c *Converter) Convert(ctx context.Context, amount float64, from, to string) float64 {
	if amount == 0 || from == to {
		return amount
	}

	rates := c.GetRates(ctx, from)
	if r, ok := rates[to]; ok {
		return amount * r
	}

	reverse := c.GetRates(ctx, to)
	if r, ok := reverse[from]; ok && r > 0 {
		return amount / r
	}

	return amount
}
