package currency

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	rates     map[string]Rates
	fetchedAt map[string]time.Time
	getErr    error
	puts      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{rates: map[string]Rates{}, fetchedAt: map[string]time.Time{}}
}

func (s *fakeStore) Get(_ context.Context, base string) (Rates, time.Time, error) {
	if s.getErr != nil {
		return nil, time.Time{}, s.getErr
	}
	r, ok := s.rates[base]
	if !ok {
		return nil, time.Time{}, nil
	}
	return r, s.fetchedAt[base], nil
}

func (s *fakeStore) Put(_ context.Context, base string, rates Rates, fetchedAt time.Time) error {
	s.puts++
	s.rates[base] = rates
	s.fetchedAt[base] = fetchedAt
	return nil
}

type fakeProvider struct {
	rates   map[string]Rates
	err     error
	fetches int
}

func (p *fakeProvider) Fetch(_ context.Context, base string) (Rates, error) {
	p.fetches++
	if p.err != nil {
		return nil, p.err
	}
	r, ok := p.rates[base]
	if !ok {
		return Rates{}, nil
	}
	return r, nil
}

func newTestConverter(store Store, provider Provider) *Converter {
	c := NewConverter(store, provider, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return c
}

func TestConvertIdentity(t *testing.T) {
	c := newTestConverter(newFakeStore(), &fakeProvider{})

	assert.Equal(t, 0.0, c.Convert(context.Background(), 0, "USD", "EUR"))
	assert.Equal(t, 42.5, c.Convert(context.Background(), 42.5, "USD", "USD"))
}

func TestConvertDirectRate(t *testing.T) {
	p := &fakeProvider{rates: map[string]Rates{
		"USD": {"EUR": 0.9},
	}}
	c := newTestConverter(newFakeStore(), p)

	got := c.Convert(context.Background(), 100, "USD", "EUR")
	assert.InDelta(t, 90.0, got, 1e-9)
}

func TestConvertReverseRate(t *testing.T) {
	// No rates published for the source currency, so conversion falls
	// back to dividing by the target's rate for the source.
	p := &fakeProvider{rates: map[string]Rates{
		"USD": {"EUR": 0.8},
	}}
	c := newTestConverter(newFakeStore(), p)

	got := c.Convert(context.Background(), 80, "EUR", "USD")
	assert.InDelta(t, 100.0, got, 1e-9)
}

func TestConvertNoRatesAnywhere(t *testing.T) {
	p := &fakeProvider{err: errors.New("provider down")}
	c := newTestConverter(newFakeStore(), p)

	got := c.Convert(context.Background(), 55, "USD", "EUR")
	assert.Equal(t, 55.0, got)
}

func TestGetRatesFreshCacheSkipsProvider(t *testing.T) {
	store := newFakeStore()
	store.rates["USD"] = Rates{"EUR": 0.9}
	store.fetchedAt["USD"] = time.Now()

	p := &fakeProvider{rates: map[string]Rates{"USD": {"EUR": 0.5}}}
	c := newTestConverter(store, p)

	got := c.GetRates(context.Background(), "usd")
	assert.Equal(t, 0.9, got["EUR"])
	assert.Equal(t, 0, p.fetches)
}

func TestGetRatesStaleCacheRefetches(t *testing.T) {
	store := newFakeStore()
	store.rates["USD"] = Rates{"EUR": 0.9}
	store.fetchedAt["USD"] = time.Now().Add(-7 * time.Hour)

	p := &fakeProvider{rates: map[string]Rates{"USD": {"EUR": 0.5}}}
	c := newTestConverter(store, p)

	got := c.GetRates(context.Background(), "USD")
	assert.Equal(t, 0.5, got["EUR"])
	assert.Equal(t, 1, p.fetches)
	assert.Equal(t, 1, store.puts)
}

func TestGetRatesStaleFallbackOnProviderError(t *testing.T) {
	store := newFakeStore()
	store.rates["USD"] = Rates{"EUR": 0.9}
	store.fetchedAt["USD"] = time.Now().Add(-48 * time.Hour)

	p := &fakeProvider{err: errors.New("provider down")}
	c := newTestConverter(store, p)

	got := c.GetRates(context.Background(), "USD")
	assert.Equal(t, 0.9, got["EUR"])
}

func TestGetRatesEmptyOnTotalMiss(t *testing.T) {
	p := &fakeProvider{err: errors.New("provider down")}
	c := newTestConverter(newFakeStore(), p)

	got := c.GetRates(context.Background(), "USD")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetRatesTTLBoundary(t *testing.T) {
	store := newFakeStore()
	store.rates["USD"] = Rates{"EUR": 0.9}

	p := &fakeProvider{rates: map[string]Rates{"USD": {"EUR": 0.5}}}
	c := newTestConverter(store, p)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.fetchedAt["USD"] = base
	c.now = func() time.Time { return base.Add(c.TTL - time.Second) }

	got := c.GetRates(context.Background(), "USD")
	assert.Equal(t, 0.9, got["EUR"])
	assert.Equal(t, 0, p.fetches)

	c.now = func() time.Time { return base.Add(c.TTL + time.Second) }
	got = c.GetRates(context.Background(), "USD")
	assert.Equal(t, 0.5, got["EUR"])
	assert.Equal(t, 1, p.fetches)
}

func TestHTTPProviderFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "EUR", r.URL.Query().Get("from"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"EUR","rates":{"USD":1.08,"GBP":0.85}}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL)
	rates, err := p.Fetch(context.Background(), "EUR")
	require.NoError(t, err)
	assert.Equal(t, 1.08, rates["USD"])
	assert.Equal(t, 0.85, rates["GBP"])
}

func TestHTTPProviderNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL)
	_, err := p.Fetch(context.Background(), "EUR")
	require.Error(t, err)
}
