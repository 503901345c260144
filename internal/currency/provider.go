package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Provider fetches fresh rates for a base currency from an external
// source.
type Provider interface {
	Fetch(ctx context.Context, base string) (Rates, error)
}

// HTTPProvider calls a frankfurter-style endpoint:
// GET {base}/latest?from=EUR -> {"rates": {"USD": 1.08, ...}}.
type HTTPProvider struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *HTTPProvider) Fetch(ctx context.Context, base string) (Rates, error) {
	u := p.BaseURL + "/latest?from=" + url.QueryEscape(base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("rate provider status %d", resp.StatusCode)
	}

	var body struct {
		Rates Rates `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Rates == nil {
		body.Rates = Rates{}
	}
	return body.Rates, nil
}
