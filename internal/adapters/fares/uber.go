package fares

import (
	"encoding/json"
	"time"

	"github.com/NLlemain/ride-comparing/internal/platform/httpx"
)

const (
	ProviderUber   = "uber"
	DefaultUberURL = "https://api.uber.com"
)

type uberPayload struct {
	Prices []struct {
		EstimatedCostCents *float64 `json:"estimated_cost_cents"`
		CurrencyCode       string   `json:"currency_code"`
	} `json:"prices"`
}

// NewUber returns the Uber price estimate provider (/v1.2/estimates/price).
func NewUber(baseURL, token string, timeout time.Duration, opts ...httpx.Option) (*Provider, error) {
	return newProvider(ProviderUber, baseURL, "/v1.2/estimates/price", token, timeout, longFormQuery, parseUber, opts...)
}

func parseUber(raw json.RawMessage) (*float64, string, error) {
	var p uberPayload
	if err := decodePayload(raw, &p); err != nil {
		return nil, "", err
	}
	if len(p.Prices) == 0 {
		return nil, "", nil
	}
	return centsToMajor(p.Prices[0].EstimatedCostCents), p.Prices[0].CurrencyCode, nil
}
