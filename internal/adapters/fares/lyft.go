package fares

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/NLlemain/ride-comparing/internal/domain"
	"github.com/NLlemain/ride-comparing/internal/platform/httpx"
)

const (
	ProviderLyft   = "lyft"
	DefaultLyftURL = "https://api.lyft.com"
)

type lyftPayload struct {
	CostEstimates []struct {
		EstimatedCostCents *float64 `json:"estimated_cost_cents"`
		Currency           string   `json:"currency"`
	} `json:"cost_estimates"`
}

// NewLyft returns the Lyft cost provider (/v1/cost).
func NewLyft(baseURL, token string, timeout time.Duration, opts ...httpx.Option) (*Provider, error) {
	return newProvider(ProviderLyft, baseURL, "/v1/cost", token, timeout, lyftQuery, parseLyft, opts...)
}

func lyftQuery(origin, destination domain.Coordinate) url.Values {
	q := url.Values{}
	q.Set("start_lat", formatCoord(origin.Lat))
	q.Set("start_lng", formatCoord(origin.Lon))
	q.Set("end_lat", formatCoord(destination.Lat))
	q.Set("end_lng", formatCoord(destination.Lon))
	return q
}

func parseLyft(raw json.RawMessage) (*float64, string, error) {
	var p lyftPayload
	if err := decodePayload(raw, &p); err != nil {
		return nil, "", err
	}
	if len(p.CostEstimates) == 0 {
		return nil, "", nil
	}
	return centsToMajor(p.CostEstimates[0].EstimatedCostCents), p.CostEstimates[0].Currency, nil
}
