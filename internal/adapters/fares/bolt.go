package fares

import (
	"encoding/json"
	"time"

	"github.com/NLlemain/ride-comparing/internal/platform/httpx"
)

const (
	ProviderBolt   = "bolt"
	DefaultBoltURL = "https://api.bolt.eu"
)

// Bolt reports cost in major units.
type boltPayload struct {
	Estimates []struct {
		Cost     *float64 `json:"cost"`
		Currency string   `json:"currency"`
	} `json:"estimates"`
}

// NewBolt returns the Bolt price estimate provider (/v1/estimates/price).
func NewBolt(baseURL, token string, timeout time.Duration, opts ...httpx.Option) (*Provider, error) {
	return newProvider(ProviderBolt, baseURL, "/v1/estimates/price", token, timeout, longFormQuery, parseBolt, opts...)
}

func parseBolt(raw json.RawMessage) (*float64, string, error) {
	var p boltPayload
	if err := decodePayload(raw, &p); err != nil {
		return nil, "", err
	}
	if len(p.Estimates) == 0 {
		return nil, "", nil
	}
	return p.Estimates[0].Cost, p.Estimates[0].Currency, nil
}
