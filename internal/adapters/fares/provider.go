package fares

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/NLlemain/ride-comparing/internal/domain"
	"github.com/NLlemain/ride-comparing/internal/platform/httpx"
	"github.com/NLlemain/ride-comparing/internal/platform/obs"
)

// Normalizes a provider payload to an amount in major units and a currency.
// A nil amount means the provider returned no estimate.
type payloadParser func(raw json.RawMessage) (amount *float64, currency string, err error)

// Builds the provider query for a trip.
type queryBuilder func(origin, destination domain.Coordinate) url.Values

// Provider is one ride-hailing price endpoint. It implements ports.FareProvider.
type Provider struct {
	name   string
	path   string
	client *httpx.Client
	query  queryBuilder
	parse  payloadParser
}

func newProvider(
	name, baseURL, path, token string,
	timeout time.Duration,
	query queryBuilder,
	parse payloadParser,
	opts ...httpx.Option,
) (*Provider, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("%s base url is empty", name)
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%s api token is empty", name)
	}

	opts = append([]httpx.Option{httpx.WithBearerToken(token)}, opts...)
	return &Provider{
		name:   name,
		path:   path,
		client: httpx.NewClient(baseURL, timeout, opts...),
		query:  query,
		parse:  parse,
	}, nil
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Estimate(ctx context.Context, origin, destination domain.Coordinate) (_ domain.FareEstimate, err error) {
	defer obs.Time(ctx, p.name+".Estimate")(&err)

	var raw json.RawMessage
	if err := p.client.GetJSON(ctx, p.path, p.query(origin, destination), &raw); err != nil {
		return domain.FareEstimate{}, fmt.Errorf("%s estimate: %w", p.name, err)
	}

	amount, currency, err := p.parse(raw)
	if err != nil {
		return domain.FareEstimate{}, fmt.Errorf("%s estimate: %w", p.name, err)
	}
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	return domain.FareEstimate{Provider: p.name, Amount: amount, Currency: currency}, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Query style shared by the providers that spell out latitude/longitude.
func longFormQuery(origin, destination domain.Coordinate) url.Values {
	q := url.Values{}
	q.Set("start_latitude", formatCoord(origin.Lat))
	q.Set("start_longitude", formatCoord(origin.Lon))
	q.Set("end_latitude", formatCoord(destination.Lat))
	q.Set("end_longitude", formatCoord(destination.Lon))
	return q
}

func decodePayload(raw json.RawMessage, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Join(domain.ErrMalformedResponse, err)
	}
	return nil
}

func centsToMajor(cents *float64) *float64 {
	if cents == nil {
		return nil
	}
	v := *cents / 100
	return &v
}
