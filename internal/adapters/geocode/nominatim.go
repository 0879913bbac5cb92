package geocode

import (
	"context"
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

const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

type searchResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

type reverseResult struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// NominatimGeocoder implements ports.Geocoder against a Nominatim-compatible service.
type NominatimGeocoder struct {
	client *httpx.Client
}

func NewNominatimGeocoder(baseURL, userAgent string, timeout time.Duration, opts ...httpx.Option) (*NominatimGeocoder, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("nominatim base url is empty")
	}
	if strings.TrimSpace(userAgent) == "" {
		return nil, errors.New("nominatim user agent is empty")
	}

	opts = append([]httpx.Option{httpx.WithHeader("User-Agent", userAgent)}, opts...)
	return &NominatimGeocoder{client: httpx.NewClient(baseURL, timeout, opts...)}, nil
}

// Search resolves free text to address candidates (/search).
func (n *NominatimGeocoder) Search(
	ctx context.Context,
	query string,
	limit int,
) (_ []domain.AddressSuggestion, err error) {
	defer obs.Time(ctx, "nominatim.Search")(&err)

	if limit <= 0 {
		limit = 1
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("addressdetails", "1")
	q.Set("limit", strconv.Itoa(limit))

	var decoded []searchResult
	if err := n.client.GetJSON(ctx, "/search", q, &decoded); err != nil {
		return nil, fmt.Errorf("nominatim search %q: %w", query, err)
	}

	out := make([]domain.AddressSuggestion, 0, len(decoded))
	for i, r := range decoded {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lon, lonErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lonErr != nil {
			return nil, fmt.Errorf(
				"nominatim search %q: result %d has invalid coordinates (%q, %q): %w",
				query, i, r.Lat, r.Lon, domain.ErrMalformedResponse,
			)
		}

		out = append(out, domain.AddressSuggestion{
			DisplayName: r.DisplayName,
			Coordinate:  domain.Coordinate{Lat: lat, Lon: lon},
		})
	}

	return out, nil
}

// Reverse resolves a coordinate to the display name of the nearest address (/reverse).
func (n *NominatimGeocoder) Reverse(ctx context.Context, c domain.Coordinate) (_ string, err error) {
	defer obs.Time(ctx, "nominatim.Reverse")(&err)

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(c.Lon, 'f', -1, 64))
	q.Set("format", "json")

	var decoded reverseResult
	if err := n.client.GetJSON(ctx, "/reverse", q, &decoded); err != nil {
		return "", fmt.Errorf("nominatim reverse %s: %w", c, err)
	}

	if decoded.Error != "" || strings.TrimSpace(decoded.DisplayName) == "" {
		return "", fmt.Errorf("nominatim reverse %s: %w", c, domain.ErrNotFound)
	}

	return decoded.DisplayName, nil
}
