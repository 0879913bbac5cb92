package routing

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

const DefaultOSRMURL = "https://router.project-osrm.org"

const codeNoRoute = "NoRoute"

type routeResponse struct {
	Code   string      `json:"code"`
	Routes []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Geometry struct {
		Coordinates [][]float64 `json:"coordinates"`
	} `json:"geometry"`
}

// OSRMRouter implements ports.Router against an OSRM-compatible routing service.
type OSRMRouter struct {
	client *httpx.Client
}

func NewOSRMRouter(baseURL string, timeout time.Duration, opts ...httpx.Option) (*OSRMRouter, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("osrm base url is empty")
	}

	return &OSRMRouter{client: httpx.NewClient(baseURL, timeout, opts...)}, nil
}

// Routes returns driving routes from origin to destination, best first.
// An unroutable pair yields zero candidates and no error.
func (o *OSRMRouter) Routes(
	ctx context.Context,
	origin, destination domain.Coordinate,
	alternatives bool,
) (_ []domain.RouteCandidate, err error) {
	defer obs.Time(ctx, "osrm.Routes")(&err)

	path := fmt.Sprintf("/route/v1/driving/%s;%s", lonLatParam(origin), lonLatParam(destination))

	q := url.Values{}
	q.Set("geometries", "geojson")
	q.Set("overview", "full")
	q.Set("alternatives", strconv.FormatBool(alternatives))

	var decoded routeResponse
	if err := o.client.GetJSON(ctx, path, q, &decoded); err != nil {
		// OSRM answers unroutable pairs with 400 and a NoRoute code.
		var se *httpx.StatusError
		if errors.As(err, &se) && bodyCode(se.Body) == codeNoRoute {
			return []domain.RouteCandidate{}, nil
		}
		return nil, fmt.Errorf("osrm route %s -> %s: %w", origin, destination, err)
	}

	switch decoded.Code {
	case codeNoRoute:
		return []domain.RouteCandidate{}, nil
	case "Ok":
	default:
		return nil, fmt.Errorf("osrm route %s -> %s: code %q: %w", origin, destination, decoded.Code, domain.ErrMalformedResponse)
	}
	if len(decoded.Routes) == 0 {
		return []domain.RouteCandidate{}, nil
	}

	out := make([]domain.RouteCandidate, 0, len(decoded.Routes))
	for i, r := range decoded.Routes {
		geometry := make([]domain.Coordinate, 0, len(r.Geometry.Coordinates))
		for _, p := range r.Geometry.Coordinates {
			if len(p) < 2 {
				return nil, fmt.Errorf("osrm route %d: short coordinate %v: %w", i, p, domain.ErrMalformedResponse)
			}
			geometry = append(geometry, domain.Coordinate{Lat: p[1], Lon: p[0]})
		}

		out = append(out, domain.RouteCandidate{
			Geometry:        geometry,
			DistanceMeters:  r.Distance,
			DurationSeconds: r.Duration,
		})
	}

	return out, nil
}

// OSRM takes points as "lon,lat".
func lonLatParam(c domain.Coordinate) string {
	ll := c.LonLat()
	return strconv.FormatFloat(ll[0], 'f', -1, 64) + "," + strconv.FormatFloat(ll[1], 'f', -1, 64)
}

func bodyCode(body string) string {
	var v struct {
		Code string `json:"code"`
	}
	if json.Unmarshal([]byte(body), &v) != nil {
		return ""
	}
	return v.Code
}
