package routing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NLlemain/ride-comparing/internal/domain"
	"github.com/NLlemain/ride-comparing/internal/platform/httpx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	origin      = domain.Coordinate{Lat: 40.7128, Lon: -74.006}
	destination = domain.Coordinate{Lat: 40.7306, Lon: -73.9352}
)

func newTestRouter(t *testing.T, h http.HandlerFunc) *OSRMRouter {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	r, err := NewOSRMRouter(srv.URL, time.Second, httpx.WithRetry(1, time.Millisecond))
	require.NoError(t, err)
	return r
}

func TestOSRMRoutesSwapsCoordinatesAndKeepsOrder(t *testing.T) {
	r := newTestRouter(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/route/v1/driving/-74.006,40.7128;-73.9352,40.7306", req.URL.Path)
		assert.Equal(t, "geojson", req.URL.Query().Get("geometries"))
		assert.Equal(t, "full", req.URL.Query().Get("overview"))
		assert.Equal(t, "true", req.URL.Query().Get("alternatives"))

		_, _ = w.Write([]byte(`{
			"code": "Ok",
			"routes": [
				{"distance": 12345, "duration": 5000, "geometry": {"coordinates": [[-74.006, 40.7128], [-73.9352, 40.7306]]}},
				{"distance": 13000, "duration": 5400, "geometry": {"coordinates": [[-74.006, 40.7128], [-73.95, 40.74], [-73.9352, 40.7306]]}}
			]
		}`))
	})

	got, err := r.Routes(context.Background(), origin, destination, true)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 12345.0, got[0].DistanceMeters)
	assert.Equal(t, 5000.0, got[0].DurationSeconds)
	assert.Equal(t, []domain.Coordinate{origin, destination}, got[0].Geometry)
	assert.Len(t, got[1].Geometry, 3)
	assert.Equal(t, domain.Coordinate{Lat: 40.74, Lon: -73.95}, got[1].Geometry[1])
}

func TestOSRMRoutesNoRoute(t *testing.T) {
	r := newTestRouter(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"NoRoute","message":"Impossible route between points"}`))
	})

	got, err := r.Routes(context.Background(), origin, destination, true)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOSRMRoutesEmptyList(t *testing.T) {
	r := newTestRouter(t, func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[]}`))
	})

	got, err := r.Routes(context.Background(), origin, destination, false)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOSRMRoutesUnexpectedCode(t *testing.T) {
	r := newTestRouter(t, func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`{"code":"TooBig","routes":[{"distance":1,"duration":1,"geometry":{"coordinates":[]}}]}`))
	})

	_, err := r.Routes(context.Background(), origin, destination, true)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestOSRMRoutesUnexpectedCodeWithoutRoutes(t *testing.T) {
	r := newTestRouter(t, func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`{"code":"InvalidQuery","routes":[]}`))
	})

	got, err := r.Routes(context.Background(), origin, destination, true)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	assert.Nil(t, got)
}

func TestOSRMRoutesServerError(t *testing.T) {
	r := newTestRouter(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := r.Routes(context.Background(), origin, destination, true)
	var se *httpx.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
}
