package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NLlemain/ride-comparing/internal/adapters/events"
	"github.com/NLlemain/ride-comparing/internal/adapters/fares"
	"github.com/NLlemain/ride-comparing/internal/adapters/mock"
	"github.com/NLlemain/ride-comparing/internal/api/dto"
	"github.com/NLlemain/ride-comparing/internal/api/handlers"
	"github.com/NLlemain/ride-comparing/internal/ports"
	"github.com/NLlemain/ride-comparing/internal/services"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()

	providers := make([]ports.FareProvider, 0, 3)
	for _, p := range mock.DefaultFareProviders() {
		providers = append(providers, p)
	}

	sessions := handlers.NewSessionHandler(services.Dependencies{
		Geocoder: mock.NewGeocoder(mock.DefaultPlaces),
		Router:   mock.NewRouter(),
		Fares:    fares.NewEstimator(logger, providers...),
		Quotes:   events.NoopQuoteSink{},
	}, logger)

	srv := httptest.NewServer(NewRouter(sessions, logger))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
}

// readUntil reads messages until match returns true and returns everything read.
func readUntil(t *testing.T, conn *websocket.Conn, match func(dto.ServerMessage) bool) []dto.ServerMessage {
	t.Helper()
	var seen []dto.ServerMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var m dto.ServerMessage
		require.NoError(t, conn.ReadJSON(&m))
		seen = append(seen, m)
		if match(m) {
			return seen
		}
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestHealthRejectsOtherMethods(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/health", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSessionOpensWithInitialView(t *testing.T) {
	conn := dial(t, newTestServer(t))

	seen := readUntil(t, conn, func(m dto.ServerMessage) bool { return m.Type == dto.TypeSetView })
	assert.Equal(t, dto.TypeSession, seen[0].Type)
	assert.NotEmpty(t, seen[0].SessionID)
	assert.Equal(t, services.InitialZoom, seen[len(seen)-1].Zoom)
}

func TestSessionComparesFares(t *testing.T) {
	conn := dial(t, newTestServer(t))
	readUntil(t, conn, func(m dto.ServerMessage) bool { return m.Type == dto.TypeSetView })

	send(t, conn, `{"type":"geolocation","lat":40.7359,"lon":-73.9911}`)
	readUntil(t, conn, func(m dto.ServerMessage) bool { return m.Type == dto.TypeSetView })

	send(t, conn, `{"type":"address_input","field":"end","text":"times"}`)
	seen := readUntil(t, conn, func(m dto.ServerMessage) bool { return m.Type == dto.TypeSuggestions })
	list := seen[len(seen)-1].Suggestions
	require.Len(t, list, 1)
	assert.Equal(t, "Times Square, Manhattan, New York", list[0].DisplayName)

	send(t, conn, `{"type":"select_suggestion","field":"end","index":0}`)

	quoted := map[string]string{}
	var polylines []dto.ServerMessage
	readUntil(t, conn, func(m dto.ServerMessage) bool {
		switch m.Type {
		case dto.TypePolyline:
			polylines = append(polylines, m)
		case dto.TypeFare:
			if m.Text != nil && *m.Text != "" {
				quoted[m.Provider] = *m.Text
			}
		}
		return len(quoted) == 3
	})

	require.Len(t, polylines, 2)
	assert.Equal(t, 0.7, polylines[0].Style.Opacity)
	assert.Equal(t, 0.3, polylines[1].Style.Opacity)
	for _, p := range []string{"uber", "lyft", "bolt"} {
		assert.True(t, strings.HasSuffix(quoted[p], " USD"), quoted[p])
	}

	send(t, conn, `{"type":"route_click","layer_id":"`+polylines[1].LayerID+`"}`)
	styles := readUntil(t, conn, func(m dto.ServerMessage) bool {
		return m.Type == dto.TypeStyle && m.LayerID == polylines[1].LayerID
	})
	last := styles[len(styles)-1]
	assert.Equal(t, 0.7, last.Style.Opacity)
}

func TestSessionRejectsInvalidMessages(t *testing.T) {
	conn := dial(t, newTestServer(t))
	readUntil(t, conn, func(m dto.ServerMessage) bool { return m.Type == dto.TypeSetView })

	send(t, conn, `{"type":"map_click","lat":123}`)
	seen := readUntil(t, conn, func(m dto.ServerMessage) bool { return m.Type == dto.TypeError })
	assert.Contains(t, seen[len(seen)-1].Error, "map_click")

	send(t, conn, `{"type":"select_suggestion","field":"end","index":3}`)
	seen = readUntil(t, conn, func(m dto.ServerMessage) bool { return m.Type == dto.TypeError })
	assert.Contains(t, seen[len(seen)-1].Error, "unknown suggestion")
}

func TestSessionKeepsKeystrokeOrder(t *testing.T) {
	conn := dial(t, newTestServer(t))
	readUntil(t, conn, func(m dto.ServerMessage) bool { return m.Type == dto.TypeSetView })

	for i := 0; i < 20; i++ {
		send(t, conn, `{"type":"address_input","field":"end","text":"times"}`)
		send(t, conn, `{"type":"address_input","field":"end","text":"ti"}`)
		send(t, conn, `{"type":"unknown"}`)

		seen := readUntil(t, conn, func(m dto.ServerMessage) bool { return m.Type == dto.TypeError })
		last := ""
		for _, m := range seen {
			if m.Type == dto.TypeSuggestions || m.Type == dto.TypeSuggestionsHidden {
				last = m.Type
			}
		}
		require.Equal(t, dto.TypeSuggestionsHidden, last, "round %d", i)
	}
}

func TestSessionLastSubmittedDestinationWins(t *testing.T) {
	conn := dial(t, newTestServer(t))
	readUntil(t, conn, func(m dto.ServerMessage) bool { return m.Type == dto.TypeSetView })

	send(t, conn, `{"type":"geolocation","lat":40.7069,"lon":-74.0113}`)
	send(t, conn, `{"type":"submit_destination","text":"times square"}`)
	send(t, conn, `{"type":"submit_destination","text":"union square"}`)

	union := dto.Point{Lat: 40.7359, Lon: -73.9911}
	var dropoffs []dto.Point
	quoted := map[string]bool{}
	readUntil(t, conn, func(m dto.ServerMessage) bool {
		switch m.Type {
		case dto.TypeMarker:
			if m.Popup != nil && *m.Popup != services.UserMarkerPopup {
				dropoffs = append(dropoffs, *m.At)
				clear(quoted)
			}
		case dto.TypeFare:
			if m.Text != nil && *m.Text != "" {
				quoted[m.Provider] = true
			}
		}
		return len(dropoffs) > 0 && dropoffs[len(dropoffs)-1] == union && len(quoted) == 3
	})

	assert.Equal(t, union, dropoffs[len(dropoffs)-1])
}

func TestSessionRoutesClickAfterGeolocation(t *testing.T) {
	conn := dial(t, newTestServer(t))
	readUntil(t, conn, func(m dto.ServerMessage) bool { return m.Type == dto.TypeSetView })

	send(t, conn, `{"type":"geolocation","lat":40.7069,"lon":-74.0113}`)
	send(t, conn, `{"type":"map_click","lat":40.758,"lon":-73.9855}`)

	seen := readUntil(t, conn, func(m dto.ServerMessage) bool { return m.Type == dto.TypePolyline })
	var end string
	for _, m := range seen {
		if m.Type == dto.TypeFieldText && m.Field == "end" && m.Text != nil {
			end = *m.Text
		}
	}
	assert.Equal(t, "Times Square, Manhattan, New York", end)
}
