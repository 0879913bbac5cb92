package services

import (
	"slices"
	"sync"

	"github.com/NLlemain/ride-comparing/internal/domain"
	"github.com/NLlemain/ride-comparing/internal/ports"
	"github.com/google/uuid"
)

const (
	RouteColor       = "blue"
	RouteWeight      = 5
	HighlightOpacity = 0.7
	DimOpacity       = 0.3

	UserMarkerPopup = "You are here"
)

var (
	highlightedStyle = ports.PolylineStyle{Color: RouteColor, Opacity: HighlightOpacity, Weight: RouteWeight}
	dimStyle         = ports.PolylineStyle{Color: RouteColor, Opacity: DimOpacity, Weight: RouteWeight}
)

// OverlayManager owns the map overlays of one session and mirrors every
// change onto its Canvas.
//
// Invariant: the highlighted layer, if any, is one of the current route layers.
type OverlayManager struct {
	mu     sync.Mutex
	canvas ports.Canvas
	newID  func() string

	user        string
	dropoff     string
	routes      []string
	highlighted string
}

func NewOverlayManager(canvas ports.Canvas) *OverlayManager {
	return &OverlayManager{canvas: canvas, newID: uuid.NewString}
}

// SetUserMarker replaces the user marker.
func (m *OverlayManager) SetUserMarker(at domain.Coordinate) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user != "" {
		m.canvas.RemoveLayer(m.user)
	}
	m.user = m.newID()
	m.canvas.AddMarker(m.user, at, UserMarkerPopup)
}

// SetDropoffMarker replaces the dropoff marker.
func (m *OverlayManager) SetDropoffMarker(at domain.Coordinate, popup string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dropoff != "" {
		m.canvas.RemoveLayer(m.dropoff)
	}
	m.dropoff = m.newID()
	m.canvas.AddMarker(m.dropoff, at, popup)
}

// SetDropoffPopup attaches text to the dropoff marker, if one is placed.
func (m *OverlayManager) SetDropoffPopup(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dropoff == "" {
		return
	}
	m.canvas.SetPopup(m.dropoff, text)
}

// RenderRoutes replaces the route overlays. The first route starts highlighted.
func (m *OverlayManager) RenderRoutes(routes []domain.RouteCandidate) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clearRoutesLocked()

	for i, r := range routes {
		id := m.newID()
		style := dimStyle
		if i == 0 {
			style = highlightedStyle
			m.highlighted = id
		}
		m.canvas.AddPolyline(id, r.Geometry, style, r.RoutePopup(i+1))
		m.routes = append(m.routes, id)
	}
}

// Highlight promotes a route layer and demotes the previous one.
// It reports false for ids that are not current route layers.
func (m *OverlayManager) Highlight(layerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.Contains(m.routes, layerID) {
		return false
	}
	if layerID == m.highlighted {
		return true
	}

	if m.highlighted != "" {
		m.canvas.SetPolylineStyle(m.highlighted, dimStyle)
	}
	m.canvas.SetPolylineStyle(layerID, highlightedStyle)
	m.highlighted = layerID
	return true
}

// ClearAll removes the dropoff marker and every route. The user marker stays.
func (m *OverlayManager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dropoff != "" {
		m.canvas.RemoveLayer(m.dropoff)
		m.dropoff = ""
	}
	m.clearRoutesLocked()
}

// Recenter moves the map view.
func (m *OverlayManager) Recenter(center domain.Coordinate, zoom int) {
	m.canvas.SetView(center, zoom)
}

func (m *OverlayManager) clearRoutesLocked() {
	for _, id := range m.routes {
		m.canvas.RemoveLayer(id)
	}
	m.routes = nil
	m.highlighted = ""
}

func (m *OverlayManager) Highlighted() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.highlighted
}

func (m *OverlayManager) RouteLayers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.routes)
}

func (m *OverlayManager) Dropoff() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropoff
}

func (m *OverlayManager) User() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}
