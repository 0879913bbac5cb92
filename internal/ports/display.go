package ports

import "github.com/NLlemain/ride-comparing/internal/domain"

// Text surface of a session: the two inputs, their suggestion lists and the fare fields.
type View interface {
	SetFieldText(field domain.Field, text string)
	ShowSuggestions(field domain.Field, suggestions []domain.AddressSuggestion)
	HideSuggestions(field domain.Field)
	SetFare(provider string, text string)
}

// Style of a route polyline.
type PolylineStyle struct {
	Color   string
	Opacity float64
	Weight  int
}

// Map surface of a session. Layers are addressed by id.
type Canvas interface {
	AddMarker(id string, at domain.Coordinate, popup string)
	AddPolyline(id string, path []domain.Coordinate, style PolylineStyle, popup string)
	SetPolylineStyle(id string, style PolylineStyle)
	SetPopup(id string, popup string)
	RemoveLayer(id string)
	SetView(center domain.Coordinate, zoom int)
}
