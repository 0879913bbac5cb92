package handlers

import (
	"sync"
	"time"

	"github.com/NLlemain/ride-comparing/internal/api/dto"
	"github.com/NLlemain/ride-comparing/internal/domain"
	"github.com/NLlemain/ride-comparing/internal/ports"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// wsDisplay renders View and Canvas calls as ServerMessages on one connection.
// Writes are serialized; a failed write is logged and dropped.
type wsDisplay struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	logger *zap.Logger
}

func newWSDisplay(conn *websocket.Conn, logger *zap.Logger) *wsDisplay {
	return &wsDisplay{conn: conn, logger: logger}
}

func (d *wsDisplay) send(m dto.ServerMessage) {
	d.mu.Lock()
	defer d.mu.Unlock()

	_ = d.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := d.conn.WriteJSON(m); err != nil {
		d.logger.Debug("websocket write failed", zap.String("type", m.Type), zap.Error(err))
	}
}

func (d *wsDisplay) sendError(msg string) {
	d.send(dto.ServerMessage{Type: dto.TypeError, Error: msg})
}

func (d *wsDisplay) ping() error {
	return d.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (d *wsDisplay) SetFieldText(field domain.Field, text string) {
	d.send(dto.ServerMessage{Type: dto.TypeFieldText, Field: string(field), Text: ptr(text)})
}

func (d *wsDisplay) ShowSuggestions(field domain.Field, suggestions []domain.AddressSuggestion) {
	list := make([]dto.Suggestion, 0, len(suggestions))
	for i, s := range suggestions {
		list = append(list, dto.Suggestion{Index: i, DisplayName: s.DisplayName, Point: dto.NewPoint(s.Coordinate)})
	}
	d.send(dto.ServerMessage{Type: dto.TypeSuggestions, Field: string(field), Suggestions: list})
}

func (d *wsDisplay) HideSuggestions(field domain.Field) {
	d.send(dto.ServerMessage{Type: dto.TypeSuggestionsHidden, Field: string(field)})
}

func (d *wsDisplay) SetFare(provider string, text string) {
	d.send(dto.ServerMessage{Type: dto.TypeFare, Provider: provider, Text: ptr(text)})
}

func (d *wsDisplay) AddMarker(id string, at domain.Coordinate, popup string) {
	p := dto.NewPoint(at)
	d.send(dto.ServerMessage{Type: dto.TypeMarker, LayerID: id, At: &p, Popup: ptr(popup)})
}

func (d *wsDisplay) AddPolyline(id string, path []domain.Coordinate, style ports.PolylineStyle, popup string) {
	points := make([]dto.Point, 0, len(path))
	for _, c := range path {
		points = append(points, dto.NewPoint(c))
	}
	d.send(dto.ServerMessage{
		Type:    dto.TypePolyline,
		LayerID: id,
		Path:    points,
		Style:   toStyle(style),
		Popup:   ptr(popup),
	})
}

func (d *wsDisplay) SetPolylineStyle(id string, style ports.PolylineStyle) {
	d.send(dto.ServerMessage{Type: dto.TypeStyle, LayerID: id, Style: toStyle(style)})
}

func (d *wsDisplay) SetPopup(id string, popup string) {
	d.send(dto.ServerMessage{Type: dto.TypePopup, LayerID: id, Popup: ptr(popup)})
}

func (d *wsDisplay) RemoveLayer(id string) {
	d.send(dto.ServerMessage{Type: dto.TypeRemoveLayer, LayerID: id})
}

func (d *wsDisplay) SetView(center domain.Coordinate, zoom int) {
	p := dto.NewPoint(center)
	d.send(dto.ServerMessage{Type: dto.TypeSetView, At: &p, Zoom: zoom})
}

func toStyle(s ports.PolylineStyle) *dto.Style {
	return &dto.Style{Color: s.Color, Opacity: s.Opacity, Weight: s.Weight}
}
