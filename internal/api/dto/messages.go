package dto

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NLlemain/ride-comparing/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Inbound message types.
const (
	TypeGeolocation       = "geolocation"
	TypeMapClick          = "map_click"
	TypeAddressInput      = "address_input"
	TypeSelectSuggestion  = "select_suggestion"
	TypeSubmitDestination = "submit_destination"
	TypeRouteClick        = "route_click"
	TypeReset             = "reset"
)

// Outbound message types.
const (
	TypeSession           = "session"
	TypeFieldText         = "field_text"
	TypeSuggestions       = "suggestions"
	TypeSuggestionsHidden = "suggestions_hidden"
	TypeFare              = "fare"
	TypeMarker            = "marker"
	TypePolyline          = "polyline"
	TypeStyle             = "style"
	TypePopup             = "popup"
	TypeRemoveLayer       = "remove_layer"
	TypeSetView           = "set_view"
	TypeError             = "error"
)

// ClientMessage is one user event sent by the browser.
// Only the fields listed for its type in requiredFields are validated.
type ClientMessage struct {
	Type    string   `json:"type" validate:"required,oneof=geolocation map_click address_input select_suggestion submit_destination route_click reset"`
	Lat     *float64 `json:"lat,omitempty" validate:"required,latitude"`
	Lon     *float64 `json:"lon,omitempty" validate:"required,longitude"`
	Field   string   `json:"field,omitempty" validate:"required,oneof=start end"`
	Text    string   `json:"text,omitempty" validate:"max=512"`
	Index   *int     `json:"index,omitempty" validate:"required,min=0"`
	LayerID string   `json:"layer_id,omitempty" validate:"required,uuid"`
}

var requiredFields = map[string][]string{
	TypeGeolocation:       {"Lat", "Lon"},
	TypeMapClick:          {"Lat", "Lon"},
	TypeAddressInput:      {"Field", "Text"},
	TypeSelectSuggestion:  {"Field", "Index"},
	TypeSubmitDestination: {"Text"},
	TypeRouteClick:        {"LayerID"},
	TypeReset:             {},
}

// ParseClientMessage decodes and validates one inbound frame.
func ParseClientMessage(raw []byte, v *validator.Validate) (ClientMessage, error) {
	var m ClientMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return ClientMessage{}, errors.New("invalid json message")
	}

	if err := v.StructPartial(m, "Type"); err != nil {
		return ClientMessage{}, fmt.Errorf("invalid message type %q", m.Type)
	}

	fields := requiredFields[m.Type]
	if len(fields) == 0 {
		return m, nil
	}
	if err := v.StructPartial(m, fields...); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return ClientMessage{}, fmt.Errorf("invalid %s message: field %s failed %q", m.Type, verrs[0].Field(), verrs[0].Tag())
		}
		return ClientMessage{}, fmt.Errorf("invalid %s message: %w", m.Type, err)
	}

	return m, nil
}

func (m ClientMessage) Coordinate() domain.Coordinate {
	var c domain.Coordinate
	if m.Lat != nil {
		c.Lat = *m.Lat
	}
	if m.Lon != nil {
		c.Lon = *m.Lon
	}
	return c
}

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewPoint(c domain.Coordinate) Point {
	return Point{Lat: c.Lat, Lon: c.Lon}
}

type Suggestion struct {
	Index       int    `json:"index"`
	DisplayName string `json:"display_name"`
	Point
}

type Style struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
	Weight  int     `json:"weight"`
}

// ServerMessage is one display command pushed to the browser.
type ServerMessage struct {
	Type        string       `json:"type"`
	SessionID   string       `json:"session_id,omitempty"`
	Field       string       `json:"field,omitempty"`
	Text        *string      `json:"text,omitempty"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
	Provider    string       `json:"provider,omitempty"`
	LayerID     string       `json:"layer_id,omitempty"`
	At          *Point       `json:"at,omitempty"`
	Path        []Point      `json:"path,omitempty"`
	Style       *Style       `json:"style,omitempty"`
	Popup       *string      `json:"popup,omitempty"`
	Zoom        int          `json:"zoom,omitempty"`
	Error       string       `json:"error,omitempty"`
}
