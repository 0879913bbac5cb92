package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource     = "ride-comparing"
	TypeQuoteIssued = "ride.quote.issued"
)

// CloudEvent is the envelope written to the quote topic.
type CloudEvent struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Source          string          `json:"source"`
	Type            string          `json:"type"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
}

func NewCloudEvent(source, eventType string, data any) (CloudEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return CloudEvent{}, fmt.Errorf("encode event data: %w", err)
	}

	return CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.NewString(),
		Source:          source,
		Type:            eventType,
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            raw,
	}, nil
}

// ParseData decodes the event payload into v.
func (e CloudEvent) ParseData(v any) error {
	return json.Unmarshal(e.Data, v)
}

type coordinatePayload struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type farePayload struct {
	Provider string   `json:"provider"`
	Amount   *float64 `json:"amount,omitempty"`
	Currency string   `json:"currency,omitempty"`
	Display  string   `json:"display"`
	Error    string   `json:"error,omitempty"`
}

// QuoteIssued is the data of a ride.quote.issued event.
type QuoteIssued struct {
	SessionID       string            `json:"session_id"`
	Origin          coordinatePayload `json:"origin"`
	Dropoff         coordinatePayload `json:"dropoff"`
	DistanceMeters  float64           `json:"distance_meters"`
	DurationSeconds float64           `json:"duration_seconds"`
	Fares           []farePayload     `json:"fares"`
	QuotedAt        time.Time         `json:"quoted_at"`
}
