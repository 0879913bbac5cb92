package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NLlemain/ride-comparing/internal/domain"
	"github.com/NLlemain/ride-comparing/internal/platform/obs"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const DefaultQuoteTopic = "ride.quotes"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaQuotePublisher implements ports.QuoteSink on a Kafka topic.
// Messages are keyed by session id so one session's quotes stay ordered.
type KafkaQuotePublisher struct {
	writer messageWriter
	logger *zap.Logger
}

func NewKafkaQuotePublisher(brokers []string, topic string, logger *zap.Logger) (*KafkaQuotePublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka quote publisher: no brokers")
	}
	if topic == "" {
		topic = DefaultQuoteTopic
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &KafkaQuotePublisher{writer: w, logger: logger}, nil
}

func (p *KafkaQuotePublisher) PublishQuote(ctx context.Context, q domain.Quote) (err error) {
	defer obs.Time(ctx, "kafka.PublishQuote")(&err)

	ce, err := NewCloudEvent(EventSource, TypeQuoteIssued, quotePayload(q))
	if err != nil {
		return fmt.Errorf("publish quote: %w", err)
	}

	value, err := json.Marshal(ce)
	if err != nil {
		return fmt.Errorf("publish quote: encode envelope: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(q.SessionID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "ce_type", Value: []byte(ce.Type)},
		},
	}); err != nil {
		return fmt.Errorf("publish quote session=%s: %w", q.SessionID, err)
	}

	p.logger.Debug("quote published", zap.String("session_id", q.SessionID), zap.String("event_id", ce.ID))
	return nil
}

func (p *KafkaQuotePublisher) Close() error {
	return p.writer.Close()
}

func quotePayload(q domain.Quote) QuoteIssued {
	fares := make([]farePayload, 0, len(q.Fares))
	for _, f := range q.Fares {
		fp := farePayload{
			Provider: f.Provider,
			Amount:   f.Estimate.Amount,
			Currency: f.Estimate.Currency,
			Display:  f.Display(),
		}
		if f.Err != nil {
			fp.Error = f.Err.Error()
		}
		fares = append(fares, fp)
	}

	return QuoteIssued{
		SessionID:       q.SessionID,
		Origin:          coordinatePayload{Lat: q.Origin.Lat, Lon: q.Origin.Lon},
		Dropoff:         coordinatePayload{Lat: q.Dropoff.Lat, Lon: q.Dropoff.Lon},
		DistanceMeters:  q.DistanceMeters,
		DurationSeconds: q.DurationSeconds,
		Fares:           fares,
		QuotedAt:        q.QuotedAt,
	}
}

// NoopQuoteSink discards quotes. It is used when no brokers are configured.
type NoopQuoteSink struct{}

func (NoopQuoteSink) PublishQuote(context.Context, domain.Quote) error { return nil }
