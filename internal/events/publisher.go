package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/hassanhitleap1/bagisto-karaz/internal/logger"
)

const Topic = "catalog-events"

// Event mirrors the shape consumed by downstream catalog workers.
type Event struct {
	Type      string                 `json:"type"`
	ProductID string                 `json:"product_id"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// Publisher emits import lifecycle events to Kafka. Publishing is strictly
// best-effort: a broker failure is a logged warning, never an import
// failure. A nil *Publisher is valid and publishes nothing.
type Publisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

// NewPublisher returns nil when no brokers are configured.
func NewPublisher(brokers string, logger *logger.Logger) *Publisher {
	if brokers == "" {
		return nil
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Topic:        Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: time.Second,
	}

	return &Publisher{
		writer: writer,
		logger: logger,
	}
}

func (p *Publisher) Publish(ctx context.Context, eventType, productID string, data map[string]interface{}) {
	if p == nil {
		return
	}

	event := Event{
		Type:      eventType,
		ProductID: productID,
		Data:      data,
		Timestamp: time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("failed to encode %s event: %v", eventType, err)
		return
	}

	message := kafka.Message{
		Key:   []byte(productID),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		p.logger.Warn("failed to publish %s event: %v", eventType, err)
	}
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
