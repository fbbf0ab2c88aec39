package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"shop/internal/domain/model"
	"shop/internal/observability"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type OrderEventPublisher struct {
	writer  MessageWriter
	topic   string
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewOrderEventPublisher(writer MessageWriter, topic string, metrics *observability.Metrics, logger *zap.Logger) *OrderEventPublisher {
	return &OrderEventPublisher{
		writer:  writer,
		topic:   topic,
		metrics: metrics,
		logger:  logger,
	}
}

// 注文番号をキーにする（同じ注文は同じパーティション）
func (p *OrderEventPublisher) PublishOrderPlaced(ctx context.Context, event model.OrderPlacedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order placed event: %w", err)
	}

	msg := kafka.Message{
		Key:     []byte(event.OrderNumber),
		Value:   payload,
		Headers: injectTraceContext(ctx),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.EventsPublished.WithLabelValues(p.topic, "error").Inc()
		return fmt.Errorf("write order placed event: %w", err)
	}

	p.metrics.EventsPublished.WithLabelValues(p.topic, "ok").Inc()
	p.logger.Debug("order placed event published", zap.String("order_number", event.OrderNumber))
	return nil
}

func (p *OrderEventPublisher) Close() error {
	return p.writer.Close()
}

// KAFKA_BROKERS未設定のとき用
type NopPublisher struct {
	Logger *zap.Logger
}

func (n NopPublisher) PublishOrderPlaced(ctx context.Context, event model.OrderPlacedEvent) error {
	if n.Logger != nil {
		n.Logger.Debug("messaging disabled, order placed event dropped", zap.String("order_number", event.OrderNumber))
	}
	return nil
}
