package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"shop/internal/domain/model"
	"shop/internal/observability"
	"shop/internal/usecase"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	defaultRetryBase = 100 * time.Millisecond
	defaultRetryMax  = 5 * time.Second
)

// 注文確定イベントの適用先
type OrderPlacedHandler interface {
	ApplyOrderPlaced(ctx context.Context, event model.OrderPlacedEvent) error
}

type OrderPlacedConsumer struct {
	reader  MessageReader
	handler OrderPlacedHandler
	topic   string
	metrics *observability.Metrics
	logger  *zap.Logger

	retryBase time.Duration
	retryMax  time.Duration
}

func NewOrderPlacedConsumer(reader MessageReader, handler OrderPlacedHandler, topic string, metrics *observability.Metrics, logger *zap.Logger) *OrderPlacedConsumer {
	return &OrderPlacedConsumer{
		reader:    reader,
		handler:   handler,
		topic:     topic,
		metrics:   metrics,
		logger:    logger,
		retryBase: defaultRetryBase,
		retryMax:  defaultRetryMax,
	}
}

// Run はctxが終わるまでメッセージを読み続ける。
// 処理が確定したメッセージだけコミットするので、途中で落ちても再配信される
func (c *OrderPlacedConsumer) Run(ctx context.Context) error {
	c.logger.Info("order placed consumer started", zap.String("topic", c.topic))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			c.logger.Error("fetch kafka message failed", zap.Error(err))
			continue
		}

		if !c.handleWithRetry(ctx, msg) {
			break
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				break
			}
			c.logger.Error("commit kafka message failed",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}

	c.logger.Info("order placed consumer stopped")
	return nil
}

// 一時的な失敗は同じメッセージをバックオフしながら再処理。ctx終了ならfalse
func (c *OrderPlacedConsumer) handleWithRetry(ctx context.Context, msg kafka.Message) bool {
	wait := c.retryBase
	for attempt := 1; ; attempt++ {
		err := c.Handle(ctx, msg)
		if err == nil {
			return true
		}

		c.logger.Warn("retry order placed message",
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
		wait *= 2
		if wait > c.retryMax {
			wait = c.retryMax
		}
	}
}

// 1メッセージ処理。
// 結果が確定したもの（在庫不足や不正イベントを含む）はnilでコミット可、それ以外はリトライ対象のエラー
func (c *OrderPlacedConsumer) Handle(ctx context.Context, msg kafka.Message) error {
	msgCtx := extractTraceContext(ctx, msg.Headers)

	var event model.OrderPlacedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.metrics.EventsConsumed.WithLabelValues(c.topic, "invalid").Inc()
		c.logger.Error("invalid order placed payload",
			zap.Error(err),
			zap.ByteString("key", msg.Key),
			zap.Int64("offset", msg.Offset),
		)
		return nil
	}

	err := c.handler.ApplyOrderPlaced(msgCtx, event)
	switch {
	case err == nil:
		c.metrics.EventsConsumed.WithLabelValues(c.topic, "ok").Inc()
		return nil
	case errors.Is(err, usecase.ErrInsufficientStock):
		c.metrics.EventsConsumed.WithLabelValues(c.topic, "insufficient_stock").Inc()
		c.logger.Warn("order placed but stock insufficient",
			zap.String("order_number", event.OrderNumber),
			zap.Error(err),
		)
		return nil
	case errors.Is(err, usecase.ErrInvalidEvent):
		c.metrics.EventsConsumed.WithLabelValues(c.topic, "invalid").Inc()
		c.logger.Error("invalid order placed event", zap.String("order_number", event.OrderNumber))
		return nil
	default:
		c.metrics.EventsConsumed.WithLabelValues(c.topic, "error").Inc()
		c.logger.Error("apply order placed failed",
			zap.String("order_number", event.OrderNumber),
			zap.Error(err),
		)
		return err
	}
}

func (c *OrderPlacedConsumer) Close() error {
	return c.reader.Close()
}
