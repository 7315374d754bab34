package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// StockReconciliation публикуется, когда списание остатка после уже
// сохранённого заказа не удалось: заказ существует, остаток не тронут.
// Событие разбирает отдельный процесс сверки, сам заказ не откатывается.
type StockReconciliation struct {
	EventID    string    `json:"event_id"`
	OrderID    string    `json:"order_id"`
	ProductID  string    `json:"product_id"`
	Quantity   int       `json:"quantity"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ReconciliationProducer пишет события сверки остатков в kafka
type ReconciliationProducer struct {
	log    *slog.Logger
	writer *kafka.Writer
}

func NewReconciliationProducer(log *slog.Logger, brokers, topic string) *ReconciliationProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &ReconciliationProducer{log: log, writer: writer}
}

// Publish отправляет событие. EventID проставляется здесь.
func (p *ReconciliationProducer) Publish(ctx context.Context, event StockReconciliation) error {
	const op = "events.ReconciliationProducer.Publish"

	event.EventID = uuid.NewString()
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal event: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: data,
	}); err != nil {
		return fmt.Errorf("%s: failed to publish event: %w", op, err)
	}

	p.log.Info("stock reconciliation event published",
		slog.String("event_id", event.EventID),
		slog.String("order_id", event.OrderID),
		slog.String("product_id", event.ProductID),
	)
	return nil
}

func (p *ReconciliationProducer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
