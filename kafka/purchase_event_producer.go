package kafka

import (
	"context"
	"encoding/json"

	"purchase-service/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// PurchaseEventProducer publishes purchase events, keyed by receipt ID
// so events for one purchase stay ordered within a partition.
type PurchaseEventProducer struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewPurchaseEventProducer(brokers []string, topic string, log *zap.Logger) *PurchaseEventProducer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka producer initialized",
		zap.String("topic", topic),
		zap.Strings("brokers", brokers),
	)
	return &PurchaseEventProducer{writer: w, log: log}
}

func (p *PurchaseEventProducer) Publish(ctx context.Context, event models.PurchaseEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.ReceiptID),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("Failed to send purchase event",
			zap.String("event_type", event.Type),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (p *PurchaseEventProducer) Close() {
	_ = p.writer.Close()
}
