package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"carfest-ticketing/internal/config"
	"carfest-ticketing/internal/models"
)

// Producer publishes festival events. Publishing is fire-and-forget for
// callers: they log a returned error and move on, never roll back.
type Producer struct {
	writer *kafka.Writer
	topics config.TopicConfig
}

func NewProducer(brokers []string, topics config.TopicConfig) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{writer: writer, topics: topics}
}

func (p *Producer) publish(topic, key string, payload interface{}) error {
	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: msgBytes,
		},
	)
}

// PublishOrderCompleted streams an order completion with its issued
// ticket count to downstream consumers (notification senders, reporting).
func (p *Producer) PublishOrderCompleted(order models.Order) error {
	return p.publish(p.topics.OrderCompleted, order.OrderNumber, order)
}

// PublishEntryVerified streams one gate verification attempt.
func (p *Producer) PublishEntryVerified(log models.EntryLog) error {
	return p.publish(p.topics.EntryVerified, log.Code, log)
}

// PublishVendorRegistered streams a new vendor registration.
func (p *Producer) PublishVendorRegistered(vendor models.Vendor) error {
	return p.publish(p.topics.VendorRegistered, vendor.VendorID, vendor)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
