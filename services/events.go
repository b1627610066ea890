package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

const (
	TopicEnrollmentConfirmed = "enrollment.confirmed"
	TopicReferralPaid        = "referral.paid"
	TopicEnquiryReceived     = "enquiry.received"
)

// EventPublisher emits domain events after their writes have committed.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

// Event is the envelope written to every topic
type Event struct {
	Type       string      `json:"event_type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// KafkaPublisher publishes events through a synchronous sarama producer
type KafkaPublisher struct {
	producer sarama.SyncProducer
}

// NewKafkaPublisher connects a sync producer to brokers
func NewKafkaPublisher(brokers []string) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, errors.Wrap(err, "connect kafka producer")
	}
	return NewKafkaPublisherWithProducer(producer), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(Event{Type: topic, OccurredAt: time.Now().UTC(), Data: payload})
	if err != nil {
		return errors.Wrapf(err, "marshal %s event", topic)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return errors.Wrapf(err, "send %s event", topic)
	}
	utils.LogDebug("Published %s event key=%s partition=%d offset=%d", topic, key, partition, offset)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher drops events; used when no broker is configured
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	return nil
}

// publishAfterCommit logs publish failures instead of failing a request whose writes already landed.
func publishAfterCommit(ctx context.Context, events EventPublisher, topic, key string, payload interface{}) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, topic, key, payload); err != nil {
		utils.LogError("Failed to publish %s event for %s: %v", topic, key, err)
	}
}
