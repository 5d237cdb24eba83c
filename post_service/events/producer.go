package events

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
	"github.com/MinhaulMahmud/PersonalBlog/post_service/models"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

const DefaultTopic = "post-events"

type Publisher interface {
	Publish(ctx context.Context, ev bindings.PostEvent) error
	Close()
}

// Producer appends post events to the Kafka event log, keyed by post id so
// the events of one post stay ordered.
type Producer struct {
	p      *kafka.Producer
	topic  string
	logger *zap.Logger
}

func NewProducer(config models.KafkaConfig, logger *zap.Logger) (*Producer, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  config.BootStrapServers,
		"acks":               "all",
		"enable.idempotence": true,
		"linger.ms":          5,
	})
	if err != nil {
		logger.Error("Error in intiallizing a kafka producer", zap.Error(err))
		return nil, err
	}
	topic := config.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	return &Producer{p: p, topic: topic, logger: logger}, nil
}

func (pr *Producer) Publish(ctx context.Context, ev bindings.PostEvent) error {
	msg, err := newMessage(pr.topic, ev)
	if err != nil {
		return err
	}
	delivery := make(chan kafka.Event, 1)
	if err := pr.p.Produce(msg, delivery); err != nil {
		return err
	}
	select {
	case e := <-delivery:
		m, ok := e.(*kafka.Message)
		if !ok {
			return errors.New("unexpected delivery event")
		}
		return m.TopicPartition.Error
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (pr *Producer) Close() {
	if remaining := pr.p.Flush(5000); remaining > 0 {
		pr.logger.Warn("kafka producer closed with undelivered events", zap.Int("remaining", remaining))
	}
	pr.p.Close()
}

func newMessage(topic string, ev bindings.PostEvent) (*kafka.Message, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(ev.PostId),
		Value:          payload,
	}, nil
}
