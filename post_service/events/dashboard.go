package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
	"github.com/MinhaulMahmud/PersonalBlog/post_service/models"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DashboardWriter consumes the post event log and forwards every event to
// the dashboard streams of this instance.
type DashboardWriter struct {
	c      *kafka.Consumer
	hub    *Hub
	logger *zap.Logger
}

func NewDashboardWriter(config models.KafkaConfig, hub *Hub, logger *zap.Logger) (*DashboardWriter, error) {
	// every instance needs every event, so each one gets its own group unless told otherwise
	groupID := config.GroupID
	if groupID == "" {
		groupID = "post_service-dashboard-" + uuid.NewString()
	}
	offsetReset := config.OffsetReset
	if offsetReset == "" {
		offsetReset = "latest"
	}
	topic := config.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  config.BootStrapServers,
		"group.id":           groupID,
		"auto.offset.reset":  offsetReset,
		"auto.commit.enable": "false",
	})
	if err != nil {
		logger.Error("Error in intiallizing a kafka consumer", zap.Error(err))
		return nil, err
	}
	if err := c.SubscribeTopics([]string{topic}, nil); err != nil {
		c.Close()
		logger.Error("Error in subcribtion to topic", zap.String("topic", topic), zap.Error(err))
		return nil, err
	}

	return &DashboardWriter{
		c:      c,
		hub:    hub,
		logger: logger,
	}, nil
}

// Run polls until ctx is done.
func (dw *DashboardWriter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			ev := dw.c.Poll(100)
			switch e := ev.(type) {
			case *kafka.Message:
				if err := dw.ProcessMessage(e); err != nil {
					dw.logger.Warn("Error Processing Message", zap.Error(err))
					continue
				}
				if _, err := dw.c.CommitMessage(e); err != nil {
					dw.logger.Warn("Error committing offset", zap.Error(err))
				}
			case kafka.Error:
				dw.logger.Error("Error in Consuming events", zap.String("code", e.Code().String()), zap.Error(e))
			}
		}
	}
}

func (dw *DashboardWriter) ProcessMessage(msg *kafka.Message) error {
	var ev bindings.PostEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return err
	}
	switch ev.Type {
	case bindings.PostCreated, bindings.PostUpdated, bindings.PostDeleted, bindings.PostCountsChanged:
	default:
		return fmt.Errorf("unknown post event type %q", ev.Type)
	}
	if ev.PostId == "" {
		return fmt.Errorf("post event %q without post_id", ev.Type)
	}
	dw.hub.Broadcast(ev)
	return nil
}

func (dw *DashboardWriter) Close() error {
	return dw.c.Close()
}
