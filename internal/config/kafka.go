package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/segmentio/kafka-go"
)

const (
	TopicOrdersCreated      = "orders.created"
	TopicInventoryUpdates   = "inventory.updates"
	TopicNotificationsEmail = "notifications.email"
	TopicRecipesGenerated   = "recipes.generated"
)

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{}, // Balancer for selecting partition
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
}

// EnsureTopics creates the application topics on the controller broker.
// Order and inventory topics are partitioned by key across 3 partitions;
// notification and recipe topics are single-partition. Replication factor 1
// assumes a single-broker deployment.
func EnsureTopics(brokers []string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}

	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}

	controllerConn, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return err
	}
	defer controllerConn.Close()

	return controllerConn.CreateTopics(
		kafka.TopicConfig{Topic: TopicOrdersCreated, NumPartitions: 3, ReplicationFactor: 1},
		kafka.TopicConfig{Topic: TopicInventoryUpdates, NumPartitions: 3, ReplicationFactor: 1},
		kafka.TopicConfig{Topic: TopicNotificationsEmail, NumPartitions: 1, ReplicationFactor: 1},
		kafka.TopicConfig{Topic: TopicRecipesGenerated, NumPartitions: 1, ReplicationFactor: 1},
	)
}
