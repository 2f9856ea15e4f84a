package config

import (
	"strings"

	"github.com/segmentio/kafka-go"
)

func brokerURLs(cfg KafkaConfig) []string {
	var brokers []string
	for _, b := range cfg.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// NewKafkaWriter returns nil when no brokers are configured.
func NewKafkaWriter(cfg KafkaConfig) *kafka.Writer {
	brokers := brokerURLs(cfg)
	if len(brokers) == 0 {
		return nil
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{}, // Balancer for selecting partition
		AllowAutoTopicCreation: true,
	}
}
