package kafka_client

import "github.com/confluentinc/confluent-kafka-go/kafka"

type KafkaConfig struct {
	Broker   string
	ClientID string
}

func (c KafkaConfig) producerConfig() *kafka.ConfigMap {
	clientID := c.ClientID
	if clientID == "" {
		clientID = "sentiflow-kv"
	}
	return &kafka.ConfigMap{
		"bootstrap.servers":                     c.Broker,
		"client.id":                             clientID,
		"security.protocol":                     "PLAINTEXT",
		"api.version.request":                   "true",
		"enable.idempotence":                    true,
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 1,
	}
}
