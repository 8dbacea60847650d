package kafka_client

import "time"

const (
	KAFKA_TOPIC_SENTIMENT_RESULTS = "sentiment-results" // classified sentences
)

const (
	MAX_RETRIES      = 3
	DELIVERY_WAIT    = 10 * time.Second
	FLUSH_TIMEOUT_MS = 5000
)
