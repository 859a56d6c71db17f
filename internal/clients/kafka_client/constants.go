package kafka_client

import "time"

const (
	KAFKA_TOPIC_DREAM_ENTRIES     = "dream-entries"     // journal entries submitted by other services
	KAFKA_TOPIC_ENTRY_ANALYZED    = "entry-analyzed"    // entries after analysis, keyed by entry id
	KAFKA_TOPIC_SUMMARY_GENERATED = "summary-generated" // weekly and monthly summaries
)

const (
	MAX_RETRIES  = 5
	RETRY_DELAY  = 2 * time.Second
	POLL_TIMEOUT = time.Second
	FLUSH_MS     = 5000
)
