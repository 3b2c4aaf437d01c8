package worker

// Dead-lettering. Failed jobs land on a Redis list per source queue
// (dlq:{queue}); the retry cron redrives them until maxDeliveryAttempts,
// then parks them under dlq:parked:{queue} for manual inspection.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix       = "dlq:"
	DLQParkedPrefix = "dlq:parked:"
)

func dlqKey(queue string) string { return DLQPrefix + queue }

// DLQEntry is the stored form of a failed job.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // ISO 8601
	Attempts      int             `json:"attempts"`
}

// SendToDLQ dead-letters one job. attempts is the cumulative delivery
// count, carried across redrives. Errors are logged rather than returned;
// dead-lettering must never fail the caller.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, jobType string, payload json.RawMessage, reason string, attempts int) {
	data, err := json.Marshal(DLQEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      attempts,
	})
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal entry")
		return
	}
	if err := rdb.LPush(ctx, dlqKey(queue), data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: push entry")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("job dead-lettered")
}

// PopDLQ takes the oldest entry off a queue's DLQ.
// Returns (nil, nil) when the DLQ is empty.
func PopDLQ(ctx context.Context, rdb *redis.Client, queue string) (*DLQEntry, error) {
	raw, err := rdb.RPop(ctx, dlqKey(queue)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entry DLQEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ParkDLQEntry moves an entry to the parked list. Parked entries are
// never redriven automatically.
func ParkDLQEntry(ctx context.Context, rdb *redis.Client, entry *DLQEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, DLQParkedPrefix+entry.OriginalQueue, data).Err()
}

// DLQLength reports the number of dead-lettered entries for one queue.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, dlqKey(queue)).Result()
}
