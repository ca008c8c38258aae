package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Team-Techentia/veedra-sub001/internal/infra"

	"github.com/rs/zerolog/log"
)

// DLQPrefix namespaces the dead letter list of each queue: dlq:jobs:receipt, dlq:jobs:email.
// Entries stay there until someone inspects and replays them by hand.
const DLQPrefix = "dlq:"

// DLQEntry is one dead job with enough context to replay it.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      time.Time       `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

// deadLetter parks job on the queue's DLQ and counts it. A failed push is
// logged with the payload so the job can still be recovered from the logs.
func (p *Pool) deadLetter(ctx context.Context, queue string, job Job, reason string) {
	infra.JobsProcessed.WithLabelValues(queue, "dead").Inc()

	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       job.Type,
		Payload:       job.Payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC(),
		Attempts:      job.Attempts,
	}
	data, err := json.Marshal(entry)
	if err == nil {
		err = p.q.LPush(context.WithoutCancel(ctx), DLQPrefix+queue, data).Err()
	}
	if err != nil {
		log.Error().Err(err).
			Str("queue", queue).
			RawJSON("payload", job.Payload).
			Msg("dlq: push failed, job dropped")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("reason", reason).
		Int("attempts", job.Attempts).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of entries in a DLQ, reported by /health.
func DLQLength(ctx context.Context, q Queue, queue string) (int64, error) {
	return q.LLen(ctx, DLQPrefix+queue).Result()
}
