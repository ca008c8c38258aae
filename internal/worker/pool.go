package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Team-Techentia/veedra-sub001/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReceipt = "jobs:receipt"
	QueueEmail   = "jobs:email"

	// MaxJobAttempts is how many times a job runs before it goes to the DLQ.
	MaxJobAttempts = 3
)

// Queue is the slice of the go-redis client the job system uses.
// *redis.Client satisfies it.
type Queue interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	LLen(ctx context.Context, key string) *redis.IntCmd
}

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts,omitempty"`
}

// Handler processes one job payload. A non-nil error schedules a retry.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	q Queue
}

func NewDispatcher(q Queue) *Dispatcher {
	return &Dispatcher{q: q}
}

// EnqueueReceipt pushes a receipt rendering job.
func (d *Dispatcher) EnqueueReceipt(ctx context.Context, payload ReceiptJobPayload) error {
	return d.enqueue(ctx, QueueReceipt, "receipt", payload)
}

// EnqueueEmail pushes an email job.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return push(ctx, d.q, queue, Job{Type: jobType, Payload: data})
}

func push(ctx context.Context, q Queue, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.LPush(ctx, queue, encoded).Err()
}

// Pool runs handlers for the receipt and email queues.
type Pool struct {
	q        Queue
	handlers map[string]Handler
	// retryDelay is the wait before re-queueing attempt n (1-based).
	retryDelay func(attempt int) time.Duration
	// popErrDelay is the pause after a failed BRPOP, so a Redis outage does not spin.
	popErrDelay time.Duration
}

// NewPool maps queue names to handlers. Queues without a handler are not consumed.
func NewPool(q Queue, handlers map[string]Handler) *Pool {
	return &Pool{q: q, handlers: handlers, retryDelay: backoff, popErrDelay: time.Second}
}

// backoff: 1s after the first failure, 2s after the second …
func backoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt-1)) * time.Second
}

// Start launches numWorkers goroutines consuming every handled queue.
// Each goroutine blocks on BRPOP, so idle workers cost no CPU.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	queues := make([]string, 0, len(p.handlers))
	for _, q := range []string{QueueReceipt, QueueEmail} {
		if _, ok := p.handlers[q]; ok {
			queues = append(queues, q)
		}
	}
	for i := 0; i < numWorkers; i++ {
		go p.runWorker(ctx, i, queues)
	}
	log.Info().Int("workers", numWorkers).Strs("queues", queues).Msg("worker pool started")
}

func (p *Pool) runWorker(ctx context.Context, id int, queues []string) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := p.q.BRPop(ctx, 5*time.Second, queues...).Result()
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue // timeout or shutting down
			}
			if err != nil {
				log.Error().Err(err).Int("worker", id).Msg("worker: dequeue failed")
				select {
				case <-ctx.Done():
				case <-time.After(p.popErrDelay):
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

// process runs one raw job. Failures are re-queued with backoff until
// MaxJobAttempts, then moved to the DLQ.
func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		quoted, _ := json.Marshal(raw)
		p.deadLetter(ctx, queue, Job{Type: "unknown", Payload: quoted}, "malformed envelope: "+err.Error())
		return
	}

	handler, ok := p.handlers[queue]
	if !ok {
		p.deadLetter(ctx, queue, job, "no handler for queue")
		return
	}

	err := handler(ctx, job.Payload)
	if err == nil {
		infra.JobsProcessed.WithLabelValues(queue, "ok").Inc()
		return
	}

	job.Attempts++
	if job.Attempts >= MaxJobAttempts {
		p.deadLetter(ctx, queue, job, err.Error())
		return
	}

	log.Warn().
		Err(err).
		Str("queue", queue).
		Str("type", job.Type).
		Int("attempt", job.Attempts).
		Msg("job failed, retrying")
	infra.JobsProcessed.WithLabelValues(queue, "retry").Inc()

	select {
	case <-ctx.Done():
	case <-time.After(p.retryDelay(job.Attempts)):
	}
	// Re-queue even when shutting down so the job survives the restart.
	if err := push(context.WithoutCancel(ctx), p.q, queue, job); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("failed to re-queue job")
	}
}
