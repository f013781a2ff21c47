package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/gerenciadorpro/roster-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Dispatcher routes bulk-reminder jobs to a fixed set of workers using
// consistent hashing on the client id, so repeated jobs for the same client
// are generated in order.
type Dispatcher struct {
	workers []chan ports.ReminderJob
	assist  ports.AssistService
	results ports.JobResults
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, assist ports.AssistService, results ports.JobResults, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.ReminderJob, numWorkers),
		assist:  assist,
		results: results,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.ReminderJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a job to the worker responsible for its client id.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(job ports.ReminderJob) {
	d.workers[d.shardIndex(job.ClientID)] <- job
}

// EnqueueBatch enqueues multiple jobs preserving per-client ordering.
func (d *Dispatcher) EnqueueBatch(jobs []ports.ReminderJob) {
	for _, j := range jobs {
		d.Enqueue(j)
	}
}

// shardIndex maps a client id deterministically to a worker index.
func (d *Dispatcher) shardIndex(clientID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(clientID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.ReminderJob) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			// RenewalReminder degrades to a fallback string on generation
			// failure, so every job produces a result.
			message := d.assist.RenewalReminder(ctx, job.ClientName, job.DueDate)
			if err := d.results.Add(ctx, job.JobID, job.ClientID, message); err != nil {
				d.log.Error().Err(err).
					Str("job_id", job.JobID).
					Str("client_id", job.ClientID).
					Int("worker_id", id).
					Msg("failed to store reminder result")
			}
		}
	}
}
