package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vaultline/authd/internal/core/domain"
	"github.com/vaultline/authd/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

type job struct {
	ctx   context.Context
	entry domain.ActivityLog
}

// Dispatcher is an asynchronous ports.ActivityRecorder. Records are routed to
// a fixed set of workers by hashing the application id, so records of one
// application are written in the order they were recorded.
type Dispatcher struct {
	workers []chan job
	sink    ports.ActivityRecorder
	onDrop  func(event string)
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers that
// hand records to sink. If numWorkers <= 0, defaultWorkers is used. onDrop,
// when set, is called for every record discarded because its shard was full.
func NewDispatcher(numWorkers int, sink ports.ActivityRecorder, onDrop func(event string), log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan job, numWorkers),
		sink:    sink,
		onDrop:  onDrop,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan job, channelBuffer)
	}
	return d
}

// Run starts the workers and blocks until ctx is cancelled and every worker
// has flushed what was already queued.
func (d *Dispatcher) Run(ctx context.Context) error {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
	d.wg.Wait()
	return nil
}

// Record enqueues entry without blocking. A full shard drops the record; auth
// decisions never wait on the activity log.
func (d *Dispatcher) Record(ctx context.Context, entry domain.ActivityLog) {
	j := job{ctx: context.WithoutCancel(ctx), entry: entry}
	select {
	case d.workers[d.shardIndex(entry.ApplicationID)] <- j:
	default:
		d.log.Warn().
			Str("event", entry.Event).
			Str("application_id", entry.ApplicationID).
			Msg("activity queue full, record dropped")
		if d.onDrop != nil {
			d.onDrop(entry.Event)
		}
	}
}

// shardIndex maps an application id deterministically to a worker index.
func (d *Dispatcher) shardIndex(applicationID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(applicationID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan job) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case j := <-ch:
			d.sink.Record(j.ctx, j.entry)
		}
	}
}

func (d *Dispatcher) drain(id int, ch <-chan job) {
	n := 0
	for {
		select {
		case j := <-ch:
			d.sink.Record(j.ctx, j.entry)
			n++
		default:
			if n > 0 {
				d.log.Debug().Int("worker_id", id).Int("flushed", n).Msg("activity worker drained")
			}
			return
		}
	}
}
