// Package persist runs the write-behind half of optimistic state updates:
// callers mutate memory first, then hand a Task here. Failures are logged
// and counted, never returned.
package persist

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	taskFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "patente_persist_failures_total",
		Help: "Background persistence tasks that returned an error.",
	}, []string{"field"})
	taskSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "patente_persist_superseded_total",
		Help: "Background persistence tasks dropped because a newer write for the same field already landed.",
	}, []string{"field"})
)

const defaultTimeout = 5 * time.Second

// Task is one remote write. Key identifies the (user, field) it targets and
// Seq orders writes to the same key; a task older than one already applied
// for its key is dropped. Seq should come from NextSeq so that two owners
// of the same key, such as a ledger and its reload, never collide.
type Task struct {
	Key   string
	Field string
	Seq   uint64
	Run   func(ctx context.Context) error
}

// Persister executes tasks asynchronously, one goroutine per task, serialized per key.
type Persister struct {
	logger  zerolog.Logger
	timeout time.Duration

	seq     atomic.Uint64
	wg      sync.WaitGroup
	mu      sync.Mutex
	keys    map[string]*keyState
	onError func(Task, error)
}

type keyState struct {
	mu      sync.Mutex
	applied uint64
	pending int
}

func New(logger zerolog.Logger, timeout time.Duration) *Persister {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Persister{
		logger:  logger.With().Str("component", "persister").Logger(),
		timeout: timeout,
		keys:    make(map[string]*keyState),
	}
}

// NextSeq returns a sequence number greater than every one handed out before.
func (p *Persister) NextSeq() uint64 {
	return p.seq.Add(1)
}

// OnError installs a hook called after a task fails (tests, alerting).
func (p *Persister) OnError(fn func(Task, error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onError = fn
}

// Submit schedules t and returns immediately.
func (p *Persister) Submit(t Task) {
	p.mu.Lock()
	ks, ok := p.keys[t.Key]
	if !ok {
		ks = &keyState{}
		p.keys[t.Key] = ks
	}
	ks.pending++
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.release(t.Key, ks)

		ks.mu.Lock()
		defer ks.mu.Unlock()

		if t.Seq != 0 && t.Seq <= ks.applied {
			taskSkipped.WithLabelValues(t.Field).Inc()
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		if err := t.Run(ctx); err != nil {
			taskFailures.WithLabelValues(t.Field).Inc()
			p.logger.Error().Err(err).Str("key", t.Key).Str("field", t.Field).Msg("persist failed")
			p.mu.Lock()
			hook := p.onError
			p.mu.Unlock()
			if hook != nil {
				hook(t, err)
			}
			return
		}
		if t.Seq > ks.applied {
			ks.applied = t.Seq
		}
	}()
}

func (p *Persister) release(key string, ks *keyState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ks.pending--
	if ks.pending == 0 {
		delete(p.keys, key)
	}
}

// Flush waits for in-flight tasks or ctx expiry.
func (p *Persister) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
