package translation

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var backfillDropped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "patente_backfill_dropped_total",
	Help: "Explanation backfill jobs dropped because the queue was full.",
})

// BackfillJob asks for an explanation of one question.
type BackfillJob struct {
	QuestionID string
	Lang       string
	OnDone     func(text string)
}

func (j BackfillJob) key() string { return j.QuestionID + ":" + j.Lang }

// BackfillWorker drains explanation requests from a bounded queue so a burst
// of questions without explanations cannot fan out into unbounded calls.
type BackfillWorker struct {
	gen     Generator
	queue   chan BackfillJob
	logger  zerolog.Logger
	timeout time.Duration

	mu      sync.Mutex
	waiting map[string][]func(string)
}

func NewBackfillWorker(gen Generator, size int, timeout time.Duration, logger zerolog.Logger) *BackfillWorker {
	if size <= 0 {
		size = 64
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BackfillWorker{
		gen:     gen,
		queue:   make(chan BackfillJob, size),
		logger:  logger.With().Str("component", "explanation_backfill").Logger(),
		timeout: timeout,
		waiting: make(map[string][]func(string)),
	}
}

// Enqueue never blocks. A job for a question already queued only adds its
// callback to the pending one.
func (w *BackfillWorker) Enqueue(job BackfillJob) {
	w.mu.Lock()
	if cbs, ok := w.waiting[job.key()]; ok {
		w.waiting[job.key()] = append(cbs, job.OnDone)
		w.mu.Unlock()
		return
	}
	w.waiting[job.key()] = []func(string){job.OnDone}
	w.mu.Unlock()

	select {
	case w.queue <- job:
	default:
		w.mu.Lock()
		delete(w.waiting, job.key())
		w.mu.Unlock()
		backfillDropped.Inc()
		w.logger.Warn().Str("question_id", job.QuestionID).Msg("backfill queue full, dropping job")
	}
}

// Run processes jobs until ctx is cancelled.
func (w *BackfillWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("explanation backfill stopping")
			return nil
		case job := <-w.queue:
			w.handle(ctx, job)
		}
	}
}

func (w *BackfillWorker) handle(parent context.Context, job BackfillJob) {
	ctx, cancel := context.WithTimeout(parent, w.timeout)
	defer cancel()

	w.mu.Lock()
	callbacks := w.waiting[job.key()]
	delete(w.waiting, job.key())
	w.mu.Unlock()

	job.OnDone = func(text string) {
		for _, cb := range callbacks {
			if cb != nil {
				cb(text)
			}
		}
	}
	runBackfill(ctx, w.gen, job, w.logger)
}

func runBackfill(ctx context.Context, gen Generator, job BackfillJob, logger zerolog.Logger) {
	text, err := gen.GenerateExplanation(ctx, job.QuestionID, job.Lang)
	if err != nil {
		logger.Warn().Err(err).Str("question_id", job.QuestionID).Str("lang", job.Lang).Msg("explanation backfill failed")
		return
	}
	if text == "" || job.OnDone == nil {
		return
	}
	job.OnDone(text)
}
