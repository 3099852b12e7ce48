package llm

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	generateLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "patente_llm_generate_seconds",
		Help:    "Latency of completion calls by purpose and outcome.",
		Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
	}, []string{"purpose", "outcome"})
	generateTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "patente_llm_tokens_total",
		Help: "Tokens consumed by completion calls.",
	}, []string{"purpose", "direction"})
)

type observedProvider struct {
	inner  Provider
	logger zerolog.Logger
}

// WithObservability logs each call and records latency and token metrics.
func WithObservability(p Provider, logger zerolog.Logger) Provider {
	return &observedProvider{inner: p, logger: logger.With().Str("component", "llm").Logger()}
}

func (o *observedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	purpose := PurposeFrom(ctx)
	start := time.Now()
	resp, err := o.inner.Generate(ctx, req)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	generateLatency.WithLabelValues(purpose, outcome).Observe(elapsed.Seconds())

	evt := o.logger.Debug()
	if err != nil {
		evt = o.logger.Warn().Err(err)
	}
	evt = evt.Str("purpose", purpose).Str("model", o.inner.ModelID()).Dur("latency", elapsed)
	if resp != nil {
		generateTokens.WithLabelValues(purpose, "input").Add(float64(resp.Usage.InputTokens))
		generateTokens.WithLabelValues(purpose, "output").Add(float64(resp.Usage.OutputTokens))
		evt = evt.Int("input_tokens", resp.Usage.InputTokens).Int("output_tokens", resp.Usage.OutputTokens)
	}
	evt.Msg("llm generate")
	return resp, err
}

func (o *observedProvider) ModelID() string { return o.inner.ModelID() }
