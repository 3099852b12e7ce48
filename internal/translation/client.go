package translation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/gokatarajesh/patente-quiz/internal/db/queries"
)

var lookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "patente_translation_lookups_total",
	Help: "Translation lookups by the tier that answered them.",
}, []string{"tier"})

type resultCache interface {
	Get(ctx context.Context, questionID, lang string) (Result, bool, error)
	Set(ctx context.Context, questionID, lang string, r Result) error
	Delete(ctx context.Context, questionID, lang string) error
}

const defaultGenerateTimeout = 60 * time.Second

type translationReader interface {
	Get(ctx context.Context, questionID, lang string) (queries.Translation, error)
}

type wordTranslator interface {
	Translate(ctx context.Context, text, lang string) (string, error)
}

// ClientOptions holds the optional collaborators of a Client.
type ClientOptions struct {
	Cache    resultCache
	Store    translationReader
	Words    wordTranslator
	Backfill *BackfillWorker
	// Timeout bounds one shared generation. Zero means one minute.
	Timeout  time.Duration
}

// Client answers translation requests from cache and falls back to the
// generator on a miss. It never returns errors: a failed lookup is
// reported as ok=false.
type Client struct {
	gen      Generator
	cache    resultCache
	store    translationReader
	words    wordTranslator
	backfill *BackfillWorker
	timeout  time.Duration
	logger   zerolog.Logger
	flights  singleflight.Group
}

func NewClient(gen Generator, opts ClientOptions, logger zerolog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultGenerateTimeout
	}
	return &Client{
		gen:      gen,
		cache:    opts.Cache,
		store:    opts.Store,
		words:    opts.Words,
		backfill: opts.Backfill,
		timeout:  opts.Timeout,
		logger:   logger.With().Str("component", "translation_client").Logger(),
	}
}

// Translate returns the question translated into lang.
func (c *Client) Translate(ctx context.Context, questionID, lang string) (Result, bool) {
	lang = normalizeLang(lang, "en")
	if questionID == "" {
		return Result{}, false
	}
	if r, ok := c.lookup(ctx, questionID, lang); ok {
		return r, true
	}

	// The flight is shared by every waiter, so it must outlive the caller
	// that happened to start it.
	v, err, _ := c.flights.Do(questionID+":"+lang, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		// A concurrent flight may have filled the cache while we waited.
		if r, ok := c.lookup(ctx, questionID, lang); ok {
			return r, nil
		}
		lookups.WithLabelValues("generated").Inc()
		payload, err := c.gen.TranslateContent(ctx, questionID, lang)
		if err != nil {
			return nil, err
		}
		r := payload.Result()
		if r.QuestionText == "" && r.Explanation == "" {
			return nil, ErrUnavailable
		}
		c.remember(ctx, questionID, lang, r)
		return r, nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("question_id", questionID).Str("lang", lang).Msg("translation failed")
		return Result{}, false
	}
	return v.(Result), true
}

func (c *Client) lookup(ctx context.Context, questionID, lang string) (Result, bool) {
	if c.cache != nil {
		r, ok, err := c.cache.Get(ctx, questionID, lang)
		if err != nil {
			c.logger.Debug().Err(err).Msg("translation cache read failed")
		}
		if ok && r.Complete() {
			lookups.WithLabelValues("redis").Inc()
			return r, true
		}
		if ok {
			// Entries without an explanation are stale; drop so the
			// next write replaces them.
			if err := c.cache.Delete(ctx, questionID, lang); err != nil {
				c.logger.Debug().Err(err).Msg("translation cache delete failed")
			}
		}
	}
	if c.store == nil {
		return Result{}, false
	}
	row, err := c.store.Get(ctx, questionID, lang)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			c.logger.Warn().Err(err).Str("question_id", questionID).Msg("translation store read failed")
		}
		return Result{}, false
	}
	r := Result{QuestionText: row.QuestionText, Options: row.Options, Explanation: row.Explanation}
	if r.Options == nil {
		r.Options = []string{}
	}
	if !r.Complete() {
		return Result{}, false
	}
	lookups.WithLabelValues("postgres").Inc()
	c.remember(ctx, questionID, lang, r)
	return r, true
}

func (c *Client) remember(ctx context.Context, questionID, lang string, r Result) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, questionID, lang, r); err != nil {
		c.logger.Debug().Err(err).Msg("translation cache write failed")
	}
}

// BackfillExplanation generates a missing explanation in the background
// and hands the text to onDone. It never blocks the caller.
func (c *Client) BackfillExplanation(questionID, lang string, onDone func(text string)) {
	job := BackfillJob{QuestionID: questionID, Lang: normalizeLang(lang, "it"), OnDone: onDone}
	if c.backfill != nil {
		c.backfill.Enqueue(job)
		return
	}
	go runBackfill(context.Background(), c.gen, job, c.logger)
}

// TranslateWord translates a single word or phrase for tap-to-translate.
func (c *Client) TranslateWord(ctx context.Context, text, lang string) (string, bool) {
	text = strings.TrimSpace(text)
	if c.words == nil || text == "" {
		return "", false
	}
	out, err := c.words.Translate(ctx, text, normalizeLang(lang, "en"))
	if err != nil {
		c.logger.Warn().Err(err).Msg("word translation failed")
		return "", false
	}
	return out, true
}

func normalizeLang(lang, fallback string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return fallback
	}
	return lang
}
