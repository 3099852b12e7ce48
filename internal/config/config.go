package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"patente-quiz"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres    Postgres
	Redis       Redis
	Security    Security
	Rewards     Rewards
	Quiz        Quiz
	AI          AI
	Translate   Translate
	Leaderboard Leaderboard
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"10"`
}

// DSN renders a libpq style connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// Redis holds cache configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for signing and auth.
type Security struct {
	JWTSecret  string        `env:"JWT_SECRET,notEmpty"`
	AccessTTL  time.Duration `env:"JWT_ACCESS_TTL" envDefault:"1h"`
	RefreshTTL time.Duration `env:"JWT_REFRESH_TTL" envDefault:"168h"`
}

// Rewards tunes the hearts/XP/streak ledger.
type Rewards struct {
	// Timezone decides what "today" means for streaks and the daily hearts refill.
	Timezone       string        `env:"REWARDS_TIMEZONE" envDefault:"Europe/Rome"`
	XPPerCorrect   int           `env:"REWARDS_XP_PER_CORRECT" envDefault:"10"`
	PersistTimeout time.Duration `env:"REWARDS_PERSIST_TIMEOUT" envDefault:"5s"`
}

// Quiz governs in-memory quiz sessions.
type Quiz struct {
	SessionIdleTTL time.Duration `env:"QUIZ_SESSION_IDLE_TTL" envDefault:"2h"`
	SweepInterval  time.Duration `env:"QUIZ_SWEEP_INTERVAL" envDefault:"10m"`
	SourceLanguage string        `env:"QUIZ_SOURCE_LANGUAGE" envDefault:"it"`
	BackfillQueue  int           `env:"QUIZ_BACKFILL_QUEUE" envDefault:"64"`
}

// AI configures text generation for translations and explanations.
type AI struct {
	// Provider is one of openrouter, openai, anthropic, gemini, remote, mock.
	Provider string        `env:"AI_PROVIDER" envDefault:"openrouter"`
	Timeout  time.Duration `env:"AI_HTTP_TIMEOUT" envDefault:"30s"`

	OpenRouterKey   string `env:"OPENROUTER_API_KEY" envDefault:""`
	OpenRouterModel string `env:"OPENROUTER_MODEL" envDefault:"openai/gpt-3.5-turbo"`
	OpenRouterURL   string `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	OpenRouterTitle string `env:"OPENROUTER_APP_TITLE" envDefault:"Patente Learning App"`
	OpenRouterSite  string `env:"OPENROUTER_APP_URL" envDefault:"https://patente-app.com"`

	OpenAIKey   string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIModel string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	AnthropicKey   string `env:"ANTHROPIC_API_KEY" envDefault:""`
	AnthropicModel string `env:"ANTHROPIC_MODEL" envDefault:"claude-haiku"`

	GeminiKey   string `env:"GEMINI_API_KEY" envDefault:""`
	GeminiModel string `env:"GEMINI_MODEL" envDefault:"gemini-flash"`

	// FunctionsURL points at a deployed generation service when Provider is "remote".
	FunctionsURL string `env:"AI_FUNCTIONS_URL" envDefault:""`
	FunctionsKey string `env:"AI_FUNCTIONS_API_KEY" envDefault:""`

	RetryAttempts int           `env:"AI_RETRY_ATTEMPTS" envDefault:"3"`
	RetryWait     time.Duration `env:"AI_RETRY_INITIAL_WAIT" envDefault:"1s"`
	RetryMaxWait  time.Duration `env:"AI_RETRY_MAX_WAIT" envDefault:"10s"`
}

// Translate configures the translation cache and the word translator.
type Translate struct {
	WordURL     string        `env:"TRANSLATE_WORD_URL" envDefault:"https://translate.googleapis.com"`
	HTTPTimeout time.Duration `env:"TRANSLATE_HTTP_TIMEOUT" envDefault:"5s"`
	CacheTTL    time.Duration `env:"TRANSLATE_CACHE_TTL" envDefault:"24h"`
}

// Leaderboard governs the XP leaderboard.
type Leaderboard struct {
	TopN int `env:"LEADERBOARD_TOP" envDefault:"50"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadPostgres parses only the Postgres group; used by the migrator.
func LoadPostgres() (Postgres, error) {
	var pg Postgres
	if err := env.ParseWithOptions(&pg, env.Options{RequiredIfNoDef: true}); err != nil {
		return Postgres{}, fmt.Errorf("parse postgres config: %w", err)
	}
	return pg, nil
}
