package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"APP_ENV" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	Server    ServerConfig    `envPrefix:"SERVER_"`
	Store     StoreConfig     `envPrefix:"STORE_"`
	AWS       AWSConfig       `envPrefix:"AWS_"`
	Postgres  PostgresConfig  `envPrefix:"POSTGRES_"`
	Valkey    ValkeyConfig    `envPrefix:"VALKEY_"`
	Kafka     KafkaConfig     `envPrefix:"KAFKA_"`
	NER       NERConfig       `envPrefix:"NER_"`
	Scheduler SchedulerConfig `envPrefix:"SCHEDULER_"`
}

type ServerConfig struct {
	Addr            string        `env:"ADDR" envDefault:":8080" validate:"required"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type StoreConfig struct {
	Backend string `env:"BACKEND" envDefault:"memory" validate:"oneof=memory dynamodb postgres"`
}

type AWSConfig struct {
	Region         string `env:"REGION" envDefault:"us-west-2"`
	Endpoint       string `env:"ENDPOINT"`
	EntriesTable   string `env:"ENTRIES_TABLE" envDefault:"DreamEntries"`
	SummariesTable string `env:"SUMMARIES_TABLE" envDefault:"PeriodSummaries"`
}

type PostgresConfig struct {
	URL         string `env:"URL"`
	MaxConns    int32  `env:"MAX_CONNS" envDefault:"10" validate:"min=1"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type ValkeyConfig struct {
	Enabled  bool          `env:"ENABLED" envDefault:"false"`
	Address  string        `env:"INIT_ADDRESS" envDefault:"localhost:6379"`
	Password string        `env:"PASSWORD"`
	TLS      bool          `env:"TLS" envDefault:"false"`
	TTL      time.Duration `env:"SUMMARY_TTL" envDefault:"10m"`
}

type KafkaConfig struct {
	Enabled          bool   `env:"ENABLED" envDefault:"false"`
	BootstrapServers string `env:"BOOTSTRAP_SERVERS" envDefault:"localhost:9092"`
	GroupID          string `env:"GROUP_ID" envDefault:"dreamflow-entries"`
	TransactionalID  string `env:"TRANSACTIONAL_ID"`
}

type NERConfig struct {
	Backend string        `env:"BACKEND" envDefault:"none" validate:"oneof=none hugot openai http"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`

	// hugot
	ModelName string `env:"MODEL_NAME" envDefault:"KnightsAnalytics/distilbert-NER"`
	ModelDir  string `env:"MODEL_DIR" envDefault:"./models"`

	// openai
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// http
	URL          string   `env:"URL"`
	HealthURL    string   `env:"HEALTH_URL"`
	TokenURL     string   `env:"TOKEN_URL"`
	ClientID     string   `env:"CLIENT_ID"`
	ClientSecret string   `env:"CLIENT_SECRET"`
	Scopes       []string `env:"SCOPES" envSeparator:","`
}

type SchedulerConfig struct {
	Interval time.Duration `env:"INTERVAL" envDefault:"24h" validate:"min=1s"`
	Periods  []string      `env:"PERIODS" envDefault:"weekly,monthly" envSeparator:"," validate:"min=1,dive,oneof=weekly monthly"`
}

var validate = validator.New()

// Load reads the process configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Store.Backend == "postgres" && c.Postgres.URL == "" {
		return fmt.Errorf("invalid config: POSTGRES_URL is required for the postgres store")
	}
	switch c.NER.Backend {
	case "openai":
		if c.NER.OpenAIAPIKey == "" {
			return fmt.Errorf("invalid config: NER_OPENAI_API_KEY is required for the openai extractor")
		}
	case "http":
		if c.NER.URL == "" {
			return fmt.Errorf("invalid config: NER_URL is required for the http extractor")
		}
	}
	return nil
}
