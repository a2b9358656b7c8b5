// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	NLU           NLUConfig               `mapstructure:"nlu"`
	Normalizer    NormalizerConfig        `mapstructure:"normalizer"`
	Entities      EntityNamesConfig       `mapstructure:"entities"`
	Results       ResultsConfig           `mapstructure:"results"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	HealthPort  int    `mapstructure:"health_port"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// NLUConfig points at the hosted language-understanding application.
type NLUConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AppID           string `mapstructure:"app_id"`
	SubscriptionKey string `mapstructure:"subscription_key"`
	Timeout         int    `mapstructure:"timeout"` // milliseconds
	MaxRetries      int    `mapstructure:"max_retries"`
	Staging         bool   `mapstructure:"staging"`
	Verbose         bool   `mapstructure:"verbose"`
	TimezoneOffset  int    `mapstructure:"timezone_offset"` // minutes
}

type NormalizerConfig struct {
	MaxTextLength int `mapstructure:"max_text_length"`
	MinYear       int `mapstructure:"min_year"`
}

// EntityNamesConfig maps the application's entity type names onto the
// roles the extraction engine understands.
type EntityNamesConfig struct {
	DateTime string `mapstructure:"datetime"`
	Date     string `mapstructure:"date"`
	Time     string `mapstructure:"time"`
	Person   string `mapstructure:"person"`
	Location string `mapstructure:"location"`
	City     string `mapstructure:"city"`
	State    string `mapstructure:"state"`
	Zipcode  string `mapstructure:"zipcode"`
}

type ResultsConfig struct {
	CacheTTL int `mapstructure:"cache_ttl"` // seconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// NotificationConfig holds settings for the review notifier.
type NotificationConfig struct {
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
		Region   string `mapstructure:"region"`
	} `mapstructure:"sns"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
