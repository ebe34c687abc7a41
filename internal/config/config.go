package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0:8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"DEBUG"`

	// PublicBaseURL is the prefix of the offer links mailed to suppliers.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	// SweepInterval is how often the understock sweep runs. Zero disables the
	// background run; the operator endpoint still works.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"0"`

	PostgresConfig
	SMTPConfig
}

func NewConfig() (*Config, error) {
	config := &Config{}

	err := env.Parse(config)
	if err != nil {
		err = fmt.Errorf("config.NewConfig: %w", err)
	}
	return config, err
}

type PostgresConfig struct {
	Conn            string `env:"POSTGRES_CONN" envDefault:"postgres://test:test@db:5432/test?sslmode=disable"`
	Host            string `env:"POSTGRES_HOST" envDefault:"db"`
	Port            string `env:"POSTGRES_PORT" envDefault:"5432"`
	Username        string `env:"POSTGRES_USERNAME" envDefault:"test"`
	Password        string `env:"POSTGRES_PASSWORD" envDefault:"test"`
	Database        string `env:"POSTGRES_DATABASE" envDefault:"test"`
	AutoMigrateUp   string `env:"AUTO_MIGRATE_UP" envDefault:"true"`
	AutoMigrateDown string `env:"AUTO_MIGRATE_DOWN" envDefault:"false"`
	MigrationsURL   string `env:"MIGRATIONS_URL" envDefault:"file://internal/repository/db/migrations"`
}

func NewPostgresConfig() (*PostgresConfig, error) {
	config := &PostgresConfig{}

	err := env.Parse(config)
	if err != nil {
		err = fmt.Errorf("config.NewPostgresConfig: %w", err)
	}
	return config, err
}

// SMTPConfig drives the outbound supplier mailer. An empty host switches the
// app to the log-only notifier.
type SMTPConfig struct {
	SMTPHost     string `env:"SMTP_HOST" envDefault:""`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME" envDefault:""`
	SMTPPassword string `env:"SMTP_PASSWORD" envDefault:""`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"procurement@localhost"`
}
