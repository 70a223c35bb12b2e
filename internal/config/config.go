package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the process needs. It is parsed once in main and
// passed to constructors; nothing reads the environment after startup.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	SessionSecret string `env:"SESSION_SECRET" envDefault:"dev-secret-key-change-in-production"`

	// Fixed directory for uploaded and auto-imported files.
	UploadsDir string `env:"UPLOADS_PATH" envDefault:"uploads"`

	// RabbitMQ is optional: leave AMQPURL empty to run without the
	// import-event worker.
	AMQPURL string `env:"AMQP_URL"`

	// Assistant is optional: leave GeminiAPIKey empty to disable the
	// natural-language endpoints.
	GeminiAPIKey   string `env:"GEMINI_API_KEY"`
	AssistantModel string `env:"ASSISTANT_MODEL" envDefault:"gemini-2.0-flash"`

	MailHost string `env:"MAIL_HOST"`
	MailPort int    `env:"MAIL_PORT" envDefault:"587"`
	MailUser string `env:"MAIL_USER"`
	MailPass string `env:"MAIL_PASS"`
	// Address that receives import reports. Empty disables them.
	ReportTo string `env:"IMPORT_REPORT_TO"`
}

// Load reads .env (if present) and parses the environment.
func Load() (*Config, error) {
	godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
