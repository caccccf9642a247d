package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type Config struct {
	Port          string        `env:"PORT,default=8080"`
	DatabasePath  string        `env:"DATABASE_PATH,default=healthconnect.db"`
	JWTSecret     string        `env:"JWT_SECRET"`
	TokenTTL      time.Duration `env:"TOKEN_TTL,default=24h"`
	GeminiAPIKey  string        `env:"GEMINI_API_KEY"`
	GeminiModel   string        `env:"GEMINI_MODEL,default=gemini-2.0-flash"`
	CORSOrigins   string        `env:"CORS_ORIGINS,default=*"`
	AIRatePerSec  float64       `env:"AI_RATE_PER_SECOND,default=1"`
	AIRateBurst   int           `env:"AI_RATE_BURST,default=5"`
	ChatRetention time.Duration `env:"CHAT_RETENTION,default=720h"`
	LogLevel      string        `env:"LOG_LEVEL,default=info"`
}

// Load reads an optional .env file, decodes the environment and validates the result.
func Load() (*Config, error) {
	cfg, err := Decode()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode is Load without validation, for offline commands that never issue tokens.
func Decode() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.AIRatePerSec <= 0 || c.AIRateBurst <= 0 {
		return fmt.Errorf("AI rate limit must be positive")
	}
	return nil
}

// Origins splits CORS_ORIGINS on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func (c *Config) Addr() string {
	return ":" + c.Port
}
