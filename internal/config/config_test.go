package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
}

func TestLoad_RejectsShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{JWTSecret: "0123456789abcdef", TokenTTL: time.Hour, AIRatePerSec: 1, AIRateBurst: 1}
	assert.NoError(t, cfg.Validate())

	cfg.AIRateBurst = 0
	assert.Error(t, cfg.Validate())
}

func TestOrigins_DefaultsToWildcard(t *testing.T) {
	cfg := &Config{CORSOrigins: " , "}
	assert.Equal(t, []string{"*"}, cfg.Origins())
}

func TestDecode_SkipsValidation(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_PATH", "/tmp/hc.db")

	cfg, err := Decode()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/hc.db", cfg.DatabasePath)
	assert.Equal(t, "8080", cfg.Port)
}
