package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("EMBEDDING_PROVIDER", "none")
	t.Setenv("REDIS_URL", "")

	cfg := Load()
	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.True(t, cfg.App.OtelEnabled)
	assert.Equal(t, "none", cfg.Ai.EmbeddingProvider)
	assert.Empty(t, cfg.App.RedisURL)
}

func TestTypedEnvFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		value string
		check func(t *testing.T)
	}{
		{name: "int not a number", value: "many", check: func(t *testing.T) {
			assert.Equal(t, 7, getEnvAsInt("CHATBOT_TEST_VALUE", 7))
		}},
		{name: "bool not a bool", value: "maybe", check: func(t *testing.T) {
			assert.True(t, getEnvAsBool("CHATBOT_TEST_VALUE", true))
		}},
		{name: "set but empty string", value: "", check: func(t *testing.T) {
			assert.Equal(t, "", getEnv("CHATBOT_TEST_VALUE", "fallback"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CHATBOT_TEST_VALUE", tt.value)
			tt.check(t)
		})
	}
}
