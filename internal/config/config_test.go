package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	cfg := &Config{DatabaseDriver: "sqlite", OrderStore: "sql", JWTSecret: "s"}
	assert.NoError(t, cfg.Validate())

	cfg.OrderStore = "redis"
	var invalid *InvalidError
	assert.ErrorAs(t, cfg.Validate(), &invalid)
	assert.Equal(t, "ORDER_STORE", invalid.Key)

	cfg.OrderStore = "mongo"
	cfg.DatabaseDriver = "oracle"
	assert.Error(t, cfg.Validate())
}

func TestDurations(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL())
	assert.Equal(t, 5*time.Minute, cfg.StatsCacheTTL())

	cfg.JWTTTLHours = 2
	cfg.StatsCacheTTLSeconds = 30
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL())
	assert.Equal(t, 30*time.Second, cfg.StatsCacheTTL())
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSOrigins: "https://admin.example.vn, https://ship.example.vn"}
	assert.Equal(t, "https://admin.example.vn,https://ship.example.vn", cfg.AllowedOrigins())
}
