package services

import (
	"testing"

	"github.com/localnerve/foodgram/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	cfg := &config.Config{DBType: "sqlite", DBDatabase: "memory"}

	result := HealthCheck(env.ctx, cfg, env.db)
	assert.Equal(t, "healthy", result.Status)
	assert.Equal(t, "ok", result.Database)
	assert.Equal(t, "disabled", result.Authorizer)

	cfg.AuthzURL = "http://127.0.0.1:1"
	result = HealthCheck(env.ctx, cfg, env.db)
	assert.Equal(t, "unhealthy", result.Status)
	assert.Equal(t, "unreachable", result.Authorizer)
	assert.Contains(t, result.ErrorMessage, "Authorizer ping failed")
}
