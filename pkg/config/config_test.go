package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, "http://localhost:8000/api/agent/analyze", cfg.Analysis.Endpoint)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 2, cfg.Events.Workers)
	assert.Equal(t, "authenticated", cfg.JWT.Audience)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("DASHBOARD_CACHE_TTL", "90s")
	v.Set("ANALYSIS_TIMEOUT", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", " https://planner.example.com , ,")

	cfg := fromViper(v)

	assert.Equal(t, 90*time.Second, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 2*time.Minute, cfg.Analysis.Timeout)
	assert.Equal(t, []string{"https://planner.example.com"}, cfg.CORS.AllowedOrigins)
}
