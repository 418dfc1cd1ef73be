package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, DriverMongo, cfg.Store.Driver)
	require.Equal(t, "HS256", cfg.Auth.JWTAlgorithm)
	require.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	require.Equal(t, "user_access_token", cfg.Auth.CookieName)
	require.True(t, cfg.Auth.CookieSecure)
	require.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
	require.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":    "s3cret",
		"STORE_DRIVER":  "Postgres",
		"TOKEN_TTL":     "5m",
		"COOKIE_SECURE": "false",
		"ENV":           "production",
		"CORS_ORIGINS":  "https://a.example,https://b.example",
	}))
	require.NoError(t, err)
	require.Equal(t, DriverPostgres, cfg.Store.Driver)
	require.Equal(t, 5*time.Minute, cfg.Auth.TokenTTL)
	require.False(t, cfg.Auth.CookieSecure)
	require.True(t, cfg.IsProduction())
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret": {},
		"bad driver":     {"JWT_SECRET": "x", "STORE_DRIVER": "sqlite"},
		"bad algorithm":  {"JWT_SECRET": "x", "JWT_ALGORITHM": "RS256"},
		"zero ttl":       {"JWT_SECRET": "x", "TOKEN_TTL": "0s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
			require.Error(t, err)
		})
	}
}
