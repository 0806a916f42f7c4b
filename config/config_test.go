package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testViper(values map[string]any) *viper.Viper {
	v := viper.New()
	defaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg, err := FromViper(testViper(map[string]any{
		"MONGO_URI":  "mongodb://localhost:27017",
		"JWT_SECRET": "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "clubify", cfg.DBName)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, AuthJWT, cfg.AuthMode)
	assert.Equal(t, "usd", cfg.StripeCurrency)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 72*time.Hour, cfg.WebhookDedupe)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.ImagesEnabled())
}

func TestFromViperValidation(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr string
	}{
		{
			name:    "jwt mode needs a secret",
			values:  map[string]any{"MONGO_URI": "mongodb://x"},
			wantErr: "JWT_SECRET",
		},
		{
			name:    "mongo driver needs a uri",
			values:  map[string]any{"JWT_SECRET": "s"},
			wantErr: "MONGO_URI",
		},
		{
			name:    "unknown auth mode",
			values:  map[string]any{"MONGO_URI": "mongodb://x", "AUTH_MODE": "magic"},
			wantErr: "unknown AUTH_MODE",
		},
		{
			name:    "unknown driver",
			values:  map[string]any{"AUTH_MODE": AuthDisabled, "STORE_DRIVER": "sqlite"},
			wantErr: "unknown STORE_DRIVER",
		},
		{
			name:    "production refuses disabled auth",
			values:  map[string]any{"APP_ENV": "production", "AUTH_MODE": AuthDisabled, "STORE_DRIVER": DriverMemory},
			wantErr: "not allowed when APP_ENV=production",
		},
		{
			name:    "production refuses trusted headers",
			values:  map[string]any{"APP_ENV": "production", "AUTH_MODE": AuthTrustedHeader, "STORE_DRIVER": DriverMemory},
			wantErr: "not allowed when APP_ENV=production",
		},
		{
			name:   "production with jwt",
			values: map[string]any{"APP_ENV": "production", "JWT_SECRET": "s", "MONGO_URI": "mongodb://x"},
		},
		{
			name:   "memory store with trusted headers",
			values: map[string]any{"AUTH_MODE": AuthTrustedHeader, "STORE_DRIVER": DriverMemory},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromViper(testViper(tt.values))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("AUTH_MODE", "Trusted-Header")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("REQUEST_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, AuthTrustedHeader, cfg.AuthMode)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
}

func TestImagesEnabled(t *testing.T) {
	cfg := &Config{CloudinaryCloudName: "c", CloudinaryAPIKey: "k"}
	assert.False(t, cfg.ImagesEnabled())
	cfg.CloudinaryAPISecret = "s"
	assert.True(t, cfg.ImagesEnabled())
}
