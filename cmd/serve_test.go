package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	config "github.com/phillip/clubify-go/config"
	middleware "github.com/phillip/clubify-go/middleware"
	memstore "github.com/phillip/clubify-go/store/memstore"
	utils "github.com/phillip/clubify-go/utils"
)

func TestNewGuardModes(t *testing.T) {
	s := memstore.New()
	log := zap.NewNop()

	g, err := newGuard(&config.Config{AuthMode: config.AuthJWT, JWTSecret: "k"}, s, log)
	require.NoError(t, err)
	assert.IsType(t, &middleware.JWTVerifier{}, g.Verifier)
	assert.False(t, g.Bypass)

	g, err = newGuard(&config.Config{AuthMode: config.AuthTrustedHeader}, s, log)
	require.NoError(t, err)
	assert.IsType(t, middleware.TrustedHeaderVerifier{}, g.Verifier)
	assert.False(t, g.Bypass)

	g, err = newGuard(&config.Config{AuthMode: config.AuthDisabled}, s, log)
	require.NoError(t, err)
	assert.True(t, g.Bypass)

	for _, mode := range []string{config.AuthTrustedHeader, config.AuthDisabled} {
		_, err = newGuard(&config.Config{Env: "production", AuthMode: mode}, s, log)
		assert.Error(t, err, mode)
	}

	_, err = newGuard(&config.Config{AuthMode: "nope"}, s, log)
	assert.Error(t, err)
}

func TestCorsConfig(t *testing.T) {
	all := corsConfig([]string{"*"})
	assert.True(t, all.AllowAllOrigins)
	assert.False(t, all.AllowCredentials)

	some := corsConfig([]string{"https://clubify.app"})
	assert.False(t, some.AllowAllOrigins)
	assert.Equal(t, []string{"https://clubify.app"}, some.AllowOrigins)
	assert.True(t, some.AllowCredentials)
}

func TestFallbackCollaborators(t *testing.T) {
	cfg := &config.Config{}
	assert.IsType(t, utils.DisabledImages{}, newImages(cfg, zap.NewNop()))
	assert.IsType(t, utils.LogMailer{}, newMailer(cfg, zap.NewNop()))

	cfg.ZeptoAPIKey, cfg.EmailFrom = "key", "noreply@clubify.app"
	assert.IsType(t, &utils.ZeptoMailer{}, newMailer(cfg, zap.NewNop()))
}
