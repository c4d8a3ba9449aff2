package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("PORT", "")

	cfg, err := load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "__session", cfg.SessionCookie)
	assert.Equal(t, time.Minute, cfg.SessionCacheTTL)
	assert.Equal(t, "first_result", cfg.LabCompletionPolicy)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("SESSION_CACHE_TTL", "30s")
	t.Setenv("LAB_COMPLETION_POLICY", "all_tests")

	cfg, err := load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, AuthModeJWT, cfg.ResolvedAuthMode())
	assert.Equal(t, 30*time.Second, cfg.SessionCacheTTL)
	assert.Equal(t, "all_tests", cfg.LabCompletionPolicy)
	require.NoError(t, cfg.Validate())
}

func TestResolvedAuthMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"explicit wins", Config{AuthMode: "REMOTE", AuthJWTSecret: "x"}, AuthModeRemote},
		{"jwt secret", Config{AuthJWTSecret: "x"}, AuthModeJWT},
		{"idp url", Config{IDPBaseURL: "https://idp"}, AuthModeRemote},
		{"nothing", Config{}, AuthModeDev},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.ResolvedAuthMode())
		})
	}
}

func TestValidate(t *testing.T) {
	base := Config{Env: "development", LabCompletionPolicy: "first_result"}
	require.NoError(t, base.Validate())

	prodDev := base
	prodDev.Env = "production"
	assert.Error(t, prodDev.Validate(), "dev auth must be rejected outside development")

	remote := base
	remote.AuthMode = AuthModeRemote
	remote.IDPBaseURL = "https://idp.example"
	assert.Error(t, remote.Validate(), "remote mode needs an api key")
	remote.IDPAPIKey = "k"
	assert.NoError(t, remote.Validate())

	badPolicy := base
	badPolicy.LabCompletionPolicy = "majority"
	assert.Error(t, badPolicy.Validate())

	badMode := base
	badMode.AuthMode = "saml"
	assert.Error(t, badMode.Validate())
}
