package main

import (
	"context"
	"fmt"

	"health-dashboard/internal/adapters/auth/idp"
	"health-dashboard/internal/adapters/auth/jwtsession"
	"health-dashboard/internal/adapters/auth/sessioncache"
	"health-dashboard/internal/config"
	"health-dashboard/internal/ports/auth"

	"github.com/rs/zerolog"
)

// buildVerifier arma el SessionVerifier según AUTH_MODE. En modo dev devuelve nil
// (el gate acepta X-Debug-User-ID). Los verificadores reales van detrás de la caché.
func buildVerifier(ctx context.Context, cfg *config.Config, log zerolog.Logger) (auth.SessionVerifier, func(), error) {
	noop := func() {}

	var base auth.SessionVerifier
	switch mode := cfg.ResolvedAuthMode(); mode {
	case config.AuthModeDev:
		log.Warn().Msg("AUTH_MODE=dev: sessions are not verified")
		return nil, noop, nil
	case config.AuthModeJWT:
		v, err := jwtsession.NewVerifier(jwtsession.Config{
			Secret:   cfg.AuthJWTSecret,
			Issuer:   cfg.AuthJWTIssuer,
			Audience: cfg.AuthJWTAudience,
		})
		if err != nil {
			return nil, noop, err
		}
		base = v
	case config.AuthModeRemote:
		c, err := idp.NewClient(idp.Config{
			BaseURL:      cfg.IDPBaseURL,
			APIKey:       cfg.IDPAPIKey,
			APIKeyHeader: cfg.IDPAPIKeyHeader,
		})
		if err != nil {
			return nil, noop, err
		}
		base = idp.NewVerifier(c)
	default:
		return nil, noop, fmt.Errorf("unknown auth mode %q", mode)
	}

	if cfg.SessionCacheTTL <= 0 {
		return base, noop, nil
	}

	if cfg.RedisURL == "" {
		log.Info().Dur("ttl", cfg.SessionCacheTTL).Msg("session cache: in-process")
		return sessioncache.New(base, sessioncache.NewMemoryStore(), cfg.SessionCacheTTL), noop, nil
	}

	store, err := sessioncache.NewRedisStoreFromURL(ctx, cfg.RedisURL)
	if err != nil {
		return nil, noop, err
	}
	log.Info().Dur("ttl", cfg.SessionCacheTTL).Msg("session cache: redis")
	closeStore := func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("close redis session cache")
		}
	}
	return sessioncache.New(base, store, cfg.SessionCacheTTL), closeStore, nil
}
