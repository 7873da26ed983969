package providers

import (
	"github.com/samber/do/v2"

	"github.com/ecomindsapp/ecominds-server/internal/auth"
	"github.com/ecomindsapp/ecominds-server/internal/config"
	"github.com/ecomindsapp/ecominds-server/internal/logger"
)

// AuthKey is the hex-encoded PASETO symmetric key.
type AuthKey string

// ProvideAuthKey loads or generates the token signing key.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	keyHex, err := auth.LoadOrGenerateKey(cfg.Data.Dir)
	if err != nil {
		return "", err
	}

	log.Info("Auth key ready", "dir", cfg.Data.Dir)

	return AuthKey(keyHex), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService(string(key), cfg.Auth.AccessTokenDuration)
}
