package identity

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

// Config carries the process-wide settings: the token signing secret, the
// expiry horizon, and the tunables for hashing and pagination.
type Config struct {
	SigningKey      string `env:"SIGNING_KEY,required"`
	TokenExpiration int    `env:"TOKEN_EXPIRATION" envDefault:"72"` // hours
	Issuer          string `env:"TOKEN_ISSUER" envDefault:"rwandabill"`
	BcryptCost      int    `env:"BCRYPT_COST" envDefault:"12"`
	PendingPageSize int    `env:"PENDING_PAGE_SIZE" envDefault:"20"`
}

// LoadConfig reads the configuration from IDENTITY_* environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "IDENTITY_"}); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// surface only the first error to keep logs readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
