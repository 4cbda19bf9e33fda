package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "GIVEAWAY_"

// parseEnv overlays GIVEAWAY_* environment variables. A .env file (or the
// one named by -env-file) is loaded first; variables already present in the
// process environment are not overwritten by it. A missing default .env is
// not an error, a missing explicit one is.
func parseEnv(config *Config, args []string) error {
	envFile := flagx.EnvFileFlag(args)
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}

	str("HTTP_ADDR", &config.HTTPAddr)
	str("GRPC_HEALTH_ADDR", &config.HealthAddrGRPC)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("SECRET_KEY", &config.SecretKey)
	str("LOG_LEVEL", &config.LogLevel)
	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	str("MESSAGING_GATEWAY_URL", &config.MessagingGatewayURL)
	str("MESSAGING_API_KEY", &config.MessagingAPIKey)
	str("MESSAGING_SENDER", &config.MessagingSender)

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"ACCESS_TOKEN_TTL", &config.AccessTokenValidityDuration},
		{"REFRESH_TOKEN_TTL", &config.RefreshTokenValidityDuration},
		{"VERIFICATION_TOKEN_TTL", &config.VerificationTokenValidityDuration},
		{"RATE_LIMIT_WINDOW", &config.RateLimitWindow},
	}
	for _, d := range durations {
		v, ok := os.LookupEnv(envPrefix + d.name)
		if !ok {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, d.name, err)
		}
		*d.dst = parsed
	}

	if v, ok := os.LookupEnv(envPrefix + "RATE_LIMIT_MAX_ATTEMPTS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT_MAX_ATTEMPTS: %w", envPrefix, err)
		}
		config.RateLimitMaxAttempts = n
	}

	if v, ok := os.LookupEnv(envPrefix + "COOKIE_SECURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sCOOKIE_SECURE: %w", envPrefix, err)
		}
		config.CookieSecure = b
	}

	return nil
}
