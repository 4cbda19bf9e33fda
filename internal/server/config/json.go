package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/giveaway/internal/flagx"
	"github.com/dmitrijs2005/giveaway/internal/timex"
)

// JsonConfig is the on-disk shape of the -c/-config file. Durations accept
// both "15m" style strings and integer nanoseconds. Pointer fields
// distinguish "absent" from the zero value.
type JsonConfig struct {
	HTTPAddr                          string          `json:"http_addr"`
	HealthAddrGRPC                    string          `json:"grpc_health_addr"`
	DatabaseDSN                       string          `json:"database_dsn"`
	SecretKey                         string          `json:"secret_key"`
	LogLevel                          string          `json:"log_level"`
	AccessTokenValidityDuration       *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration      *timex.Duration `json:"refresh_token_validity_duration"`
	VerificationTokenValidityDuration *timex.Duration `json:"verification_token_validity_duration"`
	RateLimitWindow                   *timex.Duration `json:"rate_limit_window"`
	RateLimitMaxAttempts              *int            `json:"rate_limit_max_attempts"`
	CookieSecure                      *bool           `json:"cookie_secure"`
	S3RootUser                        string          `json:"s3_root_user"`
	S3RootPassword                    string          `json:"s3_root_password"`
	S3Bucket                          string          `json:"s3_bucket"`
	S3Region                          string          `json:"s3_region"`
	S3BaseEndpoint                    string          `json:"s3_base_endpoint"`
	MessagingGatewayURL               string          `json:"messaging_gateway_url"`
	MessagingAPIKey                   string          `json:"messaging_api_key"`
	MessagingSender                   string          `json:"messaging_sender"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJson overlays values from the file named by -c/-config. Absent keys
// leave the current value untouched. Without the flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	jsonConfigFile := flagx.JsonConfigFlags(args)
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.HealthAddrGRPC, c.HealthAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.MessagingGatewayURL, c.MessagingGatewayURL)
	setString(&config.MessagingAPIKey, c.MessagingAPIKey)
	setString(&config.MessagingSender, c.MessagingSender)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.VerificationTokenValidityDuration != nil {
		config.VerificationTokenValidityDuration = c.VerificationTokenValidityDuration.Duration
	}
	if c.RateLimitWindow != nil {
		config.RateLimitWindow = c.RateLimitWindow.Duration
	}
	if c.RateLimitMaxAttempts != nil {
		config.RateLimitMaxAttempts = *c.RateLimitMaxAttempts
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}

	return nil
}
