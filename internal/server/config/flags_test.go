package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		mutate    func(c *Config)
		expectErr bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-m", ":6000", "-d", "db", "-s", "secret", "-l", "debug",
				"-t", "1", "-r", "3", "-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1",
				"-e", "http://endpoint", "-w", "http://gw", "-k", "key",
			},
			mutate: func(c *Config) {
				c.HTTPAddr = "127.0.0.1:9090"
				c.HealthAddrGRPC = ":6000"
				c.DatabaseDSN = "db"
				c.SecretKey = "secret"
				c.LogLevel = "debug"
				c.AccessTokenValidityDuration = 1 * time.Minute
				c.RefreshTokenValidityDuration = 3 * time.Minute
				c.S3RootUser = "user"
				c.S3RootPassword = "password"
				c.S3Bucket = "bucket"
				c.S3Region = "us-west-1"
				c.S3BaseEndpoint = "http://endpoint"
				c.MessagingGatewayURL = "http://gw"
				c.MessagingAPIKey = "key"
			},
		},
		{
			name:   "unrelated flags are ignored",
			args:   []string{"-c", "conf.json", "-env-file", "x.env"},
			mutate: func(c *Config) {},
		},
		{
			name:      "non numeric minutes",
			args:      []string{"-t", "soon"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := defaults()
			err := parseFlags(got, tt.args)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			want := defaults()
			tt.mutate(want)
			assert.Empty(t, cmp.Diff(want, got))
		})
	}
}
