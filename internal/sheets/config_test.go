package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	valid := func(mod func(*Config)) Config {
		c := DefaultConfig()
		mod(&c)
		return c
	}

	tests := []struct {
		name    string
		errMsg  string
		config  Config
		wantErr bool
	}{
		{
			name: "valid oauth config",
			config: valid(func(c *Config) {
				c.ClientID, c.ClientSecret, c.RefreshToken = "id", "secret", "token"
			}),
		},
		{
			name: "oauth with token file",
			config: valid(func(c *Config) {
				c.ClientID, c.ClientSecret, c.TokenFile = "id", "secret", "/tmp/token.json"
			}),
		},
		{
			name:   "valid service account config",
			config: valid(func(c *Config) { c.ServiceAccountPath = "/path/to/key.json" }),
		},
		{
			name:    "missing auth",
			config:  DefaultConfig(),
			wantErr: true,
			errMsg:  "no authentication method configured",
		},
		{
			name: "multiple auth methods",
			config: valid(func(c *Config) {
				c.ClientID, c.ClientSecret, c.RefreshToken = "id", "secret", "token"
				c.ServiceAccountPath = "/path/to/key.json"
			}),
			wantErr: true,
			errMsg:  "multiple authentication methods",
		},
		{
			name: "zero batch size",
			config: valid(func(c *Config) {
				c.ServiceAccountPath = "/k.json"
				c.BatchSize = 0
			}),
			wantErr: true,
			errMsg:  "batch size must be positive",
		},
		{
			name: "negative retry delay",
			config: valid(func(c *Config) {
				c.ServiceAccountPath = "/k.json"
				c.RetryDelay = -time.Second
			}),
			wantErr: true,
			errMsg:  "retry delay cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorContains(t, err, tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}
