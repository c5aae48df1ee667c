package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults",
			env:  map[string]string{"MARKETPLACE_API_URL": "http://marketplace.local/api"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "8080" || cfg.Checkout.Currency != "SAR" {
					t.Errorf("port=%s currency=%s", cfg.Port, cfg.Checkout.Currency)
				}
				if cfg.Marketplace.Timeout != 30*time.Second || cfg.Checkout.PlacingLockTTL != 45*time.Second {
					t.Errorf("timeouts = %v %v", cfg.Marketplace.Timeout, cfg.Checkout.PlacingLockTTL)
				}
				if cfg.PrometheusEnabled {
					t.Error("prometheus should be off by default")
				}
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"MARKETPLACE_API_URL": "http://marketplace.local/api",
				"SESSION_TTL":         "15m",
				"CHECKOUT_CURRENCY":   " aed ",
				"REDIS_DB":            "3",
				"PROMETHEUS_ENABLED":  "true",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Checkout.SessionTTL != 15*time.Minute {
					t.Errorf("session ttl = %v", cfg.Checkout.SessionTTL)
				}
				if cfg.Checkout.Currency != "AED" || cfg.Redis.DB != 3 || !cfg.PrometheusEnabled {
					t.Errorf("cfg = %+v", cfg)
				}
			},
		},
		{
			name:    "missing marketplace url",
			env:     map[string]string{"MARKETPLACE_API_URL": ""},
			wantErr: true,
		},
		{
			name:    "bad duration",
			env:     map[string]string{"MARKETPLACE_API_URL": "http://x", "PLACING_LOCK_TTL": "soon"},
			wantErr: true,
		},
		{
			name:    "production needs jwt secret",
			env:     map[string]string{"MARKETPLACE_API_URL": "http://x", "ENVIRONMENT": "production"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
