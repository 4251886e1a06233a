package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDefaultClient(t *testing.T) {
	client := DefaultClient()
	if client == nil {
		t.Fatal("expected non-nil default client")
	}
	if client.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", client.Timeout)
	}
}

func TestSetDefaultClient(t *testing.T) {
	original := DefaultClient()
	defer SetDefaultClient(original)

	replacement := &http.Client{Timeout: time.Second}
	SetDefaultClient(replacement)
	if DefaultClient() != replacement {
		t.Error("expected default client to be replaced")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
	}{
		{"valid_default", func(c *Config) {}, false},
		{"zero_timeout", func(c *Config) { c.Timeout = 0 }, true},
		{"negative_dial_timeout", func(c *Config) { c.DialTimeout = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantError && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewClientAppliesHeaders(t *testing.T) {
	var gotUserAgent, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotCustom = r.Header.Get("X-Hermes-Test")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	config := TestConfig()
	config.Headers["X-Hermes-Test"] = "1"
	client, err := NewClient(config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if gotUserAgent != config.UserAgent {
		t.Errorf("expected user agent %q, got %q", config.UserAgent, gotUserAgent)
	}
	if gotCustom != "1" {
		t.Errorf("expected custom header to be applied, got %q", gotCustom)
	}
}

func TestNewClientRejectsInvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.Timeout = 0
	if _, err := NewClient(config); err == nil {
		t.Fatal("expected error for invalid config")
	}
}
