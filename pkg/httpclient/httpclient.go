// pkg/httpclient/httpclient.go

package httpclient

import (
	"crypto/tls"
	"net/http"
	"os"
)

var defaultClient = func() *http.Client {
	client, err := NewClient(DefaultConfig())
	if err != nil {
		// DefaultConfig is static and always validates.
		panic(err)
	}
	return client
}()

// DefaultClient returns a preconfigured HTTP client used across hermes
func DefaultClient() *http.Client {
	return defaultClient
}

// SetDefaultClient allows replacing the default client for testing purposes
func SetDefaultClient(client *http.Client) {
	defaultClient = client
}

// getTLSConfig returns TLS configuration with proper security settings
func getTLSConfig() *tls.Config {
	// Allow insecure TLS only in development/testing environments
	if os.Getenv("HERMES_INSECURE_TLS") == "true" || os.Getenv("GO_ENV") == "test" {
		return &tls.Config{
			InsecureSkipVerify: true,
			MinVersion:         tls.VersionTLS12,
		}
	}

	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
		},
	}
}
