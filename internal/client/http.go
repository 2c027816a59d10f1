package client

/*
subscope — subdomain discovery over Certificate Transparency logs, in Go
Copyright (C) 2026  subscope contributors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

/*
Package client provides the HTTP clients used by subscope.

Two distinct clients live here because the two network jobs have opposite
needs. The shared client talks to the certificate-transparency source: one
well-behaved endpoint, verified TLS, connection reuse, generous timeout for
large JSON bodies. Probe clients talk to arbitrary, uncontrolled third-party
hosts: short per-attempt timeouts, no certificate verification (validity is
not the liveness question), and no expectation of connection reuse.

The shared client is a global instance configured once and retrieved by
multiple parts of the application, promoting TCP connection reuse and
consistent client behavior.
*/

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"
)

var (
	// defaultDialTimeout specifies the default timeout for establishing a new connection.
	defaultDialTimeout = 5 * time.Second
	// defaultKeepAliveTimeout specifies the default keep-alive period for an active network connection.
	defaultKeepAliveTimeout = 60 * time.Second
	// defaultIdleConnTimeout is the maximum amount of time an idle (keep-alive) connection
	// will remain idle before closing itself.
	defaultIdleConnTimeout = 90 * time.Second
	// defaultMaxIdleConns controls the maximum number of idle (keep-alive) connections across all hosts.
	defaultMaxIdleConns = 20
	// defaultMaxConnsPerHost controls the maximum number of connections per host.
	defaultMaxConnsPerHost = 10
	// defaultRequestTimeout bounds a complete request against the source.
	// crt.sh responses for large organisations can run to tens of megabytes,
	// so this is deliberately generous.
	defaultRequestTimeout = 30 * time.Second

	// sharedClient is the global HTTP client instance used for source queries.
	sharedClient *http.Client
	// sharedClientLock protects access to sharedClient and clientInitialized.
	sharedClientLock sync.RWMutex
	// clientInitialized indicates whether the sharedClient has been initialized.
	clientInitialized bool
)

// Config holds configuration parameters for the shared HTTP client.
// A zero-value Config results in default settings being used.
type Config struct {
	// DialTimeout is the maximum duration for establishing a new connection.
	DialTimeout time.Duration
	// KeepAliveTimeout specifies the keep-alive period for an active network connection.
	KeepAliveTimeout time.Duration
	// IdleConnTimeout is the maximum amount of time an idle (keep-alive)
	// connection will remain idle before closing itself.
	IdleConnTimeout time.Duration
	// MaxIdleConns controls the maximum number of idle connections across all hosts.
	MaxIdleConns int
	// MaxConnsPerHost controls the maximum number of connections per host.
	MaxConnsPerHost int
	// RequestTimeout is the timeout for the entire HTTP request, including
	// connection time, all redirects, and reading the response body.
	RequestTimeout time.Duration
}

// DefaultConfig returns a Config populated with the default shared-client settings.
func DefaultConfig() *Config {
	return &Config{
		DialTimeout:      defaultDialTimeout,
		KeepAliveTimeout: defaultKeepAliveTimeout,
		IdleConnTimeout:  defaultIdleConnTimeout,
		MaxIdleConns:     defaultMaxIdleConns,
		MaxConnsPerHost:  defaultMaxConnsPerHost,
		RequestTimeout:   defaultRequestTimeout,
	}
}

// InitHTTPClient initializes or reconfigures the shared HTTP client with the
// provided configuration. A nil config selects the defaults; zero fields in
// a non-nil config are filled in individually, so partial configs are safe.
// This function is thread-safe.
func InitHTTPClient(config *Config) {
	sharedClientLock.Lock()
	defer sharedClientLock.Unlock()

	if config == nil {
		config = DefaultConfig()
	}
	if config.DialTimeout == 0 {
		config.DialTimeout = defaultDialTimeout
	}
	if config.KeepAliveTimeout == 0 {
		config.KeepAliveTimeout = defaultKeepAliveTimeout
	}
	if config.IdleConnTimeout == 0 {
		config.IdleConnTimeout = defaultIdleConnTimeout
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = defaultMaxIdleConns
	}
	if config.MaxConnsPerHost == 0 {
		config.MaxConnsPerHost = defaultMaxConnsPerHost
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = defaultRequestTimeout
	}

	// If we're reinitializing an existing client, close idle connections on
	// the old transport so keep-alive connections don't leak across reconfigs.
	if sharedClient != nil {
		if oldTransport, ok := sharedClient.Transport.(*http.Transport); ok && oldTransport != nil {
			oldTransport.CloseIdleConnections()
		}
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment, // Respect standard proxy environment variables.
		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: config.KeepAliveTimeout,
		}).DialContext,
		MaxIdleConns:          config.MaxIdleConns,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	sharedClient = &http.Client{
		Transport: transport,
		Timeout:   config.RequestTimeout,
	}

	clientInitialized = true
}

// GetHTTPClient returns the shared HTTP client instance, initializing it with
// defaults on first use. This function is thread-safe.
func GetHTTPClient() *http.Client {
	sharedClientLock.RLock()
	if !clientInitialized {
		sharedClientLock.RUnlock()
		InitHTTPClient(nil)
		sharedClientLock.RLock()
	}
	c := sharedClient
	sharedClientLock.RUnlock()
	return c
}

// NewProbeClient returns an HTTP client tuned for liveness probing of
// arbitrary third-party hosts. Certificate verification is skipped: the
// question is whether anything answers at all, not whether its certificate
// is valid. Redirects are followed — a redirect already proves transport
// liveness, and following it is harmless within the timeout. The timeout
// bounds the complete attempt, including TLS handshake and response headers.
func NewProbeClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: timeout,
			}).DialContext,
			TLSClientConfig:       &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // probing, not trust
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
			MaxIdleConnsPerHost:   2,
			DisableCompression:    true,
		},
	}
}
