package main

import (
	"net/http"
	"time"
)

const defaultExternalHTTPTimeout = 30 * time.Second

// externalHTTPClient is the shared client for all outbound calls (Wikipedia
// fetches). A hung remote should fail the request, not wedge a harvest run.
var externalHTTPClient = &http.Client{Timeout: defaultExternalHTTPTimeout}

// ConfigureExternalHTTPClient applies the configured timeout. Zero or
// negative keeps the default. Returns the timeout in effect.
func ConfigureExternalHTTPClient(seconds int) time.Duration {
	timeout := defaultExternalHTTPTimeout
	if seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}
	externalHTTPClient.Timeout = timeout
	return timeout
}
