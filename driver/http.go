// Package driver
package driver

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"
)

const defaultHTTPTimeout = 30 * time.Second

// NewHTTPClient builds the shared HTTP client used for every storefront API
// call. The cookie jar carries the session credential; the API never sees an
// explicit token from this client.
func NewHTTPClient(timeout time.Duration) (*http.Client, error) {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &http.Client{
		Jar:     jar,
		Timeout: timeout,
	}, nil
}
