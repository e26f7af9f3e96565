package directo

import (
	"fmt"
	"time"
)

// DefaultBaseURL is the hosted XML export endpoint. %s is the company
// database name.
const DefaultBaseURL = "https://login.directo.ee/xmlcore/%s/xmlcore.asp"

// Config holds the connection settings for the Directo XML export API.
type Config struct {
	// Company is the Directo database name, part of the endpoint path.
	Company string

	// Token is the API key sent with every request.
	Token string

	// BaseURL overrides the hosted endpoint, mainly for tests.
	// When set it is used as-is and Company is ignored.
	BaseURL string

	// Timeout bounds a single HTTP request. Zero means 60s.
	Timeout time.Duration

	// RetryMax is the number of retries on transport errors and 5xx
	// responses. Zero means 3.
	RetryMax int

	// RequestsPerSecond throttles outgoing requests. Zero means 2.
	RequestsPerSecond float64
}

// Validate checks the config is sufficient to reach the API.
func (c Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("directo: API token is required")
	}
	if c.BaseURL == "" && c.Company == "" {
		return fmt.Errorf("directo: company database name is required")
	}
	return nil
}

func (c Config) endpoint() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return fmt.Sprintf(DefaultBaseURL, c.Company)
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 60 * time.Second
}

func (c Config) retryMax() int {
	if c.RetryMax > 0 {
		return c.RetryMax
	}
	return 3
}

func (c Config) requestsPerSecond() float64 {
	if c.RequestsPerSecond > 0 {
		return c.RequestsPerSecond
	}
	return 2
}
