package remote

import (
	"net/http"
	"time"
)

// ClientConfig holds the connection settings for the remote analysis service
type ClientConfig struct {
	BaseURL string
	Token   string

	// JobTimeout bounds a single analysis job; zero leaves jobs unbounded
	JobTimeout time.Duration

	// CatalogTimeout bounds catalog queries
	CatalogTimeout time.Duration

	// StatsConcurrency limits parallel per-dataset stats requests
	StatsConcurrency int

	HTTPClient *http.Client
}

// DefaultClientConfig returns defaults pointing at a local service
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:          "http://localhost:8000",
		CatalogTimeout:   30 * time.Second,
		StatsConcurrency: 4,
	}
}

func (c ClientConfig) withDefaults() ClientConfig {
	d := DefaultClientConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.CatalogTimeout <= 0 {
		c.CatalogTimeout = d.CatalogTimeout
	}
	if c.StatsConcurrency < 1 {
		c.StatsConcurrency = d.StatsConcurrency
	}
	if c.HTTPClient == nil {
		// No client-level timeout: job duration is governed by contexts
		c.HTTPClient = &http.Client{}
	}
	return c
}
