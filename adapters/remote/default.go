package remote

import (
	"sync"

	"goanalytics/internal"
)

var (
	defaultMu     sync.Mutex
	defaultClient *Client
	defaultConfig = DefaultClientConfig()
)

// Configure sets the configuration used the next time Default builds a client.
// It does not affect a client that has already been created; call ResetDefault.
func Configure(config ClientConfig) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultConfig = config
}

// Default returns the process-wide client, creating it on first use
func Default() *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient == nil {
		defaultClient = NewClient(defaultConfig, internal.DefaultLogger)
	}
	return defaultClient
}

// ResetDefault drops the process-wide client so the next Default call rebuilds it
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultClient = nil
}
