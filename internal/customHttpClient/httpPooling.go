package customHttpClient

import (
	"net/http"
	"sync"
	"time"

	"github.com/akolanti/AviationCompliance/internal/config"
)

var (
	transportOnce   sync.Once
	customTransport *http.Transport
)

// sharedTransport is reused by every provider client so the embedder and the llm
// keep their connections warm.
func sharedTransport() *http.Transport {
	transportOnce.Do(func() {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.MaxIdleConns = config.MaxIdleConns
		t.MaxIdleConnsPerHost = config.MaxIdleConnsPerHost
		t.IdleConnTimeout = config.IdleConnTimeout
		customTransport = t
	})
	return customTransport
}

// NewPooledClient returns an http.Client on the shared transport. A zero timeout
// leaves deadlines to the request context.
func NewPooledClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: sharedTransport(),
		Timeout:   timeout,
	}
}
