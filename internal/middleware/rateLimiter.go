package middleware

import (
	"sync"
	"time"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

var limiterInstance = NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND,
	config.RateLimiterMaxClients, config.RateLimiterClientTTL)

// IPRateLimiter hands out one token bucket per client address. Idle clients age out of the LRU.
type IPRateLimiter struct {
	ips       *expirable.LRU[string, *rate.Limiter]
	mu        sync.Mutex
	rateLimit rate.Limit
	burstRate int
}

func NewIPRateLimiter(r rate.Limit, b int, maxClients int, ttl time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		ips:       expirable.NewLRU[string, *rate.Limiter](maxClients, nil, ttl),
		rateLimit: r,
		burstRate: b,
	}
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()
	limiter, exists := i.ips.Get(ip)
	if !exists {
		limiter = rate.NewLimiter(i.rateLimit, i.burstRate)
		i.ips.Add(ip, limiter)
	}
	return limiter
}

func (i *IPRateLimiter) Clients() int {
	return i.ips.Len()
}
