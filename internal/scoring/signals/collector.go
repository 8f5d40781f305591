// Package signals gathers the registration-time signal bundle the scoring
// engine consumes.
package signals

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mssola/useragent"

	"peerhelp/internal/ipreputation"
	"peerhelp/internal/scoring"
	"peerhelp/pkg/platform/circuit"
)

// Collector combines IP reputation with User-Agent inspection. Reputation
// lookups sit behind a circuit breaker so a dead upstream does not add its
// timeout to every registration.
type Collector struct {
	reputation ipreputation.Lookuper
	breaker    *circuit.Breaker
	logger     *slog.Logger
}

type Option func(*Collector)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Collector) {
		c.breaker = b
	}
}

// New returns a collector. reputation may be nil when lookups are disabled.
func New(reputation ipreputation.Lookuper, opts ...Option) *Collector {
	c := &Collector{
		reputation: reputation,
		breaker:    circuit.New("ip_reputation"),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect never fails. It returns nil when there is no data at all, which the
// scoring engine treats as the zero-score case.
func (c *Collector) Collect(ctx context.Context, ip, userAgent string) *scoring.Signals {
	var (
		s    scoring.Signals
		have bool
	)

	if rep := c.lookup(ctx, ip); rep != nil {
		s.Hosting = rep.Hosting
		s.Proxy = rep.Proxy
		have = true
	}

	if ua := strings.TrimSpace(userAgent); ua != "" {
		s.AutomatedClient = useragent.New(ua).Bot()
		have = true
	}

	if !have {
		return nil
	}
	return &s
}

func (c *Collector) lookup(ctx context.Context, ip string) *ipreputation.Reputation {
	if c.reputation == nil || !c.breaker.Allow() {
		return nil
	}
	rep, err := c.reputation.Lookup(ctx, ip)
	if err != nil {
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.WarnContext(ctx, "ip reputation lookups suspended", "breaker", c.breaker.Name())
		}
		c.logger.WarnContext(ctx, "ip reputation lookup failed", "error", err)
		return nil
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "ip reputation lookups resumed", "breaker", c.breaker.Name())
	}
	return rep
}
