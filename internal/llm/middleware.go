package llm

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// WithLogging logs request shape and outcome. Provide a custom logger or
// nil to use slog.Default().
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Client) Client {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next Client
	log  *slog.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) Generate(ctx context.Context, req Request) (*Response, error) {
	var promptBytes int
	for _, m := range req.Messages {
		promptBytes += len(m.Text)
	}
	start := time.Now()
	resp, err := l.next.Generate(ctx, req)
	if err != nil {
		l.log.Error("llm call failed",
			"client", l.next.Name(),
			"model", req.Model,
			"bytes", promptBytes,
			"elapsed", time.Since(start),
			"error", err,
		)
		return nil, err
	}
	l.log.Info("llm call",
		"client", l.next.Name(),
		"model", req.Model,
		"bytes", promptBytes,
		"grounded", req.EnableGrounding,
		"citations", len(resp.Citations),
		"elapsed", time.Since(start),
	)
	return resp, nil
}

// WithRateLimit bounds outbound calls to rps with the given burst.
// rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Middleware {
	if burst <= 0 {
		burst = 1
	}
	return func(next Client) Client {
		if rps <= 0 {
			return next
		}
		return &limited{next: next, rl: rate.NewLimiter(rate.Limit(rps), burst)}
	}
}

type limited struct {
	next Client
	rl   *rate.Limiter
}

func (l *limited) Name() string { return l.next.Name() }
func (l *limited) Close() error { return l.next.Close() }

func (l *limited) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := l.rl.Wait(ctx); err != nil {
		return nil, err
	}
	return l.next.Generate(ctx, req)
}
