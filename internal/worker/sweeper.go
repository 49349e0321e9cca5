// Package worker runs the API's background maintenance loops.
package worker

import (
	"context"
	"log/slog"
	"time"
)

type Config struct {
	Name     string
	Interval time.Duration
}

// Sweeper calls sweep every Interval until ctx is done.
type Sweeper struct {
	cfg   Config
	sweep func() int
	log   *slog.Logger
}

func NewSweeper(cfg Config, sweep func() int, log *slog.Logger) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{cfg: cfg, sweep: sweep, log: log}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("sweeper stopped", "name", s.cfg.Name)
			return

		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				s.log.Debug("sweeper removed expired entries", "name", s.cfg.Name, "count", n)
			}
		}
	}
}
