// Package worker holds the background jobs started by the API server.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// OverdueMarker flips issued invoices past their due date to overdue.
type OverdueMarker interface {
	MarkOverdueInvoices(ctx context.Context, now time.Time) (int64, error)
}

type InvoiceSweeper struct {
	invoices OverdueMarker
	interval time.Duration
	now      func() time.Time
}

func NewInvoiceSweeper(invoices OverdueMarker, interval time.Duration) *InvoiceSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &InvoiceSweeper{invoices: invoices, interval: interval, now: time.Now}
}

// Run sweeps once immediately, then on every tick until ctx is done.
func (s *InvoiceSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", s.interval).Msg("invoice sweeper started")
	s.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("invoice sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

func (s *InvoiceSweeper) Sweep(ctx context.Context) int64 {
	n, err := s.invoices.MarkOverdueInvoices(ctx, s.now())
	if err != nil {
		if ctx.Err() == nil {
			log.Error().Err(err).Msg("failed to mark overdue invoices")
		}
		return 0
	}
	if n > 0 {
		log.Info().Int64("invoices", n).Msg("marked invoices overdue")
	}
	return n
}
