/*
sweeper.go - Automated quote expiry

PURPOSE:
  Periodically expires saved quotes that are past their validity window.
  An expired quote stays readable but is no longer a valid offer and
  cannot be emailed.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Moves completed/emailed quotes older than the validity window to
    expired in one UPDATE
  - Logs a summary only when something was expired

CONFIGURATION:
  - Validity:      How long a quote stays valid (default: 30 days)
  - CheckInterval: How often to sweep (default: 1 hour)

USAGE:
  sweeper := NewExpirySweeper(store, logger)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - store/sqlite/quotes.go: ExpireQuotesBefore
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aurora/quote-engine/store/sqlite"
)

// ExpirySweeper handles automated quote expiry.
type ExpirySweeper struct {
	Store         *sqlite.Store
	Logger        *zap.Logger
	Validity      time.Duration
	CheckInterval time.Duration

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewExpirySweeper creates a sweeper with default timings.
func NewExpirySweeper(store *sqlite.Store, logger *zap.Logger) *ExpirySweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpirySweeper{
		Store:         store,
		Logger:        logger,
		Validity:      30 * 24 * time.Hour,
		CheckInterval: 1 * time.Hour,
		stop:          make(chan bool),
	}
}

// Start begins the sweeper.
func (s *ExpirySweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)

	go s.run()

	s.Logger.Info("expiry sweeper started",
		zap.Duration("check_interval", s.CheckInterval),
		zap.Duration("validity", s.Validity))
}

// Stop stops the sweeper.
func (s *ExpirySweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.Logger.Info("expiry sweeper stopped")
	}
}

func (s *ExpirySweeper) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.sweep()

	for {
		select {
		case <-s.ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *ExpirySweeper) sweep() {
	ctx := context.Background()
	cutoff := time.Now().Add(-s.Validity)

	expired, err := s.Store.ExpireQuotesBefore(ctx, cutoff)
	if err != nil {
		s.Logger.Error("quote expiry sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		s.Logger.Info("quotes expired",
			zap.Int64("count", expired),
			zap.Time("cutoff", cutoff))
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (s *ExpirySweeper) RunNow() {
	s.sweep()
}
