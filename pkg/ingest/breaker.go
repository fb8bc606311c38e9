// Package ingest wraps the producer-facing OrderBook.Apply entrypoint
// with a circuit breaker (spec.md §7's "book is poisoned and must be
// rebuilt" policy) and a token-bucket limiter for synthetic/benchmark
// delta submission.
//
// Grounded on the teacher's resilience middleware pattern (the gin
// circuit-breaker middleware under the now-removed services/ tree)
// generalized from HTTP handler wrapping to wrapping a single Go
// function call, and on github.com/sony/gobreaker, which the teacher's
// go.mod already pins.
package ingest

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/tradecore-io/tradecore/pkg/coreerrors"
	"github.com/tradecore-io/tradecore/pkg/identifiers"
	"github.com/tradecore-io/tradecore/pkg/marketdata"
	"github.com/tradecore-io/tradecore/pkg/orderbook"
)

// BreakerConfig tunes how many consecutive poisoning failures trip the
// circuit, and how long it stays open before probing again.
type BreakerConfig struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// DefaultBreakerConfig matches spec.md §5's reconnection flow: a small
// number of consecutive poisoning failures trips the breaker, and it
// stays open long enough for an adapter to tear down its subscription
// and replay a CLEAR + snapshot.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{ConsecutiveFailures: 3, OpenTimeout: 5 * time.Second}
}

// Ingestor applies deltas to one OrderBook through a circuit breaker:
// once ConsecutiveFailures poisoning errors happen in a row, the
// breaker opens and every subsequent Apply call fails fast with
// ErrBookPoisoned until OpenTimeout elapses and a single probe call is
// let through.
type Ingestor struct {
	book    *orderbook.OrderBook
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

// NewIngestor constructs an Ingestor for book.
func NewIngestor(book *orderbook.OrderBook, instrumentID identifiers.InstrumentId, cfg BreakerConfig, log *zap.Logger) *Ingestor {
	if log == nil {
		log = zap.NewNop()
	}
	settings := gobreaker.Settings{
		Name:        "book-ingest-" + instrumentID.String(),
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures },
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("ingest breaker state change", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			// Only a poisoning failure means the book itself is broken;
			// ordinary validation rejections (unknown order id, stale
			// delta) are expected producer-side noise and must not trip
			// the breaker.
			return err == nil || !errors.Is(err, coreerrors.ErrBookPoisonedSentinel)
		},
	}
	return &Ingestor{book: book, breaker: gobreaker.NewCircuitBreaker(settings), log: log}
}

// Apply submits delta through the breaker. A book-poisoning failure
// counts toward tripping the breaker; a validation-only failure
// (unknown order id, stale delta) does not, since those are expected,
// recoverable producer-side mistakes rather than a sign the book
// itself is broken.
func (i *Ingestor) Apply(delta marketdata.OrderBookDelta) error {
	_, err := i.breaker.Execute(func() (any, error) {
		return nil, i.book.Apply(delta)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) {
		return coreerrors.Wrap(coreerrors.ErrBookPoisoned, "ingest breaker open, book rebuild required", err)
	}
	return err
}
