// Command bookbench drives a single in-process OrderBook with a
// synthetic, rate-limited delta stream and reports applied/rejected
// counts plus p50/p99 apply latency (crossed-book purges are not
// counted), per
// SPEC_FULL.md §12.3. Grounded on the teacher's cmd/benchmark, which
// performs the analogous role for its matching engine: warm up, run N
// operations timing each one, sort the latencies, and report
// percentiles — generalized here from the teacher's service/risk
// -engine benchmarks to this core's OrderBook.Apply.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tradecore-io/tradecore/pkg/enums"
	"github.com/tradecore-io/tradecore/pkg/fixed"
	"github.com/tradecore-io/tradecore/pkg/identifiers"
	"github.com/tradecore-io/tradecore/pkg/ingest"
	"github.com/tradecore-io/tradecore/pkg/marketdata"
	"github.com/tradecore-io/tradecore/pkg/orderbook"
)

func main() {
	iterations := flag.Int("iterations", 100_000, "number of synthetic deltas to submit")
	ratePerSecond := flag.Float64("rate", 0, "submission rate limit in deltas/sec; 0 disables throttling")
	bookType := flag.String("book-type", "L2_MBP", "book type: L1_TBBO, L2_MBP, or L3_MBO")
	seed := flag.Int64("seed", 1, "PRNG seed for the synthetic delta stream")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	bt, err := enums.BookTypeFromString(*bookType)
	if err != nil {
		logger.Fatal("invalid book type", zap.Error(err))
	}

	symbol, err := identifiers.NewSymbol("BENCH")
	if err != nil {
		logger.Fatal("failed to construct symbol", zap.Error(err))
	}
	venue, err := identifiers.NewVenue("SYNTH")
	if err != nil {
		logger.Fatal("failed to construct venue", zap.Error(err))
	}
	instrumentID, err := identifiers.NewInstrumentId(symbol, venue)
	if err != nil {
		logger.Fatal("failed to construct instrument id", zap.Error(err))
	}

	book := orderbook.NewOrderBook(instrumentID, bt, orderbook.WithLogger(logger))
	ingestor := ingest.NewIngestor(book, instrumentID, ingest.DefaultBreakerConfig(), logger)

	var throttle *ingest.Throttle
	if *ratePerSecond > 0 {
		throttle = ingest.NewThrottle(*ratePerSecond, int(*ratePerSecond))
	}

	report := run(ingestor, throttle, instrumentID, *iterations, *seed)
	printReport(report)
}

type report struct {
	iterations int
	applied    int
	rejected   int
	duration   time.Duration
	latencies  []time.Duration
}

func run(ingestor *ingest.Ingestor, throttle *ingest.Throttle, instrumentID identifiers.InstrumentId, iterations int, seed int64) report {
	rng := rand.New(rand.NewSource(seed))
	latencies := make([]time.Duration, 0, iterations)
	applied, rejected := 0, 0

	start := time.Now()
	for i := 0; i < iterations; i++ {
		if throttle != nil {
			_ = throttle.Wait(context.Background())
		}

		delta := syntheticDelta(instrumentID, rng, uint64(i))
		opStart := time.Now()
		err := ingestor.Apply(delta)
		latencies = append(latencies, time.Since(opStart))

		if err != nil {
			rejected++
			continue
		}
		applied++
	}

	return report{
		iterations: iterations,
		applied:    applied,
		rejected:   rejected,
		duration:   time.Since(start),
		latencies:  latencies,
	}
}

// syntheticDelta generates a uniformly-random ADD around a fixed mid
// price, sufficient to exercise Add/crossed-book resolution without
// claiming to model any real venue's order flow.
func syntheticDelta(instrumentID identifiers.InstrumentId, rng *rand.Rand, sequence uint64) marketdata.OrderBookDelta {
	side := enums.OrderSideBuy
	if rng.Intn(2) == 1 {
		side = enums.OrderSideSell
	}

	offset := rng.Intn(200) - 100 // -100..99 ticks around mid
	raw := int64(100_00+offset) * (fixed.FixedScale / 100)
	price, err := fixed.NewPriceFromRaw(raw, 2)
	if err != nil {
		price, _ = fixed.NewPriceFromRaw(100_00*(fixed.FixedScale/100), 2)
	}
	size, _ := fixed.NewQuantityFromRaw(uint64(1+rng.Intn(100))*uint64(fixed.FixedScale), 0)

	order, _ := marketdata.NewBookOrder(sequence+1, side, price, size)
	delta, _ := marketdata.NewOrderBookDelta(instrumentID, enums.BookActionAdd, order, true, sequence, sequence, sequence)
	return delta
}

func printReport(r report) {
	sort.Slice(r.latencies, func(i, j int) bool { return r.latencies[i] < r.latencies[j] })
	p50 := percentile(r.latencies, 0.50)
	p99 := percentile(r.latencies, 0.99)

	fmt.Printf("iterations:  %d\n", r.iterations)
	fmt.Printf("applied:     %d\n", r.applied)
	fmt.Printf("rejected:    %d\n", r.rejected)
	fmt.Printf("duration:    %s\n", r.duration)
	fmt.Printf("ops/sec:     %.0f\n", float64(r.iterations)/r.duration.Seconds())
	fmt.Printf("p50 latency: %s\n", p50)
	fmt.Printf("p99 latency: %s\n", p99)
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)) * p)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
