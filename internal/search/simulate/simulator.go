// Package simulate implements the Monte-Carlo Simulator of spec.md §4.D:
// it drives a spinengine.Engine over spinCount random spin indices and
// aggregates RTP, hit frequency, bonus frequency and per-(symbol, length)
// win statistics. Grounded on the aggregate-then-derive shape of
// cmd/rtp-simulator/main.go's SimulationStats accumulation.
package simulate

import (
	"math/rand"

	"github.com/slotmachine/reelsearch/internal/search/searcherrors"
	"github.com/slotmachine/reelsearch/internal/search/searchtypes"
	"github.com/slotmachine/reelsearch/internal/search/spinengine"
)

// comboKey identifies one (symbol, length) aggregation bucket.
type comboKey struct {
	Symbol searchtypes.Symbol
	Length int
}

// Result is the §4.D aggregate plus its derived metrics.
type Result struct {
	SpinCount  int64
	TotalWin   float64
	WinSpins   int64
	BonusSpins int64

	// WinningCombinationCounts and WinningCombinationWinSums are keyed by
	// (symbol, length), per §6's external interface.
	WinningCombinationCounts  map[searchtypes.Symbol]map[int]int64
	WinningCombinationWinSums map[searchtypes.Symbol]map[int]float64

	RTP            float64
	HitFrequency   float64
	BonusFrequency float64
	SymbolRTP      map[searchtypes.Symbol]float64
}

// Simulator runs spins of one Engine and aggregates their outcomes.
type Simulator struct {
	engine *spinengine.Engine
	cycle  int64
	rng    *rand.Rand
}

// New constructs a Simulator over engine, seeded for reproducible spin
// index selection (§9: "inject a seedable RNG per simulator instance").
// It fails with ConfigInvalid if the reel cycle overflows int64, per §4.D.
func New(engine *spinengine.Engine, seed int64) (*Simulator, error) {
	cycle, err := engine.Cycle()
	if err != nil {
		return nil, err
	}
	if cycle <= 0 {
		return nil, searcherrors.ConfigInvalid("simulator: reel cycle must be positive")
	}
	return &Simulator{
		engine: engine,
		cycle:  cycle,
		rng:    rand.New(rand.NewSource(seed)),
	}, nil
}

// Run executes spinCount spins and returns the aggregated result. spinCount
// must be > 0.
func (s *Simulator) Run(spinCount int) (*Result, error) {
	if spinCount <= 0 {
		return nil, searcherrors.ConfigInvalidf("simulator: spinCount must be > 0, got %d", spinCount)
	}

	res := &Result{
		SpinCount:                 int64(spinCount),
		WinningCombinationCounts:  make(map[searchtypes.Symbol]map[int]int64),
		WinningCombinationWinSums: make(map[searchtypes.Symbol]map[int]float64),
	}

	for n := 0; n < spinCount; n++ {
		idx := s.rng.Int63n(s.cycle)
		win, combos, bonus := s.engine.SpinFull(idx)

		res.TotalWin += win
		if win != 0 {
			res.WinSpins++
		}
		if bonus {
			res.BonusSpins++
		}

		for _, c := range combos {
			counts, ok := res.WinningCombinationCounts[c.Symbol]
			if !ok {
				counts = make(map[int]int64)
				res.WinningCombinationCounts[c.Symbol] = counts
			}
			counts[c.Length]++

			sums, ok := res.WinningCombinationWinSums[c.Symbol]
			if !ok {
				sums = make(map[int]float64)
				res.WinningCombinationWinSums[c.Symbol] = sums
			}
			sums[c.Length] += c.Win
		}
	}

	res.RTP = res.TotalWin / float64(spinCount)
	res.HitFrequency = float64(res.WinSpins) / float64(spinCount)
	res.BonusFrequency = float64(res.BonusSpins) / float64(spinCount)

	res.SymbolRTP = make(map[searchtypes.Symbol]float64, len(res.WinningCombinationWinSums))
	for sym, sums := range res.WinningCombinationWinSums {
		var total float64
		for _, v := range sums {
			total += v
		}
		res.SymbolRTP[sym] = total / float64(spinCount)
	}

	return res, nil
}
