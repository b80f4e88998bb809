// Package fitness implements the scalar + breakdown fitness function of
// spec.md §4.F: relative-delta components against operator targets, lower
// is better. Grounded on the FitnessBreakdown struct (named components plus
// a Total) in the retrieved stojg-playlist-sorter GA reference.
package fitness

import (
	"math"

	"github.com/slotmachine/reelsearch/internal/search/searchtypes"
	"github.com/slotmachine/reelsearch/internal/search/simulate"
)

// RelDelta computes the §4.F relative delta between a target t and an
// achieved value a: |t-a| / (|t|+|a|), or 0 when |t|+|a| is below 1e-12.
func RelDelta(t, a float64) float64 {
	denom := math.Abs(t) + math.Abs(a)
	if denom < 1e-12 {
		return 0
	}
	return math.Abs(t-a) / denom
}

// Score evaluates one simulator Result against targets and returns the
// §4.F breakdown. unevennessWeight is the resolved
// symbolRtpUnevennessWeight (see searchtypes.GAConfig's doc comment on the
// duplication between GAConfig and SimulationTargets).
func Score(res *simulate.Result, targets *searchtypes.SimulationTargets, unevennessWeight float64) *searchtypes.FitnessBreakdown {
	rtpDelta := RelDelta(targets.TargetRTP, res.RTP)
	hitDelta := RelDelta(targets.TargetHitFrequency, res.HitFrequency)
	bonusDelta := RelDelta(targets.TargetBonusFrequency, res.BonusFrequency)

	symbolErr := symbolRTPError(res, targets)

	total := rtpDelta + hitDelta + bonusDelta + unevennessWeight*symbolErr

	symbolRTP := make(map[searchtypes.Symbol]float64, len(res.SymbolRTP))
	for s, v := range res.SymbolRTP {
		symbolRTP[s] = v
	}

	return &searchtypes.FitnessBreakdown{
		Total:               total,
		RTPDelta:            rtpDelta,
		HitFrequencyDelta:   hitDelta,
		BonusFrequencyDelta: bonusDelta,
		SymbolRTPError:      symbolErr,
		RTP:                 res.RTP,
		HitFrequency:        res.HitFrequency,
		BonusFrequency:      res.BonusFrequency,
		SymbolRTP:           symbolRTP,
	}
}

// symbolRTPError computes the §4.F per-symbol RTP unevenness term: the
// mean relative delta between each targeted symbol's RTP and its achieved
// value, or 0 if there are no targets or no spins were run.
func symbolRTPError(res *simulate.Result, targets *searchtypes.SimulationTargets) float64 {
	if len(targets.SymbolRTPTargets) == 0 || res.SpinCount == 0 {
		return 0
	}

	var sum float64
	for sym, target := range targets.SymbolRTPTargets {
		achieved := res.SymbolRTP[sym] // zero value if symbol never won
		sum += RelDelta(target, achieved)
	}
	return sum / float64(len(targets.SymbolRTPTargets))
}
