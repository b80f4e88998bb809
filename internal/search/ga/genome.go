package ga

import (
	"math"

	"github.com/slotmachine/reelsearch/internal/search/rngs"
	"github.com/slotmachine/reelsearch/internal/search/searcherrors"
	"github.com/slotmachine/reelsearch/internal/search/searchtypes"
	"github.com/slotmachine/reelsearch/internal/search/sequencer"
)

// sequenceFunc sequences one histogram for one reel. It exists so
// materializeReel can be backed either by a direct sequencer call or by a
// seqcache.Cache's memoized lookup, without genome.go importing seqcache.
type sequenceFunc func(h searchtypes.StackHistogram, radius int, seed int64, classify sequencer.Classifier) (searchtypes.ReelStrip, error)

func directSequence(h searchtypes.StackHistogram, radius int, seed int64, classify sequencer.Classifier) (searchtypes.ReelStrip, error) {
	return sequencer.SequenceWithClassifier(h, radius, seed, 0, classify)
}

// materializeReel repeatedly draws a candidate histogram from next and
// attempts to sequence it, up to cap attempts, per §4.E's per-operator
// retry policy ("bounded by the retry cap, then raise a fatal error").
func materializeReel(box searchtypes.ReelBox, classify sequencer.Classifier, seq sequenceFunc, cap int, next func() searchtypes.StackHistogram) (searchtypes.StackHistogram, searchtypes.ReelStrip, error) {
	var lastErr error
	for attempt := 0; attempt < cap; attempt++ {
		h := next()
		strip, err := seq(h, box.Radius, box.Seed, classify)
		if err == nil {
			return h, strip, nil
		}
		lastErr = err
	}
	return nil, nil, searcherrors.SequencingExhaustedf("ga: exhausted %d generate attempts for reel seed %d: %v", cap, box.Seed, lastErr)
}

// sampleHistogram draws a fresh histogram for one reel by sampling each
// gene uniformly within its box, per §4.E's initialization rule.
func sampleHistogram(box searchtypes.ReelBox, rng *rngs.GARNG) searchtypes.StackHistogram {
	h := make(searchtypes.StackHistogram, len(box.Genes))
	for _, sym := range box.SortedSymbols() {
		gb := box.Genes[sym]
		counts := make([]int, len(gb.Low))
		for i := range counts {
			counts[i] = rng.IntRange(gb.Low[i], gb.High[i])
		}
		h[sym] = counts
	}
	return h
}

// blxBounds computes, for one gene position, the §4.E BLX-α expanded
// interval [lo, hi] from two parent values.
func blxBounds(x, y int, alpha float64) (lo, hi int) {
	xf, yf := float64(x), float64(y)
	d := math.Abs(xf - yf)
	minV, maxV := xf, yf
	if yf < xf {
		minV, maxV = yf, xf
	}
	lo = int(math.Round(minV - alpha*d))
	hi = int(math.Round(maxV + alpha*d))
	return lo, hi
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// blxGeneBounds computes, per reel, the per-gene [lo, hi] BLX-α interval
// from two parents' histograms, keyed the same way the histograms are. The
// interval is the raw BLX-α expansion, unclamped to the gene's box: §4.E
// draws uniformly in this interval first and clamps the draw afterward
// (drawFromBounds), rather than clamping the interval itself, so the box
// edges keep the same draw-then-clamp edge-mass as the rest of §4.E.
func blxGeneBounds(parentA, parentB searchtypes.StackHistogram, box searchtypes.ReelBox, alpha float64) map[searchtypes.Symbol][2][]int {
	bounds := make(map[searchtypes.Symbol][2][]int, len(box.Genes))
	for sym, gb := range box.Genes {
		n := len(gb.Low)
		lo := make([]int, n)
		hi := make([]int, n)
		for i := 0; i < n; i++ {
			x := geneAt(parentA, sym, i)
			y := geneAt(parentB, sym, i)
			lo[i], hi[i] = blxBounds(x, y, alpha)
		}
		bounds[sym] = [2][]int{lo, hi}
	}
	return bounds
}

func geneAt(h searchtypes.StackHistogram, sym searchtypes.Symbol, i int) int {
	counts := h[sym]
	if i >= len(counts) {
		return 0
	}
	return counts[i]
}

// drawFromBounds draws one fresh histogram sample from precomputed per-gene
// BLX-α [lo, hi] bounds, then clamps each draw to the gene's own box —
// draw-then-clamp, per §4.E, rather than clamping the BLX interval itself.
func drawFromBounds(box searchtypes.ReelBox, bounds map[searchtypes.Symbol][2][]int, rng *rngs.GARNG) searchtypes.StackHistogram {
	h := make(searchtypes.StackHistogram, len(box.Genes))
	for _, sym := range box.SortedSymbols() {
		gb := bounds[sym]
		lo, hi := gb[0], gb[1]
		geneBox := box.Genes[sym]
		counts := make([]int, len(lo))
		for i := range counts {
			counts[i] = clamp(rng.IntRange(lo[i], hi[i]), geneBox.Low[i], geneBox.High[i])
		}
		h[sym] = counts
	}
	return h
}

// mutateHistogram applies Gaussian mutation (§4.E) to a clone of base: each
// gene, independently, mutates with probability mutationRate by
// round(N(0, sigma)), clamped to its box.
func mutateHistogram(base searchtypes.StackHistogram, box searchtypes.ReelBox, mutationRate, sigma float64, rng *rngs.GARNG) searchtypes.StackHistogram {
	h := base.Clone()
	for _, sym := range box.SortedSymbols() {
		gb := box.Genes[sym]
		counts := h[sym]
		for i := range counts {
			if !rng.Bool(mutationRate) {
				continue
			}
			delta := int(math.Round(rng.NormFloat64(0, sigma)))
			counts[i] = clamp(counts[i]+delta, gb.Low[i], gb.High[i])
		}
	}
	return h
}
