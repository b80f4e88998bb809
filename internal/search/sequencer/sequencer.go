// Package sequencer implements the Reel Sequencer of spec.md §4.B: it
// materializes a per-reel Stack Histogram into a concrete cyclic reel strip
// that honors the adjacency rules between special, high and low symbol
// classes. The bucket/attempt-loop shape is grounded on
// internal/game/reels/reel_generator.go's Grid construction, generalized
// from that file's fixed three-class weighting to the spec's constructive
// gap-DFS + suffix-builder algorithm.
package sequencer

import (
	"sort"

	"github.com/slotmachine/reelsearch/internal/search/rngs"
	"github.com/slotmachine/reelsearch/internal/search/searcherrors"
	"github.com/slotmachine/reelsearch/internal/search/searchtypes"
)

// sentinelSymbol marks a gap position the DFS could not fill. Spec §9
// prefers an explicit boolean failure channel over leaking this into a
// returned strip; it never escapes Sequence, it only triggers an
// attempt-level retry internally.
const sentinelSymbol searchtypes.Symbol = -1

// DefaultMaxAttempts is the §4.B default attempt cap.
const DefaultMaxAttempts = 50

// Sequence runs the §4.B algorithm for one reel: given a histogram, a
// radius and a seed, it tries up to maxAttempts (DefaultMaxAttempts if <=
// 0) independently-seeded attempts and returns the first valid strip, or a
// SequencingExhausted error if none succeeds.
func Sequence(h searchtypes.StackHistogram, radius int, seed int64, maxAttempts int) (searchtypes.ReelStrip, error) {
	return SequenceWithClassifier(h, radius, seed, maxAttempts, DefaultClassifier(nil))
}

// Classifier reports the §3 symbol class of a symbol appearing in a
// histogram. SequenceWithClassifier lets callers outside the slot-config
// boundary (tests, tools) supply one without constructing a full
// SlotMachineConfig.
type Classifier func(searchtypes.Symbol) searchtypes.SymbolClass

// DefaultClassifier builds a Classifier from an explicit special set, which
// may be nil; every symbol outside it is classed Low.
func DefaultClassifier(special map[searchtypes.Symbol]struct{}) Classifier {
	return func(sym searchtypes.Symbol) searchtypes.SymbolClass {
		if _, ok := special[sym]; ok {
			return searchtypes.ClassSpecial
		}
		return searchtypes.ClassLow
	}
}

// ClassifierFromConfig derives a Classifier from a SlotMachineConfig's
// wild/scatter/high sets.
func ClassifierFromConfig(cfg *searchtypes.SlotMachineConfig) Classifier {
	return cfg.ClassOf
}

// SequenceWithClassifier is Sequence with an explicit symbol classifier.
func SequenceWithClassifier(h searchtypes.StackHistogram, radius int, seed int64, maxAttempts int, classify Classifier) (searchtypes.ReelStrip, error) {
	if radius <= 0 {
		return nil, searcherrors.ConfigInvalidf("sequencer: radius must be > 0, got %d", radius)
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		rng := rngs.NewMulberry32(seed, attempt)
		buckets := buildBuckets(h, classify)

		strip := buildAttempt(buckets, radius, rng)
		if !containsSentinel(strip) {
			return toStrip(strip), nil
		}
	}

	return nil, searcherrors.SequencingExhaustedf("sequencer: exhausted %d attempts for seed %d", maxAttempts, seed)
}

// buckets holds the three stack collections §4.B materializes from a
// histogram before one sequencing attempt.
type buckets struct {
	special []searchtypes.Stack
	high    map[int][]searchtypes.Stack
	low     map[int][]searchtypes.Stack
}

func buildBuckets(h searchtypes.StackHistogram, classify Classifier) *buckets {
	b := &buckets{
		high: make(map[int][]searchtypes.Stack),
		low:  make(map[int][]searchtypes.Stack),
	}
	for _, sym := range h.SortedSymbols() {
		counts := h[sym]
		class := classify(sym)
		for i, n := range counts {
			length := i + 1
			for k := 0; k < n; k++ {
				st := searchtypes.Stack{Sym: sym, Length: length}
				switch class {
				case searchtypes.ClassSpecial:
					b.special = append(b.special, st)
				case searchtypes.ClassHigh:
					b.high[length] = append(b.high[length], st)
				default:
					b.low[length] = append(b.low[length], st)
				}
			}
		}
	}
	return b
}

// popRandom removes and returns a uniformly random element of bucket[length]
// via pop-swap with the last element, keeping removal O(1).
func popRandom(bucket map[int][]searchtypes.Stack, length int, rng *rngs.Mulberry32) searchtypes.Stack {
	list := bucket[length]
	idx := rng.IntRange(0, len(list)-1)
	chosen := list[idx]
	last := len(list) - 1
	list[idx] = list[last]
	bucket[length] = list[:last]
	return chosen
}

func bucketEmpty(bucket map[int][]searchtypes.Stack) bool {
	for _, list := range bucket {
		if len(list) > 0 {
			return false
		}
	}
	return true
}

func bucketLen(bucket map[int][]searchtypes.Stack) int {
	n := 0
	for _, list := range bucket {
		n += len(list)
	}
	return n
}

// buildAttempt runs one full sequencing attempt: specials interleaved with
// gap-DFS sequences, followed by the suffix builder.
func buildAttempt(b *buckets, radius int, rng *rngs.Mulberry32) []searchtypes.Stack {
	var strip []searchtypes.Stack

	if len(b.special) > 0 {
		for _, sp := range b.special {
			strip = append(strip, sp)
			strip = append(strip, gapDFS(b, radius-1, false, true, rng)...)
		}
		strip = append(strip, suffix(b, true, rng)...)
	} else {
		strip = append(strip, suffix(b, false, rng)...)
	}

	return strip
}

// gapDFS fills a gap of remaining length g after a special (between two
// specials, or after the last one), per §4.B's "Gap DFS". isFirst marks the first
// position of the gap, where a high-class move is disallowed.
func gapDFS(b *buckets, g int, prevWasHigh bool, isFirst bool, rng *rngs.Mulberry32) []searchtypes.Stack {
	if g <= 0 {
		return nil
	}

	type move struct {
		isHigh bool
		length int
	}
	var moves []move
	for ln := 1; ln <= g; ln++ {
		if len(b.low[ln]) > 0 {
			moves = append(moves, move{isHigh: false, length: ln})
		}
		if ln < g && !isFirst && !prevWasHigh && len(b.high[ln]) > 0 {
			moves = append(moves, move{isHigh: true, length: ln})
		}
	}

	if len(moves) == 0 {
		sentinels := make([]searchtypes.Stack, g)
		for i := range sentinels {
			sentinels[i] = searchtypes.Stack{Sym: sentinelSymbol, Length: 1}
		}
		return sentinels
	}

	chosen := moves[rng.IntRange(0, len(moves)-1)]
	var st searchtypes.Stack
	if chosen.isHigh {
		st = popRandom(b.high, chosen.length, rng)
	} else {
		st = popRandom(b.low, chosen.length, rng)
	}

	rest := gapDFS(b, g-chosen.length, chosen.isHigh, false, rng)
	return append([]searchtypes.Stack{st}, rest...)
}

// suffix flattens the remaining high and low buckets into the strip's tail,
// per §4.B's "Suffix builder". mustStartLow forces the first emission (when
// a low stack is available) to be low-class, as required right after the
// final special's gap.
func suffix(b *buckets, mustStartLow bool, rng *rngs.Mulberry32) []searchtypes.Stack {
	var out []searchtypes.Stack
	highJustEmitted := false

	if mustStartLow && bucketLen(b.low) > 0 {
		out = append(out, popRandomAny(b.low, rng))
	}

	for bucketLen(b.high) > 0 || bucketLen(b.low) > 0 {
		haveHigh := bucketLen(b.high) > 0
		haveLow := bucketLen(b.low) > 0

		var emitHigh bool
		switch {
		case highJustEmitted && haveLow:
			emitHigh = false
		case highJustEmitted && !haveLow:
			emitHigh = true
		case !haveLow:
			emitHigh = true
		case !haveHigh:
			emitHigh = false
		default:
			emitHigh = rng.Bool(0.5) || bucketLen(b.high) > bucketLen(b.low)
		}

		if emitHigh {
			out = append(out, popRandomAny(b.high, rng))
			highJustEmitted = true
		} else {
			out = append(out, popRandomAny(b.low, rng))
			highJustEmitted = false
		}
	}

	return out
}

// popRandomAny pops a random stack from across all length buckets of a
// class: it picks a uniformly random occupied length, then a uniformly
// random stack within it, so stacks in smaller buckets are more likely. Occupied lengths are
// collected in ascending order rather than map iteration order so the draw
// sequence stays reproducible for a fixed seed.
func popRandomAny(bucket map[int][]searchtypes.Stack, rng *rngs.Mulberry32) searchtypes.Stack {
	var lengths []int
	for ln, list := range bucket {
		if len(list) > 0 {
			lengths = append(lengths, ln)
		}
	}
	sort.Ints(lengths)
	ln := lengths[rng.IntRange(0, len(lengths)-1)]
	return popRandom(bucket, ln, rng)
}

func containsSentinel(stacks []searchtypes.Stack) bool {
	for _, st := range stacks {
		if st.Sym == sentinelSymbol {
			return true
		}
	}
	return false
}

func toStrip(stacks []searchtypes.Stack) searchtypes.ReelStrip {
	var strip searchtypes.ReelStrip
	for _, st := range stacks {
		for k := 0; k < st.Length; k++ {
			strip = append(strip, st.Sym)
		}
	}
	return strip
}
