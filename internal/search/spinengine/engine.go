// Package spinengine implements the paylines-based slot evaluator of
// spec.md §4.C: window sampling, line evaluation with wild adoption and
// scatter break, and the bonus-trigger predicate. The reusable-buffer,
// zero-allocation-fast-path shape is grounded on the cascade evaluation
// loop in internal/game/wins/win_calculator.go, generalized from that
// file's ways-pay cascade accounting to a fixed-payline, non-cascading
// evaluator.
package spinengine

import (
	"math"

	"github.com/slotmachine/reelsearch/internal/search/searcherrors"
	"github.com/slotmachine/reelsearch/internal/search/searchtypes"
)

// WinningCombination records one non-zero line payout, per §4.C ("Record a
// winning combination ... only when the payout is non-zero").
type WinningCombination struct {
	Symbol searchtypes.Symbol
	Length int
	Win    float64
}

// Engine evaluates spins against a fixed set of reel strips and a
// SlotMachineConfig. One Engine instance owns its index and cell buffers;
// per §5 it is not safe for concurrent use, and parallel fitness evaluation
// must construct one Engine per worker.
type Engine struct {
	cfg   *searchtypes.SlotMachineConfig
	reels []searchtypes.ReelStrip

	// flatLines[li][r] is the precomputed cell-buffer index for line li,
	// reel r.
	flatLines [][]int

	// windowOffsets[r] is the cell-buffer offset of reel r's window start.
	windowOffsets []int
	cellCount     int

	// indexBuf and cellBuf are reused across Spin calls.
	indexBuf []int
	cellBuf  []searchtypes.Symbol

	maxLineWin float64
}

// New constructs an Engine for a fixed reel set and slot configuration. It
// validates the §3 SlotMachineConfig invariants and the reel-count/window
// arity match, then precomputes flattened line indices.
func New(reels []searchtypes.ReelStrip, cfg *searchtypes.SlotMachineConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(reels) != cfg.ReelCount() {
		return nil, searcherrors.ConfigInvalidf("spin engine: %d reels given, slot config expects %d", len(reels), cfg.ReelCount())
	}
	for r, strip := range reels {
		if len(strip) == 0 {
			return nil, searcherrors.ConfigInvalidf("spin engine: reel %d is empty", r)
		}
		if len(strip) < cfg.Window[r] {
			return nil, searcherrors.ConfigInvalidf("spin engine: reel %d has length %d, shorter than its window %d", r, len(strip), cfg.Window[r])
		}
	}

	e := &Engine{cfg: cfg, reels: reels}

	e.windowOffsets = make([]int, len(cfg.Window))
	offset := 0
	for r, w := range cfg.Window {
		e.windowOffsets[r] = offset
		offset += w
	}
	e.cellCount = offset

	e.flatLines = make([][]int, len(cfg.Lines))
	for li, line := range cfg.Lines {
		flat := make([]int, len(line))
		for r, row := range line {
			flat[r] = e.windowOffsets[r] + row
		}
		e.flatLines[li] = flat
	}

	e.indexBuf = make([]int, len(cfg.Window))
	e.cellBuf = make([]searchtypes.Symbol, e.cellCount)

	e.maxLineWin = 0
	for _, payouts := range cfg.Paytable {
		for _, p := range payouts {
			if p > e.maxLineWin {
				e.maxLineWin = p
			}
		}
	}

	return e, nil
}

// Cycle returns the total number of distinct spin indices: the product of
// reel lengths.
func (e *Engine) Cycle() (int64, error) {
	cycle := int64(1)
	for _, strip := range e.reels {
		n := int64(len(strip))
		if n != 0 && cycle > math.MaxInt64/n {
			return 0, searcherrors.ConfigInvalid("spin engine: reel cycle overflows int64")
		}
		cycle *= n
	}
	return cycle, nil
}

// loadWindow decomposes spin index i into per-reel offsets and fills the
// cell buffer, per §4.C's window decomposition.
func (e *Engine) loadWindow(i int64) {
	remaining := i
	for r := len(e.reels) - 1; r >= 0; r-- {
		n := int64(len(e.reels[r]))
		e.indexBuf[r] = int(remaining % n)
		remaining /= n
	}

	for r, strip := range e.reels {
		off := e.indexBuf[r]
		base := e.windowOffsets[r]
		w := e.cfg.Window[r]
		for k := 0; k < w; k++ {
			e.cellBuf[base+k] = strip.At(off + k)
		}
	}
}

// evalLine walks one line's flattened cells per §4.C's line evaluation
// state machine and returns the locked symbol and final run length.
func (e *Engine) evalLine(flat []int) (searchtypes.Symbol, int) {
	locked := e.cellBuf[flat[0]]
	runLen := 1

	for idx := 1; idx < len(flat); idx++ {
		s := e.cellBuf[flat[idx]]

		if e.cfg.IsScatter(locked) {
			if !e.cfg.IsScatter(s) {
				break
			}
			runLen++
			continue
		}

		if e.cfg.IsWild(locked) && !e.cfg.IsWild(s) && !e.cfg.IsScatter(s) {
			locked = s
		}

		if s == locked || e.cfg.IsWild(s) {
			runLen++
			continue
		}

		break
	}

	return locked, runLen
}

func (e *Engine) linePayout(locked searchtypes.Symbol, runLen int) float64 {
	payouts, ok := e.cfg.Paytable[locked]
	if !ok || runLen < 1 || runLen-1 >= len(payouts) {
		return 0
	}
	return payouts[runLen-1]
}

// Spin evaluates spin index i and returns the total win, without
// allocating a winning-combinations list. This is the fast path the
// Simulator drives millions of times per fitness call.
func (e *Engine) Spin(i int64) float64 {
	e.loadWindow(i)

	var total float64
	for _, flat := range e.flatLines {
		locked, runLen := e.evalLine(flat)
		total += e.linePayout(locked, runLen)
	}
	return total
}

// SpinRecording evaluates spin index i and also returns the list of
// non-zero winning combinations, bounded in size by the number of lines.
func (e *Engine) SpinRecording(i int64) (float64, []WinningCombination) {
	e.loadWindow(i)

	var total float64
	var combos []WinningCombination
	for _, flat := range e.flatLines {
		locked, runLen := e.evalLine(flat)
		win := e.linePayout(locked, runLen)
		if win != 0 {
			combos = append(combos, WinningCombination{Symbol: locked, Length: runLen, Win: win})
			total += win
		}
	}
	return total, combos
}

// bonusTriggered reports whether every reel's window (as loaded by the most
// recent Spin/SpinRecording/BonusTriggeredAt call) contains at least one
// scatter.
func (e *Engine) bonusTriggered() bool {
	for r, w := range e.cfg.Window {
		base := e.windowOffsets[r]
		found := false
		for k := 0; k < w; k++ {
			if e.cfg.IsScatter(e.cellBuf[base+k]) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// BonusTriggeredAt loads spin index i's window and evaluates the bonus
// predicate of §4.C in isolation.
func (e *Engine) BonusTriggeredAt(i int64) bool {
	e.loadWindow(i)
	return e.bonusTriggered()
}

// SpinFull evaluates spin index i and returns win, winning combinations and
// the bonus predicate in one window load, avoiding a second loadWindow call
// in the Simulator's per-spin loop.
func (e *Engine) SpinFull(i int64) (win float64, combos []WinningCombination, bonus bool) {
	e.loadWindow(i)

	for _, flat := range e.flatLines {
		locked, runLen := e.evalLine(flat)
		w := e.linePayout(locked, runLen)
		if w != 0 {
			combos = append(combos, WinningCombination{Symbol: locked, Length: runLen, Win: w})
			win += w
		}
	}

	bonus = e.bonusTriggered()
	return win, combos, bonus
}

// MaxLineWin returns the largest single paytable entry across all symbols,
// an upper bound used by the §8 win-boundedness property.
func (e *Engine) MaxLineWin() float64 {
	return e.maxLineWin
}
