// Package sink formats the per-generation diagnostics of spec.md §6 and
// delivers them through searchtypes.Sink. Line formats are host-defined
// per §6, so these are reference implementations, not a fixed protocol:
// PlainSink mirrors the box-drawing report style of
// cmd/rtp-tuning/tuning/tool.go, ZerologSink routes the same lines through
// zerolog instead of stdout.
package sink

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/slotmachine/reelsearch/internal/pkg/logger"
	"github.com/slotmachine/reelsearch/internal/search/searchtypes"
)

// GenerationReport bundles the fields §6 calls out for per-generation
// diagnostics: best fitness, per-component deltas, elapsed time, and the
// best individual found so far (the GA passes its global best).
type GenerationReport struct {
	Generation int
	Elapsed    float64 // seconds

	GenerationBest *searchtypes.FitnessBreakdown
	GlobalBest     *searchtypes.FitnessBreakdown
	BestIndividual *searchtypes.Individual
}

// PlainSink writes box-drawing progress reports to an io.Writer, in the
// style of cmd/rtp-tuning/tuning/tool.go's PrintIterationSummary.
type PlainSink struct {
	w *bufio.Writer
}

// NewPlainSink wraps w for line-buffered writes.
func NewPlainSink(w io.Writer) *PlainSink {
	return &PlainSink{w: bufio.NewWriter(w)}
}

// WriteLine implements searchtypes.Sink.
func (s *PlainSink) WriteLine(line string) error {
	if _, err := s.w.WriteString(line); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	return s.w.Flush()
}

// ReportGeneration renders r as a box-drawing summary and writes it.
func ReportGeneration(sink searchtypes.Sink, r GenerationReport) error {
	for _, line := range FormatGenerationReport(r) {
		if err := sink.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}

// FormatGenerationReport renders the report lines without writing them,
// so callers (e.g. the GA engine) can reuse the formatting against any
// Sink implementation.
func FormatGenerationReport(r GenerationReport) []string {
	lines := []string{
		"",
		"╔═══════════════════════════════════════════════════════════════════╗",
		fmt.Sprintf("║  Generation %-6d Summary", r.Generation),
		"╚═══════════════════════════════════════════════════════════════════╝",
		fmt.Sprintf("  elapsed:          %.3fs", r.Elapsed),
		fmt.Sprintf("  generation best:  total=%.6f rtp=%.4f hit=%.4f bonus=%.4f",
			r.GenerationBest.Total, r.GenerationBest.RTP, r.GenerationBest.HitFrequency, r.GenerationBest.BonusFrequency),
		fmt.Sprintf("  global best:      total=%.6f rtp=%.4f hit=%.4f bonus=%.4f",
			r.GlobalBest.Total, r.GlobalBest.RTP, r.GlobalBest.HitFrequency, r.GlobalBest.BonusFrequency),
		fmt.Sprintf("  deltas:           rtpΔ=%.6f hitΔ=%.6f bonusΔ=%.6f symbolRtpErr=%.6f",
			r.GlobalBest.RTPDelta, r.GlobalBest.HitFrequencyDelta, r.GlobalBest.BonusFrequencyDelta, r.GlobalBest.SymbolRTPError),
	}

	if r.BestIndividual != nil {
		lines = append(lines, histogramDumpLines(r.BestIndividual)...)
		lines = append(lines, reelDumpLines(r.BestIndividual)...)
	}

	return lines
}

func histogramDumpLines(ind *searchtypes.Individual) []string {
	lines := []string{"  histogram:"}
	for r, h := range ind.Histograms {
		syms := h.SortedSymbols()
		parts := make([]string, 0, len(syms))
		for _, s := range syms {
			parts = append(parts, fmt.Sprintf("%d:%v", s, h[s]))
		}
		lines = append(lines, fmt.Sprintf("    reel %d: %s", r, joinComma(parts)))
	}
	return lines
}

func reelDumpLines(ind *searchtypes.Individual) []string {
	lines := []string{"  reels:"}
	for r, strip := range ind.Strips {
		lines = append(lines, fmt.Sprintf("    reel %d (len=%d): %v", r, len(strip), strip))
	}
	return lines
}

// WinningCombinationsTable renders the §6 winning-combinations table dump:
// one row per (symbol, length) key, sorted for stable output.
func WinningCombinationsTable(counts map[searchtypes.Symbol]map[int]int64, winSums map[searchtypes.Symbol]map[int]float64) []string {
	type row struct {
		sym    searchtypes.Symbol
		length int
		count  int64
		winSum float64
	}

	var rows []row
	for sym, byLen := range counts {
		for length, c := range byLen {
			rows = append(rows, row{sym: sym, length: length, count: c, winSum: winSums[sym][length]})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].sym != rows[j].sym {
			return rows[i].sym < rows[j].sym
		}
		return rows[i].length < rows[j].length
	})

	lines := []string{
		"┌─────────────────────────────────────────────┐",
		"│              WINNING COMBINATIONS            │",
		"└─────────────────────────────────────────────┘",
		"  symbol  length  count        winSum",
	}
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("  %6d  %6d  %10d  %12.4f", row.sym, row.length, row.count, row.winSum))
	}
	return lines
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

// ZerologSink routes the same §6 diagnostic lines through zerolog instead
// of raw stdout text, one info event per line with the text in a single
// field, for hosts that prefer the teacher's zerolog-based observability
// surface.
type ZerologSink struct {
	log *logger.Logger
}

// NewZerologSink wraps log.
func NewZerologSink(log *logger.Logger) *ZerologSink {
	return &ZerologSink{log: log}
}

// WriteLine implements searchtypes.Sink by emitting each line as an info
// event with the raw text attached.
func (s *ZerologSink) WriteLine(line string) error {
	s.log.Info().Str("sink_line", line).Msg("search progress")
	return nil
}
