package searchio

import (
	"encoding/json"
	"os"

	"github.com/slotmachine/reelsearch/internal/search/searchtypes"
	"github.com/slotmachine/reelsearch/internal/search/simulate"
)

// SimulationReport is the §6 runSimulation output shape.
type SimulationReport struct {
	RTP                       float64                    `json:"rtp"`
	HitFrequency              float64                    `json:"hitFrequency"`
	BonusFrequency            float64                    `json:"bonusFrequency"`
	WinningCombinationCounts  map[string]map[int]int64   `json:"winningCombinationCounts"`
	WinningCombinationWinSums map[string]map[int]float64 `json:"winningCombinationWinSums"`
}

// NewSimulationReport converts a simulate.Result into its JSON-ready form,
// stringifying symbol keys since JSON object keys must be strings.
func NewSimulationReport(res *simulate.Result) *SimulationReport {
	counts := make(map[string]map[int]int64, len(res.WinningCombinationCounts))
	for sym, byLen := range res.WinningCombinationCounts {
		counts[symbolKey(sym)] = byLen
	}
	sums := make(map[string]map[int]float64, len(res.WinningCombinationWinSums))
	for sym, byLen := range res.WinningCombinationWinSums {
		sums[symbolKey(sym)] = byLen
	}

	return &SimulationReport{
		RTP:                       res.RTP,
		HitFrequency:              res.HitFrequency,
		BonusFrequency:            res.BonusFrequency,
		WinningCombinationCounts:  counts,
		WinningCombinationWinSums: sums,
	}
}

// SearchReport is the §6 runGeneticSearch output shape.
type SearchReport struct {
	BestFitness    *searchtypes.FitnessBreakdown `json:"bestFitness"`
	History        []float64                     `json:"history"`
	BestHistograms [][]symbolCounts              `json:"bestHistograms"`
	BestStrips     [][]int                       `json:"bestStrips"`
}

type symbolCounts struct {
	Symbol int   `json:"symbol"`
	Counts []int `json:"counts"`
}

// NewSearchReport converts a best individual/fitness/history triple into
// its JSON-ready form.
func NewSearchReport(best *searchtypes.Individual, fitness *searchtypes.FitnessBreakdown, history []float64) *SearchReport {
	histograms := make([][]symbolCounts, len(best.Histograms))
	for r, h := range best.Histograms {
		for _, sym := range h.SortedSymbols() {
			histograms[r] = append(histograms[r], symbolCounts{Symbol: int(sym), Counts: h[sym]})
		}
	}

	strips := make([][]int, len(best.Strips))
	for r, strip := range best.Strips {
		ints := make([]int, len(strip))
		for i, sym := range strip {
			ints[i] = int(sym)
		}
		strips[r] = ints
	}

	return &SearchReport{
		BestFitness:    fitness,
		History:        history,
		BestHistograms: histograms,
		BestStrips:     strips,
	}
}

// WriteFile marshals v as indented JSON and writes it to path.
func WriteFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func symbolKey(sym searchtypes.Symbol) string {
	return jsonIntString(int(sym))
}

func jsonIntString(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
