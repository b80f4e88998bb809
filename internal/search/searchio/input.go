// Package searchio binds the §6 external data tree (gaConfig, reelBoxes,
// simTargets, spinCount, slotConfig) from JSON and renders §6 output
// (bestIndividual, bestFitness, history; the simulate.Result of
// runSimulation) back to JSON. File/CLI binding is explicitly a host
// concern (§1's Non-goals / Explicitly out of scope), so this package only
// covers the one binding format the shipped CLI uses; a host free to parse
// its own config format only needs the searchtypes values this package
// produces.
package searchio

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/slotmachine/reelsearch/internal/search/searcherrors"
	"github.com/slotmachine/reelsearch/internal/search/searchtypes"
)

// gaConfigJSON mirrors §6's gaConfig schema.
type gaConfigJSON struct {
	PopSize                   int     `json:"popSize"`
	Generations               int     `json:"generations"`
	CrossoverRate             float64 `json:"crossoverRate"`
	MutationRate              float64 `json:"mutationRate"`
	Elitism                   int     `json:"elitism"`
	TournamentK               int     `json:"tournamentK"`
	Seed                      int64   `json:"seed"`
	CrossoverAlpha            float64 `json:"crossoverAlpha"`
	MutationSigma             float64 `json:"mutationSigma"`
	SymbolRTPUnevennessWeight float64 `json:"symbolRtpUnevennessWeight"`
	VerboseProgress           bool    `json:"verboseProgress"`
}

// reelBoxJSON mirrors §6's per-reel reelBoxes entry.
type reelBoxJSON struct {
	Radius       int              `json:"radius"`
	Seed         int64            `json:"seed"`
	SymbolStacks symbolStacksJSON `json:"symbolStacks"`
}

type symbolStacksJSON struct {
	Low  map[string][]int `json:"low"`
	High map[string][]int `json:"high"`
}

// simTargetsJSON mirrors §6's simTargets schema. Note the field is named
// targetBonusGameFrequency in the external schema though §3 calls the same
// concept targetBonusFrequency internally.
type simTargetsJSON struct {
	TargetRTP                float64            `json:"targetRtp"`
	TargetHitFrequency       float64            `json:"targetHitFrequency"`
	TargetBonusGameFrequency float64            `json:"targetBonusGameFrequency"`
	SymbolRTPTargets         map[string]float64 `json:"symbolRtpTargets"`
}

// slotConfigJSON mirrors §6's slotConfig schema.
type slotConfigJSON struct {
	Window   []int                 `json:"window"`
	Wild     []int                 `json:"wild"`
	Scatter  []int                 `json:"scatter"`
	High     []int                 `json:"high"`
	Paytable map[string][]float64  `json:"paytable"`
	Lines    [][]int               `json:"lines"`
}

// Input is the fully-bound §6 data tree, ready to pass to ga.New /
// spinengine.New.
type Input struct {
	GAConfig   searchtypes.GAConfig
	ReelBoxes  []searchtypes.ReelBox
	SimTargets searchtypes.SimulationTargets
	SpinCount  int
	SlotConfig *searchtypes.SlotMachineConfig
}

type inputJSON struct {
	GAConfig   gaConfigJSON   `json:"gaConfig"`
	ReelBoxes  []reelBoxJSON  `json:"reelBoxes"`
	SimTargets simTargetsJSON `json:"simTargets"`
	SpinCount  int            `json:"spinCount"`
	SlotConfig slotConfigJSON `json:"slotConfig"`
}

// LoadFile reads and binds the §6 input tree from a JSON file.
func LoadFile(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("searchio: reading %s: %w", path, err)
	}
	return Load(data)
}

// Load binds the §6 input tree from raw JSON bytes.
func Load(data []byte) (*Input, error) {
	var raw inputJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, searcherrors.ConfigInvalidf("searchio: invalid JSON input: %v", err)
	}

	slotCfg, err := bindSlotConfig(raw.SlotConfig)
	if err != nil {
		return nil, err
	}

	reelBoxes, err := bindReelBoxes(raw.ReelBoxes)
	if err != nil {
		return nil, err
	}

	return &Input{
		GAConfig: searchtypes.GAConfig{
			PopSize:                   raw.GAConfig.PopSize,
			Generations:               raw.GAConfig.Generations,
			CrossoverRate:             raw.GAConfig.CrossoverRate,
			MutationRate:              raw.GAConfig.MutationRate,
			Elitism:                   raw.GAConfig.Elitism,
			TournamentK:               raw.GAConfig.TournamentK,
			Seed:                      raw.GAConfig.Seed,
			CrossoverAlpha:            raw.GAConfig.CrossoverAlpha,
			MutationSigma:             raw.GAConfig.MutationSigma,
			SymbolRTPUnevennessWeight: raw.GAConfig.SymbolRTPUnevennessWeight,
			VerboseProgress:           raw.GAConfig.VerboseProgress,
		},
		ReelBoxes: reelBoxes,
		SimTargets: searchtypes.SimulationTargets{
			TargetRTP:            raw.SimTargets.TargetRTP,
			TargetHitFrequency:   raw.SimTargets.TargetHitFrequency,
			TargetBonusFrequency: raw.SimTargets.TargetBonusGameFrequency,
			SymbolRTPTargets:     bindSymbolFloatMap(raw.SimTargets.SymbolRTPTargets),
		},
		SpinCount:  raw.SpinCount,
		SlotConfig: slotCfg,
	}, nil
}

func bindReelBoxes(raw []reelBoxJSON) ([]searchtypes.ReelBox, error) {
	boxes := make([]searchtypes.ReelBox, len(raw))
	for r, rb := range raw {
		genes := make(map[searchtypes.Symbol]searchtypes.GeneBox)
		for symStr, low := range rb.SymbolStacks.Low {
			sym, err := parseSymbol(symStr)
			if err != nil {
				return nil, searcherrors.ConfigInvalidf("searchio: reel %d: %v", r, err)
			}
			high, ok := rb.SymbolStacks.High[symStr]
			if !ok {
				return nil, searcherrors.ConfigInvalidf("searchio: reel %d symbol %s: low given without matching high", r, symStr)
			}
			genes[sym] = searchtypes.GeneBox{Low: low, High: high}
		}
		boxes[r] = searchtypes.ReelBox{Radius: rb.Radius, Seed: rb.Seed, Genes: genes}
	}
	return boxes, nil
}

func bindSlotConfig(raw slotConfigJSON) (*searchtypes.SlotMachineConfig, error) {
	cfg := &searchtypes.SlotMachineConfig{
		Window:   raw.Window,
		Wild:     bindSymbolSet(raw.Wild),
		Scatter:  bindSymbolSet(raw.Scatter),
		High:     bindSymbolSet(raw.High),
		Paytable: make(map[searchtypes.Symbol][]float64, len(raw.Paytable)),
		Lines:    raw.Lines,
	}
	for symStr, payouts := range raw.Paytable {
		sym, err := parseSymbol(symStr)
		if err != nil {
			return nil, searcherrors.ConfigInvalidf("searchio: paytable: %v", err)
		}
		cfg.Paytable[sym] = payouts
	}
	return cfg, nil
}

func bindSymbolSet(ids []int) map[searchtypes.Symbol]struct{} {
	set := make(map[searchtypes.Symbol]struct{}, len(ids))
	for _, id := range ids {
		set[searchtypes.Symbol(id)] = struct{}{}
	}
	return set
}

func bindSymbolFloatMap(raw map[string]float64) map[searchtypes.Symbol]float64 {
	out := make(map[searchtypes.Symbol]float64, len(raw))
	for symStr, v := range raw {
		sym, err := parseSymbol(symStr)
		if err != nil {
			continue
		}
		out[sym] = v
	}
	return out
}

func parseSymbol(s string) (searchtypes.Symbol, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid symbol key %q: %w", s, err)
	}
	return searchtypes.Symbol(n), nil
}
