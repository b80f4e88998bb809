// Package search exposes the two §6 external interface entry points —
// RunSimulation and RunGeneticSearch — composing the sequencer, spin
// engine, simulator, GA loop and fitness function behind a single call
// each.
package search

import (
	"github.com/slotmachine/reelsearch/internal/search/ga"
	"github.com/slotmachine/reelsearch/internal/search/searcherrors"
	"github.com/slotmachine/reelsearch/internal/search/searchtypes"
	"github.com/slotmachine/reelsearch/internal/search/sequencer"
	"github.com/slotmachine/reelsearch/internal/search/simulate"
	"github.com/slotmachine/reelsearch/internal/search/spinengine"
)

// RunSimulation is §6's runSimulation(reels, spinCount, slotConfig). seed
// drives the simulator's spin-index sampling.
func RunSimulation(reels []searchtypes.ReelStrip, spinCount int, slotCfg *searchtypes.SlotMachineConfig, seed int64) (*simulate.Result, error) {
	engine, err := spinengine.New(reels, slotCfg)
	if err != nil {
		return nil, err
	}
	sim, err := simulate.New(engine, seed)
	if err != nil {
		return nil, err
	}
	return sim.Run(spinCount)
}

// RunGeneticSearch is §6's runGeneticSearch(gaConfig, reelBoxes, simTargets,
// spinCount, slotConfig, sink).
func RunGeneticSearch(cfg searchtypes.GAConfig, reelBoxes []searchtypes.ReelBox, targets searchtypes.SimulationTargets, spinCount int, slotCfg *searchtypes.SlotMachineConfig, sink searchtypes.Sink) (*ga.Result, error) {
	engine, err := ga.New(cfg, reelBoxes, targets, spinCount, slotCfg, sink)
	if err != nil {
		return nil, err
	}
	return engine.Run()
}

// SequenceReel runs the Reel Sequencer in isolation (§4.B), for hosts or
// tools that need one reel materialized outside a full search run.
func SequenceReel(h searchtypes.StackHistogram, box searchtypes.ReelBox, classify sequencer.Classifier, maxAttempts int) (searchtypes.ReelStrip, error) {
	if classify == nil {
		return nil, searcherrors.ConfigInvalid("search: SequenceReel requires a non-nil classifier")
	}
	return sequencer.SequenceWithClassifier(h, box.Radius, box.Seed, maxAttempts, classify)
}
