package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotmachine/reelsearch/internal/search/searchtypes"
	"github.com/slotmachine/reelsearch/internal/search/sequencer"
)

const (
	coreSymA searchtypes.Symbol = 1
	coreSymB searchtypes.Symbol = 2
)

func coreSlotConfig() *searchtypes.SlotMachineConfig {
	return &searchtypes.SlotMachineConfig{
		Window:   []int{1},
		Paytable: map[searchtypes.Symbol][]float64{coreSymA: {3}},
		Lines:    [][]int{{0}},
	}
}

func TestRunSimulation_ReturnsRTPConsistentWithPaytable(t *testing.T) {
	reels := []searchtypes.ReelStrip{{coreSymA, coreSymA, coreSymA}}
	res, err := RunSimulation(reels, 100, coreSlotConfig(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.RTP)
	assert.Equal(t, 1.0, res.HitFrequency)
}

func TestRunSimulation_RejectsReelCountMismatch(t *testing.T) {
	reels := []searchtypes.ReelStrip{{coreSymA}, {coreSymA}}
	_, err := RunSimulation(reels, 10, coreSlotConfig(), 1)
	require.Error(t, err)
}

func TestRunGeneticSearch_CompletesAndReturnsBestIndividual(t *testing.T) {
	cfg := searchtypes.GAConfig{
		PopSize:        4,
		Generations:    2,
		CrossoverRate:  0.5,
		MutationRate:   0.2,
		Elitism:        1,
		TournamentK:    2,
		Seed:           3,
		CrossoverAlpha: 0.3,
		MutationSigma:  1,
	}
	reelBoxes := []searchtypes.ReelBox{
		{
			Radius: 2,
			Seed:   5,
			Genes: map[searchtypes.Symbol]searchtypes.GeneBox{
				coreSymA: {Low: []int{1}, High: []int{5}},
				coreSymB: {Low: []int{1}, High: []int{5}},
			},
		},
	}
	targets := searchtypes.SimulationTargets{TargetRTP: 1.0, TargetHitFrequency: 0.5}

	result, err := RunGeneticSearch(cfg, reelBoxes, targets, 50, coreSlotConfig(), nil)
	require.NoError(t, err)
	assert.NotNil(t, result.BestIndividual)
	assert.Len(t, result.History, cfg.Generations+1)
}

func TestSequenceReel_RequiresNonNilClassifier(t *testing.T) {
	h := searchtypes.StackHistogram{coreSymA: {2}}
	box := searchtypes.ReelBox{Radius: 2, Seed: 1, Genes: map[searchtypes.Symbol]searchtypes.GeneBox{coreSymA: {Low: []int{2}, High: []int{2}}}}

	_, err := SequenceReel(h, box, nil, 0)
	require.Error(t, err)
}

func TestSequenceReel_SucceedsWithDefaultClassifier(t *testing.T) {
	h := searchtypes.StackHistogram{coreSymA: {2}}
	box := searchtypes.ReelBox{Radius: 2, Seed: 1}

	strip, err := SequenceReel(h, box, sequencer.DefaultClassifier(nil), 0)
	require.NoError(t, err)
	assert.Len(t, strip, 2)
}
