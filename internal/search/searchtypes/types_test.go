package searchtypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackHistogram_StacksExpandsInAscendingSymbolOrder(t *testing.T) {
	h := StackHistogram{
		3: {1, 0},
		1: {0, 2},
	}
	stacks := h.Stacks()

	require.Len(t, stacks, 3)
	assert.Equal(t, Symbol(1), stacks[0].Sym)
	assert.Equal(t, Symbol(1), stacks[1].Sym)
	assert.Equal(t, Symbol(3), stacks[2].Sym)
	assert.Equal(t, 2, stacks[0].Length)
	assert.Equal(t, 2, stacks[1].Length)
	assert.Equal(t, 1, stacks[2].Length)
}

func TestStackHistogram_CloneIsIndependent(t *testing.T) {
	h := StackHistogram{1: {2, 3}}
	cp := h.Clone()
	cp[1][0] = 99
	assert.Equal(t, 2, h[1][0])
}

func TestGeneBox_ValidateRejectsLengthMismatchAndInvertedBounds(t *testing.T) {
	require.Error(t, GeneBox{Low: []int{1}, High: []int{1, 2}}.Validate())
	require.Error(t, GeneBox{Low: []int{5}, High: []int{1}}.Validate())
	require.NoError(t, GeneBox{Low: []int{1, 2}, High: []int{3, 4}}.Validate())
}

func TestReelBox_ValidateRejectsNonPositiveRadius(t *testing.T) {
	rb := ReelBox{Radius: 0, Genes: map[Symbol]GeneBox{}}
	require.Error(t, rb.Validate())
}

func TestReelStrip_AtWrapsCyclically(t *testing.T) {
	s := ReelStrip{10, 20, 30}
	assert.Equal(t, Symbol(10), s.At(0))
	assert.Equal(t, Symbol(30), s.At(-1))
	assert.Equal(t, Symbol(10), s.At(3))
	assert.Equal(t, Symbol(20), s.At(-2))
}

func TestSlotMachineConfig_ClassOf(t *testing.T) {
	cfg := &SlotMachineConfig{
		Wild:    map[Symbol]struct{}{1: {}},
		Scatter: map[Symbol]struct{}{2: {}},
		High:    map[Symbol]struct{}{3: {}},
	}
	assert.Equal(t, ClassSpecial, cfg.ClassOf(1))
	assert.Equal(t, ClassSpecial, cfg.ClassOf(2))
	assert.Equal(t, ClassHigh, cfg.ClassOf(3))
	assert.Equal(t, ClassLow, cfg.ClassOf(4))
}

func TestSlotMachineConfig_Validate(t *testing.T) {
	valid := &SlotMachineConfig{
		Window:   []int{3, 3},
		Lines:    [][]int{{0, 1}, {2, 2}},
		Paytable: map[Symbol][]float64{1: {1, 2}},
	}
	require.NoError(t, valid.Validate())

	badWindow := &SlotMachineConfig{Window: []int{0}}
	require.Error(t, badWindow.Validate())

	badLineArity := &SlotMachineConfig{Window: []int{3, 3}, Lines: [][]int{{0}}}
	require.Error(t, badLineArity.Validate())

	badLineRow := &SlotMachineConfig{Window: []int{3}, Lines: [][]int{{5}}}
	require.Error(t, badLineRow.Validate())

	emptyPayouts := &SlotMachineConfig{Window: []int{3}, Paytable: map[Symbol][]float64{1: {}}}
	require.Error(t, emptyPayouts.Validate())
}

func TestGAConfig_EffectiveMaxGenerateAttemptsPerReelDefaultsWhenUnset(t *testing.T) {
	c := &GAConfig{}
	assert.Equal(t, DefaultMaxGenerateAttemptsPerReel, c.EffectiveMaxGenerateAttemptsPerReel())

	c.MaxGenerateAttemptsPerReel = 10
	assert.Equal(t, 10, c.EffectiveMaxGenerateAttemptsPerReel())
}

func TestGAConfig_ValidateBounds(t *testing.T) {
	valid := &GAConfig{PopSize: 10, Generations: 5, CrossoverRate: 0.5, MutationRate: 0.1, Elitism: 2, TournamentK: 3}
	require.NoError(t, valid.Validate())

	bad := *valid
	bad.Elitism = bad.PopSize + 1
	require.Error(t, bad.Validate())

	bad2 := *valid
	bad2.TournamentK = 0
	require.Error(t, bad2.Validate())
}

func TestFitnessBreakdown_CloneIsIndependentAndNilSafe(t *testing.T) {
	var nilFB *FitnessBreakdown
	assert.Nil(t, nilFB.Clone())

	fb := &FitnessBreakdown{Total: 1, SymbolRTP: map[Symbol]float64{1: 0.5}}
	cp := fb.Clone()
	cp.SymbolRTP[1] = 99
	assert.Equal(t, 0.5, fb.SymbolRTP[1])
	assert.Equal(t, 1.0, cp.Total)
}

func TestIndividual_CloneIsIndependentWithFreshID(t *testing.T) {
	ind := NewIndividual(
		[]StackHistogram{{1: {2}}},
		[]ReelStrip{{1, 1}},
	)
	ind.Fitness = &FitnessBreakdown{Total: 3}

	cp := ind.Clone()
	assert.NotEqual(t, ind.ID, cp.ID)
	assert.Equal(t, ind.Histograms, cp.Histograms)
	assert.Equal(t, ind.Strips, cp.Strips)
	assert.Equal(t, ind.Fitness.Total, cp.Fitness.Total)

	cp.Histograms[0][1][0] = 99
	assert.Equal(t, 2, ind.Histograms[0][1][0])

	cp.Strips[0][0] = 55
	assert.Equal(t, Symbol(1), ind.Strips[0][0])
}

func TestIndividual_ReelCount(t *testing.T) {
	ind := NewIndividual(
		[]StackHistogram{{1: {1}}, {2: {1}}, {3: {1}}},
		[]ReelStrip{{1}, {2}, {3}},
	)
	assert.Equal(t, 3, ind.ReelCount())
}
