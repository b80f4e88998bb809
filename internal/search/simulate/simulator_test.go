package simulate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotmachine/reelsearch/internal/search/searchtypes"
	"github.com/slotmachine/reelsearch/internal/search/spinengine"
)

const (
	symA searchtypes.Symbol = 1
	symB searchtypes.Symbol = 2
)

func alwaysWinEngine(t *testing.T) *spinengine.Engine {
	t.Helper()
	cfg := &searchtypes.SlotMachineConfig{
		Window:   []int{3, 3, 3},
		Paytable: map[searchtypes.Symbol][]float64{symA: {0, 0, 10}},
		Lines:    [][]int{{1, 1, 1}},
	}
	reels := []searchtypes.ReelStrip{
		{symA, symA, symA},
		{symA, symA, symA},
		{symA, symA, symA},
	}
	e, err := spinengine.New(reels, cfg)
	require.NoError(t, err)
	return e
}

func neverWinEngine(t *testing.T) *spinengine.Engine {
	t.Helper()
	cfg := &searchtypes.SlotMachineConfig{
		Window:   []int{3, 3, 3},
		Paytable: map[searchtypes.Symbol][]float64{symA: {0, 0, 10}},
		Lines:    [][]int{{1, 1, 1}},
	}
	reels := []searchtypes.ReelStrip{
		{symA, symB, symA},
		{symB, symB, symB},
		{symA, symB, symA},
	}
	e, err := spinengine.New(reels, cfg)
	require.NoError(t, err)
	return e
}

func TestRun_AlwaysWinningEngineHasRTPEqualToPayout(t *testing.T) {
	e := alwaysWinEngine(t)
	sim, err := New(e, 1)
	require.NoError(t, err)

	res, err := sim.Run(200)
	require.NoError(t, err)

	assert.Equal(t, int64(200), res.SpinCount)
	assert.Equal(t, float64(10), res.RTP)
	assert.Equal(t, 1.0, res.HitFrequency)
	assert.Equal(t, int64(200), res.WinningCombinationCounts[symA][3])
	assert.Equal(t, float64(2000), res.WinningCombinationWinSums[symA][3])
	assert.Equal(t, 10.0, res.SymbolRTP[symA])
}

func TestRun_NeverWinningEngineHasZeroRTPAndHitFrequency(t *testing.T) {
	e := neverWinEngine(t)
	sim, err := New(e, 1)
	require.NoError(t, err)

	res, err := sim.Run(100)
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.RTP)
	assert.Equal(t, 0.0, res.HitFrequency)
	assert.Equal(t, 0.0, res.BonusFrequency)
	assert.Empty(t, res.WinningCombinationCounts)
}

func TestRun_RejectsNonPositiveSpinCount(t *testing.T) {
	e := alwaysWinEngine(t)
	sim, err := New(e, 1)
	require.NoError(t, err)

	_, err = sim.Run(0)
	require.Error(t, err)

	_, err = sim.Run(-5)
	require.Error(t, err)
}

func TestRun_DeterministicForFixedSeed(t *testing.T) {
	e1 := alwaysWinEngine(t)
	sim1, err := New(e1, 42)
	require.NoError(t, err)
	res1, err := sim1.Run(50)
	require.NoError(t, err)

	e2 := alwaysWinEngine(t)
	sim2, err := New(e2, 42)
	require.NoError(t, err)
	res2, err := sim2.Run(50)
	require.NoError(t, err)

	assert.Equal(t, res1.RTP, res2.RTP)
	assert.Equal(t, res1.WinningCombinationCounts, res2.WinningCombinationCounts)
}
