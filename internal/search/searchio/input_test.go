package searchio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotmachine/reelsearch/internal/search/searchtypes"
)

const sampleInput = `{
  "gaConfig": {
    "popSize": 50,
    "generations": 20,
    "crossoverRate": 0.8,
    "mutationRate": 0.1,
    "elitism": 2,
    "tournamentK": 3,
    "seed": 7,
    "crossoverAlpha": 0.3,
    "mutationSigma": 1.5,
    "symbolRtpUnevennessWeight": 0.5,
    "verboseProgress": true
  },
  "reelBoxes": [
    {
      "radius": 3,
      "seed": 11,
      "symbolStacks": {
        "low": {"1": [1, 2], "2": [2, 1]},
        "high": {"1": [5, 5], "2": [5, 5]}
      }
    }
  ],
  "simTargets": {
    "targetRtp": 0.95,
    "targetHitFrequency": 0.3,
    "targetBonusGameFrequency": 0.02,
    "symbolRtpTargets": {"1": 0.4}
  },
  "spinCount": 100000,
  "slotConfig": {
    "window": [3],
    "wild": [9],
    "scatter": [8],
    "high": [2],
    "paytable": {"1": [0, 2, 10]},
    "lines": [[1]]
  }
}`

func TestLoad_BindsFullInputTree(t *testing.T) {
	input, err := Load([]byte(sampleInput))
	require.NoError(t, err)

	assert.Equal(t, 50, input.GAConfig.PopSize)
	assert.Equal(t, 0.5, input.GAConfig.SymbolRTPUnevennessWeight)
	assert.True(t, input.GAConfig.VerboseProgress)

	require.Len(t, input.ReelBoxes, 1)
	box := input.ReelBoxes[0]
	assert.Equal(t, 3, box.Radius)
	assert.Equal(t, int64(11), box.Seed)
	assert.Equal(t, []int{1, 2}, box.Genes[searchtypes.Symbol(1)].Low)
	assert.Equal(t, []int{5, 5}, box.Genes[searchtypes.Symbol(1)].High)

	assert.Equal(t, 0.95, input.SimTargets.TargetRTP)
	assert.Equal(t, 0.02, input.SimTargets.TargetBonusFrequency)
	assert.Equal(t, 0.4, input.SimTargets.SymbolRTPTargets[searchtypes.Symbol(1)])

	assert.Equal(t, 100000, input.SpinCount)

	require.NoError(t, input.SlotConfig.Validate())
	assert.True(t, input.SlotConfig.IsWild(9))
	assert.True(t, input.SlotConfig.IsScatter(8))
	assert.Equal(t, searchtypes.ClassHigh, input.SlotConfig.ClassOf(2))
	assert.Equal(t, []float64{0, 2, 10}, input.SlotConfig.Paytable[searchtypes.Symbol(1)])
}

func TestLoad_RejectsInvalidJSON(t *testing.T) {
	_, err := Load([]byte("not json"))
	require.Error(t, err)
}

func TestLoad_RejectsMismatchedLowHighSymbolKeys(t *testing.T) {
	data := `{
		"reelBoxes": [{"radius": 2, "seed": 1, "symbolStacks": {"low": {"1": [1]}, "high": {}}}],
		"slotConfig": {"window": [1], "paytable": {}, "lines": []}
	}`
	_, err := Load([]byte(data))
	require.Error(t, err)
}

func TestLoad_RejectsUnparsableSymbolKey(t *testing.T) {
	data := `{
		"reelBoxes": [{"radius": 2, "seed": 1, "symbolStacks": {"low": {"abc": [1]}, "high": {"abc": [2]}}}],
		"slotConfig": {"window": [1], "paytable": {}, "lines": []}
	}`
	_, err := Load([]byte(data))
	require.Error(t, err)
}

func TestLoadFile_RejectsMissingFile(t *testing.T) {
	_, err := LoadFile("/nonexistent/path/does-not-exist.json")
	require.Error(t, err)
}
