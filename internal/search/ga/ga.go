// Package ga implements the Evolutionary Loop of spec.md §4.E: population
// initialization via the Sequencer, tournament selection, BLX-α crossover,
// Gaussian mutation, elitism and the generation loop, embedding the Spin
// Engine/Simulator/Fitness Function as its per-individual scoring step.
// The elitism-then-tournament generation shape and sort-ascending-by-score
// idiom are grounded on the retrieved stojg-playlist-sorter GA reference;
// the parallel fitness evaluation follows errgroup usage patterns
// from the teacher's dependency pack (golang.org/x/sync).
package ga

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/slotmachine/reelsearch/internal/search/fitness"
	"github.com/slotmachine/reelsearch/internal/search/rngs"
	"github.com/slotmachine/reelsearch/internal/search/searcherrors"
	"github.com/slotmachine/reelsearch/internal/search/searchtypes"
	"github.com/slotmachine/reelsearch/internal/search/seqcache"
	"github.com/slotmachine/reelsearch/internal/search/sequencer"
	"github.com/slotmachine/reelsearch/internal/search/simulate"
	"github.com/slotmachine/reelsearch/internal/search/sink"
	"github.com/slotmachine/reelsearch/internal/search/spinengine"
)

// Result is the §6 runGeneticSearch output.
type Result struct {
	BestIndividual *searchtypes.Individual
	BestFitness    *searchtypes.FitnessBreakdown
	History        []float64
}

// Engine owns one genetic search run: its config, per-reel gene boxes,
// targets, slot config and diagnostic sink.
type Engine struct {
	cfg       searchtypes.GAConfig
	reelBoxes []searchtypes.ReelBox
	targets   searchtypes.SimulationTargets
	spinCount int
	slotCfg   *searchtypes.SlotMachineConfig
	sink      searchtypes.Sink

	classify sequencer.Classifier
	rng      *rngs.GARNG
	seqCache *seqcache.Cache

	// symbolRTPUnevennessWeight resolves the §3/§6 duplication: prefer the
	// SimulationTargets value, fall back to GAConfig's.
	symbolRTPUnevennessWeight float64
}

// SetSeqCache installs a memoization cache for Reel Sequencer calls. Optional:
// a nil or never-installed cache falls back to direct sequencing.
func (e *Engine) SetSeqCache(c *seqcache.Cache) {
	e.seqCache = c
}

// seqFunc returns the sequencing strategy to use for one materializeReel
// call: the cache's memoized lookup when installed, otherwise a direct
// sequencer call.
func (e *Engine) seqFunc() sequenceFunc {
	if e.seqCache == nil {
		return directSequence
	}
	return e.seqCache.Sequence
}

// New validates inputs and constructs a search Engine.
func New(cfg searchtypes.GAConfig, reelBoxes []searchtypes.ReelBox, targets searchtypes.SimulationTargets, spinCount int, slotCfg *searchtypes.SlotMachineConfig, sink searchtypes.Sink) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := targets.Validate(); err != nil {
		return nil, err
	}
	if err := slotCfg.Validate(); err != nil {
		return nil, err
	}
	if spinCount <= 0 {
		return nil, searcherrors.ConfigInvalidf("ga: spinCount must be > 0, got %d", spinCount)
	}
	if len(reelBoxes) != slotCfg.ReelCount() {
		return nil, searcherrors.ConfigInvalidf("ga: %d reel boxes given, slot config expects %d", len(reelBoxes), slotCfg.ReelCount())
	}
	for r, box := range reelBoxes {
		if err := box.Validate(); err != nil {
			return nil, searcherrors.ConfigInvalidf("ga: reel box %d: %v", r, err)
		}
	}

	weight := targets.SymbolRTPUnevennessWeight
	if weight == 0 {
		weight = cfg.SymbolRTPUnevennessWeight
	}

	return &Engine{
		cfg:                       cfg,
		reelBoxes:                 reelBoxes,
		targets:                   targets,
		spinCount:                 spinCount,
		slotCfg:                   slotCfg,
		sink:                      sink,
		classify:                  sequencer.ClassifierFromConfig(slotCfg),
		rng:                       rngs.NewGARNG(cfg.Seed),
		symbolRTPUnevennessWeight: weight,
	}, nil
}

// Run executes the full §4.E generation loop and returns the §6 result.
func (e *Engine) Run() (*Result, error) {
	pop, err := e.initPopulation()
	if err != nil {
		return nil, err
	}

	if err := e.evaluateAll(pop); err != nil {
		return nil, err
	}

	best := bestOf(pop)
	history := make([]float64, 0, e.cfg.Generations+1)
	history = append(history, best.Fitness.Total)

	for gen := 1; gen <= e.cfg.Generations; gen++ {
		start := time.Now()

		next, err := e.nextGeneration(pop)
		if err != nil {
			return nil, err
		}

		if err := e.evaluateAll(next); err != nil {
			return nil, err
		}

		pop = next
		genBest := bestOf(pop)
		if genBest.Fitness.Total < best.Fitness.Total {
			best = genBest.Clone()
		}
		history = append(history, best.Fitness.Total)

		if e.sink != nil && e.cfg.VerboseProgress {
			report := sink.GenerationReport{
				Generation:     gen,
				Elapsed:        time.Since(start).Seconds(),
				GenerationBest: genBest.Fitness,
				GlobalBest:     best.Fitness,
				BestIndividual: best,
			}
			if err := sink.ReportGeneration(e.sink, report); err != nil {
				return nil, searcherrors.HostSinkError(err)
			}
		}
	}

	return &Result{
		BestIndividual: best,
		BestFitness:    best.Fitness.Clone(),
		History:        history,
	}, nil
}

// initPopulation builds popSize individuals, each reel independently
// sampled and sequenced per §4.E's initialization rule.
func (e *Engine) initPopulation() ([]*searchtypes.Individual, error) {
	pop := make([]*searchtypes.Individual, e.cfg.PopSize)
	cap := e.cfg.EffectiveMaxGenerateAttemptsPerReel()

	for n := 0; n < e.cfg.PopSize; n++ {
		histograms := make([]searchtypes.StackHistogram, len(e.reelBoxes))
		strips := make([]searchtypes.ReelStrip, len(e.reelBoxes))

		for r, box := range e.reelBoxes {
			h, strip, err := materializeReel(box, e.classify, e.seqFunc(), cap, func() searchtypes.StackHistogram {
				return sampleHistogram(box, e.rng)
			})
			if err != nil {
				return nil, err
			}
			histograms[r] = h
			strips[r] = strip
		}

		pop[n] = searchtypes.NewIndividual(histograms, strips)
	}

	return pop, nil
}

// tournamentSelect draws tournamentK indices with replacement and returns
// the individual with the lowest fitness total.
func (e *Engine) tournamentSelect(pop []*searchtypes.Individual) *searchtypes.Individual {
	best := pop[e.rng.IntRange(0, len(pop)-1)]
	for i := 1; i < e.cfg.TournamentK; i++ {
		cand := pop[e.rng.IntRange(0, len(pop)-1)]
		if cand.Fitness.Total < best.Fitness.Total {
			best = cand
		}
	}
	return best
}

// crossover produces two offspring from two parents via BLX-α, re-sequencing
// each reel independently with the GA's bounded retry policy.
func (e *Engine) crossover(a, b *searchtypes.Individual) (*searchtypes.Individual, *searchtypes.Individual, error) {
	cap := e.cfg.EffectiveMaxGenerateAttemptsPerReel()

	histA := make([]searchtypes.StackHistogram, len(e.reelBoxes))
	stripA := make([]searchtypes.ReelStrip, len(e.reelBoxes))
	histB := make([]searchtypes.StackHistogram, len(e.reelBoxes))
	stripB := make([]searchtypes.ReelStrip, len(e.reelBoxes))

	for r, box := range e.reelBoxes {
		bounds := blxGeneBounds(a.Histograms[r], b.Histograms[r], box, e.cfg.CrossoverAlpha)

		h1, s1, err := materializeReel(box, e.classify, e.seqFunc(), cap, func() searchtypes.StackHistogram {
			return drawFromBounds(box, bounds, e.rng)
		})
		if err != nil {
			return nil, nil, err
		}
		h2, s2, err := materializeReel(box, e.classify, e.seqFunc(), cap, func() searchtypes.StackHistogram {
			return drawFromBounds(box, bounds, e.rng)
		})
		if err != nil {
			return nil, nil, err
		}

		histA[r], stripA[r] = h1, s1
		histB[r], stripB[r] = h2, s2
	}

	return searchtypes.NewIndividual(histA, stripA), searchtypes.NewIndividual(histB, stripB), nil
}

// cloneGenome returns a fresh Individual with the same histograms/strips as
// src (used when crossoverRate does not fire: "otherwise clone the
// parents").
func cloneGenome(src *searchtypes.Individual) *searchtypes.Individual {
	return src.Clone()
}

// mutate applies Gaussian mutation to every reel of ind, re-sequencing each
// reel independently with the GA's bounded retry policy.
func (e *Engine) mutate(ind *searchtypes.Individual) (*searchtypes.Individual, error) {
	cap := e.cfg.EffectiveMaxGenerateAttemptsPerReel()

	histograms := make([]searchtypes.StackHistogram, len(e.reelBoxes))
	strips := make([]searchtypes.ReelStrip, len(e.reelBoxes))

	for r, box := range e.reelBoxes {
		base := ind.Histograms[r]
		h, strip, err := materializeReel(box, e.classify, e.seqFunc(), cap, func() searchtypes.StackHistogram {
			return mutateHistogram(base, box, e.cfg.MutationRate, e.cfg.MutationSigma, e.rng)
		})
		if err != nil {
			return nil, err
		}
		histograms[r] = h
		strips[r] = strip
	}

	return searchtypes.NewIndividual(histograms, strips), nil
}

// nextGeneration builds the next population: elitism, then tournament plus
// crossover/mutation until popSize is reached, per §4.E's generation loop.
func (e *Engine) nextGeneration(pop []*searchtypes.Individual) ([]*searchtypes.Individual, error) {
	sorted := make([]*searchtypes.Individual, len(pop))
	copy(sorted, pop)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Fitness.Total < sorted[j].Fitness.Total })

	next := make([]*searchtypes.Individual, 0, e.cfg.PopSize)
	for i := 0; i < e.cfg.Elitism; i++ {
		elite := sorted[i].Clone()
		elite.Fitness = sorted[i].Fitness.Clone() // cached, not re-evaluated (§9 open question)
		next = append(next, elite)
	}

	for len(next) < e.cfg.PopSize {
		p1 := e.tournamentSelect(pop)
		p2 := e.tournamentSelect(pop)

		var c1, c2 *searchtypes.Individual
		var err error
		if e.rng.Bool(e.cfg.CrossoverRate) {
			c1, c2, err = e.crossover(p1, p2)
		} else {
			c1, c2 = cloneGenome(p1), cloneGenome(p2)
		}
		if err != nil {
			return nil, err
		}

		c1, err = e.mutate(c1)
		if err != nil {
			return nil, err
		}
		next = append(next, c1)
		if len(next) >= e.cfg.PopSize {
			break
		}

		c2, err = e.mutate(c2)
		if err != nil {
			return nil, err
		}
		next = append(next, c2)
	}

	return next, nil
}

// evaluateAll scores every individual lacking cached fitness. Per §5,
// evaluation of distinct individuals has no data dependency and MAY run in
// parallel; per-individual simulator seeds are drawn sequentially from the
// GA's master RNG beforehand (in ascending population-index order) so that
// reproducibility under a fixed master seed does not depend on goroutine
// scheduling.
func (e *Engine) evaluateAll(pop []*searchtypes.Individual) error {
	seeds := make([]int64, len(pop))
	needsEval := make([]bool, len(pop))
	for i, ind := range pop {
		if ind.Fitness != nil {
			continue
		}
		needsEval[i] = true
		seeds[i] = e.rng.IntRange64()
	}

	g, _ := errgroup.WithContext(context.Background())
	for i := range pop {
		if !needsEval[i] {
			continue
		}
		i := i
		g.Go(func() error {
			fb, err := e.evaluateOne(pop[i], seeds[i])
			if err != nil {
				return err
			}
			pop[i].Fitness = fb
			return nil
		})
	}
	return g.Wait()
}

// evaluateOne runs the Simulator over one individual's reels and scores it.
func (e *Engine) evaluateOne(ind *searchtypes.Individual, simSeed int64) (*searchtypes.FitnessBreakdown, error) {
	engine, err := spinengine.New(ind.Strips, e.slotCfg)
	if err != nil {
		return nil, err
	}
	sim, err := simulate.New(engine, simSeed)
	if err != nil {
		return nil, err
	}
	res, err := sim.Run(e.spinCount)
	if err != nil {
		return nil, err
	}
	return fitness.Score(res, &e.targets, e.symbolRTPUnevennessWeight), nil
}

func bestOf(pop []*searchtypes.Individual) *searchtypes.Individual {
	best := pop[0]
	for _, ind := range pop[1:] {
		if ind.Fitness.Total < best.Fitness.Total {
			best = ind
		}
	}
	return best.Clone()
}
