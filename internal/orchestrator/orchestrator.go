// Package orchestrator runs the engine's hierarchical driver as T
// independent, parallel trials and selects the trial with the smallest cut
// size (spec.md §4.7).
package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/eda-tools/fmpart/internal/engine"
	"github.com/eda-tools/fmpart/internal/hypergraph"
	"github.com/eda-tools/fmpart/pkg/parallel"
	"github.com/eda-tools/fmpart/pkg/perrors"
	"github.com/eda-tools/fmpart/pkg/utils"
)

const maxTrials = 32

// Options configures one orchestration run.
type Options struct {
	// Trials caps the number of parallel attempts. 0 selects
	// min(maxTrials, NumCPU()).
	Trials int
	// Budget is the wall-clock ceiling passed to each trial's refinement
	// loop. 0 selects the source's literal 50s.
	Budget time.Duration
	Log    utils.Logger
	Clock  utils.Clock
}

// Result is the winning trial's outcome plus the bookkeeping needed for the
// §4.9 --stats summary.
type Result struct {
	RunID        string
	Hypergraph   *hypergraph.Hypergraph
	CutSize      int
	WinningTrial int
	TrialCount   int
	Elapsed      time.Duration
	Trace        []engine.Move
}

type trialOutcome struct {
	trial int
	hg    *hypergraph.Hypergraph
	trace []engine.Move
}

// Run launches Trials independent copies of base, each seeded differently
// (spec.md §4.7: trial 0 sorted by degree ascending, the rest uniformly
// shuffled), and returns the one with the smallest cut size. It returns
// perrors.ErrNoSolution if every trial panics.
func Run(ctx context.Context, base *hypergraph.Hypergraph, opts Options) (*Result, error) {
	trials := opts.Trials
	if trials <= 0 {
		trials = defaultTrialCount()
	}
	budget := opts.Budget
	if budget <= 0 {
		budget = 50 * time.Second
	}
	log := opts.Log
	if log == nil {
		log = &utils.NullLogger{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = utils.NewRealClock()
	}

	runID := uuid.New().String()
	start := clock.Now()
	log = log.WithField("run_id", runID)
	log.Info("starting orchestration: trials=%d budget=%s", trials, budget)

	indices := make([]int, trials)
	for i := range indices {
		indices[i] = i
	}

	pool := parallel.NewWorkerPool[int, *trialOutcome](parallel.DefaultPoolConfig().WithWorkers(trials))
	results := pool.ExecuteFunc(ctx, indices, func(ctx context.Context, trial int) (*trialOutcome, error) {
		return runTrial(base, trial, budget, log)
	})

	var best *trialOutcome
	failures := 0
	for _, r := range results {
		if r.Error != nil || r.Result == nil {
			failures++
			log.Warn("trial failed: %v", r.Error)
			continue
		}
		out := r.Result
		if best == nil || out.hg.CutSize < best.hg.CutSize {
			best = out
		}
	}

	if best == nil {
		return nil, perrors.New(perrors.CodeNoSolution, fmt.Sprintf("all %d trials failed", trials))
	}

	log.Info("orchestration complete: winner=trial-%d cutSize=%d failures=%d", best.trial, best.hg.CutSize, failures)

	return &Result{
		RunID:        runID,
		Hypergraph:   best.hg,
		CutSize:      best.hg.CutSize,
		WinningTrial: best.trial,
		TrialCount:   trials,
		Elapsed:      clock.Since(start),
		Trace:        best.trace,
	}, nil
}

// runTrial executes one independent partitioning attempt. Panics inside the
// engine are recovered and turned into a TrialFailure so one bad trial
// never brings down the orchestration (spec.md §4.7, §5).
func runTrial(base *hypergraph.Hypergraph, trial int, budget time.Duration, log utils.Logger) (out *trialOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = perrors.New(perrors.CodeTrialFailure, fmt.Sprintf("trial %d panicked: %v", trial, r))
		}
	}()

	hg := base.Clone()
	seedOrdering(hg, trial)

	trialLog := log.WithField("trial", trial)
	e := engine.New(hg, trialLog, utils.NewRealClock())
	result := e.Run(budget, rand.New(rand.NewSource(int64(trial)+1)))

	return &trialOutcome{trial: trial, hg: hg, trace: result.Trace}, nil
}

// seedOrdering gives each trial a distinct initial cell visitation bias.
// The hypergraph has no explicit "cell order" the engine consults directly
// (bucket rebuilds scan cells in index order), so trial 0's degree sort and
// the other trials' shuffles are realized by permuting Cells and fixing up
// the net->cell index references that depend on cell position.
func seedOrdering(hg *hypergraph.Hypergraph, trial int) {
	perm := make([]int, len(hg.Cells))
	for i := range perm {
		perm[i] = i
	}

	if trial == 0 {
		sort.SliceStable(perm, func(i, j int) bool {
			return len(hg.Cells[perm[i]].Nets) < len(hg.Cells[perm[j]].Nets)
		})
	} else {
		r := rand.New(rand.NewSource(int64(trial)))
		r.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
	}

	applyPermutation(hg, perm)
}

// applyPermutation reindexes hg.Cells (and every reference to a cell index
// in hg.Nets and hg.Cells[*].Nets) according to perm: the cell formerly at
// perm[i] becomes cell i.
func applyPermutation(hg *hypergraph.Hypergraph, perm []int) {
	inverse := make([]int, len(perm))
	for newIdx, oldIdx := range perm {
		inverse[oldIdx] = newIdx
	}

	newCells := make([]hypergraph.Cell, len(hg.Cells))
	for newIdx, oldIdx := range perm {
		newCells[newIdx] = hg.Cells[oldIdx]
	}
	hg.Cells = newCells

	for ni := range hg.Nets {
		for ci, oldCell := range hg.Nets[ni].Cells {
			hg.Nets[ni].Cells[ci] = inverse[oldCell]
		}
	}
}

func defaultTrialCount() int {
	n := runtime.NumCPU()
	if n > maxTrials {
		return maxTrials
	}
	if n < 1 {
		return 1
	}
	return n
}
