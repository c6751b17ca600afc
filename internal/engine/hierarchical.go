package engine

import (
	"fmt"
	"math"
	"time"
)

// RunResult carries what the orchestrator needs from one trial: the final
// cut size (read from the engine's hypergraph) and the winning pass's move
// trace (spec.md §4.8 supplement).
type RunResult struct {
	Trace []Move
}

// balanceWindow computes [S_min, S_max] for the current stage's target
// group count iter, per spec.md §4.6: the window is centered near total/iter,
// with a relative slack of 0.9^(iter/K) below and 1.1^(iter/K) above, which
// widens to ±10% at iter == K. Per SPEC_FULL.md §9, a non-power-of-two iter is
// clamped to the nearest power of two at or above it for the log2 term only
// — the i/k balance-decay terms still use the real iter. For the documented
// practical case (K a power of two) iter is already a power of two at every
// call site, so this clamp never changes the computed window.
func (e *Engine) balanceWindow(iter int) (min, max int) {
	total := float64(e.hg.TotalSize)
	k := float64(e.hg.K)
	i := float64(iter)
	base := total * math.Pow(0.5, math.Log2(float64(nextPowerOfTwo(iter))))
	min = int(base * math.Pow(0.9, i/k))
	max = int(base * math.Pow(1.1, i/k))
	return min, max
}

// nextPowerOfTwo returns the smallest power of two >= n, for n >= 1.
func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

// Run executes the full hierarchical schedule (spec.md §4.6): a bisection
// ladder that splits group 0 into K groups two at a time, followed by
// multi-way refinement bounded by budget (wall-clock, measured from e's
// clock) or cutSize convergence. randSrc drives the refinement phase's
// random group-pair selection; it is the caller's per-trial seeded source.
func (e *Engine) Run(budget time.Duration, randSrc rng) RunResult {
	start := e.clock.Now()
	var lastTrace []Move

	bisection := e.timer.Start("bisection")
	for p := 1; p < e.hg.K; p *= 2 {
		iter := 2 * p
		sMin, sMax := e.balanceWindow(iter)
		levelName := fmt.Sprintf("bisection-level-%d", p)
		level := e.timer.StartChild("bisection", levelName)

		for g := 0; g < p && g+p < e.hg.K; g++ {
			other := g + p

			e.rebuild()
			lastTrace = e.TwoWayInitFM([]int{g, other}, sMin, sMax)
			e.log.Debug("bisection level p=%d group=%d: seeded split, cutSize=%d", p, g, e.hg.CutSize)

			for {
				before := e.hg.CutSize
				e.rebuild()
				moves := e.MultiWayFM([]int{g, other}, sMin, sMax)
				if len(moves) > 0 {
					lastTrace = moves
				}
				improvement := before - e.hg.CutSize
				if float64(improvement) <= float64(len(e.hg.Nets))*1e-4 {
					break
				}
			}
		}
		level.Stop()
	}
	bisection.Stop()

	sMin, sMax := e.balanceWindow(e.hg.K)
	allGroups := make([]int, e.hg.K)
	for g := range allGroups {
		allGroups[g] = g
	}

	refinement := e.timer.Start("refinement")
	prevCut := e.hg.CutSize
	for iteration := 0; ; iteration++ {
		if budget > 0 && e.clock.Since(start) >= budget {
			e.log.Debug("refinement stopped: budget %s exhausted after %d iterations", budget, iteration)
			break
		}

		if e.hg.K > 2 {
			ga := randSrc.Intn(e.hg.K)
			gb := randSrc.Intn(e.hg.K - 1)
			if gb >= ga {
				gb++
			}
			e.rebuild()
			if moves := e.MultiWayFM([]int{ga, gb}, sMin, sMax); len(moves) > 0 {
				lastTrace = moves
			}
		}

		e.rebuild()
		if moves := e.MultiWayFM(allGroups, sMin, sMax); len(moves) > 0 {
			lastTrace = moves
		}

		if e.hg.CutSize == prevCut {
			e.log.Debug("refinement converged after %d iterations at cutSize=%d", iteration+1, e.hg.CutSize)
			break
		}
		prevCut = e.hg.CutSize
	}
	refinement.Stop()

	e.logSummary()
	return RunResult{Trace: lastTrace}
}

// logSummary writes the engine's per-phase timing breakdown at Debug level,
// sourced entirely from state the engine already computed (no new input).
func (e *Engine) logSummary() {
	e.log.Debug("%s", e.timer.Summary())
}
