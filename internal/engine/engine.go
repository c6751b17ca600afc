// Package engine drives a single hypergraph partitioning trial: the move
// selector, the two pass kinds (TwoWayInitFM, MultiWayFM), and the
// hierarchical bisection-then-refinement schedule that turns an
// unpartitioned hypergraph into a K-way assignment.
package engine

import (
	"math/rand"

	"github.com/eda-tools/fmpart/internal/bucket"
	"github.com/eda-tools/fmpart/internal/hypergraph"
	"github.com/eda-tools/fmpart/pkg/utils"
)

// Move is one committed cell relocation, recorded for rollback and for the
// §4.8 trace the CLI logs for the winning trial.
type Move struct {
	Cell     int
	From     int
	To       int
	CutSize  int
	SizeDiff int
}

// Engine runs passes against one hypergraph/bucket-store pair. It holds no
// state of its own beyond what a pass needs; Run owns the hierarchical
// schedule.
type Engine struct {
	hg    *hypergraph.Hypergraph
	store *bucket.Store
	log   utils.Logger
	clock utils.Clock
	timer *utils.Timer
}

// New builds an Engine over hg, allocating its own bucket store sized to hg.
func New(hg *hypergraph.Hypergraph, log utils.Logger, clock utils.Clock) *Engine {
	if log == nil {
		log = &utils.NullLogger{}
	}
	if clock == nil {
		clock = utils.NewRealClock()
	}
	return &Engine{
		hg:    hg,
		store: bucket.New(len(hg.Cells), hg.K, hg.MaxPins),
		log:   log,
		clock: clock,
		timer: utils.NewTimer("engine", utils.WithClock(clock), utils.WithLogger(log)),
	}
}

// Hypergraph exposes the engine's hypergraph for callers that need to read
// the final assignment or cut size.
func (e *Engine) Hypergraph() *hypergraph.Hypergraph { return e.hg }

// rebuild recomputes all bucket state from the hypergraph's current
// occupancy. Called at every phase transition (spec.md §4.2, §4.5, §4.6).
func (e *Engine) rebuild() {
	e.store.Rebuild(e.hg)
}

// selectMove scans head[f][t] over every ordered pair in groups (spec.md
// §4.4) and returns the accepted move, or ok=false if none is legal. sizeMin
// and sizeMax bound the resulting group sizes. When the highest-head pair's
// candidates all fail the balance window, that pair is treated as exhausted
// and the remaining pairs are rescanned (FM.cpp's moveCell loop over
// tempBucketHead), rather than giving up on the whole pass.
func (e *Engine) selectMove(groups []int, sizeMin, sizeMax int) (cell, from, to, gainIdx int, ok bool) {
	type pair struct{ f, t int }
	exhausted := make(map[pair]bool)

	for {
		bestHead := -1
		bestF, bestT := -1, -1

		for _, f := range groups {
			for _, t := range groups {
				if f == t || exhausted[pair{f, t}] {
					continue
				}
				h := e.store.Head(f, t)
				if h < 0 {
					continue
				}
				switch {
				case h > bestHead:
					bestHead, bestF, bestT = h, f, t
				case h == bestHead:
					if e.prefersPair(f, t, bestF, bestT) {
						bestF, bestT = f, t
					}
				}
			}
		}

		if bestHead < 0 {
			return 0, 0, 0, 0, false
		}

		c, accepted := e.tryCandidates(bestF, bestT, bestHead, sizeMin, sizeMax)
		if accepted {
			return c, bestF, bestT, bestHead, true
		}
		exhausted[pair{bestF, bestT}] = true
	}
}

// prefersPair breaks a head-index tie between candidate pair (f,t) and the
// current best (bf,bt): first by whether the candidate pair moves a cell
// from an over-target group into an under-target group, then by the larger
// size[f]-size[t] gap.
func (e *Engine) prefersPair(f, t, bf, bt int) bool {
	target := e.hg.TotalSize / e.hg.K
	candBalances := e.hg.GroupSize[f] > target && e.hg.GroupSize[t] < target
	bestBalances := e.hg.GroupSize[bf] > target && e.hg.GroupSize[bt] < target
	if candBalances != bestBalances {
		return candBalances
	}
	candDiff := e.hg.GroupSize[f] - e.hg.GroupSize[t]
	bestDiff := e.hg.GroupSize[bf] - e.hg.GroupSize[bt]
	return candDiff > bestDiff
}

// tryCandidates inspects up to the first two cells in bucket[from][to][gi]
// and accepts the first whose move keeps both endpoints within
// [sizeMin, sizeMax].
func (e *Engine) tryCandidates(from, to, gi, sizeMin, sizeMax int) (int, bool) {
	h := e.store.HeadHandle(from, to, gi)
	for tries := 0; tries < 2 && h >= 0; tries++ {
		c := e.store.CellOfHandle(h)
		size := e.hg.Cells[c].Size
		if e.hg.GroupSize[from]-size >= sizeMin && e.hg.GroupSize[to]+size <= sizeMax {
			return c, true
		}
		h = e.store.NextHandle(h)
	}
	return 0, false
}

// commit performs the full move sequence (spec.md §4.3/§4.4): lock c out of
// its own buckets, apply the move to the hypergraph, then propagate the six
// canonical gain-update rules to the rest of c's nets.
func (e *Engine) commit(c, from, to int) {
	e.store.Lock(c, from)
	e.hg.ApplyMove(c, to)
	e.store.ApplyGainUpdates(e.hg, c, from, to)
}

func (e *Engine) sizeDiff() int {
	min, max := e.hg.GroupSize[0], e.hg.GroupSize[0]
	for _, s := range e.hg.GroupSize {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	return max - min
}

// TwoWayInitFM seeds a two-way split: moves cells from groups[0] into
// groups[1] (assumed empty) one at a time by highest gain, until
// groupSize[groups[0]] <= sizeMax and groupSize[groups[1]] >= sizeMin. No
// rollback (spec.md §4.5).
func (e *Engine) TwoWayInitFM(groups []int, sizeMin, sizeMax int) []Move {
	g0, g1 := groups[0], groups[1]
	var moves []Move

	for e.hg.GroupSize[g0] > sizeMax || e.hg.GroupSize[g1] < sizeMin {
		c, from, to, _, ok := e.selectMove([]int{g0, g1}, 0, e.hg.TotalSize)
		if !ok {
			break
		}
		if from != g0 {
			// TwoWayInitFM only ever moves g0 -> g1; a reverse candidate
			// means no forward move remains.
			break
		}
		e.commit(c, from, to)
		moves = append(moves, Move{
			Cell:     c,
			From:     from,
			To:       to,
			CutSize:  e.hg.CutSize,
			SizeDiff: e.sizeDiff(),
		})
	}
	return moves
}

// MultiWayFM runs one pass over groups (spec.md §4.5): repeatedly apply
// §4.4's move selector until no candidate remains or the cut size exceeds
// 10x its value at pass start, then roll back to the best point reached —
// the pass-entry state itself (cut0) if no move ever beat it, otherwise the
// move with the smallest cut size, tie-broken by the smallest size diff
// (FM.cpp:36-37's minCutsize=cutSize0, minIdx=-1 baseline).
func (e *Engine) MultiWayFM(groups []int, sizeMin, sizeMax int) []Move {
	cut0 := e.hg.CutSize
	sizeDiff0 := e.sizeDiff()
	var moves []Move

	for {
		c, from, to, _, ok := e.selectMove(groups, sizeMin, sizeMax)
		if !ok {
			break
		}
		e.commit(c, from, to)
		moves = append(moves, Move{
			Cell:     c,
			From:     from,
			To:       to,
			CutSize:  e.hg.CutSize,
			SizeDiff: e.sizeDiff(),
		})
		if e.hg.CutSize > cut0*10 {
			break
		}
	}

	best := -1 // -1 means the pass-entry state itself is the best point.
	bestCut, bestDiff := cut0, sizeDiff0
	for i, m := range moves {
		if m.CutSize < bestCut || (m.CutSize == bestCut && m.SizeDiff < bestDiff) {
			best, bestCut, bestDiff = i, m.CutSize, m.SizeDiff
		}
	}

	for j := len(moves) - 1; j > best; j-- {
		e.hg.ApplyMove(moves[j].Cell, moves[j].From)
	}
	e.hg.CutSize = bestCut

	if best < 0 {
		return nil
	}
	return moves[:best+1]
}

// rng abstracts the randomness MultiWay refinement needs (picking group
// pairs) so orchestrator callers can supply a per-trial seeded source.
type rng interface {
	Intn(n int) int
}

var _ rng = (*rand.Rand)(nil)
