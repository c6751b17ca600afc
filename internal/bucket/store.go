// Package bucket implements the gain-bucket store: for every (from, to)
// group pair, a doubly linked list of cells indexed by gain, with a cached
// maximum-gain head, backed by a flat arena of pre-allocated position
// handles (one per cell per group) rather than per-node heap allocations.
package bucket

import "github.com/eda-tools/fmpart/internal/hypergraph"

const noNode = -1

// Store is the gain-bucket structure for one hypergraph. It owns no
// hypergraph state itself beyond what it needs to recompute gains; cut
// size, group sizes and net occupancy live in hypergraph.Hypergraph.
type Store struct {
	numCells int
	k        int
	maxPins  int

	// next/prev are arena-indexed by handle = cell*k + group. A cell is
	// never reassigned to a different handle; only its list position moves.
	next []int32
	prev []int32

	// gidx[cell*k+group] is the gain_index the cell currently occupies in
	// bucket[cell.group][group][...], or -1 if delisted (locked, or group
	// == cell's own current group).
	gidx []int32

	// buckets[from][to][gainIndex] is the handle at the head of that
	// bucket's list, or noNode if empty.
	buckets [][][]int32

	// head[from][to] is the highest gainIndex with a non-empty bucket, or
	// -1 if all of B[from][to][*] are empty.
	head [][]int32
}

// New allocates a Store sized for numCells cells, k groups, and maxPins
// (the maximum number of nets touching any one cell, which bounds the gain
// range to [-maxPins, +maxPins]).
func New(numCells, k, maxPins int) *Store {
	s := &Store{
		numCells: numCells,
		k:        k,
		maxPins:  maxPins,
		next:     make([]int32, numCells*k),
		prev:     make([]int32, numCells*k),
		gidx:     make([]int32, numCells*k),
	}
	s.buckets = make([][][]int32, k)
	s.head = make([][]int32, k)
	for f := 0; f < k; f++ {
		s.buckets[f] = make([][]int32, k)
		s.head[f] = make([]int32, k)
		for t := 0; t < k; t++ {
			s.buckets[f][t] = make([]int32, 2*maxPins+1)
		}
	}
	return s
}

func (s *Store) handle(c, group int) int32 {
	return int32(c*s.k + group)
}

// Rebuild clears every bucket and recomputes every live (cell, group≠self)
// entry from the hypergraph's current net occupancy. This is the full
// O(cells·K·pins) recomputation used at phase transitions (start of each
// bisection level, after a pass's rollback).
func (s *Store) Rebuild(hg *hypergraph.Hypergraph) {
	for f := 0; f < s.k; f++ {
		for t := 0; t < s.k; t++ {
			for g := range s.buckets[f][t] {
				s.buckets[f][t][g] = noNode
			}
			s.head[f][t] = -1
		}
	}

	for c := range hg.Cells {
		self := hg.Cells[c].Group
		for g := 0; g < s.k; g++ {
			h := s.handle(c, g)
			if g == self {
				s.gidx[h] = noNode
				continue
			}
			gain := hg.Gain(c, g)
			gi := gain + s.maxPins
			s.prepend(h, self, g, gi)
		}
	}

	for f := 0; f < s.k; f++ {
		for t := 0; t < s.k; t++ {
			if f == t {
				continue
			}
			s.recomputeHead(f, t)
		}
	}
}

func (s *Store) recomputeHead(from, to int) {
	for g := len(s.buckets[from][to]) - 1; g >= 0; g-- {
		if s.buckets[from][to][g] != noNode {
			s.head[from][to] = int32(g)
			return
		}
	}
	s.head[from][to] = -1
}

// prepend links handle h to the front of bucket[from][to][gi], without
// touching head (callers that build incrementally must maintain head
// themselves; Rebuild fixes head up afterwards in one pass).
func (s *Store) prepend(h int32, from, to, gi int) {
	s.prev[h] = noNode
	s.gidx[h] = int32(gi)
	cur := s.buckets[from][to][gi]
	s.next[h] = cur
	if cur != noNode {
		s.prev[cur] = h
	}
	s.buckets[from][to][gi] = h
}

// Remove unlinks cell c's (from,to) handle from its current bucket and
// lowers head[from][to] if that bucket was the head and became empty.
func (s *Store) Remove(c, from, to int) {
	h := s.handle(c, to)
	gi := int(s.gidx[h])
	if gi < 0 {
		return
	}

	p, n := s.prev[h], s.next[h]
	if p != noNode {
		s.next[p] = n
	}
	if n != noNode {
		s.prev[n] = p
	}
	if s.buckets[from][to][gi] == h {
		s.buckets[from][to][gi] = n
	}

	if int(s.head[from][to]) == gi && s.buckets[from][to][gi] == noNode {
		g := gi
		for g >= 0 && s.buckets[from][to][g] == noNode {
			g--
		}
		s.head[from][to] = int32(g)
	}
}

// Insert prepends cell c's (from,to) handle to bucket[from][to][gi] and
// raises head[from][to] if gi exceeds it.
func (s *Store) Insert(c, from, to, gi int) {
	h := s.handle(c, to)
	s.prepend(h, from, to, gi)
	if s.head[from][to] < int32(gi) {
		s.head[from][to] = int32(gi)
	}
}

// Update removes then reinserts cell c's (from,to) handle at a gain index
// shifted by delta. A positive delta means the cell's gain toward `to`
// increased.
func (s *Store) Update(c, from, to, delta int) {
	h := s.handle(c, to)
	gi := int(s.gidx[h])
	if gi < 0 {
		return
	}
	s.Remove(c, from, to)
	s.Insert(c, from, to, gi+delta)
}

// Delisted reports whether cell c currently has no live entry in
// bucket[c.group][group][...] — either because group is c's own group, or
// because the cell has been locked (moved already this pass).
func (s *Store) Delisted(c, group int) bool {
	return s.gidx[s.handle(c, group)] < 0
}

// Lock removes all of cell c's (from,*) entries and marks them delisted.
// Used when a move is committed: the moved cell cannot be selected again
// until the next Rebuild.
func (s *Store) Lock(c, from int) {
	for g := 0; g < s.k; g++ {
		if g == from {
			continue
		}
		h := s.handle(c, g)
		if s.gidx[h] >= 0 {
			s.Remove(c, from, g)
		}
		s.gidx[h] = noNode
	}
}

// Head returns the highest gain_index with a non-empty bucket[from][to],
// or -1 if none.
func (s *Store) Head(from, to int) int {
	return int(s.head[from][to])
}

// HeadHandle returns the arena handle at the front of bucket[from][to][gi],
// or noNode if empty.
func (s *Store) HeadHandle(from, to, gi int) int32 {
	return s.buckets[from][to][gi]
}

// NextHandle returns the handle following h within its bucket list, or
// noNode at the end. Used by the move selector to try a second candidate
// when the head candidate fails the balance window.
func (s *Store) NextHandle(h int32) int32 {
	return s.next[h]
}

// CellOfHandle recovers the cell index owning arena handle h.
func (s *Store) CellOfHandle(h int32) int {
	return int(h) / s.k
}

// GainIndexBase exposes maxPins so callers can decode gain_index back to a
// signed gain (gain = gain_index - GainIndexBase()).
func (s *Store) GainIndexBase() int { return s.maxPins }

// TopCellOf returns the cell at the front of bucket[from][to]'s highest
// non-empty gain index, and false if the bucket is empty.
func (s *Store) TopCellOf(from, to int) (int, bool) {
	gi := s.Head(from, to)
	if gi < 0 {
		return 0, false
	}
	h := s.HeadHandle(from, to, gi)
	if h == noNode {
		return 0, false
	}
	return s.CellOfHandle(h), true
}

// ApplyGainUpdates applies the six canonical bucket-update rules triggered
// by moving cell c from `from` to `to`, to the other cells sharing c's
// nets. The caller must invoke hg.ApplyMove(c, to) — which updates
// hg.NetGroupCount to its post-move state and reassigns c's group — before
// calling this, and must have already locked c out of its own buckets
// (Lock) using the pre-move `from`, since these rules never touch c
// itself.
func (s *Store) ApplyGainUpdates(hg *hypergraph.Hypergraph, c, from, to int) {
	for _, n := range hg.Cells[c].Nets {
		arity := len(hg.Nets[n].Cells)
		counts := hg.NetGroupCount[n]

		if counts[to] == 1 && counts[from]+1 == arity {
			for _, cel := range hg.Nets[n].Cells {
				if cel == c || s.Delisted(cel, to) {
					continue
				}
				for g := 0; g < s.k; g++ {
					if g == from {
						continue
					}
					s.Update(cel, from, g, 1)
				}
			}
		}

		if counts[to] == 2 && counts[from]+2 == arity {
			for _, cel := range hg.Nets[n].Cells {
				if cel == c || hg.Cells[cel].Group != to || s.Delisted(cel, from) {
					continue
				}
				s.Update(cel, to, from, -1)
			}
		}

		if counts[from] == 0 && counts[to] == arity {
			for _, cel := range hg.Nets[n].Cells {
				if cel == c || s.Delisted(cel, from) {
					continue
				}
				for g := 0; g < s.k; g++ {
					if g == to {
						continue
					}
					s.Update(cel, to, g, -1)
				}
			}
		}

		if counts[from] == 1 && counts[to]+1 == arity {
			for _, cel := range hg.Nets[n].Cells {
				if cel == c || hg.Cells[cel].Group != from || s.Delisted(cel, to) {
					continue
				}
				s.Update(cel, from, to, 1)
			}
		}

		if counts[from] == 0 && counts[to]+1 == arity {
			for _, cel := range hg.Nets[n].Cells {
				if cel == c || hg.Cells[cel].Group == from || s.Delisted(cel, to) {
					continue
				}
				s.Update(cel, hg.Cells[cel].Group, to, 1)
			}
		}

		if counts[to] == 1 && counts[from]+2 == arity {
			for _, cel := range hg.Nets[n].Cells {
				if cel == c || hg.Cells[cel].Group == to || s.Delisted(cel, from) {
					continue
				}
				s.Update(cel, hg.Cells[cel].Group, from, -1)
			}
		}
	}
}
