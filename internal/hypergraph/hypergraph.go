// Package hypergraph holds the cell/net data model the partitioner mutates:
// group assignment, per-net group occupancy, and the incrementally
// maintained cut size.
package hypergraph

import "fmt"

// Cell is a node with a positive size and the set of nets it touches.
type Cell struct {
	Name  string
	Size  int
	Nets  []int
	Group int
}

// Net is a hyperedge; Cells holds the indices of its member cells.
type Net struct {
	Cells []int
}

// Hypergraph is the mutable partitioning state for one trial: cells, nets,
// the current group assignment, and the counters derived from it.
type Hypergraph struct {
	K     int
	Cells []Cell
	Nets  []Net

	// GroupSize[g] is the aggregate cell size currently assigned to group g.
	GroupSize []int

	// NetGroupCount[n][g] is the number of cells of net n currently in group g.
	NetGroupCount [][]int

	CutSize   int
	TotalSize int
	MaxPins   int
}

// CellSpec and NetSpec describe the hypergraph to build, referencing cells
// by name; New resolves Net.Cells to the cell index space.
type CellSpec struct {
	Name string
	Size int
}

// NetSpec is a net as parsed from input, naming its member cells.
type NetSpec struct {
	Name  string
	Cells []string
}

// New builds a Hypergraph from cell and net specs, assigning every cell to
// group 0 initially (cutSize starts at 0, matching the source's FMEngine
// construction). It returns an error if a net names a cell absent from
// cells, or if K is less than 2.
func New(cells []CellSpec, nets []NetSpec, k int) (*Hypergraph, error) {
	if k < 2 {
		return nil, fmt.Errorf("partition count must be at least 2, got %d", k)
	}

	index := make(map[string]int, len(cells))
	hg := &Hypergraph{
		K:     k,
		Cells: make([]Cell, len(cells)),
		Nets:  make([]Net, len(nets)),
	}
	for i, c := range cells {
		if _, dup := index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate cell name %q", c.Name)
		}
		index[c.Name] = i
		hg.Cells[i] = Cell{Name: c.Name, Size: c.Size}
	}

	for ni, n := range nets {
		cellIdxs := make([]int, 0, len(n.Cells))
		for _, name := range n.Cells {
			ci, ok := index[name]
			if !ok {
				return nil, fmt.Errorf("net %q references undeclared cell %q", n.Name, name)
			}
			cellIdxs = append(cellIdxs, ci)
			hg.Cells[ci].Nets = append(hg.Cells[ci].Nets, ni)
		}
		hg.Nets[ni] = Net{Cells: cellIdxs}
	}

	hg.GroupSize = make([]int, k)
	hg.NetGroupCount = make([][]int, len(nets))
	for ni, n := range hg.Nets {
		hg.NetGroupCount[ni] = make([]int, k)
		hg.NetGroupCount[ni][0] = len(n.Cells)
	}

	for i := range hg.Cells {
		hg.TotalSize += hg.Cells[i].Size
		if len(hg.Cells[i].Nets) > hg.MaxPins {
			hg.MaxPins = len(hg.Cells[i].Nets)
		}
	}
	hg.GroupSize[0] = hg.TotalSize

	return hg, nil
}

// Gain returns the change in cut size if cell c alone moved to group
// target, recomputed from scratch against the current net occupancy. Used
// by bucket.Store.Rebuild and as the ground-truth check for property tests.
func (hg *Hypergraph) Gain(c, target int) int {
	from := hg.Cells[c].Group
	if target == from {
		return 0
	}
	gain := 0
	for _, n := range hg.Cells[c].Nets {
		arity := len(hg.Nets[n].Cells)
		if hg.NetGroupCount[n][from] == arity {
			gain--
		} else if hg.NetGroupCount[n][from] == 1 && hg.NetGroupCount[n][target]+1 == arity {
			gain++
		}
	}
	return gain
}

// ApplyMove reassigns cell c from its current group to target, updating
// GroupSize, NetGroupCount and CutSize incrementally. It returns the
// group c was moved out of. Gain-bucket maintenance is a separate concern
// (bucket.Store.ApplyGainUpdates), invoked by the caller after this.
func (hg *Hypergraph) ApplyMove(c, target int) int {
	from := hg.Cells[c].Group
	size := hg.Cells[c].Size

	for _, n := range hg.Cells[c].Nets {
		arity := len(hg.Nets[n].Cells)
		if hg.NetGroupCount[n][from] == arity {
			// net was entirely in `from`; it becomes cut once c leaves.
			hg.CutSize++
		}
		hg.NetGroupCount[n][from]--
		hg.NetGroupCount[n][target]++
		if hg.NetGroupCount[n][target] == arity {
			// net is now entirely in `target`; it stops being cut.
			hg.CutSize--
		}
	}

	hg.GroupSize[from] -= size
	hg.GroupSize[target] += size
	hg.Cells[c].Group = target
	return from
}

// VerifyCutSize recomputes cut size from scratch: the count of nets whose
// NetGroupCount has at least two nonzero entries. Used by tests to check
// the incrementally maintained CutSize against ground truth.
func (hg *Hypergraph) VerifyCutSize() int {
	cut := 0
	for ni := range hg.Nets {
		spanned := 0
		for g := 0; g < hg.K; g++ {
			if hg.NetGroupCount[ni][g] > 0 {
				spanned++
			}
		}
		if spanned >= 2 {
			cut++
		}
	}
	return cut
}

// VerifyOccupancy reports whether, for every net, NetGroupCount sums to the
// net's arity (invariant 2 of the testable-properties list).
func (hg *Hypergraph) VerifyOccupancy() bool {
	for ni, n := range hg.Nets {
		sum := 0
		for g := 0; g < hg.K; g++ {
			sum += hg.NetGroupCount[ni][g]
		}
		if sum != len(n.Cells) {
			return false
		}
	}
	return true
}

// VerifyConservation reports whether group sizes still sum to the total
// cell size (invariant 1).
func (hg *Hypergraph) VerifyConservation() bool {
	sum := 0
	for _, s := range hg.GroupSize {
		sum += s
	}
	return sum == hg.TotalSize
}

// Clone returns a deep copy, used to give each orchestrator trial an
// independent hypergraph to mutate.
func (hg *Hypergraph) Clone() *Hypergraph {
	out := &Hypergraph{
		K:         hg.K,
		Cells:     make([]Cell, len(hg.Cells)),
		Nets:      make([]Net, len(hg.Nets)),
		GroupSize: append([]int(nil), hg.GroupSize...),
		CutSize:   hg.CutSize,
		TotalSize: hg.TotalSize,
		MaxPins:   hg.MaxPins,
	}
	for i, c := range hg.Cells {
		out.Cells[i] = Cell{
			Name:  c.Name,
			Size:  c.Size,
			Nets:  append([]int(nil), c.Nets...),
			Group: c.Group,
		}
	}
	for i, n := range hg.Nets {
		out.Nets[i] = Net{Cells: append([]int(nil), n.Cells...)}
	}
	out.NetGroupCount = make([][]int, len(hg.NetGroupCount))
	for i, row := range hg.NetGroupCount {
		out.NetGroupCount[i] = append([]int(nil), row...)
	}
	return out
}

// Assignment returns, for each group, the names of its member cells.
func (hg *Hypergraph) Assignment() [][]string {
	groups := make([][]string, hg.K)
	for _, c := range hg.Cells {
		groups[c.Group] = append(groups[c.Group], c.Name)
	}
	return groups
}
