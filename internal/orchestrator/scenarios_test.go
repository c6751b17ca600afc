package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eda-tools/fmpart/internal/hypergraph"
	"github.com/eda-tools/fmpart/pkg/utils"
)

// groupsOf returns, for each group index, the set of cell names it holds.
func groupsOf(hg *hypergraph.Hypergraph) [][]string {
	out := make([][]string, hg.K)
	for _, c := range hg.Cells {
		out[c.Group] = append(out[c.Group], c.Name)
	}
	return out
}

func sameGroup(groups [][]string, a, b string) bool {
	for _, g := range groups {
		var hasA, hasB bool
		for _, n := range g {
			if n == a {
				hasA = true
			}
			if n == b {
				hasB = true
			}
		}
		if hasA || hasB {
			return hasA && hasB
		}
	}
	return false
}

func runScenario(t *testing.T, cells []hypergraph.CellSpec, nets []hypergraph.NetSpec, k int) *Result {
	t.Helper()
	hg, err := hypergraph.New(cells, nets, k)
	require.NoError(t, err)

	result, err := Run(context.Background(), hg, Options{
		Trials: 4,
		Budget: 2 * time.Second,
		Log:    &utils.NullLogger{},
	})
	require.NoError(t, err)
	return result
}

// E1: 2 cells, 1 net spanning both, K=2 -> CutSize 1, one cell per group.
func TestScenario_E1_Trivial(t *testing.T) {
	result := runScenario(t,
		[]hypergraph.CellSpec{{Name: "C1", Size: 1}, {Name: "C2", Size: 1}},
		[]hypergraph.NetSpec{{Name: "n1", Cells: []string{"C1", "C2"}}},
		2)

	assert.Equal(t, 1, result.CutSize)
	for _, g := range result.Hypergraph.GroupSize {
		assert.Equal(t, 1, g)
	}
}

// E2: 4 cells split into two independent nets, K=2 -> CutSize 0, each net's
// pair lands in the same group.
func TestScenario_E2_Separable(t *testing.T) {
	result := runScenario(t,
		[]hypergraph.CellSpec{
			{Name: "A", Size: 1}, {Name: "B", Size: 1},
			{Name: "C", Size: 1}, {Name: "D", Size: 1},
		},
		[]hypergraph.NetSpec{
			{Name: "nAB", Cells: []string{"A", "B"}},
			{Name: "nCD", Cells: []string{"C", "D"}},
		},
		2)

	assert.Equal(t, 0, result.CutSize)
	groups := groupsOf(result.Hypergraph)
	assert.True(t, sameGroup(groups, "A", "B"))
	assert.True(t, sameGroup(groups, "C", "D"))
}

// E3: a 6-cell chain, K=2 -> CutSize 1, achieved by a contiguous bisection.
func TestScenario_E3_Chain(t *testing.T) {
	cells := make([]hypergraph.CellSpec, 6)
	names := []string{"1", "2", "3", "4", "5", "6"}
	for i, n := range names {
		cells[i] = hypergraph.CellSpec{Name: n, Size: 1}
	}
	var nets []hypergraph.NetSpec
	for i := 0; i+1 < len(names); i++ {
		nets = append(nets, hypergraph.NetSpec{
			Name:  "n" + names[i],
			Cells: []string{names[i], names[i+1]},
		})
	}

	result := runScenario(t, cells, nets, 2)
	assert.Equal(t, 1, result.CutSize)
}

// E4: balance forces a cut even though the single net spans every cell.
// 3 cells, 1 net over all of them, K=2 -> CutSize 1, sizes 2 and 1.
func TestScenario_E4_BalanceForcesCut(t *testing.T) {
	result := runScenario(t,
		[]hypergraph.CellSpec{{Name: "X", Size: 1}, {Name: "Y", Size: 1}, {Name: "Z", Size: 1}},
		[]hypergraph.NetSpec{{Name: "nXYZ", Cells: []string{"X", "Y", "Z"}}},
		2)

	assert.Equal(t, 1, result.CutSize)
	sizes := append([]int(nil), result.Hypergraph.GroupSize...)
	if sizes[0] > sizes[1] {
		sizes[0], sizes[1] = sizes[1], sizes[0]
	}
	assert.Equal(t, []int{1, 2}, sizes)
}

// E5: 8 cells in 4 two-cell clusters joined by two bridge nets, K=4 ->
// CutSize 2 (the bridges), every group holding exactly 2 cells.
func TestScenario_E5_FourWay(t *testing.T) {
	cells := make([]hypergraph.CellSpec, 8)
	for i := range cells {
		cells[i] = hypergraph.CellSpec{Name: cellLabel(i), Size: 1}
	}
	nets := []hypergraph.NetSpec{
		{Name: "n12", Cells: []string{"C1", "C2"}},
		{Name: "n34", Cells: []string{"C3", "C4"}},
		{Name: "n56", Cells: []string{"C5", "C6"}},
		{Name: "n78", Cells: []string{"C7", "C8"}},
		{Name: "n23", Cells: []string{"C2", "C3"}},
		{Name: "n67", Cells: []string{"C6", "C7"}},
	}

	result := runScenario(t, cells, nets, 4)
	assert.Equal(t, 2, result.CutSize)
	for _, g := range result.Hypergraph.GroupSize {
		assert.Equal(t, 2, g)
	}
}

func cellLabel(i int) string {
	return "C" + string(rune('1'+i))
}

// E6: weighted cells force an unbalanced-by-count but size-balanced split:
// A alone (size 3) against B,C,D together (size 1 each), CutSize 1.
func TestScenario_E6_Weighted(t *testing.T) {
	result := runScenario(t,
		[]hypergraph.CellSpec{
			{Name: "A", Size: 3},
			{Name: "B", Size: 1}, {Name: "C", Size: 1}, {Name: "D", Size: 1},
		},
		[]hypergraph.NetSpec{{Name: "nABCD", Cells: []string{"A", "B", "C", "D"}}},
		2)

	assert.Equal(t, 1, result.CutSize)
	groups := groupsOf(result.Hypergraph)
	assert.True(t, sameGroup(groups, "B", "C"))
	assert.True(t, sameGroup(groups, "C", "D"))
	assert.False(t, sameGroup(groups, "A", "B"))
}
