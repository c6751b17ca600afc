package bucket

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eda-tools/fmpart/internal/hypergraph"
)

func build(t *testing.T, cells []hypergraph.CellSpec, nets []hypergraph.NetSpec, k int) (*hypergraph.Hypergraph, *Store) {
	t.Helper()
	hg, err := hypergraph.New(cells, nets, k)
	require.NoError(t, err)
	s := New(len(hg.Cells), k, hg.MaxPins)
	s.Rebuild(hg)
	return hg, s
}

func TestRebuild_GainMatchesGroundTruth(t *testing.T) {
	cells := []hypergraph.CellSpec{
		{Name: "A", Size: 1}, {Name: "B", Size: 1}, {Name: "C", Size: 1}, {Name: "D", Size: 1},
	}
	nets := []hypergraph.NetSpec{{Name: "N1", Cells: []string{"A", "B", "C", "D"}}}
	hg, s := build(t, cells, nets, 2)

	for c := range hg.Cells {
		for g := 0; g < hg.K; g++ {
			if g == hg.Cells[c].Group {
				assert.True(t, s.Delisted(c, g))
				continue
			}
			gi := int(s.gidx[s.handle(c, g)])
			assert.Equal(t, hg.Gain(c, g), gi-s.GainIndexBase())
		}
	}
}

// applyMove performs the full move sequence an engine would: lock, apply,
// then propagate gain updates — mirroring moveCell/updateGain in the
// reference implementation.
func applyMove(hg *hypergraph.Hypergraph, s *Store, c, to int) {
	from := hg.Cells[c].Group
	s.Lock(c, from)
	hg.ApplyMove(c, to)
	s.ApplyGainUpdates(hg, c, from, to)
}

func TestApplyGainUpdates_KeepsLiveBucketEntriesConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cells := make([]hypergraph.CellSpec, 20)
	for i := range cells {
		cells[i] = hypergraph.CellSpec{Name: name(i), Size: 1}
	}
	nets := make([]hypergraph.NetSpec, 15)
	for i := range nets {
		arity := 2 + rng.Intn(3)
		seen := map[string]bool{}
		var members []string
		for len(members) < arity {
			c := cells[rng.Intn(len(cells))].Name
			if seen[c] {
				continue
			}
			seen[c] = true
			members = append(members, c)
		}
		nets[i] = hypergraph.NetSpec{Name: name(i), Cells: members}
	}
	hg, s := build(t, cells, nets, 3)

	for i := 0; i < 30; i++ {
		c := rng.Intn(len(hg.Cells))
		to := rng.Intn(hg.K)
		if to == hg.Cells[c].Group {
			continue
		}
		applyMove(hg, s, c, to)

		for cc := range hg.Cells {
			for g := 0; g < hg.K; g++ {
				if s.Delisted(cc, g) {
					continue
				}
				gi := int(s.gidx[s.handle(cc, g)])
				require.Equal(t, hg.Gain(cc, g), gi-s.GainIndexBase(),
					"cell %d group %d out of sync after move %d", cc, g, i)
			}
		}
	}
}

func name(i int) string {
	return "c" + string(rune('a'+i%26)) + string(rune('0'+i/26%10))
}

func TestHead_TracksHighestNonEmptyBucket(t *testing.T) {
	cells := []hypergraph.CellSpec{{Name: "A", Size: 1}, {Name: "B", Size: 1}}
	nets := []hypergraph.NetSpec{{Name: "N1", Cells: []string{"A", "B"}}}
	hg, s := build(t, cells, nets, 2)

	head := s.Head(0, 1)
	assert.GreaterOrEqual(t, head, 0)

	cell, ok := s.TopCellOf(0, 1)
	require.True(t, ok)
	assert.Contains(t, []string{"A", "B"}, hg.Cells[cell].Name)
}
