// Package ioformat reads and writes the partitioner's line-oriented text
// formats: the input cell/net listing and the output group assignment.
package ioformat

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/eda-tools/fmpart/internal/hypergraph"
	"github.com/eda-tools/fmpart/pkg/perrors"
)

// Parse reads the input text format (spec.md §6):
//
//	NumCells  <n>
//	Cell <name> <size>           x n
//	NumNets   <m>
//	Net <netName> <arity>        x m
//	  Cell <cellName>            x arity (per net)
//
// It returns perrors.ErrInput for a malformed token stream and
// perrors.ErrReference when a net names a cell absent from the cell list.
func Parse(r io.Reader) ([]hypergraph.CellSpec, []hypergraph.NetSpec, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	tok := newTokenizer(sc)

	if err := tok.expect("NumCells"); err != nil {
		return nil, nil, err
	}
	numCells, err := tok.nextCount()
	if err != nil {
		return nil, nil, err
	}

	cells := make([]hypergraph.CellSpec, 0, numCells)
	declared := make(map[string]bool, numCells)
	for i := 0; i < numCells; i++ {
		if err := tok.expect("Cell"); err != nil {
			return nil, nil, err
		}
		nameTok, err := tok.next()
		if err != nil {
			return nil, nil, err
		}
		size, err := tok.nextInt()
		if err != nil {
			return nil, nil, err
		}
		if declared[nameTok] {
			return nil, nil, perrors.New(perrors.CodeInput, fmt.Sprintf("duplicate cell %q", nameTok))
		}
		declared[nameTok] = true
		cells = append(cells, hypergraph.CellSpec{Name: nameTok, Size: size})
	}

	if err := tok.expect("NumNets"); err != nil {
		return nil, nil, err
	}
	numNets, err := tok.nextCount()
	if err != nil {
		return nil, nil, err
	}

	nets := make([]hypergraph.NetSpec, 0, numNets)
	for i := 0; i < numNets; i++ {
		if err := tok.expect("Net"); err != nil {
			return nil, nil, err
		}
		netName, err := tok.next()
		if err != nil {
			return nil, nil, err
		}
		arity, err := tok.nextCount()
		if err != nil {
			return nil, nil, err
		}

		members := make([]string, 0, arity)
		for j := 0; j < arity; j++ {
			if err := tok.expect("Cell"); err != nil {
				return nil, nil, err
			}
			cellName, err := tok.next()
			if err != nil {
				return nil, nil, err
			}
			if !declared[cellName] {
				return nil, nil, perrors.New(perrors.CodeReference,
					fmt.Sprintf("net %q references undeclared cell %q", netName, cellName))
			}
			members = append(members, cellName)
		}
		nets = append(nets, hypergraph.NetSpec{Name: netName, Cells: members})
	}

	return cells, nets, nil
}

// tokenizer is a minimal whitespace-token reader over a line scanner; the
// input format is whitespace-separated tokens, not line-structured, so
// lines are flattened into one token stream.
type tokenizer struct {
	sc     *bufio.Scanner
	fields []string
	pos    int
}

func newTokenizer(sc *bufio.Scanner) *tokenizer {
	return &tokenizer{sc: sc}
}

func (t *tokenizer) next() (string, error) {
	for t.pos >= len(t.fields) {
		if !t.sc.Scan() {
			if err := t.sc.Err(); err != nil {
				return "", perrors.Wrap(perrors.CodeInput, "error reading input", err)
			}
			return "", perrors.New(perrors.CodeInput, "unexpected end of input")
		}
		t.fields = strings.Fields(t.sc.Text())
		t.pos = 0
	}
	tok := t.fields[t.pos]
	t.pos++
	return tok, nil
}

func (t *tokenizer) expect(keyword string) error {
	tok, err := t.next()
	if err != nil {
		return err
	}
	if tok != keyword {
		return perrors.New(perrors.CodeInput, fmt.Sprintf("expected %q, got %q", keyword, tok))
	}
	return nil
}

func (t *tokenizer) nextInt() (int, error) {
	tok, err := t.next()
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(tok)
	if convErr != nil {
		return 0, perrors.New(perrors.CodeInput, fmt.Sprintf("expected integer, got %q", tok))
	}
	return n, nil
}

// nextCount reads an integer that is about to be used as a slice length or
// capacity (NumCells, NumNets, a net's arity) and rejects negative values,
// which would otherwise reach make() and panic instead of surfacing as
// perrors.CodeInput.
func (t *tokenizer) nextCount() (int, error) {
	n, err := t.nextInt()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, perrors.New(perrors.CodeInput, fmt.Sprintf("expected a non-negative count, got %d", n))
	}
	return n, nil
}

// Write emits the output text format (spec.md §6):
//
//	CutSize <value>
//	(blank line)
//	Group<letter> <count>
//	<cellName> x count  (sorted by length asc, then lex asc)
//
// Groups beyond the 26th use the spreadsheet-style letter convention (AA,
// AB, ..., AZ, BA, ...), resolving spec.md's open question on K > 26.
func Write(w io.Writer, cutSize int, groups [][]string) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "CutSize %d\n", cutSize); err != nil {
		return err
	}

	for g, cells := range groups {
		sorted := append([]string(nil), cells...)
		sort.Slice(sorted, func(i, j int) bool {
			if len(sorted[i]) != len(sorted[j]) {
				return len(sorted[i]) < len(sorted[j])
			}
			return sorted[i] < sorted[j]
		})

		if _, err := fmt.Fprintf(bw, "\nGroup%s %d\n", groupLetter(g), len(sorted)); err != nil {
			return err
		}
		for _, c := range sorted {
			if _, err := fmt.Fprintln(bw, c); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// groupLetter encodes a zero-based group index as a spreadsheet-style
// column label: 0->A, 1->B, ..., 25->Z, 26->AA, 27->AB, ...
func groupLetter(index int) string {
	var buf []byte
	n := index
	for {
		buf = append([]byte{byte('A' + n%26)}, buf...)
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return string(buf)
}
