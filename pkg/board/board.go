// Package board implements the bijection between orderable endpoint
// pairs and cells in a square matrix, and encodes a timeline's relations
// as a cell-value grid.
package board

import (
	"github.com/rfielding/chronicle/pkg/endpoint"
	"github.com/rfielding/chronicle/pkg/relation"
)

// Cell values.
const (
	Masked       = -2
	Unclassified = -1
)

// Encoded relation ids.
const (
	EncAfter   = 0
	EncBefore  = 1
	EncEqual   = 2
	EncUnknown = 3
)

func encodeSymbol(s relation.Symbol) int {
	switch s {
	case relation.After:
		return EncAfter
	case relation.Before:
		return EncBefore
	case relation.Equal:
		return EncEqual
	default:
		return EncUnknown
	}
}

// Board is an n x n integer matrix indexed by endpoint position.
type Board struct {
	N     int
	Cells [][]int
}

// Make builds a board from the orderable-pair index and, optionally, a
// set of relations to encode. With no relations every orderable cell is
// Unclassified.
func Make(pi *endpoint.PairIndex, relations []relation.PointRelation) *Board {
	n := pi.N()
	cells := make([][]int, n)
	for i := range cells {
		row := make([]int, n)
		for j := range row {
			row[j] = Masked
		}
		cells[i] = row
	}
	for _, p := range pi.Pairs {
		cells[p.I][p.J] = Unclassified
	}
	for _, r := range relations {
		i, j, ok := pi.IndexOf(r.Source, r.Target)
		if !ok {
			continue
		}
		// IndexOf accepts either order; re-orient so the relation reads
		// source-at-i, target-at-j before encoding.
		rr := r
		nameI, nameJ, _ := pi.NamesAt(i, j)
		if rr.Source != nameI || rr.Target != nameJ {
			rr = rr.Invert()
		}
		cells[i][j] = encodeSymbol(rr.Rel)
	}
	return cells2board(n, cells)
}

func cells2board(n int, cells [][]int) *Board {
	return &Board{N: n, Cells: cells}
}

// AsRows returns the board as a plain [][]int, for JSON encoding.
func (b *Board) AsRows() [][]int { return b.Cells }

// Equal reports whether two boards have identical cell contents.
func (b *Board) Equal(o *Board) bool {
	if b.N != o.N {
		return false
	}
	for i := 0; i < b.N; i++ {
		for j := 0; j < b.N; j++ {
			if b.Cells[i][j] != o.Cells[i][j] {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy.
func (b *Board) Clone() *Board {
	cells := make([][]int, b.N)
	for i, row := range b.Cells {
		cells[i] = append([]int(nil), row...)
	}
	return &Board{N: b.N, Cells: cells}
}

// CountUnclassified returns the number of orderable cells still
// Unclassified.
func (b *Board) CountUnclassified() int {
	n := 0
	for _, row := range b.Cells {
		for _, v := range row {
			if v == Unclassified {
				n++
			}
		}
	}
	return n
}
