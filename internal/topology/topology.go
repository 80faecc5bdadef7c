// Package topology provides the adjacency-matrix algorithms the network
// core delegates to: exact cycle detection and topological sorting.
package topology

import "errors"

// ErrCyclic is returned by Sort when the graph contains a directed cycle.
var ErrCyclic = errors.New("topology: graph contains a cycle")

// Matrix is a square adjacency matrix. Matrix[i][j] reports a directed
// edge i → j. A nonzero diagonal cell is a self-loop.
type Matrix [][]bool

// NewMatrix allocates an n×n matrix with no edges.
func NewMatrix(n int) Matrix {
	m := make(Matrix, n)
	for i := range m {
		m[i] = make([]bool, n)
	}
	return m
}

// Len returns the number of nodes.
func (m Matrix) Len() int { return len(m) }

// DFS colors. An edge into a gray node is a back-edge, i.e. a cycle.
const (
	white = iota
	gray
	black
)

// HasCycle reports whether the graph contains a directed cycle. Detection is
// exact: a self-loop is a cycle, and the empty and single-node graphs are
// cycle-free.
func (m Matrix) HasCycle() bool {
	color := make([]int, len(m))

	var visit func(i int) bool
	visit = func(i int) bool {
		color[i] = gray
		for j, edge := range m[i] {
			if !edge {
				continue
			}
			switch color[j] {
			case gray:
				return true
			case white:
				if visit(j) {
					return true
				}
			}
		}
		color[i] = black
		return false
	}

	for i := range m {
		if color[i] == white && visit(i) {
			return true
		}
	}
	return false
}

// Sort returns a permutation of node indices such that for every edge i→j,
// i precedes j, using Kahn's algorithm. Returns ErrCyclic if the graph is
// not a DAG. The result is deterministic for a given matrix.
func (m Matrix) Sort() ([]int, error) {
	n := len(m)
	indegree := make([]int, n)
	for i := range m {
		for j, edge := range m[i] {
			if edge {
				indegree[j]++
			}
		}
	}

	var ready []int
	for i := n - 1; i >= 0; i-- {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, n)
	for len(ready) > 0 {
		i := ready[len(ready)-1]
		ready = ready[:len(ready)-1]
		order = append(order, i)
		for j := n - 1; j >= 0; j-- {
			if !m[i][j] {
				continue
			}
			indegree[j]--
			if indegree[j] == 0 {
				ready = append(ready, j)
			}
		}
	}

	if len(order) != n {
		return nil, ErrCyclic
	}
	return order, nil
}
