// Package bn maintains the structural model of a Bayesian network: nodes
// bound to dataset attributes, directed parent→child edges under a strict
// acyclicity invariant, per-node conditional probability distributions, and
// a cached topological ordering. The Manager is the only mutation entry
// point; Node's relation primitives do no validation of their own.
package bn

import (
	"fmt"

	"github.com/probflow/bayesnet/internal/cpd"
	"github.com/probflow/bayesnet/internal/dataset"
)

// Node is one network variable. Its attribute is fixed at creation; the
// parent and child sets are insertion-ordered and kept mutually consistent
// by the Manager (p ∈ n.parents ⇔ n ∈ p.children). The CPD is replaced
// wholesale on rebuild, never partially mutated.
type Node struct {
	attr     *dataset.Attribute
	parents  []*Node
	children []*Node
	cpd      *cpd.Tree
}

func newNode(attr *dataset.Attribute) *Node {
	return &Node{attr: attr}
}

// Attribute returns the attribute this node represents.
func (n *Node) Attribute() *dataset.Attribute { return n.attr }

// Name returns the node's attribute name.
func (n *Node) Name() string { return n.attr.Name() }

// Parents returns the node's parents in insertion order.
func (n *Node) Parents() []*Node {
	out := make([]*Node, len(n.parents))
	copy(out, n.parents)
	return out
}

// Children returns the node's children in insertion order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// CPD returns the node's current distribution model.
func (n *Node) CPD() *cpd.Tree { return n.cpd }

// HasParent reports whether p is a parent of n.
func (n *Node) HasParent(p *Node) bool { return contains(n.parents, p) }

// HasChild reports whether c is a child of n.
func (n *Node) HasChild(c *Node) bool { return contains(n.children, c) }

// The relation primitives below are structural only: no acyclicity checks,
// no CPD rebuilds. Adding a relation that is already present is a no-op so
// the Manager's speculative attach/detach sequences stay symmetric; removing
// a relation that is not present reports ErrInvalidRelation.

func (n *Node) addParent(p *Node) {
	if !contains(n.parents, p) {
		n.parents = append(n.parents, p)
	}
}

func (n *Node) addChild(c *Node) {
	if !contains(n.children, c) {
		n.children = append(n.children, c)
	}
}

func (n *Node) removeParent(p *Node) error {
	rest, ok := remove(n.parents, p)
	if !ok {
		return fmt.Errorf("%s is not a parent of %s: %w", p.Name(), n.Name(), ErrInvalidRelation)
	}
	n.parents = rest
	return nil
}

func (n *Node) removeChild(c *Node) error {
	rest, ok := remove(n.children, c)
	if !ok {
		return fmt.Errorf("%s is not a child of %s: %w", c.Name(), n.Name(), ErrInvalidRelation)
	}
	n.children = rest
	return nil
}

func (n *Node) setCPD(t *cpd.Tree) { n.cpd = t }

func contains(nodes []*Node, target *Node) bool {
	for _, n := range nodes {
		if n == target {
			return true
		}
	}
	return false
}

// remove deletes target from nodes preserving order, so later CPD attribute
// lists keep the surviving parents in their original positions.
func remove(nodes []*Node, target *Node) ([]*Node, bool) {
	for i, n := range nodes {
		if n == target {
			return append(nodes[:i:i], nodes[i+1:]...), true
		}
	}
	return nodes, false
}
