// Package cpd builds conditional probability distribution trees. A tree
// estimates P(target | parents) from a dataset: each internal level splits
// on one parent attribute's values, and leaves hold Laplace-smoothed
// probabilities over the target's domain.
package cpd

import (
	"fmt"

	"github.com/probflow/bayesnet/internal/dataset"
)

// Tree is the distribution model for one target attribute. It is immutable
// once built and records the exact attribute list it was estimated from
// (parents in order, target last).
type Tree struct {
	attrs []*dataset.Attribute
	root  *node
}

// node is one level of the tree. Internal nodes split on an attribute's
// values; leaves carry the smoothed target distribution.
type node struct {
	split    *dataset.Attribute
	children map[string]*node
	dist     map[string]float64
	counts   map[string]int
	total    int
}

// Build estimates a tree from data. attrs lists the conditioning attributes
// in order with the target last; laplace is the smoothing count added to
// every cell. All attributes must belong to the dataset's registry.
func Build(ds *dataset.DataSet, attrs []*dataset.Attribute, laplace int) (*Tree, error) {
	if len(attrs) == 0 {
		return nil, fmt.Errorf("cpd: attribute list is empty")
	}
	if laplace < 0 {
		return nil, fmt.Errorf("cpd: laplace count %d is negative", laplace)
	}
	seen := make(map[string]struct{}, len(attrs))
	for _, a := range attrs {
		if !ds.Attributes().Contains(a.Name()) {
			return nil, fmt.Errorf("cpd: attribute %s not in dataset", a.Name())
		}
		if _, dup := seen[a.Name()]; dup {
			return nil, fmt.Errorf("cpd: attribute %s listed twice", a.Name())
		}
		seen[a.Name()] = struct{}{}
	}

	recorded := make([]*dataset.Attribute, len(attrs))
	copy(recorded, attrs)
	return &Tree{
		attrs: recorded,
		root:  grow(ds.Instances(), attrs, laplace),
	}, nil
}

// grow recursively partitions the instances over each conditioning
// attribute's values; the last attribute is the target.
func grow(instances []dataset.Instance, attrs []*dataset.Attribute, laplace int) *node {
	if len(attrs) == 1 {
		return leaf(instances, attrs[0], laplace)
	}

	split := attrs[0]
	n := &node{
		split:    split,
		children: make(map[string]*node, split.Arity()),
	}
	for _, v := range split.Values() {
		var subset []dataset.Instance
		for _, inst := range instances {
			if inst[split.Name()] == v {
				subset = append(subset, inst)
			}
		}
		n.children[v] = grow(subset, attrs[1:], laplace)
	}
	return n
}

// leaf tallies the target values and converts the counts to probabilities
// with Laplace smoothing: (count+k) / (total+k·arity). With k=0 and no
// observations every probability is zero.
func leaf(instances []dataset.Instance, target *dataset.Attribute, laplace int) *node {
	counts := make(map[string]int, target.Arity())
	for _, v := range target.Values() {
		counts[v] = 0
	}
	total := 0
	for _, inst := range instances {
		if v, ok := inst[target.Name()]; ok {
			counts[v]++
			total++
		}
	}

	dist := make(map[string]float64, target.Arity())
	denom := float64(total + laplace*target.Arity())
	for v, c := range counts {
		if denom == 0 {
			dist[v] = 0
			continue
		}
		dist[v] = float64(c+laplace) / denom
	}
	return &node{dist: dist, counts: counts, total: total}
}

// Attributes returns the attribute list the tree was built from: parents in
// order, target last.
func (t *Tree) Attributes() []*dataset.Attribute {
	out := make([]*dataset.Attribute, len(t.attrs))
	copy(out, t.attrs)
	return out
}

// Target returns the attribute whose distribution the tree models.
func (t *Tree) Target() *dataset.Attribute {
	return t.attrs[len(t.attrs)-1]
}

// Prob returns the tree's probability for the instance's target value given
// its parent values. The instance must assign an in-domain value to every
// attribute the tree conditions on.
func (t *Tree) Prob(inst dataset.Instance) (float64, error) {
	n := t.root
	for n.dist == nil {
		v, ok := inst[n.split.Name()]
		if !ok {
			return 0, fmt.Errorf("cpd: instance missing value for %s", n.split.Name())
		}
		child, ok := n.children[v]
		if !ok {
			return 0, fmt.Errorf("cpd: value %q not in domain of %s", v, n.split.Name())
		}
		n = child
	}

	target := t.Target()
	v, ok := inst[target.Name()]
	if !ok {
		return 0, fmt.Errorf("cpd: instance missing value for target %s", target.Name())
	}
	p, ok := n.dist[v]
	if !ok {
		return 0, fmt.Errorf("cpd: value %q not in domain of target %s", v, target.Name())
	}
	return p, nil
}

// Distribution returns the smoothed target distribution reached by the
// given parent assignment.
func (t *Tree) Distribution(parents dataset.Instance) (map[string]float64, error) {
	n := t.root
	for n.dist == nil {
		v, ok := parents[n.split.Name()]
		if !ok {
			return nil, fmt.Errorf("cpd: assignment missing value for %s", n.split.Name())
		}
		child, ok := n.children[v]
		if !ok {
			return nil, fmt.Errorf("cpd: value %q not in domain of %s", v, n.split.Name())
		}
		n = child
	}
	out := make(map[string]float64, len(n.dist))
	for v, p := range n.dist {
		out[v] = p
	}
	return out, nil
}
