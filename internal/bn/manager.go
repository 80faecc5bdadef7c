package bn

import (
	"fmt"

	"github.com/probflow/bayesnet/internal/cpd"
	"github.com/probflow/bayesnet/internal/dataset"
	"github.com/probflow/bayesnet/internal/topology"
)

// Manager owns the network's nodes and is the sole mutation entry point.
// It enforces acyclicity before committing any edge change, rebuilds the
// CPDs of nodes whose parent set changed, and keeps the cached topological
// order current after every structural change.
//
// Every public mutation is atomic: replacement CPDs are built from the
// hypothetical parent sets before any structure is touched, so a failure
// leaves the graph, the CPDs, and the order exactly as they were.
//
// A Manager is not safe for concurrent use. Callers that share one instance
// across goroutines must hold one exclusive lock around every call,
// including the validation predicates, which mutate and roll back.
type Manager struct {
	attrs *dataset.Set
	nodes map[string]*Node
	order []*Node
	obs   Observer
}

// New creates an empty Manager. A nil observer disables notifications.
func New(obs Observer) *Manager {
	if obs == nil {
		obs = NopObserver{}
	}
	return &Manager{
		attrs: dataset.NewSet(),
		nodes: make(map[string]*Node),
		obs:   obs,
	}
}

// AddNode registers a new parentless node for attr, recomputes the order,
// and builds the node's marginal CPD from ds. Fails with
// ErrDuplicateAttribute if the attribute already has a node.
func (m *Manager) AddNode(attr *dataset.Attribute, ds *dataset.DataSet, laplace int) (*Node, error) {
	if _, ok := m.nodes[attr.Name()]; ok {
		return nil, fmt.Errorf("%s: %w", attr.Name(), ErrDuplicateAttribute)
	}

	n := newNode(attr)
	tree, err := cpd.Build(ds, []*dataset.Attribute{attr}, laplace)
	if err != nil {
		return nil, fmt.Errorf("add node %s: %w", attr.Name(), err)
	}
	n.setCPD(tree)

	m.attrs.Add(attr)
	m.nodes[attr.Name()] = n
	m.order = append(m.order, n)
	m.obs.NodeAdded(n)
	m.obs.CPDRebuilt(n)
	m.resort()
	return n, nil
}

// Node returns the node registered for the named attribute, or
// ErrMissingNode.
func (m *Manager) Node(name string) (*Node, error) {
	n, ok := m.nodes[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrMissingNode)
	}
	return n, nil
}

// AttributeSet returns the registry of attributes represented by nodes.
// Callers must treat it as read-only.
func (m *Manager) AttributeSet() *dataset.Set { return m.attrs }

// Attributes returns all attributes represented by nodes.
func (m *Manager) Attributes() []*dataset.Attribute { return m.attrs.Attributes() }

// NumNodes returns the number of nodes in the network.
func (m *Manager) NumNodes() int { return len(m.order) }

// TopologicalOrder returns the nodes sorted topologically: every parent
// precedes all of its children. The order is recomputed after every
// structural change and is authoritative for downstream consumers.
func (m *Manager) TopologicalOrder() []*Node {
	out := make([]*Node, len(m.order))
	copy(out, m.order)
	return out
}

// EdgeExists reports whether parent→child is present symmetrically in both
// endpoints' relation sets. One-sided bookkeeping would be a bug, so both
// sides are consulted rather than a single lookup.
func (m *Manager) EdgeExists(parent, child *Node) bool {
	return parent.HasChild(child) && child.HasParent(parent)
}

// IsValidEdge reports whether adding parent→child keeps the graph acyclic.
// The edge is attached speculatively, checked, and detached again; the
// committed state is unchanged on return. Not safe to interleave with any
// other call on the same Manager.
func (m *Manager) IsValidEdge(parent, child *Node) bool {
	if m.EdgeExists(parent, child) {
		// Already committed, and committed state is always acyclic.
		return true
	}
	attach(parent, child)
	cyclic := m.adjacency().HasCycle()
	detach(parent, child)
	return !cyclic
}

// IsValidReverseEdge reports whether reversing parent→child to child→parent
// keeps the graph acyclic. If parent→child does not exist this is the same
// as IsValidEdge(child, parent). The graph is restored exactly, including
// relation ordering, on both outcomes.
func (m *Manager) IsValidReverseEdge(parent, child *Node) bool {
	if !m.EdgeExists(parent, child) {
		return m.IsValidEdge(child, parent)
	}

	saved := snapshotRelations(parent, child)
	detach(parent, child)
	attach(child, parent)
	cyclic := m.adjacency().HasCycle()
	saved.restore(parent, child)
	return !cyclic
}

// CreateEdge commits the edge parent→child, rebuilds the child's CPD (its
// parent set changed), and recomputes the order. Fails with ErrCycle if the
// edge would make the graph cyclic and ErrDuplicateEdge if it already
// exists; both leave the graph untouched.
func (m *Manager) CreateEdge(parent, child *Node, ds *dataset.DataSet, laplace int) error {
	if err := m.member(parent, child); err != nil {
		return err
	}
	if !m.IsValidEdge(parent, child) {
		return fmt.Errorf("%s -> %s: %w", parent.Name(), child.Name(), ErrCycle)
	}
	if m.EdgeExists(parent, child) {
		return fmt.Errorf("%s -> %s: %w", parent.Name(), child.Name(), ErrDuplicateEdge)
	}

	tree, err := m.buildTree(child, append(child.Parents(), parent), ds, laplace)
	if err != nil {
		return err
	}

	attach(parent, child)
	child.setCPD(tree)
	m.obs.EdgeCreated(parent, child)
	m.obs.CPDRebuilt(child)
	m.resort()
	return nil
}

// RemoveEdge detaches parent→child. Removal cannot introduce a cycle, so no
// validity check is needed. A non-existent edge is a structural no-op, but
// the child's CPD is still rebuilt and the order recomputed; callers must
// not rely on short-circuiting.
func (m *Manager) RemoveEdge(parent, child *Node, ds *dataset.DataSet, laplace int) error {
	if err := m.member(parent, child); err != nil {
		return err
	}

	parents, _ := remove(child.Parents(), parent)
	tree, err := m.buildTree(child, parents, ds, laplace)
	if err != nil {
		return err
	}

	if m.EdgeExists(parent, child) {
		detach(parent, child)
		m.obs.EdgeRemoved(parent, child)
	}
	child.setCPD(tree)
	m.obs.CPDRebuilt(child)
	m.resort()
	return nil
}

// ReverseEdge replaces parent→child with child→parent, rebuilds both
// endpoints' CPDs (both parent sets changed), and recomputes the order.
// Fails with ErrInvalidRelation if the edge does not exist and ErrCycle if
// the reversed orientation would be cyclic; both leave the graph untouched.
func (m *Manager) ReverseEdge(parent, child *Node, ds *dataset.DataSet, laplace int) error {
	if err := m.member(parent, child); err != nil {
		return err
	}
	if !m.EdgeExists(parent, child) {
		return fmt.Errorf("%s -> %s: %w", parent.Name(), child.Name(), ErrInvalidRelation)
	}
	if !m.IsValidReverseEdge(parent, child) {
		return fmt.Errorf("%s -> %s reversed: %w", parent.Name(), child.Name(), ErrCycle)
	}

	childParents, _ := remove(child.Parents(), parent)
	childTree, err := m.buildTree(child, childParents, ds, laplace)
	if err != nil {
		return err
	}
	parentTree, err := m.buildTree(parent, append(parent.Parents(), child), ds, laplace)
	if err != nil {
		return err
	}

	detach(parent, child)
	attach(child, parent)
	child.setCPD(childTree)
	parent.setCPD(parentTree)
	m.obs.EdgeReversed(parent, child)
	m.obs.CPDRebuilt(child)
	m.obs.CPDRebuilt(parent)
	m.resort()
	return nil
}

// RebuildCPD rebuilds a node's CPD from its current parent set: the parent
// attributes in parent-set order followed by the node's own attribute. This
// is the sole writer of a node's CPD.
func (m *Manager) RebuildCPD(n *Node, ds *dataset.DataSet, laplace int) error {
	if err := m.member(n); err != nil {
		return err
	}
	tree, err := m.buildTree(n, n.parents, ds, laplace)
	if err != nil {
		return err
	}
	n.setCPD(tree)
	m.obs.CPDRebuilt(n)
	return nil
}

// buildTree builds the replacement CPD for n against a hypothetical parent
// list, without touching n.
func (m *Manager) buildTree(n *Node, parents []*Node, ds *dataset.DataSet, laplace int) (*cpd.Tree, error) {
	attrs := make([]*dataset.Attribute, 0, len(parents)+1)
	for _, p := range parents {
		attrs = append(attrs, p.Attribute())
	}
	attrs = append(attrs, n.Attribute())

	tree, err := cpd.Build(ds, attrs, laplace)
	if err != nil {
		return nil, fmt.Errorf("build cpd for %s: %w", n.Name(), err)
	}
	return tree, nil
}

// member verifies that each node is the one currently registered for its
// attribute; anything else is reported as ErrMissingNode.
func (m *Manager) member(nodes ...*Node) error {
	for _, n := range nodes {
		if n == nil {
			return ErrMissingNode
		}
		if m.nodes[n.Name()] != n {
			return fmt.Errorf("%s: %w", n.Name(), ErrMissingNode)
		}
	}
	return nil
}

// adjacency converts the node collection to an N×N matrix: cell (i,j) set
// iff node i is a parent of node j. Index assignment follows the current
// order slice and is stable for the duration of one conversion.
func (m *Manager) adjacency() topology.Matrix {
	idx := make(map[*Node]int, len(m.order))
	for i, n := range m.order {
		idx[n] = i
	}
	mat := topology.NewMatrix(len(m.order))
	for i, n := range m.order {
		for _, c := range n.children {
			mat[i][idx[c]] = true
		}
	}
	return mat
}

// resort recomputes the cached topological order. It is called after every
// structural change, always on a graph already validated acyclic; a sort
// failure here means an invariant was broken upstream, which is a bug.
func (m *Manager) resort() {
	perm, err := m.adjacency().Sort()
	if err != nil {
		panic(fmt.Sprintf("bn: committed graph is cyclic: %v", err))
	}
	sorted := make([]*Node, len(perm))
	for i, p := range perm {
		sorted[i] = m.order[p]
	}
	m.order = sorted
	m.obs.OrderRecomputed(m.TopologicalOrder())
}

// attach and detach are the paired edge primitives every mutation and
// speculative check goes through. detach ignores a missing relation; the
// callers have already decided the edge's existence matters or not.
func attach(parent, child *Node) {
	parent.addChild(child)
	child.addParent(parent)
}

func detach(parent, child *Node) {
	_ = parent.removeChild(child)
	_ = child.removeParent(parent)
}

// relSnapshot captures both endpoints' relation slices so a speculative
// reverse can restore them exactly, preserving insertion order.
type relSnapshot struct {
	parentParents  []*Node
	parentChildren []*Node
	childParents   []*Node
	childChildren  []*Node
}

func snapshotRelations(parent, child *Node) relSnapshot {
	return relSnapshot{
		parentParents:  parent.Parents(),
		parentChildren: parent.Children(),
		childParents:   child.Parents(),
		childChildren:  child.Children(),
	}
}

func (s relSnapshot) restore(parent, child *Node) {
	parent.parents = s.parentParents
	parent.children = s.parentChildren
	child.parents = s.childParents
	child.children = s.childChildren
}
