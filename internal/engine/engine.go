// Package engine wraps the network core in the single-writer discipline the
// core requires: one exclusive lock around every mutating and validating
// call, shared dataset access, metrics, and the full-network CPD refresh
// that follows a dataset reload.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/probflow/bayesnet/internal/bn"
	"github.com/probflow/bayesnet/internal/config"
	"github.com/probflow/bayesnet/internal/dataset"
	"github.com/probflow/bayesnet/internal/metrics"
)

// ErrUnknownAttribute reports an AddNode for an attribute the dataset does
// not declare.
var ErrUnknownAttribute = errors.New("engine: attribute not present in dataset")

// NodeView is the external representation of one node.
type NodeView struct {
	Attribute     string   `json:"attribute"`
	Parents       []string `json:"parents"`
	Children      []string `json:"children"`
	CPDAttributes []string `json:"cpd_attributes"`
}

// AttributeView is the external representation of one attribute.
type AttributeView struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Service owns a Manager and serializes all access to it. The Manager has
// no internal locking; the validation predicates mutate and roll back, so
// they are guarded exactly like the mutations.
type Service struct {
	mu      sync.Mutex
	mgr     *bn.Manager
	loader  *dataset.Loader
	laplace int
	workers int
}

// New creates a Service around a fresh Manager. extra observers are chained
// after the built-in metrics observer.
func New(loader *dataset.Loader, conf config.NetworkConf, extra ...bn.Observer) *Service {
	obs := append([]bn.Observer{metricsObserver{}}, extra...)
	return &Service{
		mgr:     bn.New(bn.MultiObserver(obs...)),
		loader:  loader,
		laplace: conf.LaplaceCount,
		workers: conf.RebuildWorkers,
	}
}

// AddNode registers a node for the named dataset attribute.
func (s *Service) AddNode(name string) (NodeView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds := s.loader.Data()
	attr, ok := ds.Attributes().ByName(name)
	if !ok {
		return NodeView{}, fmt.Errorf("%s: %w", name, ErrUnknownAttribute)
	}

	start := time.Now()
	n, err := s.mgr.AddNode(attr, ds, s.laplace)
	if err != nil {
		recordRejection(err)
		return NodeView{}, err
	}
	metrics.MutationDuration.Observe(float64(time.Since(start).Milliseconds()))
	s.updateGauges()
	return viewOf(n), nil
}

// CreateEdge commits parent→child.
func (s *Service) CreateEdge(parent, child string) error {
	return s.mutateEdge(parent, child, s.mgr.CreateEdge)
}

// RemoveEdge detaches parent→child.
func (s *Service) RemoveEdge(parent, child string) error {
	return s.mutateEdge(parent, child, s.mgr.RemoveEdge)
}

// ReverseEdge replaces parent→child with child→parent.
func (s *Service) ReverseEdge(parent, child string) error {
	return s.mutateEdge(parent, child, s.mgr.ReverseEdge)
}

func (s *Service) mutateEdge(parent, child string, op func(p, c *bn.Node, ds *dataset.DataSet, laplace int) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, c, err := s.resolve(parent, child)
	if err != nil {
		recordRejection(err)
		return err
	}

	start := time.Now()
	if err := op(p, c, s.loader.Data(), s.laplace); err != nil {
		recordRejection(err)
		return err
	}
	metrics.MutationDuration.Observe(float64(time.Since(start).Milliseconds()))
	s.updateGauges()
	return nil
}

// ValidateEdge dry-runs an edge addition (or reversal) without committing
// anything.
func (s *Service) ValidateEdge(parent, child string, reverse bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, c, err := s.resolve(parent, child)
	if err != nil {
		return false, err
	}
	if reverse {
		return s.mgr.IsValidReverseEdge(p, c), nil
	}
	return s.mgr.IsValidEdge(p, c), nil
}

// EdgeExists reports whether parent→child is committed.
func (s *Service) EdgeExists(parent, child string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, c, err := s.resolve(parent, child)
	if err != nil {
		return false, err
	}
	return s.mgr.EdgeExists(p, c), nil
}

// Nodes returns every node in topological order.
func (s *Service) Nodes() []NodeView {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := s.mgr.TopologicalOrder()
	out := make([]NodeView, len(order))
	for i, n := range order {
		out[i] = viewOf(n)
	}
	return out
}

// Order returns the attribute names in topological order.
func (s *Service) Order() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := s.mgr.TopologicalOrder()
	out := make([]string, len(order))
	for i, n := range order {
		out[i] = n.Name()
	}
	return out
}

// Attributes returns the attributes represented by nodes.
func (s *Service) Attributes() []AttributeView {
	s.mu.Lock()
	defer s.mu.Unlock()

	attrs := s.mgr.Attributes()
	out := make([]AttributeView, len(attrs))
	for i, a := range attrs {
		out[i] = AttributeView{Name: a.Name(), Values: a.Values()}
	}
	return out
}

// NumNodes returns the current node count.
func (s *Service) NumNodes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mgr.NumNodes()
}

// RefreshCPDs rebuilds every node's CPD against the current dataset,
// running the independent per-node rebuilds on a bounded worker pool.
// Structure is untouched, so the cached order stays valid. Returns the
// number of nodes refreshed.
func (s *Service) RefreshCPDs() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds := s.loader.Data()
	nodes := s.mgr.TopologicalOrder()
	err := rebuildAll(s.workers, nodes, func(n *bn.Node) error {
		return s.mgr.RebuildCPD(n, ds, s.laplace)
	})
	if err != nil {
		return 0, fmt.Errorf("cpd refresh: %w", err)
	}
	metrics.DatasetReloads.Inc()
	return len(nodes), nil
}

// resolve maps attribute names to their registered nodes.
func (s *Service) resolve(parent, child string) (*bn.Node, *bn.Node, error) {
	p, err := s.mgr.Node(parent)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.mgr.Node(child)
	if err != nil {
		return nil, nil, err
	}
	return p, c, nil
}

func (s *Service) updateGauges() {
	metrics.NetworkNodes.Set(float64(s.mgr.NumNodes()))
	edges := 0
	for _, n := range s.mgr.TopologicalOrder() {
		edges += len(n.Children())
	}
	metrics.NetworkEdges.Set(float64(edges))
}

func viewOf(n *bn.Node) NodeView {
	v := NodeView{
		Attribute: n.Name(),
		Parents:   names(n.Parents()),
		Children:  names(n.Children()),
	}
	if t := n.CPD(); t != nil {
		for _, a := range t.Attributes() {
			v.CPDAttributes = append(v.CPDAttributes, a.Name())
		}
	}
	return v
}

func names(nodes []*bn.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name()
	}
	return out
}

func recordRejection(err error) {
	var reason string
	switch {
	case errors.Is(err, bn.ErrCycle):
		reason = "cycle"
	case errors.Is(err, bn.ErrDuplicateEdge):
		reason = "duplicate_edge"
	case errors.Is(err, bn.ErrDuplicateAttribute):
		reason = "duplicate_attribute"
	case errors.Is(err, bn.ErrInvalidRelation):
		reason = "invalid_relation"
	case errors.Is(err, bn.ErrMissingNode), errors.Is(err, ErrUnknownAttribute):
		reason = "missing_node"
	default:
		reason = "other"
	}
	metrics.MutationsRejected.WithLabelValues(reason).Inc()
}

// metricsObserver mirrors structural events into Prometheus counters.
type metricsObserver struct{}

func (metricsObserver) NodeAdded(*bn.Node)              { metrics.NodesAdded.Inc() }
func (metricsObserver) EdgeCreated(*bn.Node, *bn.Node)  { metrics.EdgesCreated.Inc() }
func (metricsObserver) EdgeRemoved(*bn.Node, *bn.Node)  { metrics.EdgesRemoved.Inc() }
func (metricsObserver) EdgeReversed(*bn.Node, *bn.Node) { metrics.EdgesReversed.Inc() }
func (metricsObserver) CPDRebuilt(*bn.Node)             { metrics.CPDRebuilds.Inc() }
func (metricsObserver) OrderRecomputed([]*bn.Node)      { metrics.OrderRecomputations.Inc() }
