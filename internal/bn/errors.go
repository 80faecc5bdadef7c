package bn

import "errors"

// Sentinel errors for every rejectable structural operation. All of them are
// recoverable: a rejected operation is a true no-op on graph state. Match
// with errors.Is; call sites wrap them with the attributes involved.
var (
	// ErrDuplicateAttribute reports an AddNode for an attribute that
	// already has a node.
	ErrDuplicateAttribute = errors.New("attribute already has a node")

	// ErrDuplicateEdge reports a CreateEdge for a relation that already
	// exists.
	ErrDuplicateEdge = errors.New("edge already exists")

	// ErrCycle reports an edge change that would make the graph cyclic.
	ErrCycle = errors.New("edge would create a cycle")

	// ErrInvalidRelation reports an edge primitive invoked on a relation
	// that does not exist.
	ErrInvalidRelation = errors.New("relation does not exist")

	// ErrMissingNode reports an operation referencing an attribute with no
	// registered node.
	ErrMissingNode = errors.New("no node registered for attribute")
)
