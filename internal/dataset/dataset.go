// Package dataset holds the observed data the network's probability models
// are estimated from: attribute declarations (nominal variables with closed
// value domains) and complete instances over those attributes.
package dataset

// Instance is one observed assignment: attribute name → value.
type Instance map[string]string

// DataSet is an immutable collection of instances over a fixed attribute set.
// Hot-reload creates a new DataSet; consumers never see partial state.
type DataSet struct {
	attrs     *Set
	instances []Instance
}

// New creates a DataSet. The instances are assumed to be validated against
// the attribute set (every declared attribute present, every value in its
// domain); the loader enforces this.
func New(attrs *Set, instances []Instance) *DataSet {
	return &DataSet{attrs: attrs, instances: instances}
}

// Attributes returns the attribute registry the instances are defined over.
func (d *DataSet) Attributes() *Set { return d.attrs }

// Instances returns the observed instances.
func (d *DataSet) Instances() []Instance { return d.instances }

// Len returns the number of instances.
func (d *DataSet) Len() int { return len(d.instances) }
