package dataset

// Attribute is one nominal random variable: a name plus the closed set of
// values it can take. The network core treats attributes as opaque
// identities compared by name.
type Attribute struct {
	name   string
	values []string
	index  map[string]int
}

// NewAttribute creates an attribute with the given nominal value domain.
func NewAttribute(name string, values []string) *Attribute {
	idx := make(map[string]int, len(values))
	for i, v := range values {
		idx[v] = i
	}
	return &Attribute{name: name, values: values, index: idx}
}

// Name returns the attribute's identity.
func (a *Attribute) Name() string { return a.name }

// Values returns the attribute's value domain in declaration order.
func (a *Attribute) Values() []string {
	out := make([]string, len(a.values))
	copy(out, a.values)
	return out
}

// Arity returns the size of the value domain.
func (a *Attribute) Arity() int { return len(a.values) }

// HasValue reports whether v is in the attribute's domain.
func (a *Attribute) HasValue(v string) bool {
	_, ok := a.index[v]
	return ok
}

// Set is an ordered registry of attributes, unique by name.
// Reads are safe to share; Add should only be called by the owner.
type Set struct {
	byName  map[string]*Attribute
	ordered []*Attribute
}

// NewSet creates an empty registry.
func NewSet() *Set {
	return &Set{byName: make(map[string]*Attribute)}
}

// Add registers an attribute. Adding a name that is already present is a
// no-op; the first registration wins.
func (s *Set) Add(a *Attribute) {
	if _, ok := s.byName[a.name]; ok {
		return
	}
	s.byName[a.name] = a
	s.ordered = append(s.ordered, a)
}

// ByName returns the attribute registered under name.
func (s *Set) ByName(name string) (*Attribute, bool) {
	a, ok := s.byName[name]
	return a, ok
}

// Contains reports whether name is registered.
func (s *Set) Contains(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Attributes returns all registered attributes in insertion order.
func (s *Set) Attributes() []*Attribute {
	out := make([]*Attribute, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// Len returns the number of registered attributes.
func (s *Set) Len() int { return len(s.ordered) }
