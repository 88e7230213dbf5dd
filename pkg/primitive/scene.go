package primitive

import "fmt"

// Scene owns the primitives of one model and the connections between them.
type Scene struct {
	Primitives  []*Primitive  `json:"primitives"`
	Connections []*Connection `json:"-"`
	nameIndex   map[string]*Primitive
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{nameIndex: make(map[string]*Primitive)}
}

// Add appends a primitive. Unnamed primitives get "<kind>-<index>".
// It does not check for duplicate names; Validate reports them.
func (s *Scene) Add(p *Primitive) {
	if p.Name == "" {
		p.Name = fmt.Sprintf("%s-%d", p.Kind(), len(s.Primitives))
	}
	s.Primitives = append(s.Primitives, p)
	if s.nameIndex == nil {
		s.nameIndex = make(map[string]*Primitive)
	}
	if _, ok := s.nameIndex[p.Name]; !ok {
		s.nameIndex[p.Name] = p
	}
}

// Lookup returns the first primitive added under name, or nil.
func (s *Scene) Lookup(name string) *Primitive {
	return s.nameIndex[name]
}

// MustLookup returns the primitive with the given name, or panics.
func (s *Scene) MustLookup(name string) *Primitive {
	p := s.Lookup(name)
	if p == nil {
		panic(fmt.Sprintf("primitive: no primitive named %q", name))
	}
	return p
}

// Connect joins side sa of a to side sb of b. Both side slots must exist
// for the primitives' kinds and be free.
func (s *Scene) Connect(a *Primitive, sa int, b *Primitive, sb int, flags ConnectionFlags) (*Connection, error) {
	if a == b {
		return nil, fmt.Errorf("primitive: cannot connect %s to itself", a.Name)
	}
	if err := checkSlot(a, sa); err != nil {
		return nil, err
	}
	if err := checkSlot(b, sb); err != nil {
		return nil, err
	}
	c := &Connection{A: a, B: b, SideA: sa, SideB: sb, Flags: flags}
	a.Connections[sa] = c
	b.Connections[sb] = c
	s.Connections = append(s.Connections, c)
	return c, nil
}

func checkSlot(p *Primitive, side int) error {
	if side < 0 || side >= p.Kind().SideCount() {
		return fmt.Errorf("primitive: %s %s has no side %d", p.Kind(), p.Name, side)
	}
	if p.Connections[side] != nil {
		return fmt.Errorf("primitive: side %d of %s is already connected", side, p.Name)
	}
	return nil
}

// FacetGroups returns the facet-group shapes of the scene in primitive order.
func (s *Scene) FacetGroups() []*FacetGroup {
	var out []*FacetGroup
	for _, p := range s.Primitives {
		if fg, ok := p.Shape.(*FacetGroup); ok {
			out = append(out, fg)
		}
	}
	return out
}

// Len returns the number of primitives.
func (s *Scene) Len() int {
	return len(s.Primitives)
}
