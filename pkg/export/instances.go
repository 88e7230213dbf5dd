package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/plantmesh/pkg/instancing"
	"github.com/chazu/plantmesh/pkg/primitive"
)

// InstanceMap is the serialised form of an instancing result, keyed by
// primitive name.
type InstanceMap struct {
	Instances []InstanceEntry `json:"instances"`
	Templates []TemplateEntry `json:"templates"`
}

// InstanceEntry places one facet-group primitive as a copy of a template.
// Matrix is column-major and maps template space to the primitive's
// local space.
type InstanceEntry struct {
	Primitive string     `json:"primitive"`
	Template  string     `json:"template"`
	Matrix    mgl64.Mat4 `json:"matrix"`
}

// TemplateEntry counts the primitives sharing a template, itself included.
type TemplateEntry struct {
	Primitive string `json:"primitive"`
	Uses      int    `json:"uses"`
}

// NewInstanceMap names the groups of r after the scene primitives holding
// them. Entries follow scene order; groups absent from r are left out.
func NewInstanceMap(s *primitive.Scene, r *instancing.Result) InstanceMap {
	names := make(map[*primitive.FacetGroup]string)
	for _, p := range s.Primitives {
		if fg, ok := p.Shape.(*primitive.FacetGroup); ok {
			if _, dup := names[fg]; !dup {
				names[fg] = p.Name
			}
		}
	}

	m := InstanceMap{Instances: []InstanceEntry{}, Templates: []TemplateEntry{}}
	for _, p := range s.Primitives {
		fg, ok := p.Shape.(*primitive.FacetGroup)
		if !ok {
			continue
		}
		inst, ok := r.Instances[fg]
		if !ok {
			continue
		}
		m.Instances = append(m.Instances, InstanceEntry{
			Primitive: p.Name,
			Template:  names[inst.Template],
			Matrix:    inst.Transform,
		})
		if uses, ok := r.Templates[fg]; ok && names[fg] == p.Name {
			m.Templates = append(m.Templates, TemplateEntry{Primitive: p.Name, Uses: uses})
		}
	}
	return m
}

// WriteInstanceMap writes m as indented JSON.
func WriteInstanceMap(w io.Writer, m InstanceMap) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
