// Package export writes tessellation and instancing results to files.
package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/chazu/plantmesh/pkg/kernel"
)

// WriteOBJ writes meshes as Wavefront OBJ objects, one "o" block per
// non-empty mesh, with positions, normals and faces. Indices are 1-based
// and run across the whole file. Unnamed meshes are called "mesh-<i>".
func WriteOBJ(w io.Writer, meshes []*kernel.Mesh) error {
	bw := bufio.NewWriter(w)
	base := 1
	for i, m := range meshes {
		if m == nil || m.IsEmpty() {
			continue
		}
		if err := m.Validate(); err != nil {
			return fmt.Errorf("export: mesh %d: %w", i, err)
		}
		name := m.Name
		if name == "" {
			name = fmt.Sprintf("mesh-%d", i)
		}
		fmt.Fprintf(bw, "o %s\n", name)
		for j := 0; j < len(m.Vertices); j += 3 {
			fmt.Fprintf(bw, "v %g %g %g\n", m.Vertices[j], m.Vertices[j+1], m.Vertices[j+2])
		}
		for j := 0; j < len(m.Normals); j += 3 {
			fmt.Fprintf(bw, "vn %g %g %g\n", m.Normals[j], m.Normals[j+1], m.Normals[j+2])
		}
		for j := 0; j < len(m.Indices); j += 3 {
			a, b, c := base+int(m.Indices[j]), base+int(m.Indices[j+1]), base+int(m.Indices[j+2])
			fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
		}
		base += m.VertexCount()
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
