package tessellate

import (
	"fmt"

	"github.com/chazu/plantmesh/pkg/kernel"
	"github.com/chazu/plantmesh/pkg/primitive"
)

// tessellateBox emits two triangles per visible face of a box, in local
// space. Faces on an axis shorter than FaceEpsilon are dropped, as are
// faces hidden by a rectangular connection.
func (t *Tessellator) tessellateBox(p *primitive.Primitive, b *primitive.Box) (*kernel.Mesh, error) {
	lengths := [3]float64{b.LengthX, b.LengthY, b.LengthZ}
	var faces [6]bool
	for i := range faces {
		faces[i] = t.opts.FaceEpsilon <= lengths[i/2]
	}

	for i := range faces {
		conn := p.Connections[i]
		if !faces[i] || conn == nil || conn.Flags != primitive.HasRectangularSide {
			continue
		}
		covered, err := t.Covered(p, conn)
		if err != nil {
			return nil, fmt.Errorf("tessellate: box %s face %d: %w", p.Name, i, err)
		}
		if covered {
			faces[i] = false
		}
	}

	n := 0
	for _, f := range faces {
		if f {
			n++
		}
	}

	mesh := &kernel.Mesh{
		Vertices: make([]float32, 3*4*n),
		Normals:  make([]float32, 3*4*n),
		Indices:  make([]uint32, 3*2*n),
		Name:     p.Name,
	}

	iv, ip, o := 0, 0, uint32(0)
	for i, f := range faces {
		if !f {
			continue
		}
		corners := boxFace(b, i)
		normal := boxNormals[i]
		for _, c := range corners {
			mesh.Vertices[iv], mesh.Vertices[iv+1], mesh.Vertices[iv+2] = float32(c[0]), float32(c[1]), float32(c[2])
			mesh.Normals[iv], mesh.Normals[iv+1], mesh.Normals[iv+2] = float32(normal[0]), float32(normal[1]), float32(normal[2])
			iv += 3
		}
		copy(mesh.Indices[ip:], []uint32{o, o + 1, o + 2, o + 2, o + 3, o})
		ip += 6
		o += 4
	}

	if iv != 3*4*n || ip != 3*2*n || int(o) != 4*n {
		panic(fmt.Sprintf("tessellate: box %s buffer counters %d/%d/%d, want %d/%d/%d",
			p.Name, iv, ip, o, 3*4*n, 3*2*n, 4*n))
	}
	return mesh, nil
}
