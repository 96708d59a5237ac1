package mesh

import "github.com/go-gl/mathgl/mgl32"

// Layout is a bitset of the vertex attributes a mesh carries and their
// storage width.
type Layout uint32

const (
	Position32 Layout = 1 << iota
	Position16
	Position8
	Normal32
	Normal16
	Normal8
	UV32
	UV16
	UV8
	Color4Floats
	Color32
)

// Has reports whether every bit of f is set.
func (l Layout) Has(f Layout) bool { return l&f == f }

// Triangle holds three indices into the sub-mesh vertex arrays.
type Triangle [3]uint32

// SubMesh is one material's worth of geometry. Normals and Colors are
// mutually exclusive; the other is nil.
type SubMesh struct {
	Positions []mgl32.Vec3
	UVs       []mgl32.Vec2
	Normals   []mgl32.Vec3
	Colors    []mgl32.Vec4
	StripEnds []int // vertex indices that start a new strip
	Triangles []Triangle
	Material  int // texture index within the file's tables
}

// Indices flattens the triangle list.
func (s *SubMesh) Indices() []uint32 {
	out := make([]uint32, 0, len(s.Triangles)*3)
	for _, t := range s.Triangles {
		out = append(out, t[0], t[1], t[2])
	}
	return out
}

// Mesh is the geometry decoded from one scanner record.
type Mesh struct {
	Layout    Layout
	Scale     mgl32.Vec3
	Center    mgl32.Vec3
	SubMeshes []SubMesh
}

// TriangleCount sums the triangles of every sub-mesh.
func (m *Mesh) TriangleCount() int {
	n := 0
	for i := range m.SubMeshes {
		n += len(m.SubMeshes[i].Triangles)
	}
	return n
}
