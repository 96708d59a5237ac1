// Package mesh turns scanner records into indexed triangle meshes.
package mesh

import (
	"encoding/binary"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"dda-extractor/internal/table"
	"dda-extractor/internal/ubr"
	"dda-extractor/internal/vif"
)

const (
	positionStride = 3 * 2
	uvStride       = 2 * 2
	colorStride    = 3

	// Exponent byte at which an axis scale reaches its full 64 units.
	fullScaleExponent = 0x49
	positionUnit      = 4096
	uvUnit            = 256 * 16
)

// Build decodes the mesh located by rec. Map meshes carry vertex colours,
// every other kind carries normals in the same stream.
func Build(c *ubr.Container, kind ubr.Kind, rec vif.Record, packets []table.PacketEntry) (Mesh, error) {
	if rec.Parent < 0 || rec.Parent >= len(packets) {
		return Mesh{}, errors.Errorf("mesh at %#x: parent packet %d of %d", rec.Anchor, rec.Parent, len(packets))
	}
	r := &reader{c: c}
	scaleRec := r.slice(rec.BBoxA, 12)
	bboxB := r.slice(rec.BBoxB, 12)
	n := rec.VertexCount
	pos := r.slice(rec.Positions, n*positionStride)
	uvs := r.slice(rec.UVs, n*uvStride)
	extra := r.slice(rec.Colors, n*colorStride)
	if r.err != nil {
		return Mesh{}, errors.WithMessagef(r.err, "mesh at %#x", rec.Anchor)
	}

	m := Mesh{
		Layout: UV32 | Position32,
		Scale: mgl32.Vec3{
			scaleAxis(scaleRec[2], scaleRec[3]),
			scaleAxis(scaleRec[6], scaleRec[7]),
			scaleAxis(scaleRec[10], scaleRec[11]),
		},
		Center: center(vec3(scaleRec), vec3(bboxB)),
	}

	sm := SubMesh{Material: int(packets[rec.Parent].TextureIndex)}
	sm.Positions = positions(pos, n, m.Scale, m.Center)
	sm.UVs, sm.StripEnds = texCoords(uvs, n)
	if kind == ubr.KindMap {
		m.Layout |= Color4Floats
		sm.Colors = colors(extra, n)
	} else {
		m.Layout |= Normal32
		sm.Normals = normals(extra, n)
	}
	sm.Triangles = Strips(n, sm.StripEnds)

	m.SubMeshes = []SubMesh{sm}
	return m, nil
}

// BuildAll decodes every record in order.
func BuildAll(c *ubr.Container, kind ubr.Kind, recs []vif.Record, packets []table.PacketEntry) ([]Mesh, error) {
	out := make([]Mesh, 0, len(recs))
	for _, rec := range recs {
		m, err := Build(c, kind, rec, packets)
		if err != nil {
			return out, err
		}
		out = append(out, m)
	}
	return out, nil
}

type reader struct {
	c   *ubr.Container
	err error
}

func (r *reader) slice(off, n int) []byte {
	if r.err != nil {
		return nil
	}
	b, err := r.c.Slice(off, n)
	r.err = err
	return b
}

func vec3(b []byte) mgl32.Vec3 {
	return mgl32.Vec3{
		math32.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		math32.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		math32.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}

// scaleAxis halves the 64-unit extent twice per exponent step below full
// scale, and doubles it when the multiplier's top bit is set.
func scaleAxis(multiplier, exponent byte) float32 {
	s := float32(64)
	for e := int(exponent); e < fullScaleExponent; e++ {
		s /= 4
	}
	if multiplier >= 0x80 {
		s *= 2
	}
	return s
}

// center is the offset between the two bounding records, Y and Z flipped.
func center(a, b mgl32.Vec3) mgl32.Vec3 {
	d := b.Sub(a)
	return mgl32.Vec3{d[0], -d[1], -d[2]}.Mul(0.25)
}

func positions(b []byte, n int, scale, c mgl32.Vec3) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, n)
	for i := range out {
		o := i * positionStride
		x := float32(binary.LittleEndian.Uint16(b[o:]))
		y := float32(binary.LittleEndian.Uint16(b[o+2:]))
		z := float32(binary.LittleEndian.Uint16(b[o+4:]))
		out[i] = mgl32.Vec3{
			x/positionUnit*scale[0] - c[0],
			y/positionUnit*scale[1] + c[1],
			z/positionUnit*scale[2] + c[2],
		}
	}
	return out
}

// texCoords decodes fixed-point UVs. The low bit of each UV's first byte is a
// strip flag: the first flag opens the mesh, after that every second flag
// closes a strip at its vertex.
func texCoords(b []byte, n int) ([]mgl32.Vec2, []int) {
	out := make([]mgl32.Vec2, n)
	var ends []int
	first, pending := true, false
	for i := range out {
		o := i * uvStride
		if b[o]&1 != 0 {
			switch {
			case first:
				first = false
			case !pending:
				pending = true
			default:
				ends = append(ends, i)
				pending = false
			}
		}
		u := float32(int16(binary.LittleEndian.Uint16(b[o:])))
		v := float32(int16(binary.LittleEndian.Uint16(b[o+2:])))
		out[i] = mgl32.Vec2{u / uvUnit, v / uvUnit}
	}
	return out, ends
}

func colors(b []byte, n int) []mgl32.Vec4 {
	out := make([]mgl32.Vec4, n)
	for i := range out {
		o := i * colorStride
		out[i] = mgl32.Vec4{
			float32(b[o]) * 2 / 255,
			float32(b[o+1]) * 2 / 255,
			float32(b[o+2]) * 2 / 255,
			1,
		}
	}
	return out
}

func normals(b []byte, n int) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, n)
	for i := range out {
		o := i * colorStride
		out[i] = mgl32.Vec3{float32(b[o]) / 255, float32(b[o+1]) / 255, float32(b[o+2]) / 255}
	}
	return out
}

// Strips expands n strip vertices split at ends into a triangle list. Every
// vertex from the third of its strip on closes a triangle with the two
// before it.
func Strips(n int, ends []int) []Triangle {
	var tris []Triangle
	g := 0
	start := 0
	emit := func(end int) {
		for i := 0; i < end-start; i++ {
			if i >= 2 {
				tris = append(tris, Triangle{uint32(g - 2), uint32(g - 1), uint32(g)})
			}
			g++
		}
		start = end
	}
	for _, e := range ends {
		emit(e)
	}
	emit(n)
	return tris
}
