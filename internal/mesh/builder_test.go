package mesh

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"dda-extractor/internal/table"
	"dda-extractor/internal/ubr"
	"dda-extractor/internal/vif"
)

func TestStripsSingle(t *testing.T) {
	for n := 0; n < 10; n++ {
		want := n - 2
		if want < 0 {
			want = 0
		}
		if got := len(Strips(n, nil)); got != want {
			t.Errorf("Strips(%d) gave %d triangles, want %d", n, got, want)
		}
	}
	tris := Strips(5, nil)
	want := []Triangle{{0, 1, 2}, {1, 2, 3}, {2, 3, 4}}
	for i := range want {
		if tris[i] != want[i] {
			t.Errorf("tri %d = %v, want %v", i, tris[i], want[i])
		}
	}
}

func TestStripsBreak(t *testing.T) {
	tris := Strips(6, []int{3})
	want := []Triangle{{0, 1, 2}, {3, 4, 5}}
	if len(tris) != len(want) {
		t.Fatalf("got %d triangles, want %d", len(tris), len(want))
	}
	for i := range want {
		if tris[i] != want[i] {
			t.Errorf("tri %d = %v, want %v", i, tris[i], want[i])
		}
	}
	// No triangle spans the break.
	for _, tr := range tris {
		if tr[0] < 3 && tr[2] >= 3 {
			t.Errorf("triangle %v crosses strip end 3", tr)
		}
	}
}

func TestStripsShortPartitions(t *testing.T) {
	cases := []struct {
		n     int
		ends  []int
		want  int
		first Triangle
	}{
		{6, []int{1}, 3, Triangle{1, 2, 3}},
		{6, []int{5}, 3, Triangle{0, 1, 2}},
		{6, []int{0}, 4, Triangle{0, 1, 2}},
		{6, []int{2, 4}, 0, Triangle{}},
		{8, []int{4}, 4, Triangle{0, 1, 2}},
	}
	for _, c := range cases {
		tris := Strips(c.n, c.ends)
		if len(tris) != c.want {
			t.Errorf("Strips(%d, %v) gave %d triangles, want %d", c.n, c.ends, len(tris), c.want)
			continue
		}
		if c.want > 0 && tris[0] != c.first {
			t.Errorf("Strips(%d, %v) first = %v, want %v", c.n, c.ends, tris[0], c.first)
		}
	}
}

func TestStripFlags(t *testing.T) {
	uv := func(flags ...int) []byte {
		b := make([]byte, 4*8)
		for _, i := range flags {
			b[i*4] |= 1
		}
		return b
	}
	cases := []struct {
		flags []int
		want  []int
	}{
		{nil, nil},
		{[]int{0}, nil},
		{[]int{0, 1}, nil},
		{[]int{0, 1, 3}, []int{3}},
		{[]int{0, 1, 2}, []int{2}},
		{[]int{0, 1, 2, 3, 4}, []int{2, 4}},
	}
	for _, c := range cases {
		_, ends := texCoords(uv(c.flags...), 8)
		if len(ends) != len(c.want) {
			t.Errorf("flags %v: ends %v, want %v", c.flags, ends, c.want)
			continue
		}
		for i := range ends {
			if ends[i] != c.want[i] {
				t.Errorf("flags %v: ends %v, want %v", c.flags, ends, c.want)
			}
		}
	}
}

func TestScaleAxis(t *testing.T) {
	cases := []struct {
		mult, exp byte
		want      float32
	}{
		{0, 0x49, 64},
		{0, 0x50, 64},
		{0, 0x48, 16},
		{0, 0x47, 4},
		{0x80, 0x48, 32},
		{0xFF, 0x49, 128},
	}
	for _, c := range cases {
		if got := scaleAxis(c.mult, c.exp); got != c.want {
			t.Errorf("scaleAxis(%#x, %#x) = %v, want %v", c.mult, c.exp, got, c.want)
		}
	}
}

func TestCenter(t *testing.T) {
	got := center(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{5, 10, 7})
	if want := (mgl32.Vec3{1, -2, -1}); got != want {
		t.Errorf("center = %v, want %v", got, want)
	}
}

func putF32(b []byte, off int, v ...float32) {
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[off+i*4:], math.Float32bits(f))
	}
}

// meshBuffer holds a 4-vertex record: scale at 0x10, bbox B at 0x20,
// positions at 0x40, UVs at 0x60, colours at 0x80.
func meshBuffer() ([]byte, vif.Record) {
	data := make([]byte, 0x100)
	// 0x49000000 is 2^19: multiplier byte 0, exponent byte 0x49, full scale.
	const a = 1 << 19
	putF32(data, 0x10, a, a, a)
	putF32(data, 0x20, a+4, a+8, a+12)

	binary.LittleEndian.PutUint16(data[0x40:], 4096) // x of vertex 0
	binary.LittleEndian.PutUint16(data[0x42:], 2048) // y
	binary.LittleEndian.PutUint16(data[0x44:], 0)    // z

	binary.LittleEndian.PutUint16(data[0x60:], uint16(0x1000)) // u = 1
	var neg int16 = -0x800
	binary.LittleEndian.PutUint16(data[0x62:], uint16(neg)) // v = -0.5

	data[0x80], data[0x81], data[0x82] = 255, 0, 51

	return data, vif.Record{
		Parent:      0,
		VertexCount: 4,
		BBoxA:       0x10,
		BBoxB:       0x20,
		Positions:   0x40,
		UVs:         0x60,
		Colors:      0x80,
	}
}

func TestBuildMap(t *testing.T) {
	data, rec := meshBuffer()
	c := ubr.New("map", data)
	m, err := Build(c, ubr.KindMap, rec, []table.PacketEntry{{TextureIndex: 7}})
	if err != nil {
		t.Fatal(err)
	}
	if !m.Layout.Has(UV32|Position32|Color4Floats) || m.Layout.Has(Normal32) {
		t.Errorf("layout = %b", m.Layout)
	}
	sm := m.SubMeshes[0]
	if sm.Material != 7 {
		t.Errorf("material = %d, want 7", sm.Material)
	}
	if len(sm.Triangles) != 2 {
		t.Errorf("got %d triangles, want 2", len(sm.Triangles))
	}
	// Centre = (4, -8, -12) / 4.
	if want := (mgl32.Vec3{1, -2, -3}); m.Center != want {
		t.Errorf("center = %v, want %v", m.Center, want)
	}
	if want := (mgl32.Vec3{64 - 1, 32 - 2, 0 - 3}); sm.Positions[0] != want {
		t.Errorf("position 0 = %v, want %v", sm.Positions[0], want)
	}
	if want := (mgl32.Vec2{1, -0.5}); sm.UVs[0] != want {
		t.Errorf("uv 0 = %v, want %v", sm.UVs[0], want)
	}
	if want := (mgl32.Vec4{2, 0, 0.4, 1}); !sm.Colors[0].ApproxEqual(want) {
		t.Errorf("color 0 = %v, want %v", sm.Colors[0], want)
	}
	if sm.Normals != nil {
		t.Error("map mesh has normals")
	}
}

func TestBuildCar(t *testing.T) {
	data, rec := meshBuffer()
	c := ubr.New("car", data)
	m, err := Build(c, ubr.KindCar, rec, []table.PacketEntry{{}})
	if err != nil {
		t.Fatal(err)
	}
	if !m.Layout.Has(Normal32) || m.Layout.Has(Color4Floats) {
		t.Errorf("layout = %b", m.Layout)
	}
	sm := m.SubMeshes[0]
	if want := (mgl32.Vec3{1, 0, 0.2}); !sm.Normals[0].ApproxEqual(want) {
		t.Errorf("normal 0 = %v, want %v", sm.Normals[0], want)
	}
	if sm.Colors != nil {
		t.Error("car mesh has colours")
	}
}

func TestBuildErrors(t *testing.T) {
	data, rec := meshBuffer()
	c := ubr.New("map", data)
	if _, err := Build(c, ubr.KindMap, rec, nil); err == nil {
		t.Error("missing parent packet: want error")
	}
	rec.Colors = 0xFF
	if _, err := Build(c, ubr.KindMap, rec, []table.PacketEntry{{}}); err == nil {
		t.Error("stream past end: want error")
	}
}

func TestIndices(t *testing.T) {
	sm := SubMesh{Triangles: Strips(4, nil)}
	got := sm.Indices()
	want := []uint32{0, 1, 2, 1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("indices = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("indices = %v, want %v", got, want)
			break
		}
	}
}
