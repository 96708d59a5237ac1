package ubr

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.ubr"))
	if !errors.Is(err, ErrReadFailure) {
		t.Errorf("Open(missing) = %v, want ErrReadFailure", err)
	}
}

func TestOpenSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ubr")
	data := make([]byte, 0x123)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if c.Len() != len(data) {
		t.Errorf("Len() = %d, want %d", c.Len(), len(data))
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		tag  uint32
		want Kind
		ok   bool
	}{
		{0x20000000, KindMap, true},
		{0x20010000, KindCar, true},
		{0x04090000, KindInGame, true},
		{0x00050001, KindSprites, true},
		{0x00050003, KindMenu, true},
		{0xdeadbeef, Kind(0xdeadbeef), false},
	}
	for _, tt := range tests {
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint32(buf, tt.tag)
		k, err := New("t", buf).Kind()
		if k != tt.want {
			t.Errorf("Kind(%#x) = %v, want %v", tt.tag, k, tt.want)
		}
		if tt.ok && err != nil {
			t.Errorf("Kind(%#x) error %v", tt.tag, err)
		}
		if !tt.ok && !errors.Is(err, ErrUnknownFileKind) {
			t.Errorf("Kind(%#x) error %v, want ErrUnknownFileKind", tt.tag, err)
		}
	}
}

func TestKindShortFile(t *testing.T) {
	_, err := New("t", []byte{1, 2}).Kind()
	if !errors.Is(err, ErrCorruptContainer) {
		t.Errorf("Kind(short) = %v, want ErrCorruptContainer", err)
	}
}

func TestAccessorsBounds(t *testing.T) {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[4:], 0x11223344)
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(1.5))
	c := New("t", buf)

	if v, err := c.U32(4); err != nil || v != 0x11223344 {
		t.Errorf("U32(4) = %#x, %v", v, err)
	}
	if v, err := c.U16(4); err != nil || v != 0x3344 {
		t.Errorf("U16(4) = %#x, %v", v, err)
	}
	if v, err := c.F32(8); err != nil || v != 1.5 {
		t.Errorf("F32(8) = %v, %v", v, err)
	}
	if _, err := c.U32(13); !errors.Is(err, ErrCorruptContainer) {
		t.Errorf("U32(13) error %v", err)
	}
	if _, err := c.U8(-1); !errors.Is(err, ErrCorruptContainer) {
		t.Errorf("U8(-1) error %v", err)
	}
	if _, err := c.Slice(10, 7); !errors.Is(err, ErrCorruptContainer) {
		t.Errorf("Slice(10, 7) error %v", err)
	}
	if s, err := c.Slice(10, 6); err != nil || len(s) != 6 {
		t.Errorf("Slice(10, 6) = %d bytes, %v", len(s), err)
	}
}

func TestCString(t *testing.T) {
	buf := append([]byte(`C:\TEX\ROAD.TGA`), 0, 'x')
	c := New("t", buf)
	s, err := c.CString(0, 0x80)
	if err != nil || s != `C:\TEX\ROAD.TGA` {
		t.Errorf("CString = %q, %v", s, err)
	}
	s, _ = c.CString(0, 4)
	if s != `C:\T` {
		t.Errorf("CString(max 4) = %q", s)
	}
	c = New("t", []byte{'a', 'b'})
	if s, _ := c.CString(0, 10); s != "ab" {
		t.Errorf("unterminated CString = %q", s)
	}
}

func TestHeaderOffset(t *testing.T) {
	if KindSprites.HeaderOffset() != 0x10 || KindInGame.HeaderOffset() != 0x10 {
		t.Error("sprites/in-game header offset should be 0x10")
	}
	if KindMap.HeaderOffset() != 0x80 || KindCar.HeaderOffset() != 0x80 {
		t.Error("map/car header offset should be 0x80")
	}
}
