package vif

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"dda-extractor/internal/table"
	"dda-extractor/internal/ubr"
)

// Packet 0 starts at 0x80 (map header offset) and spans 0x100 bytes.
func packetBuffer() []byte {
	data := make([]byte, 0x400)
	binary.LittleEndian.PutUint16(data[0x80:], 0x10)
	return data
}

func put(data []byte, off int, b ...byte) { copy(data[off:], b) }

// writeRecord lays out a complete record anchored at a with vc vertices and
// returns the offset just past it.
func writeRecord(data []byte, a int, vc, n byte) int {
	put(data, a+1, 0x80, 0x01, 0x6C, vc, 0x80)
	b := a + 20
	put(data, b, 0x00, 0x00, 0x00, 0x30)
	b += 16
	put(data, b, 0x02, 0xC0, n, 0x69)
	b += padded(4 + int(vc)*6)
	put(data, b, 0x01, 0x80, 0x01, 0x68)
	b += 16
	put(data, b, 0x50, 0x80, vc, 0x65)
	b += padded(4 + int(vc)*4)
	put(data, b, 0x9E, 0xC0, vc, 0x6A)
	return b + padded(4+int(vc)*3)
}

func scan(t *testing.T, data []byte, opts Options) Result {
	t.Helper()
	s := NewScanner(ubr.New("test", data), ubr.KindMap, opts)
	res, err := s.Scan([]table.PacketEntry{{VifPacketListAddr: 0, TextureIndex: 3}})
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestScanEmpty(t *testing.T) {
	s := NewScanner(ubr.New("empty", nil), ubr.KindMap, Options{})
	res, err := s.Scan(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 0 || len(res.Aborts) != 0 {
		t.Errorf("got %d records, %d aborts", len(res.Records), len(res.Aborts))
	}
	if res.Err() != nil {
		t.Errorf("Err() = %v, want nil", res.Err())
	}
}

func TestScanRecord(t *testing.T) {
	data := packetBuffer()
	writeRecord(data, 0x90, 4, 4)
	res := scan(t, data, Options{})

	if len(res.Records) != 1 || len(res.Aborts) != 0 {
		t.Fatalf("got %d records, %d aborts", len(res.Records), len(res.Aborts))
	}
	want := Record{
		Parent:      0,
		Anchor:      0x90,
		VertexCount: 4,
		BBoxA:       0xA8,
		Positions:   0xB8,
		BBoxB:       0xD4,
		UVs:         0xE4,
		Colors:      0xF8,
	}
	if res.Records[0] != want {
		t.Errorf("record = %+v, want %+v", res.Records[0], want)
	}
}

func TestScanTwoRecords(t *testing.T) {
	data := packetBuffer()
	next := writeRecord(data, 0x90, 4, 4)
	writeRecord(data, next+4, 3, 3)
	res := scan(t, data, Options{})
	if len(res.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(res.Records))
	}
	if res.Records[1].VertexCount != 3 {
		t.Errorf("second vertex count = %d", res.Records[1].VertexCount)
	}
}

func TestScanCountMismatch(t *testing.T) {
	data := packetBuffer()
	writeRecord(data, 0x90, 4, 5)
	var logged []string
	res := scan(t, data, Options{Logf: func(format string, args ...any) {
		logged = append(logged, format)
	}})
	if len(res.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(res.Records))
	}
	if res.Mismatches != 1 {
		t.Errorf("mismatches = %d, want 1", res.Mismatches)
	}
	found := false
	for _, l := range logged {
		if strings.Contains(l, "mismatch") {
			found = true
		}
	}
	if !found {
		t.Errorf("mismatch not logged: %q", logged)
	}
}

func TestScanMissingBBoxA(t *testing.T) {
	data := packetBuffer()
	put(data, 0x91, 0x80, 0x01, 0x6C, 4, 0x80)
	res := scan(t, data, Options{})
	if len(res.Records) != 0 || len(res.Aborts) != 1 {
		t.Fatalf("got %d records, %d aborts", len(res.Records), len(res.Aborts))
	}
	if a := res.Aborts[0]; a.State != SeekingBBoxA || a.Anchor != 0x90 {
		t.Errorf("abort = %+v", a)
	}
	if !errors.Is(res.Err(), ubr.ErrGeometryScanAbort) {
		t.Errorf("Err() = %v, want ErrGeometryScanAbort", res.Err())
	}
}

func TestScanNestedAnchor(t *testing.T) {
	data := packetBuffer()
	put(data, 0x91, 0x80, 0x01, 0x6C, 4, 0x80)
	put(data, 0xA4, 0x00, 0x00, 0x00, 0x30)
	put(data, 0xB5, 0x80, 0x01, 0x6C, 4, 0x80)
	res := scan(t, data, Options{})
	if len(res.Aborts) != 1 || res.Aborts[0].State != SeekingPositions {
		t.Fatalf("aborts = %+v", res.Aborts)
	}
	// The scan resumes one byte past the nested anchor.
	if len(res.Records) != 0 {
		t.Errorf("got %d records, want 0", len(res.Records))
	}
}

func TestScanMissingBBoxB(t *testing.T) {
	data := packetBuffer()
	put(data, 0x91, 0x80, 0x01, 0x6C, 4, 0x80)
	put(data, 0xA4, 0x00, 0x00, 0x00, 0x30)
	put(data, 0xB4, 0x02, 0xC0, 4, 0x69)
	res := scan(t, data, Options{Budget: 0x40})
	if len(res.Aborts) != 1 || res.Aborts[0].State != SeekingBBoxB {
		t.Fatalf("aborts = %+v", res.Aborts)
	}
}

// recordAt runs a single record decode and returns its state and the cursor
// the packet scan resumes from.
func recordAt(data []byte, anchor int) (State, int) {
	s := NewScanner(ubr.New("test", data), ubr.KindMap, Options{})
	var res Result
	_, state, next := s.record(0, anchor, &res)
	return state, next
}

func TestScanPositionsWindow(t *testing.T) {
	data := packetBuffer()
	put(data, 0x91, 0x80, 0x01, 0x6C, 4, 0x80)
	put(data, 0xA4, 0x00, 0x00, 0x00, 0x30)
	// Positions only after anchor+64.
	put(data, 0xD4, 0x02, 0xC0, 4, 0x69)

	state, next := recordAt(data, 0x90)
	if state != SeekingPositions || next != 0x98 {
		t.Errorf("record = %v resuming at %#x, want positions at 0x98", state, next)
	}
	res := scan(t, data, Options{})
	if len(res.Records) != 0 || len(res.Aborts) != 1 || res.Aborts[0].State != SeekingPositions {
		t.Errorf("records %d, aborts %+v", len(res.Records), res.Aborts)
	}
}

func TestScanMissingUV(t *testing.T) {
	data := packetBuffer()
	writeRecord(data, 0x90, 4, 4)
	put(data, 0xE0, 0, 0, 0, 0)

	state, next := recordAt(data, 0x90)
	if state != SeekingUV || next != 0x90 {
		t.Errorf("record = %v resuming at %#x, want uv at 0x90", state, next)
	}
	res := scan(t, data, Options{})
	if len(res.Records) != 0 || len(res.Aborts) != 1 || res.Aborts[0].State != SeekingUV {
		t.Errorf("records %d, aborts %+v", len(res.Records), res.Aborts)
	}
}

func TestScanMissingColor(t *testing.T) {
	data := packetBuffer()
	writeRecord(data, 0x90, 4, 4)
	put(data, 0xF4, 0, 0, 0, 0)

	state, next := recordAt(data, 0x90)
	if state != SeekingColor || next != 0x90 {
		t.Errorf("record = %v resuming at %#x, want color at 0x90", state, next)
	}
	res := scan(t, data, Options{Budget: 0x40})
	if len(res.Records) != 0 || len(res.Aborts) != 1 || res.Aborts[0].State != SeekingColor {
		t.Errorf("records %d, aborts %+v", len(res.Records), res.Aborts)
	}
}

func TestScanSizeWraps(t *testing.T) {
	data := packetBuffer()
	binary.LittleEndian.PutUint16(data[0x80:], 0x1000)
	writeRecord(data, 0x90, 4, 4)
	s := NewScanner(ubr.New("test", data), ubr.KindMap, Options{})
	start, end, err := s.PacketRange(table.PacketEntry{})
	if err != nil {
		t.Fatal(err)
	}
	if start != 0x80 || end != 0x80 {
		t.Errorf("range = [%#x, %#x), want empty at 0x80", start, end)
	}
	res := scan(t, data, Options{})
	if len(res.Records) != 0 {
		t.Errorf("got %d records, want 0", len(res.Records))
	}
}

func TestScanPacketOutOfRange(t *testing.T) {
	s := NewScanner(ubr.New("test", make([]byte, 0x40)), ubr.KindMap, Options{})
	_, err := s.Scan([]table.PacketEntry{{VifPacketListAddr: 0x100}})
	if !errors.Is(err, ubr.ErrCorruptContainer) {
		t.Errorf("err = %v, want ErrCorruptContainer", err)
	}
}
