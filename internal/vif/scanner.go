// Package vif locates mesh records inside the VIF instruction stream of a
// parent draw packet. Records are found heuristically: an UNPACK followed by a
// GIF tag anchors a record, and the bounding boxes and vertex streams that
// follow are matched by their UNPACK command bytes.
package vif

import (
	"fmt"

	"github.com/pkg/errors"

	"dda-extractor/internal/table"
	"dda-extractor/internal/ubr"
)

// State is the part of a record the scanner is looking for.
type State int

const (
	SeekingAnchor State = iota
	SeekingBBoxA
	SeekingPositions
	SeekingBBoxB
	SeekingUV
	SeekingColor
	Complete
	Aborted
)

var stateNames = [...]string{
	SeekingAnchor:    "anchor",
	SeekingBBoxA:     "bbox-a",
	SeekingPositions: "positions",
	SeekingBBoxB:     "bbox-b",
	SeekingUV:        "uv",
	SeekingColor:     "color",
	Complete:         "complete",
	Aborted:          "aborted",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

const (
	// DefaultBudget bounds the searches for the second bounding box and the
	// UV and colour streams.
	DefaultBudget = 0x1000

	wordSize     = 4
	anchorSkip   = 5 * wordSize
	anchorWindow = 16 * wordSize
	bboxSkip     = wordSize + 3*4

	// A positions search that runs out of window resumes this far past the
	// anchor.
	positionsResume = 8
)

// Record locates the streams of one mesh. Stream positions point past the
// 4-byte UNPACK command.
type Record struct {
	Parent      int // index into the packet list
	Anchor      int
	VertexCount int
	BBoxA       int // scale and offset
	Positions   int
	BBoxB       int
	UVs         int
	Colors      int // colours on maps, normals on cars
}

// Abort describes a record that could not be completed.
type Abort struct {
	Parent int
	Anchor int
	State  State
}

// Result is the outcome of scanning a packet list.
type Result struct {
	Records    []Record
	Aborts     []Abort
	Mismatches int // positions UNPACK count differing from the anchor's
}

// Err reports the aborts as a single ErrGeometryScanAbort, or nil.
func (r Result) Err() error {
	if len(r.Aborts) == 0 {
		return nil
	}
	return errors.Wrapf(ubr.ErrGeometryScanAbort, "%d of %d records", len(r.Aborts), len(r.Aborts)+len(r.Records))
}

// Options tunes a Scanner.
type Options struct {
	Budget int
	Logf   func(format string, args ...any)
}

// Scanner finds records in one container.
type Scanner struct {
	c      *ubr.Container
	data   []byte
	kind   ubr.Kind
	budget int
	logf   func(format string, args ...any)
}

// NewScanner returns a scanner for c. A zero budget selects DefaultBudget.
func NewScanner(c *ubr.Container, kind ubr.Kind, opts Options) *Scanner {
	s := &Scanner{c: c, data: c.Bytes(), kind: kind, budget: opts.Budget, logf: opts.Logf}
	if s.budget <= 0 {
		s.budget = DefaultBudget
	}
	if s.logf == nil {
		s.logf = func(string, ...any) {}
	}
	return s
}

// PacketRange returns the byte range of the parent packet p. The stored size
// counts quadwords in 16 bits and the byte size wraps the same way.
func (s *Scanner) PacketRange(p table.PacketEntry) (start, end int, err error) {
	start = int(p.VifPacketListAddr) + s.kind.HeaderOffset()
	qwc, err := s.c.U16(start)
	if err != nil {
		return 0, 0, errors.WithMessage(err, "packet size")
	}
	end = start + int(qwc*16)
	if end > len(s.data) {
		end = len(s.data)
	}
	return start, end, nil
}

// Scan visits every parent packet in order.
func (s *Scanner) Scan(packets []table.PacketEntry) (Result, error) {
	var res Result
	for i, p := range packets {
		if err := s.scanPacket(i, p, &res); err != nil {
			return res, errors.WithMessagef(err, "packet %d", i)
		}
	}
	if len(res.Aborts) > 0 {
		s.logf("%s: %d records, %d aborted", s.c.Name(), len(res.Records), len(res.Aborts))
	}
	return res, nil
}

func (s *Scanner) scanPacket(parent int, p table.PacketEntry, res *Result) error {
	start, end, err := s.PacketRange(p)
	if err != nil {
		return err
	}
	for b := start; b < end; b++ {
		if !s.isAnchor(b) {
			continue
		}
		rec, state, next := s.record(parent, b, res)
		if state == Complete {
			res.Records = append(res.Records, rec)
		} else {
			res.Aborts = append(res.Aborts, Abort{Parent: parent, Anchor: b, State: state})
			s.logf("abort at %#x while seeking %v", b, state)
		}
		b = next
	}
	return nil
}

// record decodes the record anchored at anchor. It returns the final state
// and the cursor the packet scan continues from.
func (s *Scanner) record(parent, anchor int, res *Result) (Record, State, int) {
	vc := int(s.data[anchor+4])
	r := Record{Parent: parent, Anchor: anchor, VertexCount: vc}

	b := anchor + anchorSkip
	for !s.match(b, 0x00, 0x00, 0x00, 0x30) {
		b += wordSize
		if b > anchor+anchorWindow {
			return r, SeekingBBoxA, anchor
		}
	}
	r.BBoxA = b + wordSize
	b += bboxSkip

	for {
		if n, ok := s.positionsAt(b); ok {
			if n != vc {
				res.Mismatches++
				s.logf("vertex count mismatch at %#x: %d != %d", b, n, vc)
			}
			r.Positions = b + wordSize
			b += padded(wordSize + vc*3*2)
			break
		}
		if s.isAnchor(b) {
			return r, SeekingPositions, b
		}
		b += wordSize
		if b > anchor+anchorWindow {
			return r, SeekingPositions, anchor + positionsResume
		}
	}

	var ok bool
	if b, ok = s.seek(b, 0x01, 0x80, 0x01, 0x68); !ok {
		return r, SeekingBBoxB, anchor
	}
	r.BBoxB = b + wordSize
	b += bboxSkip

	if b, ok = s.seek(b, 0x50, 0x80, vc, 0x65); !ok {
		return r, SeekingUV, anchor
	}
	r.UVs = b + wordSize
	b += padded(wordSize + vc*2*2)

	if b, ok = s.seek(b, 0x9E, -1, vc, 0x6A); !ok {
		return r, SeekingColor, anchor
	}
	r.Colors = b + wordSize
	b += padded(wordSize + vc*3)

	return r, Complete, b
}

// isAnchor matches an UNPACK with a GIF tag right after: ?? 80 01 6C vc 80.
func (s *Scanner) isAnchor(b int) bool {
	return s.c.Has(b, 6) &&
		s.data[b+1] == 0x80 && s.data[b+2] == 0x01 && s.data[b+3] == 0x6C && s.data[b+5] == 0x80
}

// positionsAt matches a V3-16 UNPACK of at least 3 vertices: 02 C0 n 69.
func (s *Scanner) positionsAt(b int) (int, bool) {
	if !s.c.Has(b, wordSize) {
		return 0, false
	}
	d := s.data[b : b+wordSize]
	if d[0] != 0x02 || d[1] != 0xC0 || d[2] < 3 || d[3] != 0x69 {
		return 0, false
	}
	return int(d[2]), true
}

// match compares the word at b. Negative wants match any byte.
func (s *Scanner) match(b int, want ...int) bool {
	if !s.c.Has(b, len(want)) {
		return false
	}
	for i, w := range want {
		if w >= 0 && int(s.data[b+i]) != w {
			return false
		}
	}
	return true
}

// seek probes every word from b within the budget.
func (s *Scanner) seek(b int, want ...int) (int, bool) {
	for p := b; p-b < s.budget; p += wordSize {
		if !s.c.Has(p, wordSize) {
			return 0, false
		}
		if s.match(p, want...) {
			return p, true
		}
	}
	return 0, false
}

// padded adds the size modulo the word size, as the stream layout does.
func padded(n int) int {
	return n + n%wordSize
}
