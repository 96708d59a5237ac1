package ubr

import (
	"encoding/binary"
	"os"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// Container is a whole UBR file held in memory. It is never modified after
// construction and every accessor is bounds checked.
type Container struct {
	name string
	data []byte
}

// Open reads the file at path completely.
func Open(path string) (*Container, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrReadFailure, "%s: %v", path, err)
	}
	return &Container{name: path, data: raw}, nil
}

// New wraps an existing buffer. The buffer must not be modified afterwards.
func New(name string, data []byte) *Container {
	return &Container{name: name, data: data}
}

// Name returns the path or name the container was created with.
func (c *Container) Name() string { return c.name }

// Len returns the size of the container in bytes.
func (c *Container) Len() int { return len(c.data) }

// Has reports whether n bytes starting at off are inside the buffer.
func (c *Container) Has(off, n int) bool {
	return off >= 0 && n >= 0 && off <= len(c.data)-n
}

func (c *Container) check(what string, off, n int) error {
	if !c.Has(off, n) {
		return outOfRange(what, off, n, len(c.data))
	}
	return nil
}

// U8 reads one byte.
func (c *Container) U8(off int) (uint8, error) {
	if err := c.check("u8", off, 1); err != nil {
		return 0, err
	}
	return c.data[off], nil
}

// U16 reads a little-endian uint16.
func (c *Container) U16(off int) (uint16, error) {
	if err := c.check("u16", off, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(c.data[off:]), nil
}

// U32 reads a little-endian uint32.
func (c *Container) U32(off int) (uint32, error) {
	if err := c.check("u32", off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(c.data[off:]), nil
}

// Int reads a little-endian uint32 as an offset or count.
func (c *Container) Int(off int) (int, error) {
	v, err := c.U32(off)
	return int(v), err
}

// F32 reads a little-endian float32.
func (c *Container) F32(off int) (float32, error) {
	v, err := c.U32(off)
	if err != nil {
		return 0, err
	}
	return math32.Float32frombits(v), nil
}

// Slice returns n bytes at off. The result aliases the container.
func (c *Container) Slice(off, n int) ([]byte, error) {
	if err := c.check("slice", off, n); err != nil {
		return nil, err
	}
	return c.data[off : off+n : off+n], nil
}

// Tail returns everything from off to the end of the buffer.
func (c *Container) Tail(off int) ([]byte, error) {
	if err := c.check("tail", off, 0); err != nil {
		return nil, err
	}
	return c.data[off:len(c.data):len(c.data)], nil
}

// CString reads a NUL-terminated string of at most max bytes and decodes it
// as Windows-1252. A string running into the end of the buffer is truncated
// there.
func (c *Container) CString(off, max int) (string, error) {
	if err := c.check("string", off, 1); err != nil {
		return "", err
	}
	end := off
	for end < len(c.data) && end-off < max && c.data[end] != 0 {
		end++
	}
	s, err := charmap.Windows1252.NewDecoder().Bytes(c.data[off:end])
	if err != nil {
		return string(c.data[off:end]), nil
	}
	return string(s), nil
}

// Tag reads the 4-byte block name at off.
func (c *Container) Tag(off int) ([4]byte, error) {
	var t [4]byte
	if err := c.check("tag", off, 4); err != nil {
		return t, err
	}
	copy(t[:], c.data[off:off+4])
	return t, nil
}

// Bytes returns the whole buffer. Callers must treat it as read-only.
func (c *Container) Bytes() []byte { return c.data }
