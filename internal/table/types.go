package table

import "dda-extractor/internal/ubr"

// Record sizes as stored in the container.
const (
	BlockHeaderReadSize = 0x20
	EntrySize           = 0x38
	TextureHeaderSize   = 0x90
	TexturePathSize     = 0x80
	parentRecordSize    = 12
	packetPairSize      = 8

	// The texture path starts 16 bytes into a texture-info record.
	texturePathSkip = 16
)

// BlockHeader precedes every data block. BlockDataSize plus
// ubr.BlockHeaderSize is the distance to the next header of the same chain.
type BlockHeader struct {
	Unknown0       uint32
	BlockDataSize  uint32
	BytesBeforeEnd uint32
	Name           [4]byte
	Offset         uint32
	Size           uint32
	Unknown6       uint32
	Unknown7       uint32
}

// ClutKind is the palette format of a texture.
type ClutKind uint32

const (
	ClutNone ClutKind = 0
	Clut256  ClutKind = 19
	Clut16   ClutKind = 20
)

// Colors returns the number of palette entries, 0 for ClutNone or unknown
// values.
func (k ClutKind) Colors() int {
	switch k {
	case Clut256:
		return 256
	case Clut16:
		return 16
	}
	return 0
}

func (k ClutKind) String() string {
	switch k {
	case ClutNone:
		return "none"
	case Clut256:
		return "clut256"
	case Clut16:
		return "clut16"
	}
	return "clut?"
}

// Entry is one texture table record. The three position fields are absolute
// file offsets once returned by the walker.
type Entry struct {
	MipmapCount          uint32
	Clut                 ClutKind
	Width                uint32 // mipmaps included
	Height               uint32 // mipmaps included
	Unknown0             uint32
	Unknown1             uint32
	TexturePosition      uint32
	Unknown2             uint32
	Unknown3             uint32
	Unknown4             uint32
	Unknown5             uint32
	ClutCount            uint32
	PalettePosition      uint32
	TextureInfosPosition uint32
}

func (e *Entry) rebase(base uint32) {
	e.TexturePosition += base
	e.PalettePosition += base
	e.TextureInfosPosition += base
}

// TextureHeader is the texture-info record an entry points at, and the record
// type of menu texture lists.
type TextureHeader struct {
	Unknown0         uint32 // data offset in menu files
	Width            uint32 // without mipmaps
	Height           uint32 // without mipmaps
	IndexInDataChunk uint32 // palette index in menu files
	Path             string
}

// Table is a decoded texture table.
type Table struct {
	Address int
	Header  BlockHeader
	Entries []Entry
	Headers []TextureHeader
	Names   []string
}

// PacketEntry links a VIF packet list to the texture it is drawn with.
type PacketEntry struct {
	VifPacketListAddr uint32
	TextureIndex      uint32
}

// ParentEntry is one draw-command record of the packet index.
type ParentEntry struct {
	PairCount uint32
	Addr      uint32
	Unknown   uint32
}

// MenuTextures is one decoded menu texture list.
type MenuTextures struct {
	List     int // address of the list
	Paletted bool
	Headers  []TextureHeader
}

// Layout holds the per-file constants the walker cannot discover.
type Layout struct {
	Skybox          bool
	SkyboxSentinels [][4]byte
	Menu            []MenuList
}

// MenuList addresses one texture header list of a menu file.
type MenuList struct {
	Address  int
	Paletted bool
}

// Walker locates tables inside one container.
type Walker struct {
	c      *ubr.Container
	kind   ubr.Kind
	layout Layout
}

// NewWalker returns a walker for c, classified as kind.
func NewWalker(c *ubr.Container, kind ubr.Kind, layout Layout) *Walker {
	return &Walker{c: c, kind: kind, layout: layout}
}
