package table

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"dda-extractor/internal/registry"
	"dda-extractor/internal/ubr"
)

// In-game table bases sit 0x70 bytes after the block header they belong to.
const inGameBlockSkip = 0x70

func (w *Walker) readBlockHeader(off int) (BlockHeader, error) {
	var h BlockHeader
	raw, err := w.c.Slice(off, BlockHeaderReadSize)
	if err != nil {
		return h, errors.WithMessagef(err, "block header at %#x", off)
	}
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &h); err != nil {
		return h, errors.Wrapf(ubr.ErrCorruptContainer, "block header at %#x: %v", off, err)
	}
	return h, nil
}

func (w *Walker) readEntry(off int) (Entry, error) {
	var e Entry
	raw, err := w.c.Slice(off, EntrySize)
	if err != nil {
		return e, errors.WithMessagef(err, "texture entry at %#x", off)
	}
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &e); err != nil {
		return e, errors.Wrapf(ubr.ErrCorruptContainer, "texture entry at %#x: %v", off, err)
	}
	return e, nil
}

// ReadTextureHeader decodes a texture-info record at off.
func (w *Walker) ReadTextureHeader(off int) (TextureHeader, error) {
	var h TextureHeader
	raw, err := w.c.Slice(off, texturePathSkip)
	if err != nil {
		return h, errors.WithMessagef(err, "texture header at %#x", off)
	}
	h.Unknown0 = binary.LittleEndian.Uint32(raw[0:])
	h.Width = binary.LittleEndian.Uint32(raw[4:])
	h.Height = binary.LittleEndian.Uint32(raw[8:])
	h.IndexInDataChunk = binary.LittleEndian.Uint32(raw[12:])
	// A record at the very end of the file has no path.
	if w.c.Has(off+texturePathSkip, 1) {
		if h.Path, err = w.c.CString(off+texturePathSkip, TexturePathSize); err != nil {
			return h, errors.WithMessagef(err, "texture path at %#x", off)
		}
	}
	return h, nil
}

func (w *Walker) textureName(infoPos uint32) (string, error) {
	path, err := w.c.CString(int(infoPos)+texturePathSkip, TexturePathSize)
	if err != nil {
		return "", errors.WithMessagef(err, "texture name at %#x", infoPos)
	}
	return registry.BaseName(path), nil
}

// nameEqual compares block names the way strncmp does: bytes after a NUL are
// ignored.
func nameEqual(a, b [4]byte) bool {
	for i := 0; i < 4; i++ {
		if a[i] != b[i] {
			return false
		}
		if a[i] == 0 {
			return true
		}
	}
	return true
}

// FlatTable decodes a texture table whose entries form one array after the
// header at addr. base is added once to every entry's positions.
func (w *Walker) FlatTable(addr, base int) (Table, error) {
	t := Table{Address: addr}
	h, err := w.readBlockHeader(addr)
	if err != nil {
		return t, err
	}
	t.Header = h
	count := int(h.Size / EntrySize)
	first := addr + int(h.Offset) + ubr.BlockHeaderSize
	if !w.c.Has(first, count*EntrySize) {
		return t, errors.Wrapf(ubr.ErrCorruptContainer, "table at %#x: %d entries at %#x", addr, count, first)
	}

	t.Entries = make([]Entry, 0, count)
	t.Headers = make([]TextureHeader, 0, count)
	t.Names = make([]string, 0, count)
	for i := 0; i < count; i++ {
		e, err := w.readEntry(first + i*EntrySize)
		if err != nil {
			return t, err
		}
		th, err := w.ReadTextureHeader(int(e.TextureInfosPosition) + base)
		if err != nil {
			return t, errors.WithMessagef(err, "table at %#x entry %d", addr, i)
		}
		e.rebase(uint32(base))
		name, err := w.textureName(e.TextureInfosPosition)
		if err != nil {
			return t, err
		}
		t.Entries = append(t.Entries, e)
		t.Headers = append(t.Headers, th)
		t.Names = append(t.Names, name)
	}
	return t, nil
}

// ChainTable decodes a table whose entries each sit in their own data block.
// Every entry is rebased by its block offset plus base.
func (w *Walker) ChainTable(addr, base int) (Table, error) {
	t := Table{Address: addr}
	h, err := w.readBlockHeader(addr)
	if err != nil {
		return t, errors.WithMessagef(err, "chained table header at %#x", addr)
	}
	t.Header = h
	limit := w.c.Len() - ubr.BlockHeaderSize
	offset := 0
	for {
		e, err := w.readEntry(addr + ubr.BlockHeaderSize + offset)
		if err != nil {
			return t, errors.WithMessagef(err, "chained table at %#x", addr)
		}
		e.rebase(uint32(offset + base))

		step, err := w.c.Int(addr + 4 + offset)
		if err != nil {
			return t, errors.WithMessagef(err, "chained table at %#x", addr)
		}
		offset += step + ubr.BlockHeaderSize

		name, err := w.textureName(e.TextureInfosPosition)
		if err != nil {
			return t, err
		}
		t.Entries = append(t.Entries, e)
		t.Names = append(t.Names, name)
		if offset >= limit {
			return t, nil
		}
	}
}

// SkyboxHeader walks the sibling blocks after the primary table header until
// one has the same name, or a sentinel name, and returns its address.
func (w *Walker) SkyboxHeader(primary int) (int, error) {
	base, err := w.readBlockHeader(primary)
	if err != nil {
		return 0, err
	}
	cur := primary + int(base.BlockDataSize) + ubr.BlockHeaderSize
	for {
		h, err := w.readBlockHeader(cur)
		if err != nil {
			return 0, errors.WithMessagef(err, "skybox search from %#x", primary)
		}
		if nameEqual(base.Name, h.Name) || w.isSentinel(h.Name) {
			return cur, nil
		}
		cur += int(h.BlockDataSize) + ubr.BlockHeaderSize
	}
}

func (w *Walker) isSentinel(name [4]byte) bool {
	for _, s := range w.layout.SkyboxSentinels {
		if nameEqual(s, name) {
			return true
		}
	}
	return false
}

// InGameBlocks walks the block chain from offset 0 until it wraps back to a
// block named like the first one, and returns the base offset of each table.
func (w *Walker) InGameBlocks() ([]int, error) {
	origin, err := w.readBlockHeader(0)
	if err != nil {
		return nil, err
	}
	cur := int(origin.BlockDataSize) + ubr.BlockHeaderSize
	blocks := []int{0, cur + inGameBlockSkip}

	h, err := w.readBlockHeader(cur)
	if err != nil {
		return nil, errors.WithMessage(err, "in-game block chain")
	}
	maxSteps := w.c.Len() / ubr.BlockHeaderSize
	for steps := 0; !nameEqual(origin.Name, h.Name); steps++ {
		if h.BytesBeforeEnd == 0 {
			return nil, errors.Wrapf(ubr.ErrCorruptContainer, "in-game block chain: zero step at %#x", cur)
		}
		if steps >= maxSteps {
			return nil, errors.Wrapf(ubr.ErrCorruptContainer, "in-game block chain: no wrap after %d blocks", steps)
		}
		cur += int(h.BytesBeforeEnd)
		blocks = append(blocks, cur+inGameBlockSkip)
		if h, err = w.readBlockHeader(cur); err != nil {
			return nil, errors.WithMessage(err, "in-game block chain")
		}
	}
	return blocks[:len(blocks)-1], nil
}

func (w *Walker) inGameTables() ([]Table, error) {
	blocks, err := w.InGameBlocks()
	if err != nil {
		return nil, err
	}
	addr, err := w.c.Int(8)
	if err != nil {
		return nil, err
	}
	var tables []Table
	limit := w.c.Len() - ubr.BlockHeaderSize
	offset := 0
	for i := 0; ; i++ {
		if i >= len(blocks) {
			return tables, errors.Wrapf(ubr.ErrCorruptContainer, "in-game table %d has no block (%d blocks)", i, len(blocks))
		}
		t, err := w.FlatTable(addr+offset, blocks[i]+ubr.BlockHeaderSize)
		if err != nil {
			return tables, errors.WithMessagef(err, "in-game table %d", i)
		}
		tables = append(tables, t)

		step, err := w.c.Int(addr + 4 + offset)
		if err != nil {
			return tables, err
		}
		offset += step + ubr.BlockHeaderSize
		if addr+offset >= limit {
			return tables, nil
		}
	}
}

func (w *Walker) trackTables() ([]Table, error) {
	primaryAddr, err := w.c.Int(8)
	if err != nil {
		return nil, err
	}
	primary, err := w.FlatTable(primaryAddr, w.kind.HeaderOffset())
	if err != nil {
		return nil, errors.WithMessage(err, "primary table")
	}
	tables := []Table{primary}
	if w.kind != ubr.KindMap || !w.layout.Skybox {
		return tables, nil
	}

	skyBase, err := w.c.Int(4)
	if err != nil {
		return tables, err
	}
	skyAddr, err := w.SkyboxHeader(primaryAddr)
	if err != nil {
		return tables, err
	}
	sky, err := w.FlatTable(skyAddr, skyBase+2*w.kind.HeaderOffset())
	if err != nil {
		return tables, errors.WithMessage(err, "skybox table")
	}
	return append(tables, sky), nil
}

// Tables returns every texture table of the container, in file order.
func (w *Walker) Tables() ([]Table, error) {
	switch w.kind {
	case ubr.KindMap, ubr.KindCar:
		return w.trackTables()
	case ubr.KindInGame:
		return w.inGameTables()
	case ubr.KindSprites:
		t, err := w.ChainTable(0, ubr.BlockHeaderSize)
		if err != nil {
			return nil, err
		}
		return []Table{t}, nil
	}
	return nil, nil
}

// MenuTextures reads the texture header lists configured in the layout.
func (w *Walker) MenuTextures() ([]MenuTextures, error) {
	var out []MenuTextures
	for _, l := range w.layout.Menu {
		count, err := w.c.Int(l.Address + 4)
		if err != nil {
			return out, errors.WithMessagef(err, "menu list at %#x", l.Address)
		}
		first := l.Address + 0x28
		if !w.c.Has(first, count*TextureHeaderSize) {
			return out, errors.Wrapf(ubr.ErrCorruptContainer, "menu list at %#x: %d headers", l.Address, count)
		}
		m := MenuTextures{List: l.Address, Paletted: l.Paletted, Headers: make([]TextureHeader, 0, count)}
		for i := 0; i < count; i++ {
			h, err := w.ReadTextureHeader(first + i*TextureHeaderSize)
			if err != nil {
				return out, err
			}
			m.Headers = append(m.Headers, h)
		}
		out = append(out, m)
	}
	return out, nil
}

// Packets reads the packet/texture index of map and car containers. Other
// kinds have none.
func (w *Walker) Packets() ([]PacketEntry, error) {
	if !w.kind.HasMeshes() {
		return nil, nil
	}
	ho := w.kind.HeaderOffset()
	count, err := w.c.Int(ho + 4)
	if err != nil {
		return nil, errors.WithMessage(err, "packet index")
	}
	addr, err := w.c.Int(ho + 8)
	if err != nil {
		return nil, errors.WithMessage(err, "packet index")
	}
	addr += ho
	if !w.c.Has(addr, count*parentRecordSize) {
		return nil, errors.Wrapf(ubr.ErrCorruptContainer, "packet index at %#x: %d parents", addr, count)
	}

	var list []PacketEntry
	for i := 0; i < count; i++ {
		raw, _ := w.c.Slice(addr+i*parentRecordSize, parentRecordSize)
		p := ParentEntry{
			PairCount: binary.LittleEndian.Uint32(raw[0:]),
			Addr:      binary.LittleEndian.Uint32(raw[4:]),
			Unknown:   binary.LittleEndian.Uint32(raw[8:]),
		}
		pairs := int(p.Addr) + ho
		if !w.c.Has(pairs, int(p.PairCount)*packetPairSize) {
			return list, errors.Wrapf(ubr.ErrCorruptContainer, "parent %d: %d pairs at %#x", i, p.PairCount, pairs)
		}
		for j := 0; j < int(p.PairCount); j++ {
			raw, _ := w.c.Slice(pairs+j*packetPairSize, packetPairSize)
			list = append(list, PacketEntry{
				VifPacketListAddr: binary.LittleEndian.Uint32(raw[0:]),
				TextureIndex:      binary.LittleEndian.Uint32(raw[4:]),
			})
		}
	}
	return list, nil
}
