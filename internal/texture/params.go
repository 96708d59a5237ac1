package texture

import (
	"github.com/pkg/errors"

	"dda-extractor/internal/registry"
	"dda-extractor/internal/table"
	"dda-extractor/internal/ubr"
)

const (
	carSkinWidth   = 512
	brokenSuffix   = "_Broken"
	menuPaletteLen = 0x400
)

// TableParams builds the copy parameters for one table entry. A 512-wide car
// entry holds two skins side by side and yields two params.
func TableParams(c *ubr.Container, kind ubr.Kind, e table.Entry, name string) ([]CopyParams, error) {
	info := int(e.TextureInfosPosition)
	realW, err := c.Int(info + 4)
	if err != nil {
		return nil, errors.WithMessagef(err, "texture %s", name)
	}
	realH, err := c.Int(info + 8)
	if err != nil {
		return nil, errors.WithMessagef(err, "texture %s", name)
	}
	if err := checkSize(name, realW, realH); err != nil {
		return nil, err
	}

	base := CopyParams{
		Name:         name,
		Clut:         e.Clut,
		InputWidth:   int(e.Width),
		InputHeight:  int(e.Height),
		OutputWidth:  realW,
		OutputHeight: realH,
		ExportWidth:  realW,
		ExportHeight: realH,
	}
	if e.Clut.Colors() > 0 {
		if base.Input, err = c.Tail(int(e.TexturePosition)); err != nil {
			return nil, errors.WithMessagef(err, "texture %s", name)
		}
	}
	if e.Clut == table.Clut16 {
		base.InputWidth /= 2
		base.OutputWidth /= 2
	}

	fixes := []FixKind{FixNormal}
	if kind == ubr.KindCar && e.Width == carSkinWidth {
		fixes = []FixKind{FixCarSkin, FixBrokenCarSkin}
	}

	out := make([]CopyParams, 0, len(fixes))
	for _, fix := range fixes {
		p := base
		if fix == FixBrokenCarSkin {
			p.Name += brokenSuffix
			p.XOffset = carSkinWidth / 2
		}
		if e.Clut.Colors() > 0 {
			raw, err := c.Tail(int(e.PalettePosition))
			if err != nil {
				return nil, errors.WithMessagef(err, "texture %s palette", p.Name)
			}
			if p.Palette, err = FixPalette(raw, e.Clut, fix); err != nil {
				return nil, errors.WithMessagef(err, "texture %s", p.Name)
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// MenuParams builds the copy parameters for every header of a menu list.
// Diffuse lists carry raw RGBA8 pixels, paletted lists carry 256-colour
// indices with one palette per header in a shared palette block.
func MenuParams(c *ubr.Container, m table.MenuTextures) ([]CopyParams, error) {
	before := m.List - ubr.BlockHeaderSize
	listSize, err := c.Int(m.List + 8)
	if err != nil {
		return nil, errors.WithMessage(err, "menu list size")
	}
	dataSize, err := c.Int(before + 8)
	if err != nil {
		return nil, errors.WithMessage(err, "menu data size")
	}
	paletteAddr := listSize + dataSize + before

	out := make([]CopyParams, 0, len(m.Headers))
	for _, h := range m.Headers {
		w, ht := int(h.Width), int(h.Height)
		name := registry.BaseName(h.Path)
		if err := checkSize(name, w, ht); err != nil {
			return nil, err
		}
		p := CopyParams{
			Name:         name,
			InputWidth:   w,
			InputHeight:  ht,
			OutputWidth:  w,
			OutputHeight: ht,
			ExportWidth:  w,
			ExportHeight: ht,
		}
		pos := m.List + listSize + int(h.Unknown0) - ubr.BlockHeaderSize

		if !m.Paletted {
			if p.Input, err = c.Slice(pos, w*ht*4); err != nil {
				return nil, errors.WithMessagef(err, "menu texture %s", p.Name)
			}
			out = append(out, p)
			continue
		}

		p.Clut = table.Clut256
		if p.Input, err = c.Tail(pos); err != nil {
			return nil, errors.WithMessagef(err, "menu texture %s", p.Name)
		}
		raw, err := c.Tail(paletteAddr + menuPaletteLen*int(h.IndexInDataChunk))
		if err != nil {
			return nil, errors.WithMessagef(err, "menu texture %s palette", p.Name)
		}
		if p.Palette, err = FixPalette(raw, table.Clut256, FixNormal); err != nil {
			return nil, errors.WithMessagef(err, "menu texture %s", p.Name)
		}
		out = append(out, p)
	}
	return out, nil
}
