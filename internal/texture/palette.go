package texture

import (
	"image/color"

	"github.com/pkg/errors"

	"dda-extractor/internal/table"
	"dda-extractor/internal/ubr"
)

// FixKind selects the palette layout variant.
type FixKind int

const (
	FixNormal FixKind = iota
	// FixCarSkin and FixBrokenCarSkin pick one of the two 256-colour palettes
	// stored interleaved in 16-colour blocks for 512-wide car skins.
	FixCarSkin
	FixBrokenCarSkin
)

func (k FixKind) String() string {
	switch k {
	case FixCarSkin:
		return "car-skin"
	case FixBrokenCarSkin:
		return "broken-car-skin"
	}
	return "normal"
}

// Palette is a linear colour lookup table. Alpha is still in the 0..128
// hardware range; Expand doubles it.
type Palette []color.NRGBA

// Permutation returns, for each logical palette index, the index of the
// physical colour it is read from. The map does not depend on palette data.
func Permutation(clut table.ClutKind, fix FixKind) []int {
	switch clut {
	case table.Clut16:
		p := make([]int, 16)
		for i := 0; i < 8; i++ {
			p[i] = i
			p[8+i] = 16 + i
		}
		return p
	case table.Clut256:
		p := clut256Permutation()
		if fix == FixCarSkin || fix == FixBrokenCarSkin {
			skin := 0
			if fix == FixBrokenCarSkin {
				skin = 16
			}
			for i, v := range p {
				p[i] = 32*(v/16) + v%16 + skin
			}
		}
		return p
	}
	return nil
}

// clut256Permutation swaps the two middle runs of 8 colours in every stride
// of 32. The first and last 8 colours keep their place.
func clut256Permutation() []int {
	p := make([]int, 256)
	for i := 0; i < 8; i++ {
		p[i] = i
		p[248+i] = 248 + i
	}
	const steps = 8
	for step := 0; step < steps; step++ {
		base := 32 * step
		for i := 0; i < 8; i++ {
			p[base+16+i] = base + 8 + i
			p[base+8+i] = base + 16 + i
		}
		if step == steps-1 {
			continue
		}
		for i := 0; i < 16; i++ {
			p[base+24+i] = base + 24 + i
		}
	}
	return p
}

// SourceColors is the number of physical colours a palette of this kind
// spans in the container.
func SourceColors(clut table.ClutKind, fix FixKind) int {
	n := 0
	for _, v := range Permutation(clut, fix) {
		if v+1 > n {
			n = v + 1
		}
	}
	return n
}

// FixPalette reorders raw RGBA8 palette bytes into a linear palette.
func FixPalette(raw []byte, clut table.ClutKind, fix FixKind) (Palette, error) {
	perm := Permutation(clut, fix)
	if perm == nil {
		return nil, nil
	}
	if need := SourceColors(clut, fix) * 4; len(raw) < need {
		return nil, errors.Wrapf(ubr.ErrCorruptContainer, "%v palette: need %d bytes, have %d", clut, need, len(raw))
	}
	pal := make(Palette, len(perm))
	for i, src := range perm {
		o := src * 4
		pal[i] = color.NRGBA{R: raw[o], G: raw[o+1], B: raw[o+2], A: raw[o+3]}
	}
	return pal, nil
}
