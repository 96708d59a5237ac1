package texture

import (
	"image"
	"image/color"

	"github.com/pkg/errors"

	"dda-extractor/internal/table"
	"dda-extractor/internal/ubr"
)

// maxPixels bounds the export size of a single texture.
const maxPixels = 1 << 24

// CopyParams describes how to turn one texture's indexed data into an image.
// Widths of 16-colour textures count bytes, not pixels: each byte holds two.
type CopyParams struct {
	Name    string
	Clut    table.ClutKind
	Input   []byte // aliases the container
	Palette Palette

	InputWidth, InputHeight   int // with mipmaps
	OutputWidth, OutputHeight int // without mipmaps
	ExportWidth, ExportHeight int

	XOffset, YOffset int
}

// Expand decodes p into an image of the export size. Textures without a
// palette are copied as raw RGBA8, or left blank when they carry no data.
func Expand(p CopyParams) (*image.NRGBA, error) {
	if err := checkSize(p.Name, p.ExportWidth, p.ExportHeight); err != nil {
		return nil, err
	}
	if err := checkSize(p.Name, p.OutputWidth, p.OutputHeight); err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, p.ExportWidth, p.ExportHeight))

	var perByte int
	switch p.Clut {
	case table.Clut256:
		perByte = 1
	case table.Clut16:
		perByte = 2
	default:
		copy(img.Pix, p.Input)
		return img, nil
	}

	if need := p.OutputWidth * p.OutputHeight * perByte * 4; need > len(img.Pix) {
		return nil, errors.Wrapf(ubr.ErrCorruptContainer, "texture %s: %dx%d output exceeds %dx%d export",
			p.Name, p.OutputWidth*perByte, p.OutputHeight, p.ExportWidth, p.ExportHeight)
	}
	if len(p.Palette) < p.Clut.Colors() {
		return nil, errors.Errorf("texture %s: palette has %d colours, want %d", p.Name, len(p.Palette), p.Clut.Colors())
	}

	pix := img.Pix
	for y := 0; y < p.OutputHeight; y++ {
		for x := 0; x < p.OutputWidth; x++ {
			in := (x + p.XOffset) + (y+p.YOffset)*p.InputWidth
			if in < 0 || in >= len(p.Input) {
				return nil, errors.Wrapf(ubr.ErrCorruptContainer, "texture %s: pixel (%d,%d) reads byte %d of %d", p.Name, x, y, in, len(p.Input))
			}
			id := p.Input[in]
			out := (x + y*p.OutputWidth) * perByte * 4
			if perByte == 1 {
				put(pix[out:], p.Palette[id])
				continue
			}
			put(pix[out:], p.Palette[id&0x0F])
			put(pix[out+4:], p.Palette[id>>4])
		}
	}
	return img, nil
}

// checkSize rejects negative sizes and sizes above maxPixels. Each side is
// bounded before the product is taken so the product cannot overflow.
func checkSize(name string, w, h int) error {
	if w < 0 || h < 0 || w > maxPixels || h > maxPixels || w*h > maxPixels {
		return errors.Wrapf(ubr.ErrCorruptContainer, "texture %s: size %dx%d", name, w, h)
	}
	return nil
}

// put stores c, doubling the 0..128 hardware alpha.
func put(dst []byte, c color.NRGBA) {
	dst[0] = c.R
	dst[1] = c.G
	dst[2] = c.B
	dst[3] = doubleAlpha(c.A)
}

func doubleAlpha(a uint8) uint8 {
	if a >= 0x80 {
		return 0xFF
	}
	return a * 2
}
