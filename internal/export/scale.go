package export

import (
	"image"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// Filter selects the resampling kernel used by Upscale.
type Filter string

const (
	Nearest Filter = "nearest"
	Smooth  Filter = "smooth"
)

// ParseFilter accepts a filter name; empty selects Nearest.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case "":
		return Nearest, nil
	case Nearest, Smooth:
		return f, nil
	}
	return "", errors.Errorf("unknown filter %q (want nearest or smooth)", s)
}

// Upscale enlarges img by an integer factor. Factors below 2 return img.
func Upscale(img *image.NRGBA, factor int, f Filter) *image.NRGBA {
	if factor < 2 {
		return img
	}
	b := img.Bounds()
	r := image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor)
	if f != Smooth {
		dst := image.NewNRGBA(r)
		draw.NearestNeighbor.Scale(dst, r, img, b, draw.Src, nil)
		return dst
	}

	// Premultiply so transparent texels do not bleed dark fringes.
	premul := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := img.PixOffset(x, y)
			di := premul.PixOffset(x, y)
			a := float64(img.Pix[si+3]) / 255.0
			premul.Pix[di] = uint8(float64(img.Pix[si])*a + 0.5)
			premul.Pix[di+1] = uint8(float64(img.Pix[si+1])*a + 0.5)
			premul.Pix[di+2] = uint8(float64(img.Pix[si+2])*a + 0.5)
			premul.Pix[di+3] = img.Pix[si+3]
		}
	}

	scaled := image.NewRGBA(r)
	draw.CatmullRom.Scale(scaled, r, premul, b, draw.Src, nil)

	out := image.NewNRGBA(r)
	for i := 0; i < len(scaled.Pix); i += 4 {
		a := float64(scaled.Pix[i+3])
		if a > 1 {
			inv := 255.0 / a
			out.Pix[i] = clamp8(float64(scaled.Pix[i]) * inv)
			out.Pix[i+1] = clamp8(float64(scaled.Pix[i+1]) * inv)
			out.Pix[i+2] = clamp8(float64(scaled.Pix[i+2]) * inv)
		}
		out.Pix[i+3] = scaled.Pix[i+3]
	}
	return out
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
