package export

import (
	"context"
	"image"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"dda-extractor/internal/texture"
)

// ImageInfo describes one written texture.
type ImageInfo struct {
	Name     string  `json:"name"`
	File     string  `json:"file"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Average  string  `json:"average,omitempty"`
	Coverage float64 `json:"coverage"`
}

// TextureOptions controls texture output.
type TextureOptions struct {
	Format  Format
	Scale   int
	Filter  Filter
	Workers int
	// Overwrite replaces existing files instead of numbering around them.
	Overwrite bool
}

// WriteImage encodes img to path, creating parent folders.
func WriteImage(path string, img image.Image, f Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create output folder")
	}
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create image")
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		return errors.WithMessage(err, path)
	}
	return errors.Wrap(out.Close(), path)
}

// Textures expands every texture and writes it into dir. Textures that cannot
// be expanded are returned in failed and the rest are still written; a write
// error stops the export.
func Textures(ctx context.Context, dir string, params []texture.CopyParams, opts TextureOptions) (written []ImageInfo, failed []error, err error) {
	if opts.Format == "" {
		opts.Format = PNG
	}
	namer := NewNamer(dir, opts.Overwrite)
	infos := make([]*ImageInfo, len(params))
	errs := make([]error, len(params))

	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i := range params {
		p := params[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := texture.Expand(p)
			if err != nil {
				errs[i] = err
				return nil
			}
			if img.Bounds().Empty() {
				errs[i] = errors.Errorf("texture %s: empty image", p.Name)
				return nil
			}
			img = Upscale(img, opts.Scale, opts.Filter)

			path := namer.Reserve(p.Name, opts.Format.Ext())
			if err := WriteImage(path, img, opts.Format); err != nil {
				return err
			}
			info := Describe(img)
			info.Name = p.Name
			info.File = filepath.Base(path)
			infos[i] = &info
			return nil
		})
	}
	err = g.Wait()

	for i := range params {
		if infos[i] != nil {
			written = append(written, *infos[i])
		}
		if errs[i] != nil {
			failed = append(failed, errs[i])
		}
	}
	return written, failed, err
}

// Describe measures img: its size, the alpha-weighted average colour of its
// visible texels, and the fraction of texels that are not fully transparent.
func Describe(img *image.NRGBA) ImageInfo {
	b := img.Bounds()
	info := ImageInfo{Width: b.Dx(), Height: b.Dy()}

	var r, g, bl, weight float64
	visible := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			a := float64(img.Pix[i+3]) / 255
			if a == 0 {
				continue
			}
			visible++
			c := colorful.Color{R: float64(img.Pix[i]) / 255, G: float64(img.Pix[i+1]) / 255, B: float64(img.Pix[i+2]) / 255}
			lr, lg, lb := c.LinearRgb()
			r += lr * a
			g += lg * a
			bl += lb * a
			weight += a
		}
	}
	if n := b.Dx() * b.Dy(); n > 0 {
		info.Coverage = float64(visible) / float64(n)
	}
	if weight > 0 {
		info.Average = colorful.LinearRgb(r/weight, g/weight, bl/weight).Clamped().Hex()
	}
	return info
}
