package export

import (
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"
)

// Format is an output image encoding.
type Format string

const (
	PNG  Format = "png"
	WebP Format = "webp"
	TGA  Format = "tga"
)

// ParseFormat accepts a format name or extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(s), ".")); f {
	case PNG, WebP, TGA:
		return f, nil
	case "":
		return PNG, nil
	}
	return "", errors.Errorf("unknown image format %q (want png, webp or tga)", s)
}

// Ext returns the file extension with its dot.
func (f Format) Ext() string { return "." + string(f) }

// Encode writes img to w.
func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case PNG:
		err = png.Encode(w, img)
	case WebP:
		err = nativewebp.Encode(w, img, nil)
	case TGA:
		err = tga.Encode(w, img)
	default:
		return errors.Errorf("unknown image format %q", f)
	}
	return errors.Wrapf(err, "%s encode", f)
}
