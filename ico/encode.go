// exeico by John Chadwick <john@jchw.io>
//
// To the extent possible under law, the person who associated CC0 with
// exeico has waived all copyright and related or neighboring rights
// to exeico.
//
// You should have received a copy of the CC0 legalcode along with this
// work.  If not, see <http://creativecommons.org/publicdomain/zero/1.0/>.

package ico

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/pkg/errors"
	goico "github.com/sergeymakinen/go-ico"
	"golang.org/x/image/draw"
)

// Format is an output container.
type Format int

const (
	PNG Format = iota
	ICO
)

func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case ICO:
		return "ico"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Ext is the file extension for f, with the dot.
func (f Format) Ext() string { return "." + f.String() }

// ParseFormat accepts "png" or "ico" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "png":
		return PNG, nil
	case "ico":
		return ICO, nil
	}
	return 0, errors.Errorf("unknown image format %q", s)
}

// EncodeError wraps a codec failure for one image.
type EncodeError struct {
	Format Format
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encoding %s: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DefaultMaxIconSize is the largest edge an ICO entry can describe.
const DefaultMaxIconSize = 256

// Encoder serializes RGBA pixel buffers.
type Encoder struct {
	// MaxIconSize bounds the edges of ICO output; larger images are scaled
	// down, keeping their aspect ratio. Zero means DefaultMaxIconSize.
	MaxIconSize int
}

// Encode serializes p, which must be in RGBA order, with the zero Encoder.
func Encode(p PixelBuffer, f Format) ([]byte, error) {
	return Encoder{}.Encode(p, f)
}

func (e Encoder) Encode(p PixelBuffer, f Format) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, &EncodeError{Format: f, Err: err}
	}
	var buf bytes.Buffer
	var err error
	switch f {
	case PNG:
		err = png.Encode(&buf, p.Image())
	case ICO:
		err = goico.Encode(&buf, fit(p.Image(), e.maxIconSize()))
	default:
		err = errors.Errorf("unsupported format %s", f)
	}
	if err != nil {
		return nil, &EncodeError{Format: f, Err: err}
	}
	return buf.Bytes(), nil
}

func (e Encoder) maxIconSize() int {
	if e.MaxIconSize <= 0 || e.MaxIconSize > DefaultMaxIconSize {
		return DefaultMaxIconSize
	}
	return e.MaxIconSize
}

// fit scales img down so neither edge exceeds limit.
func fit(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= limit && h <= limit {
		return img
	}
	if w >= h {
		w, h = limit, max(h*limit/w, 1)
	} else {
		w, h = max(w*limit/h, 1), limit
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Rect, img, b, draw.Src, nil)
	return dst
}
