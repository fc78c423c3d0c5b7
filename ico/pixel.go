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
	"image"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// ConvertChannelOrder swaps the first and third byte of every 4-byte pixel
// in place, turning BGRA into RGBA and back again. The buffer is handled
// in groups of four pixels; a trailing group shorter than 16 bytes keeps
// its original order.
func ConvertChannelOrder(b []byte) {
	n := len(b) &^ 15
	for i := 0; i < n; i += 16 {
		g := b[i : i+16 : i+16]
		g[0], g[2] = g[2], g[0]
		g[4], g[6] = g[6], g[4]
		g[8], g[10] = g[10], g[8]
		g[12], g[14] = g[14], g[12]
	}
}

// PixelBuffer is a top-down image with four bytes per pixel. The channel
// order depends on where the buffer came from: renderers produce BGRA,
// Encode expects RGBA.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []byte
}

// Validate checks that Pix holds exactly Width*Height pixels.
func (p PixelBuffer) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return errors.Errorf("bad pixel buffer dimensions %dx%d", p.Width, p.Height)
	}
	if len(p.Pix) != p.Width*p.Height*4 {
		return errors.Errorf("pixel buffer holds %d bytes, want %d for %dx%d", len(p.Pix), p.Width*p.Height*4, p.Width, p.Height)
	}
	return nil
}

// ConvertChannelOrder applies ConvertChannelOrder to the whole buffer,
// including a final group of fewer than four pixels.
func (p *PixelBuffer) ConvertChannelOrder() {
	if len(p.Pix)%16 == 0 {
		ConvertChannelOrder(p.Pix)
		return
	}
	padded := make([]byte, (len(p.Pix)+15)&^15)
	copy(padded, p.Pix)
	ConvertChannelOrder(padded)
	copy(p.Pix, padded)
}

// Image wraps an RGBA buffer without copying it.
func (p PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    p.Pix,
		Stride: p.Width * 4,
		Rect:   image.Rect(0, 0, p.Width, p.Height),
	}
}

// FromImage copies img into an RGBA buffer.
func FromImage(img image.Image) PixelBuffer {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return PixelBuffer{Width: b.Dx(), Height: b.Dy(), Pix: dst.Pix}
}
