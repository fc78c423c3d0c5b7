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
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/pkg/errors"
)

type BitmapInfoHeaderV3 struct {
	Size            uint32
	Width           int32
	Height          int32
	Planes          int16
	BPP             int16
	Compression     uint32
	ImageSize       uint32
	XPixelsPerMeter int32
	YPixelsPerMeter int32
	ColorsUsed      uint32
	ColorsImportant uint32
}

const SizeOfBitmapInfoHeaderV3 = 40

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// DIB is an icon image laid out the way RT_ICON resources and ICO
// payloads store it: a BITMAPINFOHEADER with doubled height, an optional
// palette, bottom-up color scanlines, then a 1bpp AND mask.
type DIB struct {
	width, height  int
	bpp, numColors int
	palette        color.Palette

	headerSize         int
	paletteSize        int
	scanlineStride     int
	maskScanlineStride int

	size int

	image, mask image.Image
}

// NewDIB prepares img for writing. Paletted images become 1, 4 or 8 bpp
// depending on the palette size, images with transparency 32 bpp and the
// rest 24 bpp, or 16 bpp when nbit asks for it. A non-zero nbit that
// disagrees with the chosen depth is an error. White pixels of mask mark
// transparent pixels in the AND mask; a nil mask is derived from alpha.
func NewDIB(img image.Image, mask image.Image, nbit int) (*DIB, error) {
	w := DIB{image: img, mask: mask}
	w.width = img.Bounds().Dx()
	w.height = img.Bounds().Dy()
	if w.mask == nil {
		w.mask = AlphaMask(img)
	}
	w.bpp = 24
	if palette, ok := img.ColorModel().(color.Palette); ok {
		w.palette = palette
		w.numColors = len(palette)
		switch {
		case w.numColors <= 2:
			w.bpp = 1
		case w.numColors <= 16:
			w.bpp = 4
		default:
			w.bpp = 8
		}
	} else {
	checkAlpha:
		for y := 0; y < w.height; y++ {
			for x := 0; x < w.width; x++ {
				_, _, _, a := img.At(img.Bounds().Min.X+x, img.Bounds().Min.Y+y).RGBA()
				if a < 0xffff {
					w.bpp = 32
					break checkAlpha
				}
			}
		}
		// Downgrade to 16bpp if possible.
		if w.bpp == 24 && nbit == 16 {
			w.bpp = 16
		}
	}
	if nbit != 0 && w.bpp != nbit {
		return nil, errors.Errorf("expected %d bits, got %d", nbit, w.bpp)
	}

	w.headerSize = SizeOfBitmapInfoHeaderV3
	w.paletteSize = 4 * w.numColors
	w.scanlineStride = bppstride(w.width, w.bpp)
	w.maskScanlineStride = bppstride(w.width, 1)
	w.size = w.headerSize + w.paletteSize + w.scanlineStride*w.height + w.maskScanlineStride*w.height
	return &w, nil
}

func (d *DIB) BPP() int       { return d.bpp }
func (d *DIB) NumColors() int { return d.numColors }
func (d *DIB) Size() int      { return d.size }

func (d *DIB) IconGroupWidth() int {
	if d.width >= 256 {
		return 0
	}
	return d.width
}

func (d *DIB) IconGroupHeight() int {
	if d.height >= 256 {
		return 0
	}
	return d.height
}

// Bytes returns the encoded DIB.
func (d *DIB) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(d.size)
	if err := d.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *DIB) Write(w io.Writer) error {
	iconScanline := make([]byte, d.scanlineStride)
	iconMaskScanline := make([]byte, d.maskScanlineStride)
	origin := d.image.Bounds().Min
	at := func(x, y int) color.Color { return d.image.At(origin.X+x, origin.Y+y) }

	// Icon data
	if err := binary.Write(w, binary.LittleEndian, BitmapInfoHeaderV3{
		Size:            uint32(SizeOfBitmapInfoHeaderV3),
		Width:           int32(d.width),
		Height:          int32(d.height * 2),
		Planes:          1,
		BPP:             int16(d.bpp),
		Compression:     0,
		ImageSize:       uint32(d.scanlineStride*d.height + d.maskScanlineStride*d.height),
		XPixelsPerMeter: 2835,
		YPixelsPerMeter: 2835,
		ColorsUsed:      uint32(d.numColors),
		ColorsImportant: uint32(d.numColors),
	}); err != nil {
		return errors.Wrap(err, "writing icon dib header")
	}

	dibPalette := make([][4]byte, len(d.palette))
	for i := range dibPalette {
		r, g, b, _ := d.palette[i].RGBA()
		dibPalette[i][0] = byte(b / 0x100)
		dibPalette[i][1] = byte(g / 0x100)
		dibPalette[i][2] = byte(r / 0x100)
		dibPalette[i][3] = 0
	}
	if err := binary.Write(w, binary.LittleEndian, dibPalette); err != nil {
		return errors.Wrap(err, "writing dib palette")
	}

	for y := d.height - 1; y >= 0; y-- {
		switch d.bpp {
		case 1, 4, 8:
			indexed, ok := d.image.(*image.Paletted)
			if !ok {
				return errors.Errorf("%dbpp requires a paletted image", d.bpp)
			}
			packIndexed(iconScanline, d.width, d.bpp, func(x int) uint8 {
				return indexed.ColorIndexAt(origin.X+x, origin.Y+y)
			})
		case 16:
			for x := 0; x < d.width; x++ {
				r, g, b, _ := at(x, y).RGBA()
				rgb555 := (r>>11)<<10 | (g>>11)<<5 | (b >> 11)
				iconScanline[x*2+0] = byte(rgb555 & 0xff)
				iconScanline[x*2+1] = byte(rgb555 >> 8)
			}
		case 24:
			for x := 0; x < d.width; x++ {
				r, g, b, _ := at(x, y).RGBA()
				iconScanline[x*3+0] = byte(b >> 8)
				iconScanline[x*3+1] = byte(g >> 8)
				iconScanline[x*3+2] = byte(r >> 8)
			}
		case 32:
			for x := 0; x < d.width; x++ {
				c := color.NRGBAModel.Convert(at(x, y)).(color.NRGBA)
				iconScanline[x*4+0] = c.B
				iconScanline[x*4+1] = c.G
				iconScanline[x*4+2] = c.R
				iconScanline[x*4+3] = c.A
			}
		}
		if _, err := w.Write(iconScanline); err != nil {
			return errors.Wrapf(err, "writing %dbpp scanline", d.bpp)
		}
	}

	maskMin := d.mask.Bounds().Min
	for y := d.height - 1; y >= 0; y-- {
		packIndexed(iconMaskScanline, d.width, 1, func(x int) uint8 {
			return threshold(d.mask.At(maskMin.X+x, maskMin.Y+y))
		})
		if _, err := w.Write(iconMaskScanline); err != nil {
			return errors.Wrap(err, "writing 1bpp mask scanline")
		}
	}
	return nil
}

// packIndexed packs width indices of bpp bits each, most significant
// first, into scanline.
func packIndexed(scanline []byte, width, bpp int, index func(x int) uint8) {
	clear(scanline)
	perByte := 8 / bpp
	for x := 0; x < width; x++ {
		shift := uint(8 - bpp*(x%perByte+1))
		scanline[x/perByte] |= index(x) << shift
	}
}

func bppstride(w, bpp int) int {
	return (((w * bpp) + 31) &^ 31) / 8
}

func threshold(c color.Color) uint8 {
	r, g, b, _ := c.RGBA()
	if r+g+b >= 0x18000 {
		return 1
	}
	return 0
}

// AlphaMask is white wherever img is fully transparent, the form NewDIB
// expects for its mask argument.
func AlphaMask(img image.Image) image.Image {
	b := img.Bounds()
	mask := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a == 0 {
				mask.SetGray(x, y, color.Gray{Y: 0xff})
			}
		}
	}
	return mask
}

// DecodeImage decodes an RT_ICON payload or ICO entry, which is either a
// PNG stream or a DIB.
func DecodeImage(b []byte) (image.Image, error) {
	if bytes.HasPrefix(b, pngSignature) {
		img, err := png.Decode(bytes.NewReader(b))
		return img, errors.Wrap(err, "decoding PNG icon")
	}
	return DecodeDIB(b)
}

// MaxDIBEdge bounds the width and height DecodeDIB accepts. Icon DIBs are
// at most 256 pixels across; larger icons are stored as PNG.
const MaxDIBEdge = 1024

// DecodeDIB decodes an uncompressed icon DIB. Pixels set in the AND mask
// become transparent, except in 32bpp images that carry their own alpha.
func DecodeDIB(b []byte) (*image.NRGBA, error) {
	var h BitmapInfoHeaderV3
	if len(b) < SizeOfBitmapInfoHeaderV3 {
		return nil, errors.Wrap(io.ErrUnexpectedEOF, "reading dib header")
	}
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(err, "reading dib header")
	}
	if h.Size < SizeOfBitmapInfoHeaderV3 || int64(h.Size) > int64(len(b)) {
		return nil, errors.Errorf("bad dib header size %d", h.Size)
	}
	if h.Compression != 0 {
		return nil, errors.Errorf("unsupported dib compression %d", h.Compression)
	}
	width, height := int(h.Width), int(h.Height)/2
	if width <= 0 || height <= 0 || width > MaxDIBEdge || height > MaxDIBEdge {
		return nil, errors.Errorf("bad dib dimensions %dx%d", h.Width, h.Height)
	}

	bpp := int(h.BPP)
	numColors := 0
	switch bpp {
	case 1, 4, 8:
		numColors = 1 << bpp
		if h.ColorsUsed != 0 && int(h.ColorsUsed) < numColors {
			numColors = int(h.ColorsUsed)
		}
	case 16, 24, 32:
	default:
		return nil, errors.Errorf("unsupported dib depth %d", bpp)
	}

	off := int(h.Size)
	if len(b)-off < numColors*4 {
		return nil, errors.Wrap(io.ErrUnexpectedEOF, "reading dib palette")
	}
	palette := make([]color.NRGBA, numColors)
	for i := range palette {
		p := b[off+i*4:]
		palette[i] = color.NRGBA{R: p[2], G: p[1], B: p[0], A: 0xff}
	}
	off += numColors * 4

	stride := bppstride(width, bpp)
	maskStride := bppstride(width, 1)
	if len(b)-off < stride*height {
		return nil, errors.Wrap(io.ErrUnexpectedEOF, "reading dib pixels")
	}
	pixels := b[off : off+stride*height]
	var mask []byte
	if rest := b[off+stride*height:]; len(rest) >= maskStride*height {
		mask = rest[:maskStride*height]
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	hasAlpha := false
	for y := 0; y < height; y++ {
		row := pixels[(height-1-y)*stride:]
		for x := 0; x < width; x++ {
			var c color.NRGBA
			switch bpp {
			case 1, 4, 8:
				perByte := 8 / bpp
				shift := uint(8 - bpp*(x%perByte+1))
				i := int(row[x/perByte]>>shift) & (1<<bpp - 1)
				if i < len(palette) {
					c = palette[i]
				} else {
					c = color.NRGBA{A: 0xff}
				}
			case 16:
				v := uint16(row[x*2]) | uint16(row[x*2+1])<<8
				c = color.NRGBA{R: expand5(v >> 10), G: expand5(v >> 5), B: expand5(v), A: 0xff}
			case 24:
				c = color.NRGBA{R: row[x*3+2], G: row[x*3+1], B: row[x*3], A: 0xff}
			case 32:
				c = color.NRGBA{R: row[x*4+2], G: row[x*4+1], B: row[x*4], A: row[x*4+3]}
				hasAlpha = hasAlpha || c.A != 0
			}
			img.SetNRGBA(x, y, c)
		}
	}

	if mask == nil || hasAlpha {
		if bpp == 32 && !hasAlpha {
			opaque(img)
		}
		return img, nil
	}
	for y := 0; y < height; y++ {
		row := mask[(height-1-y)*maskStride:]
		for x := 0; x < width; x++ {
			if row[x/8]&(0x80>>uint(x%8)) != 0 {
				img.SetNRGBA(x, y, color.NRGBA{})
			} else if bpp == 32 {
				img.Pix[img.PixOffset(x, y)+3] = 0xff
			}
		}
	}
	return img, nil
}

func expand5(v uint16) uint8 {
	v &= 0x1f
	return uint8(v<<3 | v>>2)
}

func opaque(img *image.NRGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
}
