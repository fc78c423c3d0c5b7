// exeico by John Chadwick <john@jchw.io>
//
// To the extent possible under law, the person who associated CC0 with
// exeico has waived all copyright and related or neighboring rights
// to exeico.
//
// You should have received a copy of the CC0 legalcode along with this
// work.  If not, see <http://creativecommons.org/publicdomain/zero/1.0/>.

package main

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	_ "image/png"
	"os"
	"strconv"

	"github.com/hashicorp/go-hclog"
	"github.com/jchv/exeico/ico"
	"github.com/jchv/exeico/mockexe"
	"github.com/jchv/exeico/pe"
	"golang.org/x/image/draw"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

func doMock(logger hclog.Logger) {
	src := pattern(256)
	if *mockPNG != "" {
		src = loadImage(*mockPNG)
	}

	group := mockexe.Group{Name: pe.IntName(1)}
	for _, size := range *mockSizes {
		if size <= 0 || size > 256 {
			kingpin.Fatalf("icon size %d out of range 1-256", size)
		}
		dst := image.NewNRGBA(image.Rect(0, 0, size, size))
		draw.CatmullRom.Scale(dst, dst.Rect, src, src.Bounds(), draw.Src, nil)
		img, mask := reduce(dst, *mockBPP)
		dib, err := ico.NewDIB(img, mask, *mockBPP)
		kingpin.FatalIfError(err, "Processing %dx%d image", size, size)
		entry, err := mockexe.ImageFromDIB(dib)
		kingpin.FatalIfError(err, "Encoding %dx%d image", size, size)
		group.Images = append(group.Images, entry)
		logger.Debug("added icon image", "size", size, "bpp", dib.BPP(), "bytes", len(entry.Data))
	}

	spec := mockexe.Spec{Format: mockexe.PE32, Groups: []mockexe.Group{group}}
	if *mockPE32Plus {
		spec.Format = mockexe.PE32Plus
	}
	for key, text := range *mockStrings {
		id, err := strconv.ParseUint(key, 10, 32)
		kingpin.FatalIfError(err, "Bad string ID %q", key)
		if spec.Strings == nil {
			spec.Strings = map[uint32]string{}
		}
		spec.Strings[uint32(id)] = text
	}

	exe, err := mockexe.Bytes(spec)
	kingpin.FatalIfError(err, "Building %s", *mockOut)
	writeFile(*mockOut, exe)
	fmt.Printf("Wrote %s with %d icon images\n", *mockOut, len(group.Images))

	if *mockICO == "" {
		return
	}
	f, err := pe.Open(exe)
	kingpin.FatalIfError(err, "Reparsing %s", *mockOut)
	res, err := f.Resources()
	kingpin.FatalIfError(err, "Reading resources of %s", *mockOut)
	icon, err := ico.ByOrdinal(res, 0)
	kingpin.FatalIfError(err, "Assembling icon")
	writeFile(*mockICO, icon.Data)
	fmt.Printf("Wrote %s\n", *mockICO)
}

// vga16 is the default palette of 4bpp Windows icons.
var vga16 = color.Palette{
	rgb(0x00, 0x00, 0x00), rgb(0x80, 0x00, 0x00),
	rgb(0x00, 0x80, 0x00), rgb(0x80, 0x80, 0x00),
	rgb(0x00, 0x00, 0x80), rgb(0x80, 0x00, 0x80),
	rgb(0x00, 0x80, 0x80), rgb(0xc0, 0xc0, 0xc0),
	rgb(0x80, 0x80, 0x80), rgb(0xff, 0x00, 0x00),
	rgb(0x00, 0xff, 0x00), rgb(0xff, 0xff, 0x00),
	rgb(0x00, 0x00, 0xff), rgb(0xff, 0x00, 0xff),
	rgb(0x00, 0xff, 0xff), rgb(0xff, 0xff, 0xff),
}

// reduce converts img into something NewDIB writes at bpp bits, returning
// the AND mask taken from the original alpha channel.
func reduce(img *image.NRGBA, bpp int) (image.Image, image.Image) {
	mask := ico.AlphaMask(img)
	var p color.Palette
	switch bpp {
	case 1:
		p = color.Palette{color.Black, color.White}
	case 4:
		p = vga16
	case 8:
		p = palette.Plan9
	case 16, 24:
		opaque := image.NewNRGBA(img.Rect)
		draw.Draw(opaque, opaque.Rect, image.Black, image.Point{}, draw.Src)
		draw.Draw(opaque, opaque.Rect, img, img.Rect.Min, draw.Over)
		return opaque, mask
	default:
		return img, mask
	}
	paletted := image.NewPaletted(img.Rect, p)
	draw.FloydSteinberg.Draw(paletted, paletted.Rect, img, img.Rect.Min)
	return paletted, mask
}

func rgb(r, g, b uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

func loadImage(path string) image.Image {
	f, err := os.Open(path)
	kingpin.FatalIfError(err, "Open %s", path)
	defer f.Close()
	img, _, err := image.Decode(f)
	kingpin.FatalIfError(err, "Decoding %s", path)
	return img
}

// pattern draws a colour gradient with a transparent border ring, so every
// bit depth and the AND mask have something to show.
func pattern(size int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			edge := min(x, y, size-1-x, size-1-y)
			if edge < size/16 {
				continue
			}
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / (size - 1)),
				G: uint8(y * 255 / (size - 1)),
				B: uint8(255 - x*255/(size-1)),
				A: 0xff,
			})
		}
	}
	return img
}
