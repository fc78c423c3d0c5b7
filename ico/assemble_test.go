// exeico by John Chadwick <john@jchw.io>
//
// To the extent possible under law, the person who associated CC0 with
// exeico has waived all copyright and related or neighboring rights
// to exeico.
//
// You should have received a copy of the CC0 legalcode along with this
// work.  If not, see <http://creativecommons.org/publicdomain/zero/1.0/>.

package ico_test

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/jchv/exeico/ico"
	"github.com/jchv/exeico/pe"
	goico "github.com/sergeymakinen/go-ico"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseICO reads the directory of an ICO file.
func parseICO(t *testing.T, b []byte) (pe.GroupIconDirectory, []ico.IconDirectoryEntry) {
	t.Helper()
	r := bytes.NewReader(b)
	var dir pe.GroupIconDirectory
	require.NoError(t, binary.Read(r, binary.LittleEndian, &dir))
	entries := make([]ico.IconDirectoryEntry, dir.Count)
	require.NoError(t, binary.Read(r, binary.LittleEndian, entries))
	return dir, entries
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 8), G: uint8(y * 8), B: 0x40, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAssemble(t *testing.T) {
	payloads := map[uint16][]byte{
		10: bytes.Repeat([]byte{0xaa}, 40),
		11: bytes.Repeat([]byte{0xbb}, 1000),
		12: bytes.Repeat([]byte{0xcc}, 7),
	}
	g := &pe.GroupIcon{
		GroupIconDirectory: pe.GroupIconDirectory{Type: 1, Count: 3},
		Entries: []pe.GroupIconDirectoryEntry{
			{Width: 16, Height: 16, NumPlanes: 1, BPP: 4, ColorCount: 16, ImageSize: 40, ResourceID: 10},
			{Width: 0, Height: 0, NumPlanes: 1, BPP: 32, ImageSize: 1000, ResourceID: 11},
			// A lying ImageSize is replaced by the real length.
			{Width: 48, Height: 48, NumPlanes: 1, BPP: 8, ImageSize: 9999, ResourceID: 12},
		},
	}
	lookup := func(id uint16) ([]byte, bool) {
		b, ok := payloads[id]
		return b, ok
	}

	b, err := ico.Assemble(g, lookup)
	require.NoError(t, err)

	dir, entries := parseICO(t, b)
	assert.Equal(t, uint16(0), dir.Reserved)
	assert.Equal(t, uint16(1), dir.Type)
	require.Len(t, entries, 3)

	offset := uint32(ico.SizeOfIconDirectory + 3*ico.SizeOfIconDirectoryEntry)
	for i, e := range entries {
		src := g.Entries[i]
		payload := payloads[src.ResourceID]
		assert.Equal(t, src.Width, e.Width)
		assert.Equal(t, src.Height, e.Height)
		assert.Equal(t, src.ColorCount, e.ColorCount)
		assert.Equal(t, src.BPP, e.BitCount)
		assert.Equal(t, uint32(len(payload)), e.ImageSize)
		assert.Equal(t, offset, e.ImageOffset)
		assert.Equal(t, payload, b[e.ImageOffset:e.ImageOffset+e.ImageSize])
		offset += e.ImageSize
	}
	assert.Equal(t, int(offset), len(b))
}

func TestAssembleMissingIcon(t *testing.T) {
	g := &pe.GroupIcon{Entries: []pe.GroupIconDirectoryEntry{{ResourceID: 3}}}
	_, err := ico.Assemble(g, func(uint16) ([]byte, bool) { return nil, false })
	var missing *ico.MissingIconError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, uint16(3), missing.ID)
}

func TestAssembleDecodes(t *testing.T) {
	payload := pngBytes(t, 32, 32)
	g := &pe.GroupIcon{
		GroupIconDirectory: pe.GroupIconDirectory{Type: 1, Count: 1},
		Entries: []pe.GroupIconDirectoryEntry{
			{Width: 32, Height: 32, NumPlanes: 1, BPP: 32, ImageSize: uint32(len(payload)), ResourceID: 1},
		},
	}
	b, err := ico.Assemble(g, func(uint16) ([]byte, bool) { return payload, true })
	require.NoError(t, err)

	img, err := goico.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 32), img.Bounds())
}

func TestAssembleDecodesEveryEntry(t *testing.T) {
	sources := []struct {
		img  image.Image
		nbit int
	}{
		{paletted(grays(16)), 4},
		{truecolor(false), 24},
		{truecolor(true), 32},
	}
	payloads := map[uint16][]byte{}
	g := &pe.GroupIcon{GroupIconDirectory: pe.GroupIconDirectory{Type: 1}}
	for i, src := range sources {
		dib, err := ico.NewDIB(src.img, nil, src.nbit)
		require.NoError(t, err)
		b, err := dib.Bytes()
		require.NoError(t, err)
		id := uint16(i + 1)
		payloads[id] = b
		g.Entries = append(g.Entries, pe.GroupIconDirectoryEntry{
			Width:      uint8(dib.IconGroupWidth()),
			Height:     uint8(dib.IconGroupHeight()),
			ColorCount: uint8(dib.NumColors()),
			NumPlanes:  1,
			BPP:        uint16(dib.BPP()),
			ImageSize:  uint32(len(b)),
			ResourceID: id,
		})
	}
	payloads[4] = pngBytes(t, 32, 32)
	g.Entries = append(g.Entries, pe.GroupIconDirectoryEntry{
		Width: 32, Height: 32, NumPlanes: 1, BPP: 32, ImageSize: uint32(len(payloads[4])), ResourceID: 4,
	})
	g.Count = uint16(len(g.Entries))

	b, err := ico.Assemble(g, func(id uint16) ([]byte, bool) {
		p, ok := payloads[id]
		return p, ok
	})
	require.NoError(t, err)

	// The decoder finds every payload through the directory's size and
	// offset fields, so each image must come back whole.
	images, err := goico.DecodeAll(bytes.NewReader(b))
	require.NoError(t, err)
	require.Len(t, images, len(g.Entries))

	for i, got := range images {
		e := g.Entries[i]
		want, err := ico.DecodeImage(payloads[e.ResourceID])
		require.NoError(t, err)
		require.Equal(t, want.Bounds(), got.Bounds(), "entry %d", i)
		if e.BPP == 32 && i < len(sources) {
			continue
		}
		for y := 0; y < want.Bounds().Dy(); y++ {
			for x := 0; x < want.Bounds().Dx(); x++ {
				wr, wg, wb, wa := want.At(x, y).RGBA()
				gr, gg, gb, ga := got.At(x, y).RGBA()
				assert.Equal(t, []uint32{wr, wg, wb, wa}, []uint32{gr, gg, gb, ga}, "entry %d at %d,%d", i, x, y)
			}
		}
	}

	p, ok := images[0].(*image.Paletted)
	require.True(t, ok, "4bpp entry decodes as %T", images[0])
	assert.Len(t, p.Palette, 16)
}
