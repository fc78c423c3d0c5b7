// exeico by John Chadwick <john@jchw.io>
//
// To the extent possible under law, the person who associated CC0 with
// exeico has waived all copyright and related or neighboring rights
// to exeico.
//
// You should have received a copy of the CC0 legalcode along with this
// work.  If not, see <http://creativecommons.org/publicdomain/zero/1.0/>.

package mockexe

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"testing"

	"github.com/jchv/exeico/ico"
	"github.com/jchv/exeico/pe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHeadersOnly(t *testing.T) {
	for _, format := range []EXEFormat{PE32, PE32Plus} {
		b, err := Bytes(Spec{Format: format})
		require.NoError(t, err)
		assert.Len(t, b, fileAlignment)
		assert.Equal(t, []byte("MZ"), b[:2])
		assert.Equal(t, uint32(pe.SizeOfImageDOSHeader), binary.LittleEndian.Uint32(b[0x3c:]))
		assert.Equal(t, []byte("PE\x00\x00"), b[pe.SizeOfImageDOSHeader:pe.SizeOfImageDOSHeader+4])
	}
}

func TestBuildAligned(t *testing.T) {
	spec := Spec{
		Format: PE32Plus,
		Groups: []Group{{Name: pe.IntName(1), Images: []Image{{Width: 16, Height: 16, BPP: 32, Data: make([]byte, 1234)}}}},
	}
	b, err := Bytes(spec)
	require.NoError(t, err)
	assert.Zero(t, len(b)%fileAlignment)

	f, err := pe.Open(b)
	require.NoError(t, err)
	require.Len(t, f.Sections, 1)
	s := f.Sections[0]
	assert.Equal(t, uint32(sectionRVA), s.VirtualAddress)
	assert.Equal(t, uint32(fileAlignment), s.PointerToRawData)
	assert.Equal(t, int(s.PointerToRawData+s.SizeOfRawData), len(b))
	dir := f.DataDirectory[pe.ImageDirectoryEntryResource]
	assert.Equal(t, s.PhysicalAddressOrVirtualSize, dir.Size)
}

func TestBuildUnknownFormat(t *testing.T) {
	_, err := Bytes(Spec{Format: EXEFormat(9)})
	assert.Error(t, err)
}

func TestDuplicateResource(t *testing.T) {
	_, err := Bytes(Spec{Groups: []Group{
		{Name: pe.IntName(1), Raw: []byte{0}},
		{Name: pe.IntName(1), Raw: []byte{1}},
	}})
	assert.Error(t, err)
}

func TestIconIDAssignment(t *testing.T) {
	spec := Spec{Groups: []Group{
		{Name: pe.IntName(1), Images: []Image{{Data: []byte("a")}, {ID: 1, Data: []byte("b")}}},
		{Name: pe.IntName(2), Images: []Image{{Data: []byte("c")}}},
	}}
	resources, err := spec.resources()
	require.NoError(t, err)

	icons := map[pe.Name]string{}
	for _, r := range resources {
		if r.Type == pe.IntName(pe.ResourceIcon) {
			icons[r.Name] = string(r.Data)
		}
	}
	assert.Equal(t, map[pe.Name]string{
		pe.IntName(1): "b",
		pe.IntName(2): "a",
		pe.IntName(3): "c",
	}, icons)
}

func TestNameLess(t *testing.T) {
	names := map[pe.Name][]Resource{
		pe.IntName(10):  nil,
		pe.StrName("B"): nil,
		pe.IntName(2):   nil,
		pe.StrName("A"): nil,
	}
	assert.Equal(t, []pe.Name{pe.StrName("A"), pe.StrName("B"), pe.IntName(2), pe.IntName(10)}, sortedNames(names))
}

func TestImageFromDIB(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 256, 256))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetNRGBA(0, 0, color.NRGBA{})
	dib, err := ico.NewDIB(img, nil, 32)
	require.NoError(t, err)

	entry, err := ImageFromDIB(dib)
	require.NoError(t, err)
	assert.Equal(t, 0, entry.Width)
	assert.Equal(t, 0, entry.Height)
	assert.Equal(t, 32, entry.BPP)
	assert.Len(t, entry.Data, dib.Size())

	b, err := Bytes(Spec{Groups: []Group{{Name: pe.StrName("BIG"), Images: []Image{entry}}}})
	require.NoError(t, err)
	f, err := pe.Open(b)
	require.NoError(t, err)
	res, err := f.Resources()
	require.NoError(t, err)
	icon, err := ico.ByOrdinal(res, 0)
	require.NoError(t, err)
	assert.Equal(t, "BIG", icon.ID)
	assert.True(t, bytes.HasSuffix(icon.Data, entry.Data))
}

func TestAlign(t *testing.T) {
	assert.Equal(t, 0, align(0, 8))
	assert.Equal(t, 8, align(1, 8))
	assert.Equal(t, 0x200, align(0x200, 0x200))
	assert.Equal(t, 0x400, align(0x201, 0x200))
}
