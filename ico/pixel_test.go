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
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/jchv/exeico/ico"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertChannelOrder(t *testing.T) {
	b := []byte{
		0x00, 0x01, 0x02, 0x03,
		0x10, 0x11, 0x12, 0x13,
		0x20, 0x21, 0x22, 0x23,
		0x30, 0x31, 0x32, 0x33,
	}
	ico.ConvertChannelOrder(b)
	assert.Equal(t, []byte{
		0x02, 0x01, 0x00, 0x03,
		0x12, 0x11, 0x10, 0x13,
		0x22, 0x21, 0x20, 0x23,
		0x32, 0x31, 0x30, 0x33,
	}, b)
}

func TestConvertChannelOrderSelfInverse(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for _, n := range []int{0, 16, 64, 4096} {
		orig := make([]byte, n)
		r.Read(orig)
		b := bytes.Clone(orig)
		ico.ConvertChannelOrder(b)
		ico.ConvertChannelOrder(b)
		assert.Equal(t, orig, b, "length %d", n)
	}
}

func TestConvertChannelOrderTrailingGroup(t *testing.T) {
	b := []byte{
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16,
		17, 18, 19, 20, 21, 22, 23, 24,
	}
	ico.ConvertChannelOrder(b)
	assert.Equal(t, []byte{
		3, 2, 1, 4, 7, 6, 5, 8, 11, 10, 9, 12, 15, 14, 13, 16,
		17, 18, 19, 20, 21, 22, 23, 24,
	}, b)
}

func TestPixelBufferConvertChannelOrder(t *testing.T) {
	// Three pixels: fewer than one full group.
	p := ico.PixelBuffer{Width: 3, Height: 1, Pix: []byte{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
	}}
	p.ConvertChannelOrder()
	assert.Equal(t, []byte{3, 2, 1, 4, 7, 6, 5, 8, 11, 10, 9, 12}, p.Pix)
}

func TestPixelBufferValidate(t *testing.T) {
	assert.NoError(t, ico.PixelBuffer{Width: 2, Height: 2, Pix: make([]byte, 16)}.Validate())
	assert.Error(t, ico.PixelBuffer{Width: 2, Height: 2, Pix: make([]byte, 15)}.Validate())
	assert.Error(t, ico.PixelBuffer{Width: 0, Height: 2}.Validate())
	assert.Error(t, ico.PixelBuffer{Width: -1, Height: -4, Pix: make([]byte, 16)}.Validate())
}

func TestFromImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 12, 11))
	src.SetNRGBA(10, 10, color.NRGBA{R: 1, G: 2, B: 3, A: 0xff})
	src.SetNRGBA(11, 10, color.NRGBA{R: 4, G: 5, B: 6, A: 0xff})

	p := ico.FromImage(src)
	require.NoError(t, p.Validate())
	assert.Equal(t, 2, p.Width)
	assert.Equal(t, 1, p.Height)
	assert.Equal(t, []byte{1, 2, 3, 0xff, 4, 5, 6, 0xff}, p.Pix)
	assert.Equal(t, color.NRGBA{R: 4, G: 5, B: 6, A: 0xff}, p.Image().NRGBAAt(1, 0))
}
