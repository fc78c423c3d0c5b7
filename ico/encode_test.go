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
	"image/png"
	"testing"

	"github.com/jchv/exeico/ico"
	goico "github.com/sergeymakinen/go-ico"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int) ico.PixelBuffer {
	p := ico.PixelBuffer{Width: w, Height: h, Pix: make([]byte, w*h*4)}
	for i := 0; i < len(p.Pix); i += 4 {
		copy(p.Pix[i:], []byte{0x20, 0x80, 0xe0, 0xff})
	}
	return p
}

func TestEncodePNG(t *testing.T) {
	p := solid(5, 3)
	b, err := ico.Encode(p, ico.PNG)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 5, 3), img.Bounds())
	r, g, bl, a := img.At(4, 2).RGBA()
	assert.Equal(t, []uint32{0x2020, 0x8080, 0xe0e0, 0xffff}, []uint32{r, g, bl, a})
}

func TestEncodeICO(t *testing.T) {
	tests := []struct {
		w, h int
		max  int
		want image.Rectangle
	}{
		{32, 32, 0, image.Rect(0, 0, 32, 32)},
		{256, 256, 0, image.Rect(0, 0, 256, 256)},
		{300, 300, 0, image.Rect(0, 0, 256, 256)},
		{300, 150, 0, image.Rect(0, 0, 256, 128)},
		{100, 400, 0, image.Rect(0, 0, 64, 256)},
		{300, 300, 48, image.Rect(0, 0, 48, 48)},
	}
	for _, test := range tests {
		b, err := ico.Encoder{MaxIconSize: test.max}.Encode(solid(test.w, test.h), ico.ICO)
		require.NoError(t, err)
		img, err := goico.Decode(bytes.NewReader(b))
		require.NoError(t, err)
		assert.Equal(t, test.want, img.Bounds(), "%dx%d", test.w, test.h)
	}
}

func TestEncodeInvalidBuffer(t *testing.T) {
	_, err := ico.Encode(ico.PixelBuffer{Width: 4, Height: 4, Pix: make([]byte, 10)}, ico.PNG)
	var encErr *ico.EncodeError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, ico.PNG, encErr.Format)

	_, err = ico.Encode(solid(1, 1), ico.Format(7))
	assert.ErrorAs(t, err, &encErr)
}

func TestParseFormat(t *testing.T) {
	for s, want := range map[string]ico.Format{"png": ico.PNG, "PNG": ico.PNG, "ico": ico.ICO, "Ico": ico.ICO} {
		f, err := ico.ParseFormat(s)
		require.NoError(t, err)
		assert.Equal(t, want, f)
	}
	_, err := ico.ParseFormat("bmp")
	assert.Error(t, err)

	assert.Equal(t, ".png", ico.PNG.Ext())
	assert.Equal(t, ".ico", ico.ICO.Ext())
}
