// exeico by John Chadwick <john@jchw.io>
//
// To the extent possible under law, the person who associated CC0 with
// exeico has waived all copyright and related or neighboring rights
// to exeico.
//
// You should have received a copy of the CC0 legalcode along with this
// work.  If not, see <http://creativecommons.org/publicdomain/zero/1.0/>.

package render

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/jchv/exeico/ico"
	"github.com/jchv/exeico/mockexe"
	"github.com/jchv/exeico/pe"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	bufs  map[int][]ico.PixelBuffer // keyed by id; nil id uses all
	all   []ico.PixelBuffer
	err   error
	calls []int
}

func (f *fakeRenderer) Render(path string, id *int) ([]ico.PixelBuffer, error) {
	if f.err != nil {
		return nil, f.err
	}
	if id == nil {
		return f.all, nil
	}
	f.calls = append(f.calls, *id)
	bufs, ok := f.bufs[*id]
	if !ok {
		return nil, ErrNoIcons
	}
	return bufs, nil
}

// bgra returns a w×h buffer filled with one BGRA pixel.
func bgra(w, h int, px ...byte) ico.PixelBuffer {
	p := ico.PixelBuffer{Width: w, Height: h, Pix: make([]byte, w*h*4)}
	for i := 0; i < len(p.Pix); i += 4 {
		copy(p.Pix[i:], px)
	}
	return p
}

func decodePNG(t *testing.T, b []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	return img
}

func TestExtract(t *testing.T) {
	r := &fakeRenderer{all: []ico.PixelBuffer{
		bgra(2, 2, 0x10, 0x20, 0x30, 0xff),
		{Width: 3, Height: 3, Pix: make([]byte, 5)},
		bgra(3, 1, 0x00, 0x00, 0xff, 0xff),
	}}

	out, report, err := Extract(r, "lib.dll", ico.Encoder{}, ico.PNG, hclog.NewNullLogger())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 3, report.Attempted)
	assert.Equal(t, 2, report.Succeeded)
	require.Len(t, report.Failures, 1)
	var encErr *ico.EncodeError
	assert.ErrorAs(t, report.Failures[0], &encErr)

	first := decodePNG(t, out[0])
	assert.Equal(t, image.Rect(0, 0, 2, 2), first.Bounds())
	r0, g0, b0, _ := first.At(1, 1).RGBA()
	assert.Equal(t, []uint32{0x3030, 0x2020, 0x1010}, []uint32{r0, g0, b0})

	second := decodePNG(t, out[1])
	r1, _, b1, _ := second.At(2, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r1)
	assert.Equal(t, uint32(0), b1)
}

func TestExtractNoIcons(t *testing.T) {
	out, report, err := Extract(&fakeRenderer{err: ErrNoIcons}, "lib.dll", ico.Encoder{}, ico.PNG, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, ico.Report{}, report)

	out, _, err = Extract(&fakeRenderer{}, "lib.dll", ico.Encoder{}, ico.PNG, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestExtractError(t *testing.T) {
	boom := errors.New("boom")
	_, _, err := Extract(&fakeRenderer{err: boom}, "lib.dll", ico.Encoder{}, ico.PNG, nil)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "lib.dll")
}

func TestOne(t *testing.T) {
	r := &fakeRenderer{bufs: map[int][]ico.PixelBuffer{
		-5: {bgra(4, 4, 1, 2, 3, 4), bgra(2, 2, 1, 2, 3, 4)},
	}}
	b, err := One(r, "lib.dll", 5, ico.Encoder{}, ico.ICO)
	require.NoError(t, err)
	assert.Equal(t, []int{5, -5}, r.calls)
	assert.True(t, bytes.HasPrefix(b, []byte{0, 0, 1, 0, 1, 0}), "single entry ICO header")
}

func TestOneNotFound(t *testing.T) {
	r := &fakeRenderer{bufs: map[int][]ico.PixelBuffer{3: {}}}
	_, err := One(r, "lib.dll", 3, ico.Encoder{}, ico.PNG)
	assert.ErrorIs(t, err, ErrNoIcons)
	assert.Equal(t, []int{3, -3}, r.calls)
}

func TestDecodeBase64Output(t *testing.T) {
	b, err := decodeBase64Output([]byte("  aGVsbG8=\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	_, err = decodeBase64Output([]byte(" \r\n"))
	assert.ErrorIs(t, err, ErrNoIcons)

	_, err = decodeBase64Output([]byte("not base64!"))
	assert.Error(t, err)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `C:\Bob''s Programs\app.exe`, quote(`C:\Bob's Programs\app.exe`))
}

func TestPowerShellMissingCommand(t *testing.T) {
	p := &PowerShell{Command: "exeico-test-no-such-command"}
	_, err := p.Associated(os.Args[0])
	assert.Error(t, err)
}

func TestOneBadSignature(t *testing.T) {
	b, err := mockexe.Bytes(mockexe.Spec{})
	require.NoError(t, err)
	copy(b[pe.SizeOfImageDOSHeader:], "XX")
	r := &ResourceRenderer{ReadFile: func(string) ([]byte, error) { return b, nil }}

	_, err = One(r, "x.dll", 0, ico.Encoder{}, ico.PNG)
	var parseErr *pe.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.ErrorIs(t, err, pe.ErrInvalidSignature)
	assert.NotErrorIs(t, err, ErrNoIcons)
	assert.Contains(t, err.Error(), "x.dll")
}
