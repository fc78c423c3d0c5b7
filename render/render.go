// exeico by John Chadwick <john@jchw.io>
//
// To the extent possible under law, the person who associated CC0 with
// exeico has waived all copyright and related or neighboring rights
// to exeico.
//
// You should have received a copy of the CC0 legalcode along with this
// work.  If not, see <http://creativecommons.org/publicdomain/zero/1.0/>.

// Package render extracts icons the way the operating system draws them,
// as opposed to copying the resource bytes.
package render

import (
	"github.com/hashicorp/go-hclog"
	"github.com/jchv/exeico/ico"
	"github.com/pkg/errors"
)

// ErrNoIcons is returned when a file yields no icon at all.
var ErrNoIcons = errors.New("no icons")

// Renderer turns the icons of an executable or library into top-down
// BGRA pixel buffers. A nil id asks for every icon; otherwise *id is
// interpreted like the index argument of ExtractIconEx: non-negative
// values are ordinals, negative values resource IDs. Renderers return
// ErrNoIcons, or no buffers, when nothing could be acquired.
type Renderer interface {
	Render(path string, id *int) ([]ico.PixelBuffer, error)
}

// AssociatedRenderer returns the ICO file the shell would show for path.
type AssociatedRenderer interface {
	Associated(path string) ([]byte, error)
}

// Extract renders every icon of path and encodes each one. Icons that fail
// to encode are logged and skipped; the report says how many made it.
func Extract(r Renderer, path string, enc ico.Encoder, format ico.Format, logger hclog.Logger) ([][]byte, ico.Report, error) {
	logger = orNull(logger)
	var report ico.Report

	bufs, err := r.Render(path, nil)
	if errors.Is(err, ErrNoIcons) {
		logger.Debug("no icons rendered", "path", path)
		return nil, report, nil
	}
	if err != nil {
		return nil, report, errors.Wrapf(err, "rendering icons of %s", path)
	}

	var out [][]byte
	for i := range bufs {
		report.Attempted++
		data, err := encode(enc, &bufs[i], format)
		if err != nil {
			logger.Warn("skipping icon", "index", i, "error", err)
			report.Failures = append(report.Failures, errors.Wrapf(err, "icon %d", i))
			continue
		}
		report.Succeeded++
		out = append(out, data)
	}
	return out, report, nil
}

// One renders a single icon, trying id and then -id. Exactly one result is
// required, so running out of candidates is an error. Only an empty result
// moves on to the next candidate; any other failure is returned as is.
func One(r Renderer, path string, id int, enc ico.Encoder, format ico.Format) ([]byte, error) {
	for _, candidate := range []int{id, -id} {
		bufs, err := r.Render(path, &candidate)
		if err != nil && !errors.Is(err, ErrNoIcons) {
			return nil, errors.Wrapf(err, "rendering icon %d of %s", candidate, path)
		}
		if len(bufs) == 0 {
			continue
		}
		return encode(enc, &bufs[0], format)
	}
	return nil, errors.Wrapf(ErrNoIcons, "icon %d of %s", id, path)
}

func encode(enc ico.Encoder, buf *ico.PixelBuffer, format ico.Format) ([]byte, error) {
	if err := buf.Validate(); err != nil {
		return nil, &ico.EncodeError{Format: format, Err: err}
	}
	buf.ConvertChannelOrder()
	return enc.Encode(*buf, format)
}

func orNull(logger hclog.Logger) hclog.Logger {
	if logger == nil {
		return hclog.NewNullLogger()
	}
	return logger
}
