// exeico by John Chadwick <john@jchw.io>
//
// To the extent possible under law, the person who associated CC0 with
// exeico has waived all copyright and related or neighboring rights
// to exeico.
//
// You should have received a copy of the CC0 legalcode along with this
// work.  If not, see <http://creativecommons.org/publicdomain/zero/1.0/>.

package pe

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidSignature is returned when the bytes at e_lfanew are not "PE\0\0".
	ErrInvalidSignature = errors.New("invalid PE signature")

	// ErrNoResources is returned when an image has no resource directory at
	// all. An image whose resource directory exists but holds nothing of the
	// requested type yields an empty sequence instead.
	ErrNoResources = errors.New("no resource directory")

	// ErrResourceNotFound is returned by the string and raw data lookups.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrOutOfBounds is returned when an RVA does not map into the image.
	ErrOutOfBounds = errors.New("address outside of image")
)

// UnknownMagicError reports an optional header magic that is neither PE32
// nor PE32+.
type UnknownMagicError struct {
	Magic uint16
}

func (e UnknownMagicError) Error() string {
	return fmt.Sprintf("unknown optional header magic %#x", e.Magic)
}

// ParseError records which read failed and where.
type ParseError struct {
	Op     string
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at offset %#x: %v", e.Op, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
