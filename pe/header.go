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
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Bitness is the address width an image targets.
type Bitness int

const (
	Bits32 Bitness = 32
	Bits64 Bitness = 64
)

func (b Bitness) String() string {
	switch b {
	case Bits32:
		return "PE32"
	case Bits64:
		return "PE32+"
	default:
		return fmt.Sprintf("Bitness(%d)", int(b))
	}
}

const offsetOfNewHeaderAddr = 0x3c

// DetectBitness reads just enough of the DOS and NT headers to tell a
// PE32 image from a PE32+ one.
func DetectBitness(b []byte) (Bitness, error) {
	r := reader(b)

	lfanew, err := r.u32("reading e_lfanew", offsetOfNewHeaderAddr)
	if err != nil {
		return 0, err
	}

	sigOffset := int64(lfanew)
	sig, err := r.slice("reading PE signature", sigOffset, len(PESignature))
	if err != nil {
		return 0, err
	}
	if !bytes.Equal(sig, PESignature[:]) {
		return 0, &ParseError{Op: "checking PE signature", Offset: sigOffset, Err: ErrInvalidSignature}
	}

	magicOffset := sigOffset + int64(len(PESignature)) + SizeOfImageFileHeader
	magic, err := r.u16("reading optional header magic", magicOffset)
	if err != nil {
		return 0, err
	}

	switch magic {
	case ImageNTOptionalHeaderPE32Magic:
		return Bits32, nil
	case ImageNTOptionalHeaderPE32PlusMagic:
		return Bits64, nil
	default:
		return 0, &ParseError{Op: "checking optional header magic", Offset: magicOffset, Err: UnknownMagicError{Magic: magic}}
	}
}

// reader does bounds-checked little-endian reads over an image buffer.
type reader []byte

func (r reader) slice(op string, off int64, n int) ([]byte, error) {
	if off < 0 || n < 0 || off > int64(len(r)) || int64(n) > int64(len(r))-off {
		return nil, &ParseError{Op: op, Offset: off, Err: io.ErrUnexpectedEOF}
	}
	return r[off : off+int64(n) : off+int64(n)], nil
}

func (r reader) u16(op string, off int64) (uint16, error) {
	b, err := r.slice(op, off, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r reader) u32(op string, off int64) (uint32, error) {
	b, err := r.slice(op, off, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// read decodes a fixed-size structure at off.
func (r reader) read(op string, off int64, data any) error {
	b, err := r.slice(op, off, binary.Size(data))
	if err != nil {
		return err
	}
	return binary.Read(bytes.NewReader(b), binary.LittleEndian, data)
}
