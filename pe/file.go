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

	"github.com/pkg/errors"
)

// layout holds the optional header offsets that differ between PE32 and
// PE32+. Everything after the optional header is shared.
type layout struct {
	numberOfRvaAndSizes int64
	dataDirectory       int64
	sizeOfHeaders       int64
}

var layouts = map[Bitness]layout{
	Bits32: {numberOfRvaAndSizes: 92, dataDirectory: 96, sizeOfHeaders: 60},
	Bits64: {numberOfRvaAndSizes: 108, dataDirectory: 112, sizeOfHeaders: 60},
}

// File is a parsed view over the bytes of a PE image. It only decodes what
// resource lookups need: the file header, data directories and sections.
type File struct {
	Bitness       Bitness
	FileHeader    ImageFileHeader
	DataDirectory []ImageDataDirectory
	Sections      []ImageSectionHeader
	SizeOfHeaders uint32

	data reader
}

// Open validates b as a PE image. The returned File borrows b.
func Open(b []byte) (*File, error) {
	bitness, err := DetectBitness(b)
	if err != nil {
		return nil, errors.Wrap(err, "detecting image bitness")
	}

	f := &File{Bitness: bitness, data: reader(b)}
	l := layouts[bitness]

	lfanew, err := f.data.u32("reading e_lfanew", offsetOfNewHeaderAddr)
	if err != nil {
		return nil, err
	}
	fileHeaderOffset := int64(lfanew) + int64(len(PESignature))
	if err := f.data.read("reading file header", fileHeaderOffset, &f.FileHeader); err != nil {
		return nil, err
	}

	optOffset := fileHeaderOffset + SizeOfImageFileHeader
	optSize := int64(f.FileHeader.SizeOfOptionalHeader)

	if f.SizeOfHeaders, err = f.data.u32("reading SizeOfHeaders", optOffset+l.sizeOfHeaders); err != nil {
		return nil, err
	}

	count, err := f.data.u32("reading NumberOfRvaAndSizes", optOffset+l.numberOfRvaAndSizes)
	if err != nil {
		return nil, err
	}
	count = min(count, ImageNumberOfDirectoryEntries)
	if fit := (optSize - l.dataDirectory) / SizeOfImageDataDirectory; fit < int64(count) {
		count = uint32(max(fit, 0))
	}
	f.DataDirectory = make([]ImageDataDirectory, count)
	if err := f.data.read("reading data directories", optOffset+l.dataDirectory, f.DataDirectory); err != nil {
		return nil, err
	}

	f.Sections = make([]ImageSectionHeader, f.FileHeader.NumberOfSections)
	if err := f.data.read("reading section table", optOffset+optSize, f.Sections); err != nil {
		return nil, err
	}

	return f, nil
}

// Offset maps an RVA to a file offset.
func (f *File) Offset(rva uint32) (int64, bool) {
	for _, s := range f.Sections {
		size := s.PhysicalAddressOrVirtualSize
		if size == 0 {
			size = s.SizeOfRawData
		}
		if rva >= s.VirtualAddress && rva-s.VirtualAddress < size {
			return int64(rva-s.VirtualAddress) + int64(s.PointerToRawData), true
		}
	}
	if rva < f.SizeOfHeaders {
		return int64(rva), true
	}
	return 0, false
}

// Data returns size bytes of the image starting at rva.
func (f *File) Data(rva, size uint32) ([]byte, error) {
	off, ok := f.Offset(rva)
	if !ok {
		return nil, &ParseError{Op: "mapping RVA", Offset: int64(rva), Err: ErrOutOfBounds}
	}
	return f.data.slice("reading data at RVA", off, int(size))
}

// SectionName returns the NUL-trimmed name of a section header.
func SectionName(s ImageSectionHeader) string {
	name := s.Name[:]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return string(name)
}
