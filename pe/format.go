// exeico by John Chadwick <john@jchw.io>
//
// To the extent possible under law, the person who associated CC0 with
// exeico has waived all copyright and related or neighboring rights
// to exeico.
//
// You should have received a copy of the CC0 legalcode along with this
// work.  If not, see <http://creativecommons.org/publicdomain/zero/1.0/>.

package pe

// On-disk structures of the PE format, laid out so they can be read and
// written directly with encoding/binary.

const (
	SizeOfImageDOSHeader              = 64
	SizeOfImageFileHeader             = 20
	SizeOfImageDataDirectory          = 8
	SizeOfImageOptionalHeaderPE32     = 224
	SizeOfImageOptionalHeaderPE32Plus = 240
	SizeOfImageNTHeadersPE32          = 4 + SizeOfImageFileHeader + SizeOfImageOptionalHeaderPE32
	SizeOfImageNTHeadersPE32Plus      = 4 + SizeOfImageFileHeader + SizeOfImageOptionalHeaderPE32Plus
	SizeOfImageSectionHeader          = 40

	SizeOfResourceDirectoryTable = 16
	SizeOfResourceDirectoryEntry = 8
	SizeOfResourceDataEntry      = 16
)

const (
	ImageNTOptionalHeaderPE32Magic     = 0x10b
	ImageNTOptionalHeaderPE32PlusMagic = 0x20b

	ImageFileMachinei386  = 0x14c
	ImageFileMachineAMD64 = 0x8664

	ImageNumberOfDirectoryEntries = 16
	ImageDirectoryEntryResource   = 2

	ImageSectionCharacteristicsContainsInitializedData = 0x00000040
	ImageSectionCharacteristicsMemoryRead              = 0x40000000
	ImageSectionCharacteristicsMemoryWrite             = 0x80000000
)

// Resource type IDs.
const (
	ResourceCursor      = 1
	ResourceBitmap      = 2
	ResourceIcon        = 3
	ResourceString      = 6
	ResourceRCData      = 10
	ResourceGroupCursor = 12
	ResourceGroupIcon   = 14
	ResourceVersion     = 16
	ResourceManifest    = 24
)

var (
	MZSignature = [2]byte{'M', 'Z'}
	PESignature = [4]byte{'P', 'E', 0, 0}
)

type ImageDOSHeader struct {
	Signature        [2]byte
	LastPageBytes    uint16
	Pages            uint16
	Relocations      uint16
	HeaderParagraphs uint16
	MinAlloc         uint16
	MaxAlloc         uint16
	InitialSS        uint16
	InitialSP        uint16
	Checksum         uint16
	InitialIP        uint16
	InitialCS        uint16
	RelocTableAddr   uint16
	OverlayNumber    uint16
	Reserved         [4]uint16
	OEMID            uint16
	OEMInfo          uint16
	Reserved2        [10]uint16
	NewHeaderAddr    uint32
}

type ImageFileHeader struct {
	Machine              uint16
	NumberOfSections     uint16
	TimeDateStamp        uint32
	PointerToSymbolTable uint32
	NumberOfSymbols      uint32
	SizeOfOptionalHeader uint16
	Characteristics      uint16
}

type ImageDataDirectory struct {
	VirtualAddress uint32
	Size           uint32
}

type ImageOptionalHeaderPE32 struct {
	Magic                       uint16
	MajorLinkerVersion          uint8
	MinorLinkerVersion          uint8
	SizeOfCode                  uint32
	SizeOfInitializedData       uint32
	SizeOfUninitializedData     uint32
	AddressOfEntryPoint         uint32
	BaseOfCode                  uint32
	BaseOfData                  uint32
	ImageBase                   uint32
	SectionAlignment            uint32
	FileAlignment               uint32
	MajorOperatingSystemVersion uint16
	MinorOperatingSystemVersion uint16
	MajorImageVersion           uint16
	MinorImageVersion           uint16
	MajorSubsystemVersion       uint16
	MinorSubsystemVersion       uint16
	Win32VersionValue           uint32
	SizeOfImage                 uint32
	SizeOfHeaders               uint32
	CheckSum                    uint32
	Subsystem                   uint16
	DllCharacteristics          uint16
	SizeOfStackReserve          uint32
	SizeOfStackCommit           uint32
	SizeOfHeapReserve           uint32
	SizeOfHeapCommit            uint32
	LoaderFlags                 uint32
	NumberOfRvaAndSizes         uint32
	DataDirectory               [ImageNumberOfDirectoryEntries]ImageDataDirectory
}

type ImageOptionalHeaderPE32Plus struct {
	Magic                       uint16
	MajorLinkerVersion          uint8
	MinorLinkerVersion          uint8
	SizeOfCode                  uint32
	SizeOfInitializedData       uint32
	SizeOfUninitializedData     uint32
	AddressOfEntryPoint         uint32
	BaseOfCode                  uint32
	ImageBase                   uint64
	SectionAlignment            uint32
	FileAlignment               uint32
	MajorOperatingSystemVersion uint16
	MinorOperatingSystemVersion uint16
	MajorImageVersion           uint16
	MinorImageVersion           uint16
	MajorSubsystemVersion       uint16
	MinorSubsystemVersion       uint16
	Win32VersionValue           uint32
	SizeOfImage                 uint32
	SizeOfHeaders               uint32
	CheckSum                    uint32
	Subsystem                   uint16
	DllCharacteristics          uint16
	SizeOfStackReserve          uint64
	SizeOfStackCommit           uint64
	SizeOfHeapReserve           uint64
	SizeOfHeapCommit            uint64
	LoaderFlags                 uint32
	NumberOfRvaAndSizes         uint32
	DataDirectory               [ImageNumberOfDirectoryEntries]ImageDataDirectory
}

type ImageNTHeadersPE32 struct {
	Signature      [4]byte
	FileHeader     ImageFileHeader
	OptionalHeader ImageOptionalHeaderPE32
}

type ImageNTHeadersPE32Plus struct {
	Signature      [4]byte
	FileHeader     ImageFileHeader
	OptionalHeader ImageOptionalHeaderPE32Plus
}

type ImageSectionHeader struct {
	Name                         [8]byte
	PhysicalAddressOrVirtualSize uint32
	VirtualAddress               uint32
	SizeOfRawData                uint32
	PointerToRawData             uint32
	PointerToRelocations         uint32
	PointerToLinenumbers         uint32
	NumberOfRelocations          uint16
	NumberOfLinenumbers          uint16
	Characteristics              uint32
}

// ResourceDirectoryTable heads every level of the resource tree. It is
// followed by NumNameEntries named entries, then NumIDEntries ID entries.
type ResourceDirectoryTable struct {
	Characteristics uint32
	TimeDateStamp   uint32
	MajorVersion    uint16
	MinorVersion    uint16
	NumNameEntries  uint16
	NumIDEntries    uint16
}

// ResourceDirectoryEntry points at either a subdirectory (high bit of
// Offset set) or a ResourceDataEntry. When the high bit of ID is set, the
// low bits are the offset of a length-prefixed UTF-16 name.
type ResourceDirectoryEntry struct {
	ID     uint32
	Offset uint32
}

type ResourceDataEntry struct {
	DataRVA  uint32
	Size     uint32
	Codepage uint32
	Reserved uint32
}

const highBit = 0x80000000
