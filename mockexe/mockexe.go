// exeico by John Chadwick <john@jchw.io>
//
// To the extent possible under law, the person who associated CC0 with
// exeico has waived all copyright and related or neighboring rights
// to exeico.
//
// You should have received a copy of the CC0 legalcode along with this
// work.  If not, see <http://creativecommons.org/publicdomain/zero/1.0/>.

// Package mockexe writes minimal PE32 and PE32+ images whose only content
// is a resource section. They load in resource viewers and are what the
// tests of this module extract icons from.
package mockexe

import (
	"bytes"
	"encoding/binary"
	"io"
	"sort"

	"github.com/jchv/exeico/ico"
	"github.com/jchv/exeico/pe"
	"github.com/pkg/errors"
)

type EXEFormat int

const (
	PE32 EXEFormat = iota
	PE32Plus
)

const (
	sectionRVA    = 0x1000
	fileAlignment = 0x200
	sectionAlign  = 0x1000
	langEnglishUS = 1033
	codepage      = 1252
)

// Image is one RT_ICON resource plus the group entry fields describing it.
type Image struct {
	ID         uint16 // assigned automatically when zero
	Width      int
	Height     int
	ColorCount int
	BPP        int
	Data       []byte
}

// Group is one RT_GROUP_ICON resource. When Raw is set it is written as
// the group payload verbatim and Images is ignored.
type Group struct {
	Name   pe.Name
	Images []Image
	Raw    []byte
}

// Resource is any other resource to include.
type Resource struct {
	Type pe.Name
	Name pe.Name
	Data []byte
}

// Spec describes the image to build.
type Spec struct {
	Format  EXEFormat
	Groups  []Group
	Strings map[uint32]string
	RCData  map[uint16][]byte
	Extra   []Resource
}

// ImageFromDIB encodes d as an RT_ICON payload.
func ImageFromDIB(d *ico.DIB) (Image, error) {
	data, err := d.Bytes()
	if err != nil {
		return Image{}, err
	}
	return Image{
		Width:      d.IconGroupWidth(),
		Height:     d.IconGroupHeight(),
		ColorCount: d.NumColors(),
		BPP:        d.BPP(),
		Data:       data,
	}, nil
}

// Bytes builds the image described by s.
func Bytes(s Spec) ([]byte, error) {
	var buf bytes.Buffer
	if err := Build(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Build writes the image described by s to w.
func Build(w io.Writer, s Spec) error {
	resources, err := s.resources()
	if err != nil {
		return err
	}
	var rsrc []byte
	if len(resources) > 0 {
		if rsrc, err = resourceSection(resources); err != nil {
			return err
		}
	}

	dosHeader := pe.ImageDOSHeader{
		Signature:     pe.MZSignature,
		NewHeaderAddr: uint32(pe.SizeOfImageDOSHeader),
	}
	if err := binary.Write(w, binary.LittleEndian, dosHeader); err != nil {
		return errors.Wrap(err, "writing DOS header")
	}
	switch s.Format {
	case PE32:
		err = pe32(w, len(rsrc))
	case PE32Plus:
		err = pe32plus(w, len(rsrc))
	default:
		err = errors.Errorf("unknown format %d", s.Format)
	}
	if err != nil {
		return err
	}
	if len(rsrc) == 0 {
		return nil
	}
	if _, err := w.Write(rsrc); err != nil {
		return errors.Wrap(err, "writing resource section")
	}
	_, err = w.Write(make([]byte, align(len(rsrc), fileAlignment)-len(rsrc)))
	return errors.Wrap(err, "writing section padding")
}

// resources flattens s into resource tree leaves, assigning icon IDs.
func (s Spec) resources() ([]Resource, error) {
	var out []Resource
	used := map[uint16]bool{}
	for _, g := range s.Groups {
		for _, img := range g.Images {
			used[img.ID] = true
		}
	}
	next := uint16(1)
	for _, g := range s.Groups {
		if g.Raw != nil {
			out = append(out, Resource{Type: pe.IntName(pe.ResourceGroupIcon), Name: g.Name, Data: g.Raw})
			continue
		}
		var dir bytes.Buffer
		if err := binary.Write(&dir, binary.LittleEndian, pe.GroupIconDirectory{
			Type:  1,
			Count: uint16(len(g.Images)),
		}); err != nil {
			return nil, errors.Wrap(err, "writing group icon directory")
		}
		for _, img := range g.Images {
			id := img.ID
			if id == 0 {
				for used[next] {
					next++
				}
				id = next
				used[id] = true
			}
			if err := binary.Write(&dir, binary.LittleEndian, pe.GroupIconDirectoryEntry{
				Width:      uint8(img.Width),
				Height:     uint8(img.Height),
				ColorCount: uint8(img.ColorCount),
				NumPlanes:  1,
				BPP:        uint16(img.BPP),
				ImageSize:  uint32(len(img.Data)),
				ResourceID: id,
			}); err != nil {
				return nil, errors.Wrap(err, "writing group icon directory entry")
			}
			out = append(out, Resource{Type: pe.IntName(pe.ResourceIcon), Name: pe.IntName(id), Data: img.Data})
		}
		out = append(out, Resource{Type: pe.IntName(pe.ResourceGroupIcon), Name: g.Name, Data: dir.Bytes()})
	}

	blocks, err := stringBlocks(s.Strings)
	if err != nil {
		return nil, err
	}
	out = append(out, blocks...)
	for id, data := range s.RCData {
		out = append(out, Resource{Type: pe.IntName(pe.ResourceRCData), Name: pe.IntName(id), Data: data})
	}
	return append(out, s.Extra...), nil
}

func stringBlocks(strs map[uint32]string) ([]Resource, error) {
	slots := map[uint32]*[pe.StringsPerBlock]string{}
	for id, str := range strs {
		block, slot := pe.StringBlock(id)
		if slots[block] == nil {
			slots[block] = new([pe.StringsPerBlock]string)
		}
		slots[block][slot] = str
	}
	var out []Resource
	for block, strs := range slots {
		var data bytes.Buffer
		for _, str := range strs {
			u, err := pe.EncodeUTF16(str)
			if err != nil {
				return nil, errors.Wrapf(err, "encoding string in block %d", block)
			}
			binary.Write(&data, binary.LittleEndian, uint16(len(u)/2))
			data.Write(u)
		}
		out = append(out, Resource{Type: pe.IntName(pe.ResourceString), Name: pe.IntName(uint16(block)), Data: data.Bytes()})
	}
	return out, nil
}

func pe32(w io.Writer, rsrcSize int) error {
	optHeader := pe.ImageOptionalHeaderPE32{
		Magic:               pe.ImageNTOptionalHeaderPE32Magic,
		ImageBase:           0x400000,
		SectionAlignment:    sectionAlign,
		FileAlignment:       fileAlignment,
		SizeOfImage:         uint32(align(sectionRVA+rsrcSize, sectionAlign)),
		SizeOfHeaders:       fileAlignment,
		Subsystem:           2,
		NumberOfRvaAndSizes: pe.ImageNumberOfDirectoryEntries,
	}
	sections := 0
	if rsrcSize > 0 {
		optHeader.DataDirectory[pe.ImageDirectoryEntryResource] = pe.ImageDataDirectory{
			VirtualAddress: sectionRVA,
			Size:           uint32(rsrcSize),
		}
		sections = 1
	}
	newHeader := pe.ImageNTHeadersPE32{
		Signature: pe.PESignature,
		FileHeader: pe.ImageFileHeader{
			Machine:              pe.ImageFileMachinei386,
			NumberOfSections:     uint16(sections),
			SizeOfOptionalHeader: pe.SizeOfImageOptionalHeaderPE32,
		},
		OptionalHeader: optHeader,
	}
	if err := binary.Write(w, binary.LittleEndian, newHeader); err != nil {
		return errors.Wrap(err, "writing PE32 header")
	}
	return sectionHeader(w, pe.SizeOfImageNTHeadersPE32, rsrcSize)
}

func pe32plus(w io.Writer, rsrcSize int) error {
	optHeader := pe.ImageOptionalHeaderPE32Plus{
		Magic:               pe.ImageNTOptionalHeaderPE32PlusMagic,
		ImageBase:           0x400000,
		SectionAlignment:    sectionAlign,
		FileAlignment:       fileAlignment,
		SizeOfImage:         uint32(align(sectionRVA+rsrcSize, sectionAlign)),
		SizeOfHeaders:       fileAlignment,
		Subsystem:           2,
		NumberOfRvaAndSizes: pe.ImageNumberOfDirectoryEntries,
	}
	sections := 0
	if rsrcSize > 0 {
		optHeader.DataDirectory[pe.ImageDirectoryEntryResource] = pe.ImageDataDirectory{
			VirtualAddress: sectionRVA,
			Size:           uint32(rsrcSize),
		}
		sections = 1
	}
	newHeader := pe.ImageNTHeadersPE32Plus{
		Signature: pe.PESignature,
		FileHeader: pe.ImageFileHeader{
			Machine:              pe.ImageFileMachineAMD64,
			NumberOfSections:     uint16(sections),
			SizeOfOptionalHeader: pe.SizeOfImageOptionalHeaderPE32Plus,
		},
		OptionalHeader: optHeader,
	}
	if err := binary.Write(w, binary.LittleEndian, newHeader); err != nil {
		return errors.Wrap(err, "writing PE32+ header")
	}
	return sectionHeader(w, pe.SizeOfImageNTHeadersPE32Plus, rsrcSize)
}

// sectionHeader writes the .rsrc section header, if any, and pads the
// headers out to the first file-aligned offset.
func sectionHeader(w io.Writer, ntHeadersSize, rsrcSize int) error {
	currentOffset := pe.SizeOfImageDOSHeader + ntHeadersSize
	if rsrcSize > 0 {
		section := pe.ImageSectionHeader{
			PhysicalAddressOrVirtualSize: uint32(rsrcSize),
			VirtualAddress:               sectionRVA,
			SizeOfRawData:                uint32(align(rsrcSize, fileAlignment)),
			PointerToRawData:             fileAlignment,
			Characteristics:              pe.ImageSectionCharacteristicsMemoryRead | pe.ImageSectionCharacteristicsMemoryWrite | pe.ImageSectionCharacteristicsContainsInitializedData,
		}
		copy(section.Name[:], ".rsrc")
		if err := binary.Write(w, binary.LittleEndian, section); err != nil {
			return errors.Wrap(err, "writing section")
		}
		currentOffset += pe.SizeOfImageSectionHeader
	}
	_, err := w.Write(make([]byte, fileAlignment-currentOffset))
	return errors.Wrap(err, "writing padding to first section")
}

// nameLess orders directory entries the way the loader expects: string
// names first, then IDs ascending.
func nameLess(a, b pe.Name) bool {
	if a.IsString() != b.IsString() {
		return a.IsString()
	}
	if a.IsString() {
		return a.String() < b.String()
	}
	ai, _ := a.ID()
	bi, _ := b.ID()
	return ai < bi
}

func sortedNames(m map[pe.Name][]Resource) []pe.Name {
	names := make([]pe.Name, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return nameLess(names[i], names[j]) })
	return names
}

func align(n, to int) int {
	return (n + to - 1) &^ (to - 1)
}
