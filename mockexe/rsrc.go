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

	"github.com/jchv/exeico/pe"
	"github.com/pkg/errors"
)

// resourceSection lays out a three-level resource tree. The section is
// written in this order: root directory, type directories, language
// directories, data entries, names, then the data itself.
func resourceSection(resources []Resource) ([]byte, error) {
	byType := map[pe.Name][]Resource{}
	for _, r := range resources {
		byType[r.Type] = append(byType[r.Type], r)
	}
	types := sortedNames(byType)

	type typeDir struct {
		typ    pe.Name
		offset int
		names  []pe.Name
		leaves []Resource
	}
	var dirs []typeDir

	offset := pe.SizeOfResourceDirectoryTable + pe.SizeOfResourceDirectoryEntry*len(types)
	for _, t := range types {
		byName := map[pe.Name][]Resource{}
		for _, r := range byType[t] {
			if _, dup := byName[r.Name]; dup {
				return nil, errors.Errorf("duplicate resource %s/%s", t, r.Name)
			}
			byName[r.Name] = []Resource{r}
		}
		d := typeDir{typ: t, offset: offset, names: sortedNames(byName)}
		for _, n := range d.names {
			d.leaves = append(d.leaves, byName[n][0])
		}
		dirs = append(dirs, d)
		offset += pe.SizeOfResourceDirectoryTable + pe.SizeOfResourceDirectoryEntry*len(d.names)
	}

	var leaves []Resource
	for _, d := range dirs {
		leaves = append(leaves, d.leaves...)
	}
	langDirOffset := offset
	offset += (pe.SizeOfResourceDirectoryTable + pe.SizeOfResourceDirectoryEntry) * len(leaves)
	dataEntryOffset := offset
	offset += pe.SizeOfResourceDataEntry * len(leaves)

	nameOffsets := map[string]int{}
	var names bytes.Buffer
	addName := func(n pe.Name) error {
		if !n.IsString() {
			return nil
		}
		if _, ok := nameOffsets[n.String()]; ok {
			return nil
		}
		u, err := pe.EncodeUTF16(n.String())
		if err != nil {
			return errors.Wrapf(err, "encoding resource name %q", n)
		}
		nameOffsets[n.String()] = offset + names.Len()
		binary.Write(&names, binary.LittleEndian, uint16(len(u)/2))
		names.Write(u)
		return nil
	}
	for _, d := range dirs {
		if err := addName(d.typ); err != nil {
			return nil, err
		}
		for _, n := range d.names {
			if err := addName(n); err != nil {
				return nil, err
			}
		}
	}
	offset = align(offset+names.Len(), 8)

	dataOffsets := make([]int, len(leaves))
	for i, r := range leaves {
		dataOffsets[i] = offset
		offset = align(offset+len(r.Data), 8)
	}

	out := bytes.NewBuffer(make([]byte, 0, offset))
	entry := func(n pe.Name, target int, dir bool) {
		e := pe.ResourceDirectoryEntry{Offset: uint32(target)}
		if dir {
			e.Offset |= 0x80000000
		}
		if n.IsString() {
			e.ID = 0x80000000 | uint32(nameOffsets[n.String()])
		} else {
			id, _ := n.ID()
			e.ID = uint32(id)
		}
		binary.Write(out, binary.LittleEndian, e)
	}
	table := func(names []pe.Name) {
		named := 0
		for _, n := range names {
			if n.IsString() {
				named++
			}
		}
		binary.Write(out, binary.LittleEndian, pe.ResourceDirectoryTable{
			NumNameEntries: uint16(named),
			NumIDEntries:   uint16(len(names) - named),
			MajorVersion:   4,
		})
	}

	// Root directory
	table(types)
	for _, d := range dirs {
		entry(d.typ, d.offset, true)
	}

	// Name directories
	leaf := 0
	for _, d := range dirs {
		table(d.names)
		for _, n := range d.names {
			entry(n, langDirOffset+leaf*(pe.SizeOfResourceDirectoryTable+pe.SizeOfResourceDirectoryEntry), true)
			leaf++
		}
	}

	// Language directories
	for i := range leaves {
		lang := []pe.Name{pe.IntName(langEnglishUS)}
		table(lang)
		entry(lang[0], dataEntryOffset+i*pe.SizeOfResourceDataEntry, false)
	}

	// Data entries
	for i, r := range leaves {
		binary.Write(out, binary.LittleEndian, pe.ResourceDataEntry{
			DataRVA:  sectionRVA + uint32(dataOffsets[i]),
			Size:     uint32(len(r.Data)),
			Codepage: codepage,
		})
	}

	out.Write(names.Bytes())
	for i, r := range leaves {
		out.Write(make([]byte, dataOffsets[i]-out.Len()))
		out.Write(r.Data)
	}
	out.Write(make([]byte, offset-out.Len()))

	return out.Bytes(), nil
}
