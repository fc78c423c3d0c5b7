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
	"iter"

	"github.com/pkg/errors"
)

const (
	SizeOfGroupIconDirectory      = 6
	SizeOfGroupIconDirectoryEntry = 14
)

// GroupIconDirectory is the data structure pointed to by ResourceGroupIcon
// resource data entries. It is followed by Count instances of
// GroupIconDirectoryEntry.
type GroupIconDirectory struct {
	Reserved uint16
	Type     uint16
	Count    uint16
}

// GroupIconDirectoryEntry are entries of the GroupIconDirectory structure.
type GroupIconDirectoryEntry struct {
	Width      uint8 // 0 if >=256
	Height     uint8 // 0 if >=256
	ColorCount uint8
	Reserved   uint8
	NumPlanes  uint16
	BPP        uint16
	ImageSize  uint32
	ResourceID uint16
}

// GroupIcon is a decoded RT_GROUP_ICON resource.
type GroupIcon struct {
	GroupIconDirectory
	Entries []GroupIconDirectoryEntry
}

// ParseGroupIcon decodes an RT_GROUP_ICON payload.
func ParseGroupIcon(b []byte) (*GroupIcon, error) {
	r := reader(b)
	g := &GroupIcon{}
	if err := r.read("reading group icon directory", 0, &g.GroupIconDirectory); err != nil {
		return nil, err
	}
	if g.Reserved != 0 || g.Type != 1 {
		return nil, errors.Errorf("not an icon group (reserved %d, type %d)", g.Reserved, g.Type)
	}
	g.Entries = make([]GroupIconDirectoryEntry, g.Count)
	if err := r.read("reading group icon entries", SizeOfGroupIconDirectory, g.Entries); err != nil {
		return nil, err
	}
	return g, nil
}

// IconGroups yields every decodable RT_GROUP_ICON resource in directory
// order. Groups whose payload is malformed are skipped.
func (r *Resources) IconGroups() iter.Seq2[Name, *GroupIcon] {
	return func(yield func(Name, *GroupIcon) bool) {
		for name, res := range r.Walk(IntName(ResourceGroupIcon)) {
			g, err := ParseGroupIcon(res.Data)
			if err != nil {
				continue
			}
			if !yield(name, g) {
				return
			}
		}
	}
}

// RawIcons yields the RT_ICON payloads that have numeric IDs.
func (r *Resources) RawIcons() iter.Seq2[uint16, []byte] {
	return func(yield func(uint16, []byte) bool) {
		for name, res := range r.Walk(IntName(ResourceIcon)) {
			id, ok := name.ID()
			if !ok {
				continue
			}
			if !yield(id, res.Data) {
				return
			}
		}
	}
}

// Icon returns the RT_ICON payload with the given ID.
func (r *Resources) Icon(id uint16) ([]byte, bool) {
	res, ok := r.Lookup(IntName(ResourceIcon), IntName(id))
	return res.Data, ok
}
