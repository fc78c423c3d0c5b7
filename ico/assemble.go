// exeico by John Chadwick <john@jchw.io>
//
// To the extent possible under law, the person who associated CC0 with
// exeico has waived all copyright and related or neighboring rights
// to exeico.
//
// You should have received a copy of the CC0 legalcode along with this
// work.  If not, see <http://creativecommons.org/publicdomain/zero/1.0/>.

// Package ico turns icon resources into ICO and PNG files.
package ico

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/jchv/exeico/pe"
	"github.com/pkg/errors"
)

// IconDirectoryEntry are entries of the ICO file directory. It is the
// on-disk form of pe.GroupIconDirectoryEntry, with the resource ID
// replaced by a file offset.
type IconDirectoryEntry struct {
	Width       uint8
	Height      uint8
	ColorCount  uint8
	Reserved    uint8
	NumPlanes   uint16
	BitCount    uint16
	ImageSize   uint32
	ImageOffset uint32
}

const (
	SizeOfIconDirectory      = 6
	SizeOfIconDirectoryEntry = 16
)

// Lookup returns the RT_ICON payload for a resource ID.
type Lookup func(id uint16) ([]byte, bool)

// MissingIconError is returned by Assemble when a group references an
// RT_ICON resource that does not exist.
type MissingIconError struct {
	ID uint16
}

func (e *MissingIconError) Error() string {
	return fmt.Sprintf("icon image %d referenced by group is missing", e.ID)
}

// Assemble builds an ICO file from a group and the icon images it
// references. Entries keep the group's order; each entry's size is the
// length of the payload actually found, so offsets always add up.
func Assemble(g *pe.GroupIcon, lookup Lookup) ([]byte, error) {
	payloads := make([][]byte, len(g.Entries))
	total := SizeOfIconDirectory + SizeOfIconDirectoryEntry*len(g.Entries)
	for i, e := range g.Entries {
		p, ok := lookup(e.ResourceID)
		if !ok {
			return nil, &MissingIconError{ID: e.ResourceID}
		}
		payloads[i] = p
		total += len(p)
	}

	var buf bytes.Buffer
	buf.Grow(total)
	if err := binary.Write(&buf, binary.LittleEndian, pe.GroupIconDirectory{
		Type:  1,
		Count: uint16(len(g.Entries)),
	}); err != nil {
		return nil, errors.Wrap(err, "writing icon directory")
	}

	offset := uint32(SizeOfIconDirectory + SizeOfIconDirectoryEntry*len(g.Entries))
	for i, e := range g.Entries {
		if err := binary.Write(&buf, binary.LittleEndian, IconDirectoryEntry{
			Width:       e.Width,
			Height:      e.Height,
			ColorCount:  e.ColorCount,
			NumPlanes:   e.NumPlanes,
			BitCount:    e.BPP,
			ImageSize:   uint32(len(payloads[i])),
			ImageOffset: offset,
		}); err != nil {
			return nil, errors.Wrapf(err, "writing icon directory entry %d", i)
		}
		offset += uint32(len(payloads[i]))
	}

	for _, p := range payloads {
		buf.Write(p)
	}
	return buf.Bytes(), nil
}
