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

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

// Resources is the resource tree of an image: Type → Name → Language, with
// raw data at the leaves. Offsets inside the tree are relative to base.
type Resources struct {
	// Logger receives debug output about entries that are skipped. It
	// may be nil.
	Logger hclog.Logger

	f    *File
	base int64
}

func (r *Resources) logger() hclog.Logger {
	if r.Logger == nil {
		return hclog.NewNullLogger()
	}
	return r.Logger
}

// Resource is one leaf of the tree. Data is a view into the image buffer
// and must not outlive it.
type Resource struct {
	Type     Name
	Name     Name
	Lang     Name
	Codepage uint32
	Data     []byte
}

type dirEntry struct {
	name   Name
	offset uint32
	isDir  bool
}

// Resources locates the resource directory. It returns ErrNoResources when
// the image has none.
func (f *File) Resources() (*Resources, error) {
	if len(f.DataDirectory) <= ImageDirectoryEntryResource {
		return nil, ErrNoResources
	}
	dir := f.DataDirectory[ImageDirectoryEntryResource]
	if dir.VirtualAddress == 0 || dir.Size == 0 {
		return nil, ErrNoResources
	}
	base, ok := f.Offset(dir.VirtualAddress)
	if !ok {
		return nil, &ParseError{Op: "locating resource directory", Offset: int64(dir.VirtualAddress), Err: ErrOutOfBounds}
	}
	r := &Resources{f: f, base: base}
	if _, err := r.readDir(0); err != nil {
		return nil, errors.Wrap(err, "reading root resource directory")
	}
	return r, nil
}

func (r *Resources) readDir(offset uint32) ([]dirEntry, error) {
	var table ResourceDirectoryTable
	off := r.base + int64(offset)
	if err := r.f.data.read("reading resource directory table", off, &table); err != nil {
		return nil, err
	}

	raw := make([]ResourceDirectoryEntry, int(table.NumNameEntries)+int(table.NumIDEntries))
	if err := r.f.data.read("reading resource directory entries", off+SizeOfResourceDirectoryTable, raw); err != nil {
		return nil, err
	}

	entries := make([]dirEntry, 0, len(raw))
	for _, e := range raw {
		d := dirEntry{offset: e.Offset &^ highBit, isDir: e.Offset&highBit != 0}
		if e.ID&highBit != 0 {
			s, err := r.readName(e.ID &^ highBit)
			if err != nil {
				continue
			}
			d.name = StrName(s)
		} else {
			d.name = IntName(uint16(e.ID))
		}
		entries = append(entries, d)
	}
	return entries, nil
}

func (r *Resources) readName(offset uint32) (string, error) {
	off := r.base + int64(offset)
	n, err := r.f.data.u16("reading resource name length", off)
	if err != nil {
		return "", err
	}
	b, err := r.f.data.slice("reading resource name", off+2, int(n)*2)
	if err != nil {
		return "", err
	}
	return DecodeUTF16(b)
}

// leaf resolves a name-level entry to its first decodable language.
func (r *Resources) leaf(e dirEntry) (Resource, error) {
	if !e.isDir {
		return r.data(e.offset, IntName(0))
	}
	langs, err := r.readDir(e.offset)
	if err != nil {
		return Resource{}, err
	}
	for _, l := range langs {
		if l.isDir {
			continue
		}
		if res, err := r.data(l.offset, l.name); err == nil {
			return res, nil
		}
	}
	return Resource{}, errors.Errorf("resource %s has no usable language entry", e.name)
}

func (r *Resources) data(offset uint32, lang Name) (Resource, error) {
	var entry ResourceDataEntry
	if err := r.f.data.read("reading resource data entry", r.base+int64(offset), &entry); err != nil {
		return Resource{}, err
	}
	b, err := r.f.Data(entry.DataRVA, entry.Size)
	if err != nil {
		return Resource{}, err
	}
	return Resource{Lang: lang, Codepage: entry.Codepage, Data: b}, nil
}

// Types yields the resource types present, in directory order.
func (r *Resources) Types() iter.Seq[Name] {
	return func(yield func(Name) bool) {
		root, err := r.readDir(0)
		if err != nil {
			return
		}
		for _, e := range root {
			if e.isDir && !yield(e.name) {
				return
			}
		}
	}
}

// Walk yields every resource of type typ in directory order. Entries that
// cannot be decoded are skipped; the rest are still yielded. The sequence
// can be ranged over any number of times.
func (r *Resources) Walk(typ Name) iter.Seq2[Name, Resource] {
	return func(yield func(Name, Resource) bool) {
		root, err := r.readDir(0)
		if err != nil {
			return
		}
		for _, t := range root {
			if t.name != typ || !t.isDir {
				continue
			}
			names, err := r.readDir(t.offset)
			if err != nil {
				continue
			}
			for _, n := range names {
				res, err := r.leaf(n)
				if err != nil {
					continue
				}
				res.Type, res.Name = typ, n.name
				if !yield(n.name, res) {
					return
				}
			}
		}
	}
}

// Lookup returns the first resource of type typ named name.
func (r *Resources) Lookup(typ, name Name) (Resource, bool) {
	for n, res := range r.Walk(typ) {
		if n == name {
			return res, true
		}
	}
	return Resource{}, false
}
