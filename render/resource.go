// exeico by John Chadwick <john@jchw.io>
//
// To the extent possible under law, the person who associated CC0 with
// exeico has waived all copyright and related or neighboring rights
// to exeico.
//
// You should have received a copy of the CC0 legalcode along with this
// work.  If not, see <http://creativecommons.org/publicdomain/zero/1.0/>.

package render

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/jchv/exeico/ico"
	"github.com/jchv/exeico/pe"
	"github.com/pkg/errors"
)

// ResourceRenderer renders icons by decoding the RT_ICON images of a file
// directly. It works anywhere and mirrors what ExtractIconEx returns: for
// each group a large icon (its biggest image) and a small one (its
// smallest), large icons first.
type ResourceRenderer struct {
	// ReadFile defaults to os.ReadFile.
	ReadFile func(name string) ([]byte, error)
	Logger   hclog.Logger
}

func (r *ResourceRenderer) Render(path string, id *int) ([]ico.PixelBuffer, error) {
	logger := orNull(r.Logger)
	res, err := openResources(r.ReadFile, path)
	if err != nil {
		return nil, err
	}

	var groups []*pe.GroupIcon
	if id != nil {
		_, g, err := ico.FindGroup(res, *id)
		if err != nil {
			return nil, errors.Wrap(ErrNoIcons, err.Error())
		}
		groups = append(groups, g)
	} else {
		for _, g := range res.IconGroups() {
			groups = append(groups, g)
		}
	}

	var large, small []ico.PixelBuffer
	for _, g := range groups {
		big, little, ok := extremes(g)
		if !ok {
			continue
		}
		buf, err := decodeBGRA(res, big)
		if err != nil {
			logger.Debug("cannot decode icon image", "id", big.ResourceID, "error", err)
			continue
		}
		large = append(large, buf)
		if little == big {
			continue
		}
		if buf, err := decodeBGRA(res, little); err == nil {
			small = append(small, buf)
		} else {
			logger.Debug("cannot decode icon image", "id", little.ResourceID, "error", err)
		}
	}
	return append(large, small...), nil
}

func openResources(readFile func(string) ([]byte, error), path string) (*pe.Resources, error) {
	if readFile == nil {
		readFile = os.ReadFile
	}
	b, err := readFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	f, err := pe.Open(b)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	res, err := f.Resources()
	if errors.Is(err, pe.ErrNoResources) {
		return nil, ErrNoIcons
	}
	return res, err
}

// extremes picks the largest and smallest entries of a group, preferring
// deeper colour at equal size.
func extremes(g *pe.GroupIcon) (big, little pe.GroupIconDirectoryEntry, ok bool) {
	if len(g.Entries) == 0 {
		return big, little, false
	}
	key := func(e pe.GroupIconDirectoryEntry) (int, int) {
		return edge(e.Width) * edge(e.Height), int(e.BPP)
	}
	big, little = g.Entries[0], g.Entries[0]
	for _, e := range g.Entries[1:] {
		area, bpp := key(e)
		bigArea, bigBPP := key(big)
		if area > bigArea || area == bigArea && bpp > bigBPP {
			big = e
		}
		littleArea, littleBPP := key(little)
		if area < littleArea || area == littleArea && bpp > littleBPP {
			little = e
		}
	}
	return big, little, true
}

func edge(v uint8) int {
	if v == 0 {
		return 256
	}
	return int(v)
}

func decodeBGRA(res *pe.Resources, e pe.GroupIconDirectoryEntry) (ico.PixelBuffer, error) {
	data, ok := res.Icon(e.ResourceID)
	if !ok {
		return ico.PixelBuffer{}, &ico.MissingIconError{ID: e.ResourceID}
	}
	img, err := ico.DecodeImage(data)
	if err != nil {
		return ico.PixelBuffer{}, err
	}
	buf := ico.FromImage(img)
	buf.ConvertChannelOrder()
	return buf, nil
}

// FirstGroup is the portable stand-in for the shell's associated icon: the
// first icon group of the file, assembled as an ICO.
type FirstGroup struct {
	ReadFile func(name string) ([]byte, error)
}

func (f *FirstGroup) Associated(path string) ([]byte, error) {
	res, err := openResources(f.ReadFile, path)
	if err != nil {
		return nil, err
	}
	icon, err := ico.ByOrdinal(res, 0)
	if err != nil {
		return nil, errors.Wrap(ErrNoIcons, err.Error())
	}
	return icon.Data, nil
}
