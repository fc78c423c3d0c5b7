// exeico by John Chadwick <john@jchw.io>
//
// To the extent possible under law, the person who associated CC0 with
// exeico has waived all copyright and related or neighboring rights
// to exeico.
//
// You should have received a copy of the CC0 legalcode along with this
// work.  If not, see <http://creativecommons.org/publicdomain/zero/1.0/>.

package ico

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/jchv/exeico/pe"
	"github.com/pkg/errors"
)

// Icon is an assembled ICO file named after its group resource.
type Icon struct {
	ID   string
	Data []byte
}

// IconNotFoundError reports an identifier that matched no icon group.
type IconNotFoundError struct {
	ID int
}

func (e *IconNotFoundError) Error() string {
	return fmt.Sprintf("icon %d not found", e.ID)
}

// Report counts the outcome of a batch extraction.
type Report struct {
	Attempted int
	Succeeded int
	Failures  []error
}

func assemble(res *pe.Resources, name pe.Name, g *pe.GroupIcon) (*Icon, error) {
	data, err := Assemble(g, res.Icon)
	if err != nil {
		return nil, errors.Wrapf(err, "assembling icon group %s", name)
	}
	return &Icon{ID: name.String(), Data: data}, nil
}

func groupByName(res *pe.Resources, want pe.Name) (*pe.GroupIcon, bool) {
	for name, g := range res.IconGroups() {
		if name == want {
			return g, true
		}
	}
	return nil, false
}

func groupByOrdinal(res *pe.Resources, index int) (pe.Name, *pe.GroupIcon, bool) {
	if index < 0 {
		return pe.Name{}, nil, false
	}
	i := 0
	for name, g := range res.IconGroups() {
		if i == index {
			return name, g, true
		}
		i++
	}
	return pe.Name{}, nil, false
}

// ByID assembles the group whose numeric name is id. If there is none, the
// same lookup is retried with the sign of id flipped.
func ByID(res *pe.Resources, id int) (*Icon, error) {
	for _, candidate := range []int{id, -id} {
		if candidate < 0 || candidate > 0xffff {
			continue
		}
		name := pe.IntName(uint16(candidate))
		if g, ok := groupByName(res, name); ok {
			return assemble(res, name, g)
		}
	}
	return nil, &IconNotFoundError{ID: id}
}

// ByOrdinal assembles the index-th group in enumeration order.
func ByOrdinal(res *pe.Resources, index int) (*Icon, error) {
	name, g, ok := groupByOrdinal(res, index)
	if !ok {
		return nil, &IconNotFoundError{ID: index}
	}
	return assemble(res, name, g)
}

// FindGroup interprets n the way ExtractIconEx does: a non-negative n is
// an ordinal, a negative one is the resource ID -n.
func FindGroup(res *pe.Resources, n int) (pe.Name, *pe.GroupIcon, error) {
	if n >= 0 {
		if name, g, ok := groupByOrdinal(res, n); ok {
			return name, g, nil
		}
	} else if -n <= 0xffff {
		name := pe.IntName(uint16(-n))
		if g, ok := groupByName(res, name); ok {
			return name, g, nil
		}
	}
	return pe.Name{}, nil, &IconNotFoundError{ID: n}
}

// ByIndexOrID tries FindGroup with id, then with -id. The first candidate
// that assembles wins. If a group was found but could not be assembled,
// that error is returned.
func ByIndexOrID(res *pe.Resources, id int) (*Icon, error) {
	var assembleErr error
	for _, candidate := range []int{id, -id} {
		name, g, err := FindGroup(res, candidate)
		if err != nil {
			continue
		}
		icon, err := assemble(res, name, g)
		if err == nil {
			return icon, nil
		}
		assembleErr = err
	}
	if assembleErr != nil {
		return nil, assembleErr
	}
	return nil, &IconNotFoundError{ID: id}
}

// All assembles every icon group. Groups the walker cannot decode are
// never attempted; groups that fail to assemble are logged, recorded in
// the report and skipped.
func All(res *pe.Resources, logger hclog.Logger) ([]Icon, Report) {
	logger = orNull(logger)
	var (
		icons  []Icon
		report Report
	)
	for name, g := range res.IconGroups() {
		report.Attempted++
		icon, err := assemble(res, name, g)
		if err != nil {
			logger.Warn("skipping icon group", "name", name.String(), "error", err)
			report.Failures = append(report.Failures, err)
			continue
		}
		report.Succeeded++
		icons = append(icons, *icon)
	}
	return icons, report
}

func orNull(logger hclog.Logger) hclog.Logger {
	if logger == nil {
		return hclog.NewNullLogger()
	}
	return logger
}
