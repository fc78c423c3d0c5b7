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
	"strings"

	"github.com/pkg/errors"
)

// StringsPerBlock is the number of strings in one RT_STRING resource.
// String id lives in block id/16+1 at slot id%16.
const StringsPerBlock = 16

// StringBlock returns the RT_STRING resource name and slot holding id.
func StringBlock(id uint32) (block uint32, slot int) {
	return id/StringsPerBlock + 1, int(id % StringsPerBlock)
}

// String looks up a string table entry. Empty entries count as missing.
func (r *Resources) String(id uint32) (string, error) {
	block, slot := StringBlock(id)
	if block > 0xffff {
		return "", errors.Wrapf(ErrResourceNotFound, "string %d", id)
	}
	res, ok := r.Lookup(IntName(ResourceString), IntName(uint16(block)))
	if !ok {
		return "", errors.Wrapf(ErrResourceNotFound, "string %d", id)
	}

	data := reader(res.Data)
	off := int64(0)
	for i := 0; ; i++ {
		n, err := data.u16("reading string length", off)
		if err != nil {
			return "", errors.Wrapf(err, "string table block %d", block)
		}
		off += 2
		if i == slot {
			if n == 0 {
				return "", errors.Wrapf(ErrResourceNotFound, "string %d", id)
			}
			b, err := data.slice("reading string", off, int(n)*2)
			if err != nil {
				return "", errors.Wrapf(err, "string table block %d", block)
			}
			return DecodeUTF16(b)
		}
		off += int64(n) * 2
	}
}

// Strings yields every non-empty string table entry by ID, in directory
// order. Blocks that cannot be decoded are skipped from the first bad
// entry on.
func (r *Resources) Strings() iter.Seq2[uint32, string] {
	return func(yield func(uint32, string) bool) {
		for name, res := range r.Walk(IntName(ResourceString)) {
			block, ok := name.ID()
			if !ok || block == 0 {
				continue
			}
			data := reader(res.Data)
			off := int64(0)
			for slot := uint32(0); slot < StringsPerBlock; slot++ {
				n, err := data.u16("reading string length", off)
				if err != nil {
					break
				}
				b, err := data.slice("reading string", off+2, int(n)*2)
				if err != nil {
					break
				}
				off += 2 + int64(n)*2
				if n == 0 {
					continue
				}
				s, err := DecodeUTF16(b)
				if err != nil {
					continue
				}
				if !yield((uint32(block)-1)*StringsPerBlock+slot, s) {
					return
				}
			}
		}
	}
}

// RCData returns the RT_RCDATA resource with the given ID.
func (r *Resources) RCData(id uint16) ([]byte, bool) {
	res, ok := r.Lookup(IntName(ResourceRCData), IntName(id))
	return res.Data, ok
}

// Text resolves id the way LoadString followed by a raw data fallback
// would: the string table first, then RT_RCDATA decoded as UTF-8 with
// invalid sequences replaced. A string table block that cannot be decoded
// counts as missing. Negative IDs are treated as their absolute value.
func (r *Resources) Text(id int) (string, error) {
	if id < 0 {
		id = -id
	}
	s, err := r.String(uint32(id))
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrResourceNotFound) {
		r.logger().Debug("cannot decode string, trying RT_RCDATA", "id", id, "error", err)
	}
	if id <= 0xffff {
		if b, ok := r.RCData(uint16(id)); ok {
			return strings.ToValidUTF8(string(b), "�"), nil
		}
	}
	if !errors.Is(err, ErrResourceNotFound) {
		return "", err
	}
	return "", errors.Wrapf(ErrResourceNotFound, "text resource %d", id)
}
