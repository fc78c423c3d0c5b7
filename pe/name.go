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
	"strconv"

	"golang.org/x/text/encoding/unicode"
)

// Name identifies a resource type, name or language. It is either a
// 16-bit ID or a string. Names are comparable with ==.
type Name struct {
	id    uint16
	str   string
	isStr bool
}

// IntName returns a numeric resource name.
func IntName(id uint16) Name { return Name{id: id} }

// StrName returns a string resource name.
func StrName(s string) Name { return Name{str: s, isStr: true} }

// ID returns the numeric value of n, if it has one.
func (n Name) ID() (uint16, bool) { return n.id, !n.isStr }

// IsString reports whether n is a string name.
func (n Name) IsString() bool { return n.isStr }

// String returns the name in the form used for output file names: the
// decimal ID, or the string itself.
func (n Name) String() string {
	if n.isStr {
		return n.str
	}
	return strconv.Itoa(int(n.id))
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DecodeUTF16 decodes little-endian UTF-16 without a byte order mark.
func DecodeUTF16(b []byte) (string, error) {
	s, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(s), nil
}

// EncodeUTF16 is the inverse of DecodeUTF16.
func EncodeUTF16(s string) ([]byte, error) {
	return utf16le.NewEncoder().Bytes([]byte(s))
}
