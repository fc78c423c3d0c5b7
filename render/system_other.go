// exeico by John Chadwick <john@jchw.io>
//
// To the extent possible under law, the person who associated CC0 with
// exeico has waived all copyright and related or neighboring rights
// to exeico.
//
// You should have received a copy of the CC0 legalcode along with this
// work.  If not, see <http://creativecommons.org/publicdomain/zero/1.0/>.

//go:build !windows

package render

import "github.com/hashicorp/go-hclog"

// NewSystemRenderer returns the native renderer of the platform. Without
// a shell to ask, icons are decoded from the resource section.
func NewSystemRenderer(logger hclog.Logger) Renderer {
	return &ResourceRenderer{Logger: logger}
}

// NewAssociatedRenderer returns the platform's associated-icon renderer.
func NewAssociatedRenderer(powershell string, logger hclog.Logger) AssociatedRenderer {
	return &FirstGroup{}
}
