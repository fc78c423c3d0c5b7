// exeico by John Chadwick <john@jchw.io>
//
// To the extent possible under law, the person who associated CC0 with
// exeico has waived all copyright and related or neighboring rights
// to exeico.
//
// You should have received a copy of the CC0 legalcode along with this
// work.  If not, see <http://creativecommons.org/publicdomain/zero/1.0/>.

package render

import "github.com/hashicorp/go-hclog"

// releaser is implemented by every native handle guard.
type releaser interface {
	Release() error
}

type heldHandle struct {
	what string
	r    releaser
}

// handles collects the guards acquired while rendering. release frees them
// most recent first; failures are logged and do not stop the others.
type handles struct {
	logger hclog.Logger
	held   []heldHandle
}

func (h *handles) add(what string, r releaser) {
	h.held = append(h.held, heldHandle{what: what, r: r})
}

func (h *handles) release() {
	logger := orNull(h.logger)
	for i := len(h.held) - 1; i >= 0; i-- {
		if err := h.held[i].r.Release(); err != nil {
			logger.Warn("failed to release handle", "handle", h.held[i].what, "error", err)
		}
	}
	h.held = nil
}
