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
	"bytes"
	"encoding/base64"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

const associatedIconScript = `Add-Type -AssemblyName System.Drawing
$icon = [System.Drawing.Icon]::ExtractAssociatedIcon('%s')
if ($icon -ne $null) {
	$ms = New-Object System.IO.MemoryStream
	$icon.Save($ms)
	[Convert]::ToBase64String($ms.ToArray())
}`

// PowerShell asks System.Drawing.Icon.ExtractAssociatedIcon for the icon
// the shell shows for a file.
type PowerShell struct {
	// Command defaults to "powershell".
	Command string
	Logger  hclog.Logger
}

func (p *PowerShell) Associated(path string) ([]byte, error) {
	command := p.Command
	if command == "" {
		command = "powershell"
	}
	script := fmt.Sprintf(associatedIconScript, quote(path))

	var stderr bytes.Buffer
	cmd := exec.Command(command, "-NoProfile", "-NonInteractive", "-Command", script)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, errors.Wrapf(err, "running %s: %s", command, strings.TrimSpace(stderr.String()))
	}
	orNull(p.Logger).Debug("associated icon script finished", "path", path, "output_bytes", len(out))
	return decodeBase64Output(out)
}

// quote escapes s for a single-quoted PowerShell string.
func quote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func decodeBase64Output(out []byte) ([]byte, error) {
	text := strings.TrimSpace(string(out))
	if text == "" {
		return nil, ErrNoIcons
	}
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, errors.Wrap(err, "decoding associated icon")
	}
	return data, nil
}
