// exeico by John Chadwick <john@jchw.io>
//
// To the extent possible under law, the person who associated CC0 with
// exeico has waived all copyright and related or neighboring rights
// to exeico.
//
// You should have received a copy of the CC0 legalcode along with this
// work.  If not, see <http://creativecommons.org/publicdomain/zero/1.0/>.

package config

import (
	"bytes"
	"os"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/jchv/exeico/ico"
	"github.com/stretchr/testify/assert"
	"github.com/xyproto/env/v2"
)

func TestLoadDefaults(t *testing.T) {
	for _, name := range []string{"EXEICO_LOG_LEVEL", "EXEICO_DLL_FORMAT", "EXEICO_POWERSHELL", "EXEICO_MAX_ICO_SIZE", "EXEICO_VERBOSE"} {
		if _, ok := os.LookupEnv(name); ok {
			t.Skipf("%s is set", name)
		}
	}
	c := Load()
	assert.Equal(t, Config{
		LogLevel:    DefaultLogLevel,
		DLLFormat:   DefaultDLLFormat,
		PowerShell:  DefaultPowerShell,
		MaxIconSize: ico.DefaultMaxIconSize,
	}, c)
}

func TestLoadNormalisesFormat(t *testing.T) {
	// env caches the environment, so reload it after the variable is
	// restored too.
	t.Cleanup(env.Load)
	t.Setenv("EXEICO_DLL_FORMAT", " Png ")
	env.Load()

	c := Load()
	assert.Equal(t, "png", c.DLLFormat)
	format, err := ico.ParseFormat(c.DLLFormat)
	assert.NoError(t, err)
	assert.Equal(t, ico.PNG, format)
}

func TestLevel(t *testing.T) {
	tests := []struct {
		c    Config
		want hclog.Level
	}{
		{Config{LogLevel: "info"}, hclog.Info},
		{Config{LogLevel: " DEBUG "}, hclog.Debug},
		{Config{LogLevel: "warn"}, hclog.Warn},
		{Config{LogLevel: "nonsense"}, hclog.Info},
		{Config{LogLevel: ""}, hclog.Info},
		{Config{LogLevel: "error", Verbose: true}, hclog.Debug},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, test.c.Level(), "%+v", test.c)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := Config{LogLevel: "warn"}.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "exeico: shown")
	assert.Contains(t, buf.String(), "key=value")
}

func TestEncoder(t *testing.T) {
	assert.Equal(t, ico.Encoder{MaxIconSize: 64}, Config{MaxIconSize: 64}.Encoder())
}
