// exeico by John Chadwick <john@jchw.io>
//
// To the extent possible under law, the person who associated CC0 with
// exeico has waived all copyright and related or neighboring rights
// to exeico.
//
// You should have received a copy of the CC0 legalcode along with this
// work.  If not, see <http://creativecommons.org/publicdomain/zero/1.0/>.

// Package config reads exeico settings from the environment.
package config

import (
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/jchv/exeico/ico"
	"github.com/xyproto/env/v2"
)

const (
	DefaultLogLevel   = "info"
	DefaultDLLFormat  = "png"
	DefaultPowerShell = "powershell"
)

// Config holds the environment-provided defaults. Command line flags take
// precedence over every field.
type Config struct {
	LogLevel    string // EXEICO_LOG_LEVEL
	DLLFormat   string // EXEICO_DLL_FORMAT
	PowerShell  string // EXEICO_POWERSHELL
	MaxIconSize int    // EXEICO_MAX_ICO_SIZE
	Verbose     bool   // EXEICO_VERBOSE, forces debug logging
}

// Load reads the configuration from the environment.
func Load() Config {
	c := Config{
		LogLevel:    env.Str("EXEICO_LOG_LEVEL", DefaultLogLevel),
		DLLFormat:   strings.ToLower(strings.TrimSpace(env.Str("EXEICO_DLL_FORMAT", DefaultDLLFormat))),
		PowerShell:  env.Str("EXEICO_POWERSHELL", DefaultPowerShell),
		MaxIconSize: env.Int("EXEICO_MAX_ICO_SIZE", ico.DefaultMaxIconSize),
		Verbose:     env.Bool("EXEICO_VERBOSE"),
	}
	if c.MaxIconSize <= 0 {
		c.MaxIconSize = ico.DefaultMaxIconSize
	}
	return c
}

// Level resolves the configured log level. Unknown names fall back to info.
func (c Config) Level() hclog.Level {
	if c.Verbose {
		return hclog.Debug
	}
	level := hclog.LevelFromString(strings.TrimSpace(c.LogLevel))
	if level == hclog.NoLevel {
		return hclog.Info
	}
	return level
}

// Logger builds the command line logger writing to w.
func (c Config) Logger(w io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "exeico",
		Level:  c.Level(),
		Output: w,
	})
}

// Encoder returns the encoder configured by MaxIconSize.
func (c Config) Encoder() ico.Encoder {
	return ico.Encoder{MaxIconSize: c.MaxIconSize}
}
