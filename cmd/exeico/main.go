// exeico by John Chadwick <john@jchw.io>
//
// To the extent possible under law, the person who associated CC0 with
// exeico has waived all copyright and related or neighboring rights
// to exeico.
//
// You should have received a copy of the CC0 legalcode along with this
// work.  If not, see <http://creativecommons.org/publicdomain/zero/1.0/>.

package main

import (
	"os"

	"github.com/jchv/exeico/config"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

var (
	cfg = config.Load()

	app         = kingpin.New("exeico", "Extracts icons and strings from Windows executables.")
	logLevel    = app.Flag("log-level", "Log level (trace, debug, info, warn, error).").Default(cfg.LogLevel).String()
	verbose     = app.Flag("verbose", "Log at debug level.").Short('v').Default(boolDefault(cfg.Verbose)).Bool()
	maxIconSize = app.Flag("max-ico-size", "Largest edge of rendered ICO output.").Default(itoa(cfg.MaxIconSize)).Int()

	exeCommand = app.Command("exe", "Extract the icon the shell associates with a file.")
	exePath    = exeCommand.Arg("exe", "Executable to read.").Required().String()
	exeOut     = exeCommand.Arg("ico", "ICO file to write.").Required().String()

	dllCommand = app.Command("dll", "Render every icon of a library into a directory.")
	dllPath    = dllCommand.Arg("dll", "Library to read.").Required().String()
	dllDir     = dllCommand.Arg("dir", "Output directory.").Required().String()
	dllFormat  = dllCommand.Flag("format", "Output format (png or ico).").Default(cfg.DLLFormat).String()

	dllIcoCommand = app.Command("dll-ico", "Render one icon of a library. Put -- before negative IDs.")
	dllIcoPath    = dllIcoCommand.Arg("dll", "Library to read.").Required().String()
	dllIcoID      = dllIcoCommand.Arg("id", "Ordinal, or resource ID when negative.").Required().Int()
	dllIcoOut     = dllIcoCommand.Arg("out", "File to write; .png writes PNG, anything else ICO.").Required().String()

	dllTxtCommand = app.Command("dll-txt", "Print a string table or RCDATA resource. Put -- before negative IDs.")
	dllTxtPath    = dllTxtCommand.Arg("dll", "Library to read.").Required().String()
	dllTxtID      = dllTxtCommand.Arg("id", "Resource ID.").Required().Int()

	binCommand = app.Command("bin", "Copy every icon group of a binary into a directory of ICO files.")
	binPath    = binCommand.Arg("bin", "Binary to read.").Required().String()
	binDir     = binCommand.Arg("dir", "Output directory.").Required().String()

	binIcoCommand = app.Command("bin-ico", "Copy one icon group of a binary into an ICO file. Put -- before negative IDs.")
	binIcoPath    = binIcoCommand.Arg("bin", "Binary to read.").Required().String()
	binIcoID      = binIcoCommand.Arg("id", "Group resource ID.").Required().Int()
	binIcoOut     = binIcoCommand.Arg("out", "ICO file to write.").Required().String()
	binIcoOrdinal = binIcoCommand.Flag("ordinal", "Treat id as a position in enumeration order.").Bool()
	binIcoIndex   = binIcoCommand.Flag("index", "Treat id like dll-ico does: an ordinal, or a resource ID when negative.").Bool()

	infoCommand = app.Command("info", "Describe the headers and resources of a binary.")
	infoPath    = infoCommand.Arg("bin", "Binary to read.").Required().String()

	mockCommand  = app.Command("mock", "Write a minimal executable carrying an icon group.")
	mockOut      = mockCommand.Arg("out", "Executable to write.").Required().String()
	mockPE32Plus = mockCommand.Flag("pe32plus", "Write a PE32+ image instead of PE32.").Bool()
	mockSizes    = mockCommand.Flag("size", "Icon edge to include; repeatable.").Default("16", "32", "48").Ints()
	mockBPP      = mockCommand.Flag("bpp", "Bit depth of the icon images (1, 4, 8, 16, 24 or 32); 0 picks one.").Default("0").Int()
	mockPNG      = mockCommand.Flag("png", "Source image; a generated pattern when omitted.").ExistingFile()
	mockICO      = mockCommand.Flag("ico", "Also write the icon group as an ICO file.").String()
	mockStrings  = mockCommand.Flag("string", "String table entry as ID=TEXT; repeatable.").StringMap()
)

func main() {
	app.HelpFlag.Short('h')
	app.UsageTemplate(kingpin.CompactUsageTemplate)
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	settings := cfg
	settings.LogLevel = *logLevel
	settings.Verbose = *verbose
	settings.MaxIconSize = *maxIconSize
	logger := settings.Logger(os.Stderr)

	switch command {
	case exeCommand.FullCommand():
		doExe(settings, logger)

	case dllCommand.FullCommand():
		doDLL(settings, logger)

	case dllIcoCommand.FullCommand():
		doDLLIco(settings, logger)

	case dllTxtCommand.FullCommand():
		doDLLTxt(logger)

	case binCommand.FullCommand():
		doBin(logger)

	case binIcoCommand.FullCommand():
		doBinIco()

	case infoCommand.FullCommand():
		doInfo()

	case mockCommand.FullCommand():
		doMock(logger)
	}
}
