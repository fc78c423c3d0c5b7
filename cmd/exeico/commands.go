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
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/jchv/exeico/config"
	"github.com/jchv/exeico/ico"
	"github.com/jchv/exeico/pe"
	"github.com/jchv/exeico/render"
	"github.com/pkg/errors"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

var resourceTypeNames = map[uint16]string{
	pe.ResourceCursor:      "RT_CURSOR",
	pe.ResourceBitmap:      "RT_BITMAP",
	pe.ResourceIcon:        "RT_ICON",
	pe.ResourceString:      "RT_STRING",
	pe.ResourceRCData:      "RT_RCDATA",
	pe.ResourceGroupCursor: "RT_GROUP_CURSOR",
	pe.ResourceGroupIcon:   "RT_GROUP_ICON",
	pe.ResourceVersion:     "RT_VERSION",
	pe.ResourceManifest:    "RT_MANIFEST",
}

func doExe(settings config.Config, logger hclog.Logger) {
	data, err := render.NewAssociatedRenderer(settings.PowerShell, logger).Associated(*exePath)
	kingpin.FatalIfError(err, "Failed to get exe icon")
	writeFile(*exeOut, data)
	fmt.Printf("Extracted main icon from %s to %s\n", *exePath, *exeOut)
}

func doDLL(settings config.Config, logger hclog.Logger) {
	format, err := ico.ParseFormat(*dllFormat)
	kingpin.FatalIfError(err, "Bad format")

	icons, report, err := render.Extract(render.NewSystemRenderer(logger), *dllPath, settings.Encoder(), format, logger)
	kingpin.FatalIfError(err, "Failed to get dll icons")
	createDirectory(*dllDir)
	for i, data := range icons {
		writeFile(filepath.Join(*dllDir, strconv.Itoa(i)+format.Ext()), data)
	}
	fmt.Printf("Extracted %d icons from %s to %s\n", len(icons), *dllPath, *dllDir)
	if len(report.Failures) > 0 {
		fmt.Printf("%d of %d icons could not be encoded\n", len(report.Failures), report.Attempted)
	}
}

func doDLLIco(settings config.Config, logger hclog.Logger) {
	format := ico.ICO
	if strings.EqualFold(filepath.Ext(*dllIcoOut), ico.PNG.Ext()) {
		format = ico.PNG
	}
	data, err := render.One(render.NewSystemRenderer(logger), *dllIcoPath, *dllIcoID, settings.Encoder(), format)
	kingpin.FatalIfError(err, "Failed to get dll ico")
	writeFile(*dllIcoOut, data)
	fmt.Printf("Extracted DLL icon from %s to %s\n", *dllIcoPath, *dllIcoOut)
}

func doDLLTxt(logger hclog.Logger) {
	res := openResources(*dllTxtPath)
	res.Logger = logger
	txt, err := res.Text(*dllTxtID)
	kingpin.FatalIfError(err, "Failed to get dll txt")
	fmt.Println(txt)
}

func doBin(logger hclog.Logger) {
	res := openResources(*binPath)
	icons, report := ico.All(res, logger)
	createDirectory(*binDir)
	for _, icon := range icons {
		writeFile(filepath.Join(*binDir, fileName(icon.ID)+ico.ICO.Ext()), icon.Data)
	}
	fmt.Printf("Extracted %d icons from %s to %s\n", len(icons), *binPath, *binDir)
	if len(report.Failures) > 0 {
		fmt.Printf("%d of %d icon groups could not be assembled\n", len(report.Failures), report.Attempted)
	}
}

func doBinIco() {
	res := openResources(*binIcoPath)
	var (
		icon *ico.Icon
		err  error
	)
	switch {
	case *binIcoOrdinal:
		icon, err = ico.ByOrdinal(res, *binIcoID)
	case *binIcoIndex:
		icon, err = ico.ByIndexOrID(res, *binIcoID)
	default:
		icon, err = ico.ByID(res, *binIcoID)
	}
	kingpin.FatalIfError(err, "Failed to get icon")
	writeFile(*binIcoOut, icon.Data)
	fmt.Printf("Extracted icon %d from %s to %s\n", *binIcoID, *binIcoPath, *binIcoOut)
}

func doInfo() {
	b := readFile(*infoPath)
	f, err := pe.Open(b)
	kingpin.FatalIfError(err, "Can not parse %s", *infoPath)

	fmt.Printf("%s: %s, machine %#04x, %d sections\n", *infoPath, f.Bitness, f.FileHeader.Machine, len(f.Sections))
	for _, s := range f.Sections {
		fmt.Printf("  section %-8s rva %#08x size %#x\n", pe.SectionName(s), s.VirtualAddress, s.SizeOfRawData)
	}

	res, err := f.Resources()
	if errors.Is(err, pe.ErrNoResources) {
		fmt.Println("  no resources")
		return
	}
	kingpin.FatalIfError(err, "Can not read resources of %s", *infoPath)
	for typ := range res.Types() {
		count := 0
		for range res.Walk(typ) {
			count++
		}
		fmt.Printf("  %-16s %d\n", typeName(typ), count)
	}
	for id, str := range res.Strings() {
		fmt.Printf("  string %-9d %q\n", id, str)
	}
}

func typeName(n pe.Name) string {
	if id, ok := n.ID(); ok {
		if name, ok := resourceTypeNames[id]; ok {
			return name
		}
	}
	return n.String()
}

func openResources(path string) *pe.Resources {
	f, err := pe.Open(readFile(path))
	kingpin.FatalIfError(err, "Can not parse %s", path)
	res, err := f.Resources()
	kingpin.FatalIfError(err, "Can not read resources of %s", path)
	return res
}

func readFile(path string) []byte {
	b, err := os.ReadFile(path)
	kingpin.FatalIfError(err, "Read %s", path)
	return b
}

func writeFile(path string, data []byte) {
	kingpin.FatalIfError(os.WriteFile(path, data, 0644), "Write %s", path)
}

func createDirectory(dir string) {
	kingpin.FatalIfError(os.MkdirAll(dir, 0755), "Create directory %s", dir)
}

// fileName keeps string resource names from escaping the output directory.
func fileName(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, id)
}

func boolDefault(v bool) string { return strconv.FormatBool(v) }

func itoa(v int) string { return strconv.Itoa(v) }
