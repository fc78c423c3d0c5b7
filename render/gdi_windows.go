// exeico by John Chadwick <john@jchw.io>
//
// To the extent possible under law, the person who associated CC0 with
// exeico has waived all copyright and related or neighboring rights
// to exeico.
//
// You should have received a copy of the CC0 legalcode along with this
// work.  If not, see <http://creativecommons.org/publicdomain/zero/1.0/>.

//go:build windows

package render

import (
	"unsafe"

	"github.com/hashicorp/go-hclog"
	"github.com/jchv/exeico/ico"
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

var (
	shell32 = windows.NewLazySystemDLL("shell32.dll")
	user32  = windows.NewLazySystemDLL("user32.dll")
	gdi32   = windows.NewLazySystemDLL("gdi32.dll")

	procExtractIconExW     = shell32.NewProc("ExtractIconExW")
	procGetIconInfo        = user32.NewProc("GetIconInfo")
	procDestroyIcon        = user32.NewProc("DestroyIcon")
	procCreateCompatibleDC = gdi32.NewProc("CreateCompatibleDC")
	procDeleteDC           = gdi32.NewProc("DeleteDC")
	procSelectObject       = gdi32.NewProc("SelectObject")
	procGetDIBits          = gdi32.NewProc("GetDIBits")
	procDeleteObject       = gdi32.NewProc("DeleteObject")
)

const (
	biRGB        = 0
	dibRGBColors = 0
)

type iconInfo struct {
	FIcon    int32
	XHotspot uint32
	YHotspot uint32
	HbmMask  windows.Handle
	HbmColor windows.Handle
}

type bitmapInfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

type bitmapInfo struct {
	Header bitmapInfoHeader
	Colors [1]uint32
}

type iconHandle windows.Handle

func (h iconHandle) Release() error {
	if h == 0 {
		return nil
	}
	if r, _, err := procDestroyIcon.Call(uintptr(h)); r == 0 {
		return errors.Wrap(err, "DestroyIcon")
	}
	return nil
}

type bitmapHandle windows.Handle

func (h bitmapHandle) Release() error {
	if h == 0 {
		return nil
	}
	if r, _, _ := procDeleteObject.Call(uintptr(h)); r == 0 {
		return errors.New("DeleteObject failed")
	}
	return nil
}

type deviceContext windows.Handle

func createCompatibleDC(parent deviceContext) (deviceContext, error) {
	r, _, err := procCreateCompatibleDC.Call(uintptr(parent))
	if r == 0 {
		return 0, errors.Wrap(err, "CreateCompatibleDC")
	}
	return deviceContext(r), nil
}

func (dc deviceContext) Release() error {
	if r, _, _ := procDeleteDC.Call(uintptr(dc)); r == 0 {
		return errors.New("DeleteDC failed")
	}
	return nil
}

// selection restores the object a device context held before a
// SelectObject call.
type selection struct {
	dc  deviceContext
	old uintptr
}

func selectObject(dc deviceContext, obj windows.Handle) (selection, error) {
	old, _, _ := procSelectObject.Call(uintptr(dc), uintptr(obj))
	if old == 0 {
		return selection{}, errors.New("SelectObject failed")
	}
	return selection{dc: dc, old: old}, nil
}

func (s selection) Release() error {
	if r, _, _ := procSelectObject.Call(uintptr(s.dc), s.old); r == 0 {
		return errors.New("restoring selected object failed")
	}
	return nil
}

// GDIRenderer renders icons with ExtractIconEx and GetDIBits.
type GDIRenderer struct {
	Logger hclog.Logger
}

// NewSystemRenderer returns the native renderer of the platform.
func NewSystemRenderer(logger hclog.Logger) Renderer {
	return &GDIRenderer{Logger: logger}
}

// NewAssociatedRenderer returns the platform's associated-icon renderer.
func NewAssociatedRenderer(powershell string, logger hclog.Logger) AssociatedRenderer {
	return &PowerShell{Command: powershell, Logger: logger}
}

func (g *GDIRenderer) Render(path string, id *int) ([]ico.PixelBuffer, error) {
	file, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, errors.Wrapf(err, "converting path %q", path)
	}

	total, index := 1, 0
	if id == nil {
		n, _, _ := procExtractIconExW.Call(uintptr(unsafe.Pointer(file)), ^uintptr(0), 0, 0, 0)
		total = int(n)
	} else {
		index = *id
	}
	if total == 0 {
		return nil, ErrNoIcons
	}

	large := make([]windows.Handle, total)
	small := make([]windows.Handle, total)
	n, _, _ := procExtractIconExW.Call(
		uintptr(unsafe.Pointer(file)),
		uintptr(index),
		uintptr(unsafe.Pointer(&large[0])),
		uintptr(unsafe.Pointer(&small[0])),
		uintptr(total),
	)
	icons := append(large, small...)
	held := &handles{logger: g.Logger}
	defer held.release()
	for _, h := range icons {
		held.add("icon", iconHandle(h))
	}
	if n == 0 {
		return nil, ErrNoIcons
	}

	var out []ico.PixelBuffer
	for _, h := range icons {
		if h == 0 {
			continue
		}
		buf, err := g.pixels(h)
		if err != nil {
			orNull(g.Logger).Debug("cannot read icon bitmap", "error", err)
			continue
		}
		out = append(out, buf)
	}
	return out, nil
}

// pixels reads the color bitmap of an icon as top-down BGRA.
func (g *GDIRenderer) pixels(h windows.Handle) (ico.PixelBuffer, error) {
	var info iconInfo
	if r, _, err := procGetIconInfo.Call(uintptr(h), uintptr(unsafe.Pointer(&info))); r == 0 {
		return ico.PixelBuffer{}, errors.Wrap(err, "GetIconInfo")
	}
	held := &handles{logger: g.Logger}
	defer held.release()
	held.add("mask bitmap", bitmapHandle(info.HbmMask))
	held.add("color bitmap", bitmapHandle(info.HbmColor))
	if info.HbmColor == 0 {
		return ico.PixelBuffer{}, errors.New("monochrome icons are not supported")
	}

	width, height := int(info.XHotspot)*2, int(info.YHotspot)*2
	if width == 0 || height == 0 {
		return ico.PixelBuffer{}, errors.Errorf("bad icon dimensions %dx%d", width, height)
	}

	screen, err := createCompatibleDC(0)
	if err != nil {
		return ico.PixelBuffer{}, err
	}
	held.add("screen device context", screen)
	mem, err := createCompatibleDC(screen)
	if err != nil {
		return ico.PixelBuffer{}, err
	}
	held.add("memory device context", mem)
	sel, err := selectObject(mem, info.HbmColor)
	if err != nil {
		return ico.PixelBuffer{}, err
	}
	held.add("selected bitmap", sel)

	bi := bitmapInfo{Header: bitmapInfoHeader{
		Size:        uint32(unsafe.Sizeof(bitmapInfoHeader{})),
		Width:       int32(width),
		Height:      -int32(height),
		Planes:      1,
		BitCount:    32,
		Compression: biRGB,
	}}
	pix := make([]byte, width*height*4)
	r, _, _ := procGetDIBits.Call(
		uintptr(mem),
		uintptr(info.HbmColor),
		0,
		uintptr(height),
		uintptr(unsafe.Pointer(&pix[0])),
		uintptr(unsafe.Pointer(&bi)),
		dibRGBColors,
	)
	if r == 0 {
		return ico.PixelBuffer{}, errors.New("GetDIBits failed")
	}
	return ico.PixelBuffer{Width: width, Height: height, Pix: pix}, nil
}
