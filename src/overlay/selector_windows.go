//go:build windows

package overlay

import (
	"context"
	"fmt"
	"image"
	"log"
	"runtime"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"

	"screen-capture-tool/src/capture"
)

// Selection state shared with the window procedure. Only one overlay exists
// at a time; the event loop serializes Select calls.
var (
	selGesture   Gesture
	selResult    chan selectionOutcome
	selBackdrop  *image.RGBA
	selVirtualX  int32
	selVirtualY  int32
	selCursor    win.HCURSOR
	selWndProcCB = syscall.NewCallback(selectionWndProc)
)

type selectionOutcome struct {
	region capture.Region
	ok     bool
}

type windowsSelector struct{}

func newPlatformSelector() Selector { return &windowsSelector{} }

// Select freezes the virtual screen into a backdrop, covers it with a
// borderless topmost window and lets the user drag out a rectangle. ESC or
// a selection under MinSelectionSpan pixels on a side cancels. The window
// is destroyed before any outcome is returned.
func (w *windowsSelector) Select(ctx context.Context) (capture.Region, bool, error) {
	if err := ctx.Err(); err != nil {
		return capture.Region{}, false, err
	}

	// GetMessage must run on the thread that created the window.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	vx := win.GetSystemMetrics(win.SM_XVIRTUALSCREEN)
	vy := win.GetSystemMetrics(win.SM_YVIRTUALSCREEN)
	vw := win.GetSystemMetrics(win.SM_CXVIRTUALSCREEN)
	vh := win.GetSystemMetrics(win.SM_CYVIRTUALSCREEN)
	log.Printf("Selection overlay: virtual screen x=%d y=%d w=%d h=%d", vx, vy, vw, vh)
	selVirtualX, selVirtualY = vx, vy

	backdrop, err := capture.Capture()
	if err != nil {
		return capture.Region{}, false, fmt.Errorf("failed to freeze screen for selection: %w", err)
	}
	dimBackdrop(backdrop)
	selBackdrop = backdrop
	defer func() { selBackdrop = nil }()

	selCursor = win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_CROSS))
	selGesture = Gesture{}
	selResult = make(chan selectionOutcome, 1)

	className := syscall.StringToUTF16Ptr(fmt.Sprintf("CaptureOverlay_%d", time.Now().UnixNano()))
	wndClass := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		Style:         win.CS_HREDRAW | win.CS_VREDRAW,
		LpfnWndProc:   selWndProcCB,
		HInstance:     win.GetModuleHandle(nil),
		HCursor:       selCursor,
		HbrBackground: 0,
		LpszClassName: className,
	}
	if atom := win.RegisterClassEx(&wndClass); atom == 0 {
		return capture.Region{}, false, fmt.Errorf("failed to register overlay window class")
	}
	defer win.UnregisterClass(className)

	hwnd := win.CreateWindowEx(
		win.WS_EX_TOPMOST,
		className,
		syscall.StringToUTF16Ptr("Select Region"),
		win.WS_POPUP|win.WS_VISIBLE,
		vx, vy, vw, vh,
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if hwnd == 0 {
		return capture.Region{}, false, fmt.Errorf("failed to create overlay window")
	}
	defer win.DestroyWindow(hwnd)

	win.ShowWindow(hwnd, win.SW_SHOW)
	win.SetForegroundWindow(hwnd)
	win.BringWindowToTop(hwnd)
	win.SetFocus(hwnd)
	win.UpdateWindow(hwnd)

	var msg win.MSG
	for {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 || ret == -1 { // WM_QUIT or error: user backed out
			log.Printf("Selection cancelled")
			return capture.Region{}, true, nil
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)

		select {
		case outcome := <-selResult:
			if !outcome.ok {
				log.Printf("Selection discarded (too small)")
				return capture.Region{}, true, nil
			}
			if err := ctx.Err(); err != nil {
				return capture.Region{}, false, err
			}
			log.Printf("Selection completed: %s", outcome.region)
			return outcome.region, false, nil
		default:
		}
	}
}

// dimBackdrop darkens the frozen screen so the overlay reads as a mode
// switch rather than a hung desktop.
func dimBackdrop(img *image.RGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(uint32(img.Pix[i]) * 3 / 4)
		img.Pix[i+1] = uint8(uint32(img.Pix[i+1]) * 3 / 4)
		img.Pix[i+2] = uint8(uint32(img.Pix[i+2]) * 3 / 4)
	}
}

func selectionWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case win.WM_LBUTTONDOWN:
		x := int(int32(win.LOWORD(uint32(lParam))))
		y := int(int32(win.HIWORD(uint32(lParam))))
		win.SetCapture(hwnd)
		selGesture.Press(x, y)
		win.InvalidateRect(hwnd, nil, false)
		win.UpdateWindow(hwnd)
		return 0

	case win.WM_MOUSEMOVE:
		if selGesture.Tracking() {
			x := int(int32(win.LOWORD(uint32(lParam))))
			y := int(int32(win.HIWORD(uint32(lParam))))
			selGesture.Drag(x, y)
			win.InvalidateRect(hwnd, nil, false)
			win.UpdateWindow(hwnd)
		}
		return 0

	case win.WM_LBUTTONUP:
		if selGesture.Tracking() {
			win.ReleaseCapture()
			x := int(int32(win.LOWORD(uint32(lParam))))
			y := int(int32(win.HIWORD(uint32(lParam))))
			region, ok := selGesture.Release(x, y)
			if ok {
				// Client coordinates are relative to the overlay, which
				// starts at the virtual screen origin.
				region.X += int(selVirtualX)
				region.Y += int(selVirtualY)
			}
			selResult <- selectionOutcome{region: region, ok: ok}
		}
		return 0

	case win.WM_KEYDOWN:
		if wParam == win.VK_ESCAPE {
			selGesture.Cancel()
			win.PostQuitMessage(0)
		}
		return 0

	case win.WM_PAINT:
		var ps win.PAINTSTRUCT
		hdc := win.BeginPaint(hwnd, &ps)
		if selBackdrop != nil {
			paintBackdrop(hdc, selBackdrop)
		}
		paintHint(hdc)
		if selGesture.Tracking() {
			left, top, right, bottom := selGesture.Bounds()
			paintRubberBand(hdc, int32(left), int32(top), int32(right), int32(bottom))
		}
		win.EndPaint(hwnd, &ps)
		return 0

	case win.WM_SETCURSOR:
		if selCursor != 0 {
			win.SetCursor(selCursor)
		}
		return 1

	case win.WM_NCHITTEST:
		// Everything is client area so all mouse events land here.
		return uintptr(win.HTCLIENT)

	case win.WM_DESTROY:
		// No PostQuitMessage: on the success path the message loop has
		// already returned, and a stray WM_QUIT in the thread queue would
		// instantly cancel the next selection.
		return 0
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

// paintBackdrop blits the frozen screen image into the window.
func paintBackdrop(hdc win.HDC, img *image.RGBA) {
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()

	memDC := win.CreateCompatibleDC(hdc)
	defer win.DeleteDC(memDC)

	bitmapInfo := win.BITMAPINFO{
		BmiHeader: win.BITMAPINFOHEADER{
			BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
			BiWidth:       int32(width),
			BiHeight:      -int32(height), // top-down
			BiPlanes:      1,
			BiBitCount:    32,
			BiCompression: win.BI_RGB,
		},
	}

	var pBits unsafe.Pointer
	hBitmap := win.CreateDIBSection(memDC, &bitmapInfo.BmiHeader, win.DIB_RGB_COLORS, &pBits, 0, 0)
	if hBitmap == 0 {
		return
	}
	defer win.DeleteObject(win.HGDIOBJ(hBitmap))

	oldBitmap := win.SelectObject(memDC, win.HGDIOBJ(hBitmap))
	defer win.SelectObject(memDC, oldBitmap)

	// DIB rows are DWORD aligned; at 32bpp that matches the source stride.
	stride := (((int32(width)*32 + 31) &^ 31) / 8)
	for y := 0; y < height; y++ {
		row := (*[1 << 29]byte)(unsafe.Pointer(uintptr(pBits) + uintptr(y)*uintptr(stride)))
		src := img.Pix[y*img.Stride:]
		for x := 0; x < width; x++ {
			o := x * 4
			row[o] = src[o+2]   // B
			row[o+1] = src[o+1] // G
			row[o+2] = src[o]   // R
			row[o+3] = 255
		}
	}

	win.BitBlt(hdc, 0, 0, int32(width), int32(height), memDC, 0, 0, win.SRCCOPY)
}

func paintRubberBand(hdc win.HDC, left, top, right, bottom int32) {
	gdi32 := syscall.NewLazyDLL("gdi32.dll")
	createPen := gdi32.NewProc("CreatePen")
	rectangle := gdi32.NewProc("Rectangle")

	redPen, _, _ := createPen.Call(0, 2, 0x0000FF)
	oldPen := win.SelectObject(hdc, win.HGDIOBJ(redPen))
	oldBrush := win.SelectObject(hdc, win.GetStockObject(win.NULL_BRUSH))

	rectangle.Call(uintptr(hdc), uintptr(left), uintptr(top), uintptr(right), uintptr(bottom))

	win.SelectObject(hdc, oldPen)
	win.SelectObject(hdc, oldBrush)
	win.DeleteObject(win.HGDIOBJ(redPen))
}

func paintHint(hdc win.HDC) {
	hint := "Drag to select a region   ESC cancels"
	win.SetBkMode(hdc, win.TRANSPARENT)
	win.SetTextColor(hdc, win.COLORREF(0x00FFFF))
	win.TextOut(hdc, 16, 16, syscall.StringToUTF16Ptr(hint), int32(len(hint)))
}
