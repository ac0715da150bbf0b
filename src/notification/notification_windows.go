//go:build windows

package notification

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	mbOK              = 0x00000000
	mbIconInformation = 0x00000040
	mbIconError       = 0x00000010
	mbSetForeground   = 0x00010000
)

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procMessageBoxW = user32.NewProc("MessageBoxW")
)

func messageBox(title, message string, flags uintptr) {
	titlePtr, _ := syscall.UTF16PtrFromString(title)
	messagePtr, _ := syscall.UTF16PtrFromString(message)

	procMessageBoxW.Call(
		0, // hwnd (no parent window)
		uintptr(unsafe.Pointer(messagePtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		flags,
	)
}

func showPopup(title, message string) {
	go messageBox(title, message, mbOK|mbIconInformation|mbSetForeground)
}

func showErrorPopup(title, message string) {
	go messageBox(title, message, mbOK|mbIconError|mbSetForeground)
}

func showBlockingPopup(title, message string) {
	messageBox(title, message, mbOK|mbIconError|mbSetForeground)
}
