//go:build !windows

package notification

// Non-Windows builds have no message box; Notify's log line is the notice.

func showPopup(title, message string) {}

func showErrorPopup(title, message string) {}

func showBlockingPopup(title, message string) {}
