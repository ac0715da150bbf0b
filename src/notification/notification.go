package notification

import "log"

// Notify surfaces a terminal capture outcome to the user: saved paths,
// cancelled selections, failed recordings, stop timeouts. Always logged;
// on Windows a message box is shown without blocking the caller.
func Notify(title, message string) {
	log.Printf("%s: %s", title, message)
	showPopup(title, message)
}

// NotifyError is Notify for failures, kept separate so call sites read
// clearly and platforms can style the two differently.
func NotifyError(title string, err error) {
	if err == nil {
		return
	}
	log.Printf("%s: %v", title, err)
	showErrorPopup(title, err.Error())
}

// ShowBlockingError reports a startup-fatal condition and returns only after
// the user has seen it, so the process can exit without the message
// vanishing with it.
func ShowBlockingError(title, message string) {
	log.Printf("%s: %s", title, message)
	showBlockingPopup(title, message)
}
