package notification

import (
	"fmt"
	"os"
	"unicode/utf8"

	"fyne.io/fyne/v2"
	"go.uber.org/zap"
)

const (
	appTitle       = "Screen OCR"
	maxPreviewRune = 200
)

// Notifier shows desktop notifications through the running fyne app. A nil
// app makes every call log-only, which is what headless runs get.
type Notifier struct {
	app fyne.App
}

func New(app fyne.App) *Notifier {
	return &Notifier{app: app}
}

// Failure reports a failed capture or recognition.
func (n *Notifier) Failure(err error) {
	if err == nil {
		return
	}
	n.send(appTitle+" failed", err.Error())
}

// ShowOCRResult previews recognized text, truncated to 200 characters.
func (n *Notifier) ShowOCRResult(text string) {
	if text == "" {
		n.send(appTitle, "No text recognized")
		return
	}
	n.send(appTitle, Preview(text))
}

// Busy tells the user a capture is already in progress.
func (n *Notifier) Busy() {
	n.send(appTitle, "Busy, please retry")
}

func (n *Notifier) send(title, content string) {
	zap.S().Infof("notification: %s: %s", title, content)
	if n == nil || n.app == nil {
		return
	}
	n.app.SendNotification(fyne.NewNotification(title, content))
}

// ShowBlockingError reports a startup error that prevents the app from
// running at all. It writes to stderr so the message survives a missing
// display.
func ShowBlockingError(title, message string) {
	zap.S().Errorf("%s: %s", title, message)
	fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
}

// Preview truncates text for display without splitting a UTF-8 sequence.
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= maxPreviewRune {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxPreviewRune]) + "..."
}
