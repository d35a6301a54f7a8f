// Package tray puts the resident app in the system tray.
package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"go.uber.org/zap"
)

type Config struct {
	Title     string
	Hotkey    string
	OnCapture func()
	OnExit    func()
}

// Tray owns the tray menu. Methods must run on the fyne UI goroutine.
type Tray struct {
	app     desktop.App
	menu    *fyne.Menu
	capture *fyne.MenuItem
	label   string
}

// New installs the tray menu. It fails when the driver has no system tray,
// for example in headless test runs.
func New(app fyne.App, cfg Config) (*Tray, error) {
	desk, ok := app.(desktop.App)
	if !ok {
		return nil, fmt.Errorf("system tray not supported by this driver")
	}

	label := "Capture text"
	if cfg.Hotkey != "" {
		label = fmt.Sprintf("Capture text (%s)", cfg.Hotkey)
	}
	capture := fyne.NewMenuItem(label, func() {
		if cfg.OnCapture != nil {
			cfg.OnCapture()
		}
	})
	capture.Icon = Icon

	quit := fyne.NewMenuItem("Exit", func() {
		zap.S().Infof("tray: exit requested")
		if cfg.OnExit != nil {
			cfg.OnExit()
		}
	})
	quit.IsQuit = true

	t := &Tray{
		app:     desk,
		menu:    fyne.NewMenu(cfg.Title, capture, fyne.NewMenuItemSeparator(), quit),
		capture: capture,
		label:   label,
	}
	desk.SetSystemTrayMenu(t.menu)
	desk.SetSystemTrayIcon(Icon)
	return t, nil
}

// SetBusy disables the capture item while a session is running.
func (t *Tray) SetBusy(busy bool) {
	if t == nil {
		return
	}
	t.capture.Disabled = busy
	if busy {
		t.capture.Label = "Processing..."
	} else {
		t.capture.Label = t.label
	}
	t.menu.Refresh()
}
