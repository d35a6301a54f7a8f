package tray

import (
	"testing"

	"fyne.io/fyne/v2/test"
)

func TestIconIsSVG(t *testing.T) {
	if Icon.Name() != "screenshot-ocr.svg" {
		t.Errorf("unexpected icon name %q", Icon.Name())
	}
	if len(Icon.Content()) == 0 {
		t.Error("expected icon content")
	}
}

func TestNewWithoutSystemTray(t *testing.T) {
	app := test.NewTempApp(t)
	tr, err := New(app, Config{Title: "Screen OCR"})
	if err != nil {
		t.Skipf("test driver has no system tray: %v", err)
	}
	tr.SetBusy(true)
	if !tr.capture.Disabled || tr.capture.Label != "Processing..." {
		t.Errorf("expected busy capture item, got %+v", tr.capture)
	}
	tr.SetBusy(false)
	if tr.capture.Disabled || tr.capture.Label != "Capture text" {
		t.Errorf("expected idle capture item, got %+v", tr.capture)
	}
}

func TestSetBusyOnNilTray(t *testing.T) {
	var tr *Tray
	tr.SetBusy(true)
}
