//go:build gosseract

package ocr

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/otiai10/gosseract/v2"

	"screenshot-ocr/src/screenshot"
)

// GosseractRecognizer calls libtesseract in-process. It needs cgo and the
// tesseract/leptonica development headers, and is only built with
// -tags gosseract.
type GosseractRecognizer struct {
	cfg Config
}

func NewGosseract(cfg Config) (Recognizer, error) {
	return &GosseractRecognizer{cfg: cfg}, nil
}

// Available checks the configured tessdata directory; the library itself is
// linked in.
func (g *GosseractRecognizer) Available() error {
	if g.cfg.TessdataDir == "" {
		return nil
	}
	st, err := os.Stat(g.cfg.TessdataDir)
	if err != nil {
		return newError(BackendUnavailable, fmt.Errorf("tessdata dir: %w", err))
	}
	if !st.IsDir() {
		return newError(BackendUnavailable, fmt.Errorf("tessdata dir %s is not a directory", g.cfg.TessdataDir))
	}
	return nil
}

func (g *GosseractRecognizer) Recognize(ctx context.Context, img screenshot.CroppedImage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", newError(BackendFailed, err)
	}
	if err := g.Available(); err != nil {
		return "", err
	}
	data, err := img.PNG()
	if err != nil {
		return "", newError(ImageDecode, err)
	}

	// A client per call: sessions recognize once, and the client is not
	// safe for concurrent use.
	client := gosseract.NewClient()
	defer client.Close()

	if g.cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(g.cfg.TessdataDir); err != nil {
			return "", newError(BackendUnavailable, err)
		}
	}
	if err := client.SetLanguage(g.cfg.Language); err != nil {
		return "", newError(BackendUnavailable, err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(g.cfg.PageSegMode)); err != nil {
		return "", newError(BackendFailed, err)
	}
	if g.cfg.Whitelist != "" {
		if err := client.SetVariable("tessedit_char_whitelist", g.cfg.Whitelist); err != nil {
			return "", newError(BackendFailed, err)
		}
	}
	if g.cfg.DPI > 0 {
		if err := client.SetVariable("user_defined_dpi", strconv.Itoa(g.cfg.DPI)); err != nil {
			return "", newError(BackendFailed, err)
		}
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", newError(ImageDecode, err)
	}

	text, err := client.Text()
	if err != nil {
		return "", newError(BackendFailed, err)
	}
	return cleanText(text), nil
}
