package session

import (
	"fmt"
	"image/png"
	"os"

	"go.uber.org/zap"

	"screenshot-ocr/src/geometry"
	"screenshot-ocr/src/render"
	"screenshot-ocr/src/screenshot"
)

// saveDebugImages writes the crop and the outlined snapshot to the working
// directory. Failures are logged only.
func saveDebugImages(buf *screenshot.ScreenBuffer, rect geometry.Rectangle, crop screenshot.CroppedImage) {
	cropName := fmt.Sprintf("debug_captured_region_%dx%d.png", crop.Width, crop.Height)
	if data, err := crop.PNG(); err != nil {
		zap.S().Warnf("Warning: Could not encode debug image: %v", err)
	} else if err := os.WriteFile(cropName, data, 0600); err != nil {
		zap.S().Warnf("Warning: Could not save debug image: %v", err)
	} else {
		zap.S().Debugf("DEBUG: Saved captured region to %s (size: %d bytes)", cropName, len(data))
	}

	frameName := "debug_selection_frame.png"
	f, err := os.OpenFile(frameName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		zap.S().Warnf("Warning: Could not save debug frame: %v", err)
		return
	}
	defer f.Close()
	if err := png.Encode(f, render.Frame(buf, &rect, render.DefaultStyle)); err != nil {
		zap.S().Warnf("Warning: Could not encode debug frame: %v", err)
		return
	}
	zap.S().Debugf("DEBUG: Saved selection frame to %s", frameName)
}
