// Package runtimeinit holds the startup sequence shared by the desktop app
// and the file CLI.
package runtimeinit

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"screenshot-ocr/src/clipboard"
	"screenshot-ocr/src/config"
	"screenshot-ocr/src/logutil"
	"screenshot-ocr/src/ocr"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(bool)
	// NeedClipboard initializes the clipboard up front so a broken
	// clipboard fails at startup, not after a selection.
	NeedClipboard bool
}

type Runtime struct {
	Config     *config.Config
	Recognizer ocr.Recognizer
}

func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}
	logutil.SetLevel(cfg.LogLevel)
	if cfg.EnvPath != "" {
		zap.S().Infof("Loaded configuration from %s", cfg.EnvPath)
	}

	rec, err := NewRecognizer(cfg)
	if err != nil {
		return nil, err
	}

	if opts.NeedClipboard && cfg.Output == config.OutputClipboard {
		if err := clipboard.Init(); err != nil {
			return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
		}
	}

	return &Runtime{Config: cfg, Recognizer: rec}, nil
}

// NewRecognizer builds the configured OCR backend. A tesseract binary that
// cannot be found is only a warning here; the recognition itself reports it.
func NewRecognizer(cfg *config.Config) (ocr.Recognizer, error) {
	ocrCfg := ocr.DefaultConfig()
	ocrCfg.TesseractPath = cfg.TesseractPath
	ocrCfg.TessdataDir = cfg.TessdataDir

	rec, err := ocr.New(cfg.OCRBackend, ocrCfg)
	if err != nil {
		if errors.Is(err, ocr.ErrBackendNotBuilt) {
			return nil, fmt.Errorf("OCR backend %q is not available in this build: %w", cfg.OCRBackend, err)
		}
		return nil, err
	}

	if cli, ok := rec.(*ocr.CLIRecognizer); ok {
		if err := cli.Available(); err != nil {
			zap.S().Warnf("tesseract not found at %q: %v", cfg.TesseractPath, err)
		}
	}
	zap.S().Infof("OCR backend: %s", cfg.OCRBackend)
	return rec, nil
}
