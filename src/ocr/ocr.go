package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"screenshot-ocr/src/screenshot"
)

// Whitelist limits recognition to letters (plus a few accented Latin
// letters), digits and common punctuation.
const Whitelist = "éãú" +
	"abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	":-_ ();,.[]{}´'\"`!-=+*/%$#@&|\\/<>\t"

const (
	DefaultLanguage = "eng"
	// PSMSingleBlock assumes a single uniform block of text.
	PSMSingleBlock = 6
	// OEMDefault lets tesseract pick whatever engine is available.
	OEMDefault = 3
	DefaultDPI = 150
)

const (
	BackendCLI       = "cli"
	BackendGosseract = "gosseract"
)

// Config is the recognition setup. Only the binary location and tessdata
// directory vary between machines; the rest is fixed by DefaultConfig.
type Config struct {
	Language      string
	PageSegMode   int
	EngineMode    int
	DPI           int
	Whitelist     string
	TesseractPath string
	TessdataDir   string
}

func DefaultConfig() Config {
	return Config{
		Language:      DefaultLanguage,
		PageSegMode:   PSMSingleBlock,
		EngineMode:    OEMDefault,
		DPI:           DefaultDPI,
		Whitelist:     Whitelist,
		TesseractPath: "tesseract",
	}
}

// Recognizer turns a cropped selection into text. An empty string is a
// successful result; every failure is a *RecognitionError.
type Recognizer interface {
	Recognize(ctx context.Context, img screenshot.CroppedImage) (string, error)
}

// RecognizeFunc adapts a function to Recognizer.
type RecognizeFunc func(ctx context.Context, img screenshot.CroppedImage) (string, error)

func (f RecognizeFunc) Recognize(ctx context.Context, img screenshot.CroppedImage) (string, error) {
	return f(ctx, img)
}

// ErrBackendNotBuilt is returned when the gosseract backend is requested
// from a binary built without -tags gosseract.
var ErrBackendNotBuilt = errors.New("gosseract backend not built; rebuild with -tags gosseract")

// ErrRecognition matches every *RecognitionError via errors.Is.
var ErrRecognition = errors.New("recognition failed")

// ErrKind classifies a recognition failure.
type ErrKind int

const (
	BackendUnavailable ErrKind = iota + 1
	ImageDecode
	BackendFailed
)

func (k ErrKind) String() string {
	switch k {
	case BackendUnavailable:
		return "backend unavailable"
	case ImageDecode:
		return "image decode"
	case BackendFailed:
		return "backend failed"
	default:
		return "unknown"
	}
}

// RecognitionError is terminal for the session; it is never retried.
type RecognitionError struct {
	Kind ErrKind
	Err  error
}

func (e *RecognitionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("ocr: %s", e.Kind)
	}
	return fmt.Sprintf("ocr: %s: %v", e.Kind, e.Err)
}

func (e *RecognitionError) Unwrap() error { return e.Err }

func (e *RecognitionError) Is(target error) bool { return target == ErrRecognition }

func newError(kind ErrKind, err error) *RecognitionError {
	return &RecognitionError{Kind: kind, Err: err}
}

// New returns the recognizer for the named backend.
func New(backend string, cfg Config) (Recognizer, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendCLI:
		return NewCLI(cfg, nil), nil
	case BackendGosseract:
		return NewGosseract(cfg)
	default:
		return nil, fmt.Errorf("unknown OCR backend %q (want %s or %s)", backend, BackendCLI, BackendGosseract)
	}
}

// cleanText drops the page separator and trailing line breaks tesseract
// appends to its output.
func cleanText(s string) string {
	return strings.TrimRight(s, "\f\r\n")
}
