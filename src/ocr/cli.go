package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"screenshot-ocr/src/screenshot"
)

// Runner lets tests stub the tesseract binary.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		zap.S().Errorw("exec failed",
			"cmd", name,
			"duration_ms", dur.Milliseconds(),
			"error", err,
			"stderr", truncate(errb.String(), 8<<10),
		)
	} else {
		zap.S().Debugw("exec ok",
			"cmd", name,
			"duration_ms", dur.Milliseconds(),
			"stdout_bytes", out.Len(),
		)
	}
	return out.Bytes(), errb.Bytes(), err
}

// CLIRecognizer runs the tesseract executable on a temporary PNG.
type CLIRecognizer struct {
	cfg    Config
	runner Runner
}

// NewCLI returns a recognizer backed by the tesseract binary. A nil runner
// executes the real command.
func NewCLI(cfg Config, runner Runner) *CLIRecognizer {
	if cfg.TesseractPath == "" {
		cfg.TesseractPath = "tesseract"
	}
	if runner == nil {
		runner = execRunner{}
	}
	return &CLIRecognizer{cfg: cfg, runner: runner}
}

// Available reports whether the configured binary can be found.
func (r *CLIRecognizer) Available() error {
	if _, err := exec.LookPath(r.cfg.TesseractPath); err != nil {
		return newError(BackendUnavailable, err)
	}
	return nil
}

func (r *CLIRecognizer) Recognize(ctx context.Context, img screenshot.CroppedImage) (string, error) {
	data, err := img.PNG()
	if err != nil {
		return "", newError(ImageDecode, err)
	}

	f, err := os.CreateTemp("", "screenshot-ocr-*.png")
	if err != nil {
		return "", newError(BackendFailed, fmt.Errorf("create temp image: %w", err))
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", newError(BackendFailed, fmt.Errorf("write temp image: %w", err))
	}
	if err := f.Close(); err != nil {
		return "", newError(BackendFailed, fmt.Errorf("close temp image: %w", err))
	}

	out, errb, err := r.runner.Run(ctx, r.cfg.TesseractPath, r.args(path)...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", newError(BackendUnavailable, err)
		}
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			err = fmt.Errorf("%w: %s", err, truncate(msg, 512))
		}
		return "", newError(BackendFailed, err)
	}
	return cleanText(string(out)), nil
}

// args builds: <image> stdout -l eng --dpi 150 --psm 6 --oem 3 -c tessedit_char_whitelist=...
func (r *CLIRecognizer) args(imagePath string) []string {
	args := []string{imagePath, "stdout", "-l", r.cfg.Language}
	if r.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.cfg.TessdataDir)
	}
	if r.cfg.DPI > 0 {
		args = append(args, "--dpi", strconv.Itoa(r.cfg.DPI))
	}
	args = append(args,
		"--psm", strconv.Itoa(r.cfg.PageSegMode),
		"--oem", strconv.Itoa(r.cfg.EngineMode),
	)
	if r.cfg.Whitelist != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+r.cfg.Whitelist)
	}
	return args
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
