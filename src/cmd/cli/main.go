package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"screenshot-ocr/src/config"
	"screenshot-ocr/src/geometry"
	"screenshot-ocr/src/logutil"
	"screenshot-ocr/src/ocr"
	"screenshot-ocr/src/runtimeinit"
	"screenshot-ocr/src/screenshot"
)

const (
	maxFileSizeMB = 10
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

type cliOptions struct {
	filePath   string
	jsonOutput bool
	verbose    bool
	backend    string
}

// cliEnv carries the process streams and the recognizer factory so tests
// can run the command without tesseract.
type cliEnv struct {
	stdin         io.Reader
	stdout        io.Writer
	stderr        io.Writer
	newRecognizer func(opts cliOptions) (ocr.Recognizer, error)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	env := cliEnv{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr, newRecognizer: bootstrapRecognizer}
	return runWithArgs(os.Args, env)
}

func runWithArgs(args []string, env cliEnv) error {
	if len(args) == 0 {
		args = []string{"ocr-tool"}
	}
	args = normalizeLegacyArgs(args)

	opts := &cliOptions{}
	cmd := newRootCmd(opts, env)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions, env cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ocr-tool",
		Short:         "Run tesseract OCR on PNG input",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(cmd.Context(), *opts, env)
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to PNG file (use '-' for stdin)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "OCR backend: cli or gosseract (overrides OCR_BACKEND)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// bootstrapRecognizer loads configuration and builds the recognizer. Logs
// go to stderr at debug level with -v and are otherwise limited to errors,
// keeping stdout for the result only.
func bootstrapRecognizer(opts cliOptions) (ocr.Recognizer, error) {
	level := logutil.LevelError
	if opts.verbose {
		level = logutil.LevelDebug
	}
	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			BackendOverride: opts.backend,
			OutputOverride:  config.OutputStdout,
			LogLevel:        level,
		},
		SetupLogging: func(bool) { logutil.Setup(false) },
	})
	if err != nil {
		return nil, err
	}
	return rt.Recognizer, nil
}

func runWithOptions(ctx context.Context, opts cliOptions, env cliEnv) error {
	if ctx == nil {
		ctx = context.Background()
	}
	verbosef := func(format string, args ...any) {
		if opts.verbose {
			fmt.Fprintf(env.stderr, "[verbose] "+format+"\n", args...)
		}
	}
	verbosef("Starting OCR tool")

	rec, err := env.newRecognizer(opts)
	if err != nil {
		return err
	}
	verbosef("Recognizer initialized")

	imageData, err := readInput(opts.filePath, env.stdin)
	if err != nil {
		return err
	}
	verbosef("Read %d bytes from %s", len(imageData), opts.filePath)

	img, err := decodePNG(imageData)
	if err != nil {
		return err
	}
	verbosef("PNG validation passed (%dx%d)", img.Width, img.Height)

	start := time.Now()
	text, err := rec.Recognize(ctx, img)
	elapsed := time.Since(start)
	if err != nil {
		verbosef("OCR failed after %v: %v", elapsed, err)
		return fmt.Errorf("OCR failed: %w", err)
	}
	verbosef("OCR completed in %v, extracted %d characters", elapsed, len(text))

	return outputResult(env.stdout, text, opts.filePath, elapsed, opts.jsonOutput)
}

func readInput(filePath string, stdin io.Reader) ([]byte, error) {
	var data []byte
	var err error
	if filePath == "-" {
		data, err = io.ReadAll(io.LimitReader(stdin, maxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
		}
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}
	return data, nil
}

func validatePNG(data []byte) error {
	if len(data) < len(pngMagic) || !bytes.Equal(data[:len(pngMagic)], pngMagic) {
		return fmt.Errorf("input is not a valid PNG file (invalid magic number)")
	}
	return nil
}

// decodePNG turns the file into the same cropped-image form a screen
// selection produces, covering the whole picture.
func decodePNG(data []byte) (screenshot.CroppedImage, error) {
	if err := validatePNG(data); err != nil {
		return screenshot.CroppedImage{}, err
	}
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return screenshot.CroppedImage{}, fmt.Errorf("failed to decode PNG: %w", err)
	}
	buf := screenshot.NewScreenBuffer(src)
	return screenshot.Crop(buf, fullRect(src.Bounds()))
}

func fullRect(b image.Rectangle) geometry.Rectangle {
	return geometry.Rectangle{
		End: geometry.Point{X: float64(b.Dx()), Y: float64(b.Dy())},
	}
}

type OCRResult struct {
	Text      string  `json:"text"`
	Source    string  `json:"source"`
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration_seconds"`
	CharCount int     `json:"character_count"`
}

func outputResult(w io.Writer, text, sourcePath string, elapsed time.Duration, jsonOutput bool) error {
	if !jsonOutput {
		_, err := fmt.Fprint(w, text)
		return err
	}

	result := OCRResult{
		Text:      text,
		Source:    sourcePath,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Duration:  elapsed.Seconds(),
		CharCount: len([]rune(text)),
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"file", "json", "verbose", "backend"} {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}

	return normalized
}
