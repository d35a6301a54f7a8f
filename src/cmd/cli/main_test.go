package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screenshot-ocr/src/ocr"
	"screenshot-ocr/src/screenshot"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type stubRecognizer struct {
	text string
	err  error
	got  screenshot.CroppedImage
}

func (s *stubRecognizer) Recognize(_ context.Context, img screenshot.CroppedImage) (string, error) {
	s.got = img
	return s.text, s.err
}

func testEnv(rec ocr.Recognizer, stdin []byte) (cliEnv, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return cliEnv{
		stdin:         bytes.NewReader(stdin),
		stdout:        &stdout,
		stderr:        &stderr,
		newRecognizer: func(cliOptions) (ocr.Recognizer, error) { return rec, nil },
	}, &stdout, &stderr
}

func TestPlainTextOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 30, 20), 0600))

	rec := &stubRecognizer{text: "hello world"}
	env, stdout, stderr := testEnv(rec, nil)

	require.NoError(t, runWithArgs([]string{"ocr-tool", "-file", path}, env))
	assert.Equal(t, "hello world", stdout.String())
	assert.Empty(t, stderr.String(), "stderr must stay quiet without -v")
	assert.Equal(t, 30, rec.got.Width)
	assert.Equal(t, 20, rec.got.Height)
}

func TestJSONOutputFromStdin(t *testing.T) {
	rec := &stubRecognizer{text: "olá"}
	env, stdout, _ := testEnv(rec, pngBytes(t, 8, 8))

	require.NoError(t, runWithArgs([]string{"ocr-tool", "--file", "-", "--json"}, env))

	var result OCRResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
	assert.Equal(t, "olá", result.Text)
	assert.Equal(t, "-", result.Source)
	assert.Equal(t, 3, result.CharCount)
	assert.NotEmpty(t, result.Timestamp)
}

func TestLegacySingleDashFlags(t *testing.T) {
	rec := &stubRecognizer{text: "legacy"}
	env, stdout, _ := testEnv(rec, pngBytes(t, 8, 8))

	require.NoError(t, runWithArgs([]string{"ocr-tool", "-file", "-", "-json"}, env))

	var result OCRResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
	assert.Equal(t, "legacy", result.Text)
}

func TestVerboseGoesToStderr(t *testing.T) {
	rec := &stubRecognizer{text: "text"}
	env, stdout, stderr := testEnv(rec, pngBytes(t, 4, 4))

	require.NoError(t, runWithArgs([]string{"ocr-tool", "--file", "-", "-v"}, env))
	assert.Equal(t, "text", stdout.String())
	assert.NotContains(t, stdout.String(), "[verbose]")
	assert.Contains(t, stderr.String(), "[verbose]")
}

func TestErrors(t *testing.T) {
	t.Run("missing file flag", func(t *testing.T) {
		env, _, _ := testEnv(&stubRecognizer{}, nil)
		assert.Error(t, runWithArgs([]string{"ocr-tool"}, env))
	})

	t.Run("nonexistent file", func(t *testing.T) {
		env, stdout, _ := testEnv(&stubRecognizer{}, nil)
		err := runWithArgs([]string{"ocr-tool", "--file", "/nonexistent/file.png"}, env)
		assert.ErrorContains(t, err, "failed to read file")
		assert.Empty(t, stdout.String())
	})

	t.Run("not a png", func(t *testing.T) {
		env, _, _ := testEnv(&stubRecognizer{}, []byte("GIF89a"))
		err := runWithArgs([]string{"ocr-tool", "--file", "-"}, env)
		assert.ErrorContains(t, err, "invalid magic number")
	})

	t.Run("recognition failure", func(t *testing.T) {
		recErr := &ocr.RecognitionError{Kind: ocr.BackendFailed, Err: errors.New("exit status 1")}
		env, stdout, _ := testEnv(&stubRecognizer{err: recErr}, pngBytes(t, 4, 4))
		err := runWithArgs([]string{"ocr-tool", "--file", "-"}, env)
		assert.ErrorIs(t, err, ocr.ErrRecognition)
		assert.Empty(t, stdout.String())
	})

	t.Run("recognizer setup failure", func(t *testing.T) {
		env, _, _ := testEnv(nil, nil)
		env.newRecognizer = func(cliOptions) (ocr.Recognizer, error) { return nil, errors.New("unknown OCR backend") }
		err := runWithArgs([]string{"ocr-tool", "--file", "-"}, env)
		assert.ErrorContains(t, err, "unknown OCR backend")
	})
}

func TestPNGValidation(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"ValidPNG", []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00}, false},
		{"InvalidMagic", []byte{0x00, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, true},
		{"TooShort", []byte{0x89, 'P', 'N', 'G'}, true},
		{"Empty", []byte{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePNG(tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("validatePNG() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadInputSizeLimit(t *testing.T) {
	big := bytes.NewReader(make([]byte, maxFileSize+10))
	_, err := readInput("-", big)
	assert.ErrorContains(t, err, "exceeds maximum size")

	_, err = readInput("-", strings.NewReader(""))
	assert.ErrorContains(t, err, "empty")
}

func TestNormalizeLegacyArgs(t *testing.T) {
	got := normalizeLegacyArgs([]string{"ocr-tool", "-file", "a.png", "-json=true", "-v", "-backend=cli"})
	assert.Equal(t, []string{"ocr-tool", "--file", "a.png", "--json=true", "-v", "--backend=cli"}, got)
}
