package main

import (
	"bytes"
	"errors"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screenshot-ocr/src/config"
	"screenshot-ocr/src/geometry"
	"screenshot-ocr/src/ocr"
	"screenshot-ocr/src/overlay"
	"screenshot-ocr/src/runtimeinit"
	"screenshot-ocr/src/session"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"screenshot-ocr", "-stdout", "-backend", "cli"},
			out:  []string{"screenshot-ocr", "--stdout", "--backend", "cli"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"screenshot-ocr", "-log-level=debug", "-resident=true"},
			out:  []string{"screenshot-ocr", "--log-level=debug", "--resident=true"},
		},
		{
			name: "Leaves other flags unchanged",
			in:   []string{"screenshot-ocr", "--stdout", "-v", "-stdoutx"},
			out:  []string{"screenshot-ocr", "--stdout", "-v", "-stdoutx"},
		},
		{
			name: "Empty args",
			in:   nil,
			out:  []string{"screenshot-ocr"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.out, normalizeLegacyArgs(tt.in))
		})
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	require.NoError(t, cmd.ParseFlags([]string{"--stdout", "--backend", "gosseract", "-v"}))
	assert.True(t, opts.stdout)
	assert.Equal(t, "gosseract", opts.backend)
	assert.True(t, opts.verbose)
	assert.False(t, opts.resident)
}

func TestRootCmdRejectsArgs(t *testing.T) {
	cmd := newRootCmd(&mainOptions{})
	cmd.SetArgs([]string{"image.png"})
	assert.Error(t, cmd.Execute())
}

func TestReportOutcome(t *testing.T) {
	var stderr bytes.Buffer

	assert.NoError(t, reportOutcome(session.Result{}, session.ErrSelectionCancelled, &stderr))
	assert.Empty(t, stderr.String())

	assert.NoError(t, reportOutcome(session.Result{NothingSelected: true}, nil, &stderr))
	assert.Equal(t, "Nothing selected\n", stderr.String())

	recErr := &ocr.RecognitionError{Kind: ocr.BackendUnavailable, Err: errors.New("tesseract missing")}
	assert.ErrorIs(t, reportOutcome(session.Result{}, recErr, &stderr), ocr.ErrRecognition)

	assert.NoError(t, reportOutcome(session.Result{Text: "hi", Rect: geometry.Rectangle{}}, nil, &stderr))
}

func TestNewSessionOptionsTarget(t *testing.T) {
	a := test.NewTempApp(t)
	rec := ocr.NewCLI(ocr.DefaultConfig(), nil)

	rt := &runtimeinit.Runtime{Config: &config.Config{Output: config.OutputStdout}, Recognizer: rec}
	opts := newSessionOptions(a, rt, nil)
	assert.IsType(t, session.StdoutTarget{}, opts.Target)
	assert.NotNil(t, opts.Overlay)
	assert.NotNil(t, opts.Capturer)

	rt.Config.Output = config.OutputClipboard
	rt.Config.DebugSaveImages = true
	opts = newSessionOptions(a, rt, nil)
	assert.IsType(t, session.ClipboardTarget{}, opts.Target)
	assert.True(t, opts.DebugImages)
}

func TestKeepAliveOutlivesOverlays(t *testing.T) {
	a := test.NewTempApp(t)
	keeper := keepAlive(a)

	for i := 0; i < 2; i++ {
		o := overlay.New(a)
		require.NoError(t, o.Create())
		o.Close()
	}

	windows := a.Driver().AllWindows()
	require.Len(t, windows, 1)
	assert.Equal(t, keeper, windows[0], "the first window must be the hidden keeper")
	assert.Equal(t, appTitle, keeper.Title())
}
