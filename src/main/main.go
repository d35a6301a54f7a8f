package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"screenshot-ocr/src/config"
	"screenshot-ocr/src/eventloop"
	"screenshot-ocr/src/hotkey"
	"screenshot-ocr/src/logutil"
	"screenshot-ocr/src/notification"
	"screenshot-ocr/src/overlay"
	"screenshot-ocr/src/runtimeinit"
	"screenshot-ocr/src/screenshot"
	"screenshot-ocr/src/session"
	"screenshot-ocr/src/tray"
)

const (
	appID    = "io.github.screenshot-ocr"
	appTitle = "Screen OCR"
)

type mainOptions struct {
	stdout   bool
	resident bool
	backend  string
	logLevel string
	verbose  bool
}

func main() {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(normalizeLegacyArgs(os.Args)[1:])
	if err := cmd.Execute(); err != nil {
		notification.ShowBlockingError("Error", err.Error())
		os.Exit(1)
	}
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screenshot-ocr",
		Short:         "Select a screen region and copy its text",
		Long:          "Freezes the screen, lets you drag a rectangle over it and runs tesseract on the selection. The text goes to the clipboard, or to stdout with --stdout.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd.Context(), *opts)
		},
	}

	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "Print recognized text to stdout instead of the clipboard")
	cmd.Flags().BoolVar(&opts.resident, "resident", false, "Stay in the system tray and capture on the hotkey")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "OCR backend: cli or gosseract (overrides OCR_BACKEND)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Shorthand for --log-level=debug")

	return cmd
}

// normalizeLegacyArgs maps single-dash long flags (-stdout) to their
// double-dash form.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return []string{"screenshot-ocr"}
	}
	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"stdout", "resident", "backend", "log-level", "verbose"} {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}
	return normalized
}

func runApp(ctx context.Context, opts mainOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	loadOptions := config.LoadOptions{BackendOverride: opts.backend, LogLevel: opts.logLevel}
	if opts.stdout {
		loadOptions.OutputOverride = config.OutputStdout
	}
	if opts.verbose {
		loadOptions.LogLevel = logutil.LevelDebug
	}

	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:   loadOptions,
		SetupLogging:  logutil.Setup,
		NeedClipboard: true,
	})
	if err != nil {
		return err
	}
	defer func() { _ = zap.L().Sync() }()

	// DPI awareness must be set before any window exists.
	enableDPIAwareness()
	logMonitorConfiguration()

	a := app.NewWithID(appID)
	a.SetIcon(tray.Icon)
	notifier := notification.New(a)

	if opts.resident {
		return runResident(ctx, a, rt, notifier)
	}
	res, err := runOnce(ctx, a, rt, notifier)
	return reportOutcome(res, err, os.Stderr)
}

func newSessionOptions(a fyne.App, rt *runtimeinit.Runtime, notifier session.Notifier) session.Options {
	var target session.ResultTarget = session.ClipboardTarget{}
	if rt.Config.Output == config.OutputStdout {
		target = session.StdoutTarget{Writer: os.Stdout}
	}
	return session.Options{
		Overlay:     overlay.New(a),
		Capturer:    screenshot.DisplayCapturer{},
		Recognizer:  rt.Recognizer,
		Target:      target,
		Notifier:    notifier,
		DebugImages: rt.Config.DebugSaveImages,
	}
}

// runOnce drives a single session inside the fyne main loop and returns its
// outcome once the app has quit.
func runOnce(ctx context.Context, a fyne.App, rt *runtimeinit.Runtime, notifier *notification.Notifier) (session.Result, error) {
	s, err := session.New(newSessionOptions(a, rt, notifier))
	if err != nil {
		return session.Result{}, err
	}

	a.Lifecycle().SetOnStarted(func() {
		if err := s.Start(ctx); err != nil {
			a.Quit()
			return
		}
		go func() {
			res, err := s.Wait(ctx)
			if err == nil && !res.NothingSelected && rt.Config.Output == config.OutputClipboard {
				notifier.ShowOCRResult(res.Text)
			}
			fyne.Do(a.Quit)
		}()
	})
	a.Run()

	select {
	case <-s.Done():
		return s.Wait(context.Background())
	default:
		if ctx.Err() != nil {
			return session.Result{}, session.ErrSelectionCancelled
		}
		return session.Result{}, errors.New("application exited before the selection finished")
	}
}

// reportOutcome turns a finished session into the process result. Cancel
// and an empty selection are not errors.
func reportOutcome(res session.Result, err error, stderr io.Writer) error {
	switch {
	case errors.Is(err, session.ErrSelectionCancelled):
		zap.S().Infof("Selection cancelled")
		return nil
	case err != nil:
		return err
	case res.NothingSelected:
		fmt.Fprintln(stderr, "Nothing selected")
		return nil
	}
	zap.S().Infof("OCR completed successfully (%d chars)", len(res.Text))
	return nil
}

// keepAlive creates a window that is never shown. Fyne quits once its first
// window closes, which would otherwise be the first session's overlay.
func keepAlive(a fyne.App) fyne.Window {
	w := a.NewWindow(appTitle)
	w.SetCloseIntercept(w.Hide)
	return w
}

// runResident keeps the app in the tray and opens a session on every hotkey
// press or tray click.
func runResident(ctx context.Context, a fyne.App, rt *runtimeinit.Runtime, notifier *notification.Notifier) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var tr *tray.Tray
	loop := eventloop.New(eventloop.Options{
		Start: func(ctx context.Context) (<-chan struct{}, error) {
			s, err := session.New(newSessionOptions(a, rt, notifier))
			if err != nil {
				return nil, err
			}
			if err := s.Start(ctx); err != nil {
				return nil, err
			}
			go func() {
				res, err := s.Wait(ctx)
				if err == nil && !res.NothingSelected && rt.Config.Output == config.OutputClipboard {
					notifier.ShowOCRResult(res.Text)
				}
			}()
			return s.Done(), nil
		},
		OnBusy:     func(busy bool) { fyne.Do(func() { tr.SetBusy(busy) }) },
		OnRejected: notifier.Busy,
	})

	keepAlive(a)
	a.Lifecycle().SetOnStarted(func() {
		t, err := tray.New(a, tray.Config{
			Title:     appTitle,
			Hotkey:    rt.Config.Hotkey,
			OnCapture: loop.Trigger,
			OnExit:    cancel,
		})
		if err != nil {
			zap.S().Warnf("System tray unavailable: %v", err)
		}
		tr = t

		if err := hotkey.Listen(ctx, rt.Config.Hotkey, loop.Trigger); err != nil {
			zap.S().Errorf("Hotkey disabled: %v", err)
		}
		go func() {
			if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zap.S().Errorf("event loop stopped: %v", err)
			}
		}()
		zap.S().Infof("%s resident, press %s to capture", appTitle, rt.Config.Hotkey)
	})

	go func() {
		<-ctx.Done()
		fyne.Do(a.Quit)
	}()
	a.Run()
	return nil
}
