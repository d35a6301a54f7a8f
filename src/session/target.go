package session

import (
	"fmt"
	"io"
	"os"

	"screenshot-ocr/src/clipboard"
)

// ResultTarget receives the recognized text. OnSuccess errors are fatal to
// the session; OnFailure is told about any session failure.
type ResultTarget interface {
	OnSuccess(text string) error
	OnFailure(err error) error
}

type ClipboardTarget struct{}

func (ClipboardTarget) OnSuccess(text string) error {
	return clipboard.Write(text)
}

func (ClipboardTarget) OnFailure(err error) error {
	return nil
}

type StdoutTarget struct {
	Writer io.Writer
}

func (t StdoutTarget) OnSuccess(text string) error {
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	_, err := fmt.Fprint(w, text)
	return err
}

func (t StdoutTarget) OnFailure(err error) error {
	return nil
}
