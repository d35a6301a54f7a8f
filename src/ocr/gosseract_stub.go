//go:build !gosseract

package ocr

func NewGosseract(cfg Config) (Recognizer, error) {
	return nil, newError(BackendUnavailable, ErrBackendNotBuilt)
}
