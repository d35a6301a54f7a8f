package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ConfigPathEnvVar = "SCREEN_OCR"
	OutputClipboard  = "clipboard"
	OutputStdout     = "stdout"
	DefaultHotkey    = "Ctrl+Alt+Q"
)

// LoadOptions carries command-line overrides; non-empty fields win over
// .env and environment values.
type LoadOptions struct {
	BackendOverride string
	OutputOverride  string
	LogLevel        string
}

type Config struct {
	OCRBackend        string
	TesseractPath     string
	TessdataDir       string
	Output            string
	EnableFileLogging bool
	LogLevel          string
	DebugSaveImages   bool
	Hotkey            string
	// EnvPath is the .env file that was applied, if any.
	EnvPath string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SCREEN_OCR env var as a path to a config file
	// Variables already set in the environment are not overridden.
	envPath := resolveEnvPath()
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	enableFileLogging := strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true"

	cfg := &Config{
		OCRBackend:        firstNonEmpty(opts.BackendOverride, os.Getenv("OCR_BACKEND"), "cli"),
		TesseractPath:     getEnvWithDefault("TESSERACT_PATH", "tesseract"),
		TessdataDir:       strings.TrimSpace(os.Getenv("TESSDATA_DIR")),
		Output:            resolveOutput(firstNonEmpty(opts.OutputOverride, os.Getenv("OUTPUT"))),
		EnableFileLogging: enableFileLogging,
		LogLevel:          resolveLogLevel(firstNonEmpty(opts.LogLevel, os.Getenv("LOG_LEVEL")), enableFileLogging),
		DebugSaveImages:   strings.ToLower(os.Getenv("OCR_DEBUG_SAVE_IMAGES")) == "true",
		Hotkey:            getEnvWithDefault("HOTKEY", DefaultHotkey),
		EnvPath:           envPath,
	}
	cfg.OCRBackend = strings.ToLower(strings.TrimSpace(cfg.OCRBackend))

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(ConfigPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func resolveOutput(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case OutputStdout, "std":
		return OutputStdout
	default:
		return OutputClipboard
	}
}

// resolveLogLevel defaults to debug when logging to a file and to warn on
// stderr, keeping interactive output quiet.
func resolveLogLevel(value string, toFile bool) string {
	if v := strings.ToLower(strings.TrimSpace(value)); v != "" {
		return v
	}
	if toFile {
		return "debug"
	}
	return "warn"
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
