package logutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinkRotationLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	sink := newFileSink(path)
	defer sink.Close()

	assert.Equal(t, path, sink.Filename)
	assert.Equal(t, 10, sink.MaxSize)
	assert.Equal(t, 3, sink.MaxBackups)

	_, err := sink.Write([]byte("first line\n"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first line\n", string(data))
}

func TestFileSinkKeepsArchives(t *testing.T) {
	dir := t.TempDir()
	sink := newFileSink(filepath.Join(dir, "app.log"))
	defer sink.Close()

	for i := 0; i < 5; i++ {
		_, err := sink.Write([]byte("0123456789\n"))
		require.NoError(t, err)
		require.NoError(t, sink.Rotate())
		// Backup names carry millisecond timestamps.
		time.Sleep(5 * time.Millisecond)
	}

	// lumberjack prunes old backups asynchronously.
	assert.Eventually(t, func() bool {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return false
		}
		backups := 0
		for _, e := range entries {
			if e.Name() != "app.log" && strings.HasPrefix(e.Name(), "app-") {
				backups++
			}
		}
		return backups == maxArchives
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSanitize(t *testing.T) {
	if got := Sanitize("a\nb\tc\x01"); got != `a\nb\tc?` {
		t.Errorf("unexpected sanitized text %q", got)
	}
	long := strings.Repeat("x", 150)
	got := Sanitize(long)
	if !strings.HasSuffix(got, "...") || len(got) != 103 {
		t.Errorf("expected truncation to 100 chars plus ellipsis, got %d chars", len(got))
	}
}

func TestSetLevel(t *testing.T) {
	defer SetLevel(LevelInfo)

	SetLevel("DEBUG")
	if Level() != "debug" {
		t.Errorf("expected debug, got %s", Level())
	}
	SetLevel("bogus")
	if Level() != "info" {
		t.Errorf("expected fallback to info, got %s", Level())
	}
}
