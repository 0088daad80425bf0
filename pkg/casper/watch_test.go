package casper

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "casper.toml")
	require.NoError(t, os.WriteFile(path, []byte(`language = "pt"`), 0644))

	w, err := NewConfigWatcher(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan Config, 1)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(cfg Config) {
			select {
			case updates <- cfg:
			default:
			}
		})
	}()

	// Replace the file the way editors do.
	tmp := filepath.Join(dir, "casper.toml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("language = \"en\"\nmax_backoff = \"30s\"\n"), 0644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case cfg := <-updates:
		assert.Equal(t, "en", cfg.Language)
		assert.Equal(t, 30*time.Second, cfg.MaxBackoff)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestConfigWatcherMissingDirectory(t *testing.T) {
	_, err := NewConfigWatcher(filepath.Join(t.TempDir(), "missing", "casper.toml"))
	assert.Error(t, err)
}

func TestConfigWatcherReconfiguresApplication(t *testing.T) {
	f := newStartedFixture(t, testConfig())

	path := filepath.Join(t.TempDir(), "casper.toml")
	require.NoError(t, os.WriteFile(path, []byte(`initial_backoff = "1s"`), 0644))

	w, err := NewConfigWatcher(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, f.app.Reconfigure)
	}()

	require.NoError(t, os.WriteFile(path, []byte("initial_backoff = \"4s\"\nmax_backoff = \"8s\"\n"), 0644))

	require.Eventually(t, func() bool {
		return f.app.ReconnectDelay() == 4*time.Second
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
