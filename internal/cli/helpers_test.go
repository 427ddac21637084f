package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/seuros/jogo/internal/config"
	"github.com/seuros/jogo/internal/store"
	"github.com/seuros/jogo/internal/store/memory"
)

var fixedNow = time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	original := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = w
	fn()
	_ = w.Close()
	os.Stdout = original

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// isolateConfig points config lookup at an empty home and selects the memory driver.
func isolateConfig(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Chdir(home)
	for _, key := range []string{"DATABASE_URL", "PORT", "DATA_DIR", "CLIENT_URL", "CORS_ORIGINS", "TIMEZONE", "APP_ENV", "GO_ENV", "PROXY_MODE"} {
		t.Setenv(key, "")
	}
	t.Setenv("STORE_DRIVER", config.DriverMemory)
	t.Setenv("JWT_SECRET", "test-secret")
}

// useMemoryStore makes openStore hand out st.
func useMemoryStore(t *testing.T) *memory.Store {
	t.Helper()
	st := memory.New(func() time.Time { return fixedNow })
	original := openStore
	openStore = func(context.Context, *config.Config) (store.Store, error) {
		return st, nil
	}
	t.Cleanup(func() { openStore = original })
	return st
}

// testCommand returns a command whose output is captured in the returned buffer.
func testCommand() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	return cmd, &out
}
