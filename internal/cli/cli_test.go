package cli_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-foundation/internal/cli"
)

// run executes the CLI against a fresh base directory and returns stdout.
func run(t *testing.T, base string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CACHE_PATH", filepath.Join(base, "cache"))
	t.Setenv("CACHE_DRIVER", "file")
	t.Setenv("CACHE_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	root := cli.New(&out, io.Discard).RootCommand()
	root.SetArgs(append([]string{"--base", base}, args...))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCacheBuild_WritesSnapshot(t *testing.T) {
	base := t.TempDir()

	out, err := run(t, base, "cache", "build")
	require.NoError(t, err)

	path := filepath.Join(base, "cache", "app.json")
	assert.Equal(t, path+"\n", out)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestCacheShow(t *testing.T) {
	base := t.TempDir()

	_, err := run(t, base, "cache", "show")
	assert.ErrorContains(t, err, "no snapshot")

	_, err = run(t, base, "cache", "build")
	require.NoError(t, err)

	out, err := run(t, base, "cache", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"app.standard"`)
	assert.Contains(t, out, `"deferred_provider": "app.deferred"`)
}

func TestCacheClear(t *testing.T) {
	base := t.TempDir()

	_, err := run(t, base, "cache", "build")
	require.NoError(t, err)
	_, err = run(t, base, "cache", "clear")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(base, "cache", "app.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestProviders_Table(t *testing.T) {
	out, err := run(t, t.TempDir(), "providers")
	require.NoError(t, err)

	assert.Contains(t, out, "PROVIDER")
	assert.Regexp(t, `app\.standard\s+eager`, out)
	assert.Regexp(t, `app\.deferred\s+deferred\s+deferred_provider`, out)
	assert.Regexp(t, `framework\.metrics\s+deferred\s+metrics`, out)
}
