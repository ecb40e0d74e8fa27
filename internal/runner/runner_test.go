package runner

import (
	"bytes"
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "git.home.luguber.info/inful/shipyard/internal/errors"
)

func skipWithoutSh(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" || !Available("sh") {
		t.Skip("requires sh")
	}
}

func TestRun_Success(t *testing.T) {
	skipWithoutSh(t)

	var out bytes.Buffer
	r := New(t.TempDir()).WithOutput(&out, &out)

	err := r.Run(context.Background(), "sh", "-c", "echo hello")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "hello")
}

func TestRun_NonZeroExit(t *testing.T) {
	skipWithoutSh(t)

	r := New(t.TempDir()).WithOutput(&bytes.Buffer{}, &bytes.Buffer{})
	err := r.Run(context.Background(), "sh", "-c", "exit 3")
	require.Error(t, err)
}

func TestRun_ToolNotFound(t *testing.T) {
	r := New(t.TempDir())
	err := r.Run(context.Background(), "shipyard-no-such-tool-xyz")
	require.Error(t, err)
	assert.True(t, serrors.IsCategory(err, serrors.CategoryTool))
}

func TestRun_Canceled(t *testing.T) {
	skipWithoutSh(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(t.TempDir()).WithOutput(&bytes.Buffer{}, &bytes.Buffer{})
	err := r.Run(ctx, "sh", "-c", "sleep 5")
	require.Error(t, err)
}

func TestRun_Env(t *testing.T) {
	skipWithoutSh(t)

	var out bytes.Buffer
	r := New(t.TempDir()).WithEnv("SHIPYARD_TEST_VAR=42").WithOutput(&out, &out)

	require.NoError(t, r.Run(context.Background(), "sh", "-c", "echo $SHIPYARD_TEST_VAR"))
	assert.Contains(t, out.String(), "42")
}

func TestRunArgv(t *testing.T) {
	skipWithoutSh(t)

	r := New(t.TempDir()).WithOutput(&bytes.Buffer{}, &bytes.Buffer{})

	require.Error(t, r.RunArgv(context.Background(), nil))
	require.NoError(t, r.RunArgv(context.Background(), []string{"sh", "-c", "true"}))
}
