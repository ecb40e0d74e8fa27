// Package runner invokes external tools for pipeline steps.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	serrors "git.home.luguber.info/inful/shipyard/internal/errors"
	"git.home.luguber.info/inful/shipyard/internal/logfields"
)

// Runner executes external commands in a fixed working directory,
// streaming their output. Commands inherit the process environment
// plus any extra variables set with WithEnv.
type Runner struct {
	dir    string
	env    []string
	stdout io.Writer
	stderr io.Writer
}

// New creates a runner rooted at dir. Empty dir means the current directory.
func New(dir string) *Runner {
	return &Runner{
		dir:    dir,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// WithEnv appends KEY=VALUE pairs to the command environment (fluent helper).
func (r *Runner) WithEnv(kv ...string) *Runner {
	r.env = append(r.env, kv...)
	return r
}

// WithOutput redirects command output (used by tests and the daemon log capture).
func (r *Runner) WithOutput(stdout, stderr io.Writer) *Runner {
	if stdout != nil {
		r.stdout = stdout
	}
	if stderr != nil {
		r.stderr = stderr
	}
	return r
}

// Available reports whether the named tool can be found in PATH.
func Available(tool string) bool {
	_, err := exec.LookPath(tool)
	return err == nil
}

// Run executes name with args, waiting for completion. A non-zero exit
// aborts the caller's step sequence, matching shell && semantics.
func (r *Runner) Run(ctx context.Context, name string, args ...string) error {
	if !Available(name) {
		return serrors.ToolNotFound(name)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.dir
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	cmd.Env = append(os.Environ(), r.env...)

	display := name
	if len(args) > 0 {
		display = name + " " + strings.Join(args, " ")
	}
	slog.Info("Running command", logfields.Command(display), logfields.Path(r.dir))

	start := time.Now()
	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("command canceled: %w", ctx.Err())
		}
		slog.Error("Command failed",
			logfields.Command(display),
			logfields.DurationMS(float64(dur.Milliseconds())),
			logfields.Error(err))
		return fmt.Errorf("command %q failed: %w", display, err)
	}

	slog.Debug("Command completed",
		logfields.Command(display),
		logfields.DurationMS(float64(dur.Milliseconds())))
	return nil
}

// RunArgv executes a pre-split argv (first element is the program).
func (r *Runner) RunArgv(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty command")
	}
	return r.Run(ctx, argv[0], argv[1:]...)
}
