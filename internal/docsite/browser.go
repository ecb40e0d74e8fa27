package docsite

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"git.home.luguber.info/inful/shipyard/internal/logfields"
)

// OpenBrowser opens the given URL or file path in the platform's default browser.
func OpenBrowser(ctx context.Context, target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", target)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", target)
	}

	slog.Info("Opening browser", logfields.URL(target))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	// Browser opener is fire-and-forget; reap it in the background.
	go func() { _ = cmd.Wait() }()
	return nil
}
