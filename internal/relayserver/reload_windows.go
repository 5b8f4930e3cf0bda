//go:build windows

package relayserver

import (
	"context"

	"github.com/caddyserver/relayd/internal/config"
	"github.com/caddyserver/relayd/internal/snapshot"
)

// runReloader on Windows has nothing to watch: SIGHUP doesn't exist on
// that platform, so spec.md §6 says non-POSIX builds omit the
// reloader entirely. It just waits for shutdown so it can still run
// as a sibling errgroup task alongside the two listener loops.
func runReloader(ctx context.Context, _ config.Static, _ *snapshot.Store) error {
	<-ctx.Done()
	return nil
}
