//go:build !windows

package relayserver

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/caddyserver/relayd/internal/config"
	"github.com/caddyserver/relayd/internal/snapshot"
	"github.com/caddyserver/relayd/internal/tlsconf"
)

// runReloader is the SignalReloader task: it watches for SIGHUP and,
// on each receipt, rebuilds the dynamic config and TLS credentials
// from scratch and publishes them as one new Snapshot. Either half
// failing to rebuild leaves the previous Snapshot in place untouched,
// per spec.md §7 — there is no partial publication.
func runReloader(ctx context.Context, static config.Static, store *snapshot.Store) error {
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sighup:
			reload(static, store)
		}
	}
}

func reload(static config.Static, store *snapshot.Store) {
	dyn, err := config.LoadDynamic(static.ConfigFilePath)
	if err != nil {
		fmt.Println("Config reload failed: " + err.Error())
		return
	}

	creds, err := tlsconf.Load(dyn.CertFilePath, dyn.KeyFilePath)
	if err != nil {
		fmt.Println("Config reload failed: " + err.Error())
		return
	}

	store.Publish(snapshot.Snapshot{Dynamic: dyn, TLS: creds})
	fmt.Println("Config reloaded successfully")
}
