// Command relayd runs the reverse proxy. It takes no flags: every
// setting is either an environment variable (see internal/config) or
// a field in the dynamic TOML config file, following the teacher's
// pattern of a thin cobra entry point whose real work lives in
// internal packages.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/caddyserver/relayd/internal/config"
	"github.com/caddyserver/relayd/internal/relayserver"
	"github.com/caddyserver/relayd/internal/rlog"
)

func main() {
	if _, err := maxprocs.Set(); err != nil {
		fmt.Fprintln(os.Stderr, "relayd: "+err.Error())
	}

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "relayd",
		Short: "relayd is a host-routed, TLS-terminating reverse proxy",
		Long: `relayd terminates TLS on one port, redirects plaintext traffic on
another port to its TLS counterpart, and forwards matched requests —
including WebSocket upgrades — to a backend chosen by the request's
Host. Its routing table, certificate, and private key reload live on
SIGHUP without dropping in-flight connections.

Configuration is environment-driven: CONFIG_FILE, HTTP_PORT, and
HTTPS_PORT (see internal/config for defaults). There are no flags.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runRelayd,
	}
}

func runRelayd(cmd *cobra.Command, _ []string) error {
	static, err := config.LoadStatic()
	if err != nil {
		fmt.Fprintln(os.Stderr, "relayd: "+err.Error())
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := rlog.New()
	defer log.Sync()

	if err := relayserver.Run(ctx, static, log); err != nil {
		fmt.Fprintln(os.Stderr, "relayd: "+err.Error())
		return err
	}
	return nil
}
