package relayserver

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/caddyserver/relayd/internal/config"
	"github.com/caddyserver/relayd/internal/snapshot"
	"github.com/caddyserver/relayd/internal/tlsconf"
)

// Run loads the initial configuration, binds both listening sockets,
// and then runs the two listener loops and the reloader as sibling
// tasks until ctx is canceled (spec.md's "scheduling model" §5:
// listener loops and the reloader are sibling tasks, coordinated only
// through the shared Snapshot and OS sockets). It blocks until every
// task has wound down and returns the first non-shutdown error, if
// any.
func Run(ctx context.Context, static config.Static, log *zap.Logger) error {
	dyn, err := config.LoadDynamic(static.ConfigFilePath)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}

	creds, err := tlsconf.Load(dyn.CertFilePath, dyn.KeyFilePath)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}

	store := snapshot.NewStore(snapshot.Snapshot{Dynamic: dyn, TLS: creds})

	httpLn, httpsLn, err := Bind(ctx, net.JoinHostPort("", strconv.Itoa(int(static.HTTPPort))), net.JoinHostPort("", strconv.Itoa(int(static.HTTPSPort))))
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}

	fmt.Println("Server started")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return serveInsecure(httpLn, store, log) })
	g.Go(func() error { return serveSecure(httpsLn, store, log) })
	g.Go(func() error { return runReloader(gctx, static, store) })
	g.Go(func() error {
		<-gctx.Done()
		httpLn.Close()
		httpsLn.Close()
		return nil
	})

	err = g.Wait()
	fmt.Println("Server stopped")
	return err
}
