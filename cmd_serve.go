package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/nstehr/grimoire/agent"
	"github.com/nstehr/grimoire/config"
	"github.com/nstehr/grimoire/ipc"
)

func newServeCmd() *cobra.Command {
	var socketPath, metricsAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rotation decisions to the host bridge over a unix socket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(socketPath, metricsAddr)
		},
	}
	cmd.Flags().StringVar(&socketPath, "socket", "/tmp/grimoire.sock", "unix socket the bridge connects to")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address for /metrics, disabled when empty")
	return cmd
}

func serve(socketPath, metricsAddr string) error {
	fmt.Fprintln(os.Stderr, banner)
	slog.Info("starting grimoire")

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	store := config.NewStore(settings)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if configPath != "" {
		go func() {
			if err := config.Watch(ctx, configPath, store); err != nil {
				slog.Error("settings watcher stopped", "error", err)
			}
		}()
	}

	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: metricsMux(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			slog.Info("serving metrics", "addr", metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", "error", err)
			}
		}()
		defer srv.Close()
	}

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(socketPath); err != nil {
		return fmt.Errorf("clean up socket %s: %w", socketPath, err)
	}
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", socketPath, err)
	}
	defer os.Remove(socketPath)
	slog.Info("listening on domain socket", "path", socketPath)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("shutting down")
				return nil
			}
			slog.Error("failed to accept connection", "error", err)
			continue
		}
		go handleConn(conn, store)
	}
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func handleConn(conn net.Conn, store *config.Store) {
	c := ipc.NewConnection(conn, nil)
	slog.Info("new connection accepted", "session", c.SessionID)
	a := agent.New(c, store)
	c.RegisterHandler(ipc.TypeHello, a.HandleHello)
	c.RegisterHandler(ipc.TypeSnapshot, a.HandleSnapshot)
	c.ReadLoop()
}
