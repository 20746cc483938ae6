package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wormtrack/internal/platform/tui"
	"github.com/vovakirdan/wormtrack/internal/telemetry"
)

type serveOptions struct {
	sshAddr     string
	hostKey     string
	idleTimeout int
	metricsAddr string
}

func newServeCmd(a *app) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the wormtrack SSH server",
		Long: `Start an SSH server that lets users connect and play.

Each SSH connection gets its own session with the level picker.
Results are stored per-server (all players share the same board).

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.wormtrack/host_key

With --metrics, Prometheus metrics are served at http://<addr>/metrics.

Examples:
  wormtrack serve                           # Listen on :23234 with auto-generated key
  wormtrack serve --ssh :2222               # Listen on port 2222
  wormtrack serve --host-key ./my_host_key  # Use specific host key
  wormtrack serve --metrics :9090           # Also expose metrics

Users can connect with:
  ssh localhost -p 23234`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("ssh") {
				a.cfg.Server.Address = opts.sshAddr
			}
			if flags.Changed("host-key") {
				a.cfg.Server.HostKeyPath = opts.hostKey
			}
			if flags.Changed("idle-timeout") {
				a.cfg.Server.IdleTimeoutMinutes = opts.idleTimeout
			}
			if flags.Changed("metrics") {
				a.cfg.Metrics.Addr = opts.metricsAddr
			}
			return a.runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&opts.sshAddr, "ssh", ":23234", "SSH server address (host:port)")
	cmd.Flags().StringVar(&opts.hostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	cmd.Flags().IntVar(&opts.idleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics", "", "Serve Prometheus metrics on this address (empty = off)")

	return cmd
}

func (a *app) runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	lvls, err := a.loadLevels()
	if err != nil {
		return err
	}

	store := a.openStoreOrWarn()
	if store != nil {
		defer store.Close()
	}

	collector, err := telemetry.NewCollector(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	deps := tui.SessionDeps{
		Levels:  lvls,
		Store:   store,
		NewGame: a.gameFactory(store, collector),
	}

	sshCfg := tui.DefaultSSHServerConfig()
	sshCfg.Address = a.cfg.Server.Address
	sshCfg.HostKeyPath = a.cfg.Server.HostKeyPath
	sshCfg.TickRate = a.cfg.Sim.TickRate
	if a.cfg.Server.IdleTimeoutMinutes > 0 {
		sshCfg.IdleTimeout = time.Duration(a.cfg.Server.IdleTimeoutMinutes) * time.Minute
	}

	server, err := tui.NewSSHServer(sshCfg, deps, a.logger)
	if err != nil {
		return err
	}

	if a.cfg.Metrics.Addr != "" {
		metricsSrv := &http.Server{
			Addr:              a.cfg.Metrics.Addr,
			Handler:           metricsMux(collector),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			a.logger.Info("serving metrics", "address", metricsSrv.Addr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			//nolint:errcheck // Best-effort shutdown
			metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	fmt.Fprintf(a.out, "Starting wormtrack SSH server on %s\n", sshCfg.Address)
	fmt.Fprintf(a.out, "Serving %d levels, difficulty %s\n", len(lvls), a.cfg.Difficulty.Preset)
	fmt.Fprintln(a.out, "Press Ctrl+C to stop")

	return server.ListenAndServe(ctx)
}

// metricsMux routes /metrics to the collector.
func metricsMux(collector *telemetry.Collector) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	return mux
}
