package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nstehr/volley/volley-core/agent"
	"github.com/nstehr/volley/volley-core/ipc"
	"github.com/nstehr/volley/volley-core/tactics"
	"github.com/nstehr/volley/volley-core/telemetry"
	"github.com/nstehr/volley/volley-core/tuning"
)

const banner = `
██╗   ██╗ ██████╗ ██╗     ██╗     ███████╗██╗   ██╗
██║   ██║██╔═══██╗██║     ██║     ██╔════╝╚██╗ ██╔╝
██║   ██║██║   ██║██║     ██║     █████╗   ╚████╔╝
╚██╗ ██╔╝██║   ██║██║     ██║     ██╔══╝    ╚██╔╝
 ╚████╔╝ ╚██████╔╝███████╗███████╗███████╗   ██║
  ╚═══╝   ╚═════╝ ╚══════╝╚══════╝╚══════╝   ╚═╝

Plan-Driven Ball Chasing`

func main() {
	var (
		socketPath   = flag.String("socket", "/tmp/volley.sock", "unix socket the game bridge connects to")
		tuningPath   = flag.String("tuning", "", "path to tuning.yaml (defaults built in)")
		doctrinePath = flag.String("doctrine", "", "path to a starting doctrine yaml")
		logLevel     = flag.String("log-level", "info", "debug, info, warn or error")
		recordDir    = flag.String("record", "", "directory for per-agent zstd tick logs (empty to disable)")
		viewAddr     = flag.String("view", "", "http address for the websocket plan viewer (empty to disable)")
		indexPath    = flag.String("index", "", "sqlite file for plan transitions (empty to disable)")
	)
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "bad -log-level: %v\n", err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	fmt.Println(banner)
	slog.Info("starting volley")

	t := tuning.Default()
	if *tuningPath != "" {
		loaded, err := tuning.Load(*tuningPath)
		if err != nil {
			slog.Error("failed to load tuning", "error", err)
			os.Exit(1)
		}
		t = loaded
	}
	doctrine := tactics.DefaultDoctrine()
	if *doctrinePath != "" {
		d, err := tactics.LoadDoctrine(*doctrinePath)
		if err != nil {
			slog.Error("failed to load doctrine", "path", *doctrinePath, "error", err)
			os.Exit(1)
		}
		doctrine = d
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sinks := telemetry.Multi{}
	if *indexPath != "" {
		ix, err := telemetry.OpenIndex(*indexPath)
		if err != nil {
			slog.Error("failed to open index", "path", *indexPath, "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, ix)
	}
	if *viewAddr != "" {
		b := telemetry.NewBroadcaster(logger)
		sinks = append(sinks, b)
		srv := serveViewer(*viewAddr, b)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}
	defer func() {
		if err := sinks.Close(); err != nil {
			slog.Error("failed to close telemetry", "error", err)
		}
	}()

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(*socketPath); err != nil {
		slog.Error("failed to clean up socket", "path", *socketPath, "error", err)
		os.Exit(1)
	}
	listener, err := net.Listen("unix", *socketPath)
	if err != nil {
		slog.Error("failed to listen on socket", "path", *socketPath, "error", err)
		os.Exit(1)
	}
	defer listener.Close()
	defer os.Remove(*socketPath)

	slog.Info("listening on domain socket", "path", *socketPath, "doctrine", doctrine.Name, "tickRate", t.TickRateHz)

	cfg := agent.Config{
		Tuning:    t,
		Doctrine:  doctrine,
		Sink:      sinks,
		RecordDir: *recordDir,
		Log:       logger,
	}
	srv := newConnServer(func(ctx context.Context, conn net.Conn) {
		handleConn(ctx, conn, cfg)
	}, logger)
	srv.serve(ctx, listener)
	slog.Info("shutting down")
}

func serveViewer(addr string, b *telemetry.Broadcaster) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/plans", b.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		slog.Info("plan viewer listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("plan viewer stopped", "error", err)
		}
	}()
	return srv
}

func handleConn(ctx context.Context, conn net.Conn, cfg agent.Config) {
	c := ipc.NewConnection(conn, nil, cfg.Log)
	a, err := agent.New(ctx, c, cfg)
	if err != nil {
		slog.Error("failed to create agent", "error", err)
		_ = conn.Close()
		return
	}
	defer a.Close()
	c.RegisterHandler(ipc.TypeHello, a.HandleHello)
	c.RegisterHandler(ipc.TypeSnapshot, a.HandleSnapshot)
	c.ReadLoop()
}
