package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chargerbridge/pkg/api"
	"chargerbridge/pkg/bridge"
	"chargerbridge/pkg/config"
	"chargerbridge/pkg/gateway"
	"chargerbridge/pkg/producer"
	"chargerbridge/pkg/registry"
	"chargerbridge/pkg/supervisor"
)

func main() {
	// ══════════════════════════════════════════════════════════════
	// STRUCTURED LOGGING
	// ══════════════════════════════════════════════════════════════
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// ══════════════════════════════════════════════════════════════
	// CONFIGURATION
	// ══════════════════════════════════════════════════════════════
	conf, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load conf", "error", err)
		os.Exit(1)
	}
	slog.Info("Config loaded", "producer_path", conf.ProducerPath, "server_address", conf.ServerAddress)

	producerEnv, err := conf.ProducerEnv()
	if err != nil {
		slog.Error("Failed to prepare producer credentials", "error", err)
		os.Exit(1)
	}

	// ══════════════════════════════════════════════════════════════
	// PRODUCER COMMANDS
	// ══════════════════════════════════════════════════════════════
	// The one-shot snapshot call and the monitoring session use fully
	// independent subprocess lifecycles; they never share a session.
	snapshotCommand := producer.Command{
		Path: conf.ProducerPath,
		Args: conf.ProducerArgs,
		Env:  producerEnv,
	}
	monitorCommand := producer.Command{
		Path: conf.ProducerPath,
		Args: append(append([]string{}, conf.ProducerArgs...), conf.MonitorFlag),
		Env:  producerEnv,
	}

	// ══════════════════════════════════════════════════════════════
	// SERVICES
	// ══════════════════════════════════════════════════════════════
	snapshots := gateway.New(snapshotCommand, time.Duration(conf.SnapshotTimeoutSeconds)*time.Second)
	monitor := supervisor.New(monitorCommand)
	devices := registry.New()
	facade := bridge.New(snapshots, monitor, devices, conf.EventQueueSize)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridgeDone := make(chan struct{})
	go func() {
		defer close(bridgeDone)
		facade.Run(ctx)
	}()

	// ══════════════════════════════════════════════════════════════
	// HTTP SURFACE
	// ══════════════════════════════════════════════════════════════
	router := api.NewRouter(facade)
	server := &http.Server{Addr: conf.ServerAddress, Handler: router}

	go func() {
		slog.Info("HTTP server listening", "component", "API", "address", conf.ServerAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", "component", "API", "error", err)
			cancel()
		}
	}()

	// ══════════════════════════════════════════════════════════════
	// SHUTDOWN
	// ══════════════════════════════════════════════════════════════
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		slog.Info("Signal received, shutting down", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown incomplete", "component", "API", "error", err)
	}

	// Cancelling the run context terminates the owned monitoring subprocess;
	// wait for the bridge to confirm the release before exiting.
	cancel()
	<-bridgeDone
	slog.Info("Bridge stopped")
}
