// Command preparserd is the daemon process: it loads configuration,
// constructs the engine, and exposes an enqueue/cancel/status surface over
// a local Unix-socket IPC.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"preparser/internal/config"
	"preparser/internal/daemon"
	"preparser/internal/ipc"
	"preparser/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, resolvedPath, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	logger.Info("preparserd config loaded", logging.String("path", resolvedPath))

	d, err := daemon.New(cfg, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		log.Fatalf("create daemon: %v", err)
	}
	defer d.Close()

	if err := d.Start(); err != nil {
		logger.Error("start daemon", logging.Error(err))
		log.Fatalf("start daemon: %v", err)
	}

	ipcServer, err := ipc.NewServer(ctx, cfg.Daemon.SocketPath, d, logger)
	if err != nil {
		logger.Error("start IPC server", logging.Error(err))
		log.Fatalf("start IPC server: %v", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	<-ctx.Done()
	logger.Info("preparserd shutting down")
}
