package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/MinhaulMahmud/PersonalBlog/platform/logging"
	"github.com/MinhaulMahmud/PersonalBlog/platform/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	config, err := LoadConfig(os.Getenv("POST_SERVICE_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}
	logger, err := logging.New(config.LogLevel, "post_service")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "post_service")
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	}

	deps, dashboard, err := buildDeps(ctx, config, logger)
	if err != nil {
		logger.Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	postService := NewPostService(deps, config, logger)
	postService.newGRPCServer(telemetry.ServerOptions()...)
	postService.newHTTPServer()

	listener, err := net.Listen("tcp", net.JoinHostPort(config.ServerHost, config.ServerPort))
	if err != nil {
		logger.Fatal("Can not initialize listener", zap.Error(err))
	}
	if err := postService.register(); err != nil {
		logger.Fatal("Failed to register instance", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return postService.start(listener) })
	g.Go(postService.StartHealthServer)
	if dashboard != nil {
		g.Go(func() error { return dashboard.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		postService.close()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("post_service stopped with error", zap.Error(err))
	}
	if dashboard != nil {
		if err := dashboard.Close(); err != nil {
			logger.Warn("Error closing kafka consumer", zap.Error(err))
		}
	}
	if err := shutdownTracing(context.Background()); err != nil {
		logger.Warn("Error flushing traces", zap.Error(err))
	}
}
