package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/RowanDark/classic/internal/api"
	"github.com/RowanDark/classic/internal/config"
	"github.com/RowanDark/classic/internal/logging"
	"github.com/RowanDark/classic/internal/rpc"
)

func main() {
	configPath := flag.String("config", "", "configuration file (default ./classic.yml when present)")
	addr := flag.String("addr", "", "listen address, overrides the configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if strings.TrimSpace(*addr) != "" {
		cfg.ListenAddr = strings.TrimSpace(*addr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, out io.Writer) error {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))

	auditOpts := []logging.Option{logging.WithoutStdout(), logging.WithWriter(out)}
	if cfg.AuditLog != "" {
		auditOpts = append(auditOpts, logging.WithFile(cfg.AuditLog))
	}
	audit, err := logging.NewAuditLogger("classicd", auditOpts...)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer func() {
		if err := audit.Close(); err != nil {
			logger.Warn("failed to close audit log", "error", err)
		}
	}()

	analysis := cfg.Analysis.AnalyseOptions()
	grpcServer := rpc.NewGRPCServer(rpc.NewServer(
		rpc.WithAuditLogger(audit.WithComponent("rpc")),
		rpc.WithAnalysis(analysis...),
	))
	defer grpcServer.Stop()

	server, err := api.NewServer(api.Config{
		Addr:     cfg.ListenAddr,
		Logger:   audit.WithComponent("api"),
		Analysis: analysis,
		GRPC:     grpcServer,
	})
	if err != nil {
		return err
	}

	logger.Info("starting classicd",
		"addr", cfg.ListenAddr,
		"language", cfg.Analysis.Language,
		"max_block_length", cfg.Analysis.MaxBlockLength,
		"max_key_length", cfg.Analysis.MaxKeyLength,
	)
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("serve %s: %w", cfg.ListenAddr, err)
	}
	logger.Info("classicd stopped")
	return nil
}
