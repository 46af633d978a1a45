package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rentora/access-layer/internal/fakebackend"
	"github.com/rentora/access-layer/pkg/logger"
)

const defaultSandboxAddr = ":8080"

// runSandbox serves the in-process backend until interrupted.
func runSandbox(ctx context.Context, args []string) error {
	addr := defaultSandboxAddr
	if len(args) > 0 {
		addr = args[0]
	}

	log := logger.Component("sandbox")
	srv, err := fakebackend.New(fakebackend.Config{Secret: os.Getenv("SANDBOX_SECRET")}, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(addr) }()

	fmt.Printf("sandbox backend listening on %s%s\n", addr, fakebackend.BasePath)
	for _, acc := range fakebackend.DefaultAccounts {
		fmt.Printf("  %-8s %s / %s\n", acc.Role, acc.Email, acc.Password)
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}
