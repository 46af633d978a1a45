package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rentora/access-layer/internal/infrastructure/config"
	"github.com/rentora/access-layer/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	ctx := context.Background()
	cfg := config.MustLoad(ctx)
	logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	command := strings.ToLower(os.Args[1])
	args := os.Args[2:]

	if command == "help" || command == "-h" || command == "--help" {
		printUsage()
		return
	}
	if command == "sandbox" {
		if err := runSandbox(ctx, args); err != nil {
			fail(err)
		}
		return
	}

	a, err := newApp(ctx, cfg, os.Stdout, os.Stderr)
	if err != nil {
		fail(err)
	}

	err = a.run(ctx, command, args)
	// Pending login redirects fire before the process exits.
	a.scheduler.Wait()
	a.close(ctx)
	if err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Println("accessctl - role-aware client for the marketplace backend")
	fmt.Println("\nUsage:")
	fmt.Println("  accessctl login <role> <email> [password]")
	fmt.Println("  accessctl logout <role>")
	fmt.Println("  accessctl status [role]")
	fmt.Println("  accessctl get <role> <path>")
	fmt.Println("  accessctl post <role> <path> <json|@file|->")
	fmt.Println("  accessctl put <role> <path> <json|@file|->")
	fmt.Println("  accessctl delete <role> <path>")
	fmt.Println("  accessctl upload <role> <path> [field=value | field=@file]...")
	fmt.Println("  accessctl download <role> <path> [output]")
	fmt.Println("  accessctl meta <type> <slug> [canonical-url]")
	fmt.Println("  accessctl doctor")
	fmt.Println("  accessctl sandbox [addr]")
	fmt.Println("\nRoles: staff (admin), end_user (user), none")
	fmt.Println("\nEnvironment Variables:")
	fmt.Println("  API_BASE_URL        Backend endpoint (default: " + config.DefaultBaseURL + ")")
	fmt.Println("  CREDENTIAL_STORE    file, memory, redis or mongo (default: file)")
	fmt.Println("  CREDENTIAL_DIR      Directory of the file store (default: .credentials)")
	fmt.Println("  CREDENTIAL_KEY      64 hex chars; seals tokens in the file store")
	fmt.Println("  ACCESS_PASSWORD     Password used by login when none is given")
	fmt.Println("  LOG_LEVEL           trace, debug, info, warn, error, off (default: info)")
}
