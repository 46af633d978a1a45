package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rentora/access-layer/internal/core/domain"
	"github.com/rentora/access-layer/internal/core/service"
	"github.com/rentora/access-layer/internal/infrastructure/config"
	"github.com/rentora/access-layer/internal/infrastructure/credentials"
	"github.com/rentora/access-layer/internal/infrastructure/health"
	"github.com/rentora/access-layer/internal/infrastructure/navigation"
	"github.com/rentora/access-layer/internal/infrastructure/scheduler"
	"github.com/rentora/access-layer/internal/infrastructure/transport"
	"github.com/rentora/access-layer/pkg/logger"
)

type app struct {
	out io.Writer
	in  io.Reader

	client    *service.APIClient
	sessions  *service.SessionService
	resolver  *service.MetadataResolver
	checker   *health.Checker
	scheduler *scheduler.TimerScheduler
	closeFn   credentials.Closer
}

func newApp(ctx context.Context, cfg *config.Config, out, errOut io.Writer) (*app, error) {
	store, closeFn, err := credentials.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("credential store: %w", err)
	}

	httpClient := transport.NewClient(transport.Options{Timeout: cfg.HTTPTimeout, Tracing: cfg.Tracing})
	sched := scheduler.New()
	nav := navigation.NewTerminal(errOut, logger.Component("navigation"))

	policy := service.NewAuthPolicy(store, nav, sched, service.AuthPolicyConfig{
		LoginPaths: cfg.LoginPaths(),
		Delay:      cfg.RedirectDelay,
	}, logger.Component("auth_policy"))

	builder := service.NewRequestBuilder(cfg.BaseURL, store)
	dispatcher := service.NewDispatcher(builder, httpClient, policy, logger.Component("dispatcher"))
	client := service.NewAPIClient(dispatcher)

	return &app{
		out:       out,
		in:        os.Stdin,
		client:    client,
		sessions:  service.NewSessionService(client, store, cfg.LoginEndpoints(), logger.Component("session")),
		resolver:  service.NewMetadataResolver(dispatcher, cfg.MetadataPath),
		checker:   health.NewChecker(builder.BaseURL(), httpClient, store),
		scheduler: sched,
		closeFn:   closeFn,
	}, nil
}

func (a *app) close(ctx context.Context) {
	if a.closeFn != nil {
		_ = a.closeFn(ctx)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		if len(args) < 2 {
			return usage("login <role> <email> [password]")
		}
		role, err := parseRole(args[0], false)
		if err != nil {
			return err
		}
		password := os.Getenv("ACCESS_PASSWORD")
		if len(args) > 2 {
			password = args[2]
		}
		st, err := a.sessions.SignIn(ctx, role, domain.SignInInput{Email: args[1], Password: password})
		if err != nil {
			return describeLoginError(err)
		}
		return a.printJSON(st)

	case "logout":
		if len(args) < 1 {
			return usage("logout <role>")
		}
		role, err := parseRole(args[0], false)
		if err != nil {
			return err
		}
		if err := a.sessions.SignOut(role); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "OK")
		return nil

	case "status":
		roles := domain.Roles
		if len(args) > 0 {
			role, err := parseRole(args[0], false)
			if err != nil {
				return err
			}
			roles = []domain.Role{role}
		}
		out := make([]*domain.SessionStatus, 0, len(roles))
		for _, role := range roles {
			st, err := a.sessions.Status(role)
			if err != nil {
				return err
			}
			out = append(out, st)
		}
		return a.printJSON(out)

	case "get", "delete":
		if len(args) < 2 {
			return usage(command + " <role> <path>")
		}
		role, err := parseRole(args[0], true)
		if err != nil {
			return err
		}
		var raw json.RawMessage
		if command == "get" {
			raw, err = a.client.Get(ctx, role, args[1])
		} else {
			raw, err = a.client.Delete(ctx, role, args[1])
		}
		if err != nil {
			return err
		}
		return a.printRaw(raw)

	case "post", "put":
		if len(args) < 3 {
			return usage(command + " <role> <path> <json|@file|->")
		}
		role, err := parseRole(args[0], true)
		if err != nil {
			return err
		}
		body, err := a.readBody(args[2])
		if err != nil {
			return err
		}
		var raw json.RawMessage
		if command == "post" {
			raw, err = a.client.Create(ctx, role, args[1], domain.JSON(body))
		} else {
			raw, err = a.client.Replace(ctx, role, args[1], domain.JSON(body))
		}
		if err != nil {
			return err
		}
		return a.printRaw(raw)

	case "upload":
		if len(args) < 3 {
			return usage("upload <role> <path> [field=value | field=@file]...")
		}
		role, err := parseRole(args[0], true)
		if err != nil {
			return err
		}
		payload, err := multipartFromArgs(args[2:])
		if err != nil {
			return err
		}
		raw, err := a.client.Create(ctx, role, args[1], payload)
		if err != nil {
			return err
		}
		return a.printRaw(raw)

	case "download":
		if len(args) < 2 {
			return usage("download <role> <path> [output]")
		}
		role, err := parseRole(args[0], true)
		if err != nil {
			return err
		}
		data, err := a.client.Download(ctx, role, args[1])
		if err != nil {
			return err
		}
		if len(args) > 2 && args[2] != "-" {
			if err := os.WriteFile(args[2], data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "wrote %d bytes to %s\n", len(data), args[2])
			return nil
		}
		_, err = a.out.Write(data)
		return err

	case "meta":
		if len(args) < 2 {
			return usage("meta <type> <slug> [canonical-url]")
		}
		q := domain.MetadataQuery{Type: args[0], Slug: args[1]}
		if len(args) > 2 {
			q.CanonicalURL = args[2]
		}
		md, err := a.resolver.Resolve(ctx, q)
		if err != nil {
			return err
		}
		return a.printJSON(md)

	case "doctor":
		report := a.checker.Check(ctx)
		if err := a.printJSON(report); err != nil {
			return err
		}
		if !report.Healthy() {
			return errors.New("one or more dependencies are unhealthy")
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q, run accessctl help", command)
	}
}

func usage(s string) error {
	return fmt.Errorf("usage: accessctl %s", s)
}

// parseRole accepts "none" for unauthenticated calls when allowNone is set.
func parseRole(s string, allowNone bool) (domain.Role, error) {
	if allowNone && (s == "none" || s == "public") {
		return domain.RoleNone, nil
	}
	return domain.ParseRole(strings.ToLower(s))
}

func describeLoginError(err error) error {
	var raw *domain.RawResponseError
	if errors.As(err, &raw) {
		msg := strings.TrimSpace(string(raw.Body))
		if msg == "" {
			return err
		}
		return fmt.Errorf("%w: %s", err, msg)
	}
	return err
}

// readBody parses a JSON argument. "@path" reads a file and "-" reads stdin.
func (a *app) readBody(arg string) (any, error) {
	var src []byte
	var err error
	switch {
	case arg == "-":
		src, err = io.ReadAll(a.in)
	case strings.HasPrefix(arg, "@"):
		src, err = os.ReadFile(arg[1:])
	default:
		src = []byte(arg)
	}
	if err != nil {
		return nil, err
	}

	var body any
	if err := json.Unmarshal(src, &body); err != nil {
		return nil, fmt.Errorf("body is not valid JSON: %w", err)
	}
	return body, nil
}

func multipartFromArgs(args []string) (domain.BinaryPayload, error) {
	fields := make(map[string]string)
	var files []domain.FilePart
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return domain.BinaryPayload{}, fmt.Errorf("form part %q must be field=value or field=@file", arg)
		}
		if !strings.HasPrefix(v, "@") {
			fields[k] = v
			continue
		}
		f, err := os.Open(v[1:])
		if err != nil {
			return domain.BinaryPayload{}, err
		}
		defer f.Close()
		files = append(files, domain.FilePart{Field: k, FileName: filepath.Base(v[1:]), Content: f})
	}
	return domain.NewMultipartPayload(fields, files)
}

func (a *app) printRaw(raw json.RawMessage) error {
	if len(raw) == 0 {
		fmt.Fprintln(a.out, "OK")
		return nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, err = fmt.Fprintln(a.out, string(raw))
		return err
	}
	_, err := fmt.Fprintln(a.out, buf.String())
	return err
}

func (a *app) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}
