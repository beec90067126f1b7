package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/runlens/runlens/internal/apikeys"
	"github.com/runlens/runlens/internal/projects"
	"github.com/runlens/runlens/internal/validation"
)

func runAdmin(args []string) int {
	if len(args) == 0 {
		printAdminUsage()
		return 2
	}

	switch args[0] {
	case "create-project":
		return runCreateProject(args[1:])
	case "create-key":
		return runCreateKey(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown admin command: %s\n", args[0])
		printAdminUsage()
		return 2
	}
}

func printAdminUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  runlens admin create-project --slug my-app --name \"My App\" [--db-dsn <dsn>]")
	fmt.Fprintln(os.Stderr, "  runlens admin create-key --project my-app --key-name ci [--scopes ingest:write,runs:read] [--db-dsn <dsn>]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Notes:")
	fmt.Fprintln(os.Stderr, "  - The raw API key is printed once on creation and never stored.")
	fmt.Fprintln(os.Stderr, "  - --db-dsn defaults to RL_DB_DSN.")
}

func runCreateProject(args []string) int {
	fs := flag.NewFlagSet("create-project", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var slug string
	var name string
	var dbDSN string

	fs.StringVar(&slug, "slug", "", "Project slug")
	fs.StringVar(&name, "name", "", "Project display name")
	fs.StringVar(&dbDSN, "db-dsn", "", "Postgres DSN (defaults to RL_DB_DSN)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	slug = validation.NormalizeSlug(slug)
	if err := validation.ValidateSlug(slug); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid --slug: %v\n", err)
		return 2
	}
	if strings.TrimSpace(name) == "" {
		name = slug
	}

	pool, cleanup, code := adminPool(dbDSN)
	if code != 0 {
		return code
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	project, err := projects.NewService(pool).Create(ctx, slug, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create project: %v\n", err)
		return 1
	}

	fmt.Fprintf(os.Stdout, "Project created: %s (%s)\n", project.Slug, project.ID)
	return 0
}

func runCreateKey(args []string) int {
	fs := flag.NewFlagSet("create-key", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var projectSlug string
	var keyName string
	var scopesFlag string
	var dbDSN string

	fs.StringVar(&projectSlug, "project", "", "Project slug the key belongs to")
	fs.StringVar(&keyName, "key-name", "", "Human-readable key name")
	fs.StringVar(&scopesFlag, "scopes", "ingest:write,runs:read", "Comma-separated scopes")
	fs.StringVar(&dbDSN, "db-dsn", "", "Postgres DSN (defaults to RL_DB_DSN)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	projectSlug = validation.NormalizeSlug(projectSlug)
	if projectSlug == "" {
		fmt.Fprintln(os.Stderr, "--project is required")
		return 2
	}
	keyName = strings.TrimSpace(keyName)
	if keyName == "" {
		fmt.Fprintln(os.Stderr, "--key-name is required")
		return 2
	}

	var scopes []string
	for _, s := range strings.Split(scopesFlag, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		switch apikeys.ApiKeyScope(s) {
		case apikeys.ScopeIngestWrite, apikeys.ScopeRunsRead:
			scopes = append(scopes, s)
		default:
			fmt.Fprintf(os.Stderr, "Unknown scope: %s\n", s)
			return 2
		}
	}
	if len(scopes) == 0 {
		fmt.Fprintln(os.Stderr, "--scopes must name at least one scope")
		return 2
	}

	pool, cleanup, code := adminPool(dbDSN)
	if code != 0 {
		return code
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	project, err := projects.NewService(pool).GetBySlug(ctx, projectSlug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to look up project %q: %v\n", projectSlug, err)
		return 1
	}

	token, hash, err := apikeys.GenerateToken()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate token: %v\n", err)
		return 1
	}

	key, err := apikeys.NewService(pool).Create(ctx, project.ID, keyName, hash, scopes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create API key: %v\n", err)
		return 1
	}

	fmt.Fprintf(os.Stdout, "API key created: %s (%s)\n", key.Name, key.ID)
	fmt.Fprintln(os.Stdout, "Store this token now; it will not be shown again:")
	fmt.Fprintln(os.Stdout, token)
	return 0
}

func adminPool(dbDSN string) (*pgxpool.Pool, func(), int) {
	if dbDSN == "" {
		dbDSN = strings.TrimSpace(os.Getenv("RL_DB_DSN"))
	}
	if dbDSN == "" {
		fmt.Fprintln(os.Stderr, "--db-dsn is required (or set RL_DB_DSN)")
		return nil, nil, 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return nil, nil, 1
	}

	return pool, pool.Close, 0
}
