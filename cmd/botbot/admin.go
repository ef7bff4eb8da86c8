package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"syscall"
	"text/tabwriter"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/adapter/postgres"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/config"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/tenant"
)

// runAdmin dispatches admin subcommands (hash-password, list-subscribers, migrate-status).
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "hash-password":
		return runAdminHashPassword(args[1:])
	case "list-subscribers":
		return runAdminListSubscribers(args[1:])
	case "migrate-status":
		return runAdminMigrateStatus(args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: botbot admin <command> [options]

Commands:
  hash-password     Print a bcrypt hash for ADMIN_PASSWORD_HASH
  list-subscribers  List the subscribers of a tenant
  migrate-status    Show the applied schema version
  help              Show this help message

Examples:
  botbot admin hash-password
  botbot admin list-subscribers
  botbot admin list-subscribers --tenant 7012345678
  botbot admin migrate-status
`)
}

func runAdminHashPassword(args []string) error {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	cost := fs.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pass, err := promptPassword("Admin password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	if pass != confirm {
		return fmt.Errorf("passwords do not match")
	}
	if pass == "" {
		return fmt.Errorf("password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), *cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	fmt.Println(string(hash))
	return nil
}

func runAdminListSubscribers(args []string) error {
	fs := flag.NewFlagSet("list-subscribers", flag.ContinueOnError)
	tenantID := fs.String("tenant", "", "tenant id (defaults to the id in TELEGRAM_BOT_TOKEN)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	t := tenant.Context{ID: *tenantID}
	if t.ID == "" {
		if t, err = tenant.FromBotToken(cfg.Telegram.Token); err != nil {
			return err
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	ids, err := postgres.NewStore(pool, cfg.Postgres).ListSubscriberIDs(ctx, t)
	if err != nil {
		return fmt.Errorf("list subscribers: %w", err)
	}

	if len(ids) == 0 {
		fmt.Println("No subscribers found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tUSER_ID")
	for i, id := range ids {
		_, _ = fmt.Fprintf(w, "%d\t%d\n", i+1, id)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%d subscribers in tenant %s\n", len(ids), t.ID)
	return nil
}

func runAdminMigrateStatus(args []string) error {
	fs := flag.NewFlagSet("migrate-status", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	version, err := postgres.MigrationVersion(context.Background(), cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("migration version: %w", err)
	}
	fmt.Printf("schema version: %d\n", version)
	return nil
}

// promptPassword reads a password from the terminal without echoing.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin)) //nolint:unconvert // int conversion needed on some platforms
	fmt.Fprintln(os.Stderr)                         // newline after password input
	if err != nil {
		return "", err
	}
	return string(b), nil
}
