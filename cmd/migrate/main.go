// Command migrate runs schema operations for the VidTube database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"vidtube/internal/config"
	"vidtube/internal/database"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

type command struct {
	help string
	run  func(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string) error
}

var commands = map[string]command{
	"up": {"apply pending SQL migrations", func(ctx context.Context, db *gorm.DB, _ *config.Config, _ []string) error {
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		log.Println("sql migrations applied")
		return nil
	}},
	"auto": {"run GORM AutoMigrate for every persistent model", func(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		log.Println("automigrations applied")
		return nil
	}},
	"status": {"show the schema policy and pending migrations", func(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		log.Printf("mode=%s env=%s run_sql=%t run_auto=%t applied=%d pending=%d",
			status.Mode, status.Environment, status.WillRunSQL, status.WillRunAutoMigrate,
			len(status.AppliedVersions), len(status.PendingMigrations))
		for _, m := range status.PendingMigrations {
			log.Printf("pending: %s", m)
		}
		return nil
	}},
	"down": {"roll back one migration: down <version>", func(ctx context.Context, db *gorm.DB, _ *config.Config, args []string) error {
		if len(args) < 1 {
			return fmt.Errorf("usage: migrate down <version>")
		}
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		log.Printf("rolled back migration %d", version)
		return nil
	}},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("usage: migrate <command> [args]\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %-7s %s\n", name, commands[name].help)
	}
	return fmt.Errorf("%s", b.String())
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}
	cmd, ok := commands[strings.ToLower(strings.TrimSpace(flag.Arg(0)))]
	if !ok {
		return usage()
	}

	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = database.Close() }()

	return cmd.run(context.Background(), db, cfg, flag.Args()[1:])
}
