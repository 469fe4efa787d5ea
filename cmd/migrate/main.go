package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dasbor/backend/internal/infrastructure/config"
	"github.com/dasbor/backend/internal/infrastructure/logger"
	"github.com/dasbor/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", defaultMigrationsPath, "Path to migrations directory")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		log.Fatal("failed to resolve migrations path", zap.Error(err))
	}
	migrationsPath = absPath

	// create and list work without a database connection
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("migration name required. Usage: migrate create <name> [description]")
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		mf, err := migration.CreateMigration(migrationsPath, args[1], description)
		if err != nil {
			log.Fatal("failed to create migration", zap.Error(err))
		}
		log.Info("migration created",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return

	case "list":
		migrations, err := migration.ListMigrations(migrationsPath)
		if err != nil {
			log.Fatal("failed to list migrations", zap.Error(err))
		}
		if len(migrations) == 0 {
			log.Info("no migrations found")
			return
		}
		for _, m := range migrations {
			fmt.Println("  -", m)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("failed to ping database", zap.Error(err))
	}

	m, err := migration.New(db, migrationsPath, log)
	if err != nil {
		log.Fatal("failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		if err := m.Up(); err != nil {
			log.Fatal("migration up failed", zap.Error(err))
		}

	case "down":
		if err := m.Down(); err != nil {
			log.Fatal("migration down failed", zap.Error(err))
		}

	case "step":
		if len(args) < 2 {
			log.Fatal("step count required. Usage: migrate step <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("invalid step count", zap.String("value", args[1]))
		}
		if err := m.Steps(n); err != nil {
			log.Fatal("migration step failed", zap.Error(err))
		}

	case "goto":
		if len(args) < 2 {
			log.Fatal("version required. Usage: migrate goto <version>")
		}
		version, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			log.Fatal("invalid version number", zap.String("value", args[1]))
		}
		if err := m.GoTo(uint(version)); err != nil {
			log.Fatal("migration goto failed", zap.Error(err))
		}

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("failed to get version", zap.Error(err))
		}
		if version == 0 {
			log.Info("no migrations applied")
		} else {
			log.Info("current migration version",
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
			)
		}

	case "force":
		if len(args) < 2 {
			log.Fatal("version required. Usage: migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("invalid version number", zap.String("value", args[1]))
		}
		log.Warn("forcing migration version")
		if err := m.Force(version); err != nil {
			log.Fatal("force version failed", zap.Error(err))
		}

	case "drop":
		confirmed := false
		for _, arg := range args[1:] {
			if arg == "-confirm" || arg == "--confirm" {
				confirmed = true
			}
		}
		if !confirmed {
			log.Fatal("drop destroys all data. Use 'migrate drop -confirm' to proceed")
		}
		if err := m.Drop(); err != nil {
			log.Fatal("drop failed", zap.Error(err))
		}
		log.Info("database dropped")

	default:
		printUsage()
		os.Exit(1)
	}

	log.Info("done", zap.String("command", command))
}

func printUsage() {
	fmt.Println(`Usage: migrate [flags] <command> [args]

Commands:
  up                      Apply all pending migrations
  down                    Roll back all migrations
  step <n>                Apply n migrations (negative rolls back)
  goto <version>          Migrate to a specific version
  version                 Print the current version
  force <version>         Set the version without running migrations
  create <name> [desc]    Create a new migration file pair
  list                    List migration files
  drop -confirm           Drop all database objects

Flags:
  -path <dir>             Migrations directory (default: ./migrations)
  -log-level <level>      Log level (default: info)`)
}
