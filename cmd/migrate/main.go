package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/statyba/storefront/internal/infrastructure/config"
	"github.com/statyba/storefront/internal/infrastructure/logger"
	"github.com/statyba/storefront/internal/infrastructure/migration"
	"github.com/statyba/storefront/migrations"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

var errUsage = errors.New("usage")

type options struct {
	path       string
	configPath string
	logLevel   string
}

// env is what a subcommand runs against. m is nil for offline commands.
type env struct {
	opts options
	args []string
	log  *zap.Logger
	out  io.Writer
	m    *migration.Migrator
}

type command struct {
	usage   string
	help    string
	minArgs int
	offline bool
	run     func(e *env) error
}

var commands = map[string]command{
	"up":   {help: "Apply all pending migrations", run: func(e *env) error { return e.m.Up() }},
	"down": {help: "Roll back all migrations", run: func(e *env) error { return e.m.Down() }},
	"step": {usage: "<n>", help: "Apply n migrations (negative rolls back)", minArgs: 1, run: func(e *env) error {
		n, err := strconv.Atoi(e.args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", e.args[0])
		}
		return e.m.Steps(n)
	}},
	"goto": {usage: "<version>", help: "Migrate up or down to version", minArgs: 1, run: func(e *env) error {
		v, err := parseVersion(e.args[0])
		if err != nil {
			return err
		}
		return e.m.GoTo(uint(v))
	}},
	"version": {help: "Show the current version", run: func(e *env) error {
		v, dirty, err := e.m.Version()
		if err != nil {
			return err
		}
		if v == 0 {
			fmt.Fprintln(e.out, "no migrations applied")
			return nil
		}
		fmt.Fprintf(e.out, "version %d (dirty=%t)\n", v, dirty)
		return nil
	}},
	"force": {usage: "<version>", help: "Set the version without running migrations", minArgs: 1, run: func(e *env) error {
		v, err := parseVersion(e.args[0])
		if err != nil {
			return err
		}
		e.log.Warn("Forcing migration version", zap.Int("version", v))
		return e.m.Force(v)
	}},
	"drop": {usage: "-confirm", help: "Drop every table in the database", minArgs: 1, run: func(e *env) error {
		if e.args[0] != "-confirm" && e.args[0] != "--confirm" {
			return errors.New("drop needs -confirm")
		}
		return e.m.Drop()
	}},
	"create": {usage: "<name> [desc]", help: "Write a new up/down file pair", minArgs: 1, offline: true, run: func(e *env) error {
		desc := ""
		if len(e.args) > 1 {
			desc = e.args[1]
		}
		mf, err := migration.CreateMigration(sourceDir(e.opts.path), e.args[0], desc)
		if err != nil {
			return err
		}
		e.log.Info("Migration created", zap.String("up", mf.UpPath), zap.String("down", mf.DownPath))
		return nil
	}},
	"list": {help: "List migration files", offline: true, run: func(e *env) error {
		names, err := migration.ListMigrations(sourceDir(e.opts.path))
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(e.out, name)
		}
		return nil
	}},
}

func main() {
	var opts options
	flag.StringVar(&opts.path, "path", "", "Read migrations from this directory instead of the embedded set")
	flag.StringVar(&opts.configPath, "config", "", "Configuration file (default: config.toml)")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = func() { printUsage(os.Stderr) }
	flag.Parse()

	err := run(opts, flag.Args(), os.Stdout)
	if errors.Is(err, errUsage) {
		printUsage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(opts options, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	if len(args)-1 < cmd.minArgs {
		return fmt.Errorf("%w: %s %s", errUsage, args[0], cmd.usage)
	}

	log, err := logger.New(&logger.Config{Level: opts.logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	e := &env{opts: opts, args: args[1:], log: log, out: out}
	if cmd.offline {
		return cmd.run(e)
	}

	m, closeDB, err := openMigrator(opts, log)
	if err != nil {
		return err
	}
	defer closeDB()
	e.m = m
	return cmd.run(e)
}

func openMigrator(opts options, log *zap.Logger) (*migration.Migrator, func(), error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFile(opts.configPath)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	var m *migration.Migrator
	if opts.path != "" {
		abs, absErr := filepath.Abs(opts.path)
		if absErr != nil {
			_ = db.Close()
			return nil, nil, absErr
		}
		m, err = migration.New(db, abs, log)
	} else {
		m, err = migration.NewEmbedded(db, migrations.FS, log)
	}
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	// closing the migrator closes db as well
	return m, func() { _ = m.Close() }, nil
}

func parseVersion(s string) (int, error) {
	v, err := strconv.ParseUint(s, 10, 31)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q", s)
	}
	return int(v), nil
}

func sourceDir(path string) string {
	if path != "" {
		return path
	}
	return defaultMigrationsPath
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: migrate [flags] <command> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := commands[name]
		fmt.Fprintf(w, "  %-22s %s\n", name+" "+c.usage, c.help)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	flag.CommandLine.SetOutput(w)
	flag.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Database settings come from the config file or SHOP_DATABASE_* variables.")
}
