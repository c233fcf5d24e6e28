package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/pflag"
)

const (
	storagePathFlag   = "storage-path"
	migrationPathFlag = "migrations-path"
	stepsFlag         = "steps"
	downFlag          = "down"

	// storagePathEnv is read when --storage-path is not given.
	storagePathEnv = "STOREFRONT_STORAGE_SQL_DB"
)

type flags struct {
	storagePath    string
	migrationsPath string
	steps          int
	down           bool
}

func main() {
	f := getFlagsValues()
	validateFlags(f)
	makeMigrations(f)
}

type MigrationLogger struct {
	logger  *slog.Logger
	verbose bool
}

func NewMigrationLogger() *MigrationLogger {
	return &MigrationLogger{
		logger:  slog.Default().With("op", "migrator"),
		verbose: true,
	}
}

func (ml *MigrationLogger) Printf(format string, v ...any) {
	ml.logger.Info(fmt.Sprintf(format, v...))
}

func (ml *MigrationLogger) Verbose() bool {
	return ml.verbose
}

func getFlagsValues() flags {
	var f flags
	pflag.StringVarP(&f.storagePath, storagePathFlag, "s", os.Getenv(storagePathEnv),
		"postgres connection string without scheme, user:pass@host:port/db")
	pflag.StringVarP(&f.migrationsPath, migrationPathFlag, "m", "./migrations",
		"directory with migration files")
	pflag.IntVarP(&f.steps, stepsFlag, "n", 0,
		"number of migrations to apply, all when zero")
	pflag.BoolVar(&f.down, downFlag, false, "roll migrations back instead of applying them")
	pflag.Parse()
	return f
}

func validateFlags(f flags) {
	var errs []error

	if f.storagePath == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", storagePathFlag))
	}

	if f.migrationsPath == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", migrationPathFlag))
	}

	if f.steps < 0 {
		errs = append(errs, fmt.Errorf("--%s flag: must not be negative", stepsFlag))
	}

	if len(errs) != 0 {
		slog.Error("invalid args", "err", errors.Join(errs...))
		fallDown()
	}
}

func makeMigrations(f flags) {
	m, err := migrate.New(
		fmt.Sprintf("file://%s", f.migrationsPath),
		fmt.Sprintf("pgx5://%s", trimScheme(f.storagePath)),
	)
	if err != nil {
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}
	defer m.Close()

	m.Log = NewMigrationLogger()

	if err := run(m, f); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.Log.Printf("no migrations to apply")
			return
		}
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		slog.Error("failed to read schema version", "err", err)
		fallDown()
	}
	m.Log.Printf("migration applied, version=%d dirty=%t", version, dirty)
}

func run(m *migrate.Migrate, f flags) error {
	switch {
	case f.steps > 0 && f.down:
		return m.Steps(-f.steps)
	case f.steps > 0:
		return m.Steps(f.steps)
	case f.down:
		return m.Down()
	}
	return m.Up()
}

// trimScheme accepts the postgres URL the service is configured with.
func trimScheme(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://", "pgx5://"} {
		if rest, ok := strings.CutPrefix(dsn, scheme); ok {
			return rest
		}
	}
	return dsn
}

func fallDown() {
	os.Exit(2)
}
