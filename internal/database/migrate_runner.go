package database

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"socialnet/internal/middleware"

	"gorm.io/gorm"
)

const migrationLogTableSQL = `CREATE TABLE IF NOT EXISTS migration_logs (
	version BIGINT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// requiredSchemaObjects are the constraints and unique indexes the service
// relies on for correctness rather than speed: uniqueness of usernames and
// emails, one follow row per pair, and no self-follows.
var requiredSchemaObjects = []string{
	"chk_follows_not_self",
	"idx_follower_following",
	"idx_users_email",
	"idx_users_username",
}

// MigrationStore records which embedded migrations a database has seen.
type MigrationStore interface {
	GetAppliedMigrations(ctx context.Context) ([]int, error)
	ApplyMigration(ctx context.Context, m Migration) error
	RevertMigration(ctx context.Context, m Migration) error
}

type migrationStore struct {
	db *gorm.DB
}

// NewMigrationStore returns a MigrationStore backed by the migration_logs table.
func NewMigrationStore(db *gorm.DB) MigrationStore {
	return &migrationStore{db: db}
}

func (s *migrationStore) GetAppliedMigrations(ctx context.Context) ([]int, error) {
	versions := []int{}
	err := s.db.WithContext(ctx).Raw("SELECT version FROM migration_logs ORDER BY version").Scan(&versions).Error
	if err != nil {
		if isMissingTableError(err) {
			return []int{}, nil
		}
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	return versions, nil
}

func isMissingTableError(err error) bool {
	msg := err.Error()
	return (strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")) ||
		strings.Contains(msg, "no such table")
}

// ApplyMigration runs the up script and records it in one transaction, so a
// failed script never leaves a half-recorded version behind.
func (s *migrationStore) ApplyMigration(ctx context.Context, m Migration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.UpScript).Error; err != nil {
			return fmt.Errorf("apply %s: %w", m.String(), err)
		}
		if err := tx.Exec("INSERT INTO migration_logs (version, name) VALUES (?, ?)", m.Version, m.Name).Error; err != nil {
			return fmt.Errorf("record %s: %w", m.String(), err)
		}
		return nil
	})
}

func (s *migrationStore) RevertMigration(ctx context.Context, m Migration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.DownScript).Error; err != nil {
			return fmt.Errorf("revert %s: %w", m.String(), err)
		}
		if err := tx.Exec("DELETE FROM migration_logs WHERE version = ?", m.Version).Error; err != nil {
			return fmt.Errorf("forget %s: %w", m.String(), err)
		}
		return nil
	})
}

// RunMigrations applies every pending embedded migration in version order and
// then checks that the social graph constraints exist.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).Exec(migrationLogTableSQL).Error; err != nil {
		return fmt.Errorf("ensure migration_logs: %w", err)
	}

	store := NewMigrationStore(db)
	applied, err := store.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	if err := validateAppliedVersions(applied, migrations); err != nil {
		return err
	}

	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	pending := 0
	for _, m := range migrations {
		if done[m.Version] {
			continue
		}
		if err := store.ApplyMigration(ctx, m); err != nil {
			return err
		}
		pending++
		middleware.Logger.Info("Migration applied", slog.String("migration", m.String()))
	}
	if pending == 0 {
		middleware.Logger.Debug("Schema up to date", slog.Int("applied", len(applied)))
	}

	return verifySocialSchema(ctx, db)
}

// verifySocialSchema fails when a required constraint or unique index is
// missing, e.g. after someone dropped one by hand.
func verifySocialSchema(ctx context.Context, db *gorm.DB) error {
	var found []string
	err := db.WithContext(ctx).Raw(
		`SELECT conname FROM pg_constraint WHERE conname IN ?
UNION SELECT indexname FROM pg_indexes WHERE indexname IN ?`,
		requiredSchemaObjects, requiredSchemaObjects,
	).Scan(&found).Error
	if err != nil {
		return fmt.Errorf("inspect schema: %w", err)
	}

	missing := missingSchemaObjects(found)
	if len(missing) > 0 {
		return fmt.Errorf("schema is missing %s", strings.Join(missing, ", "))
	}
	return nil
}

func missingSchemaObjects(found []string) []string {
	have := make(map[string]bool, len(found))
	for _, name := range found {
		have[name] = true
	}
	var missing []string
	for _, name := range requiredSchemaObjects {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

func validateAppliedVersions(applied []int, registered []Migration) error {
	known := make(map[int]bool, len(registered))
	for _, m := range registered {
		known[m.Version] = true
	}

	var unknown []string
	sorted := append([]int(nil), applied...)
	sort.Ints(sorted)
	for _, v := range sorted {
		if !known[v] {
			unknown = append(unknown, fmt.Sprintf("%06d", v))
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	return fmt.Errorf("migration_logs has versions this build does not know: %s (drop the database in development to rebuild)",
		strings.Join(unknown, ", "))
}

// RollbackMigration reverts one applied migration. Versions must be rolled
// back newest first; reverting 000001 under 000002 would drop tables the
// later indexes sit on.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	m := GetMigrationByVersion(version)
	if m == nil {
		return fmt.Errorf("migration version %d not found", version)
	}

	store := NewMigrationStore(db)
	applied, err := store.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	latest := 0
	isApplied := false
	for _, v := range applied {
		if v == version {
			isApplied = true
		}
		if v > latest {
			latest = v
		}
	}
	if !isApplied {
		return fmt.Errorf("migration %s has not been applied", m.String())
	}
	if latest != version {
		return fmt.Errorf("migration %s is not the latest applied (%06d); roll that back first", m.String(), latest)
	}

	if err := store.RevertMigration(ctx, *m); err != nil {
		return err
	}
	middleware.Logger.Info("Migration rolled back", slog.String("migration", m.String()))
	return nil
}
