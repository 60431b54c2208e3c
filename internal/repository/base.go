// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"strings"

	"socialnet/internal/database"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// summaryColumns are the users columns a models.UserSummary needs.
var summaryColumns = []string{"id", "username", "first_name", "last_name", "profile_picture"}

func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}

func selectSummary(db *gorm.DB) *gorm.DB {
	return db.Select(summaryColumns)
}

// isUniqueConstraintError reports whether err is a unique index violation on
// PostgreSQL (SQLSTATE 23505) or SQLite.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate key")
}

// escapeLike escapes LIKE wildcards so user input matches literally under ESCAPE '\'.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > 100 {
		return 100
	}
	return limit
}
