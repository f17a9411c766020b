package database

import (
	"database/sql"
	"regexp"
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) (string, error)

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// SupportsLastInsertId returns true if the driver supports LastInsertId()
	SupportsLastInsertId() bool

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the subdirectory name for migrations (e.g., "sqlite", "postgres")
	MigrationsSubdir() string

	// GooseDialect names the dialect for the migration runner
	GooseDialect() goose.Dialect

	// UpsertQuery builds an insert that updates updateColumns when conflictColumn
	// already holds the inserted value. With no updateColumns the insert is a no-op
	// on conflict.
	UpsertQuery(table string, columns []string, conflictColumn string, updateColumns []string) string

	// IsUniqueViolation reports whether err came from a unique or primary key constraint
	IsUniqueViolation(err error) bool
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// placeholderRegexp matches ? placeholders not inside quotes
var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

// InsertQuery builds a plain multi-column insert with ? placeholders.
func InsertQuery(table string, columns []string) string {
	return "INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES (" + placeholders(len(columns)) + ")"
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// onConflictUpsert is shared by SQLite and PostgreSQL, which both accept
// ON CONFLICT (...) DO UPDATE with the excluded pseudo-table.
func onConflictUpsert(table string, columns []string, conflictColumn string, updateColumns []string) string {
	var b strings.Builder
	b.WriteString(InsertQuery(table, columns))
	b.WriteString(" ON CONFLICT (")
	b.WriteString(conflictColumn)
	b.WriteString(")")
	if len(updateColumns) == 0 {
		b.WriteString(" DO NOTHING")
		return b.String()
	}
	b.WriteString(" DO UPDATE SET ")
	for i, col := range updateColumns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(col + " = excluded." + col)
	}
	return b.String()
}
