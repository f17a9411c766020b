package database

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		result := dialect.SupportsLastInsertId()
		if !result {
			t.Error("SupportsLastInsertId() should return true for SQLite")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "sqlite"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		result := dialect.SupportsLastInsertId()
		if result {
			t.Error("SupportsLastInsertId() should return false for PostgreSQL")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "postgres"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		result := dialect.SupportsLastInsertId()
		if !result {
			t.Error("SupportsLastInsertId() should return true for MySQL")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "mysql"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM users WHERE id = ?",
			expected: "SELECT * FROM users WHERE id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM users WHERE id = ?",
			expected: "SELECT * FROM users WHERE id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO users (name, email) VALUES (?, ?)",
			expected: "INSERT INTO users (name, email) VALUES ($1, $2)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE users SET name = ?, email = ? WHERE id = ?",
			expected: "UPDATE users SET name = ?, email = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestUpsertQuery(t *testing.T) {
	columns := []string{"family_id", "is_active", "updated_at"}
	tests := []struct {
		name     string
		dialect  Dialect
		update   []string
		expected string
	}{
		{
			name:     "SQLite update",
			dialect:  NewSQLiteDialect(),
			update:   []string{"is_active", "updated_at"},
			expected: "INSERT INTO barrier_status (family_id, is_active, updated_at) VALUES (?, ?, ?) ON CONFLICT (family_id) DO UPDATE SET is_active = excluded.is_active, updated_at = excluded.updated_at",
		},
		{
			name:     "SQLite insert if absent",
			dialect:  NewSQLiteDialect(),
			expected: "INSERT INTO barrier_status (family_id, is_active, updated_at) VALUES (?, ?, ?) ON CONFLICT (family_id) DO NOTHING",
		},
		{
			name:     "PostgreSQL update",
			dialect:  NewPostgresDialect(),
			update:   []string{"is_active"},
			expected: "INSERT INTO barrier_status (family_id, is_active, updated_at) VALUES (?, ?, ?) ON CONFLICT (family_id) DO UPDATE SET is_active = excluded.is_active",
		},
		{
			name:     "MySQL update",
			dialect:  NewMySQLDialect(),
			update:   []string{"is_active", "updated_at"},
			expected: "INSERT INTO barrier_status (family_id, is_active, updated_at) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE is_active = VALUES(is_active), updated_at = VALUES(updated_at)",
		},
		{
			name:     "MySQL insert if absent",
			dialect:  NewMySQLDialect(),
			expected: "INSERT INTO barrier_status (family_id, is_active, updated_at) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE family_id = family_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.dialect.UpsertQuery("barrier_status", columns, "family_id", tt.update))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		err     error
		want    bool
	}{
		{"SQLite unique", NewSQLiteDialect(), sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, true},
		{"SQLite primary key", NewSQLiteDialect(), sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, true},
		{"SQLite foreign key", NewSQLiteDialect(), sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, false},
		{"PostgreSQL unique", NewPostgresDialect(), &pq.Error{Code: "23505"}, true},
		{"PostgreSQL not null", NewPostgresDialect(), &pq.Error{Code: "23502"}, false},
		{"MySQL duplicate", NewMySQLDialect(), &mysql.MySQLError{Number: 1062}, true},
		{"MySQL other", NewMySQLDialect(), &mysql.MySQLError{Number: 1452}, false},
		{"plain error", NewSQLiteDialect(), errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.IsUniqueViolation(tt.err))
		})
	}
}

func TestDSN(t *testing.T) {
	dsn, err := NewSQLiteDialect().DSN(DialectConfig{Path: "data.db"})
	assert.NoError(t, err)
	assert.Contains(t, dsn, "data.db?")
	assert.Contains(t, dsn, "_foreign_keys=on")

	dsn, err = NewMySQLDialect().DSN(DialectConfig{URL: "user:pw@tcp(localhost:3306)/studyguard"})
	assert.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")

	_, err = NewMySQLDialect().DSN(DialectConfig{URL: "not a dsn"})
	assert.Error(t, err)
}
