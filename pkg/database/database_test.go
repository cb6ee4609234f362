package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestConnectSQLiteAndAutoMigrate(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := Connect(Options{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)

	require.NoError(t, Migrate(db, "sqlite", true, &widget{}))
	assert.True(t, db.Migrator().HasTable(&widget{}))
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect(Options{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
