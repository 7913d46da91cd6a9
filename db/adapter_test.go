package db_test

import (
	"path/filepath"
	"testing"

	"github.com/kasuganosora/tradeboard/config"
	dbadapter "github.com/kasuganosora/tradeboard/db"
	"github.com/kasuganosora/tradeboard/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	db, err := dbadapter.Open(config.DatabaseConfig{})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))
	assert.True(t, db.Migrator().HasTable(&model.ExportAudit{}))
}

func TestOpen_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.db")
	db, err := dbadapter.Open(config.DatabaseConfig{Mode: dbadapter.ModeSQLite, SQLitePath: path})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))
	require.NoError(t, db.Create(&model.ExportAudit{TraceID: "t"}).Error)
	assert.FileExists(t, path)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestOpen_Errors(t *testing.T) {
	_, err := dbadapter.Open(config.DatabaseConfig{Mode: "oracle"})
	assert.Error(t, err)
	_, err = dbadapter.Open(config.DatabaseConfig{Mode: dbadapter.ModeMySQL})
	assert.Error(t, err, "mysql needs a dsn")
}
