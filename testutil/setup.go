package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kasuganosora/tradeboard/cache"
	dbsqlite "github.com/kasuganosora/tradeboard/db/sqlite"
	"github.com/kasuganosora/tradeboard/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupTestDB creates an in-memory SQLite DB private to the test and runs
// AutoMigrate. It requires no external services.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := dbsqlite.OpenMemory(name)
	require.NoError(t, err, "SetupTestDB: Open")
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SetupTestCache creates LocalCache and LocalPubSub (no Redis required).
func SetupTestCache(t *testing.T) (cache.Cache, cache.PubSub) {
	t.Helper()
	cfg := cache.CacheConfig{} // empty RedisAddr → LocalCache
	c, err := cache.NewCache(cfg)
	require.NoError(t, err, "SetupTestCache: NewCache")
	ps, err := cache.NewPubSub(cfg)
	require.NoError(t, err, "SetupTestCache: NewPubSub")
	return c, ps
}

// NopLogger returns a logger that discards everything.
func NopLogger() *zap.Logger { return zap.NewNop() }

// WriteFile writes body under the test's temp dir and returns the path.
func WriteFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// InventoryJSON is a small envelope-form inventory used across tests.
// Stable ids: "50-attack-25" (embedded price 100), "60-hp-10" (no price),
// "70" (quantity 3, no price).
const InventoryJSON = `{
  "generated": "2025-03-01 12:00:00",
  "item_count": 3,
  "items": [
    {"id": 1, "item_design_id": 50, "name": "Laser", "bonus_type": "Attack", "bonus_value": 25, "rarity": "Epic", "item_sub_type": "EquipmentWeapon", "item_sprite_id": 900, "price": 100},
    {"id": 2, "item_design_id": 60, "name": "Plating", "bonus_type": "Hp", "bonus_value": "10", "item_sub_type": "Equipment Body"},
    {"id": 3, "item_design_id": 70, "name": "Scrap", "quantity": 3}
  ]
}`

// PricesJSON is a price table matching InventoryJSON: a live entry for
// "60-hp-10" and an orphan that is long past retention for 2025-03 exports.
const PricesJSON = `{
  "60-hp-10": {"price": 90, "lastUpdate": "2025-02-28 12:00:00"},
  "gone": {"price": 5, "lastUpdate": "2024-01-01 00:00:00"}
}`
