package model_test

import (
	"sync"
	"testing"

	"github.com/kasuganosora/tradeboard/model"
	"github.com/kasuganosora/tradeboard/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm/schema"
)

func TestAutoMigrate_InsertAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)

	rec := &model.ExportAudit{
		TraceID:    "trace-001",
		SessionID:  "sess-1",
		Entries:    3,
		Pruned:     1,
		PrunedKeys: datatypes.JSON(`["gone"]`),
	}
	require.NoError(t, db.Create(rec).Error)
	assert.Greater(t, rec.ID, int64(0))

	var found model.ExportAudit
	require.NoError(t, db.First(&found, rec.ID).Error)
	assert.Equal(t, "sess-1", found.SessionID)
	assert.Equal(t, 3, found.Entries)
	assert.JSONEq(t, `["gone"]`, string(found.PrunedKeys))
	assert.False(t, found.CreatedAt.IsZero())
}

func TestExportAudit_ColumnSizes(t *testing.T) {
	sch, err := schema.Parse(&model.ExportAudit{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	want := map[string]int{
		"TraceID":   model.IDSize,
		"SessionID": model.IDSize,
		"Generated": model.GeneratedSize,
		"IP":        model.IPSize,
	}
	for name, size := range want {
		f := sch.LookUpField(name)
		require.NotNil(t, f, name)
		assert.Equal(t, size, f.Size, name)
	}
}
