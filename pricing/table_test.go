package pricing

import (
	"errors"
	"testing"
	"time"

	"github.com/kasuganosora/tradeboard/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTable_MixedFormats(t *testing.T) {
	tbl, skipped, err := DecodeTable([]byte(`{
		"50-attack-25": {"price": 120, "lastUpdate": "2025-03-01 12:00:00"},
		"1234": 75,
		"rfc": {"price": "9.5", "lastUpdate": "2025-03-01T13:00:00+01:00"},
		"unix": {"price": 1, "lastUpdate": 1740830400},
		"nostamp": {"price": 3},
		"junkstamp": {"price": 4, "lastUpdate": "yesterday"},
		"bad": {"price": "n/a"},
		"worse": "cheap",
		"null": null
	}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"bad", "null", "worse"}, skipped)

	assert.Equal(t, Entry{Price: 120, LastUpdate: t0}, tbl["50-attack-25"])
	assert.Equal(t, Entry{Price: 75}, tbl["1234"])
	assert.Equal(t, 9.5, tbl["rfc"].Price)
	assert.True(t, tbl["rfc"].LastUpdate.Equal(t0))
	assert.Equal(t, t0, tbl["unix"].LastUpdate)
	assert.True(t, tbl["nostamp"].LastUpdate.IsZero())
	assert.True(t, tbl["junkstamp"].LastUpdate.IsZero())
}

func TestDecodeTable_RejectsNonObject(t *testing.T) {
	for _, doc := range []string{``, `[]`, `12`} {
		_, _, err := DecodeTable([]byte(doc))
		assert.True(t, errors.Is(err, ErrTableShape), doc)
	}
	_, _, err := DecodeTable([]byte(`{"a": `))
	assert.Error(t, err)
}

func TestTable_EncodeDecodeKeepsSecondResolution(t *testing.T) {
	in := Table{"a": {Price: 1.25, LastUpdate: t0.Add(3 * time.Second)}}
	b, err := in.Encode()
	require.NoError(t, err)
	out, skipped, err := DecodeTable(b)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Equal(t, in, out)
}

func TestTable_EncodeNil(t *testing.T) {
	var tbl Table
	b, err := tbl.Encode()
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(b))
}

func TestRekeyLegacy(t *testing.T) {
	items := []catalog.Item{
		{ID: catalog.Num(1234), DesignID: catalog.Num(50), BonusType: "Attack", BonusValue: catalog.Num(25)},
		{ID: catalog.Num(77), DesignID: catalog.Num(60)},
		{ID: catalog.Num(60), DesignID: catalog.Num(61)},
	}
	in := Table{
		"1234": {Price: 75},
		"77":   {Price: 5},
		"60":   {Price: 6},
		"gone": {Price: 1},
	}
	out := RekeyLegacy(in, items)

	assert.Equal(t, Entry{Price: 75}, out["50-attack-25"])
	assert.NotContains(t, out, "1234")
	// "60" is the raw id of the third item but also the stable id of the
	// second, so it is not treated as legacy. The second item's own legacy
	// entry "77" is dropped because a stable entry already exists.
	assert.Equal(t, Entry{Price: 6}, out["60"])
	assert.NotContains(t, out, "77")
	assert.Contains(t, out, "gone")
	assert.Len(t, in, 4, "input must not be modified")
}
