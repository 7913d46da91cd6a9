package rest

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/tradeboard/catalog"
	"github.com/kasuganosora/tradeboard/pricing"
	"github.com/kasuganosora/tradeboard/session"
	"github.com/kasuganosora/tradeboard/store"
	"go.uber.org/zap"
)

// CatalogHandler serves the table feed.
type CatalogHandler struct {
	snaps    *store.Store
	sessions *session.Store
	logger   *zap.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(snaps *store.Store, sessions *session.Store, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{snaps: snaps, sessions: sessions, logger: logger}
}

// Row is one table row as rendered by the UI.
type Row struct {
	StableID    string            `json:"stable_id"`
	ID          string            `json:"id"`
	DesignID    string            `json:"design_id"`
	Name        string            `json:"name"`
	Label       string            `json:"label"`
	Quantity    float64           `json:"quantity"`
	Bonus       string            `json:"bonus"`
	SubType     string            `json:"sub_type"`
	Rarity      string            `json:"rarity"`
	RarityClass string            `json:"rarity_class"`
	DetailURL   string            `json:"detail_url"`
	SpriteURL   string            `json:"sprite_url,omitempty"`
	Price       *float64          `json:"price"`
	MarketPrice *float64          `json:"market_price"`
	Edit        *string           `json:"edit,omitempty"`
	Highlight   []catalog.Segment `json:"highlight,omitempty"`
}

var sortColumns = map[string]bool{
	catalog.ColumnName:    true,
	catalog.ColumnBonus:   true,
	catalog.ColumnSubType: true,
	catalog.ColumnPrice:   true,
}

func parseSort(c *gin.Context) (catalog.SortState, bool) {
	key := c.Query("sort")
	if key == "" {
		return catalog.SortState{}, true
	}
	if !sortColumns[key] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sort column"})
		return catalog.SortState{}, false
	}
	dir := catalog.Direction(strings.ToLower(c.DefaultQuery("dir", string(catalog.Asc))))
	if dir != catalog.Asc && dir != catalog.Desc {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sort direction"})
		return catalog.SortState{}, false
	}
	return catalog.SortState{Key: key, Dir: dir}, true
}

// Items returns the filtered, sorted rows with resolved prices. Totals
// always cover the whole inventory.
// GET /api/items?q=&sort=&dir=
func (h *CatalogHandler) Items(c *gin.Context) {
	state, ok := parseSort(c)
	if !ok {
		return
	}
	snap, ok := snapshot(c, h.snaps)
	if !ok {
		return
	}
	edits, ok := sessionEdits(c, h.sessions, h.logger)
	if !ok {
		return
	}

	q := strings.TrimSpace(c.Query("q"))
	mode := modeOf(c)
	res := pricing.Resolver{Edits: edits, Table: snap.Prices}

	idx := catalog.Filter(snap.Items, q)
	prices := make(map[int]*float64, len(idx))
	for _, i := range idx {
		prices[i] = optional(res.Price(snap.IDs[i], &snap.Items[i], mode))
	}

	if state.Key == catalog.ColumnPrice {
		// Rows show resolved prices, so that is what the column sorts on.
		sign := 1
		if state.Dir == catalog.Desc {
			sign = -1
		}
		cell := func(i int) string {
			if p := prices[i]; p != nil {
				return strconv.FormatFloat(*p, 'f', -1, 64)
			}
			return ""
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return catalog.CompareValues(cell(idx[a]), cell(idx[b]))*sign < 0
		})
	} else {
		catalog.Sort(snap.Items, idx, state)
	}

	rows := make([]Row, 0, len(idx))
	for _, i := range idx {
		it := &snap.Items[i]
		row := Row{
			StableID:    snap.IDs[i],
			ID:          it.ID.String(),
			DesignID:    it.DesignID.String(),
			Name:        it.Name,
			Label:       it.Label(),
			Quantity:    it.Qty(),
			Bonus:       it.BonusLabel(),
			SubType:     it.SubTypeLabel(),
			Rarity:      it.Rarity,
			RarityClass: it.RarityClass(),
			DetailURL:   it.DetailURL(),
			Price:       prices[i],
			MarketPrice: optional(it.MarketPrice.Float()),
		}
		if it.SpriteID.Valid {
			row.SpriteURL = it.SpriteURL()
		}
		if mode == pricing.ModeAdmin {
			if raw, ok := edits[snap.IDs[i]]; ok {
				row.Edit = &raw
			}
		}
		if q != "" {
			row.Highlight = catalog.Highlight(it.Label(), q)
		}
		rows = append(rows, row)
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  rows,
		"count":  len(rows),
		"total":  len(snap.Items),
		"sort":   state,
		"mode":   mode.String(),
		"totals": pricing.AggregateIDs(snap.Items, snap.IDs, edits, snap.Prices),
	})
}

// Summary returns the aggregate totals of the whole inventory.
// GET /api/summary
func (h *CatalogHandler) Summary(c *gin.Context) {
	snap, ok := snapshot(c, h.snaps)
	if !ok {
		return
	}
	edits, ok := sessionEdits(c, h.sessions, h.logger)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":     len(snap.Items),
		"mode":      modeOf(c).String(),
		"edits":     len(edits),
		"totals":    pricing.AggregateIDs(snap.Items, snap.IDs, edits, snap.Prices),
		"generated": snap.Generated,
	})
}

// Snapshot returns metadata about the loaded documents.
// GET /api/snapshot
func (h *CatalogHandler) Snapshot(c *gin.Context) {
	snap, ok := snapshot(c, h.snaps)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snap.Info())
}

// NextSort reports the sort state a header click on column leads to, so
// clients share one tri-state cycle.
// GET /api/items/sort?sort=&dir=&column=
func (h *CatalogHandler) NextSort(c *gin.Context) {
	cur, ok := parseSort(c)
	if !ok {
		return
	}
	col := c.Query("column")
	if !sortColumns[col] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sort column"})
		return
	}
	c.JSON(http.StatusOK, catalog.NextSort(cur, col))
}
