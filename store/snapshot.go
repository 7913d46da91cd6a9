// Package store holds the immutable inventory and price-table snapshot the
// HTTP layer reads from.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/kasuganosora/tradeboard/cache"
	"github.com/kasuganosora/tradeboard/catalog"
	"github.com/kasuganosora/tradeboard/pricing"
	"github.com/kasuganosora/tradeboard/source"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SnapshotChannel is the pub/sub channel a reload announces itself on.
const SnapshotChannel = "snapshot"

// ErrNotLoaded is returned by Current before the first successful load.
var ErrNotLoaded = errors.New("store: no snapshot loaded")

// Snapshot is one consistent view of the inventory and its price table.
// Nothing in a Snapshot is modified after it has been published.
type Snapshot struct {
	Items     []catalog.Item
	IDs       []string // StableID of Items[i]
	Prices    pricing.Table
	Generated string
	ItemCount int
	LoadedAt  time.Time
	Skipped   []string // price keys dropped for having no usable price

	pos map[string]int
}

// Find returns the first item whose stable id is id.
func (s *Snapshot) Find(id string) (*catalog.Item, bool) {
	i, ok := s.pos[id]
	if !ok {
		return nil, false
	}
	return &s.Items[i], true
}

// Info is the JSON summary of a snapshot.
type Info struct {
	Generated    string    `json:"generated"`
	ItemCount    int       `json:"item_count"`
	Items        int       `json:"items"`
	PriceEntries int       `json:"price_entries"`
	Skipped      int       `json:"skipped"`
	LoadedAt     time.Time `json:"loaded_at"`
}

// Info summarises s.
func (s *Snapshot) Info() Info {
	return Info{
		Generated:    s.Generated,
		ItemCount:    s.ItemCount,
		Items:        len(s.Items),
		PriceEntries: len(s.Prices),
		Skipped:      len(s.Skipped),
		LoadedAt:     s.LoadedAt,
	}
}

// Config locates the input documents.
type Config struct {
	Inventory      string
	Prices         string
	FetchTimeout   time.Duration
	LegacyIDLookup bool
}

// Store loads snapshots and swaps them in atomically.
type Store struct {
	cfg    Config
	client *http.Client
	ps     cache.PubSub
	logger *zap.Logger
	cur    atomic.Pointer[Snapshot]
	now    func() time.Time
}

// New creates a Store. ps may be nil when nobody listens for reloads.
func New(cfg Config, ps cache.PubSub, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		ps:     ps,
		logger: logger,
		now:    time.Now,
	}
}

// Current returns the live snapshot.
func (s *Store) Current() (*Snapshot, error) {
	snap := s.cur.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Load fetches both documents and publishes the resulting snapshot. On
// failure the previous snapshot, if any, stays live.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	var invData, priceData []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := source.Fetch(gctx, s.client, s.cfg.Inventory)
		invData = b
		return err
	})
	g.Go(func() error {
		b, err := source.Fetch(gctx, s.client, s.cfg.Prices)
		priceData = b
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap, err := Build(invData, priceData, s.cfg.LegacyIDLookup)
	if err != nil {
		return nil, err
	}
	snap.LoadedAt = s.now().UTC()
	s.cur.Store(snap)

	s.logger.Info("snapshot loaded",
		zap.String("generated", snap.Generated),
		zap.Int("items", len(snap.Items)),
		zap.Int("price_entries", len(snap.Prices)),
		zap.Strings("skipped", snap.Skipped),
	)
	s.announce(ctx, snap)
	return snap, nil
}

// Reload is Load for background callers: failures are logged and the
// previous snapshot keeps serving.
func (s *Store) Reload(ctx context.Context) error {
	if _, err := s.Load(ctx); err != nil {
		s.logger.Error("snapshot reload failed, keeping previous snapshot", zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) announce(ctx context.Context, snap *Snapshot) {
	if s.ps == nil {
		return
	}
	payload, _ := json.Marshal(snap.Info())
	if err := s.ps.Publish(ctx, SnapshotChannel, string(payload)); err != nil {
		s.logger.Warn("snapshot announce failed", zap.Error(err))
	}
}

// Build decodes the two documents into a Snapshot.
func Build(inventory, prices []byte, legacyIDLookup bool) (*Snapshot, error) {
	inv, err := catalog.DecodeInventory(inventory)
	if err != nil {
		return nil, fmt.Errorf("store: inventory: %w", err)
	}
	table, skipped, err := pricing.DecodeTable(prices)
	if err != nil {
		return nil, fmt.Errorf("store: prices: %w", err)
	}
	if legacyIDLookup {
		table = pricing.RekeyLegacy(table, inv.Items)
	}
	ids := catalog.StableIDs(inv.Items)
	pos := make(map[string]int, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		pos[ids[i]] = i
	}
	return &Snapshot{
		Items:     inv.Items,
		IDs:       ids,
		Prices:    table,
		Generated: inv.Generated.String(),
		ItemCount: inv.ItemCount,
		Skipped:   skipped,
		pos:       pos,
	}, nil
}
