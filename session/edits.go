// Package session keeps each admin session's uncommitted price edits in the
// cache layer.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kasuganosora/tradeboard/cache"
	"github.com/kasuganosora/tradeboard/pricing"
)

// DefaultTTL is how long an idle session's edits are kept.
const DefaultTTL = 12 * time.Hour

// ErrNoSession is returned when an operation is attempted without a session id.
var ErrNoSession = errors.New("session: missing session id")

// Store reads and writes per-session edit sets.
type Store struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewStore creates a Store. A non-positive ttl uses DefaultTTL.
func NewStore(c cache.Cache, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{cache: c, ttl: ttl}
}

func key(sid string) string { return "edits:" + sid }

// Edits returns the session's edit set. An unknown session has none.
func (s *Store) Edits(ctx context.Context, sid string) (pricing.Edits, error) {
	if sid == "" {
		return pricing.Edits{}, nil
	}
	m, err := s.cache.HGetAll(ctx, key(sid))
	if err != nil {
		return nil, fmt.Errorf("session: load edits: %w", err)
	}
	return pricing.Edits(m), nil
}

// Set records the raw text typed for stableID. A blank value clears the
// edit. Every write extends the session's lifetime.
func (s *Store) Set(ctx context.Context, sid, stableID, value string) error {
	if sid == "" {
		return ErrNoSession
	}
	if strings.TrimSpace(value) == "" {
		return s.Delete(ctx, sid, stableID)
	}
	if err := s.cache.HSet(ctx, key(sid), stableID, value); err != nil {
		return fmt.Errorf("session: set edit: %w", err)
	}
	return s.touch(ctx, sid)
}

// Delete removes one edit.
func (s *Store) Delete(ctx context.Context, sid, stableID string) error {
	if sid == "" {
		return ErrNoSession
	}
	if err := s.cache.HDel(ctx, key(sid), stableID); err != nil {
		return fmt.Errorf("session: delete edit: %w", err)
	}
	// The hash may now be gone; a missing key is not an error here.
	if err := s.touch(ctx, sid); err != nil && !cache.IsNotFound(err) {
		return err
	}
	return nil
}

// Clear drops every edit of the session.
func (s *Store) Clear(ctx context.Context, sid string) error {
	if sid == "" {
		return ErrNoSession
	}
	if err := s.cache.Del(ctx, key(sid)); err != nil {
		return fmt.Errorf("session: clear edits: %w", err)
	}
	return nil
}

func (s *Store) touch(ctx context.Context, sid string) error {
	return s.cache.Expire(ctx, key(sid), s.ttl)
}
