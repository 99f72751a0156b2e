// Package kv holds the small key/value stores around the notes collection:
// unsaved drafts in memory and user preferences on disk.
package kv

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/aretw0/jotter/pkg/core"
)

// DefaultDraftTTL is how long an untouched draft is kept.
const DefaultDraftTTL = 24 * time.Hour

// Drafts keeps the unsaved input of each session, expiring idle entries.
type Drafts struct {
	cache *cache.Cache
}

// NewDrafts creates a draft store. A non-positive ttl selects DefaultDraftTTL.
func NewDrafts(ttl time.Duration) *Drafts {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &Drafts{
		cache: cache.New(ttl, ttl/2),
	}
}

// Get returns the draft stored under key.
func (d *Drafts) Get(key string) (string, bool) {
	if x, found := d.cache.Get(key); found {
		return x.(string), true
	}
	return "", false
}

// Set stores text under key and restarts its expiry. Empty text removes the draft.
func (d *Drafts) Set(key, text string) {
	if text == "" {
		d.cache.Delete(key)
		return
	}
	d.cache.Set(key, text, cache.DefaultExpiration)
}

// Clear drops the draft stored under key.
func (d *Drafts) Clear(key string) {
	d.cache.Delete(key)
}

// Len returns the number of live drafts.
func (d *Drafts) Len() int {
	return d.cache.ItemCount()
}

var _ core.DraftCache = (*Drafts)(nil)
