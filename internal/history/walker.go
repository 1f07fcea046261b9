// Package history produces the sequence of candidate baseline commits: the
// ancestors of the current commit, newest first. The ancestry is fetched once
// per run and handed out through cheap restartable cursors, one per artifact
// template.
package history

import (
	"context"
	"fmt"
)

// Lister provides commit ancestry from the hosting service.
type Lister interface {
	ListAncestors(ctx context.Context, hash string, limit int) ([]string, error)
}

// Walker lazily loads the ancestors of a single commit. The underlying
// listing excludes the commit itself, so every candidate a cursor yields is
// strictly older than the starting hash.
type Walker struct {
	lister Lister
	hash   string
	depth  int

	loaded bool
	hashes []string
}

// NewWalker creates a Walker over the ancestors of hash, searching at most
// depth commits back.
func NewWalker(l Lister, hash string, depth int) *Walker {
	return &Walker{lister: l, hash: hash, depth: depth}
}

// Cursor returns a fresh cursor over the ancestor sequence, fetching the
// ancestry on first use.
func (w *Walker) Cursor(ctx context.Context) (*Cursor, error) {
	if !w.loaded {
		hashes, err := w.lister.ListAncestors(ctx, w.hash, w.depth)
		if err != nil {
			return nil, fmt.Errorf("list ancestors of %s: %w", w.hash, err)
		}
		w.hashes = hashes
		w.loaded = true
	}
	return NewCursor(w.hashes), nil
}

// Cursor iterates commit hashes newest first. The zero value is an empty
// cursor.
type Cursor struct {
	hashes []string
	next   int
}

// NewCursor creates a cursor over a fixed hash sequence. Useful for tests and
// for replaying a known ancestry.
func NewCursor(hashes []string) *Cursor {
	return &Cursor{hashes: hashes}
}

// Next returns the next candidate hash, or ok=false when the sequence is
// exhausted.
func (c *Cursor) Next() (string, bool) {
	if c.next >= len(c.hashes) {
		return "", false
	}
	hash := c.hashes[c.next]
	c.next++
	return hash, true
}
