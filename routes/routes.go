// Package routes declares the static association between URL paths of the
// single-page client and the page each path shows.
package routes

import (
	"net/url"
	"strings"
	"sync"

	"github.com/jmcleod/stockroom/internal/util"
)

// Page identifies a page of the client.
type Page string

// Entry is one path → page association.
type Entry struct {
	Path string `json:"path"`
	Page Page   `json:"page"`
}

// Table maps literal paths to pages. The zero value is not usable; create one
// with New or Default.
type Table struct {
	mu      sync.RWMutex
	entries []Entry
	index   map[string]int
}

// New returns a table holding entries in the given order.
func New(entries ...Entry) *Table {
	t := &Table{index: make(map[string]int)}
	for _, e := range entries {
		t.Register(e.Path, e.Page)
	}
	return t
}

// Register binds path to page. Registering a path that is already present
// replaces its page and keeps its original position.
func (t *Table) Register(path string, page Page) {
	key := normalize(path)
	t.mu.Lock()
	defer t.mu.Unlock()
	if i, ok := t.index[key]; ok {
		t.entries[i].Page = page
		return
	}
	t.index[key] = len(t.entries)
	t.entries = append(t.entries, Entry{Path: path, Page: page})
}

// Resolve returns the page registered for path. Query strings, fragments and
// a trailing slash are ignored and letters match case-insensitively.
func (t *Table) Resolve(path string) (Page, bool) {
	key := normalize(path)
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.index[key]
	if !ok {
		return "", false
	}
	return t.entries[i].Page, true
}

// Entries returns a copy of the table in registration order.
func (t *Table) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len reports the number of registered paths.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

func normalize(path string) string {
	if u, err := url.Parse(path); err == nil {
		path = u.Path
	} else if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = util.NormalizeNFC(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return strings.ToLower(path)
}
