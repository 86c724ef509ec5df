// Package mimetable holds the default extension-to-content-type table and
// lets a host replace or extend it.
package mimetable

import (
	"strings"
	"sync"
)

// Table maps lowercased file extensions (without the leading dot) to
// content-type strings.
type Table struct {
	mu      sync.RWMutex
	entries map[string]string
}

// Default returns a Table pre-populated with a common set of extensions.
func Default() *Table {
	t := &Table{entries: make(map[string]string, len(defaultEntries))}
	for ext, ct := range defaultEntries {
		t.entries[ext] = ct
	}
	return t
}

// Lookup returns the content-type registered for ext (case-insensitive,
// leading-dot tolerant), or "" if unknown.
func (t *Table) Lookup(ext string) string {
	key := strings.ToLower(strings.TrimPrefix(ext, "."))
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entries[key]
}

// Register adds or replaces the content-type for ext.
func (t *Table) Register(ext, contentType string) {
	key := strings.ToLower(strings.TrimPrefix(ext, "."))
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[key] = contentType
}

var defaultEntries = map[string]string{
	"html": "text/html; charset=utf-8",
	"htm":  "text/html; charset=utf-8",
	"css":  "text/css; charset=utf-8",
	"js":   "application/javascript; charset=utf-8",
	"json": "application/json; charset=utf-8",
	"txt":  "text/plain; charset=utf-8",
	"xml":  "application/xml; charset=utf-8",

	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"webp": "image/webp",
	"ico":  "image/x-icon",

	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"mp4":  "video/mp4",
	"webm": "video/webm",

	"zip": "application/zip",
	"tar": "application/x-tar",
	"gz":  "application/gzip",
	"pdf": "application/pdf",
}
