package engine

import (
	"strings"

	"github.com/hhton/newscascade/internal/types"
)

// titleKeyLength is how many leading runes of a title identify a story.
const titleKeyLength = 50

// Deduplicator drops records whose title prefix or link was already kept.
// The first occurrence wins.
type Deduplicator struct {
	titles map[string]struct{}
	links  map[string]struct{}
}

// NewDeduplicator creates an empty Deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		titles: make(map[string]struct{}),
		links:  make(map[string]struct{}),
	}
}

// Keep reports whether rec is new and, if so, remembers it.
func (d *Deduplicator) Keep(rec types.NewsRecord) bool {
	title := titleKey(rec.Title)
	if _, ok := d.titles[title]; ok {
		return false
	}
	if _, ok := d.links[rec.Link]; ok {
		return false
	}
	d.titles[title] = struct{}{}
	d.links[rec.Link] = struct{}{}
	return true
}

// Dedupe filters records in order and returns the survivors and the number dropped.
func Dedupe(records []types.NewsRecord) ([]types.NewsRecord, int) {
	d := NewDeduplicator()
	unique := make([]types.NewsRecord, 0, len(records))
	for _, rec := range records {
		if d.Keep(rec) {
			unique = append(unique, rec)
		}
	}
	return unique, len(records) - len(unique)
}

func titleKey(title string) string {
	key := []rune(strings.ToLower(strings.TrimSpace(title)))
	if len(key) > titleKeyLength {
		key = key[:titleKeyLength]
	}
	return string(key)
}
