package setstore

import (
	"context"
	"regexp"
	"strings"
)

var lineBreak = regexp.MustCompile(`\r\n|\r|\n`)

// Parses a newline-delimited configuration value (sensitive words, IP or email blacklist) in to a list of entries.
//
// Lines are trimmed, empty lines dropped, and duplicates removed keeping the first occurrence.
func ParseLines(raw string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, line := range lineBreak.Split(raw, -1) {
		v := strings.TrimSpace(line)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Ordered, de-duplicated list of exact-match (case-sensitive) string entries.
type List struct {
	items []string
	index map[string]bool
}

func NewList(raw string) *List {
	items := ParseLines(raw)
	index := make(map[string]bool, len(items))
	for _, v := range items {
		index[v] = true
	}
	return &List{items: items, index: index}
}

func (l *List) Contains(val string) bool {
	return l.index[val]
}

// Appends the value if not already present. Returns false (and does nothing) if it was present.
func (l *List) Add(val string) bool {
	if l.index[val] {
		return false
	}
	l.index[val] = true
	l.items = append(l.items, val)
	return true
}

func (l *List) Items() []string {
	return l.items
}

func (l *List) Len() int {
	return len(l.items)
}

// Serializes back to the newline-joined configuration format.
func (l *List) String() string {
	return strings.Join(l.items, "\n")
}

type SetStore interface {
	InSet(ctx context.Context, name, val string) (bool, error)
}

// Not race-safe for writes; build one per evaluation and only read from it.
type MemSetStore struct {
	Sets map[string]*List
}

func NewMemSetStore() MemSetStore {
	return MemSetStore{
		Sets: make(map[string]*List),
	}
}

func (s MemSetStore) InSet(ctx context.Context, name, val string) (bool, error) {
	set, ok := s.Sets[name]
	if !ok {
		// NOTE: returns false when entire set isn't found
		return false, nil
	}
	return set.Contains(val), nil
}

// Parses and registers a newline-delimited list under the given name.
func (s MemSetStore) LoadRaw(name, raw string) {
	s.Sets[name] = NewList(raw)
}

func (s MemSetStore) Items(name string) []string {
	set, ok := s.Sets[name]
	if !ok {
		return []string{}
	}
	return set.Items()
}
