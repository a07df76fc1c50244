package store

import (
	"slices"
	"strconv"
	"strings"
)

func pathKey(path []NodeID) string {
	var b strings.Builder
	for i, id := range path {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(id)))
	}
	return b.String()
}

// SetBookmark names a path, replacing any existing name for the same path.
func (s *Store) SetBookmark(path []NodeID, name string) {
	if len(path) == 0 {
		return
	}
	s.bookmarks[pathKey(path)] = &Bookmark{Path: slices.Clone(path), Name: name}
	s.touch()
}

// RemoveBookmark deletes the bookmark for exactly this path.
func (s *Store) RemoveBookmark(path []NodeID) bool {
	key := pathKey(path)
	if _, ok := s.bookmarks[key]; !ok {
		return false
	}
	delete(s.bookmarks, key)
	s.touch()
	return true
}

// Bookmark returns the bookmark for exactly this path.
func (s *Store) Bookmark(path []NodeID) (*Bookmark, bool) {
	b, ok := s.bookmarks[pathKey(path)]
	return b, ok
}

// Bookmarks returns all bookmarks ordered by name, then path.
func (s *Store) Bookmarks() []*Bookmark {
	out := make([]*Bookmark, 0, len(s.bookmarks))
	for _, b := range s.bookmarks {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b *Bookmark) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return slices.Compare(a.Path, b.Path)
	})
	return out
}
