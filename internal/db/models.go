package db

import (
	"fmt"
	"strconv"
	"strings"

	"xqbook/navigator/internal/store"
)

// ErrNoSavedSession means no session was saved under the requested name. Callers
// start a fresh session instead.
var ErrNoSavedSession = fmt.Errorf("no saved session")

// ErrStaleVersion means the data being saved is not newer than what the database holds.
var ErrStaleVersion = fmt.Errorf("stale data version")

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// encodePath renders a bookmark path as comma-separated ids.
func encodePath(path []store.NodeID) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, ",")
}

func decodePath(s string) ([]store.NodeID, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	path := make([]store.NodeID, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("bookmark path %q: %w", s, err)
		}
		path[i] = store.NodeID(n)
	}
	return path, nil
}
