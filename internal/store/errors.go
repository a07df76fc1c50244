package store

import "errors"

// Sentinel errors for structural store operations. Out-of-scope reads are not
// errors; they return nil, false or empty results.
var (
	// ErrNodeNotFound is returned when an edge endpoint or referenced node does not exist.
	ErrNodeNotFound = errors.New("node not found")

	// ErrEdgeNotFound is returned when an edge id does not exist or has been removed.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrSelfLoop is returned when asked for an edge from a node to itself.
	ErrSelfLoop = errors.New("edge source equals target")

	// ErrGameNotFound is returned for unknown game ids.
	ErrGameNotFound = errors.New("game not found")

	// ErrBookNotFound is returned for unknown book ids.
	ErrBookNotFound = errors.New("book not found")

	// ErrDiscontinuousGame is returned when an appended edge does not start where
	// the game currently ends.
	ErrDiscontinuousGame = errors.New("edge does not continue the game")

	// ErrGameFullyRecorded is returned when appending to a game marked fully recorded.
	ErrGameFullyRecorded = errors.New("game is fully recorded")
)
