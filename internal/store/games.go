package store

import (
	"cmp"
	"fmt"
	"slices"
)

// AddGame stores a game, assigning a fresh id when g.ID is empty. An existing game
// with the same id is replaced.
func (s *Store) AddGame(g *Game) GameID {
	if g.ID == "" {
		g.ID = NewGameID()
	}
	g.invalidate()
	s.games[g.ID] = g
	s.touch()
	return g.ID
}

// UpdateGame replaces a stored game. Callers that edit a *Game in place must pass
// it back here so its lookup caches are invalidated.
func (s *Store) UpdateGame(g *Game) error {
	if _, ok := s.games[g.ID]; !ok {
		return fmt.Errorf("update game %s: %w", g.ID, ErrGameNotFound)
	}
	g.invalidate()
	s.games[g.ID] = g
	s.touch()
	return nil
}

// Game returns the live game for id.
func (s *Store) Game(id GameID) (*Game, bool) {
	g, ok := s.games[id]
	return g, ok
}

// Games returns every game ordered by name, then id.
func (s *Store) Games() []*Game {
	out := make([]*Game, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, g)
	}
	slices.SortFunc(out, func(a, b *Game) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// DeleteGame removes a game and every book reference to it.
func (s *Store) DeleteGame(id GameID) error {
	if _, ok := s.games[id]; !ok {
		return fmt.Errorf("delete game %s: %w", id, ErrGameNotFound)
	}
	delete(s.games, id)
	for _, b := range s.books {
		b.Games = slices.DeleteFunc(b.Games, func(g GameID) bool { return g == id })
	}
	s.touch()
	return nil
}

// AppendGameEdge extends a game by one move. The edge must be live and start at the
// node the game currently ends on. An empty game without a start node adopts the
// edge's source as its start. Fully recorded games are refused.
func (s *Store) AppendGameEdge(id GameID, edge EdgeID) error {
	return s.appendGameEdge(id, edge, false)
}

// AppendGameEdgeInScope is AppendGameEdge for a caller working inside the game's own
// scope, where a fully recorded game may still be extended.
func (s *Store) AppendGameEdgeInScope(id GameID, edge EdgeID) error {
	return s.appendGameEdge(id, edge, true)
}

func (s *Store) appendGameEdge(id GameID, edge EdgeID, inScope bool) error {
	g, ok := s.games[id]
	if !ok {
		return fmt.Errorf("append to game %s: %w", id, ErrGameNotFound)
	}
	if g.FullyRecorded && !inScope {
		return fmt.Errorf("append to game %s: %w", id, ErrGameFullyRecorded)
	}
	e, ok := s.edges[edge]
	if !ok || e.Removed() {
		return fmt.Errorf("append edge %d: %w", edge, ErrEdgeNotFound)
	}
	end := g.LastNode(s)
	switch {
	case end == 0:
		g.Start = e.Source
	case end != e.Source:
		return fmt.Errorf("append edge %d (from %d) after node %d: %w", edge, e.Source, end, ErrDiscontinuousGame)
	}
	g.Edges = append(g.Edges, edge)
	g.invalidate()
	s.touch()
	return nil
}

// TruncateGame keeps only the first n edges of a game.
func (s *Store) TruncateGame(id GameID, n int) error {
	g, ok := s.games[id]
	if !ok {
		return fmt.Errorf("truncate game %s: %w", id, ErrGameNotFound)
	}
	if n < 0 || n >= len(g.Edges) {
		return nil
	}
	g.Edges = g.Edges[:n]
	g.invalidate()
	s.touch()
	return nil
}

// RecordGame adds the game's result to the side's statistics for every position on
// the game's path.
func (s *Store) RecordGame(id GameID, side Side) error {
	g, ok := s.games[id]
	if !ok {
		return fmt.Errorf("record game %s: %w", id, ErrGameNotFound)
	}
	s.Batch(func() {
		for _, n := range g.NodeIDs(s) {
			s.RecordResult(side, n, g.Result)
		}
	})
	return nil
}
