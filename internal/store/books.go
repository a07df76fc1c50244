package store

import (
	"cmp"
	"fmt"
	"slices"
)

// AddBook stores a book, assigning a fresh id when b.ID is empty.
func (s *Store) AddBook(b *Book) BookID {
	if b.ID == "" {
		b.ID = NewBookID()
	}
	s.books[b.ID] = b
	s.touch()
	return b.ID
}

// UpdateBook replaces a stored book.
func (s *Store) UpdateBook(b *Book) error {
	if _, ok := s.books[b.ID]; !ok {
		return fmt.Errorf("update book %s: %w", b.ID, ErrBookNotFound)
	}
	s.books[b.ID] = b
	s.touch()
	return nil
}

// Book returns the live book for id.
func (s *Store) Book(id BookID) (*Book, bool) {
	b, ok := s.books[id]
	return b, ok
}

// Books returns every book ordered by name, then id.
func (s *Store) Books() []*Book {
	out := make([]*Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, b)
	}
	sortBooks(out)
	return out
}

func sortBooks(books []*Book) {
	slices.SortFunc(books, func(a, b *Book) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// AddGameToBook files a game under a book. Adding twice is a no-op.
func (s *Store) AddGameToBook(book BookID, game GameID) error {
	b, ok := s.books[book]
	if !ok {
		return fmt.Errorf("add game to book %s: %w", book, ErrBookNotFound)
	}
	if _, ok := s.games[game]; !ok {
		return fmt.Errorf("add game %s to book: %w", game, ErrGameNotFound)
	}
	if slices.Contains(b.Games, game) {
		return nil
	}
	b.Games = append(b.Games, game)
	s.touch()
	return nil
}

// AddChildBook nests child under parent. Cycles are allowed.
func (s *Store) AddChildBook(parent, child BookID) error {
	p, ok := s.books[parent]
	if !ok {
		return fmt.Errorf("add child to book %s: %w", parent, ErrBookNotFound)
	}
	if _, ok := s.books[child]; !ok {
		return fmt.Errorf("add child book %s: %w", child, ErrBookNotFound)
	}
	if slices.Contains(p.Children, child) {
		return nil
	}
	p.Children = append(p.Children, child)
	s.touch()
	return nil
}

// DescendantBooks returns id and every book reachable through child links, each once,
// in depth-first order. Cycles terminate on the visited set.
func (s *Store) DescendantBooks(id BookID) []BookID {
	var out []BookID
	visited := make(map[BookID]bool)
	s.walkBooks(id, visited, func(b *Book) { out = append(out, b.ID) })
	return out
}

// DescendantGames returns the games of id and all its descendant books, each once.
func (s *Store) DescendantGames(id BookID) []GameID {
	var out []GameID
	seen := make(map[GameID]bool)
	visited := make(map[BookID]bool)
	s.walkBooks(id, visited, func(b *Book) {
		for _, g := range b.Games {
			if seen[g] {
				continue
			}
			if _, ok := s.games[g]; !ok {
				continue
			}
			seen[g] = true
			out = append(out, g)
		}
	})
	return out
}

func (s *Store) walkBooks(id BookID, visited map[BookID]bool, fn func(*Book)) {
	if visited[id] {
		return
	}
	b, ok := s.books[id]
	if !ok {
		return
	}
	visited[id] = true
	fn(b)
	for _, c := range b.Children {
		s.walkBooks(c, visited, fn)
	}
}

// RootBooks returns books that no other book contains. Books that are only reachable
// through cycles are promoted to roots in id order so that every book appears
// under some root.
func (s *Store) RootBooks() []*Book {
	contained := make(map[BookID]bool)
	for _, b := range s.books {
		for _, c := range b.Children {
			if c != b.ID {
				contained[c] = true
			}
		}
	}
	var roots []*Book
	reached := make(map[BookID]bool)
	for _, b := range s.books {
		if !contained[b.ID] {
			roots = append(roots, b)
		}
	}
	sortBooks(roots)
	for _, r := range roots {
		s.walkBooks(r.ID, reached, func(*Book) {})
	}

	rest := make([]BookID, 0)
	for id := range s.books {
		if !reached[id] {
			rest = append(rest, id)
		}
	}
	slices.Sort(rest)
	for _, id := range rest {
		if reached[id] {
			continue
		}
		roots = append(roots, s.books[id])
		s.walkBooks(id, reached, func(*Book) {})
	}
	return roots
}

// DeleteBook deletes a book, every descendant book and all of their games.
// References to deleted books and games are stripped from the surviving books.
func (s *Store) DeleteBook(id BookID) error {
	if _, ok := s.books[id]; !ok {
		return fmt.Errorf("delete book %s: %w", id, ErrBookNotFound)
	}
	doomedGames := make(map[GameID]bool)
	for _, g := range s.DescendantGames(id) {
		doomedGames[g] = true
	}
	doomedBooks := make(map[BookID]bool)
	for _, b := range s.DescendantBooks(id) {
		doomedBooks[b] = true
	}

	for g := range doomedGames {
		delete(s.games, g)
	}
	for b := range doomedBooks {
		delete(s.books, b)
	}
	for _, b := range s.books {
		b.Games = slices.DeleteFunc(b.Games, func(g GameID) bool { return doomedGames[g] })
		b.Children = slices.DeleteFunc(b.Children, func(c BookID) bool { return doomedBooks[c] })
	}
	s.logger.Debug("book deleted", "book", id, "books", len(doomedBooks), "games", len(doomedGames))
	s.touch()
	return nil
}
