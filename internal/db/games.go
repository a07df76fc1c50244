package db

import (
	"context"
	"fmt"

	"xqbook/navigator/internal/store"
)

// scanGame scans a row into a Game without its edge list.
func scanGame(s scanner) (store.Game, error) {
	var g store.Game
	err := s.Scan(
		&g.ID, &g.Name, &g.Start, &g.RedPlayer, &g.BlackPlayer,
		&g.RedIsUser, &g.BlackIsUser, &g.Date, &g.Event, &g.Result,
		&g.FullyRecorded,
	)
	return g, err
}

type seqRef[T any] struct {
	owner string
	ref   T
}

func loadGames(ctx context.Context, q queryer) ([]store.Game, error) {
	games, err := collect(ctx, q, scanGame, `
		SELECT id, name, start_node, red_player, black_player,
		       red_is_user, black_is_user, date, event, result, fully_recorded
		FROM games ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("loading games: %w", err)
	}
	refs, err := collect(ctx, q, func(s scanner) (seqRef[store.EdgeID], error) {
		var r seqRef[store.EdgeID]
		err := s.Scan(&r.owner, &r.ref)
		return r, err
	}, `SELECT game_id, edge_id FROM game_edges ORDER BY game_id, seq`)
	if err != nil {
		return nil, fmt.Errorf("loading game edges: %w", err)
	}
	byID := make(map[store.GameID]int, len(games))
	for i := range games {
		byID[games[i].ID] = i
	}
	for _, r := range refs {
		if i, ok := byID[store.GameID(r.owner)]; ok {
			games[i].Edges = append(games[i].Edges, r.ref)
		}
	}
	return games, nil
}

func saveGames(ctx context.Context, q queryer, games []store.Game) error {
	for _, g := range games {
		_, err := q.ExecContext(ctx, `
			INSERT INTO games (id, name, start_node, red_player, black_player,
			                   red_is_user, black_is_user, date, event, result, fully_recorded)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			g.ID, g.Name, g.Start, g.RedPlayer, g.BlackPlayer,
			boolInt(g.RedIsUser), boolInt(g.BlackIsUser), g.Date, g.Event, int(g.Result),
			boolInt(g.FullyRecorded),
		)
		if err != nil {
			return fmt.Errorf("inserting game %s: %w", g.ID, err)
		}
		for seq, e := range g.Edges {
			if _, err := q.ExecContext(ctx,
				`INSERT INTO game_edges (game_id, seq, edge_id) VALUES (?, ?, ?)`, g.ID, seq, e); err != nil {
				return fmt.Errorf("inserting game %s edge %d: %w", g.ID, seq, err)
			}
		}
	}
	return nil
}

func loadBooks(ctx context.Context, q queryer) ([]store.Book, error) {
	books, err := collect(ctx, q, func(s scanner) (store.Book, error) {
		var b store.Book
		err := s.Scan(&b.ID, &b.Name)
		return b, err
	}, `SELECT id, name FROM books ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("loading books: %w", err)
	}
	byID := make(map[store.BookID]int, len(books))
	for i := range books {
		byID[books[i].ID] = i
	}

	scanRef := func(s scanner) (seqRef[string], error) {
		var r seqRef[string]
		err := s.Scan(&r.owner, &r.ref)
		return r, err
	}
	games, err := collect(ctx, q, scanRef, `SELECT book_id, game_id FROM book_games ORDER BY book_id, seq`)
	if err != nil {
		return nil, fmt.Errorf("loading book games: %w", err)
	}
	for _, r := range games {
		if i, ok := byID[store.BookID(r.owner)]; ok {
			books[i].Games = append(books[i].Games, store.GameID(r.ref))
		}
	}
	children, err := collect(ctx, q, scanRef, `SELECT book_id, child_id FROM book_children ORDER BY book_id, seq`)
	if err != nil {
		return nil, fmt.Errorf("loading book children: %w", err)
	}
	for _, r := range children {
		if i, ok := byID[store.BookID(r.owner)]; ok {
			books[i].Children = append(books[i].Children, store.BookID(r.ref))
		}
	}
	return books, nil
}

// saveBooks writes books after their games. References to games or books missing
// from the data set are dropped, matching how the store skips them.
func saveBooks(ctx context.Context, q queryer, books []store.Book, games []store.Game) error {
	haveGame := make(map[store.GameID]bool, len(games))
	for _, g := range games {
		haveGame[g.ID] = true
	}
	haveBook := make(map[store.BookID]bool, len(books))
	for _, b := range books {
		haveBook[b.ID] = true
		if _, err := q.ExecContext(ctx, `INSERT INTO books (id, name) VALUES (?, ?)`, b.ID, b.Name); err != nil {
			return fmt.Errorf("inserting book %s: %w", b.ID, err)
		}
	}
	for _, b := range books {
		seq := 0
		for _, g := range b.Games {
			if !haveGame[g] {
				continue
			}
			if _, err := q.ExecContext(ctx,
				`INSERT INTO book_games (book_id, seq, game_id) VALUES (?, ?, ?)`, b.ID, seq, g); err != nil {
				return fmt.Errorf("inserting book %s game: %w", b.ID, err)
			}
			seq++
		}
		seq = 0
		for _, c := range b.Children {
			if !haveBook[c] {
				continue
			}
			if _, err := q.ExecContext(ctx,
				`INSERT INTO book_children (book_id, seq, child_id) VALUES (?, ?, ?)`, b.ID, seq, c); err != nil {
				return fmt.Errorf("inserting book %s child: %w", b.ID, err)
			}
			seq++
		}
	}
	return nil
}
