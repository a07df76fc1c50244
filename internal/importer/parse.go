// Package importer reads recorded games from a plain text format and splices them
// into the position graph.
//
// A file holds records separated by a line "---". Each record starts with optional
// header lines "# key: value" (name, red, black, date, event, result, complete)
// followed by one board state per line. Blank lines are ignored.
package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"xqbook/navigator/internal/store"
)

// ErrEmptyRecord is returned for a record with no states.
var ErrEmptyRecord = errors.New("record has no positions")

// Record is one parsed game.
type Record struct {
	Name     string
	Red      string
	Black    string
	Date     string
	Event    string
	Result   store.Result
	Complete bool
	States   []string
	// Line is where the record starts in the input, 1-based.
	Line int
}

// Parse reads every record from r.
func Parse(r io.Reader) ([]Record, error) {
	var (
		records []Record
		cur     *Record
		lineNo  int
	)
	flush := func() {
		if cur != nil && (len(cur.States) > 0 || cur.Name != "") {
			records = append(records, *cur)
		}
		cur = nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == "---" {
			flush()
			continue
		}
		if cur == nil {
			cur = &Record{Line: lineNo, Result: store.Unknown}
		}
		if strings.HasPrefix(line, "#") {
			if len(cur.States) > 0 {
				return nil, fmt.Errorf("line %d: header after positions", lineNo)
			}
			if err := cur.setHeader(strings.TrimSpace(line[1:])); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			continue
		}
		cur.States = append(cur.States, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	flush()
	return records, nil
}

func (r *Record) setHeader(h string) error {
	key, value, ok := strings.Cut(h, ":")
	if !ok {
		return fmt.Errorf("header %q: want key: value", h)
	}
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "name":
		r.Name = value
	case "red":
		r.Red = value
	case "black":
		r.Black = value
	case "date":
		r.Date = value
	case "event":
		r.Event = value
	case "result":
		res, err := store.ParseResult(value)
		if err != nil {
			return err
		}
		r.Result = res
	case "complete":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("complete %q: %w", value, err)
		}
		r.Complete = b
	default:
		// unknown headers are kept out of the graph
	}
	return nil
}
