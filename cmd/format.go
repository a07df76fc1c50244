package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"xqbook/navigator/internal/store"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncState(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Find a safe UTF-8 boundary
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func count(n int) string { return humanize.Comma(int64(n)) }

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return count(n) + " " + word + "s"
}

func formatCounts(c store.ResultCounts) string {
	return fmt.Sprintf("%s games: +%d =%d -%d (%d unfinished, %d unknown)",
		count(c.Total()), c.RedWin, c.Draw, c.BlackWin, c.Unfinished, c.Unknown)
}

func bar(share float64, width int) string {
	n := min(max(int(share*float64(width)+0.5), 0), width)
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}

func formatPath(p []store.NodeID) string {
	parts := make([]string, len(p))
	for i, id := range p {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, " → ")
}
