package tui

import "strings"

// truncate shortens a string to max runes with ellipsis
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// progressBar draws done/all as a bar of width cells
func progressBar(done, all, width int) string {
	if all == 0 || width <= 0 {
		return strings.Repeat("░", width)
	}
	filled := done * width / all
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
