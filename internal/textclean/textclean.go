// Package textclean normalizes raw recognizer output into a single printable line.
package textclean

import "strings"

// Join concatenates detected strings with single spaces, keeping detection order.
func Join(parts []string) string {
	return strings.Join(parts, " ")
}

// Clean drops every rune outside printable ASCII (0x20-0x7E), collapses
// whitespace runs into one space and trims both ends. Clean(Clean(s)) == Clean(s).
func Clean(s string) string {
	printable := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7E {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(printable), " ")
}
