// Package util provides small string helpers shared by the startup parser,
// the feed client and the menu.
package util

import (
	"strconv"
	"strings"
)

// ParseIDList splits s on sep and returns the integer IDs in order.
// Blank or non-numeric entries and repeated IDs are skipped.
func ParseIDList(s, sep string) []int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	ids := make([]int, 0, len(parts))
	seen := make(map[int]struct{}, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// JoinIDs renders ids separated by sep.
func JoinIDs(ids []int, sep string) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}

// FindShortcut returns the character underlined with <u>...</u> in a menu
// label, upper-cased. ok is false when the label has no underline.
func FindShortcut(label string) (r rune, ok bool) {
	start := strings.Index(label, "<u>")
	if start < 0 {
		return 0, false
	}
	rest := label[start+len("<u>"):]
	end := strings.Index(rest, "</u>")
	if end <= 0 {
		return 0, false
	}
	for _, c := range strings.ToUpper(rest[:end]) {
		return c, true
	}
	return 0, false
}

// StripTags removes <...> markup from a label.
func StripTags(s string) string {
	var b strings.Builder
	depth := 0
	for _, c := range s {
		switch {
		case c == '<':
			depth++
		case c == '>' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(c)
		}
	}
	return b.String()
}
