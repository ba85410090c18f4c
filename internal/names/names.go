// Package names holds the pure text transforms applied to submitter names
// before public display.
package names

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Honorific prefixes stripped from names, in match order. At most one is
// removed, and only from the very start of the trimmed input.
var prefixes = []string{
	"sister", "sis.", "sis",
	"brother", "bro.", "bro",
	"pastor", "pst.", "pst",
	"doctor", "dr.", "dr",
	"reverend", "rev.", "rev",
	"minister", "min.", "min",
	"elder", "eld.", "eld",
	"deacon", "dcn.", "dcn",
	"deaconess", "dcns.", "dcns",
	"apostle", "prophet", "evangelist", "bishop",
	"mrs.", "mrs",
	"mr.", "mr",
	"ms.", "ms",
	"miss",
}

// Clean trims the name and strips at most one leading honorific prefix
// (case-insensitive, must be followed by whitespace). Input with no
// recognized prefix comes back trimmed but otherwise unchanged.
func Clean(name string) string {
	cleaned := strings.TrimSpace(name)
	if cleaned == "" {
		return ""
	}
	for _, p := range prefixes {
		if len(cleaned) <= len(p) {
			continue
		}
		if !strings.EqualFold(cleaned[:len(p)], p) {
			continue
		}
		r, _ := utf8.DecodeRuneInString(cleaned[len(p):])
		if unicode.IsSpace(r) {
			cleaned = cleaned[len(p):]
			break
		}
	}
	return strings.TrimSpace(cleaned)
}

// FormatDisplay renders "First L." for public display: first token plus the
// upper-cased initial of the last token. Single-token names are returned
// verbatim, middle tokens are discarded.
func FormatDisplay(name string) string {
	parts := strings.Fields(Clean(name))
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}
	first := parts[0]
	last := parts[len(parts)-1]
	initial, _ := utf8.DecodeRuneInString(last)
	return first + " " + string(unicode.ToUpper(initial)) + "."
}

// FormatForCopy is FormatDisplay with the first token forced to Title-case,
// so all-caps or all-lowercase submissions paste cleanly.
func FormatForCopy(name string) string {
	display := FormatDisplay(name)
	if display == "" {
		return ""
	}
	parts := strings.Split(display, " ")
	parts[0] = titleCase(parts[0])
	return strings.Join(parts, " ")
}

// First returns the first token of the cleaned name, or "".
func First(name string) string {
	parts := strings.Fields(Clean(name))
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// Last returns the last token of the cleaned name when there are at least
// two tokens, otherwise "".
func Last(name string) string {
	parts := strings.Fields(Clean(name))
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-1]
}

func titleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
