// Package command splits chat text like ".duid 3122790" into a command name and its argument.
package command

import (
	"strings"
	"unicode"
)

// Prefixes are the accepted command leaders.
var Prefixes = []string{".", "/", "!", "！"}

// Parse returns the lower-cased command name and the trimmed remainder of the line.
// ok is false when text does not start with a prefix followed by a name.
func Parse(text string) (name, arg string, ok bool) {
	text = strings.TrimSpace(text)
	rest := ""
	for _, prefix := range Prefixes {
		if strings.HasPrefix(text, prefix) {
			rest = text[len(prefix):]
			break
		}
	}
	if rest == "" {
		return "", "", false
	}
	end := strings.IndexFunc(rest, unicode.IsSpace)
	if end < 0 {
		end = len(rest)
	}
	name = strings.ToLower(rest[:end])
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(rest[end:]), true
}

// Match is Parse restricted to one command name.
func Match(text, want string) (arg string, ok bool) {
	name, arg, ok := Parse(text)
	if !ok || name != want {
		return "", false
	}
	return arg, true
}
