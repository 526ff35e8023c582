// Package casing checks and converts identifiers between the naming
// conventions spec.md §6 lets a vespertide.json configuration select:
// snake_case, camelCase, PascalCase, and kebab-case. It generalizes the
// teacher's "everything must be snake_case" check into a configurable one.
package casing

import (
	"regexp"
	"strings"
)

// Case identifies a naming convention.
type Case string

const (
	Snake  Case = "snake"
	Camel  Case = "camel"
	Pascal Case = "pascal"
	Kebab  Case = "kebab"
)

var (
	snakeRe  = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)
	camelRe  = regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`)
	pascalRe = regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`)
	kebabRe  = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)
)

// Matches reports whether name conforms to the given case convention. An
// unrecognized Case value is treated as "no constraint" (matches anything),
// so a config typo never silently rejects a valid schema; the config
// loader is responsible for rejecting bad enum values up front.
func Matches(c Case, name string) bool {
	switch c {
	case Snake:
		return snakeRe.MatchString(name)
	case Camel:
		return camelRe.MatchString(name)
	case Pascal:
		return pascalRe.MatchString(name)
	case Kebab:
		return kebabRe.MatchString(name)
	default:
		return true
	}
}

// Words splits an identifier in any of the four conventions into its
// constituent lowercase words.
func Words(name string) []string {
	if strings.ContainsAny(name, "_-") {
		sep := "_"
		if strings.Contains(name, "-") {
			sep = "-"
		}
		parts := strings.Split(name, sep)
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p != "" {
				out = append(out, strings.ToLower(p))
			}
		}
		return out
	}

	var words []string
	var cur strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			if cur.Len() > 0 {
				words = append(words, strings.ToLower(cur.String()))
				cur.Reset()
			}
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		words = append(words, strings.ToLower(cur.String()))
	}
	return words
}

// Convert renders words in the target case convention.
func Convert(c Case, name string) string {
	words := Words(name)
	switch c {
	case Snake:
		return strings.Join(words, "_")
	case Kebab:
		return strings.Join(words, "-")
	case Camel:
		return camelJoin(words, false)
	case Pascal:
		return camelJoin(words, true)
	default:
		return name
	}
}

func camelJoin(words []string, capFirst bool) string {
	var b strings.Builder
	for i, w := range words {
		if w == "" {
			continue
		}
		if i == 0 && !capFirst {
			b.WriteString(w)
			continue
		}
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(w[1:])
	}
	return b.String()
}
