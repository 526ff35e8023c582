package store

import (
	"strings"
)

// slugify turns a free-form revision comment into a filename-safe,
// lowercase, hyphen-separated token, e.g. "Add users email index" ->
// "add-users-email-index". Anything that isn't a letter or digit becomes
// a word boundary.
func slugify(comment string) string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range strings.ToLower(comment) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	if len(words) == 0 {
		return "unnamed"
	}
	return strings.Join(words, "-")
}
