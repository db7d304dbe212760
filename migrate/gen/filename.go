package gen

import (
	"strings"
	"time"
	"unicode"
)

// FileName builds a migration file name whose lexical order matches its
// creation time, which is what the aggregator sorts by.
func FileName(at time.Time, name string) string {
	return at.UTC().Format("20060102150405") + "_" + slug(name) + ".js"
}

// slug turns a free-form description into a file-name-safe token.
func slug(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "migration"
	}
	return out
}
