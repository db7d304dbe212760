package parser

import (
	"sort"
	"strings"
)

// Setup and teardown markers delimit the forward and rollback halves of a
// migration file. Only builder calls inside a setup region count; a file
// without a setup marker contributes nothing.
var setupMarkers = []string{
	"module.exports.up",
	"exports.up",
	"export async function up",
	"export function up",
	"export const up",
}

var teardownMarkers = []string{
	"module.exports.down",
	"exports.down",
	"export async function down",
	"export function down",
	"export const down",
}

// builderMethods are the schema builder calls the extractor recognizes, in
// the order they are reported when sharing a position (they never do).
var builderMethods = []string{
	"createTable",
	"alterTable",
	"createView",
	"dropTable",
	"dropTableIfExists",
}

// Invocation is one recognized builder call with the raw text of its
// callback body. Drop invocations have no body.
type Invocation struct {
	Method string
	Table  string
	Body   string
	Param  string // table builder parameter name of the callback
	Line   int    // 1-based line in the file where the body (or call) starts
}

// region is the body of one setup function.
type region struct {
	text   string
	offset int // absolute offset of the body start
	line   int // 1-based line of the body start
}

// setupRegions locates every setup function body in the comment-blanked
// source. A body whose braces never balance extends to the next teardown
// marker, or to the end of the file.
func setupRegions(clean string) []region {
	boundaries := markerPositions(clean, append(append([]string{}, setupMarkers...), teardownMarkers...))
	teardowns := markerPositions(clean, teardownMarkers)

	var regions []region
	seen := make(map[int]bool)
	for _, marker := range setupMarkers {
		from := 0
		for {
			rel := strings.Index(clean[from:], marker)
			if rel < 0 {
				break
			}
			at := from + rel
			end := at + len(marker)
			from = end

			open := strings.IndexByte(clean[end:], '{')
			if open < 0 {
				continue
			}
			open += end
			if crossesBoundary(boundaries, end, open) {
				// The brace belongs to a later construct; this setup has
				// no literal body.
				continue
			}
			if seen[open] {
				continue
			}
			seen[open] = true

			bodyEnd := scanBalanced(clean, open, '{', '}')
			if bodyEnd < 0 {
				bodyEnd = nextPosition(teardowns, open)
				if bodyEnd < 0 {
					bodyEnd = len(clean)
				}
			} else {
				bodyEnd--
			}
			regions = append(regions, region{
				text:   clean[open+1 : bodyEnd],
				offset: open + 1,
				line:   lineAt(clean, open+1),
			})
		}
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].offset < regions[j].offset })
	return regions
}

// extractInvocations finds builder calls inside one setup region, in source
// order. Malformed invocations are skipped without a diagnostic.
func extractInvocations(reg region) []Invocation {
	type hit struct {
		pos    int
		method string
	}
	var hits []hit
	for _, method := range builderMethods {
		needle := "." + method + "("
		from := 0
		for {
			rel := strings.Index(reg.text[from:], needle)
			if rel < 0 {
				break
			}
			at := from + rel
			from = at + len(needle)
			hits = append(hits, hit{pos: at, method: method})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	var out []Invocation
	for _, h := range hits {
		parenAt := h.pos + 1 + len(h.method)
		inv, ok := parseInvocation(reg, h.method, parenAt)
		if !ok {
			continue
		}
		out = append(out, inv)
	}
	return out
}

// parseInvocation reads the argument list that starts at the opening paren.
// The first argument must be a quoted table name; create and alter calls
// additionally need a callback with a literal body.
func parseInvocation(reg region, method string, parenAt int) (Invocation, bool) {
	text := reg.text
	bound := scanBalanced(text, parenAt, '(', ')')
	if bound < 0 {
		bound = len(text)
	}

	i := skipSpaces(text, parenAt+1)
	if i >= len(text) || (text[i] != '\'' && text[i] != '"') {
		return Invocation{}, false
	}
	quote := text[i]
	nameEnd := skipString(text, i)
	if nameEnd > len(text) || nameEnd < i+2 || text[nameEnd-1] != quote {
		return Invocation{}, false
	}
	table := unquote(text[i:nameEnd])
	if table == "" {
		return Invocation{}, false
	}

	if method == "dropTable" || method == "dropTableIfExists" {
		return Invocation{
			Method: "dropTable",
			Table:  table,
			Line:   reg.line + strings.Count(text[:parenAt], "\n"),
		}, true
	}

	i = skipSpaces(text, nameEnd)
	if i >= len(text) || text[i] != ',' {
		return Invocation{}, false
	}
	open := strings.IndexByte(text[i:], '{')
	if open < 0 || i+open >= bound {
		return Invocation{}, false
	}
	open += i
	bodyEnd := scanBalanced(text, open, '{', '}')
	if bodyEnd < 0 {
		return Invocation{}, false
	}

	return Invocation{
		Method: method,
		Table:  table,
		Body:   text[open+1 : bodyEnd-1],
		Param:  callbackParam(text[i+1 : open]),
		Line:   reg.line + strings.Count(text[:open+1], "\n"),
	}, true
}

// callbackParam extracts the table builder parameter name from a callback
// head such as `function (table)` or `t =>`. An empty result means the head
// had an unexpected shape; the body parser then accepts any receiver.
func callbackParam(head string) string {
	head = strings.TrimSpace(head)
	if open := strings.IndexByte(head, '('); open >= 0 {
		end := strings.IndexByte(head[open:], ')')
		if end < 0 {
			return ""
		}
		inner := head[open+1 : open+end]
		if comma := strings.IndexByte(inner, ','); comma >= 0 {
			inner = inner[:comma]
		}
		return identOnly(strings.TrimSpace(inner))
	}
	if arrow := strings.Index(head, "=>"); arrow >= 0 {
		return identOnly(strings.TrimSpace(head[:arrow]))
	}
	return ""
}

// identOnly returns s when it is a plain identifier, else "".
func identOnly(s string) string {
	if s == "" {
		return ""
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '$':
		case c >= '0' && c <= '9':
			if i == 0 {
				return ""
			}
		default:
			return ""
		}
	}
	return s
}

// scanBalanced walks from the delimiter at open to the one that closes it,
// treating string literals and comments as opaque. It returns the index just
// past the closing delimiter, or -1 when the text ends first.
func scanBalanced(src string, open int, openCh, closeCh byte) int {
	depth := 0
	i := open
	for i < len(src) {
		switch c := src[i]; c {
		case '\'', '"', '`':
			i = skipString(src, i)
		case '/':
			if i+1 < len(src) && src[i+1] == '/' {
				i = skipLineComment(src, i)
			} else if i+1 < len(src) && src[i+1] == '*' {
				i = skipBlockComment(src, i)
			} else {
				i++
			}
		case openCh:
			depth++
			i++
		case closeCh:
			depth--
			i++
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}
	return -1
}

// skipString returns the index just past the string literal starting at
// at. Unterminated single-line strings end at the line break.
func skipString(src string, at int) int {
	quote := src[at]
	i := at + 1
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
		case quote:
			return i + 1
		case '\n':
			if quote != '`' {
				return i
			}
			i++
		default:
			i++
		}
	}
	return len(src)
}

func skipLineComment(src string, at int) int {
	if idx := strings.IndexByte(src[at:], '\n'); idx >= 0 {
		return at + idx
	}
	return len(src)
}

func skipBlockComment(src string, at int) int {
	if idx := strings.Index(src[at+2:], "*/"); idx >= 0 {
		return at + 2 + idx + 2
	}
	return len(src)
}

func skipSpaces(src string, at int) int {
	for at < len(src) && (src[at] == ' ' || src[at] == '\t' || src[at] == '\r' || src[at] == '\n') {
		at++
	}
	return at
}

// blankComments replaces comment bytes with spaces so marker and method
// searches never match inside them. Length and line breaks are preserved.
func blankComments(src string) string {
	out := []byte(src)
	i := 0
	for i < len(src) {
		switch src[i] {
		case '\'', '"', '`':
			i = skipString(src, i)
		case '/':
			if i+1 < len(src) && src[i+1] == '/' {
				end := skipLineComment(src, i)
				blankRange(out, i, end)
				i = end
			} else if i+1 < len(src) && src[i+1] == '*' {
				end := skipBlockComment(src, i)
				blankRange(out, i, end)
				i = end
			} else {
				i++
			}
		default:
			i++
		}
	}
	return string(out)
}

func blankRange(buf []byte, from, to int) {
	for i := from; i < to && i < len(buf); i++ {
		if buf[i] != '\n' {
			buf[i] = ' '
		}
	}
}

// unquote strips the surrounding quotes from a string literal and resolves
// the escapes that matter for identifiers.
func unquote(lit string) string {
	if len(lit) < 2 {
		return lit
	}
	body := lit[1 : len(lit)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
			switch body[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(body[i])
			}
			continue
		}
		b.WriteByte(body[i])
	}
	return b.String()
}

// markerPositions returns the sorted start offsets of every occurrence of
// every marker.
func markerPositions(src string, markers []string) []int {
	var out []int
	for _, marker := range markers {
		from := 0
		for {
			rel := strings.Index(src[from:], marker)
			if rel < 0 {
				break
			}
			out = append(out, from+rel)
			from = from + rel + len(marker)
		}
	}
	sort.Ints(out)
	return out
}

// crossesBoundary reports whether any marker starts inside (from, to).
func crossesBoundary(boundaries []int, from, to int) bool {
	for _, b := range boundaries {
		if b >= from && b < to {
			return true
		}
		if b >= to {
			break
		}
	}
	return false
}

// nextPosition returns the first position at or after from, or -1.
func nextPosition(positions []int, from int) int {
	for _, p := range positions {
		if p >= from {
			return p
		}
	}
	return -1
}

func lineAt(src string, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	return strings.Count(src[:offset], "\n") + 1
}
