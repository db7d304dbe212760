package parser

import (
	"strconv"
	"strings"
)

// structuralMethods are table-level builder calls that never declare a
// column. Statements using them are skipped without a diagnostic.
var structuralMethods = map[string]bool{
	"index":          true,
	"unique":         true,
	"primary":        true,
	"foreign":        true,
	"dropForeign":    true,
	"dropIndex":      true,
	"dropUnique":     true,
	"dropPrimary":    true,
	"dropTimestamps": true,
	"timestamps":     true,
	"comment":        true,
	"engine":         true,
	"charset":        true,
	"collate":        true,
	"inherits":       true,
	"setNullable":    true,
	"dropNullable":   true,
	"queryContext":   true,
}

// ParamKind classifies one argument of a builder call.
type ParamKind string

// Param kinds.
const (
	ParamString ParamKind = "string"
	ParamNumber ParamKind = "number"
	ParamBool   ParamKind = "bool"
	ParamList   ParamKind = "list"
	ParamRaw    ParamKind = "raw"
)

// Param is one classified argument. Raw always keeps the literal source
// text.
type Param struct {
	Kind ParamKind
	Str  string
	Num  int
	Bool bool
	List []string
	Raw  string
}

// Modifier is one chained call after the column type.
type Modifier struct {
	Name    string
	RawArgs string
	Params  []Param
}

// RawDeclaration is one builder call chain before normalization.
type RawDeclaration struct {
	Receiver  string
	Method    string
	Params    []Param
	Modifiers []Modifier
	Line      int
}

// HasModifier reports whether the chain contains a modifier with the given
// name.
func (d *RawDeclaration) HasModifier(name string) bool {
	for _, m := range d.Modifiers {
		if m.Name == name {
			return true
		}
	}
	return false
}

// Name returns the declared column name, when the first argument is a
// quoted string.
func (d *RawDeclaration) Name() (string, bool) {
	if len(d.Params) == 0 || d.Params[0].Kind != ParamString {
		return "", false
	}
	return d.Params[0].Str, true
}

// parseBody parses one callback body into raw declarations in source order.
// Statements that do not fit the call chain shape, or that address another
// receiver, are skipped.
func parseBody(path, body, receiver string) []RawDeclaration {
	tokens, err := scan(path, body)
	if err != nil {
		return nil
	}
	var decls []RawDeclaration
	for _, stmt := range splitStatements(tokens) {
		decl, ok := parseDeclaration(stmt, body)
		if !ok {
			continue
		}
		if receiver != "" && decl.Receiver != receiver {
			continue
		}
		decls = append(decls, decl)
	}
	return decls
}

// splitStatements groups body tokens into call chain statements. A statement
// ends at a top-level semicolon, or at a line break that is not continuing a
// chain.
func splitStatements(tokens []Token) [][]Token {
	var stmts [][]Token
	var cur []Token
	depth := 0
	flush := func() {
		if len(cur) > 0 {
			stmts = append(stmts, cur)
			cur = nil
		}
	}
	for i, tok := range tokens {
		switch tok.Type {
		case "LParen", "LBracket", "LBrace":
			depth++
		case "RParen", "RBracket", "RBrace":
			if depth > 0 {
				depth--
			}
		case "Semicolon":
			if depth == 0 {
				flush()
				continue
			}
		}
		cur = append(cur, tok)
		if depth == 0 && i+1 < len(tokens) {
			next := tokens[i+1]
			if next.Line > tok.Line &&
				next.Type != "Dot" && tok.Type != "Dot" &&
				tok.Type != "Comma" && tok.Type != "Operator" && tok.Type != "Arrow" {
				flush()
			}
		}
	}
	flush()
	return stmts
}

// parseDeclaration parses one statement as
//
//	IDENT '.' method '(' params ')' ( '.' name '(' args ')' )*
//
// reporting ok false when the statement has any other shape.
func parseDeclaration(stmt []Token, src string) (RawDeclaration, bool) {
	c := &cursor{tokens: stmt, src: src}

	recv, ok := c.expect("Ident")
	if !ok {
		return RawDeclaration{}, false
	}
	if _, ok := c.expect("Dot"); !ok {
		return RawDeclaration{}, false
	}
	method, ok := c.expect("Ident")
	if !ok {
		return RawDeclaration{}, false
	}
	if _, ok := c.expect("LParen"); !ok {
		return RawDeclaration{}, false
	}
	params, _, ok := c.parseParams()
	if !ok {
		return RawDeclaration{}, false
	}

	decl := RawDeclaration{
		Receiver: recv.Value,
		Method:   method.Value,
		Params:   params,
		Line:     recv.Line,
	}

	for c.at("Dot") {
		c.next()
		name, ok := c.expect("Ident")
		if !ok {
			return RawDeclaration{}, false
		}
		lparen, ok := c.expect("LParen")
		if !ok {
			return RawDeclaration{}, false
		}
		args, closeOff, ok := c.parseParams()
		if !ok {
			return RawDeclaration{}, false
		}
		decl.Modifiers = append(decl.Modifiers, Modifier{
			Name:    name.Value,
			RawArgs: strings.TrimSpace(src[lparen.Offset+1 : closeOff]),
			Params:  args,
		})
	}

	if !c.atEnd() {
		return RawDeclaration{}, false
	}
	return decl, true
}

type cursor struct {
	tokens []Token
	pos    int
	src    string
}

func (c *cursor) atEnd() bool {
	return c.pos >= len(c.tokens)
}

func (c *cursor) at(tt string) bool {
	return !c.atEnd() && c.tokens[c.pos].Type == tt
}

func (c *cursor) next() Token {
	tok := c.tokens[c.pos]
	c.pos++
	return tok
}

func (c *cursor) expect(tt string) (Token, bool) {
	if !c.at(tt) {
		return Token{}, false
	}
	return c.next(), true
}

// parseParams consumes a balanced argument list, classifying each top-level
// argument. The cursor must sit just past the opening paren; it ends just
// past the closing one. The second result is the closing paren's offset.
func (c *cursor) parseParams() ([]Param, int, bool) {
	params := []Param{}
	var piece []Token
	depth := 1
	for !c.atEnd() {
		tok := c.next()
		switch tok.Type {
		case "LParen", "LBracket", "LBrace":
			depth++
		case "RParen", "RBracket", "RBrace":
			depth--
			if depth == 0 {
				if len(piece) > 0 {
					params = append(params, classifyParam(piece, c.src))
				}
				return params, tok.Offset, true
			}
		case "Comma":
			if depth == 1 {
				if len(piece) > 0 {
					params = append(params, classifyParam(piece, c.src))
					piece = nil
				}
				continue
			}
		}
		piece = append(piece, tok)
	}
	return nil, 0, false
}

// classifyParam types one argument: quoted string, integer, boolean, a
// bracketed list of quoted strings, or raw source text for anything else.
func classifyParam(piece []Token, src string) Param {
	raw := rawText(piece, src)
	if len(piece) == 1 {
		tok := piece[0]
		switch tok.Type {
		case "String":
			return Param{Kind: ParamString, Str: unquote(tok.Value), Raw: raw}
		case "Number":
			if n, err := strconv.Atoi(tok.Value); err == nil {
				return Param{Kind: ParamNumber, Num: n, Raw: raw}
			}
			return Param{Kind: ParamNumber, Raw: raw}
		case "Ident":
			if tok.Value == "true" || tok.Value == "false" {
				return Param{Kind: ParamBool, Bool: tok.Value == "true", Raw: raw}
			}
		}
		return Param{Kind: ParamRaw, Raw: raw}
	}
	if piece[0].Type == "LBracket" && piece[len(piece)-1].Type == "RBracket" {
		var list []string
		for _, tok := range piece[1 : len(piece)-1] {
			switch tok.Type {
			case "String":
				list = append(list, unquote(tok.Value))
			case "Comma":
			default:
				return Param{Kind: ParamRaw, Raw: raw}
			}
		}
		return Param{Kind: ParamList, List: list, Raw: raw}
	}
	return Param{Kind: ParamRaw, Raw: raw}
}

func rawText(piece []Token, src string) string {
	if len(piece) == 0 {
		return ""
	}
	first := piece[0]
	last := piece[len(piece)-1]
	return strings.TrimSpace(src[first.Offset : last.Offset+len(last.Value)])
}
