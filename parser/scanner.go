package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// migrationLexer tokenizes the slice of JavaScript that appears in builder
// call chains. The trailing Junk rule keeps the lexer total, so constructs
// outside the convention produce skippable tokens instead of lex errors.
var migrationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "BlockComment", Pattern: `/\*(?:[^*]|\*+[^*/])*\*+/`},

	{Name: "String", Pattern: `'(?:\\.|[^'\\])*'|"(?:\\.|[^"\\])*"` + "|`(?:\\\\.|[^`\\\\])*`"},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_$][A-Za-z0-9_$]*`},

	{Name: "Arrow", Pattern: `=>`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "LBracket", Pattern: `\[`},
	{Name: "RBracket", Pattern: `\]`},
	{Name: "LBrace", Pattern: `\{`},
	{Name: "RBrace", Pattern: `\}`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Semicolon", Pattern: `;`},
	{Name: "Operator", Pattern: `[=+\-*/!<>&|?:%~^]+`},

	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Junk", Pattern: `.`},
})

// Token is one lexed token with its position in the scanned text.
type Token struct {
	Type   string
	Value  string
	Line   int
	Column int
	Offset int
}

// scan lexes src into a token arena. Comments and whitespace never reach the
// arena; positions stay relative to src.
func scan(path, src string) ([]Token, error) {
	lex, err := migrationLexer.Lex(path, strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, err
	}

	names := lexer.SymbolsByRune(migrationLexer)
	arena := make([]Token, 0, len(raw))
	for _, tok := range raw {
		if tok.EOF() {
			break
		}
		name := names[tok.Type]
		if name == "Whitespace" || name == "Comment" || name == "BlockComment" {
			continue
		}
		arena = append(arena, Token{
			Type:   name,
			Value:  tok.Value,
			Line:   tok.Pos.Line,
			Column: tok.Pos.Column,
			Offset: tok.Pos.Offset,
		})
	}
	return arena, nil
}
