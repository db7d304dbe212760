// Package parser recovers table schemas from migration files written in the
// knex builder call convention. It parses the call chains it understands and
// skips everything else, so arbitrary JavaScript around the builder calls
// never fails a parse.
package parser

// SourceFile is one migration file with its content.
type SourceFile struct {
	Path string
	Data string
}

// NewSourceFile creates a new SourceFile.
func NewSourceFile(path, data string) SourceFile {
	return SourceFile{
		Path: path,
		Data: data,
	}
}
