package parser

import (
	"bytes"
	"fmt"

	"github.com/fatih/color"
)

// ParseWarning describes a non-fatal problem found while parsing a migration
// file. The offending construct is dropped and parsing continues.
type ParseWarning struct {
	Message string
	File    string
	Table   string
	Column  string
	Line    int
}

// Diagnostics accumulates parse warnings. Parsing never stops at the first
// problem; a full pass reports everything it had to drop at once.
type Diagnostics struct {
	warnings []ParseWarning
}

// NewDiagnostics creates a new empty Diagnostics collection.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{warnings: make([]ParseWarning, 0)}
}

// PushWarning adds a warning to the collection.
func (d *Diagnostics) PushWarning(w ParseWarning) {
	d.warnings = append(d.warnings, w)
}

// Warnings returns all warnings in the collection.
func (d *Diagnostics) Warnings() []ParseWarning {
	return d.warnings
}

// HasWarnings returns true if at least one construct was dropped.
func (d *Diagnostics) HasWarnings() bool {
	return len(d.warnings) > 0
}

// Merge appends every warning from other into this collection.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.warnings = append(d.warnings, other.warnings...)
}

// ToPrettyString formats all warnings as a colored, file-referenced report.
func (d *Diagnostics) ToPrettyString() string {
	var buf bytes.Buffer

	warningTitle := color.New(color.FgYellow, color.Bold)
	warningDesc := color.New(color.Bold)
	arrowColor := color.New(color.FgCyan, color.Bold)
	filePathColor := color.New(color.Underline)

	for _, w := range d.warnings {
		warningTitle.Fprintf(&buf, "warning")
		fmt.Fprintf(&buf, ": ")
		warningDesc.Fprintf(&buf, "%s\n", w.Message)

		arrowColor.Fprintf(&buf, "  --> ")
		filePathColor.Fprintf(&buf, "%s:%d\n", w.File, w.Line)

		if w.Table != "" {
			fmt.Fprintf(&buf, "      table %s", w.Table)
			if w.Column != "" {
				fmt.Fprintf(&buf, ", column %s", w.Column)
			}
			fmt.Fprintf(&buf, "\n")
		}
	}
	return buf.String()
}
