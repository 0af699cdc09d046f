package dsl

import (
	"errors"
	"io"

	"github.com/hashicorp/hcl/v2"
)

// ParseError carries the diagnostics produced for one signature text. Its
// message is the diagnostics' own message, surfaced verbatim.
type ParseError struct {
	Filename string
	Source   []byte
	Diags    hcl.Diagnostics
}

func (e *ParseError) Error() string {
	return "error while parsing the signature: " + e.Diags.Error()
}

// Unwrap exposes the diagnostics so callers can errors.As into them.
func (e *ParseError) Unwrap() error {
	return e.Diags
}

// WriteDiagnostics renders the diagnostics with source snippets.
func (e *ParseError) WriteDiagnostics(w io.Writer, width uint, color bool) error {
	files := map[string]*hcl.File{
		e.Filename: {Bytes: e.Source},
	}
	return hcl.NewDiagnosticTextWriter(w, files, width, color).WriteDiagnostics(e.Diags)
}

// errAbort stops the descent once a diagnostic has been recorded.
var errAbort = errors.New("parse aborted")
