package xmltree

import (
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/jacoelho/xsd/pkg/xmltext"
)

// DocumentError describes why a document could not be turned into a tree.
type DocumentError struct {
	Document string // Document name (archive member or file path)
	Line     int    // Line number (0 if unknown)
	Column   int    // Column number (0 if unknown)
	Message  string // Primary error message
	Hint     string // Actionable suggestion
	Err      error  // Underlying parser error
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	location := e.Document
	if location == "" {
		location = "<input>"
	}
	if e.Line > 0 {
		if e.Column > 0 {
			location = fmt.Sprintf("%s (line %d, col %d)", location, e.Line, e.Column)
		} else {
			location = fmt.Sprintf("%s (line %d)", location, e.Line)
		}
	}

	msg := fmt.Sprintf("parse document %s: %s", location, e.Message)
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	return msg
}

// Unwrap returns the underlying parser error.
func (e *DocumentError) Unwrap() error {
	return e.Err
}

const syntaxHint = "The selected file is not well-formed XML. If the input is an archive,\n" +
	"use --document to pick the RDF/XML profile explicitly (for example \"*_EQ_*.xml\")."

// wrapParseError converts backend errors into a DocumentError carrying
// position information when the backend provides it.
func wrapParseError(err error, document string) error {
	var stdErr *xml.SyntaxError
	if errors.As(err, &stdErr) {
		return &DocumentError{
			Document: document,
			Line:     stdErr.Line,
			Message:  stdErr.Msg,
			Hint:     syntaxHint,
			Err:      err,
		}
	}

	var streamErr *xmltext.SyntaxError
	if errors.As(err, &streamErr) {
		msg := "syntax error"
		if streamErr.Err != nil {
			msg = streamErr.Err.Error()
		}
		return &DocumentError{
			Document: document,
			Line:     streamErr.Line,
			Column:   streamErr.Column,
			Message:  msg,
			Hint:     syntaxHint,
			Err:      err,
		}
	}

	return &DocumentError{
		Document: document,
		Message:  err.Error(),
		Err:      err,
	}
}
