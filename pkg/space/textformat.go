package space

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
)

// TextRecord is one line of the default dataset text format (§6): an
// optional "label:<int> " prefix followed by a space/format-specific
// body (dense floats, sparse id/value pairs, bit tokens, or a verbatim
// string for edit distance).
type TextRecord struct {
	Label int32
	Body  string
}

// TextReader reads the default "one record per line" dataset format and
// is shared by every builtin space's Parser implementation.
type TextReader struct {
	scanner *bufio.Scanner
	state   *StreamState
}

// NewTextReader wraps r as a TextReader bound to state, which is
// mutated in place (Line, RecordsRead) as records are consumed.
func NewTextReader(r io.Reader, state *StreamState) *TextReader {
	return &TextReader{scanner: bufio.NewScanner(r), state: state}
}

// ReadNext returns the next non-blank record, or io.EOF when the stream
// is exhausted.
func (tr *TextReader) ReadNext() (*TextRecord, error) {
	for tr.scanner.Scan() {
		tr.state.Line++
		line := strings.TrimSpace(tr.scanner.Text())
		if line == "" {
			continue
		}
		label := object.EmptyLabel
		if strings.HasPrefix(line, "label:") {
			rest := line[len("label:"):]
			sp := strings.IndexAny(rest, " \t")
			var labelStr string
			if sp < 0 {
				labelStr = rest
				rest = ""
			} else {
				labelStr = rest[:sp]
				rest = strings.TrimLeft(rest[sp:], " \t")
			}
			v, err := strconv.ParseInt(labelStr, 10, 32)
			if err != nil {
				return nil, &simerrors.FormatError{Path: tr.state.Path, Line: tr.state.Line, Reason: "malformed label prefix"}
			}
			label = int32(v)
			line = rest
		}
		tr.state.RecordsRead++
		return &TextRecord{Label: label, Body: line}, nil
	}
	if err := tr.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
