package space

import "github.com/therealutkarshpriyadarshi/simsearch/pkg/object"

// StreamState is a stateful handle held across a sequence of ParseObject/
// ReadNext calls against one dataset file: line number for error
// messages, expected dimensionality once observed, and (for formats that
// have one) a header record count.
type StreamState struct {
	Path           string
	Line           int
	Dimensionality int            // 0 until first record observed
	Vocabulary     map[string]int // populated by token-indexed spaces (e.g. sparse text)
	HeaderCount    uint64         // binary formats: declared record count
	RecordsRead    uint64
}

// NewStreamState creates an empty stream state for path.
func NewStreamState(path string) *StreamState {
	return &StreamState{Path: path, Vocabulary: make(map[string]int)}
}

// Parser is implemented by spaces that can read/write the external text
// or binary dataset formats (§6). Not every Space need implement it —
// a space used only programmatically (vectors built in memory) has no
// need for a text format.
type Parser interface {
	// ParseObject parses one record's text body into an Object,
	// updating state with any newly observed dimensionality/vocabulary.
	// It returns a *simerrors.FormatError (wrapped) on inconsistency.
	ParseObject(id, label int32, text string, state *StreamState) (*object.Object, error)

	// EmitObject renders obj back to the record text body.
	EmitObject(obj *object.Object, externalID string) (string, error)
}
