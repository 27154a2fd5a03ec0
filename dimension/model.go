package dimension

import "errors"

// Record is one line of an exported dimension file. Parsed records carry a
// name, a numeric value and an optional unit suffix; every other line
// (comments, blanks, anything the grammar does not recognise) becomes a
// passthrough record so serialization can reproduce the file exactly.
type Record struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit,omitempty"`
	Parsed bool    `json:"parsed"`

	raw       string // original line, without the line terminator
	prefix    string // everything before the value span
	valueText string // the value exactly as it appeared on load
	suffix    string // everything after the value span (unit included)
	origValue float64
}

// File is an ordered sequence of records parsed from one dimension export.
// Order is significant: it drives both display and round-trip fidelity.
type File struct {
	records []*Record
	index   map[string]*Record // parsed records by name
}

var ErrUnknownDimension = errors.New("unknown dimension")

// Records returns a copy of every record, passthrough lines included,
// in file order.
func (f *File) Records() []Record {
	out := make([]Record, len(f.records))
	for i, r := range f.records {
		out[i] = *r
	}
	return out
}

// Dimensions returns copies of the parsed records only, in file order.
func (f *File) Dimensions() []Record {
	out := make([]Record, 0, len(f.index))
	for _, r := range f.records {
		if r.Parsed {
			out = append(out, *r)
		}
	}
	return out
}

// Get returns a copy of the named record.
func (f *File) Get(name string) (Record, bool) {
	r, ok := f.index[name]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// Has reports whether a parsed record with the given name exists.
func (f *File) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Len returns the number of parsed records.
func (f *File) Len() int {
	return len(f.index)
}

// SetValue updates the named record in place. The caller supplies a value
// already in the record's unit; no conversion happens here.
func (f *File) SetValue(name string, value float64) error {
	r, ok := f.index[name]
	if !ok {
		return ErrUnknownDimension
	}
	r.Value = value
	return nil
}
