package dimension

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Grammar describes the line shape of a dimension export as a regular
// expression with named groups: "qname" or "name" captures the dimension
// name, "value" the numeric magnitude and "unit" the unit suffix. Only the
// value group's span is ever rewritten, so quoting and spacing survive
// serialization untouched. The concrete grammar is swappable here because
// the export format is only inferred from observed files.
type Grammar struct {
	Line *regexp.Regexp
}

// DefaultGrammar accepts both the quoted form the CAD tool writes
// ("External"= 1000mm) and the bare form (D1@Sketch1@Part1.SLDPRT = 25.4mm).
func DefaultGrammar() Grammar {
	return Grammar{
		Line: regexp.MustCompile(`^\s*(?:"(?P<qname>[^"]+)"|(?P<name>[^\s"=#][^=]*?))\s*=\s*(?P<value>-?[0-9]+(?:\.[0-9]+)?)(?P<unit>[A-Za-z"%]*)\s*$`),
	}
}

type lineMatch struct {
	name       string
	unit       string
	valueStart int
	valueEnd   int
}

func (g Grammar) match(line string) (lineMatch, bool) {
	idx := g.Line.FindStringSubmatchIndex(line)
	if idx == nil {
		return lineMatch{}, false
	}
	var m lineMatch
	for _, group := range []string{"qname", "name"} {
		if n := g.Line.SubexpIndex(group); n >= 0 && idx[2*n] >= 0 {
			m.name = line[idx[2*n]:idx[2*n+1]]
			break
		}
	}
	n := g.Line.SubexpIndex("value")
	if n < 0 || idx[2*n] < 0 || m.name == "" {
		return lineMatch{}, false
	}
	m.valueStart, m.valueEnd = idx[2*n], idx[2*n+1]
	if u := g.Line.SubexpIndex("unit"); u >= 0 && idx[2*u] >= 0 {
		m.unit = line[idx[2*u]:idx[2*u+1]]
	}
	return m, true
}

// Codec parses dimension exports and serializes them back byte-for-byte.
type Codec struct {
	grammar Grammar
}

func NewCodec() *Codec {
	return &Codec{grammar: DefaultGrammar()}
}

func NewCodecWithGrammar(g Grammar) *Codec {
	return &Codec{grammar: g}
}

// Parse splits text into lines and builds a File. Lines the grammar does
// not recognise become passthrough records. A duplicate dimension name
// aborts the whole parse: the file is machine-generated, so a structural
// defect means the export cannot be trusted.
func (c *Codec) Parse(text string) (*File, error) {
	lines := strings.Split(text, "\n")
	f := &File{
		records: make([]*Record, 0, len(lines)),
		index:   make(map[string]*Record),
	}
	for i, line := range lines {
		m, ok := c.grammar.match(line)
		if !ok {
			f.records = append(f.records, &Record{raw: line})
			continue
		}
		value, err := strconv.ParseFloat(line[m.valueStart:m.valueEnd], 64)
		if err != nil {
			return nil, &ParseError{
				Kind: InvalidNumber,
				Line: i + 1,
				Msg:  fmt.Sprintf("cannot parse %q", line[m.valueStart:m.valueEnd]),
			}
		}
		if _, dup := f.index[m.name]; dup {
			return nil, &ParseError{
				Kind: DuplicateName,
				Line: i + 1,
				Msg:  fmt.Sprintf("dimension %q already defined", m.name),
			}
		}
		r := &Record{
			Name:      m.name,
			Value:     value,
			Unit:      m.unit,
			Parsed:    true,
			raw:       line,
			prefix:    line[:m.valueStart],
			valueText: line[m.valueStart:m.valueEnd],
			suffix:    line[m.valueEnd:],
			origValue: value,
		}
		f.records = append(f.records, r)
		f.index[m.name] = r
	}
	return f, nil
}

// Serialize reproduces the file text. Untouched records emit their original
// line verbatim; edited records rewrite only the value span, keeping the
// numeric style observed on load.
func (c *Codec) Serialize(f *File) string {
	lines := make([]string, len(f.records))
	for i, r := range f.records {
		if !r.Parsed || r.Value == r.origValue {
			lines[i] = r.raw
			continue
		}
		lines[i] = r.prefix + formatValue(r.Value, r.valueText) + r.suffix
	}
	return strings.Join(lines, "\n")
}

// formatValue renders v with the decimal-place count of the value text seen
// on load ("25.4" has one place, so 30 prints as "30.0"). When that count
// cannot represent v exactly it falls back to the shortest exact form.
func formatValue(v float64, template string) string {
	prec := 0
	if i := strings.IndexByte(template, '.'); i >= 0 {
		prec = len(template) - i - 1
	}
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if parsed, err := strconv.ParseFloat(s, 64); err == nil && parsed == v {
		return s
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
