package preset

import (
	"fmt"
	"strconv"
	"strings"

	"dim-editor/dimension"
)

// Codec parses and serializes the preset file. One preset per line:
//
//	<name>, <target_dimension>, <min>, <max>, <step>, <current>
//
// Blank lines and '#' comments are skipped. Presets are user-authored, so
// parsing is best-effort: a malformed line is dropped and reported, the
// rest of the file still loads.
type Codec struct{}

func NewCodec() *Codec {
	return &Codec{}
}

const numFields = 6

var fieldNames = [numFields]string{"name", "target_dimension", "min", "max", "step", "current"}

// Parse builds a Collection from text. The returned errors describe every
// dropped line; they are warnings, not a failure of the load itself.
func (c *Codec) Parse(text string) (*Collection, []*dimension.ParseError) {
	coll := NewCollection()
	var errs []*dimension.ParseError

	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		def, perr := parseLine(trimmed, i+1)
		if perr != nil {
			errs = append(errs, perr)
			continue
		}
		if err := coll.Add(def); err != nil {
			kind := dimension.InvalidRange
			if err == ErrDuplicateName {
				kind = dimension.DuplicateName
			}
			errs = append(errs, &dimension.ParseError{
				Kind: kind,
				Line: i + 1,
				Msg:  fmt.Sprintf("preset %q: %v", def.Name, err),
			})
		}
	}
	return coll, errs
}

func parseLine(line string, lineNo int) (Definition, *dimension.ParseError) {
	fields := strings.Split(line, ",")
	if len(fields) != numFields {
		return Definition{}, &dimension.ParseError{
			Kind: dimension.UnrecognizedLine,
			Line: lineNo,
			Msg:  fmt.Sprintf("expected %d comma-separated fields, got %d", numFields, len(fields)),
		}
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	def := Definition{Name: fields[0], TargetDimension: fields[1]}
	if def.Name == "" {
		return Definition{}, &dimension.ParseError{
			Kind:  dimension.UnrecognizedLine,
			Line:  lineNo,
			Field: fieldNames[0],
			Msg:   "empty preset name",
		}
	}
	nums := [4]*float64{&def.Min, &def.Max, &def.Step, &def.Current}
	for i, dst := range nums {
		v, err := strconv.ParseFloat(fields[i+2], 64)
		if err != nil {
			return Definition{}, &dimension.ParseError{
				Kind:  dimension.InvalidNumber,
				Line:  lineNo,
				Field: fieldNames[i+2],
				Msg:   fmt.Sprintf("cannot parse %q", fields[i+2]),
			}
		}
		*dst = v
	}
	return def, nil
}

// Serialize writes the collection one preset per line, in insertion order,
// with stable minimal number formatting.
func (c *Codec) Serialize(coll *Collection) string {
	defs := coll.List()
	if len(defs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, d := range defs {
		fmt.Fprintf(&b, "%s, %s, %s, %s, %s, %s\n",
			d.Name, d.TargetDimension,
			formatNum(d.Min), formatNum(d.Max), formatNum(d.Step), formatNum(d.Current))
	}
	return b.String()
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
