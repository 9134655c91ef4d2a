package dcpipc

import (
	"fmt"
	"io"
	"strings"

	"github.com/asahi-tools/dcpipc/internal/hexdump"
	"github.com/creachadair/mds/mapset"
	"github.com/kr/pretty"
)

// null is the rendering of a parameter passed as null.
type null struct{}

func (null) String() string { return "NULL" }

// maxShort is the largest number of elements a container may hold
// and still be rendered inline.
const maxShort = 4

// displayValue returns the value of parameter p for rendering, with
// null parameters and null array elements replaced by null{}. Values
// in out take precedence over values in in. The second result is
// false if no value is available.
func displayValue(p Param, in, out Args) (any, bool) {
	var v any
	if out != nil {
		v = out[p.Name]
	}
	if v == nil && in != nil {
		v = in[p.Name]
	}
	// A null parameter may have no decoded value at all, as with a
	// keyed value whose storage is zeroed. Out parameters are only
	// known to be null once the reply is in.
	if p.Nullable && !p.ArrayOfNullable && in[p.NullField()] == true && (p.Dir.IsIn() || out != nil) {
		return null{}, true
	}
	if v == nil {
		return nil, false
	}
	if !p.Nullable {
		return v, true
	}

	flags, ok := in[p.NullField()]
	if !ok {
		return nil, false
	}
	if !p.ArrayOfNullable {
		return v, true
	}

	elems, ok := v.([]any)
	fs, _ := flags.([]any)
	if !ok {
		return v, true
	}
	ret := make([]any, len(elems))
	for i, e := range elems {
		if i < len(fs) && fs[i] == true {
			ret[i] = null{}
		} else {
			ret[i] = e
		}
	}
	return ret, true
}

// isLong reports whether v is too large to render inline: a
// container of more than maxShort elements, a container holding such
// a value, or any record or dictionary.
func isLong(v any) bool {
	switch v := v.(type) {
	case []byte:
		return len(v) > maxShort
	case []any:
		if len(v) > maxShort {
			return true
		}
		for _, e := range v {
			if isLong(e) {
				return true
			}
		}
		return false
	case map[string]any, Args, Dict:
		return true
	}
	return false
}

// formatArgs renders the parameters of m as a comma separated list
// of name=value pairs.
func (m *Method) formatArgs(in, out Args) string {
	ret := make([]string, 0, len(m.Params))
	for _, p := range m.Params {
		v, ok := displayValue(p, in, out)
		switch {
		case ok && isLong(v):
			ret = append(ret, p.Name+"=...")
		case ok:
			ret = append(ret, p.Name+"="+formatValue(p.Type, v))
		case p.Dir == DirOut:
			ret = append(ret, p.Name+"=<out>")
		default:
			ret = append(ret, p.Name+"=?")
		}
	}
	return strings.Join(ret, ", ")
}

// writeLongArgs writes an expanded block for every parameter of m
// whose value formatArgs abbreviated. When rendering a reply, shown
// holds the request fields that were already expanded; they are
// skipped unless the reply carries a new value for them.
func (m *Method) writeLongArgs(w io.Writer, indent string, in, out Args, shown mapset.Set[string]) error {
	for _, p := range m.Params {
		if out != nil && shown.Has(p.Name) {
			if _, ok := out[p.Name]; !ok {
				continue
			}
		}
		v, ok := displayValue(p, in, out)
		if !ok || !isLong(v) {
			continue
		}

		hdr := indent + "  " + p.Name + " = "
		var err error
		switch v := v.(type) {
		case []byte:
			if _, err = fmt.Fprintf(w, "%s(%#x bytes)\n", hdr, len(v)); err == nil {
				err = hexdump.Dump(w, v, indent+"    ")
			}
		case Dict:
			pad := strings.Repeat(" ", len(hdr))
			_, err = fmt.Fprintln(w, hdr+strings.ReplaceAll(pretty.Sprint(v), "\n", "\n"+pad))
		default:
			block := formatBlock(p.Type, v, 0)
			_, err = fmt.Fprintln(w, hdr+strings.ReplaceAll(block, "\n", "\n"+indent+"  "))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// formatValue renders v, a value of type t, on a single line.
func formatValue(t Type, v any) string {
	if _, ok := v.(null); ok {
		return "NULL"
	}
	switch bt := base(t).(type) {
	case Int:
		if isHex(t) {
			return fmt.Sprintf("%#x", v)
		}
	case Array:
		return formatList(bt.Elem, v)
	case LinkedArray:
		return formatList(bt.Elem, v)
	case CString, FourCC:
		return fmt.Sprintf("%q", v)
	case Record:
		fields, ok := asFields(v)
		if !ok {
			break
		}
		var parts []string
		for _, f := range bt.Fields {
			if f.Name != "" {
				parts = append(parts, f.Name+"="+formatValue(f.Type, fields[f.Name]))
			}
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	if bs, ok := v.([]byte); ok {
		return fmt.Sprintf("[% x]", bs)
	}
	if v == nil {
		return "?"
	}
	return fmt.Sprint(v)
}

func formatList(elem Type, v any) string {
	elems, ok := asSlice(v)
	if !ok {
		return fmt.Sprint(v)
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = formatValue(elem, e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// formatBlock renders v, a value of type t, across as many lines as
// its structure needs. Nested lines are indented by depth.
func formatBlock(t Type, v any, depth int) string {
	if !isLong(v) {
		return formatValue(t, v)
	}
	pad := strings.Repeat("  ", depth+1)
	end := strings.Repeat("  ", depth)

	switch v := v.(type) {
	case []byte:
		return strings.TrimSuffix(fmt.Sprintf("(%#x bytes)\n%s", len(v), hexdump.String(v, pad)), "\n")
	case Dict:
		return strings.ReplaceAll(pretty.Sprint(v), "\n", "\n"+end)
	}

	var sb strings.Builder
	switch bt := base(t).(type) {
	case Record:
		fields, _ := asFields(v)
		sb.WriteString("{\n")
		for _, f := range bt.Fields {
			if f.Name == "" {
				continue
			}
			fmt.Fprintf(&sb, "%s%s = %s\n", pad, f.Name, formatBlock(f.Type, fields[f.Name], depth+1))
		}
		sb.WriteString(end + "}")
	case Array, LinkedArray:
		elem, _ := unwrap(bt)
		elems, _ := asSlice(v)
		if !anyLong(elems) {
			return formatValue(t, v)
		}
		sb.WriteString("[\n")
		for _, e := range elems {
			fmt.Fprintf(&sb, "%s%s,\n", pad, formatBlock(elem, e, depth+1))
		}
		sb.WriteString(end + "]")
	default:
		return formatValue(t, v)
	}
	return sb.String()
}

func anyLong(elems []any) bool {
	for _, e := range elems {
		if isLong(e) {
			return true
		}
	}
	return false
}
