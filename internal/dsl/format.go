package dsl

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vk/nusig/internal/model"
	"github.com/vk/nusig/signature"
)

// Format prints m as signature text that Parse reads back into an equal
// model. Glob values are printed as strings, since they have no literal form.
func Format(m *model.SignatureModel) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	writeDoc(&b, m.Description, m.ExtraDescription)

	b.WriteString("extern ")
	b.WriteString(formatName(m.Name))
	b.WriteString(" [")

	var lines []string
	for _, p := range m.RequiredPositional {
		if err := checkParamName(p.Name); err != nil {
			return "", err
		}
		lines = append(lines, withDesc(p.Name+": "+p.Type.String(), p.Description))
	}
	for _, p := range m.OptionalPositional {
		if err := checkParamName(p.Name); err != nil {
			return "", err
		}
		var line string
		switch f := p.Form.(type) {
		case model.DeclaredType:
			line = p.Name + "?: " + f.Decl.String()
		case model.DefaultValue:
			v, err := FormatValue(f.Value)
			if err != nil {
				return "", fmt.Errorf("default of %q: %w", p.Name, err)
			}
			line = p.Name + " = " + v
		}
		lines = append(lines, withDesc(line, p.Description))
	}
	if r := m.RestPositional; r != nil && !r.IsDefault() {
		if err := checkParamName(r.Name); err != nil {
			return "", err
		}
		lines = append(lines, withDesc("..."+r.Name+": "+r.Type.String(), r.Description))
	}
	for _, f := range m.Named {
		line, err := formatFlag(f)
		if err != nil {
			return "", err
		}
		lines = append(lines, withDesc(line, f.Description))
	}

	if len(lines) > 0 {
		b.WriteByte('\n')
		for _, l := range lines {
			b.WriteString(indent(l))
			b.WriteByte('\n')
		}
	}
	b.WriteByte(']')

	switch len(m.InputOutputTypes) {
	case 0:
	case 1:
		io := m.InputOutputTypes[0]
		fmt.Fprintf(&b, ": %s -> %s", io.In, io.Out)
	default:
		b.WriteString(": [")
		for i, io := range m.InputOutputTypes {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s -> %s", io.In, io.Out)
		}
		b.WriteByte(']')
	}
	b.WriteByte('\n')
	return b.String(), nil
}

func writeDoc(b *strings.Builder, desc, extra string) {
	if desc != "" {
		for _, l := range strings.Split(desc, "\n") {
			b.WriteString(comment(l))
			b.WriteByte('\n')
		}
	}
	if extra != "" {
		b.WriteString("#\n")
		for _, l := range strings.Split(extra, "\n") {
			b.WriteString(comment(l))
			b.WriteByte('\n')
		}
	}
}

func comment(text string) string {
	if text == "" {
		return "#"
	}
	return "# " + text
}

// withDesc appends a description as trailing comments, one per line.
func withDesc(line, desc string) string {
	if desc == "" {
		return line
	}
	parts := strings.Split(desc, "\n")
	line += "  " + comment(parts[0])
	for _, p := range parts[1:] {
		line += "\n" + comment(p)
	}
	return line
}

func indent(s string) string {
	return "    " + strings.ReplaceAll(s, "\n", "\n    ")
}

func formatName(name string) string {
	if IsBareName(name) {
		return name
	}
	return signature.QuoteString(name)
}

// IsBareName reports whether a command name can be written without quotes.
func IsBareName(name string) bool {
	if name == "" || name == "extern" {
		return false
	}
	switch name[0] {
	case '"', '\'', '`', '#':
		return false
	}
	return !strings.ContainsAny(name, " \t\r\n[;")
}

func checkParamName(name string) error {
	if name == "" {
		return fmt.Errorf("parameter name must not be empty")
	}
	for _, r := range name {
		if !isIdentRune(r) {
			return fmt.Errorf("parameter name %q cannot be written in a signature", name)
		}
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("parameter name %q cannot start with '-'", name)
	}
	return nil
}

func formatFlag(f model.Flag) (string, error) {
	var line string
	switch {
	case f.Long != "":
		if err := checkParamName(f.Long); err != nil {
			return "", err
		}
		line = "--" + f.Long
		if f.Short != 0 {
			line += "(-" + string(f.Short) + ")"
		}
	default:
		line = "-" + string(f.Short)
	}
	if f.ValueType != nil {
		line += ": " + f.ValueType.String()
	}
	if f.Default != nil {
		v, err := FormatValue(f.Default)
		if err != nil {
			return "", fmt.Errorf("default of flag %q: %w", f.Long, err)
		}
		line += " = " + v
	}
	return line, nil
}

// FormatValue prints v as a value literal.
func FormatValue(v signature.Value) (string, error) {
	switch x := v.(type) {
	case signature.BoolValue:
		return strconv.FormatBool(x.Val), nil
	case signature.IntValue:
		return strconv.FormatInt(x.Val, 10), nil
	case signature.FloatValue:
		return formatFloat(x.Val), nil
	case signature.FilesizeValue:
		return strconv.FormatInt(x.Val, 10) + "b", nil
	case signature.DurationValue:
		return strconv.FormatInt(x.Val, 10) + "ns", nil
	case signature.DateValue:
		return x.Val.Format(time.RFC3339Nano), nil
	case signature.StringValue:
		return signature.QuoteString(x.Val), nil
	case signature.GlobValue:
		return signature.QuoteString(x.Val), nil
	case signature.NothingValue:
		return "null", nil
	case signature.BinaryValue:
		return "0x[" + hex.EncodeToString(x.Val) + "]", nil
	case signature.ListValue:
		return formatList(x.Vals)
	case signature.RecordValue:
		return formatRecord(x.Cols, x.Vals)
	case signature.TableValue:
		return formatTable(x)
	case signature.IntRangeValue:
		return formatIntRange(x), nil
	case signature.FloatRangeValue:
		return formatFloatRange(x), nil
	case signature.CellPathValue:
		return formatCellPath(x), nil
	case nil:
		return "", fmt.Errorf("missing value")
	}
	return "", fmt.Errorf("%s values have no literal form", v.Type())
}

// formatFloat prints the shortest text that reads back as the same float.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func formatList(vals []signature.Value) (string, error) {
	parts := make([]string, len(vals))
	for i, v := range vals {
		s, err := FormatValue(v)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}

func formatRecord(cols []string, vals []signature.Value) (string, error) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		s, err := FormatValue(vals[i])
		if err != nil {
			return "", err
		}
		parts[i] = formatKey(c) + ": " + s
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

// formatTable prints a table as a list with a single record row.
func formatTable(t signature.TableValue) (string, error) {
	cols := make([]string, len(t.Fields))
	vals := make([]signature.Value, len(t.Fields))
	for i, f := range t.Fields {
		cols[i], vals[i] = f.Name, f.Val
	}
	row, err := formatRecord(cols, vals)
	if err != nil {
		return "", err
	}
	return "[" + row + "]", nil
}

func formatKey(k string) string {
	if signature.IsBareWord(k) {
		return k
	}
	return signature.QuoteString(k)
}

func formatIntRange(r signature.IntRangeValue) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(r.Start, 10))
	defaultStep := int64(1)
	if r.End.Kind != signature.Unbounded && r.End.Value < r.Start {
		defaultStep = -1
	}
	if r.Step != defaultStep {
		b.WriteString("..")
		b.WriteString(strconv.FormatInt(r.Start+r.Step, 10))
	}
	b.WriteString(rangeEnd(r.End.Kind, strconv.FormatInt(r.End.Value, 10)))
	return b.String()
}

func formatFloatRange(r signature.FloatRangeValue) string {
	var b strings.Builder
	b.WriteString(formatFloat(r.Start))
	defaultStep := 1.0
	if r.End.Kind != signature.Unbounded && r.End.Value < r.Start {
		defaultStep = -1
	}
	if r.Step != defaultStep {
		b.WriteString("..")
		b.WriteString(formatFloat(r.Start + r.Step))
	}
	b.WriteString(rangeEnd(r.End.Kind, formatFloat(r.End.Value)))
	return b.String()
}

func rangeEnd(kind signature.BoundKind, end string) string {
	switch kind {
	case signature.Excluded:
		return "..<" + end
	case signature.Unbounded:
		return ".."
	}
	return ".." + end
}

func formatCellPath(c signature.CellPathValue) string {
	var b strings.Builder
	b.WriteByte('$')
	for _, m := range c.Members {
		b.WriteByte('.')
		switch {
		case m.IsIndex:
			b.WriteString(strconv.Itoa(m.Index))
		case signature.IsBareWord(m.Name):
			b.WriteString(m.Name)
		default:
			b.WriteString(signature.QuoteString(m.Name))
		}
		if m.Optional {
			b.WriteByte('?')
		}
	}
	return b.String()
}
