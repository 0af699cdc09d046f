package codegen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vk/nusig/signature"
)

func (g *Generator) valueExpr(v signature.Value) (string, error) {
	switch x := v.(type) {
	case signature.BoolValue:
		return g.call("Bool", strconv.FormatBool(x.Val)), nil
	case signature.IntValue:
		return g.call("Int", strconv.FormatInt(x.Val, 10)), nil
	case signature.FloatValue:
		return g.float(x.Val), nil
	case signature.FilesizeValue:
		return g.call("Filesize", strconv.FormatInt(x.Val, 10)), nil
	case signature.DurationValue:
		return g.call("Duration", strconv.FormatInt(x.Val, 10)), nil
	case signature.DateValue:
		return g.date(x), nil
	case signature.StringValue:
		return g.call("String", strconv.Quote(x.Val)), nil
	case signature.GlobValue:
		return g.call("Glob", strconv.Quote(x.Val)), nil
	case signature.NothingValue:
		return g.call("Nothing"), nil
	case signature.BinaryValue:
		return g.call("Binary", bytesLit(x.Val)), nil
	case signature.ListValue:
		elems, err := g.values(x.Vals)
		if err != nil {
			return "", err
		}
		return g.call("List", elems...), nil
	case signature.RecordValue:
		return g.record(x)
	case signature.TableValue:
		return g.table(x)
	case signature.IntRangeValue:
		return g.intRange(x), nil
	case signature.FloatRangeValue:
		return g.floatRange(x), nil
	case signature.CellPathValue:
		return g.cellPath(x), nil
	case signature.ClosureValue:
		return "", &UnsupportedValueError{Kind: "closure"}
	case signature.ErrorValue:
		return "", &UnsupportedValueError{Kind: "error"}
	case signature.CustomValue:
		return "", &UnsupportedValueError{Kind: "custom"}
	case nil:
		return "", fmt.Errorf("missing value")
	}
	return "", &UnsupportedValueError{Kind: fmt.Sprintf("%T", v)}
}

func (g *Generator) call(fn string, args ...string) string {
	return g.ref(fn) + "(" + strings.Join(args, ", ") + ")"
}

func (g *Generator) values(vals []signature.Value) ([]string, error) {
	out := make([]string, len(vals))
	for i, v := range vals {
		s, err := g.valueExpr(v)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// float emits the shortest literal that round-trips. Values a Go literal
// cannot spell exactly go through their bit pattern.
func (g *Generator) float(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) || (f == 0 && math.Signbit(f)) {
		return g.call("FloatBits", fmt.Sprintf("0x%016x", math.Float64bits(f)))
	}
	return g.call("Float", strconv.FormatFloat(f, 'g', -1, 64))
}

// date rebuilds the timestamp from its wall clock fields and UTC offset.
func (g *Generator) date(d signature.DateValue) string {
	t := d.Val
	_, offset := t.Zone()
	return g.call("FixedDate",
		strconv.Itoa(t.Year()),
		strconv.Itoa(int(t.Month())),
		strconv.Itoa(t.Day()),
		strconv.Itoa(t.Hour()),
		strconv.Itoa(t.Minute()),
		strconv.Itoa(t.Second()),
		strconv.Itoa(t.Nanosecond()),
		strconv.Itoa(offset),
	)
}

func bytesLit(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("0x%02x", c)
	}
	return "[]byte{" + strings.Join(parts, ", ") + "}"
}

func (g *Generator) record(r signature.RecordValue) (string, error) {
	cols := make([]string, len(r.Cols))
	for i, c := range r.Cols {
		cols[i] = strconv.Quote(c)
	}
	vals, err := g.values(r.Vals)
	if err != nil {
		return "", err
	}
	return g.call("Record",
		"[]string{"+strings.Join(cols, ", ")+"}",
		"[]"+g.ref("Value")+"{"+strings.Join(vals, ", ")+"}",
	), nil
}

func (g *Generator) table(t signature.TableValue) (string, error) {
	fields := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		v, err := g.valueExpr(f.Val)
		if err != nil {
			return "", err
		}
		fields[i] = g.ref("FieldValue") + "{Name: " + strconv.Quote(f.Name) + ", Val: " + v + "}"
	}
	return g.call("Table", fields...), nil
}

func (g *Generator) inclusion(kind signature.BoundKind) string {
	if kind == signature.Excluded {
		return g.ref("RightExclusive")
	}
	return g.ref("Inclusive")
}

func (g *Generator) intRange(r signature.IntRangeValue) string {
	end := g.call("Nothing")
	if r.End.Kind != signature.Unbounded {
		end = g.call("Int", strconv.FormatInt(r.End.Value, 10))
	}
	return g.call("NewIntRange",
		g.call("Int", strconv.FormatInt(r.Start, 10)),
		g.call("Int", strconv.FormatInt(r.Step, 10)),
		end,
		g.inclusion(r.End.Kind),
	)
}

func (g *Generator) floatRange(r signature.FloatRangeValue) string {
	end := g.call("Nothing")
	if r.End.Kind != signature.Unbounded {
		end = g.float(r.End.Value)
	}
	return g.call("NewFloatRange",
		g.float(r.Start),
		g.float(r.Step),
		end,
		g.inclusion(r.End.Kind),
	)
}

func (g *Generator) cellPath(c signature.CellPathValue) string {
	members := make([]string, len(c.Members))
	for i, m := range c.Members {
		opt := strconv.FormatBool(m.Optional)
		if m.IsIndex {
			members[i] = g.call("IntMember", strconv.Itoa(m.Index), opt)
		} else {
			members[i] = g.call("StringMember", strconv.Quote(m.Name), opt)
		}
	}
	return g.call("CellPath", members...)
}
