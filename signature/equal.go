package signature

import (
	"bytes"
	"math"
)

// TypesEqual reports structural equality. Record and table types never
// compare equal to each other, even with identical fields.
func TypesEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	a, b = bareClosure(a), bareClosure(b)
	switch x := a.(type) {
	case Scalar:
		y, ok := b.(Scalar)
		return ok && x == y
	case ListType:
		y, ok := b.(ListType)
		return ok && TypesEqual(x.Elem, y.Elem)
	case RecordType:
		y, ok := b.(RecordType)
		return ok && fieldsEqual(x.Fields, y.Fields)
	case TableType:
		y, ok := b.(TableType)
		return ok && fieldsEqual(x.Columns, y.Columns)
	case OneOfType:
		y, ok := b.(OneOfType)
		return ok && typeSlicesEqual(x.Alts, y.Alts)
	case ClosureType:
		y, ok := b.(ClosureType)
		return ok && typeSlicesEqual(x.Params, y.Params)
	}
	return false
}

// bareClosure maps a closure without a parameter list to TypeClosure.
func bareClosure(t Type) Type {
	if c, ok := t.(ClosureType); ok && c.Params == nil {
		return TypeClosure
	}
	return t
}

func typeSlicesEqual(a, b []Type) bool {
	if len(a) != len(b) || (a == nil) != (b == nil) {
		return false
	}
	for i := range a {
		if !TypesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func fieldsEqual(a, b []Field) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !TypesEqual(a[i].Type, b[i].Type) {
			return false
		}
	}
	return true
}

// ValuesEqual reports structural equality. Floats compare by bit pattern so
// NaN equals itself and 0 differs from -0; dates compare by instant and
// offset.
func ValuesEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case BoolValue:
		y, ok := b.(BoolValue)
		return ok && x == y
	case IntValue:
		y, ok := b.(IntValue)
		return ok && x == y
	case FloatValue:
		y, ok := b.(FloatValue)
		return ok && math.Float64bits(x.Val) == math.Float64bits(y.Val)
	case FilesizeValue:
		y, ok := b.(FilesizeValue)
		return ok && x == y
	case DurationValue:
		y, ok := b.(DurationValue)
		return ok && x == y
	case DateValue:
		y, ok := b.(DateValue)
		if !ok || !x.Val.Equal(y.Val) {
			return false
		}
		_, xo := x.Val.Zone()
		_, yo := y.Val.Zone()
		return xo == yo
	case StringValue:
		y, ok := b.(StringValue)
		return ok && x == y
	case GlobValue:
		y, ok := b.(GlobValue)
		return ok && x == y
	case NothingValue:
		_, ok := b.(NothingValue)
		return ok
	case BinaryValue:
		y, ok := b.(BinaryValue)
		return ok && bytes.Equal(x.Val, y.Val)
	case IntRangeValue:
		y, ok := b.(IntRangeValue)
		return ok && x == y
	case FloatRangeValue:
		y, ok := b.(FloatRangeValue)
		return ok && floatRangesEqual(x, y)
	case CellPathValue:
		y, ok := b.(CellPathValue)
		if !ok || len(x.Members) != len(y.Members) {
			return false
		}
		for i := range x.Members {
			if x.Members[i] != y.Members[i] {
				return false
			}
		}
		return true
	case ListValue:
		y, ok := b.(ListValue)
		return ok && valueSlicesEqual(x.Vals, y.Vals)
	case RecordValue:
		y, ok := b.(RecordValue)
		if !ok || len(x.Cols) != len(y.Cols) {
			return false
		}
		for i := range x.Cols {
			if x.Cols[i] != y.Cols[i] {
				return false
			}
		}
		return valueSlicesEqual(x.Vals, y.Vals)
	case TableValue:
		y, ok := b.(TableValue)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if x.Fields[i].Name != y.Fields[i].Name || !ValuesEqual(x.Fields[i].Val, y.Fields[i].Val) {
				return false
			}
		}
		return true
	case ClosureValue:
		y, ok := b.(ClosureValue)
		return ok && x == y
	case ErrorValue:
		y, ok := b.(ErrorValue)
		if !ok || (x.Err == nil) != (y.Err == nil) {
			return false
		}
		return x.Err == nil || x.Err.Error() == y.Err.Error()
	case CustomValue:
		y, ok := b.(CustomValue)
		return ok && x.TypeName == y.TypeName
	}
	return false
}

func floatRangesEqual(x, y FloatRangeValue) bool {
	bits := math.Float64bits
	return bits(x.Start) == bits(y.Start) &&
		bits(x.Step) == bits(y.Step) &&
		x.End.Kind == y.End.Kind &&
		(x.End.Kind == Unbounded || bits(x.End.Value) == bits(y.End.Value))
}

func valueSlicesEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ValuesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
