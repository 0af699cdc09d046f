package signature

import (
	"math"
	"time"
)

// Value is a concrete default value of a parameter or flag.
type Value interface {
	// Type infers the Type this value satisfies.
	Type() Type
	isValue()
}

type BoolValue struct{ Val bool }
type IntValue struct{ Val int64 }
type FloatValue struct{ Val float64 }

// FilesizeValue is a size in bytes.
type FilesizeValue struct{ Val int64 }

// DurationValue is a duration in nanoseconds.
type DurationValue struct{ Val int64 }

type DateValue struct{ Val time.Time }
type StringValue struct{ Val string }
type GlobValue struct{ Val string }
type NothingValue struct{}
type BinaryValue struct{ Val []byte }

type ListValue struct{ Vals []Value }

// RecordValue keeps columns and values as parallel, ordered slices.
type RecordValue struct {
	Cols []string
	Vals []Value
}

// FieldValue is one named entry of a TableValue.
type FieldValue struct {
	Name string
	Val  Value
}

// TableValue is a table literal whose entries are kept in declaration order.
type TableValue struct {
	Fields []FieldValue
}

// ClosureValue, ErrorValue and CustomValue exist so that a signature model
// can describe them; none of them can be rebuilt from generated code.
type ClosureValue struct{ BlockID int }
type ErrorValue struct{ Err error }
type CustomValue struct {
	TypeName string
	Val      any
}

func (BoolValue) Type() Type     { return TypeBool }
func (IntValue) Type() Type      { return TypeInt }
func (FloatValue) Type() Type    { return TypeFloat }
func (FilesizeValue) Type() Type { return TypeFilesize }
func (DurationValue) Type() Type { return TypeDuration }
func (DateValue) Type() Type     { return TypeDate }
func (StringValue) Type() Type   { return TypeString }
func (GlobValue) Type() Type     { return TypeGlob }
func (NothingValue) Type() Type  { return TypeNothing }
func (BinaryValue) Type() Type   { return TypeBinary }
func (ClosureValue) Type() Type  { return TypeClosure }
func (ErrorValue) Type() Type    { return TypeError }
func (CustomValue) Type() Type   { return TypeAny }

// Type of a list is list<T> when every element has type T, a table when every
// element is a record, list<any> for mixed elements and an untyped list when
// empty.
func (l ListValue) Type() Type {
	if len(l.Vals) == 0 {
		return ListType{}
	}
	if tbl, ok := tableOf(l.Vals); ok {
		return tbl
	}
	elem := l.Vals[0].Type()
	for _, v := range l.Vals[1:] {
		if !TypesEqual(elem, v.Type()) {
			return ListType{Elem: TypeAny}
		}
	}
	return ListType{Elem: elem}
}

// tableOf derives the columns of a list of records from its first row. A
// column whose type differs between rows becomes any.
func tableOf(rows []Value) (TableType, bool) {
	first, ok := rows[0].(RecordValue)
	if !ok {
		return TableType{}, false
	}
	cols := first.Type().(RecordType).Fields
	for _, row := range rows[1:] {
		rec, ok := row.(RecordValue)
		if !ok {
			return TableType{}, false
		}
		for i := range cols {
			v, found := rec.Get(cols[i].Name)
			if !found || !TypesEqual(cols[i].Type, v.Type()) {
				cols[i].Type = TypeAny
			}
		}
	}
	return TableType{Columns: cols}, true
}

func (r RecordValue) Type() Type {
	fields := make([]Field, 0, len(r.Cols))
	for i, col := range r.Cols {
		fields = append(fields, Field{Name: col, Type: r.Vals[i].Type()})
	}
	return RecordType{Fields: fields}
}

// Get returns the value stored under col.
func (r RecordValue) Get(col string) (Value, bool) {
	for i, c := range r.Cols {
		if c == col {
			return r.Vals[i], true
		}
	}
	return nil, false
}

func (t TableValue) Type() Type {
	cols := make([]Field, 0, len(t.Fields))
	for _, f := range t.Fields {
		cols = append(cols, Field{Name: f.Name, Type: f.Val.Type()})
	}
	return TableType{Columns: cols}
}

func (BoolValue) isValue()     {}
func (IntValue) isValue()      {}
func (FloatValue) isValue()    {}
func (FilesizeValue) isValue() {}
func (DurationValue) isValue() {}
func (DateValue) isValue()     {}
func (StringValue) isValue()   {}
func (GlobValue) isValue()     {}
func (NothingValue) isValue()  {}
func (BinaryValue) isValue()   {}
func (ListValue) isValue()     {}
func (RecordValue) isValue()   {}
func (TableValue) isValue()    {}
func (ClosureValue) isValue()  {}
func (ErrorValue) isValue()    {}
func (CustomValue) isValue()   {}

func Bool(b bool) Value        { return BoolValue{Val: b} }
func Int(i int64) Value        { return IntValue{Val: i} }
func Float(f float64) Value    { return FloatValue{Val: f} }
func Filesize(n int64) Value   { return FilesizeValue{Val: n} }
func Duration(ns int64) Value  { return DurationValue{Val: ns} }
func String(s string) Value    { return StringValue{Val: s} }
func Glob(s string) Value      { return GlobValue{Val: s} }
func Nothing() Value           { return NothingValue{} }
func Binary(b []byte) Value    { return BinaryValue{Val: b} }
func List(vals ...Value) Value { return ListValue{Vals: vals} }

// FloatBits rebuilds a float from its IEEE 754 bits. Generated code uses it
// for NaN, the infinities and negative zero, which have no exact Go constant.
func FloatBits(bits uint64) Value { return FloatValue{Val: math.Float64frombits(bits)} }

// Record pairs cols with vals by position. Missing values are filled with
// nothing so the result always has one value per column.
func Record(cols []string, vals []Value) Value {
	out := RecordValue{Cols: cols, Vals: make([]Value, len(cols))}
	for i := range cols {
		if i < len(vals) && vals[i] != nil {
			out.Vals[i] = vals[i]
		} else {
			out.Vals[i] = NothingValue{}
		}
	}
	return out
}

// Table builds a table value from its ordered entries.
func Table(fields ...FieldValue) Value { return TableValue{Fields: fields} }

// FixedDate rebuilds a timestamp from its calendar fields and a UTC offset in
// seconds. The wall clock is built first, then shifted into the fixed zone.
// Out-of-range fields are normalised the way time.Date does, so the call never
// fails.
func FixedDate(year, month, day, hour, min, sec, nsec, offset int) Value {
	naive := time.Date(year, time.Month(month), day, hour, min, sec, nsec, time.UTC)
	zone := time.FixedZone("", offset)
	return DateValue{Val: naive.Add(-time.Duration(offset) * time.Second).In(zone)}
}
