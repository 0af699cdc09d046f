package signature

import (
	"strings"
)

// Kind identifies a Type variant.
type Kind int

const (
	KindAny Kind = iota
	KindBinary
	KindBool
	KindCellPath
	KindClosure
	KindDate
	KindDirectory
	KindDuration
	KindError
	KindExternalArgument
	KindFilepath
	KindFilesize
	KindFloat
	KindGlob
	KindInt
	KindNothing
	KindNumber
	KindRange
	KindString
	KindList
	KindRecord
	KindTable
	KindOneOf
)

var kindNames = map[Kind]string{
	KindAny:              "any",
	KindBinary:           "binary",
	KindBool:             "bool",
	KindCellPath:         "cell-path",
	KindClosure:          "closure",
	KindDate:             "datetime",
	KindDirectory:        "directory",
	KindDuration:         "duration",
	KindError:            "error",
	KindExternalArgument: "external",
	KindFilepath:         "path",
	KindFilesize:         "filesize",
	KindFloat:            "float",
	KindGlob:             "glob",
	KindInt:              "int",
	KindNothing:          "nothing",
	KindNumber:           "number",
	KindRange:            "range",
	KindString:           "string",
	KindList:             "list",
	KindRecord:           "record",
	KindTable:            "table",
	KindOneOf:            "oneof",
}

// String returns the DSL keyword for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Type is the declared shape of a parameter or of pipeline input and output.
type Type interface {
	Kind() Kind
	String() string
	isType()
}

// Scalar is a Type without parameters.
type Scalar Kind

func (s Scalar) Kind() Kind     { return Kind(s) }
func (s Scalar) String() string { return Kind(s).String() }
func (Scalar) isType()          {}

const (
	TypeAny              = Scalar(KindAny)
	TypeBinary           = Scalar(KindBinary)
	TypeBool             = Scalar(KindBool)
	TypeCellPath         = Scalar(KindCellPath)
	TypeClosure          = Scalar(KindClosure)
	TypeDate             = Scalar(KindDate)
	TypeDirectory        = Scalar(KindDirectory)
	TypeDuration         = Scalar(KindDuration)
	TypeError            = Scalar(KindError)
	TypeExternalArgument = Scalar(KindExternalArgument)
	TypeFilepath         = Scalar(KindFilepath)
	TypeFilesize         = Scalar(KindFilesize)
	TypeFloat            = Scalar(KindFloat)
	TypeGlob             = Scalar(KindGlob)
	TypeInt              = Scalar(KindInt)
	TypeNothing          = Scalar(KindNothing)
	TypeNumber           = Scalar(KindNumber)
	TypeRange            = Scalar(KindRange)
	TypeString           = Scalar(KindString)
)

// Field is a named member of a record or a column of a table.
type Field struct {
	Name string
	Type Type
}

// ListType is a list. A nil Elem is an untyped list.
type ListType struct {
	Elem Type
}

func (ListType) Kind() Kind { return KindList }
func (ListType) isType()    {}

func (l ListType) String() string {
	if l.Elem == nil {
		return "list"
	}
	return "list<" + l.Elem.String() + ">"
}

// RecordType is a record with ordered fields.
type RecordType struct {
	Fields []Field
}

func (RecordType) Kind() Kind       { return KindRecord }
func (RecordType) isType()          {}
func (r RecordType) String() string { return "record" + fieldsString(r.Fields) }

// TableType is a table with ordered columns.
type TableType struct {
	Columns []Field
}

func (TableType) Kind() Kind       { return KindTable }
func (TableType) isType()          {}
func (t TableType) String() string { return "table" + fieldsString(t.Columns) }

// OneOfType accepts a value of any of its alternatives.
type OneOfType struct {
	Alts []Type
}

func (OneOfType) Kind() Kind { return KindOneOf }
func (OneOfType) isType()    {}

func (o OneOfType) String() string {
	return "oneof<" + typesString(o.Alts) + ">"
}

// ClosureType is a closure with declared parameter types. Nil Params is a
// closure without a parameter list, equal to TypeClosure.
type ClosureType struct {
	Params []Type
}

func (ClosureType) Kind() Kind { return KindClosure }
func (ClosureType) isType()    {}

func (c ClosureType) String() string {
	if c.Params == nil {
		return "closure"
	}
	return "closure(" + typesString(c.Params) + ")"
}

func typesString(types []Type) string {
	parts := make([]string, len(types))
	for i, t := range types {
		if t == nil {
			parts[i] = "any"
			continue
		}
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

func fieldsString(fields []Field) string {
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('<')
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteKey(f.Name))
		b.WriteString(": ")
		if f.Type == nil {
			b.WriteString("any")
		} else {
			b.WriteString(f.Type.String())
		}
	}
	b.WriteByte('>')
	return b.String()
}

// quoteKey renders a record key as a bare word when possible.
func quoteKey(name string) string {
	if IsBareWord(name) {
		return name
	}
	return QuoteString(name)
}

// IsBareWord reports whether s can be written without quotes in the DSL.
func IsBareWord(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case (r >= '0' && r <= '9') || r == '-':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
