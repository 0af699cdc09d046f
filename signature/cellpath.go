package signature

// PathMember is one step of a cell path: a column name or a row index.
type PathMember struct {
	Name     string
	Index    int
	IsIndex  bool
	Optional bool
}

// CellPathValue addresses nested data, e.g. $.items.0?.name.
type CellPathValue struct {
	Members []PathMember
}

func (CellPathValue) Type() Type { return TypeCellPath }
func (CellPathValue) isValue()   {}

func StringMember(name string, optional bool) PathMember {
	return PathMember{Name: name, Optional: optional}
}

func IntMember(index int, optional bool) PathMember {
	return PathMember{Index: index, IsIndex: true, Optional: optional}
}

func CellPath(members ...PathMember) Value {
	return CellPathValue{Members: members}
}
