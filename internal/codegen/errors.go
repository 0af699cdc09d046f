package codegen

import "fmt"

// UnsupportedValueError reports a value kind that has no Go rendering.
type UnsupportedValueError struct {
	Kind string
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("make_signature cannot generate code for %s values", e.Kind)
}
