package signature

// Category groups commands in help output.
type Category int

const (
	CategoryDefault Category = iota
	CategoryCore
	CategoryExperimental
)

func (c Category) String() string {
	switch c {
	case CategoryCore:
		return "core"
	case CategoryExperimental:
		return "experimental"
	default:
		return "default"
	}
}

// InOut is one accepted pipeline input type and the output it produces.
type InOut struct {
	In  Type
	Out Type
}

// PositionalArg is a parameter consumed by position.
//
// An optional positional carries either a Shape or a Default, never both;
// ShapeOf resolves the effective shape.
type PositionalArg struct {
	Name    string
	Desc    string
	Shape   Type
	Default Value
	// VarID binds the parameter to a variable slot; generated code leaves it nil.
	VarID *int
}

// ShapeOf returns the declared shape, the shape inferred from the default, or
// any.
func (p PositionalArg) ShapeOf() Type {
	switch {
	case p.Shape != nil:
		return p.Shape
	case p.Default != nil:
		return p.Default.Type()
	default:
		return TypeAny
	}
}

// Flag is a named parameter. A flag without Arg is a boolean switch.
type Flag struct {
	Long     string
	Short    rune
	Arg      Type
	Desc     string
	Required bool
	Default  Value
	VarID    *int
}

// Signature describes how a command is called.
type Signature struct {
	Name               string
	Description        string
	ExtraDescription   string
	Category           Category
	InputOutputTypes   []InOut
	RequiredPositional []PositionalArg
	OptionalPositional []PositionalArg
	RestPositional     *PositionalArg
	Named              []Flag
}

const (
	DefaultRestName = "args"
	DefaultRestDesc = "all other arguments to the command"
)

// DefaultRest is the rest parameter every external signature accepts unless
// it declares its own.
func DefaultRest() *PositionalArg {
	return &PositionalArg{
		Name:  DefaultRestName,
		Desc:  DefaultRestDesc,
		Shape: TypeExternalArgument,
	}
}

// Build starts a signature for name. The result already carries DefaultRest.
func Build(name string) *Signature {
	return &Signature{
		Name:           name,
		RestPositional: DefaultRest(),
	}
}

func (s *Signature) WithDescription(desc string) *Signature {
	s.Description = desc
	return s
}

func (s *Signature) WithExtraDescription(desc string) *Signature {
	s.ExtraDescription = desc
	return s
}

func (s *Signature) WithCategory(c Category) *Signature {
	s.Category = c
	return s
}

func (s *Signature) WithInputOutputTypes(types []InOut) *Signature {
	s.InputOutputTypes = types
	return s
}

// FindFlag looks a flag up by its long name.
func (s *Signature) FindFlag(long string) (*Flag, bool) {
	for i := range s.Named {
		if s.Named[i].Long == long {
			return &s.Named[i], true
		}
	}
	return nil, false
}
