package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/nusig/internal/model"
)

func (g *Generator) inputOutputTypes(m *model.SignatureModel) (string, error) {
	pairs := make([]string, len(m.InputOutputTypes))
	for i, io := range m.InputOutputTypes {
		in, err := g.typeExpr(io.In)
		if err != nil {
			return "", err
		}
		out, err := g.typeExpr(io.Out)
		if err != nil {
			return "", err
		}
		pairs[i] = "{In: " + in + ", Out: " + out + "}"
	}
	return "[]" + g.ref("InOut") + "{" + strings.Join(pairs, ", ") + "}", nil
}

func (g *Generator) flags(flags []model.Flag) (string, error) {
	elems := make([]string, len(flags))
	for i, f := range flags {
		fields := []string{"Long: " + strconv.Quote(f.Long)}
		if f.Short != 0 {
			fields = append(fields, "Short: "+strconv.QuoteRune(f.Short))
		}
		if f.ValueType != nil {
			arg, err := g.typeExpr(f.ValueType)
			if err != nil {
				return "", err
			}
			fields = append(fields, "Arg: "+arg)
		}
		fields = append(fields,
			"Desc: "+strconv.Quote(f.Description),
			"Required: "+strconv.FormatBool(f.Required),
		)
		if f.Default != nil {
			def, err := g.valueExpr(f.Default)
			if err != nil {
				return "", fmt.Errorf("default of flag --%s: %w", f.Long, err)
			}
			fields = append(fields, "Default: "+def)
		}
		elems[i] = "{" + strings.Join(fields, ", ") + "}"
	}
	return g.sliceLit("Flag", elems), nil
}

func (g *Generator) required(params []model.PositionalArg) (string, error) {
	elems := make([]string, len(params))
	for i, p := range params {
		shape, err := g.typeExpr(p.Type)
		if err != nil {
			return "", err
		}
		elems[i] = positional(p.Name, p.Description, "Shape: "+shape)
	}
	return g.sliceLit("PositionalArg", elems), nil
}

// optional emits the form the parameter was declared with. A default value
// leaves the shape to be inferred by the runtime.
func (g *Generator) optional(params []model.OptionalPositionalArg) (string, error) {
	elems := make([]string, len(params))
	for i, p := range params {
		switch f := p.Form.(type) {
		case model.DeclaredType:
			shape, err := g.typeExpr(f.Decl)
			if err != nil {
				return "", err
			}
			elems[i] = positional(p.Name, p.Description, "Shape: "+shape)
		case model.DefaultValue:
			def, err := g.valueExpr(f.Value)
			if err != nil {
				return "", fmt.Errorf("default of %s: %w", p.Name, err)
			}
			elems[i] = positional(p.Name, p.Description, "Default: "+def)
		default:
			return "", fmt.Errorf("optional positional %q has an unknown form %T", p.Name, p.Form)
		}
	}
	return g.sliceLit("PositionalArg", elems), nil
}

func (g *Generator) rest(r *model.RestArg) (string, error) {
	shape, err := g.typeExpr(r.Type)
	if err != nil {
		return "", err
	}
	return "&" + g.ref("PositionalArg") + positional(r.Name, r.Description, "Shape: "+shape), nil
}

func positional(name, desc, tail string) string {
	return "{Name: " + strconv.Quote(name) + ", Desc: " + strconv.Quote(desc) + ", " + tail + "}"
}

// sliceLit lays out one element per line.
func (g *Generator) sliceLit(elem string, elems []string) string {
	var b strings.Builder
	b.WriteString("[]" + g.ref(elem) + "{\n")
	for _, e := range elems {
		b.WriteString("\t\t" + e + ",\n")
	}
	b.WriteString("\t}")
	return b.String()
}
