package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/nusig/signature"
)

var scalarIdents = map[signature.Scalar]string{
	signature.TypeAny:              "TypeAny",
	signature.TypeBinary:           "TypeBinary",
	signature.TypeBool:             "TypeBool",
	signature.TypeCellPath:         "TypeCellPath",
	signature.TypeClosure:          "TypeClosure",
	signature.TypeDate:             "TypeDate",
	signature.TypeDirectory:        "TypeDirectory",
	signature.TypeDuration:         "TypeDuration",
	signature.TypeError:            "TypeError",
	signature.TypeExternalArgument: "TypeExternalArgument",
	signature.TypeFilepath:         "TypeFilepath",
	signature.TypeFilesize:         "TypeFilesize",
	signature.TypeFloat:            "TypeFloat",
	signature.TypeGlob:             "TypeGlob",
	signature.TypeInt:              "TypeInt",
	signature.TypeNothing:          "TypeNothing",
	signature.TypeNumber:           "TypeNumber",
	signature.TypeRange:            "TypeRange",
	signature.TypeString:           "TypeString",
}

func (g *Generator) typeExpr(t signature.Type) (string, error) {
	switch x := t.(type) {
	case signature.Scalar:
		ident, ok := scalarIdents[x]
		if !ok {
			return "", fmt.Errorf("unknown scalar type %d", int(x))
		}
		return g.ref(ident), nil
	case signature.ListType:
		if x.Elem == nil {
			return g.ref("ListType") + "{}", nil
		}
		elem, err := g.typeExpr(x.Elem)
		if err != nil {
			return "", err
		}
		return g.ref("ListType") + "{Elem: " + elem + "}", nil
	case signature.RecordType:
		return g.fieldsType("RecordType", "Fields", x.Fields)
	case signature.TableType:
		return g.fieldsType("TableType", "Columns", x.Columns)
	case signature.OneOfType:
		return g.typesType("OneOfType", "Alts", x.Alts)
	case signature.ClosureType:
		if x.Params == nil {
			return g.ref("TypeClosure"), nil
		}
		return g.typesType("ClosureType", "Params", x.Params)
	case nil:
		return "", fmt.Errorf("missing type")
	}
	return "", fmt.Errorf("unknown type %T", t)
}

func (g *Generator) fieldsType(typeName, key string, fields []signature.Field) (string, error) {
	if len(fields) == 0 {
		return g.ref(typeName) + "{}", nil
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		ft, err := g.typeExpr(f.Type)
		if err != nil {
			return "", err
		}
		parts[i] = "{Name: " + strconv.Quote(f.Name) + ", Type: " + ft + "}"
	}
	return g.ref(typeName) + "{" + key + ": []" + g.ref("Field") + "{" + strings.Join(parts, ", ") + "}}", nil
}

func (g *Generator) typesType(typeName, key string, types []signature.Type) (string, error) {
	parts := make([]string, len(types))
	for i, t := range types {
		expr, err := g.typeExpr(t)
		if err != nil {
			return "", err
		}
		parts[i] = expr
	}
	return g.ref(typeName) + "{" + key + ": []" + g.ref("Type") + "{" + strings.Join(parts, ", ") + "}}", nil
}
