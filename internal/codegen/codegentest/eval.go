// Package codegentest evaluates generated fragments in tests without
// compiling them. It understands exactly the subset of Go the generator
// emits: one immediately invoked function literal whose body builds a
// signature through the runtime package.
package codegentest

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"strconv"

	"github.com/vk/nusig/signature"
)

// SignalError is returned by Eval for a signal fragment. Msg is the message
// the type checker would report.
type SignalError struct {
	Msg string
}

func (e *SignalError) Error() string { return "signal: " + e.Msg }

var runtimeFuncs = map[string]any{
	"Build":         signature.Build,
	"Bool":          signature.Bool,
	"Int":           signature.Int,
	"Float":         signature.Float,
	"FloatBits":     signature.FloatBits,
	"Filesize":      signature.Filesize,
	"Duration":      signature.Duration,
	"String":        signature.String,
	"Glob":          signature.Glob,
	"Nothing":       signature.Nothing,
	"Binary":        signature.Binary,
	"List":          signature.List,
	"Record":        signature.Record,
	"Table":         signature.Table,
	"FixedDate":     signature.FixedDate,
	"NewIntRange":   signature.NewIntRange,
	"NewFloatRange": signature.NewFloatRange,
	"StringMember":  signature.StringMember,
	"IntMember":     signature.IntMember,
	"CellPath":      signature.CellPath,
}

var runtimeTypes = map[string]reflect.Type{
	"Signature":     reflect.TypeOf(signature.Signature{}),
	"Flag":          reflect.TypeOf(signature.Flag{}),
	"PositionalArg": reflect.TypeOf(signature.PositionalArg{}),
	"InOut":         reflect.TypeOf(signature.InOut{}),
	"ListType":      reflect.TypeOf(signature.ListType{}),
	"RecordType":    reflect.TypeOf(signature.RecordType{}),
	"TableType":     reflect.TypeOf(signature.TableType{}),
	"OneOfType":     reflect.TypeOf(signature.OneOfType{}),
	"ClosureType":   reflect.TypeOf(signature.ClosureType{}),
	"Field":         reflect.TypeOf(signature.Field{}),
	"FieldValue":    reflect.TypeOf(signature.FieldValue{}),
	"Value":         reflect.TypeOf((*signature.Value)(nil)).Elem(),
	"Type":          reflect.TypeOf((*signature.Type)(nil)).Elem(),
}

var runtimeConsts = map[string]any{
	"TypeAny":              signature.TypeAny,
	"TypeBinary":           signature.TypeBinary,
	"TypeBool":             signature.TypeBool,
	"TypeCellPath":         signature.TypeCellPath,
	"TypeClosure":          signature.TypeClosure,
	"TypeDate":             signature.TypeDate,
	"TypeDirectory":        signature.TypeDirectory,
	"TypeDuration":         signature.TypeDuration,
	"TypeError":            signature.TypeError,
	"TypeExternalArgument": signature.TypeExternalArgument,
	"TypeFilepath":         signature.TypeFilepath,
	"TypeFilesize":         signature.TypeFilesize,
	"TypeFloat":            signature.TypeFloat,
	"TypeGlob":             signature.TypeGlob,
	"TypeInt":              signature.TypeInt,
	"TypeNothing":          signature.TypeNothing,
	"TypeNumber":           signature.TypeNumber,
	"TypeRange":            signature.TypeRange,
	"TypeString":           signature.TypeString,
	"CategoryDefault":      signature.CategoryDefault,
	"CategoryCore":         signature.CategoryCore,
	"CategoryExperimental": signature.CategoryExperimental,
	"Inclusive":            signature.Inclusive,
	"RightExclusive":       signature.RightExclusive,
}

var builtinTypes = map[string]reflect.Type{
	"string": reflect.TypeOf(""),
	"byte":   reflect.TypeOf(byte(0)),
}

type evaluator struct {
	qualifier string
	vars      map[string]reflect.Value
}

// Eval runs the fragment src, whose runtime references use qualifier, and
// returns the signature it builds. A signal fragment yields a *SignalError.
func Eval(src, qualifier string) (*signature.Signature, error) {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	call, ok := expr.(*ast.CallExpr)
	if !ok || len(call.Args) != 0 {
		return nil, errors.New("fragment is not an immediately invoked function")
	}
	lit, ok := call.Fun.(*ast.FuncLit)
	if !ok {
		return nil, errors.New("fragment does not call a function literal")
	}

	e := &evaluator{qualifier: qualifier, vars: make(map[string]reflect.Value)}
	for _, stmt := range lit.Body.List {
		switch s := stmt.(type) {
		case *ast.DeclStmt:
			return nil, signalOf(s)
		case *ast.AssignStmt:
			if err := e.assign(s); err != nil {
				return nil, err
			}
		case *ast.ReturnStmt:
			if len(s.Results) != 1 {
				return nil, errors.New("return must have one result")
			}
			v, err := e.eval(s.Results[0], nil)
			if err != nil {
				return nil, err
			}
			sig, ok := v.Interface().(*signature.Signature)
			if !ok {
				return nil, fmt.Errorf("fragment returns %s", v.Type())
			}
			return sig, nil
		default:
			return nil, fmt.Errorf("unexpected statement %T", stmt)
		}
	}
	return nil, errors.New("fragment does not return")
}

func signalOf(s *ast.DeclStmt) error {
	gen, ok := s.Decl.(*ast.GenDecl)
	if !ok || len(gen.Specs) != 1 {
		return errors.New("unexpected declaration")
	}
	spec, ok := gen.Specs[0].(*ast.ValueSpec)
	if !ok || len(spec.Values) != 1 {
		return errors.New("unexpected declaration")
	}
	lit, ok := spec.Values[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return errors.New("signal without a message")
	}
	msg, err := strconv.Unquote(lit.Value)
	if err != nil {
		return err
	}
	return &SignalError{Msg: msg}
}

func (e *evaluator) assign(s *ast.AssignStmt) error {
	if len(s.Lhs) != 1 || len(s.Rhs) != 1 {
		return errors.New("only single assignments are supported")
	}
	switch lhs := s.Lhs[0].(type) {
	case *ast.Ident:
		if s.Tok != token.DEFINE {
			return fmt.Errorf("assignment to undeclared %s", lhs.Name)
		}
		v, err := e.eval(s.Rhs[0], nil)
		if err != nil {
			return err
		}
		e.vars[lhs.Name] = v
		return nil
	case *ast.SelectorExpr:
		id, ok := lhs.X.(*ast.Ident)
		if !ok {
			return errors.New("unsupported assignment target")
		}
		target, ok := e.vars[id.Name]
		if !ok {
			return fmt.Errorf("undefined: %s", id.Name)
		}
		field := reflect.Indirect(target).FieldByName(lhs.Sel.Name)
		if !field.IsValid() {
			return fmt.Errorf("no field %s", lhs.Sel.Name)
		}
		v, err := e.eval(s.Rhs[0], field.Type())
		if err != nil {
			return err
		}
		field.Set(v)
		return nil
	}
	return errors.New("unsupported assignment target")
}

// eval evaluates x. want is the type the context expects, used for untyped
// constants and elided composite literal types; it may be nil.
func (e *evaluator) eval(x ast.Expr, want reflect.Type) (reflect.Value, error) {
	switch n := x.(type) {
	case *ast.BasicLit:
		return literal(n.Kind, n.Value, want)
	case *ast.UnaryExpr:
		switch n.Op {
		case token.SUB:
			lit, ok := n.X.(*ast.BasicLit)
			if !ok {
				return reflect.Value{}, errors.New("negation of a non-literal")
			}
			return literal(lit.Kind, "-"+lit.Value, want)
		case token.AND:
			var elem reflect.Type
			if want != nil && want.Kind() == reflect.Pointer {
				elem = want.Elem()
			}
			v, err := e.eval(n.X, elem)
			if err != nil {
				return reflect.Value{}, err
			}
			p := reflect.New(v.Type())
			p.Elem().Set(v)
			return p, nil
		}
	case *ast.Ident:
		switch n.Name {
		case "true", "false":
			return reflect.ValueOf(n.Name == "true"), nil
		case "nil":
			if want == nil {
				return reflect.Value{}, errors.New("untyped nil")
			}
			return reflect.Zero(want), nil
		}
		if v, ok := e.vars[n.Name]; ok {
			return v, nil
		}
		return reflect.Value{}, fmt.Errorf("undefined: %s", n.Name)
	case *ast.SelectorExpr:
		name, err := e.runtimeName(n)
		if err != nil {
			return reflect.Value{}, err
		}
		c, ok := runtimeConsts[name]
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown constant %s", name)
		}
		return reflect.ValueOf(c), nil
	case *ast.CallExpr:
		return e.call(n)
	case *ast.CompositeLit:
		return e.composite(n, want)
	}
	return reflect.Value{}, fmt.Errorf("unsupported expression %T", x)
}

func (e *evaluator) runtimeName(sel *ast.SelectorExpr) (string, error) {
	id, ok := sel.X.(*ast.Ident)
	if !ok || id.Name != e.qualifier {
		return "", fmt.Errorf("reference %s is not qualified with %s", sel.Sel.Name, e.qualifier)
	}
	return sel.Sel.Name, nil
}

func (e *evaluator) call(c *ast.CallExpr) (reflect.Value, error) {
	sel, ok := c.Fun.(*ast.SelectorExpr)
	if !ok {
		return reflect.Value{}, errors.New("unsupported call")
	}

	var fn reflect.Value
	if id, ok := sel.X.(*ast.Ident); ok && id.Name == e.qualifier {
		f, ok := runtimeFuncs[sel.Sel.Name]
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown function %s", sel.Sel.Name)
		}
		fn = reflect.ValueOf(f)
	} else {
		recv, err := e.eval(sel.X, nil)
		if err != nil {
			return reflect.Value{}, err
		}
		fn = recv.MethodByName(sel.Sel.Name)
		if !fn.IsValid() {
			return reflect.Value{}, fmt.Errorf("no method %s on %s", sel.Sel.Name, recv.Type())
		}
	}

	ft := fn.Type()
	args := make([]reflect.Value, len(c.Args))
	for i, a := range c.Args {
		var pt reflect.Type
		if ft.IsVariadic() && i >= ft.NumIn()-1 {
			pt = ft.In(ft.NumIn() - 1).Elem()
		} else if i < ft.NumIn() {
			pt = ft.In(i)
		} else {
			return reflect.Value{}, fmt.Errorf("too many arguments to %s", sel.Sel.Name)
		}
		v, err := e.eval(a, pt)
		if err != nil {
			return reflect.Value{}, err
		}
		args[i] = v
	}
	out := fn.Call(args)
	if len(out) != 1 {
		return reflect.Value{}, fmt.Errorf("%s returns %d values", sel.Sel.Name, len(out))
	}
	return out[0], nil
}

func (e *evaluator) composite(c *ast.CompositeLit, want reflect.Type) (reflect.Value, error) {
	typ := want
	if c.Type != nil {
		t, err := e.typeOf(c.Type)
		if err != nil {
			return reflect.Value{}, err
		}
		typ = t
	}
	if typ == nil {
		return reflect.Value{}, errors.New("composite literal without a type")
	}

	switch typ.Kind() {
	case reflect.Slice:
		s := reflect.MakeSlice(typ, 0, len(c.Elts))
		for _, elt := range c.Elts {
			v, err := e.eval(elt, typ.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			s = reflect.Append(s, v)
		}
		return s, nil
	case reflect.Struct:
		v := reflect.New(typ).Elem()
		for _, elt := range c.Elts {
			kv, ok := elt.(*ast.KeyValueExpr)
			if !ok {
				return reflect.Value{}, errors.New("struct literals must use field names")
			}
			key, ok := kv.Key.(*ast.Ident)
			if !ok {
				return reflect.Value{}, errors.New("unsupported field key")
			}
			field := v.FieldByName(key.Name)
			if !field.IsValid() {
				return reflect.Value{}, fmt.Errorf("no field %s in %s", key.Name, typ)
			}
			fv, err := e.eval(kv.Value, field.Type())
			if err != nil {
				return reflect.Value{}, err
			}
			field.Set(fv)
		}
		return v, nil
	}
	return reflect.Value{}, fmt.Errorf("unsupported composite type %s", typ)
}

func (e *evaluator) typeOf(x ast.Expr) (reflect.Type, error) {
	switch n := x.(type) {
	case *ast.ArrayType:
		if n.Len != nil {
			return nil, errors.New("arrays are not supported")
		}
		elem, err := e.typeOf(n.Elt)
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil
	case *ast.StarExpr:
		elem, err := e.typeOf(n.X)
		if err != nil {
			return nil, err
		}
		return reflect.PointerTo(elem), nil
	case *ast.Ident:
		if t, ok := builtinTypes[n.Name]; ok {
			return t, nil
		}
	case *ast.SelectorExpr:
		name, err := e.runtimeName(n)
		if err != nil {
			return nil, err
		}
		if t, ok := runtimeTypes[name]; ok {
			return t, nil
		}
	}
	return nil, fmt.Errorf("unsupported type %T", x)
}

// literal converts a constant to the expected type.
func literal(kind token.Token, text string, want reflect.Type) (reflect.Value, error) {
	switch kind {
	case token.STRING:
		s, err := strconv.Unquote(text)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(s), nil
	case token.CHAR:
		s, err := strconv.Unquote(text)
		if err != nil {
			return reflect.Value{}, err
		}
		r := []rune(s)[0]
		if want != nil {
			return reflect.ValueOf(r).Convert(want), nil
		}
		return reflect.ValueOf(r), nil
	case token.INT, token.FLOAT:
		if want == nil {
			want = reflect.TypeOf(0)
			if kind == token.FLOAT {
				want = reflect.TypeOf(0.0)
			}
		}
		switch want.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(text, 0, 64)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(n).Convert(want), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			n, err := strconv.ParseUint(text, 0, 64)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(n).Convert(want), nil
		case reflect.Float32, reflect.Float64:
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(f).Convert(want), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use %s as %s", text, want)
	}
	return reflect.Value{}, fmt.Errorf("unsupported literal %s", text)
}
