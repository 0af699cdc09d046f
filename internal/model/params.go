// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the parameter kinds of a signature.
//
// Why is OptionalForm a sum type?
//
// An optional positional either declares a type and has no default, or has a
// default whose type is inferred from the value. Modelling both as nullable
// fields would allow "both" and "neither", which the generator would then
// have to guess about. A closed interface with two variants makes those
// states unrepresentable.
package model

import (
	"fmt"

	"github.com/vk/nusig/signature"
)

// PositionalArg is a required positional parameter.
type PositionalArg struct {
	Name        string
	Description string
	Type        signature.Type
}

// OptionalForm is implemented by DeclaredType and DefaultValue only.
type OptionalForm interface {
	// Type is the declared or inferred type of the parameter.
	Type() signature.Type
	isOptionalForm()
}

// DeclaredType is an optional positional without a default.
type DeclaredType struct {
	Decl signature.Type
}

func (d DeclaredType) Type() signature.Type { return d.Decl }
func (DeclaredType) isOptionalForm()        {}

// DefaultValue is an optional positional with a default value.
type DefaultValue struct {
	Value signature.Value
}

func (d DefaultValue) Type() signature.Type {
	if d.Value == nil {
		return nil
	}
	return d.Value.Type()
}
func (DefaultValue) isOptionalForm() {}

// OptionalPositionalArg is an optional positional parameter.
type OptionalPositionalArg struct {
	Name        string
	Description string
	Form        OptionalForm
}

func (p OptionalPositionalArg) validate() error {
	switch f := p.Form.(type) {
	case DeclaredType:
		if f.Decl == nil {
			return fmt.Errorf("optional positional %q declares no type", p.Name)
		}
	case DefaultValue:
		if f.Value == nil {
			return fmt.Errorf("optional positional %q has an empty default", p.Name)
		}
	default:
		return fmt.Errorf("optional positional %q has neither a type nor a default", p.Name)
	}
	return nil
}

// RestArg collects the remaining positional arguments.
type RestArg struct {
	Name        string
	Description string
	Type        signature.Type
}

// DefaultRest returns the rest parameter an external signature accepts when
// it declares none.
func DefaultRest() *RestArg {
	return &RestArg{
		Name:        signature.DefaultRestName,
		Description: signature.DefaultRestDesc,
		Type:        signature.TypeExternalArgument,
	}
}

// IsDefault reports whether r is exactly DefaultRest.
func (r *RestArg) IsDefault() bool {
	if r == nil {
		return false
	}
	d := DefaultRest()
	return r.Name == d.Name &&
		r.Description == d.Description &&
		signature.TypesEqual(r.Type, d.Type)
}

// Flag is a named parameter.
type Flag struct {
	Long string
	// Short is the single-character alias, 0 when absent.
	Short rune
	// ValueType is nil for a boolean switch.
	ValueType   signature.Type
	Description string
	Required    bool
	Default     signature.Value
}

// IsSwitch reports whether the flag takes no value.
func (f Flag) IsSwitch() bool { return f.ValueType == nil }
