// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines SignatureModel, the root of the model, together with the
// validation that guards the generator against structurally broken input.
package model

import (
	"errors"
	"fmt"

	"github.com/vk/nusig/signature"
)

// SignatureModel is one parsed command signature. Every list keeps the
// declaration order, which is observable in the generated code.
type SignatureModel struct {
	Name             string
	Description      string
	ExtraDescription string
	InputOutputTypes []signature.InOut

	RequiredPositional []PositionalArg
	OptionalPositional []OptionalPositionalArg
	RestPositional     *RestArg
	Named              []Flag
}

// New creates an empty model for name.
func New(name string) *SignatureModel {
	return &SignatureModel{Name: name}
}

// Validate checks the structural invariants the generator relies on. It does
// not look at value kinds: unrepresentable values are the generator's call.
func (m *SignatureModel) Validate() error {
	if m == nil {
		return errors.New("signature model is nil")
	}
	if m.Name == "" {
		return errors.New("signature name must not be empty")
	}
	for i, io := range m.InputOutputTypes {
		if io.In == nil || io.Out == nil {
			return fmt.Errorf("input/output pair %d is missing a type", i)
		}
	}
	for _, p := range m.RequiredPositional {
		if p.Type == nil {
			return fmt.Errorf("required positional %q has no type", p.Name)
		}
	}
	for _, p := range m.OptionalPositional {
		if err := p.validate(); err != nil {
			return err
		}
	}
	if r := m.RestPositional; r != nil && r.Type == nil {
		return fmt.Errorf("rest positional %q has no type", r.Name)
	}
	for _, f := range m.Named {
		if f.Long == "" && f.Short == 0 {
			return errors.New("flag has neither a long name nor a short alias")
		}
	}
	return nil
}
