// Package driver wires the literal decoder, the signature parser and the code
// generator into the single operation a directive performs.
package driver

import (
	"context"
	"fmt"

	"github.com/vk/nusig/internal/codegen"
	"github.com/vk/nusig/internal/ctxlog"
	"github.com/vk/nusig/internal/dsl"
	"github.com/vk/nusig/internal/literal"
	"github.com/vk/nusig/internal/model"
)

// Make turns the argument text of one directive into a fragment. It never
// fails: any error becomes a signal fragment with Err set.
func Make(ctx context.Context, args string, opts codegen.Options) (frag codegen.Fragment) {
	gen := codegen.New(opts)
	logger := ctxlog.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("make_signature panicked: %v", r)
			logger.Error("Recovered from panic while generating a signature.", "error", err)
			frag = gen.Signal(err)
		}
	}()

	m, err := Model(args)
	if err != nil {
		logger.Debug("Signature rejected.", "error", err)
		return gen.Signal(err)
	}

	frag = gen.Generate(m.Name, m)
	if frag.Err != nil {
		logger.Debug("Signature cannot be lowered.", "name", m.Name, "error", frag.Err)
		return frag
	}
	logger.Debug("Signature generated.", "name", m.Name)
	return frag
}

// Model decodes and parses the argument text without generating code.
func Model(args string) (*model.SignatureModel, error) {
	text, err := Text(args)
	if err != nil {
		return nil, err
	}
	return dsl.ParseString(dsl.DefaultFilename, text)
}

// Text extracts and decodes the single literal in args.
func Text(args string) (string, error) {
	token, err := literal.SplitToken(args)
	if err != nil {
		return "", err
	}
	return literal.Decode(token)
}
