// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the structured representation of a single command
// signature as produced by the DSL parser and consumed by the code generator.
//
// # Core Concepts
//
//   - SignatureModel: the root. It holds the command name, its descriptions,
//     the accepted pipeline input/output type pairs and every parameter kind
//     in declaration order.
//
//   - PositionalArg / OptionalPositionalArg / RestArg: parameters consumed by
//     position. An optional positional has exactly one Form: either a
//     DeclaredType or a DefaultValue whose type is inferred from the value.
//
//   - Flag: a named parameter with an optional single-character alias. A flag
//     without a value type is a boolean switch.
//
// Nested type and value trees are the closed sum types of the public
// signature package, so the generator lowers exactly the algebra the emitted
// code rebuilds.
//
// Why a separate model package?
//
// The parser and the generator never talk to each other directly. The model
// is the contract between them: the parser is the only writer, the generator
// reads it once and the model is discarded. Keeping it free of parsing and
// emitting concerns lets either side be tested against hand-built models.
package model
