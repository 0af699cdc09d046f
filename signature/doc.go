// Package signature is the runtime representation of a command signature.
//
// Values of these types are normally not written by hand. The nusig generator
// reads a compact signature DSL and emits Go expressions that rebuild a
// *Signature through the constructors in this package, so a signature costs
// nothing to parse at run time.
//
// Types and values are closed sum types: Type is implemented by Scalar,
// ListType, RecordType and TableType; Value by the *Value structs in this
// package. Both interfaces carry an unexported marker method so no other
// package can add variants.
package signature
