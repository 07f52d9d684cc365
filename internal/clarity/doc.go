// Package clarity encodes and decodes Clarity values, the typed values that
// Stacks smart contracts accept as arguments and return from read-only calls.
//
// # Wire format
//
// Every value starts with a one-byte type prefix (see Type). Integers are
// 16-byte big-endian (two's complement for int), variable-length payloads
// carry a 4-byte big-endian length, and tuple members are name-sorted with a
// one-byte name length. Deserialize rejects trailing bytes, unsorted tuples,
// invalid UTF-8 and nesting deeper than 32 levels.
//
// # Addresses
//
// Principals are rendered with c32check: "S", one c32 character for the
// version byte, then the c32 encoding of hash160 followed by the first four
// bytes of sha256(sha256(version || hash160)). ParseAddress accepts the c32
// aliases (lower case, O for 0, I and L for 1) and verifies the checksum.
//
// # Native trees
//
// Native flattens a Value into maps, slices and scalars for callers that want
// field access by name rather than a typed walk.
package clarity
