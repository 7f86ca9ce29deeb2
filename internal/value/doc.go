// Package value provides the closed value vocabulary shared by every
// switchblade package.
//
// Two sealed unions live here:
//   - Primitive: what the backend stores (Text, Integer, Real, Blob, Null)
//   - Native: what records carry (String, Int, Uint, Float, Bytes,
//     Identifier, Interpreted, Nil)
//
// Encode and Decode map between them with exhaustive type switches. This
// package imports nothing internal.
//
// Identifier asymmetry:
// Identifiers bind as 16-byte blobs but their columns are declared TEXT.
// Decode only turns a blob back into an Identifier when the caller passes
// KindIdentifier, which the schema registry records per column. Existing
// databases depend on this layout.
//
// Unsigned boundary:
// Uint values above math.MaxInt64 wrap to negative Integers. Decode with
// KindUint restores the bits, but backend ordering and comparison of those
// values are wrong.
package value
