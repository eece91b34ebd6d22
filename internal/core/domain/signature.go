package domain

import (
	"encoding/binary"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ShapeSignature is the lookup key of the compiled-kernel cache.
//
// Layout: [patternID, rank(in0), dims(in0)..., ..., rank(out0), dims(out0)...].
// The pattern id keeps partitions with identical shapes apart, and the rank
// prefixes keep [2,3],[4] distinct from [2],[3,4].
type ShapeSignature []int64

// SignatureKey is the comparable form of a ShapeSignature used as a map key.
type SignatureKey string

// NewShapeSignature derives the signature of a call from its concrete descriptors.
func NewShapeSignature(id PatternID, inputs, outputs []LogicalTensor) ShapeSignature {
	n := 1
	for _, t := range inputs {
		n += 1 + t.Rank()
	}
	for _, t := range outputs {
		n += 1 + t.Rank()
	}

	sig := make(ShapeSignature, 0, n)
	sig = append(sig, int64(id))
	for _, t := range inputs {
		sig = append(sig, int64(t.Rank()))
		sig = append(sig, t.Dims...)
	}
	for _, t := range outputs {
		sig = append(sig, int64(t.Rank()))
		sig = append(sig, t.Dims...)
	}
	return sig
}

// Key encodes the signature as a fixed-width little-endian byte string.
// Two signatures have equal keys if and only if they are element-wise equal.
func (s ShapeSignature) Key() SignatureKey {
	buf := make([]byte, 8*len(s))
	for i, v := range s {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
	}
	return SignatureKey(buf)
}

// Signature decodes a key back into its signature.
func (k SignatureKey) Signature() ShapeSignature {
	s := make(ShapeSignature, len(k)/8)
	for i := range s {
		s[i] = int64(binary.LittleEndian.Uint64([]byte(k[i*8 : i*8+8])))
	}
	return s
}

// Equal reports exact, order-sensitive equality.
func (s ShapeSignature) Equal(other ShapeSignature) bool {
	return slices.Equal(s, other)
}

// Fingerprint returns a 64-bit xxhash of the signature, for logs and span attributes.
func (s ShapeSignature) Fingerprint() uint64 {
	return xxhash.Sum64String(string(s.Key()))
}

func (s ShapeSignature) String() string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
