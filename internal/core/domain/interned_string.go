package domain

import "unique"

// InternedString is a value object that wraps a unique.Handle[string].
// Op kinds, data types and pattern names repeat across every partition a worker
// sees, so they are interned once per process.
type InternedString struct {
	h unique.Handle[string]
}

// NewInternedString creates a new InternedString from a string.
func NewInternedString(s string) InternedString {
	return InternedString{
		h: unique.Make(s),
	}
}

// InternStrings interns every element of strs.
func InternStrings(strs []string) []InternedString {
	if len(strs) == 0 {
		return nil
	}
	res := make([]InternedString, len(strs))
	for i, s := range strs {
		res[i] = NewInternedString(s)
	}
	return res
}

// String returns the underlying string value.
func (is InternedString) String() string {
	var zero unique.Handle[string]
	if is.h == zero {
		return ""
	}
	return is.h.Value()
}

// IsZero reports whether the InternedString was never assigned.
func (is InternedString) IsZero() bool {
	var zero unique.Handle[string]
	return is.h == zero
}

// MarshalText implements encoding.TextMarshaler.
func (is InternedString) MarshalText() ([]byte, error) {
	return []byte(is.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (is *InternedString) UnmarshalText(text []byte) error {
	is.h = unique.Make(string(text))
	return nil
}
