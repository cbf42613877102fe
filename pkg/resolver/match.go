package resolver

import "fmt"

// Match describes one function or method found by a backend.
type Match struct {
	// Name is the symbol, function or method name.
	Name string `json:"name"`

	// Address is the absolute virtual address in the target process.
	Address uint64 `json:"address"`

	// Size is the extent of the function in bytes, nil when unknown.
	Size *uint64 `json:"size,omitempty"`

	// Module is the path of the containing module, empty when not applicable.
	Module string `json:"module,omitempty"`
}

// HasSize reports whether the backend could determine the function's extent.
func (m Match) HasSize() bool {
	return m.Size != nil
}

// SizeOr returns the size, or def when it is unknown.
func (m Match) SizeOr(def uint64) uint64 {
	if m.Size == nil {
		return def
	}
	return *m.Size
}

// String formats the match for logs and plain output.
func (m Match) String() string {
	if m.Module != "" {
		return fmt.Sprintf("%s!%s @ 0x%x", m.Module, m.Name, m.Address)
	}
	return fmt.Sprintf("%s @ 0x%x", m.Name, m.Address)
}

// SizeOf returns a pointer suitable for Match.Size, or nil for a zero size.
func SizeOf(n uint64) *uint64 {
	if n == 0 {
		return nil
	}
	return &n
}
