//go:build debug_gcptr

package gcptr

// DebugValidate calls Validate and panics if it returns an error. No-ops
// unless the debug_gcptr build tag is present.
func DebugValidate(validatable Validatable) {
	if err := validatable.Validate(); err != nil {
		panic(err)
	}
}
