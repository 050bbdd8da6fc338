//go:build !debug_gcptr

package gcptr

// DebugValidate no-ops outside the debug_gcptr build.
func DebugValidate(validatable Validatable) {
}
