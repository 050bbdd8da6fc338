package gcptr

// Validatable is implemented by types that can check their own internal
// consistency. DebugValidate uses it to turn a Validate failure into a
// panic under the debug_gcptr build tag.
type Validatable interface {
	Validate() error
}
