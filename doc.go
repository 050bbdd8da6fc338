// Package gcptr implements a tracing garbage collector exposed through a
// generic smart-pointer handle, Handle[T]. Application code allocates
// arrays of elements through a Handle and otherwise treats it like a
// pointer; a stop-the-world mark-and-sweep collector reclaims blocks,
// including ones participating in cyclic reference graphs, once no root or
// member handle reaches them anymore.
//
// The collector is embedded in-process: there is no background collector
// goroutine and no managed heap distinct from the Go heap itself.
// Collection runs synchronously, either triggered by an allocation once a
// byte threshold is crossed (Config, WithThreshold) or forced by calling
// Collect.
//
// Because Go has no ambient thread-local storage, callers thread their own
// per-goroutine construction state explicitly through a *heap.Session and
// *heap.Frame rather than relying on an implicit construction-stack lookup.
package gcptr
