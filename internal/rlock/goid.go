package rlock

import (
	"runtime"
	"strconv"
)

// goroutineID extracts the calling goroutine's id from the header line of
// runtime.Stack's output ("goroutine 37 [running]: ..."). This is scoped
// narrowly to identifying the owner of a re-entrant Mutex and is not used
// elsewhere in this module as a general thread-local-storage mechanism; the
// construction stack and new-blocks list are threaded explicitly via
// heap.Session/heap.Frame instead of relying on goroutine identity.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	const prefix = "goroutine "
	if len(b) > len(prefix) && string(b[:len(prefix)]) == prefix {
		b = b[len(prefix):]
	}

	i := 0
	for i < len(b) && b[i] != ' ' {
		i++
	}

	id, err := strconv.ParseInt(string(b[:i]), 10, 64)
	if err != nil {
		return -1
	}
	return id
}
