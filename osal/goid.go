package osal

import (
	"bytes"
	"runtime"
	"strconv"
)

// goroutineID returns an identifier for the calling goroutine.
//
// Go deliberately does not expose goroutine IDs through the runtime
// package. The OSAL layer needs *some* notion of "the calling thread"
// to detect Mutex double-unlock and Thread.Join-from-self, both of
// which are invariant violations per spec.md §7. Parsing the leading
// "goroutine N [...]" line out of a single-goroutine stack dump is the
// standard workaround for this in Go codebases that need it for
// diagnostics rather than scheduling decisions; it is never used here
// to make scheduling or correctness decisions, only to populate an
// owner field for misuse detection.
func goroutineID() int64 {
	var buf [64]byte

	n := runtime.Stack(buf[:], false)
	line := buf[:n]

	const prefix = "goroutine "

	if !bytes.HasPrefix(line, []byte(prefix)) {
		return 0
	}

	line = line[len(prefix):]

	end := bytes.IndexByte(line, ' ')
	if end < 0 {
		return 0
	}

	id, err := strconv.ParseInt(string(line[:end]), 10, 64)
	if err != nil {
		return 0
	}

	return id
}
