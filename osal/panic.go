package osal

import "fmt"

// Panic aborts the process with a human-readable message. It is used at
// every documented invariant violation (double-release, join-self,
// use-after-detach, lock held at destruction, uncaught exception out of
// a thread entry, TFC dead-lock). Panic is never recovered by this
// package's own code; callers that recover it anyway are violating the
// contract documented on the call site that panicked.
func Panic(format string, args ...any) {
	panic("gpcc: invariant violation: " + fmt.Sprintf(format, args...))
}
