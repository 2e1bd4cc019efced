package osal

// ScopeGuard runs action when it goes out of scope, unless Dismiss has
// been called. Typical use is releasing a lock or undoing a partial
// mutation if a later step in the same function fails:
//
//	g := osal.NewScopeGuard(func() { lock.ReleaseWrite() })
//	defer g.Run()
//	... fallible steps ...
//	g.Dismiss() // commit: skip the cleanup
type ScopeGuard struct {
	action    func()
	dismissed bool
}

// NewScopeGuard returns a ScopeGuard wrapping action.
func NewScopeGuard(action func()) *ScopeGuard {
	return &ScopeGuard{action: action}
}

// Dismiss disables the guard's action.
func (g *ScopeGuard) Dismiss() {
	g.dismissed = true
}

// Run executes the guard's action unless it has been dismissed. Safe to
// call multiple times (e.g. via defer after an early Run); only the
// first call after construction has effect.
func (g *ScopeGuard) Run() {
	if g.dismissed {
		return
	}

	g.dismissed = true
	g.action()
}
