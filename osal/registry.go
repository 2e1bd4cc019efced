package osal

import "sync"

// threadRegistry is the process-wide, introspection-only singleton
// tracking every live Thread (spec.md §4.1 "Thread registry", §9
// "Global singletons"). No behavior depends on its contents; it exists
// so tooling can enumerate threads.
type threadRegistry struct {
	mu      sync.Mutex
	threads map[*Thread]struct{}
}

var registry = &threadRegistry{threads: make(map[*Thread]struct{})}

func (r *threadRegistry) register(t *Thread) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.threads[t] = struct{}{}
}

func (r *threadRegistry) unregister(t *Thread) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.threads, t)
}

// RegistryCount returns the number of currently registered Thread instances.
func RegistryCount() int {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	return len(registry.threads)
}

// RegistryNames returns the diagnostic names of every currently registered
// Thread, in unspecified order.
func RegistryNames() []string {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	names := make([]string, 0, len(registry.threads))
	for th := range registry.threads {
		names = append(names, th.Name())
	}

	return names
}

// Unregister removes t from the process-wide registry. Call this from
// t's owner when t is destroyed (mirrors the C++ destructor's
// unregistration); Go's GC does not call it automatically because the
// registry itself keeps t reachable.
func (t *Thread) Unregister() {
	registry.unregister(t)
}
