package cood

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gpcc-project/gpcc/osal"
)

// ObjectDictionary is a registry mapping a 16-bit index to an [Object].
// Access to the registry itself (as opposed to the data represented by
// an individual object) is serialized by an internal reader/writer
// lock: [ObjectDictionary.Add] and [ObjectDictionary.Remove] take the
// write lock; [ObjectDictionary.GetObject] and
// [ObjectDictionary.GetFirstObject] take the read lock and hand it off
// to the returned [ObjectPtr], which holds it until released.
type ObjectDictionary struct {
	lock    *osal.RWLock
	objects map[uint16]Object
	sorted  []uint16 // kept sorted ascending, mirrors map keys
}

// NewObjectDictionary returns an empty, ready-to-use registry.
func NewObjectDictionary() *ObjectDictionary {
	return &ObjectDictionary{
		lock:    osal.NewRWLock(),
		objects: make(map[uint16]Object),
	}
}

// ownerRegistry tracks which ObjectDictionary, if any, currently owns a
// given Object, so Add can refuse to register one object under two
// dictionaries at once. An Object is identified by interface identity
// (the underlying pointer), which is comparable in Go.
var (
	ownerRegistryMu sync.Mutex
	ownerRegistry   = make(map[Object]*ObjectDictionary)
)

// Add registers obj under index. It fails if index is already in use in
// this dictionary or if obj is already registered in any dictionary
// (including this one, under a different index).
func (od *ObjectDictionary) Add(t *osal.Thread, obj Object, index uint16) error {
	od.lock.WriteLock(t)
	defer od.lock.ReleaseWrite()

	if _, exists := od.objects[index]; exists {
		return fmt.Errorf("cood.ObjectDictionary.Add: index 0x%04X is already in use", index)
	}

	ownerRegistryMu.Lock()
	defer ownerRegistryMu.Unlock()

	if _, exists := ownerRegistry[obj]; exists {
		return fmt.Errorf("cood.ObjectDictionary.Add: object %q is already registered in a dictionary", obj.GetObjectName())
	}

	od.objects[index] = obj
	od.sorted = insertSorted(od.sorted, index)
	ownerRegistry[obj] = od

	return nil
}

// Remove unregisters the object at index. It blocks (and, under a TFC
// simulated-clock build, fails a deadlock check) until every
// [ObjectPtr] referencing an object owned by this dictionary has been
// released, because each such ObjectPtr holds the dictionary's read
// lock for its lifetime.
func (od *ObjectDictionary) Remove(t *osal.Thread, index uint16) error {
	od.lock.WriteLock(t)
	defer od.lock.ReleaseWrite()

	obj, exists := od.objects[index]
	if !exists {
		return fmt.Errorf("cood.ObjectDictionary.Remove: index 0x%04X does not exist", index)
	}

	delete(od.objects, index)
	od.sorted = removeSorted(od.sorted, index)

	ownerRegistryMu.Lock()
	delete(ownerRegistry, obj)
	ownerRegistryMu.Unlock()

	return nil
}

// GetNumberOfObjects returns the current number of registered objects.
func (od *ObjectDictionary) GetNumberOfObjects(t *osal.Thread) int {
	od.lock.ReadLock(t)
	defer od.lock.ReleaseRead()

	return len(od.objects)
}

// GetObject looks up index and, if present, returns an [ObjectPtr]
// holding the dictionary's read lock until released. The second
// return value is false if index does not exist, in which case the
// read lock is not retained.
func (od *ObjectDictionary) GetObject(t *osal.Thread, index uint16) (ObjectPtr, bool) {
	od.lock.ReadLock(t)

	obj, exists := od.objects[index]
	if !exists {
		od.lock.ReleaseRead()

		return ObjectPtr{}, false
	}

	return ObjectPtr{od: od, index: index, obj: obj}, true
}

// GetFirstObject returns an ObjectPtr to the lowest-indexed registered
// object, or false if the dictionary is empty.
func (od *ObjectDictionary) GetFirstObject(t *osal.Thread) (ObjectPtr, bool) {
	od.lock.ReadLock(t)

	if len(od.sorted) == 0 {
		od.lock.ReleaseRead()

		return ObjectPtr{}, false
	}

	index := od.sorted[0]

	return ObjectPtr{od: od, index: index, obj: od.objects[index]}, true
}

func insertSorted(s []uint16, v uint16) []uint16 {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= v })
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v

	return s
}

func removeSorted(s []uint16, v uint16) []uint16 {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= v })
	if i < len(s) && s[i] == v {
		s = append(s[:i], s[i+1:]...)
	}

	return s
}

// ObjectPtr is a handle to an object registered in an ObjectDictionary.
// While valid (the zero value and a released ObjectPtr are not), it
// holds the owning dictionary's read lock, which blocks any concurrent
// [ObjectDictionary.Remove] of an object in that dictionary. Callers
// must call [ObjectPtr.Release] exactly once for every ObjectPtr they
// obtain that turns out to be valid - Go has no destructor to do this
// automatically.
type ObjectPtr struct {
	od       *ObjectDictionary
	index    uint16
	obj      Object
	released bool
}

// Valid reports whether the pointer currently references an object.
func (p *ObjectPtr) Valid() bool {
	return p.obj != nil && !p.released
}

// Object returns the referenced object. Panics if the pointer is not
// valid.
func (p *ObjectPtr) Object() Object {
	if !p.Valid() {
		osal.Panic("cood.ObjectPtr.Object: pointer does not reference an object")
	}

	return p.obj
}

// Index returns the referenced object's index. Panics if the pointer is
// not valid.
func (p *ObjectPtr) Index() uint16 {
	if !p.Valid() {
		osal.Panic("cood.ObjectPtr.Index: pointer does not reference an object")
	}

	return p.index
}

// Clone returns a second, independent ObjectPtr to the same object,
// acquiring its own read lock on the dictionary. Cloning an invalid
// pointer returns another invalid pointer. The clone must be released
// independently of the original.
func (p *ObjectPtr) Clone(t *osal.Thread) ObjectPtr {
	if !p.Valid() {
		return ObjectPtr{}
	}

	p.od.lock.ReadLock(t)

	return ObjectPtr{od: p.od, index: p.index, obj: p.obj}
}

// Release drops the dictionary read lock held by this pointer, if any,
// and marks the pointer invalid. Release is idempotent.
func (p *ObjectPtr) Release() {
	if p.released || p.obj == nil {
		p.released = true

		return
	}

	p.released = true
	p.od.lock.ReleaseRead()
}

// Next advances p in place to the next-higher-indexed object in the
// same dictionary, reusing the read lock already held. It returns false
// (and releases the lock, invalidating p) if there is no next object.
// Next on an already-invalid pointer panics.
func (p *ObjectPtr) Next() bool {
	if !p.Valid() {
		osal.Panic("cood.ObjectPtr.Next: pointer does not reference an object")
	}

	od := p.od

	i := sort.Search(len(od.sorted), func(i int) bool { return od.sorted[i] > p.index })
	if i >= len(od.sorted) {
		p.Release()

		return false
	}

	p.index = od.sorted[i]
	p.obj = od.objects[p.index]

	return true
}
