package hostio

import (
	"iter"
	"reflect"
	"slices"
	"sync"
	"unsafe"
	"weak"
)

// entry references one subscriber. Pointer subscribers are referenced weakly
// through their address and dynamic type. Anything else is held in strong.
type entry struct {
	ref    weak.Pointer[byte]
	typ    reflect.Type
	strong Subscriber
}

func newEntry(s Subscriber) entry {
	v := reflect.ValueOf(s)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Type().Elem().Size() == 0 {
		return entry{strong: s}
	}
	return entry{
		ref: weak.Make((*byte)(v.UnsafePointer())),
		typ: v.Type(),
	}
}

// get returns the subscriber, or nil once it has been collected.
func (e entry) get() Subscriber {
	if e.strong != nil {
		return e.strong
	}
	p := e.ref.Value()
	if p == nil {
		return nil
	}
	return reflect.NewAt(e.typ.Elem(), unsafe.Pointer(p)).Interface().(Subscriber)
}

func (e entry) dead() bool {
	return e.strong == nil && e.ref.Value() == nil
}

// matches reports whether e references s.
func (e entry) matches(s Subscriber) bool {
	if e.strong != nil {
		t := reflect.TypeOf(s)
		if t != reflect.TypeOf(e.strong) || !t.Comparable() {
			return false
		}
		return e.strong == s
	}
	v := reflect.ValueOf(s)
	if v.Type() != e.typ {
		return false
	}
	return weak.Make((*byte)(v.UnsafePointer())) == e.ref
}

// Registry is an insertion-ordered set of subscribers that does not keep its
// members alive. It is safe for concurrent use, including from inside
// handlers invoked while iterating [Registry.Live].
type Registry struct {
	mu      sync.Mutex
	entries []entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers s and reports whether it was added. Adding a subscriber that
// is already registered, or a nil subscriber, does nothing.
func (r *Registry) Add(s Subscriber) bool {
	if s == nil {
		return false
	}
	e := newEntry(s)

	r.mu.Lock()
	defer r.mu.Unlock()
	if slices.ContainsFunc(r.entries, func(x entry) bool { return x.matches(s) }) {
		return false
	}
	r.entries = append(r.entries, e)
	return true
}

// Remove unregisters every entry referencing s and returns how many were
// removed. Removing an unknown or already collected subscriber returns 0.
func (r *Registry) Remove(s Subscriber) int {
	if s == nil {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	before := len(r.entries)
	r.entries = slices.DeleteFunc(r.entries, func(x entry) bool { return x.matches(s) })
	return before - len(r.entries)
}

// Clear unregisters every subscriber.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

// Len returns the number of entries, including collected subscribers that
// have not been pruned yet.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Live yields every subscriber that is still reachable, in registration
// order. Each call iterates a snapshot taken when iteration starts, so the
// registry may be modified from inside the loop. Collected entries seen
// during the walk are pruned when it ends.
func (r *Registry) Live() iter.Seq[Subscriber] {
	return func(yield func(Subscriber) bool) {
		r.mu.Lock()
		snapshot := slices.Clone(r.entries)
		r.mu.Unlock()

		pruned := false
		defer func() {
			if pruned {
				r.prune()
			}
		}()

		for _, e := range snapshot {
			s := e.get()
			if s == nil {
				pruned = true
				continue
			}
			if !yield(s) {
				return
			}
		}
	}
}

// Snapshot returns the live subscribers as a slice.
func (r *Registry) Snapshot() []Subscriber {
	return slices.Collect(r.Live())
}

func (r *Registry) prune() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = slices.DeleteFunc(r.entries, entry.dead)
}
