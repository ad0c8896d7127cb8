// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package recwatch

import (
	"fmt"
	"slices"
)

// ChangeFunc is a raw change listener. It is invoked synchronously from
// within Record.Set, once per changed leaf path, with the dotted path of
// the change and the values immediately before and after.
//
// A ChangeFunc must not panic if the mutating caller is to make progress;
// this package does not recover panics, and any error raised by a listener
// propagates to whoever performed the mutation.
type ChangeFunc func(path string, oldValue, newValue any)

// ChangeFuncs is an aggregate ChangeFunc.
type ChangeFuncs []ChangeFunc

// OnChange dispatches the given change to each listener in this aggregate.
func (cfs ChangeFuncs) OnChange(path string, oldValue, newValue any) {
	for _, cf := range cfs {
		cf(path, oldValue, newValue)
	}
}

// Subscription is a handle to an active listener or observer registration.
type Subscription interface {
	// Remove detaches the registration. Removal affects only this
	// registration; other listeners on the same Record are untouched.
	// Remove is idempotent.
	//
	// For observer subscriptions returned by Notifier.Observe, Remove
	// guarantees the observer callback never fires after Remove returns,
	// even for changes that were already recorded and pending delivery.
	Remove()
}

// listenerEntry wraps a ChangeFunc so that individual registrations of the
// same function remain distinguishable for removal.
type listenerEntry struct {
	fn ChangeFunc
}

// interception is the per-Record instrumentation installed on first watch.
type interception struct {
	// intercepted is the set of property names captured when the Record
	// was first watched. Properties added later are never intercepted;
	// the snapshot is taken exactly once.
	intercepted map[string]bool

	// listeners is the ordered sequence of raw listeners attached to
	// this Record. Dispatch order is registration order.
	listeners []*listenerEntry

	// nested maps a property name to the subscription for the nested
	// Record currently stored there, so a wholesale replacement can
	// detach the old watch.
	nested map[string]Subscription
}

// Watch attaches a raw change listener to the given Record and returns a
// Subscription that detaches exactly that listener.
//
// The first Watch on a Record installs interception: the current set of
// property names is snapshotted, and every property whose value is itself
// a Record is recursively watched with a listener that prefixes nested
// paths with the property name and ".". Later Watch calls append to the
// existing listener sequence without re-installing anything.
//
// Properties added to the Record after the first Watch are NOT
// intercepted and never produce notifications. This is a deliberate
// limitation of snapshot-at-first-watch interception.
//
// Watch fails fast with ErrNotObservable if r is nil, or wrapped with the
// offending property name if a nested value cannot be watched.
func Watch(r *Record, listener ChangeFunc) (Subscription, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: cannot watch a nil record", ErrNotObservable)
	}

	if listener == nil {
		return nil, ErrNilCallback
	}

	if r.watch == nil {
		if err := r.install(); err != nil {
			return nil, err
		}
	}

	e := &listenerEntry{fn: listener}
	r.watch.listeners = append(r.watch.listeners, e)

	return &watchSubscription{
		record: r,
		entry:  e,
	}, nil
}

// install sets up interception for a Record that has never been watched.
// On failure the Record is restored to its unwatched state.
func (r *Record) install() error {
	r.watch = &interception{
		intercepted: make(map[string]bool, len(r.names)),
		nested:      make(map[string]Subscription),
	}

	for _, name := range r.names {
		r.watch.intercepted[name] = true

		if child, ok := r.values[name].(*Record); ok {
			if err := r.watchNested(name, child); err != nil {
				for _, sub := range r.watch.nested {
					sub.Remove()
				}

				r.watch = nil
				return err
			}
		}
	}

	return nil
}

// watchNested watches a nested Record with a listener that re-paths its
// notifications under the outer property name.
func (r *Record) watchNested(name string, child *Record) error {
	sub, err := Watch(child, func(path string, oldValue, newValue any) {
		r.notify(name+"."+path, oldValue, newValue)
	})
	if err != nil {
		return fmt.Errorf("cannot watch the record at property [%s]: %w", name, err)
	}

	r.watch.nested[name] = sub
	return nil
}

// notify dispatches one leaf change to every listener on this Record, in
// registration order. The listener sequence is snapshotted first so that
// a listener removing a subscription mid-dispatch does not perturb the
// iteration.
func (r *Record) notify(path string, oldValue, newValue any) {
	for _, e := range slices.Clone(r.watch.listeners) {
		e.fn(path, oldValue, newValue)
	}
}

// setIntercepted is the setter for an intercepted property.
func (r *Record) setIntercepted(name string, value any) error {
	oldValue := r.values[name]
	if sameValue(oldValue, value) {
		return nil
	}

	child, isRecord := value.(*Record)
	isRecord = isRecord && child != nil

	// install the new nested watch before detaching the old one, so a
	// failed install leaves the property fully unchanged
	oldSub := r.watch.nested[name]
	if isRecord {
		if err := r.watchNested(name, child); err != nil {
			return err
		}
	} else {
		delete(r.watch.nested, name)
	}

	if oldSub != nil {
		oldSub.Remove()
	}

	r.values[name] = value

	if isRecord {
		diffLeaves(oldValue, child, name+".", r.notify)
	} else {
		r.notify(name, oldValue, value)
	}

	return nil
}

// watchSubscription detaches a single listenerEntry from its Record.
type watchSubscription struct {
	record *Record
	entry  *listenerEntry
}

func (s *watchSubscription) Remove() {
	w := s.record.watch
	for i, e := range w.listeners {
		if e == s.entry {
			w.listeners = slices.Delete(w.listeners, i, i+1)
			return
		}
	}
}
