// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package recwatch provides transparent, batched change observation over
// plain mutable records. Synchronous bursts of mutations, including deep
// mutations of nested records, coalesce into a single deferred callback
// per observer, delivered in observer registration order.
package recwatch

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrNotObservable is returned by Observe and Watch when the target
	// is not something this package can observe, such as a scalar or a
	// nil record.
	ErrNotObservable = errors.New("the target is not an observable record")

	// ErrNilCallback is returned by Observe and Watch when given a nil
	// callback or listener.
	ErrNilCallback = errors.New("a nil callback cannot observe changes")
)

// ChangeSet is a delivered batch: a mapping from each changed dotted path
// to that path's value immediately before the batch began. A path that
// was changed several times within one batch appears once, mapped to its
// value before the first change.
//
// The ChangeSet passed to a Callback is owned by the callback; the
// delivering collector retains no reference to it.
type ChangeSet map[string]any

// Paths returns the changed paths in this ChangeSet, sorted.
func (cs ChangeSet) Paths() (ps []string) {
	ps = make([]string, 0, len(cs))
	for p := range cs {
		ps = append(ps, p)
	}

	slices.Sort(ps)
	return
}

// Clone creates a shallow copy of this ChangeSet. Individual values are
// transferred as is to the clone. If this ChangeSet is empty, a nil
// ChangeSet is returned by this method.
func (cs ChangeSet) Clone() ChangeSet {
	if len(cs) == 0 {
		return nil
	}

	clone := make(ChangeSet, len(cs))
	for p, v := range cs {
		clone[p] = v
	}

	return clone
}

// Callback is an observer callback, invoked once per delivered batch.
type Callback func(ChangeSet)

// SelfObserver is an optional interface that a target can implement to
// manage its own observation. Observe delegates to it without wrapping,
// so a self-observing target is fully responsible for its own batching
// and ordering semantics.
type SelfObserver interface {
	// Observe registers a callback and returns a removable subscription.
	Observe(Callback) Subscription
}

// Observe registers callback as an observer of target and returns a
// Subscription that detaches exactly this observer.
//
// If target implements SelfObserver, registration is delegated to it and
// its subscription is returned unchanged. Otherwise target must be a
// *Record: a collector is constructed for the callback, assigned the next
// registration sequence number, and attached to the Record via Watch.
// Any other target fails fast with ErrNotObservable.
//
// The callback is invoked at most once per drain session pass, with a
// ChangeSet summarizing every change since the previous delivery. It is
// never invoked from within the mutating call stack.
func (n *Notifier) Observe(target any, callback Callback) (Subscription, error) {
	if callback == nil {
		return nil, ErrNilCallback
	}

	if so, ok := target.(SelfObserver); ok {
		return so.Observe(callback), nil
	}

	r, ok := target.(*Record)
	if !ok || r == nil {
		return nil, fmt.Errorf("%w: a value of type %T cannot be observed", ErrNotObservable, target)
	}

	c := newCollector(n, callback)
	watch, err := Watch(r, c.onChange)
	if err != nil {
		return nil, err
	}

	return &observerSubscription{
		collector: c,
		watch:     watch,
	}, nil
}

// observerSubscription ties an observer's raw listener registration to
// its collector.
type observerSubscription struct {
	collector *collector
	watch     Subscription
}

// Remove detaches the raw listener and permanently silences the
// collector. If the collector is already hot, its accumulated batch is
// discarded and the next drain skips it: the callback never fires after
// Remove returns.
func (s *observerSubscription) Remove() {
	s.watch.Remove()
	s.collector.remove()
}
