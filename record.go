// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package recwatch

import "slices"

// Record is a plain mutable record: an ordered set of named properties
// whose values are either scalars or nested Records. A Record is the unit
// of observation in this package. All access goes through Get and Set,
// which is what allows Set to act as the interception point once the
// Record is watched.
//
// Properties enumerate in insertion order. A Record is not safe for
// concurrent use; all mutation and observation is assumed to happen on a
// single logical thread.
type Record struct {
	// names preserves the insertion order of properties. Deep diff
	// traversal and notification ordering both depend on this order.
	names []string

	// values holds the current value of each property. Once a property
	// is intercepted, this is the shadow storage the setter maintains.
	values map[string]any

	// watch is the interception handle for this Record. It is nil until
	// the Record is watched for the first time, and is never uninstalled
	// afterward, even when all listeners have been removed. Keeping the
	// handle on the Record itself means no global registry can pin a
	// Record in memory.
	watch *interception
}

// NewRecord constructs an empty Record. Properties are added with Set.
func NewRecord() *Record {
	return &Record{
		values: make(map[string]any),
	}
}

// Len returns the count of properties in this Record.
func (r *Record) Len() int {
	return len(r.names)
}

// Names returns the property names of this Record in insertion order.
// The returned slice is a copy.
func (r *Record) Names() []string {
	return slices.Clone(r.names)
}

// Get returns the current value of the named property, or nil if no such
// property exists.
func (r *Record) Get(name string) any {
	return r.values[name]
}

// store writes a property without any interception logic, appending the
// name on first write so that enumeration order is preserved.
func (r *Record) store(name string, value any) {
	if _, exists := r.values[name]; !exists {
		r.names = append(r.names, name)
	}

	r.values[name] = value
}

// Set updates the named property. For an unwatched Record, or for a
// property added after the Record was first watched, this is a plain
// write and never fails.
//
// For an intercepted property, Set implements the setter contract:
// a same-value write is a no-op, a nested Record value is watched in
// place of any previous nested value, and every listener on this Record
// is notified of each resulting leaf change, synchronously and in
// listener registration order.
//
// Set returns an error only when the new value is a nested Record that
// cannot be watched. In that case the property is left unchanged.
func (r *Record) Set(name string, value any) error {
	if r.watch != nil && r.watch.intercepted[name] {
		return r.setIntercepted(name, value)
	}

	r.store(name, value)
	return nil
}
