// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package recwatch

// diffLeaves compares a prior value against an updated Record and invokes
// notify once for every leaf property of the updated Record whose value
// differs from the prior value at the same path, including properties the
// prior value did not have at all. Equality is sameValue. Paths are the
// updated property names joined to prefix, which must either be empty or
// end in ".".
//
// Nested Records are never reported directly; the walk descends into them
// with an extended prefix so that only leaf differences are reported.
// Traversal follows the updated Record's insertion order.
//
// If oldValue is not a *Record (including nil), every leaf of updated is
// reported as a change from nil.
func diffLeaves(oldValue any, updated *Record, prefix string, notify ChangeFunc) {
	old, _ := oldValue.(*Record)

	for _, name := range updated.names {
		newValue := updated.values[name]
		path := prefix + name

		if child, ok := newValue.(*Record); ok && child != nil {
			// reading old.values directly is safe: interception shares
			// the same storage
			var oldChild any
			if old != nil {
				oldChild = old.values[name]
			}

			diffLeaves(oldChild, child, path+".", notify)
			continue
		}

		var prior any
		present := false
		if old != nil {
			prior, present = old.values[name]
		}

		if !present || !sameValue(prior, newValue) {
			notify(path, prior, newValue)
		}
	}
}
