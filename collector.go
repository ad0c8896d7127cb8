// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package recwatch

// collector accumulates the changes seen by a single observer between
// deliveries. Its onChange method is the raw listener attached to the
// observed Record, and it reaches back into its owning Notifier to mark
// itself hot, the same way each change funnels into the shared pending
// set.
type collector struct {
	// notifier owns the pending-delivery set this collector registers
	// itself with.
	notifier *Notifier

	// sequence is assigned once, at construction, from the Notifier's
	// counter. It defines this observer's position in the global
	// delivery order.
	sequence uint64

	// callback is the observer callback, invoked once per delivered batch.
	callback Callback

	// pending maps each changed path to its value as of the start of the
	// current batch. First write wins: later changes to the same path
	// within a batch never overwrite the recorded original.
	pending ChangeSet

	// removed is set when the owning subscription is removed. A removed
	// collector may still sit in the pending-delivery set, but it is
	// skipped at delivery time.
	removed bool
}

func newCollector(n *Notifier, callback Callback) *collector {
	c := &collector{
		notifier: n,
		sequence: n.nextSequence,
		callback: callback,
		pending:  make(ChangeSet),
	}

	n.nextSequence++
	return c
}

// onChange is the collector's intake. It is shaped as a ChangeFunc so it
// can be attached directly via Watch; the new value is accepted but
// unused, since only the original value matters for the batch summary.
func (c *collector) onChange(path string, oldValue, _ any) {
	if _, recorded := c.pending[path]; recorded {
		return
	}

	c.pending[path] = oldValue
	c.notifier.markHot(c)
}

// deliver swaps out the accumulated batch for a fresh one, then invokes
// the observer callback with the swapped-out batch. Mutations performed
// by the callback accumulate into the fresh batch.
func (c *collector) deliver() {
	batch := c.pending
	c.pending = make(ChangeSet)
	c.callback(batch)
}

// remove silences this collector permanently, discarding anything it has
// accumulated.
func (c *collector) remove() {
	c.removed = true
	c.pending = make(ChangeSet)
}
