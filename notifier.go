// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package recwatch

import (
	"errors"
	"slices"
	"time"
)

var (
	// ErrNoSchedule is returned by NewNotifier when no Schedule strategy
	// has been configured. Deferred delivery cannot work without one, and
	// there is no default that would preserve the single-threaded model.
	ErrNoSchedule = errors.New("a schedule strategy is required")
)

// Schedule is the deferred-execution primitive a Notifier delivers through.
// It must arrange for fn to be invoked exactly once, with no arguments,
// after the current synchronous work completes and before the host starts
// its next externally-driven task. It must tolerate being called again
// from within fn itself.
//
// The host is responsible for invoking fn on the same logical thread that
// performs mutations; this package uses no locks.
type Schedule func(fn func())

// NotifierState is a snapshot of the bookkeeping state of a Notifier.
type NotifierState struct {
	// Scheduled indicates whether a delivery request is currently
	// outstanding with the Schedule strategy.
	Scheduled bool

	// Pending is the count of observers with accumulated changes awaiting
	// delivery.
	Pending int

	// LastDrain is the timestamp at which the most recent drain session
	// completed. Until the first drain, this is the Notifier's
	// construction time.
	//
	// This timestamp will always be in UTC.
	LastDrain time.Time
}

// Notifier is the delivery scheduler for a set of observers. It holds the
// pending-delivery set, the single outstanding schedule request, and the
// registration counter that defines delivery order. Observers are created
// through Observe.
//
// A Notifier is deliberately not a hidden singleton: construct one per
// logical thread of mutation and pass it where it is needed. All methods
// assume they are called from that single logical thread; a Notifier
// performs no locking of its own.
type Notifier struct {
	// schedule is the strategy used to defer delivery to the end of the
	// current synchronous work.
	schedule Schedule

	// now is the strategy used to get the current time.
	// by default, time.Now is used.
	now now

	// nextSequence is the source of observer registration sequence
	// numbers.
	nextSequence uint64

	// pending maps registration sequence number to each hot collector.
	pending map[uint64]*collector

	// scheduled is true while a delivery request is outstanding.
	// Invariant: pending is non-empty only while scheduled is true.
	scheduled bool

	// lastDrain is the completion time of the most recent drain session.
	lastDrain time.Time
}

// State returns a snapshot of this Notifier's bookkeeping state.
func (n *Notifier) State() NotifierState {
	return NotifierState{
		Scheduled: n.scheduled,
		Pending:   len(n.pending),
		LastDrain: n.lastDrain,
	}
}

// markHot inserts a collector into the pending-delivery set and ensures
// exactly one schedule request is outstanding.
func (n *Notifier) markHot(c *collector) {
	n.pending[c.sequence] = c

	if !n.scheduled {
		n.scheduled = true
		n.schedule(n.drain)
	}
}

// drain is the scheduled delivery callback. It repeatedly snapshots and
// clears the pending set, delivering each snapshot in ascending
// registration-sequence order, until a pass finds the set empty. The loop
// absorbs cascades: a delivered callback may synchronously mutate other
// observed Records, making new collectors hot, and those are delivered in
// a later pass of the same session rather than a later tick.
//
// The outstanding flag clears before the first pass, so intake during
// delivery may request one redundant schedule; that callback finds an
// empty pending set and returns without delivering.
func (n *Notifier) drain() {
	n.scheduled = false

	for len(n.pending) > 0 {
		batch := n.pending
		n.pending = make(map[uint64]*collector)

		sequences := make([]uint64, 0, len(batch))
		for s := range batch {
			sequences = append(sequences, s)
		}

		slices.Sort(sequences)

		for _, s := range sequences {
			if c := batch[s]; !c.removed {
				c.deliver()
			}
		}
	}

	n.lastDrain = n.now().UTC()
}

// NotifierOption is a configurable option for tailoring a Notifier.
type NotifierOption interface {
	apply(*Notifier) error
}

type notifierOptionFunc func(*Notifier) error

func (f notifierOptionFunc) apply(n *Notifier) error { return f(n) }

// WithSchedule sets the Schedule strategy deliveries are deferred through.
// This option is required; there is no default.
func WithSchedule(s Schedule) NotifierOption {
	return notifierOptionFunc(func(n *Notifier) error {
		if s == nil {
			return ErrNoSchedule
		}

		n.schedule = s
		return nil
	})
}

// NewNotifier constructs a Notifier using the supplied set of options.
// A Schedule strategy must be supplied via WithSchedule, or this function
// returns ErrNoSchedule.
func NewNotifier(opts ...NotifierOption) (*Notifier, error) {
	n := &Notifier{
		now:     time.Now,
		pending: make(map[uint64]*collector),
	}

	for _, o := range opts {
		if err := o.apply(n); err != nil {
			return nil, err
		}
	}

	if n.schedule == nil {
		return nil, ErrNoSchedule
	}

	n.lastDrain = n.now().UTC()
	return n, nil
}
